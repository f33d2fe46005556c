package jinja

import (
	"fmt"
	"reflect"

	"gopkg.in/mgo.v2/bson"
	"gopkg.in/yaml.v2"
)

// FromHost converts an arbitrary Go value into the template Value sum type
// (the host-interop contract), as a standalone conversion function usable
// ahead of render. bson.M/bson.D (a BSON
// document and its ordered-pair form) and YAML-decoded
// map[interface{}]interface{} are recognised as ordered maps (§11 domain
// stack) in addition to ordinary Go maps, slices and structs.
func FromHost(v any) (*Value, error) {
	if v == nil {
		return Null, nil
	}
	switch x := v.(type) {
	case *Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Int(int64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case bson.M:
		return bsonMToValue(x)
	case bson.D:
		return bsonDToValue(x)
	case map[string]any:
		return stringMapToValue(x)
	case map[any]any:
		return anyMapToValue(x)
	case []any:
		return anySliceToValue(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Null, nil
		}
		return FromHost(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]*Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := FromHost(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return Array(items), nil
	case reflect.Map:
		m := NewOrderedMap()
		for _, key := range rv.MapKeys() {
			k := fmt.Sprintf("%v", key.Interface())
			val, err := FromHost(rv.MapIndex(key).Interface())
			if err != nil {
				return nil, err
			}
			m.Set(k, val)
		}
		return Object(m), nil
	case reflect.Struct:
		return structToValue(rv)
	}

	return nil, fmt.Errorf("cannot convert %T to a template value", v)
}

func bsonMToValue(m bson.M) (*Value, error) {
	om := NewOrderedMap()
	for k, v := range m {
		val, err := FromHost(v)
		if err != nil {
			return nil, err
		}
		om.Set(k, val)
	}
	return Object(om), nil
}

func bsonDToValue(d bson.D) (*Value, error) {
	om := NewOrderedMap()
	for _, elem := range d {
		val, err := FromHost(elem.Value)
		if err != nil {
			return nil, err
		}
		om.Set(elem.Name, val)
	}
	return Object(om), nil
}

func stringMapToValue(m map[string]any) (*Value, error) {
	om := NewOrderedMap()
	for _, k := range sortedStringKeys(m) {
		val, err := FromHost(m[k])
		if err != nil {
			return nil, err
		}
		om.Set(k, val)
	}
	return Object(om), nil
}

func anyMapToValue(m map[any]any) (*Value, error) {
	om := NewOrderedMap()
	for k, v := range m {
		val, err := FromHost(v)
		if err != nil {
			return nil, err
		}
		om.Set(fmt.Sprintf("%v", k), val)
	}
	return Object(om), nil
}

func anySliceToValue(s []any) (*Value, error) {
	items := make([]*Value, len(s))
	for i, it := range s {
		v, err := FromHost(it)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return Array(items), nil
}

func structToValue(rv reflect.Value) (*Value, error) {
	om := NewOrderedMap()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		name := field.Name
		if tag := field.Tag.Get("jinja"); tag != "" {
			name = tag
		}
		val, err := FromHost(rv.Field(i).Interface())
		if err != nil {
			return nil, err
		}
		om.Set(name, val)
	}
	return Object(om), nil
}

func sortedStringKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// LoadContextYAML decodes a YAML document into a context map suitable for
// Template.Render, for templates whose variables come from YAML-described
// fixtures (§11 domain stack: a common chat-prompt authoring pattern).
func LoadContextYAML(doc []byte) (map[string]any, error) {
	var raw map[any]any
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("decoding YAML context: %w", err)
	}
	ctx := make(map[string]any, len(raw))
	for k, v := range raw {
		ctx[fmt.Sprintf("%v", k)] = v
	}
	return ctx, nil
}
