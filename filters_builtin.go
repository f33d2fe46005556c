package jinja

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Builtin filter catalog: AddFilter registration and a uniform
// in/params/kwargs calling shape, extended with filters for dict/sequence
// manipulation (groupby, selectattr, rejectattr, dictsort, wordwrap,
// filesizeformat, xmlattr, urlize, batch, map/select/reject).
func init() {
	AddFilter("abs", filterAbs)
	AddFilter("attr", filterAttr)
	AddFilter("boolean", filterBoolean)
	AddFilter("batch", filterBatch)
	AddFilter("capitalize", filterCapitalize)
	AddFilter("center", filterCenter)
	AddFilter("default", filterDefault)
	AddFilter("d", filterDefault)
	AddFilter("dictsort", filterDictsort)
	AddFilter("escape", filterEscape)
	AddFilter("e", filterEscape)
	AddFilter("filesizeformat", filterFilesizeformat)
	AddFilter("first", filterFirst)
	AddFilter("float", filterFloat)
	AddFilter("forceescape", filterEscape)
	AddFilter("format", filterFormat)
	AddFilter("groupby", filterGroupby)
	AddFilter("indent", filterIndent)
	AddFilter("int", filterInt)
	AddFilter("items", filterItems)
	AddFilter("join", filterJoin)
	AddFilter("last", filterLast)
	AddFilter("length", filterLength)
	AddFilter("count", filterLength)
	AddFilter("list", filterList)
	AddFilter("lower", filterLower)
	AddFilter("map", filterMap)
	AddFilter("max", filterMax)
	AddFilter("min", filterMin)
	AddFilter("pprint", filterPprint)
	AddFilter("random", filterRandom)
	AddFilter("reject", filterReject)
	AddFilter("rejectattr", filterRejectattr)
	AddFilter("replace", filterReplace)
	AddFilter("reverse", filterReverse)
	AddFilter("round", filterRound)
	AddFilter("safe", filterSafe)
	AddFilter("select", filterSelect)
	AddFilter("selectattr", filterSelectattr)
	AddFilter("slice", filterSlice)
	AddFilter("sort", filterSort)
	AddFilter("string", filterString)
	AddFilter("striptags", filterStriptags)
	AddFilter("sum", filterSum)
	AddFilter("title", filterTitle)
	AddFilter("tojson", filterTojson)
	AddFilter("trim", filterTrim)
	AddFilter("truncate", filterTruncate)
	AddFilter("unique", filterUnique)
	AddFilter("upper", filterUpper)
	AddFilter("urlencode", filterUrlencode)
	AddFilter("urlize", filterUrlize)
	AddFilter("wordcount", filterWordcount)
	AddFilter("wordwrap", filterWordwrap)
	AddFilter("xmlattr", filterXmlattr)
}

func filterAbs(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	if in.IsFloat() {
		return Float(math.Abs(in.Float())), nil
	}
	n := in.Integer()
	if n < 0 {
		n = -n
	}
	return Int(n), nil
}

func filterAttr(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	name := kwOr(kwargs, "name", args, 1, String(""))
	return getAttr(in, name.Str()), nil
}

// filterBoolean coerces via truthiness (`x | boolean`); contrast with the
// `boolean` test, which checks the Value's variant instead of coercing.
func filterBoolean(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Bool(args[0].IsTrue()), nil
}

func filterBatch(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	size := int(kwOr(kwargs, "linecount", args, 1, Int(1)).Integer())
	if size <= 0 {
		size = 1
	}
	fill := kwOr(kwargs, "fill_with", args, 2, nil)
	items := in.Items()
	var batches []*Value
	for i := 0; i < len(items); i += size {
		end := i + size
		var batch []*Value
		if end > len(items) {
			batch = append(batch, items[i:]...)
			if fill != nil {
				for len(batch) < size {
					batch = append(batch, fill)
				}
			}
		} else {
			batch = items[i:end]
		}
		batches = append(batches, Array(batch))
	}
	return Array(batches), nil
}

func filterCapitalize(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	s := args[0].Str()
	if s == "" {
		return String(""), nil
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return String(string(r)), nil
}

func filterCenter(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	s := args[0].Str()
	width := int(kwOr(kwargs, "width", args, 1, Int(80)).Integer())
	if len(s) >= width {
		return String(s), nil
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return String(strings.Repeat(" ", left) + s + strings.Repeat(" ", right)), nil
}

func filterDefault(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	boolean := kwOr(kwargs, "boolean", args, 2, Bool(false)).IsTrue()
	isFalsy := in.IsUndefined() || (boolean && !in.IsTrue())
	if isFalsy {
		return kwOr(kwargs, "default_value", args, 1, String("")), nil
	}
	return in, nil
}

func filterDictsort(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	if !in.IsObject() {
		return nil, fmt.Errorf("dictsort requires an object")
	}
	keys := in.Map().SortedKeys()
	pairs := make([]*Value, len(keys))
	for i, k := range keys {
		v, _ := in.Map().Get(k)
		pairs[i] = Array([]*Value{String(k), v})
	}
	return Array(pairs), nil
}

func filterEscape(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	s := args[0].Display()
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&#34;")
	s = strings.ReplaceAll(s, "'", "&#39;")
	return SafeString(s), nil
}

func filterFilesizeformat(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	bytesVal := args[0].Float()
	binary := kwOr(kwargs, "binary", args, 1, Bool(false)).IsTrue()
	base := 1000.0
	units := []string{"kB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}
	if binary {
		base = 1024.0
		units = []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB", "ZiB", "YiB"}
	}
	if bytesVal == 1 {
		return String("1 Byte"), nil
	}
	if bytesVal < base {
		return String(fmt.Sprintf("%d Bytes", int64(bytesVal))), nil
	}
	v := bytesVal
	for i, u := range units {
		v = v / base
		if v < base || i == len(units)-1 {
			return String(fmt.Sprintf("%.1f %s", v, u)), nil
		}
	}
	return String(fmt.Sprintf("%.1f %s", v, units[len(units)-1])), nil
}

func filterFirst(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	if in.IsString() {
		r := []rune(in.Str())
		if len(r) == 0 {
			return Undefined(""), nil
		}
		return String(string(r[0])), nil
	}
	items := in.Items()
	if len(items) == 0 {
		return Undefined(""), nil
	}
	return items[0], nil
}

func filterFloat(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	def := kwOr(kwargs, "default", args, 1, Float(0))
	if !in.IsNumber() && !in.IsString() {
		return def, nil
	}
	if in.IsString() {
		if _, err := strconv.ParseFloat(strings.TrimSpace(in.Str()), 64); err != nil {
			return def, nil
		}
	}
	return Float(in.Float()), nil
}

func filterFormat(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	parts := make([]any, len(args)-1)
	for i, a := range args[1:] {
		parts[i] = a.Display()
	}
	return String(fmt.Sprintf(args[0].Str(), parts...)), nil
}

func filterGroupby(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	attr := kwOr(kwargs, "attribute", args, 1, String("")).Str()
	items := in.Items()

	type group struct {
		key   *Value
		items []*Value
	}
	var groups []*group
	index := map[uint64]*group{}
	for _, item := range items {
		k := getAttr(item, attr)
		h := k.Hash()
		g, ok := index[h]
		if !ok {
			g = &group{key: k}
			index[h] = g
			groups = append(groups, g)
		}
		g.items = append(g.items, item)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		c, ok := groups[i].key.Compare(groups[j].key)
		return ok && c < 0
	})
	out := make([]*Value, len(groups))
	for i, g := range groups {
		m := NewOrderedMap()
		m.Set("grouper", g.key)
		m.Set("list", Array(g.items))
		out[i] = Object(m)
	}
	return Array(out), nil
}

func filterIndent(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	s := args[0].Str()
	width := int(kwOr(kwargs, "width", args, 1, Int(4)).Integer())
	first := kwOr(kwargs, "first", args, 2, Bool(false)).IsTrue()
	pad := strings.Repeat(" ", width)
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}
	result := strings.Join(lines, "\n")
	if first && result != "" {
		result = pad + result
	}
	return String(result), nil
}

func filterInt(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	def := kwOr(kwargs, "default", args, 1, Int(0))
	if in.IsString() {
		if _, err := strconv.ParseInt(strings.TrimSpace(in.Str()), 10, 64); err != nil {
			if _, ferr := strconv.ParseFloat(strings.TrimSpace(in.Str()), 64); ferr != nil {
				return def, nil
			}
		}
	} else if !in.IsNumber() {
		return def, nil
	}
	return Int(in.Integer()), nil
}

// filterItems emits [key, value] pairs in insertion order, the filter form
// of the `.items()` method exposed on object Values.
func filterItems(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	if !in.IsObject() {
		return nil, fmt.Errorf("items filter requires an object, got %s", in.Kind())
	}
	return objectMethods["items"](in.Map())(nil, nil, env)
}

func filterJoin(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	sep := kwOr(kwargs, "d", args, 1, String("")).Str()
	attr := kwOr(kwargs, "attribute", args, 2, nil)
	items := in.Items()
	parts := make([]string, len(items))
	for i, it := range items {
		if attr != nil {
			it = getAttr(it, attr.Str())
		}
		parts[i] = it.Display()
	}
	return String(strings.Join(parts, sep)), nil
}

func filterLast(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	if in.IsString() {
		r := []rune(in.Str())
		if len(r) == 0 {
			return Undefined(""), nil
		}
		return String(string(r[len(r)-1])), nil
	}
	items := in.Items()
	if len(items) == 0 {
		return Undefined(""), nil
	}
	return items[len(items)-1], nil
}

func filterLength(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Int(int64(args[0].Len())), nil
}

func filterList(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	switch in.Kind() {
	case KindArray:
		return in, nil
	case KindString:
		runes := []rune(in.Str())
		out := make([]*Value, len(runes))
		for i, r := range runes {
			out[i] = String(string(r))
		}
		return Array(out), nil
	case KindObject:
		keys := in.Map().Keys()
		out := make([]*Value, len(keys))
		for i, k := range keys {
			out[i] = String(k)
		}
		return Array(out), nil
	default:
		return Array(nil), nil
	}
}

func filterLower(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return String(strings.ToLower(args[0].Str())), nil
}

func filterMap(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	items := in.Items()
	out := make([]*Value, len(items))

	if attr := kwOr(kwargs, "attribute", nil, -1, nil); attr != nil {
		def := kwOr(kwargs, "default", nil, -1, nil)
		for i, it := range items {
			v := getAttr(it, attr.Str())
			if v.IsUndefined() && def != nil {
				v = def
			}
			out[i] = v
		}
		return Array(out), nil
	}

	if len(args) < 2 {
		return nil, fmt.Errorf("map requires a filter name or 'attribute' keyword argument")
	}
	filterName := args[1].Str()
	fn, ok := lookupFilter(filterName)
	if !ok {
		return nil, fmt.Errorf("no filter named %q", filterName)
	}
	extra := args[2:]
	for i, it := range items {
		callArgs := append([]*Value{it}, extra...)
		v, err := fn(callArgs, NewOrderedMap(), env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return Array(out), nil
}

func filterMax(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	items := args[0].Items()
	if len(items) == 0 {
		return Undefined(""), nil
	}
	best := items[0]
	for _, it := range items[1:] {
		if c, ok := it.Compare(best); ok && c > 0 {
			best = it
		}
	}
	return best, nil
}

func filterMin(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	items := args[0].Items()
	if len(items) == 0 {
		return Undefined(""), nil
	}
	best := items[0]
	for _, it := range items[1:] {
		if c, ok := it.Compare(best); ok && c < 0 {
			best = it
		}
	}
	return best, nil
}

func filterPprint(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return String(args[0].Display()), nil
}

func filterRandom(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	items := args[0].Items()
	if len(items) == 0 {
		return Undefined(""), nil
	}
	return items[rand.Intn(len(items))], nil
}

func filterReject(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return selectOrReject(args, env, false, false)
}

func filterRejectattr(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return selectOrReject(args, env, false, true)
}

func filterSelect(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return selectOrReject(args, env, true, false)
}

func filterSelectattr(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return selectOrReject(args, env, true, true)
}

func selectOrReject(args []*Value, env *Environment, want bool, byAttr bool) (*Value, error) {
	items := args[0].Items()
	rest := args[1:]
	var attrName string
	if byAttr {
		if len(rest) == 0 {
			return nil, fmt.Errorf("selectattr/rejectattr requires an attribute name")
		}
		attrName = rest[0].Str()
		rest = rest[1:]
	}

	var testFn Callable
	var testArgs []*Value
	if len(rest) > 0 {
		name := rest[0].Str()
		fn, ok := lookupTest(name)
		if !ok {
			return nil, fmt.Errorf("no test named %q", name)
		}
		testFn = fn
		testArgs = rest[1:]
	}

	var out []*Value
	for _, it := range items {
		target := it
		if byAttr {
			target = getAttr(it, attrName)
		}
		var pass bool
		if testFn != nil {
			callArgs := append([]*Value{target}, testArgs...)
			res, err := testFn(callArgs, NewOrderedMap(), env)
			if err != nil {
				return nil, err
			}
			pass = res.IsTrue()
		} else {
			pass = target.IsTrue()
		}
		if pass == want {
			out = append(out, it)
		}
	}
	return Array(out), nil
}

func filterReplace(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0].Str()
	if len(args) < 3 {
		return nil, fmt.Errorf("replace requires old and new arguments")
	}
	old, newv := args[1].Str(), args[2].Str()
	count := -1
	if len(args) > 3 {
		count = int(args[3].Integer())
	}
	if old == "" {
		var b strings.Builder
		runes := []rune(in)
		b.WriteString(newv)
		for _, r := range runes {
			b.WriteRune(r)
			b.WriteString(newv)
		}
		return String(b.String()), nil
	}
	return String(strings.Replace(in, old, newv, count)), nil
}

func filterReverse(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	if in.IsString() {
		r := []rune(in.Str())
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return String(string(r)), nil
	}
	items := append([]*Value(nil), in.Items()...)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return Array(items), nil
}

func filterRound(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	f := args[0].Float()
	precision := int(kwOr(kwargs, "precision", args, 1, Int(0)).Integer())
	method := kwOr(kwargs, "method", args, 2, String("common")).Str()
	mul := math.Pow(10, float64(precision))
	v := f * mul
	switch method {
	case "ceil":
		v = math.Ceil(v)
	case "floor":
		v = math.Floor(v)
	default:
		v = math.Round(v)
	}
	return Float(v / mul), nil
}

func filterSafe(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return SafeString(args[0].Display()), nil
}

func filterSlice(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	items := args[0].Items()
	count := int(kwOr(kwargs, "slices", args, 1, Int(1)).Integer())
	if count <= 0 {
		count = 1
	}
	fill := kwOr(kwargs, "fill_with", args, 2, nil)
	perSlice := len(items) / count
	extra := len(items) % count
	out := make([]*Value, 0, count)
	idx := 0
	for i := 0; i < count; i++ {
		n := perSlice
		if i < extra {
			n++
		}
		s := append([]*Value(nil), items[idx:idx+n]...)
		idx += n
		if fill != nil && n < perSlice+1 && i >= extra {
			s = append(s, fill)
		}
		out = append(out, Array(s))
	}
	return Array(out), nil
}

func filterSort(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	items := append([]*Value(nil), args[0].Items()...)
	reverse := kwOr(kwargs, "reverse", args, 1, Bool(false)).IsTrue()
	caseSensitive := kwOr(kwargs, "case_sensitive", args, 2, Bool(false)).IsTrue()
	attr := kwOr(kwargs, "attribute", args, 3, nil)

	key := func(v *Value) *Value {
		if attr != nil {
			v = getAttr(v, attr.Str())
		}
		if v.IsString() && !caseSensitive {
			return String(strings.ToLower(v.Str()))
		}
		return v
	}
	sort.SliceStable(items, func(i, j int) bool {
		c, ok := key(items[i]).Compare(key(items[j]))
		if !ok {
			return false
		}
		if reverse {
			return c > 0
		}
		return c < 0
	})
	return Array(items), nil
}

func filterString(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return String(args[0].Display()), nil
}

func filterStriptags(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	s := args[0].Str()
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return String(strings.Join(strings.Fields(b.String()), " ")), nil
}

func filterSum(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	items := args[0].Items()
	attr := kwOr(kwargs, "attribute", args, 1, nil)
	start := kwOr(kwargs, "start", args, 2, Int(0))
	isFloat := start.IsFloat()
	var fsum float64
	var isum int64
	if isFloat {
		fsum = start.Float()
	} else {
		isum = start.Integer()
	}
	for _, it := range items {
		v := it
		if attr != nil {
			v = getAttr(it, attr.Str())
		}
		if v.IsFloat() {
			isFloat = true
		}
	}
	if isFloat {
		fsum = start.Float()
		for _, it := range items {
			v := it
			if attr != nil {
				v = getAttr(it, attr.Str())
			}
			fsum += v.Float()
		}
		return Float(fsum), nil
	}
	for _, it := range items {
		v := it
		if attr != nil {
			v = getAttr(it, attr.Str())
		}
		isum += v.Integer()
	}
	return Int(isum), nil
}

func filterTitle(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return String(strings.Title(strings.ToLower(args[0].Str()))), nil
}

func filterTojson(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	data := valueToHostForJSON(args[0])
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return SafeString(string(b)), nil
}

func valueToHostForJSON(v *Value) any {
	switch v.Kind() {
	case KindNull, KindUndefined:
		return nil
	case KindBool:
		return v.AsBool()
	case KindInt:
		return v.Integer()
	case KindFloat:
		return v.Float()
	case KindString:
		return v.Str()
	case KindArray:
		items := v.Items()
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = valueToHostForJSON(it)
		}
		return out
	case KindObject:
		out := make(map[string]any, v.Map().Len())
		for _, k := range v.Map().Keys() {
			val, _ := v.Map().Get(k)
			out[k] = valueToHostForJSON(val)
		}
		return out
	default:
		return nil
	}
}

func filterTrim(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	cutset := kwOr(kwargs, "chars", args, 1, nil)
	if cutset != nil {
		return String(strings.Trim(args[0].Str(), cutset.Str())), nil
	}
	return String(strings.TrimSpace(args[0].Str())), nil
}

func filterTruncate(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	s := args[0].Str()
	length := int(kwOr(kwargs, "length", args, 1, Int(255)).Integer())
	killwords := kwOr(kwargs, "killwords", args, 2, Bool(false)).IsTrue()
	end := kwOr(kwargs, "end", args, 3, String("...")).Str()
	runes := []rune(s)
	if len(runes) <= length {
		return String(s), nil
	}
	cut := length - len([]rune(end))
	if cut < 0 {
		cut = 0
	}
	truncated := string(runes[:cut])
	if !killwords {
		if i := strings.LastIndex(truncated, " "); i >= 0 {
			truncated = truncated[:i]
		}
	}
	return String(truncated + end), nil
}

func filterUnique(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	items := args[0].Items()
	seen := map[uint64]bool{}
	var out []*Value
	for _, it := range items {
		h := it.Hash()
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, it)
	}
	return Array(out), nil
}

func filterUpper(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return String(strings.ToUpper(args[0].Str())), nil
}

func filterUrlencode(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return String(url.QueryEscape(args[0].Str())), nil
}

func filterUrlize(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	s := args[0].Str()
	words := strings.Fields(s)
	for i, w := range words {
		if strings.HasPrefix(w, "http://") || strings.HasPrefix(w, "https://") {
			words[i] = fmt.Sprintf(`<a href="%s">%s</a>`, w, w)
		}
	}
	return SafeString(strings.Join(words, " ")), nil
}

func filterWordcount(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	return Int(int64(len(strings.Fields(args[0].Str())))), nil
}

func filterWordwrap(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	s := args[0].Str()
	width := int(kwOr(kwargs, "width", args, 1, Int(79)).Integer())
	words := strings.Fields(s)
	if len(words) == 0 {
		return String(""), nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return String(strings.Join(lines, "\n")), nil
}

func filterXmlattr(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
	in := args[0]
	if !in.IsObject() {
		return nil, fmt.Errorf("xmlattr requires an object")
	}
	autospace := kwOr(kwargs, "autospace", args, 1, Bool(true)).IsTrue()
	var parts []string
	for _, k := range in.Map().Keys() {
		v, _ := in.Map().Get(k)
		if v.IsUndefined() || v.IsNull() {
			continue
		}
		parts = append(parts, fmt.Sprintf(`%s="%s"`, k, strings.ReplaceAll(v.Display(), `"`, "&#34;")))
	}
	out := strings.Join(parts, " ")
	if autospace && out != "" {
		out = " " + out
	}
	return SafeString(out), nil
}
