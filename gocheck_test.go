package jinja

import (
	"testing"

	. "gopkg.in/check.v1"
)

// Hook gocheck into `go test`, mixing a gocheck suite alongside the plain
// testing.T functions used everywhere else in this package.
func TestGocheck(t *testing.T) { TestingT(t) }

type FilterSuite struct{}

var _ = Suite(&FilterSuite{})

func (s *FilterSuite) TestDefaultFilter(c *C) {
	fn, ok := lookupFilter("default")
	c.Assert(ok, Equals, true)
	v, err := fn([]*Value{Undefined("x"), String("fallback")}, NewOrderedMap(), NewEnvironment())
	c.Assert(err, IsNil)
	c.Check(v.Str(), Equals, "fallback")
}

func (s *FilterSuite) TestTruncateFilter(c *C) {
	fn, ok := lookupFilter("truncate")
	c.Assert(ok, Equals, true)
	kw := NewOrderedMap()
	kw.Set("length", Int(5))
	kw.Set("killwords", Bool(true))
	v, err := fn([]*Value{String("hello world")}, kw, NewEnvironment())
	c.Assert(err, IsNil)
	c.Check(v.Str(), Equals, "he...")
}

type TestCatalogSuite struct{}

var _ = Suite(&TestCatalogSuite{})

func (s *TestCatalogSuite) TestEvenOdd(c *C) {
	fn, ok := lookupTest("even")
	c.Assert(ok, Equals, true)
	v, err := fn([]*Value{Int(2)}, NewOrderedMap(), NewEnvironment())
	c.Assert(err, IsNil)
	c.Check(v.IsTrue(), Equals, true)
}

func (s *TestCatalogSuite) TestComparisonTests(c *C) {
	fn, ok := lookupTest("gt")
	c.Assert(ok, Equals, true)
	v, err := fn([]*Value{Int(5), Int(3)}, NewOrderedMap(), NewEnvironment())
	c.Assert(err, IsNil)
	c.Check(v.IsTrue(), Equals, true)
}
