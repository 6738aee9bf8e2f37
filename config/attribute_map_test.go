package config

import (
	"testing"

	"go.viam.com/test"
)

var sampleAttributes = AttributeMap{
	"name":     "motor",
	"count":    3,
	"ratio":    1.5,
	"whole":    2.0,
	"enabled":  true,
	"not_bool": "yes",
}

func TestAttributeMap(t *testing.T) {
	test.That(t, sampleAttributes.Has("name"), test.ShouldBeTrue)
	test.That(t, sampleAttributes.Has("missing"), test.ShouldBeFalse)

	test.That(t, sampleAttributes.GetString("name"), test.ShouldEqual, "motor")
	test.That(t, sampleAttributes.GetString("missing"), test.ShouldEqual, "")
	test.That(t, func() { sampleAttributes.GetString("count") }, test.ShouldPanic)

	test.That(t, sampleAttributes.GetInt("count", 0), test.ShouldEqual, 3)
	test.That(t, sampleAttributes.GetInt("missing", 7), test.ShouldEqual, 7)
	// JSON numbers arrive as float64 and convert when whole
	test.That(t, sampleAttributes.GetInt("whole", 0), test.ShouldEqual, 2)
	test.That(t, func() { sampleAttributes.GetInt("name", 0) }, test.ShouldPanic)

	test.That(t, sampleAttributes.GetFloat64("ratio", 0), test.ShouldEqual, 1.5)
	test.That(t, sampleAttributes.GetFloat64("count", 0), test.ShouldEqual, 3)
	test.That(t, sampleAttributes.GetFloat64("missing", 2.5), test.ShouldEqual, 2.5)

	test.That(t, sampleAttributes.GetBool("enabled", false), test.ShouldBeTrue)
	test.That(t, sampleAttributes.GetBool("missing", true), test.ShouldBeTrue)
	test.That(t, func() { sampleAttributes.GetBool("not_bool", false) }, test.ShouldPanic)
}
