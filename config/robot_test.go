package config

import (
	"testing"

	"go.viam.com/test"
)

func motorSpec() *Driver {
	return &Driver{Name: "DcMotor", Attributes: AttributeMap{"reversed": true}}
}

func TestRobotValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := &Robot{
			Motors: map[int]*Driver{
				1: motorSpec(),
				2: motorSpec(),
				3: nil,
			},
			Sensors:     map[int]*Driver{1: {Name: "BumperSwitch"}},
			MotorNames:  map[string]int{"left": 1, "right": 2},
			SensorNames: map[string]int{"bumper": 1},
			Drivetrain:  Drivetrain{Left: []int{1}, Right: []int{2}},
		}
		test.That(t, cfg.Validate(""), test.ShouldBeNil)
	})

	t.Run("missing driver name", func(t *testing.T) {
		cfg := &Robot{Motors: map[int]*Driver{1: {}}}
		err := cfg.Validate("")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "driver")
	})

	t.Run("alias to unconfigured port", func(t *testing.T) {
		cfg := &Robot{MotorNames: map[string]int{"left": 4}}
		err := cfg.Validate("")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "unconfigured port 4")
	})

	t.Run("drivetrain uses unconfigured motor", func(t *testing.T) {
		cfg := &Robot{
			Motors:     map[int]*Driver{1: motorSpec()},
			Drivetrain: Drivetrain{Left: []int{1}, Right: []int{2}},
		}
		err := cfg.Validate("")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "motor port 2")
	})

	t.Run("motor on both sides", func(t *testing.T) {
		cfg := &Robot{
			Motors:     map[int]*Driver{1: motorSpec()},
			Drivetrain: Drivetrain{Left: []int{1}, Right: []int{1}},
		}
		err := cfg.Validate("")
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "both")
	})
}

func TestRobotAttributeMap(t *testing.T) {
	am := AttributeMap{
		"name":     "drive",
		"count":    2,
		"ratio":    1.5,
		"reversed": true,
		"jsonNum":  float64(3),
	}

	test.That(t, am.Has("name"), test.ShouldBeTrue)
	test.That(t, am.Has("absent"), test.ShouldBeFalse)
	test.That(t, am.GetString("name"), test.ShouldEqual, "drive")
	test.That(t, am.GetString("absent"), test.ShouldEqual, "")
	test.That(t, am.GetInt("count", 0), test.ShouldEqual, 2)
	test.That(t, am.GetInt("jsonNum", 0), test.ShouldEqual, 3)
	test.That(t, am.GetInt("absent", 7), test.ShouldEqual, 7)
	test.That(t, am.GetFloat64("ratio", 0), test.ShouldEqual, 1.5)
	test.That(t, am.GetFloat64("count", 0), test.ShouldEqual, 2.0)
	test.That(t, am.GetBool("reversed", false), test.ShouldBeTrue)
	test.That(t, am.GetBool("absent", true), test.ShouldBeTrue)

	test.That(t, func() { am.GetString("count") }, test.ShouldPanic)
	test.That(t, func() { am.GetInt("name", 0) }, test.ShouldPanic)
}
