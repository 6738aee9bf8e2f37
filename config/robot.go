package config

import (
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// A Driver names the port driver to bind and carries its attributes.
// A nil *Driver entry in a Robot leaves the port unconfigured.
type Driver struct {
	Name       string       `json:"driver"`
	Attributes AttributeMap `json:"config"`
}

// Validate ensures the driver entry can be applied.
func (d *Driver) Validate(path string) error {
	if d.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "driver")
	}
	return nil
}

// A Drivetrain assigns motor ports to the two sides of a differential
// drivetrain, by 1-based port index.
type Drivetrain struct {
	Left  []int `json:"left"`
	Right []int `json:"right"`
}

// A Robot is a fully parsed robot configuration. Port maps are keyed by
// 1-based port index.
type Robot struct {
	Motors      map[int]*Driver `json:"motors"`
	Sensors     map[int]*Driver `json:"sensors"`
	MotorNames  map[string]int  `json:"motor_names"`
	SensorNames map[string]int  `json:"sensor_names"`
	Drivetrain  Drivetrain      `json:"drivetrain"`
}

// Validate checks the configuration for internal consistency. Port
// numbers are checked against the actual port count when the
// configuration is applied, not here.
func (c *Robot) Validate(path string) error {
	for idx, d := range c.Motors {
		if d == nil {
			continue
		}
		if err := d.Validate(path); err != nil {
			return errors.Wrapf(err, "motor port %d", idx)
		}
	}
	for idx, d := range c.Sensors {
		if d == nil {
			continue
		}
		if err := d.Validate(path); err != nil {
			return errors.Wrapf(err, "sensor port %d", idx)
		}
	}

	for name, idx := range c.MotorNames {
		if _, ok := c.Motors[idx]; !ok {
			return utils.NewConfigValidationError(path,
				errors.Errorf("motor name %q refers to unconfigured port %d", name, idx))
		}
	}
	for name, idx := range c.SensorNames {
		if _, ok := c.Sensors[idx]; !ok {
			return utils.NewConfigValidationError(path,
				errors.Errorf("sensor name %q refers to unconfigured port %d", name, idx))
		}
	}

	seen := map[int]string{}
	for _, side := range []struct {
		name  string
		ports []int
	}{
		{"left", c.Drivetrain.Left},
		{"right", c.Drivetrain.Right},
	} {
		for _, idx := range side.ports {
			if d, ok := c.Motors[idx]; !ok || d == nil {
				return utils.NewConfigValidationError(path,
					errors.Errorf("drivetrain %s uses unconfigured motor port %d", side.name, idx))
			}
			if prev, ok := seen[idx]; ok {
				return utils.NewConfigValidationError(path,
					errors.Errorf("motor port %d assigned to both %s and %s", idx, prev, side.name))
			}
			seen[idx] = side.name
		}
	}

	return nil
}
