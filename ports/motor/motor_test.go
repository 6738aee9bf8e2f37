package motor

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/modbotics/brain/config"
	"github.com/modbotics/brain/mcu"
	"github.com/modbotics/brain/ports"
	"github.com/modbotics/brain/testutils/inject"
)

func newMotorHandler(t *testing.T) *ports.Handler {
	t.Helper()
	logger := golog.NewTestLogger(t)

	dev := &inject.MCU{}
	dev.PortCountFunc = func(context.Context, mcu.PortClass) (int, error) { return 2, nil }
	dev.PortTypesFunc = func(context.Context, mcu.PortClass) (map[string]mcu.PortTypeCode, error) {
		return map[string]mcu.PortTypeCode{ports.DefaultDriverName: 0, DriverName: 1}, nil
	}
	dev.SetPortTypeFunc = func(context.Context, mcu.PortClass, int, mcu.PortTypeCode) error {
		return nil
	}

	h, err := NewHandler(context.Background(), dev, logger)
	test.That(t, err, test.ShouldBeNil)
	return h
}

func configureMotor(t *testing.T, h *ports.Handler, idx int, attrs config.AttributeMap) *ports.Port {
	t.Helper()
	p, err := h.Port(idx)
	test.That(t, err, test.ShouldBeNil)
	err = p.Configure(context.Background(), &config.Driver{Name: DriverName, Attributes: attrs})
	test.That(t, err, test.ShouldBeNil)
	return p
}

func TestConfigDecode(t *testing.T) {
	h := newMotorHandler(t)

	t.Run("defaults", func(t *testing.T) {
		p := configureMotor(t, h, 1, nil)
		drv := p.Driver().(*dcMotor)
		test.That(t, drv.Config(), test.ShouldResemble, Config{Reversed: false, GearRatio: 1})
	})

	t.Run("round trip", func(t *testing.T) {
		attrs := config.AttributeMap{"reversed": true, "gear_ratio": 2.0}
		p := configureMotor(t, h, 1, attrs)
		drv := p.Driver().(*dcMotor)
		test.That(t, drv.Config(), test.ShouldResemble, Config{Reversed: true, GearRatio: 2})
		test.That(t, p.Config().Attributes, test.ShouldResemble, attrs)
	})

	t.Run("bad attributes leave the port unconfigured", func(t *testing.T) {
		p, _ := h.Port(2)
		err := p.Configure(context.Background(), &config.Driver{
			Name:       DriverName,
			Attributes: config.AttributeMap{"reversed": "yes please"},
		})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, p.Configured(), test.ShouldBeFalse)
	})
}

func TestCommands(t *testing.T) {
	h := newMotorHandler(t)

	t.Run("forward", func(t *testing.T) {
		p := configureMotor(t, h, 1, nil)
		m := p.Motor()

		cmd, err := m.PowerCommand(0.5)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cmd, test.ShouldResemble, mcu.MotorCommand{
			Port: 1, Kind: mcu.ControlPower, Power: 0.5,
		})

		cmd, err = m.SpeedCommand(90, 0.25)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cmd, test.ShouldResemble, mcu.MotorCommand{
			Port: 1, Kind: mcu.ControlSpeed, Speed: 90, PowerLimit: 0.25,
		})

		cmd, err = m.PositionCommand(360, -60, 0.5)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cmd, test.ShouldResemble, mcu.MotorCommand{
			Port: 1, Kind: mcu.ControlPosition, PositionDelta: 360, Speed: 60, PowerLimit: 0.5,
		})
	})

	t.Run("reversed and geared", func(t *testing.T) {
		p := configureMotor(t, h, 2, config.AttributeMap{"reversed": true, "gear_ratio": 2.0})
		m := p.Motor()

		cmd, err := m.PowerCommand(0.5)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cmd.Power, test.ShouldEqual, -0.5)

		cmd, err = m.SpeedCommand(90, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cmd.Speed, test.ShouldEqual, -180.0)

		cmd, err = m.PositionCommand(90, 30, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cmd.PositionDelta, test.ShouldEqual, -180.0)
		test.That(t, cmd.Speed, test.ShouldEqual, 60.0)
	})
}

func TestUpdateStatus(t *testing.T) {
	h := newMotorHandler(t)
	p := configureMotor(t, h, 1, nil)
	m := p.Motor()

	events := 0
	p.OnStatusChanged().Subscribe(func(*ports.Port) { events++ })

	data := EncodeStatus(mcu.MotorStatusGoalReached, 360, 45)
	test.That(t, p.UpdateStatus(data), test.ShouldBeNil)
	test.That(t, m.Status(), test.ShouldEqual, mcu.MotorStatusGoalReached)
	test.That(t, m.Position(), test.ShouldEqual, 360.0)
	test.That(t, m.Speed(), test.ShouldEqual, 45.0)
	test.That(t, events, test.ShouldEqual, 1)

	// an identical payload does not rebroadcast
	test.That(t, p.UpdateStatus(data), test.ShouldBeNil)
	test.That(t, events, test.ShouldEqual, 1)

	test.That(t, p.UpdateStatus(EncodeStatus(mcu.MotorStatusNormal, 360, 0)), test.ShouldBeNil)
	test.That(t, events, test.ShouldEqual, 2)

	err := p.UpdateStatus([]byte{0, 1})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "too short")

	err = p.UpdateStatus([]byte{9, 0, 0, 0, 0, 0, 0, 0, 0})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid motor status")
}

func TestUpdateStatusReversed(t *testing.T) {
	h := newMotorHandler(t)
	p := configureMotor(t, h, 1, config.AttributeMap{"reversed": true, "gear_ratio": 2.0})
	m := p.Motor()

	// hardware reports motor-side values; the driver maps them back to
	// wheel-side ones
	test.That(t, p.UpdateStatus(EncodeStatus(mcu.MotorStatusNormal, -360, -90)), test.ShouldBeNil)
	test.That(t, m.Position(), test.ShouldEqual, 180.0)
	test.That(t, m.Speed(), test.ShouldEqual, 45.0)
}
