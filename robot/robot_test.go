package robot

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"github.com/modbotics/brain/config"
	"github.com/modbotics/brain/mcu"
	"github.com/modbotics/brain/mcu/fake"
	"github.com/modbotics/brain/ports/motor"
	"github.com/modbotics/brain/ports/sensor"
	"github.com/modbotics/brain/testutils/inject"
)

func testConfig() *config.Robot {
	return &config.Robot{
		Motors: map[int]*config.Driver{
			1: {Name: motor.DriverName},
			2: {Name: motor.DriverName, Attributes: config.AttributeMap{"reversed": true}},
		},
		Sensors: map[int]*config.Driver{
			1: {Name: sensor.DriverNameBumper},
		},
		MotorNames:  map[string]int{"left_wheel": 1, "right_wheel": 2},
		SensorNames: map[string]int{"bumper": 1},
		Drivetrain:  config.Drivetrain{Left: []int{1}, Right: []int{2}},
	}
}

func newTestRobot(t *testing.T) (*Robot, *fake.MCU) {
	t.Helper()
	logger := golog.NewTestLogger(t)
	dev := fake.New()
	im := &inject.IMU{YawAngleFunc: func() float64 { return 0 }}
	r, err := New(context.Background(), dev, im, logger)
	test.That(t, err, test.ShouldBeNil)
	return r, dev
}

func TestConfigure(t *testing.T) {
	r, dev := newTestRobot(t)
	ctx := context.Background()
	test.That(t, r.Configure(ctx, testConfig()), test.ShouldBeNil)

	// listed ports got their drivers programmed, the rest are null
	test.That(t, dev.ProgrammedType(mcu.PortClassMotor, 1), test.ShouldEqual, mcu.PortTypeCode(1))
	test.That(t, dev.ProgrammedType(mcu.PortClassMotor, 2), test.ShouldEqual, mcu.PortTypeCode(1))
	test.That(t, dev.ProgrammedType(mcu.PortClassMotor, 3), test.ShouldEqual, mcu.PortTypeCode(0))
	test.That(t, dev.ProgrammedType(mcu.PortClassSensor, 1), test.ShouldEqual, mcu.PortTypeCode(2))

	// aliases resolve to the configured ports
	p, err := r.MotorPorts().ByName("left_wheel")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Index(), test.ShouldEqual, 1)
	_, err = r.MotorPorts().ByName("nope")
	test.That(t, err, test.ShouldNotBeNil)

	sp, err := r.SensorPorts().ByName("bumper")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sp.Configured(), test.ShouldBeTrue)

	// one motor per drivetrain side
	test.That(t, r.Drivetrain().Motors(), test.ShouldHaveLength, 2)

	test.That(t, r.Close(ctx), test.ShouldBeNil)
	test.That(t, dev.ProgrammedType(mcu.PortClassMotor, 1), test.ShouldEqual, mcu.PortTypeCode(0))
	test.That(t, dev.ProgrammedType(mcu.PortClassSensor, 1), test.ShouldEqual, mcu.PortTypeCode(0))
}

func TestConfigureRejectsBadConfig(t *testing.T) {
	r, _ := newTestRobot(t)

	cfg := testConfig()
	cfg.Drivetrain.Right = []int{5}
	err := r.Configure(context.Background(), cfg)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unconfigured motor port 5")
}

func TestReconfigure(t *testing.T) {
	r, dev := newTestRobot(t)
	ctx := context.Background()
	test.That(t, r.Configure(ctx, testConfig()), test.ShouldBeNil)

	cfg2 := &config.Robot{
		Motors:     map[int]*config.Driver{3: {Name: motor.DriverName}},
		MotorNames: map[string]int{"only": 3},
		Drivetrain: config.Drivetrain{Left: []int{3}},
	}
	test.That(t, r.Configure(ctx, cfg2), test.ShouldBeNil)

	test.That(t, dev.ProgrammedType(mcu.PortClassMotor, 1), test.ShouldEqual, mcu.PortTypeCode(0))
	test.That(t, dev.ProgrammedType(mcu.PortClassMotor, 3), test.ShouldEqual, mcu.PortTypeCode(1))

	// the old aliases and membership are gone
	_, err := r.MotorPorts().ByName("left_wheel")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, r.Drivetrain().Motors(), test.ShouldHaveLength, 1)
}

func TestStatusPoller(t *testing.T) {
	r, dev := newTestRobot(t)
	ctx := context.Background()
	test.That(t, r.Configure(ctx, testConfig()), test.ShouldBeNil)

	r.StartStatusPoller()
	defer func() {
		test.That(t, r.Close(ctx), test.ShouldBeNil)
	}()

	dev.SetMotorStatus(1, mcu.MotorStatusGoalReached, 180, 0)
	dev.SetPortPayload(mcu.PortClassSensor, 1, []byte{1})

	p, err := r.MotorPorts().ByName("left_wheel")
	test.That(t, err, test.ShouldBeNil)
	sp, err := r.SensorPorts().ByName("bumper")
	test.That(t, err, test.ShouldBeNil)

	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, p.Motor().Status(), test.ShouldEqual, mcu.MotorStatusGoalReached)
		test.That(tb, p.Motor().Position(), test.ShouldEqual, 180)
		test.That(tb, sp.Sensor().Value(), test.ShouldEqual, true)
	})
}
