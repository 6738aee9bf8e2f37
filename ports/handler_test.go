package ports

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/modbotics/brain/config"
	"github.com/modbotics/brain/mcu"
	"github.com/modbotics/brain/testutils/inject"
)

func TestNewHandler(t *testing.T) {
	logger := golog.NewTestLogger(t)
	ctx := context.Background()

	t.Run("sizes ports from the device", func(t *testing.T) {
		ts := newTestHandler(t)
		test.That(t, ts.handler.PortCount(), test.ShouldEqual, 4)
		test.That(t, ts.handler.Class(), test.ShouldEqual, mcu.PortClassMotor)
		test.That(t, ts.handler.Drivers(), test.ShouldResemble, []string{"Fake", DefaultDriverName})

		_, err := ts.handler.Port(0)
		test.That(t, err, test.ShouldNotBeNil)
		_, err = ts.handler.Port(5)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, ts.handler.Ports(), test.ShouldHaveLength, 4)
	})

	t.Run("missing null driver type code", func(t *testing.T) {
		dev := &inject.MCU{}
		dev.PortCountFunc = func(context.Context, mcu.PortClass) (int, error) { return 2, nil }
		dev.PortTypesFunc = func(context.Context, mcu.PortClass) (map[string]mcu.PortTypeCode, error) {
			return map[string]mcu.PortTypeCode{"Fake": 3}, nil
		}

		_, err := NewHandler(ctx, mcu.PortClassMotor, dev, nil, logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, DefaultDriverName)
	})

	t.Run("device failure propagates", func(t *testing.T) {
		dev := &inject.MCU{}
		dev.PortCountFunc = func(context.Context, mcu.PortClass) (int, error) {
			return 0, mcu.NewCommunicationError("PortCount", errors.New("timeout"))
		}

		_, err := NewHandler(ctx, mcu.PortClassSensor, dev, nil, logger)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, mcu.IsCommunicationError(err), test.ShouldBeTrue)
	})
}

func TestHandlerConfigurePort(t *testing.T) {
	ts := newTestHandler(t)
	ctx := context.Background()

	test.That(t, ts.handler.ConfigurePort(ctx, 2, &config.Driver{Name: "Fake"}), test.ShouldBeNil)
	p, _ := ts.handler.Port(2)
	test.That(t, p.Configured(), test.ShouldBeTrue)

	err := ts.handler.ConfigurePort(ctx, 9, &config.Driver{Name: "Fake"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no motor port 9")
}

func TestHandlerReset(t *testing.T) {
	ts := newTestHandler(t)
	ctx := context.Background()

	for idx := 1; idx <= 2; idx++ {
		test.That(t, ts.handler.ConfigurePort(ctx, idx, &config.Driver{Name: "Fake"}), test.ShouldBeNil)
	}
	*ts.calls = nil

	test.That(t, ts.handler.Reset(ctx), test.ShouldBeNil)
	for _, p := range ts.handler.Ports() {
		test.That(t, p.Configured(), test.ShouldBeFalse)
	}
	// every port is programmed back to the null type
	test.That(t, *ts.calls, test.ShouldResemble, []string{
		"set_type(1,0)", "set_type(2,0)", "set_type(3,0)", "set_type(4,0)",
	})
}

func TestHandlerResetCombinesErrors(t *testing.T) {
	ts := newTestHandler(t)
	ctx := context.Background()

	failing := map[int]bool{2: true, 4: true}
	ts.dev.SetPortTypeFunc = func(_ context.Context, _ mcu.PortClass, port int, _ mcu.PortTypeCode) error {
		if failing[port] {
			return mcu.NewCommunicationError("SetPortType", errors.Errorf("port %d stuck", port))
		}
		return nil
	}

	err := ts.handler.Reset(ctx)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "port 2 stuck")
	test.That(t, err.Error(), test.ShouldContainSubstring, "port 4 stuck")
}
