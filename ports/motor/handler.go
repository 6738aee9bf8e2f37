package motor

import (
	"context"

	"github.com/edaniels/golog"

	"github.com/modbotics/brain/mcu"
	"github.com/modbotics/brain/ports"
)

// Factories returns the motor driver registry.
func Factories() map[string]ports.DriverFactory {
	return map[string]ports.DriverFactory{
		DriverName: NewDriver,
	}
}

// NewHandler builds the motor port handler with the standard motor
// drivers registered.
func NewHandler(ctx context.Context, iface mcu.Interface, logger golog.Logger) (*ports.Handler, error) {
	return ports.NewHandler(ctx, mcu.PortClassMotor, iface, Factories(), logger)
}
