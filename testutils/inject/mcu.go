// Package inject provides dependency-injected doubles of the hardware
// interfaces for tests.
package inject

import (
	"context"

	"github.com/modbotics/brain/mcu"
)

// MCU is an injected MCU interface.
type MCU struct {
	mcu.Interface
	PortCountFunc             func(ctx context.Context, class mcu.PortClass) (int, error)
	PortTypesFunc             func(ctx context.Context, class mcu.PortClass) (map[string]mcu.PortTypeCode, error)
	SetPortTypeFunc           func(ctx context.Context, class mcu.PortClass, port int, code mcu.PortTypeCode) error
	SetMotorControlValuesFunc func(ctx context.Context, cmds []mcu.MotorCommand) error
	PortValueFunc             func(ctx context.Context, class mcu.PortClass, port int) ([]byte, error)
}

// PortCount calls the injected PortCount or the real version.
func (m *MCU) PortCount(ctx context.Context, class mcu.PortClass) (int, error) {
	if m.PortCountFunc == nil {
		return m.Interface.PortCount(ctx, class)
	}
	return m.PortCountFunc(ctx, class)
}

// PortTypes calls the injected PortTypes or the real version.
func (m *MCU) PortTypes(ctx context.Context, class mcu.PortClass) (map[string]mcu.PortTypeCode, error) {
	if m.PortTypesFunc == nil {
		return m.Interface.PortTypes(ctx, class)
	}
	return m.PortTypesFunc(ctx, class)
}

// SetPortType calls the injected SetPortType or the real version.
func (m *MCU) SetPortType(ctx context.Context, class mcu.PortClass, port int, code mcu.PortTypeCode) error {
	if m.SetPortTypeFunc == nil {
		return m.Interface.SetPortType(ctx, class, port, code)
	}
	return m.SetPortTypeFunc(ctx, class, port, code)
}

// SetMotorControlValues calls the injected SetMotorControlValues or the
// real version.
func (m *MCU) SetMotorControlValues(ctx context.Context, cmds []mcu.MotorCommand) error {
	if m.SetMotorControlValuesFunc == nil {
		return m.Interface.SetMotorControlValues(ctx, cmds)
	}
	return m.SetMotorControlValuesFunc(ctx, cmds)
}

// PortValue calls the injected PortValue or the real version.
func (m *MCU) PortValue(ctx context.Context, class mcu.PortClass, port int) ([]byte, error) {
	if m.PortValueFunc == nil {
		return m.Interface.PortValue(ctx, class, port)
	}
	return m.PortValueFunc(ctx, class, port)
}
