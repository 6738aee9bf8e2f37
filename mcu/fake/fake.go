// Package fake implements an in-memory MCU and IMU for development and
// tests.
package fake

import (
	"context"
	"sync"

	"github.com/modbotics/brain/mcu"
	"github.com/modbotics/brain/ports"
	"github.com/modbotics/brain/ports/motor"
	"github.com/modbotics/brain/ports/sensor"
)

// Port counts of the simulated brain.
const (
	MotorPortCount  = 6
	SensorPortCount = 4
)

var _ mcu.Interface = (*MCU)(nil)

// MCU simulates the microcontroller in memory. Ports report whatever
// payloads were fed through SetPortPayload, port type programming and
// motor commands are recorded, and nothing ever fails.
type MCU struct {
	mu         sync.Mutex
	programmed map[mcu.PortClass]map[int]mcu.PortTypeCode
	payloads   map[mcu.PortClass]map[int][]byte
	commands   [][]mcu.MotorCommand
}

// New returns a fake MCU with the standard port counts and type codes.
func New() *MCU {
	return &MCU{
		programmed: map[mcu.PortClass]map[int]mcu.PortTypeCode{
			mcu.PortClassMotor:  {},
			mcu.PortClassSensor: {},
		},
		payloads: map[mcu.PortClass]map[int][]byte{
			mcu.PortClassMotor:  {},
			mcu.PortClassSensor: {},
		},
	}
}

// PortCount reports the simulated port count for the class.
func (m *MCU) PortCount(ctx context.Context, class mcu.PortClass) (int, error) {
	if class == mcu.PortClassMotor {
		return MotorPortCount, nil
	}
	return SensorPortCount, nil
}

// PortTypes reports type codes for every driver the standard handlers
// register.
func (m *MCU) PortTypes(ctx context.Context, class mcu.PortClass) (map[string]mcu.PortTypeCode, error) {
	if class == mcu.PortClassMotor {
		return map[string]mcu.PortTypeCode{
			ports.DefaultDriverName: 0,
			motor.DriverName:        1,
		}, nil
	}
	return map[string]mcu.PortTypeCode{
		ports.DefaultDriverName:   0,
		sensor.DriverNameHCSR04:   1,
		sensor.DriverNameBumper:   2,
		sensor.DriverNameEV3Color: 3,
	}, nil
}

// SetPortType records the code programmed on the port.
func (m *MCU) SetPortType(ctx context.Context, class mcu.PortClass, port int, code mcu.PortTypeCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.programmed[class][port] = code
	return nil
}

// SetMotorControlValues records the batch.
func (m *MCU) SetMotorControlValues(ctx context.Context, cmds []mcu.MotorCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := make([]mcu.MotorCommand, len(cmds))
	copy(batch, cmds)
	m.commands = append(m.commands, batch)
	return nil
}

// PortValue returns the port's current payload, empty if none was set.
func (m *MCU) PortValue(ctx context.Context, class mcu.PortClass, port int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := m.payloads[class][port]
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// SetPortPayload sets the raw payload PortValue reports for a port.
func (m *MCU) SetPortPayload(class mcu.PortClass, port int, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads[class][port] = append([]byte(nil), data...)
}

// SetMotorStatus sets a motor port's payload from decoded values.
func (m *MCU) SetMotorStatus(port int, status mcu.MotorStatus, positionDeg, speedDegPerSec float64) {
	m.SetPortPayload(mcu.PortClassMotor, port, motor.EncodeStatus(status, positionDeg, speedDegPerSec))
}

// ProgrammedType reports the last type code programmed on a port, zero
// if the port was never programmed.
func (m *MCU) ProgrammedType(class mcu.PortClass, port int) mcu.PortTypeCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.programmed[class][port]
}

// Commands returns every motor command batch received.
func (m *MCU) Commands() [][]mcu.MotorCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]mcu.MotorCommand, len(m.commands))
	copy(out, m.commands)
	return out
}
