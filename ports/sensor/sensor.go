// Package sensor provides the sensor port drivers.
package sensor

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/modbotics/brain/config"
	"github.com/modbotics/brain/events"
	"github.com/modbotics/brain/mcu"
	"github.com/modbotics/brain/ports"
)

// The registered sensor driver names.
const (
	DriverNameBumper   = "BumperSwitch"
	DriverNameHCSR04   = "HC_SR04"
	DriverNameEV3Color = "EV3_Color"
)

// A convertFunc turns a raw payload into the driver's converted value.
// Empty payloads convert to nil; the sensor has not measured yet.
type convertFunc func(data []byte) (interface{}, error)

// baseSensor carries the state shared by all sensor drivers: the cached
// raw payload, its converted value and the change broadcast.
type baseSensor struct {
	port          *ports.Port
	name          string
	convert       convertFunc
	statusChanged events.Aggregator[*ports.Port]

	mu    sync.Mutex
	raw   []byte
	value interface{}
}

func newBaseSensor(port *ports.Port, name string, convert convertFunc) *baseSensor {
	return &baseSensor{port: port, name: name, convert: convert}
}

func (s *baseSensor) TypeName() string { return s.name }

func (s *baseSensor) OnPortTypeSet(ctx context.Context) error { return nil }

func (s *baseSensor) UpdateStatus(data []byte) error {
	value, err := s.convert(data)
	if err != nil {
		return errors.Wrapf(err, "%s port %d", s.name, s.port.Index())
	}

	s.mu.Lock()
	changed := !bytes.Equal(data, s.raw)
	s.raw = append([]byte(nil), data...)
	s.value = value
	s.mu.Unlock()

	if changed {
		s.statusChanged.Invoke(s.port)
	}
	return nil
}

func (s *baseSensor) StatusChanged() *events.Aggregator[*ports.Port] { return &s.statusChanged }

func (s *baseSensor) Close(ctx context.Context) error { return nil }

// Read pulls a fresh payload from the hardware, converts and caches it.
func (s *baseSensor) Read(ctx context.Context) (ports.SensorReading, error) {
	data, err := s.port.ReadValue(ctx)
	if err != nil {
		return ports.SensorReading{}, err
	}
	if err := s.UpdateStatus(data); err != nil {
		return ports.SensorReading{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return ports.SensorReading{Raw: s.raw, Value: s.value}, nil
}

// Value returns the last converted value, or nil before the first
// measurement.
func (s *baseSensor) Value() interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// NewBumperSwitch builds the bumper switch driver. It converts to a
// bool: pressed or not.
func NewBumperSwitch(port *ports.Port, _ *config.Driver) (ports.Driver, error) {
	return newBaseSensor(port, DriverNameBumper, convertBumper), nil
}

func convertBumper(data []byte) (interface{}, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return data[0] == 1, nil
}

// NewHCSR04 builds the ultrasonic distance driver. It converts to an
// int distance in centimeters.
func NewHCSR04(port *ports.Port, _ *config.Driver) (ports.Driver, error) {
	return newBaseSensor(port, DriverNameHCSR04, convertDistance), nil
}

func convertDistance(data []byte) (interface{}, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < 4 {
		return nil, errors.Errorf("distance payload too short: %d bytes", len(data))
	}
	return int(binary.LittleEndian.Uint32(data[:4])), nil
}

// NewEV3Color builds the EV3 color sensor driver. It converts to a
// Color.
func NewEV3Color(port *ports.Port, _ *config.Driver) (ports.Driver, error) {
	return newBaseSensor(port, DriverNameEV3Color, convertColor), nil
}

func convertColor(data []byte) (interface{}, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] > byte(ColorBrown) {
		return nil, errors.Errorf("invalid color code %d", data[0])
	}
	return Color(data[0]), nil
}

// Factories returns the sensor driver registry.
func Factories() map[string]ports.DriverFactory {
	return map[string]ports.DriverFactory{
		DriverNameBumper:   NewBumperSwitch,
		DriverNameHCSR04:   NewHCSR04,
		DriverNameEV3Color: NewEV3Color,
	}
}

// NewHandler builds the sensor port handler with the standard sensor
// drivers registered.
func NewHandler(ctx context.Context, iface mcu.Interface, logger golog.Logger) (*ports.Handler, error) {
	return ports.NewHandler(ctx, mcu.PortClassSensor, iface, Factories(), logger)
}
