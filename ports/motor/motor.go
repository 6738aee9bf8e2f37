// Package motor provides the DC motor port driver.
package motor

import (
	"context"
	"encoding/binary"
	"math"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/modbotics/brain/config"
	"github.com/modbotics/brain/events"
	"github.com/modbotics/brain/mcu"
	"github.com/modbotics/brain/ports"
)

// DriverName is the DC motor driver's registry name.
const DriverName = "DcMotor"

// statusLength is the size of a motor status payload: a status byte, an
// int32 position in motor degrees and a float32 speed in motor deg/s,
// both little endian.
const statusLength = 9

// A Config adjusts how logical motor values map to the hardware.
// Reversed flips the rotation direction. GearRatio scales wheel degrees
// to motor degrees and defaults to 1.
type Config struct {
	Reversed  bool    `json:"reversed" mapstructure:"reversed"`
	GearRatio float64 `json:"gear_ratio" mapstructure:"gear_ratio"`
}

type dcMotor struct {
	port          *ports.Port
	cfg           Config
	direction     float64
	statusChanged events.Aggregator[*ports.Port]

	mu       sync.Mutex
	status   mcu.MotorStatus
	position float64
	speed    float64
}

// NewDriver builds a DC motor driver from the configured attributes.
func NewDriver(port *ports.Port, conf *config.Driver) (ports.Driver, error) {
	var cfg Config
	if conf != nil && conf.Attributes != nil {
		if err := mapstructure.Decode(map[string]interface{}(conf.Attributes), &cfg); err != nil {
			return nil, errors.Wrap(err, "decoding motor config")
		}
	}
	if cfg.GearRatio == 0 {
		cfg.GearRatio = 1
	}

	d := &dcMotor{port: port, cfg: cfg, direction: 1}
	if cfg.Reversed {
		d.direction = -1
	}
	return d, nil
}

func (d *dcMotor) TypeName() string { return DriverName }

func (d *dcMotor) OnPortTypeSet(ctx context.Context) error { return nil }

// Config returns the decoded driver configuration.
func (d *dcMotor) Config() Config { return d.cfg }

func (d *dcMotor) UpdateStatus(data []byte) error {
	if len(data) < statusLength {
		return errors.Errorf("motor status payload too short: %d bytes", len(data))
	}
	if data[0] > byte(mcu.MotorStatusBlocked) {
		return errors.Errorf("invalid motor status %d", data[0])
	}

	status := mcu.MotorStatus(data[0])
	rawPos := int32(binary.LittleEndian.Uint32(data[1:5]))
	rawSpeed := math.Float32frombits(binary.LittleEndian.Uint32(data[5:9]))
	position := float64(rawPos) * d.direction / d.cfg.GearRatio
	speed := float64(rawSpeed) * d.direction / d.cfg.GearRatio

	d.mu.Lock()
	changed := status != d.status || position != d.position || speed != d.speed
	d.status, d.position, d.speed = status, position, speed
	d.mu.Unlock()

	if changed {
		d.statusChanged.Invoke(d.port)
	}
	return nil
}

func (d *dcMotor) StatusChanged() *events.Aggregator[*ports.Port] { return &d.statusChanged }

func (d *dcMotor) Close(ctx context.Context) error { return nil }

func (d *dcMotor) Status() mcu.MotorStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Position returns the last reported position in wheel degrees.
func (d *dcMotor) Position() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

// Speed returns the last reported speed in wheel deg/s.
func (d *dcMotor) Speed() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.speed
}

func (d *dcMotor) PowerCommand(power float64) (mcu.MotorCommand, error) {
	return mcu.MotorCommand{
		Port:  d.port.Index(),
		Kind:  mcu.ControlPower,
		Power: power * d.direction,
	}, nil
}

func (d *dcMotor) SpeedCommand(speed, powerLimit float64) (mcu.MotorCommand, error) {
	return mcu.MotorCommand{
		Port:       d.port.Index(),
		Kind:       mcu.ControlSpeed,
		Speed:      speed * d.direction * d.cfg.GearRatio,
		PowerLimit: powerLimit,
	}, nil
}

func (d *dcMotor) PositionCommand(degrees, speed, powerLimit float64) (mcu.MotorCommand, error) {
	return mcu.MotorCommand{
		Port:          d.port.Index(),
		Kind:          mcu.ControlPosition,
		PositionDelta: degrees * d.direction * d.cfg.GearRatio,
		Speed:         math.Abs(speed) * d.cfg.GearRatio,
		PowerLimit:    powerLimit,
	}, nil
}

// EncodeStatus builds a raw motor status payload from hardware-side
// values. The MCU sends this layout; fakes and tests use the encoder to
// produce it.
func EncodeStatus(status mcu.MotorStatus, positionDeg float64, speedDegPerSec float64) []byte {
	data := make([]byte, statusLength)
	data[0] = byte(status)
	binary.LittleEndian.PutUint32(data[1:5], uint32(int32(math.Round(positionDeg))))
	binary.LittleEndian.PutUint32(data[5:9], math.Float32bits(float32(speedDegPerSec)))
	return data
}
