// Package mcu defines the contract between the control core and the
// microcontroller that owns the robot's physical ports.
package mcu

import "context"

// PortClass separates the two kinds of physical ports the MCU exposes.
type PortClass uint8

// The supported port classes.
const (
	PortClassMotor PortClass = iota
	PortClassSensor
)

func (c PortClass) String() string {
	switch c {
	case PortClassMotor:
		return "motor"
	case PortClassSensor:
		return "sensor"
	default:
		return "unknown"
	}
}

// A PortTypeCode identifies a port mode in the MCU firmware. The codes
// the firmware supports are reported per class by PortTypes.
type PortTypeCode byte

// MotorStatus is the motion state a motor port reports in its status
// payload.
type MotorStatus uint8

// Motor status values as the hardware reports them.
const (
	MotorStatusNormal MotorStatus = iota
	MotorStatusGoalReached
	MotorStatusBlocked
)

func (s MotorStatus) String() string {
	switch s {
	case MotorStatusGoalReached:
		return "goal_reached"
	case MotorStatusBlocked:
		return "blocked"
	default:
		return "normal"
	}
}

// ControlKind selects how a MotorCommand is interpreted.
type ControlKind uint8

// The supported motor control modes.
const (
	// ControlPower drives the motor open loop at Power.
	ControlPower ControlKind = iota
	// ControlSpeed runs closed loop speed control at Speed deg/s.
	ControlSpeed
	// ControlPosition moves the motor by PositionDelta degrees relative
	// to its current position, at up to Speed deg/s.
	ControlPosition
)

// A MotorCommand is one motor port's share of a batched control request.
// PowerLimit caps drive strength while the command executes; zero means
// no limit. The limit is passed through to the firmware untouched.
type MotorCommand struct {
	Port          int
	Kind          ControlKind
	Power         float64
	Speed         float64
	PositionDelta float64
	PowerLimit    float64
}

// Interface is the request surface of the MCU transport. Implementations
// own framing and delivery; calls are synchronous and any of them can
// fail with a *CommunicationError. Ports are addressed by their 1-based
// index within their class.
type Interface interface {
	// PortCount reports how many ports of the class exist.
	PortCount(ctx context.Context, class PortClass) (int, error)

	// PortTypes reports the port modes the firmware supports for the
	// class, keyed by driver type name.
	PortTypes(ctx context.Context, class PortClass) (map[string]PortTypeCode, error)

	// SetPortType programs a port to the given mode.
	SetPortType(ctx context.Context, class PortClass, port int, code PortTypeCode) error

	// SetMotorControlValues applies the batch of commands in one request
	// so all addressed motors change together.
	SetMotorControlValues(ctx context.Context, cmds []MotorCommand) error

	// PortValue reads a port's current raw status payload.
	PortValue(ctx context.Context, class PortClass, port int) ([]byte, error)
}
