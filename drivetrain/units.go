package drivetrain

import (
	"context"
	"fmt"
	"time"

	"github.com/modbotics/brain/mcu"
	"github.com/modbotics/brain/operation"
	"github.com/modbotics/brain/ports"
	"github.com/modbotics/brain/utils"
)

// A RotationUnit says how a Drive amount is measured.
type RotationUnit uint8

const (
	UnitRotations RotationUnit = iota
	UnitDegrees
	UnitSeconds
)

func (u RotationUnit) String() string {
	switch u {
	case UnitRotations:
		return "rotations"
	case UnitDegrees:
		return "degrees"
	case UnitSeconds:
		return "seconds"
	default:
		return fmt.Sprintf("RotationUnit(%d)", int(u))
	}
}

// A SpeedUnit says how a Drive speed is measured.
type SpeedUnit uint8

const (
	UnitDegPerSec SpeedUnit = iota
	UnitRPM
)

func (u SpeedUnit) String() string {
	switch u {
	case UnitDegPerSec:
		return "deg/s"
	case UnitRPM:
		return "rpm"
	default:
		return fmt.Sprintf("SpeedUnit(%d)", int(u))
	}
}

// An InvalidUnitError reports a Drive call with a measurement unit the
// drivetrain does not know.
type InvalidUnitError struct {
	Kind string
	Unit uint8
}

func (e *InvalidUnitError) Error() string {
	return fmt.Sprintf("invalid %s unit %d", e.Kind, e.Unit)
}

// Drive moves both sides together by amount in the given unit. Rotation
// and degree amounts run as a relative position move; second amounts
// run the wheels at the given speed until a timer finishes the
// operation. Speeds convert to deg/s wheel speeds.
func (d *Differential) Drive(
	ctx context.Context,
	amount float64, rotUnit RotationUnit,
	speed float64, speedUnit SpeedUnit,
	powerLimit float64,
) (*operation.Awaiter, error) {
	var degPerSec float64
	switch speedUnit {
	case UnitDegPerSec:
		degPerSec = speed
	case UnitRPM:
		degPerSec = utils.RPMToDegsPerSec(speed)
	default:
		return nil, &InvalidUnitError{Kind: "speed", Unit: uint8(speedUnit)}
	}

	switch rotUnit {
	case UnitRotations:
		deg := amount * 360
		return d.Move(ctx, deg, deg, degPerSec, degPerSec, powerLimit)
	case UnitDegrees:
		return d.Move(ctx, amount, amount, degPerSec, degPerSec, powerLimit)
	case UnitSeconds:
		return d.timedDrive(ctx, amount, degPerSec, powerLimit)
	default:
		return nil, &InvalidUnitError{Kind: "rotation", Unit: uint8(rotUnit)}
	}
}

// timedDrive runs the wheels at a fixed speed and finishes the
// operation after the given number of seconds. Cancelling the operation
// stops the timer.
func (d *Differential) timedDrive(ctx context.Context, seconds, degPerSec, powerLimit float64) (*operation.Awaiter, error) {
	d.logger.Debugw("timed drive", "seconds", seconds, "speed", degPerSec)
	if prev := d.takeAwaiter(); prev != nil {
		prev.Cancel()
	}

	d.mu.Lock()
	awaiter := d.installAwaiterLocked(d.updateTimed)
	err := d.applySpeedsLocked(ctx, degPerSec, degPerSec, powerLimit)
	d.mu.Unlock()
	if err != nil {
		return awaiter, err
	}

	timer := d.clock.AfterFunc(time.Duration(seconds*float64(time.Second)), awaiter.Finish)
	awaiter.OnCancelled(func() { timer.Stop() })
	return awaiter, nil
}

// updateTimed watches a timed drive. Completion comes from the timer;
// the motors only ever cancel it by blocking.
func (d *Differential) updateTimed(changed *ports.Port) {
	if changed.Motor().Status() != mcu.MotorStatusBlocked {
		return
	}
	if awaiter := d.currentAwaiter(); awaiter != nil {
		d.logger.Debug("motor blocked, cancel timed drive")
		awaiter.Cancel()
	} else {
		d.stopReleaseFromEvent()
	}
}
