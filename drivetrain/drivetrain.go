// Package drivetrain coordinates the motors of a differential drive
// robot: speed and position commands across the left and right sides,
// IMU-feedback turning and completion tracking for asynchronous moves.
package drivetrain

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/modbotics/brain/events"
	"github.com/modbotics/brain/imu"
	"github.com/modbotics/brain/mcu"
	"github.com/modbotics/brain/operation"
	"github.com/modbotics/brain/ports"
	"github.com/modbotics/brain/utils"
)

const (
	// yawKp converts yaw error in degrees to a wheel speed in deg/s
	// while turning.
	yawKp = 10
	// yawTolerance is the yaw error below which a turn counts as done.
	yawTolerance = 1.0
	// yawStallTimeout cancels a turn when the yaw has not moved for this
	// long.
	yawStallTimeout = 3 * time.Second
)

type motorSubs struct {
	status events.Subscription
	config events.Subscription
}

// A Differential drives the left and right motor groups of a
// differential drivetrain together. Motor ports join through
// AddLeftMotor/AddRightMotor and leave automatically when their port is
// reconfigured. At most one asynchronous operation is outstanding at a
// time; starting a new one cancels the previous operation's Awaiter.
//
// The drivetrain is passive: completion and steering decisions run on
// the goroutine delivering motor status events. One mutex serializes
// command issue and event handling; Awaiter transitions always happen
// outside it so completion callbacks may call back in.
type Differential struct {
	iface  mcu.Interface
	imu    imu.IMU
	logger golog.Logger
	clock  clock.Clock
	bgCtx  context.Context

	mu     sync.Mutex
	motors []*ports.Port
	left   []*ports.Port
	right  []*ports.Port
	subs   map[*ports.Port]motorSubs

	awaiter *operation.Awaiter
	update  func(changed *ports.Port)

	targetYaw     float64
	maxTurnSpeed  float64
	maxTurnPower  float64
	lastYaw       float64
	lastYawChange time.Time
}

// NewDifferential returns an empty drivetrain talking to iface and
// steering by im's yaw.
func NewDifferential(iface mcu.Interface, im imu.IMU, logger golog.Logger) *Differential {
	return &Differential{
		iface:  iface,
		imu:    im,
		logger: logger,
		clock:  clock.New(),
		bgCtx:  context.Background(),
		subs:   map[*ports.Port]motorSubs{},
	}
}

// Motors returns the combined motor group.
func (d *Differential) Motors() []*ports.Port {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*ports.Port, len(d.motors))
	copy(out, d.motors)
	return out
}

// AddLeftMotor adds a motor port to the left group. A port can be in
// only one group at a time.
func (d *Differential) AddLeftMotor(p *ports.Port) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.addMotorLocked(p); err != nil {
		return err
	}
	d.left = append(d.left, p)
	d.logger.Debugw("motor added to left side", "port", p.Index())
	return nil
}

// AddRightMotor adds a motor port to the right group. A port can be in
// only one group at a time.
func (d *Differential) AddRightMotor(p *ports.Port) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.addMotorLocked(p); err != nil {
		return err
	}
	d.right = append(d.right, p)
	d.logger.Debugw("motor added to right side", "port", p.Index())
	return nil
}

func (d *Differential) addMotorLocked(p *ports.Port) error {
	if _, ok := d.subs[p]; ok {
		return errors.Errorf("motor port %d is already part of the drivetrain", p.Index())
	}
	d.motors = append(d.motors, p)
	d.subs[p] = motorSubs{
		status: p.OnStatusChanged().Subscribe(d.onMotorStatusChanged),
		config: p.OnConfigChanged().Subscribe(d.onMotorConfigChanged),
	}
	return nil
}

// Reset cancels any outstanding operation, unsubscribes from every
// motor and clears both groups. Resetting an empty drivetrain is a
// no-op.
func (d *Differential) Reset() {
	if prev := d.takeAwaiter(); prev != nil {
		prev.Cancel()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for p, subs := range d.subs {
		p.OnStatusChanged().Unsubscribe(subs.status)
		p.OnConfigChanged().Unsubscribe(subs.config)
	}
	d.subs = map[*ports.Port]motorSubs{}
	d.motors, d.left, d.right = nil, nil, nil
	d.update = nil
}

// onMotorConfigChanged drops a motor whose port is being reconfigured.
// The two-phase notification fires it twice per reconfigure; removal is
// idempotent.
func (d *Differential) onMotorConfigChanged(cc ports.ConfigChange) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removeMotorLocked(cc.Port)
}

func (d *Differential) removeMotorLocked(p *ports.Port) {
	if _, ok := d.subs[p]; !ok {
		return
	}
	delete(d.subs, p)
	d.motors = removePort(d.motors, p)
	d.left = removePort(d.left, p)
	d.right = removePort(d.right, p)
	d.logger.Debugw("motor removed from drivetrain", "port", p.Index())
}

func removePort(list []*ports.Port, p *ports.Port) []*ports.Port {
	for i, other := range list {
		if other == p {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (d *Differential) onMotorStatusChanged(changed *ports.Port) {
	d.mu.Lock()
	update := d.update
	d.mu.Unlock()
	if update != nil {
		update(changed)
	}
}

// SetSpeeds runs both sides at the given wheel speeds in deg/s, open
// ended. An outstanding operation is cancelled first. A motor reporting
// blocked afterwards stops and releases the drivetrain.
func (d *Differential) SetSpeeds(ctx context.Context, left, right, powerLimit float64) error {
	d.logger.Debugw("set speeds", "left", left, "right", right)
	if prev := d.takeAwaiter(); prev != nil {
		prev.Cancel()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.update = d.updateMove
	return d.applySpeedsLocked(ctx, left, right, powerLimit)
}

// Move runs a relative position move: each side's motors travel the
// given wheel degrees at up to the given speeds (deg/s, zero for the
// firmware default). The returned Awaiter finishes when every motor in
// the combined group reports goal reached and cancels when any reports
// blocked. An outstanding operation is cancelled first.
//
// A hardware failure while issuing the batch is returned alongside the
// installed Awaiter; the caller decides whether to stop and release.
func (d *Differential) Move(
	ctx context.Context,
	leftDeg, rightDeg float64,
	leftSpeed, rightSpeed float64,
	powerLimit float64,
) (*operation.Awaiter, error) {
	d.logger.Debugw("move", "leftDeg", leftDeg, "rightDeg", rightDeg)
	if prev := d.takeAwaiter(); prev != nil {
		prev.Cancel()
	}

	d.mu.Lock()
	cmds := make([]mcu.MotorCommand, 0, len(d.motors))
	for _, p := range d.left {
		cmd, err := p.Motor().PositionCommand(leftDeg, leftSpeed, powerLimit)
		if err != nil {
			d.mu.Unlock()
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	for _, p := range d.right {
		cmd, err := p.Motor().PositionCommand(rightDeg, rightSpeed, powerLimit)
		if err != nil {
			d.mu.Unlock()
			return nil, err
		}
		cmds = append(cmds, cmd)
	}

	awaiter := d.installAwaiterLocked(d.updateMove)
	err := d.iface.SetMotorControlValues(ctx, cmds)
	d.mu.Unlock()
	return awaiter, err
}

// Turn rotates the robot in place by turnAngle degrees relative to the
// current yaw, positive angles turning toward positive yaw. Wheel
// speeds follow the yaw error, clamped to wheelSpeed. The returned
// Awaiter finishes when the yaw error drops below a degree; it cancels
// when a motor reports blocked or the yaw stops changing for three
// seconds. An outstanding operation is cancelled first.
//
// A hardware failure while issuing the first steering command is
// returned alongside the installed Awaiter.
func (d *Differential) Turn(
	ctx context.Context,
	turnAngle, wheelSpeed, powerLimit float64,
) (*operation.Awaiter, error) {
	d.logger.Debugw("turn", "angle", turnAngle, "wheelSpeed", wheelSpeed)
	if prev := d.takeAwaiter(); prev != nil {
		prev.Cancel()
	}

	d.mu.Lock()
	yaw := d.imu.YawAngle()
	d.targetYaw = turnAngle + yaw
	d.maxTurnSpeed = wheelSpeed
	d.maxTurnPower = powerLimit
	d.lastYaw = yaw
	d.lastYawChange = d.clock.Now()

	awaiter := d.installAwaiterLocked(d.updateTurn)
	err := d.applyTurnSpeedLocked(ctx)
	d.mu.Unlock()
	return awaiter, err
}

// StopRelease cancels any outstanding operation and lets the motors
// spin freely.
func (d *Differential) StopRelease(ctx context.Context) error {
	d.logger.Debug("stop and release")
	if prev := d.takeAwaiter(); prev != nil {
		prev.Cancel()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applyReleaseLocked(ctx)
}

// installAwaiterLocked creates the operation's Awaiter, wires the motor
// release to both outcomes and makes it the outstanding operation.
func (d *Differential) installAwaiterLocked(update func(*ports.Port)) *operation.Awaiter {
	awaiter := operation.NewAwaiter()
	awaiter.OnCancelled(d.releaseOnCompletion)
	awaiter.OnResult(d.releaseOnCompletion)
	d.awaiter = awaiter
	d.update = update
	return awaiter
}

func (d *Differential) takeAwaiter() *operation.Awaiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	awaiter := d.awaiter
	d.awaiter = nil
	return awaiter
}

// updateMove tracks a position move or plain speed run. With an
// operation outstanding, any blocked motor cancels it and the operation
// finishes once every motor in the combined group reports goal reached.
// Without one, a blocked motor stops and releases the drivetrain.
func (d *Differential) updateMove(changed *ports.Port) {
	blocked := changed.Motor().Status() == mcu.MotorStatusBlocked

	d.mu.Lock()
	awaiter := d.awaiter
	goalReached := true
	for _, p := range d.motors {
		if p.Motor().Status() != mcu.MotorStatusGoalReached {
			goalReached = false
			break
		}
	}
	d.mu.Unlock()

	switch {
	case awaiter != nil && blocked:
		d.logger.Debug("motor blocked, stop")
		awaiter.Cancel()
	case awaiter != nil && goalReached:
		d.logger.Debug("goal reached")
		awaiter.Finish()
	case awaiter == nil && blocked:
		d.logger.Debug("motor blocked, stop")
		d.stopReleaseFromEvent()
	}
}

// updateTurn steers toward the target yaw on every motor status event.
func (d *Differential) updateTurn(changed *ports.Port) {
	if changed.Motor().Status() == mcu.MotorStatusBlocked {
		awaiter := d.currentAwaiter()
		if awaiter != nil {
			d.logger.Debug("motor blocked, cancel turn")
			awaiter.Cancel()
		} else {
			d.stopReleaseFromEvent()
		}
		return
	}

	d.mu.Lock()
	awaiter := d.awaiter
	yaw := d.imu.YawAngle()

	if math.Abs(d.targetYaw-yaw) < yawTolerance {
		d.update = nil
		d.mu.Unlock()
		if awaiter != nil {
			d.logger.Debug("turn finished")
			awaiter.Finish()
		} else {
			d.stopReleaseFromEvent()
		}
		return
	}

	if yaw != d.lastYaw {
		d.lastYaw = yaw
		d.lastYawChange = d.clock.Now()
	} else if d.clock.Since(d.lastYawChange) > yawStallTimeout {
		d.mu.Unlock()
		if awaiter != nil {
			d.logger.Debug("yaw stalled, cancel turn")
			awaiter.Cancel()
		} else {
			d.stopReleaseFromEvent()
		}
		return
	}

	err := d.applyTurnSpeedLocked(d.bgCtx)
	d.mu.Unlock()
	if err != nil {
		d.logger.Warnw("steering update failed", "error", err)
	}
}

// applyTurnSpeedLocked drives the sides in opposite directions at a
// speed proportional to the yaw error, clamped to the turn's limit.
func (d *Differential) applyTurnSpeedLocked(ctx context.Context) error {
	p := utils.Clamp((d.targetYaw-d.imu.YawAngle())*yawKp, -d.maxTurnSpeed, d.maxTurnSpeed)
	return d.applySpeedsLocked(ctx, -p, p, d.maxTurnPower)
}

func (d *Differential) applySpeedsLocked(ctx context.Context, left, right, powerLimit float64) error {
	cmds := make([]mcu.MotorCommand, 0, len(d.motors))
	for _, p := range d.left {
		cmd, err := p.Motor().SpeedCommand(left, powerLimit)
		if err != nil {
			return err
		}
		cmds = append(cmds, cmd)
	}
	for _, p := range d.right {
		cmd, err := p.Motor().SpeedCommand(right, powerLimit)
		if err != nil {
			return err
		}
		cmds = append(cmds, cmd)
	}
	return d.iface.SetMotorControlValues(ctx, cmds)
}

func (d *Differential) applyReleaseLocked(ctx context.Context) error {
	cmds := make([]mcu.MotorCommand, 0, len(d.motors))
	for _, p := range d.left {
		cmd, err := p.Motor().PowerCommand(0)
		if err != nil {
			return err
		}
		cmds = append(cmds, cmd)
	}
	for _, p := range d.right {
		cmd, err := p.Motor().PowerCommand(0)
		if err != nil {
			return err
		}
		cmds = append(cmds, cmd)
	}
	return d.iface.SetMotorControlValues(ctx, cmds)
}

// releaseOnCompletion is registered on every operation Awaiter so the
// motors release whichever way the operation ends.
func (d *Differential) releaseOnCompletion() {
	d.mu.Lock()
	err := d.applyReleaseLocked(d.bgCtx)
	d.mu.Unlock()
	if err != nil {
		d.logger.Warnw("releasing motors failed", "error", err)
	}
}

func (d *Differential) stopReleaseFromEvent() {
	if err := d.StopRelease(d.bgCtx); err != nil {
		d.logger.Warnw("stop and release failed", "error", err)
	}
}

// currentAwaiter snapshots the outstanding Awaiter for a completion
// decision made on the event path. Completed operations stay installed
// until the next command replaces them; transitions on an already
// settled Awaiter are no-ops.
func (d *Differential) currentAwaiter() *operation.Awaiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.awaiter
}
