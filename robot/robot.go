// Package robot assembles the port handlers, the drivetrain and the
// status poller into one robot instance driven by a parsed
// configuration.
package robot

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/modbotics/brain/config"
	"github.com/modbotics/brain/drivetrain"
	"github.com/modbotics/brain/imu"
	"github.com/modbotics/brain/mcu"
	"github.com/modbotics/brain/ports"
	"github.com/modbotics/brain/ports/motor"
	"github.com/modbotics/brain/ports/sensor"
)

// pollInterval is how often the status poller reads configured ports.
const pollInterval = 20 * time.Millisecond

// A Robot owns the port handlers of both classes, a differential
// drivetrain and a background poller feeding port drivers with fresh
// status payloads.
type Robot struct {
	logger golog.Logger

	motors  *ports.Handler
	sensors *ports.Handler
	drive   *drivetrain.Differential

	cancelCtx               context.Context
	cancel                  context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup

	mu          sync.Mutex
	motorPorts  *ports.Collection
	sensorPorts *ports.Collection
}

// New builds an unconfigured robot on top of iface and im. Every port
// starts out bound to the null driver.
func New(ctx context.Context, iface mcu.Interface, im imu.IMU, logger golog.Logger) (*Robot, error) {
	motors, err := motor.NewHandler(ctx, iface, logger)
	if err != nil {
		return nil, err
	}
	sensors, err := sensor.NewHandler(ctx, iface, logger)
	if err != nil {
		return nil, err
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	r := &Robot{
		logger:      logger,
		motors:      motors,
		sensors:     sensors,
		drive:       drivetrain.NewDifferential(iface, im, logger),
		cancelCtx:   cancelCtx,
		cancel:      cancel,
		motorPorts:  ports.NewCollection(motors.Ports()),
		sensorPorts: ports.NewCollection(sensors.Ports()),
	}
	return r, nil
}

// Configure applies cfg: every listed port gets its driver, every other
// port is unconfigured, and port aliases and drivetrain membership are
// rebuilt. A port that fails to configure is left unconfigured; the
// rest of the configuration still applies and the failures come back
// combined.
func (r *Robot) Configure(ctx context.Context, cfg *config.Robot) error {
	if err := cfg.Validate("robot"); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.drive.Reset()

	var result error
	result = multierr.Combine(result, r.applyPorts(ctx, r.motors, cfg.Motors))
	result = multierr.Combine(result, r.applyPorts(ctx, r.sensors, cfg.Sensors))

	motorPorts := ports.NewCollection(r.motors.Ports())
	for name, idx := range cfg.MotorNames {
		result = multierr.Combine(result, motorPorts.SetAlias(name, idx))
	}
	sensorPorts := ports.NewCollection(r.sensors.Ports())
	for name, idx := range cfg.SensorNames {
		result = multierr.Combine(result, sensorPorts.SetAlias(name, idx))
	}
	r.motorPorts, r.sensorPorts = motorPorts, sensorPorts

	for _, idx := range cfg.Drivetrain.Left {
		result = multierr.Combine(result, r.addDriveMotor(idx, r.drive.AddLeftMotor))
	}
	for _, idx := range cfg.Drivetrain.Right {
		result = multierr.Combine(result, r.addDriveMotor(idx, r.drive.AddRightMotor))
	}
	return result
}

func (r *Robot) applyPorts(ctx context.Context, h *ports.Handler, cfgs map[int]*config.Driver) error {
	var result error
	for idx := 1; idx <= h.PortCount(); idx++ {
		if err := h.ConfigurePort(ctx, idx, cfgs[idx]); err != nil {
			result = multierr.Combine(result, err)
		}
	}
	return result
}

func (r *Robot) addDriveMotor(idx int, add func(*ports.Port) error) error {
	p, err := r.motors.Port(idx)
	if err != nil {
		return err
	}
	return add(p)
}

// MotorPorts returns the motor port collection from the last applied
// configuration.
func (r *Robot) MotorPorts() *ports.Collection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.motorPorts
}

// SensorPorts returns the sensor port collection from the last applied
// configuration.
func (r *Robot) SensorPorts() *ports.Collection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sensorPorts
}

// Drivetrain returns the robot's differential drivetrain.
func (r *Robot) Drivetrain() *drivetrain.Differential {
	return r.drive
}

// StartStatusPoller begins feeding configured ports with status
// payloads read from the hardware. It runs until Close.
func (r *Robot) StartStatusPoller() {
	r.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		for {
			select {
			case <-r.cancelCtx.Done():
				return
			default:
			}
			if !goutils.SelectContextOrWait(r.cancelCtx, pollInterval) {
				return
			}
			r.pollOnce(r.cancelCtx)
		}
	}, r.activeBackgroundWorkers.Done)
}

func (r *Robot) pollOnce(ctx context.Context) {
	for _, h := range []*ports.Handler{r.motors, r.sensors} {
		for _, p := range h.Ports() {
			if !p.Configured() {
				continue
			}
			data, err := p.ReadValue(ctx)
			if err != nil {
				r.logger.Warnw("status poll failed", "class", p.Class(), "port", p.Index(), "error", err)
				continue
			}
			if len(data) == 0 {
				// no status yet
				continue
			}
			if err := p.UpdateStatus(data); err != nil {
				r.logger.Warnw("status update rejected", "class", p.Class(), "port", p.Index(), "error", err)
			}
		}
	}
}

// Close stops the poller and returns every port to the unconfigured
// state.
func (r *Robot) Close(ctx context.Context) error {
	r.cancel()
	r.activeBackgroundWorkers.Wait()

	r.drive.Reset()
	return multierr.Combine(
		r.motors.Reset(ctx),
		r.sensors.Reset(ctx),
	)
}
