// Package main contains a command to watch robot port activity on a
// simulated MCU.
package main

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/modbotics/brain/config"
	"github.com/modbotics/brain/mcu"
	"github.com/modbotics/brain/mcu/fake"
	"github.com/modbotics/brain/ports"
	"github.com/modbotics/brain/ports/motor"
	"github.com/modbotics/brain/ports/sensor"
	"github.com/modbotics/brain/robot"
)

var logger = golog.NewDevelopmentLogger("portmon")

func main() {
	utils.ContextualMainQuit(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"config,usage=robot config file"`
	Spin       bool   `flag:"spin,usage=keep the drivetrain turning while watching"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg := defaultConfig()
	if argsParsed.ConfigFile != "" {
		var err error
		cfg, err = config.Read(argsParsed.ConfigFile)
		if err != nil {
			return err
		}
	}

	return watchPorts(ctx, cfg, argsParsed.Spin)
}

func defaultConfig() *config.Robot {
	return &config.Robot{
		Motors: map[int]*config.Driver{
			1: {Name: motor.DriverName},
			2: {Name: motor.DriverName, Attributes: config.AttributeMap{"reversed": true}},
		},
		Sensors: map[int]*config.Driver{
			1: {Name: sensor.DriverNameBumper},
			2: {Name: sensor.DriverNameHCSR04},
		},
		MotorNames:  map[string]int{"left_wheel": 1, "right_wheel": 2},
		SensorNames: map[string]int{"bumper": 1, "distance": 2},
		Drivetrain:  config.Drivetrain{Left: []int{1}, Right: []int{2}},
	}
}

func watchPorts(ctx context.Context, cfg *config.Robot, spin bool) (err error) {
	dev := fake.New()
	im := fake.NewIMU()

	rob, err := robot.New(ctx, dev, im, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, rob.Close(context.Background()))
	}()

	if err := rob.Configure(ctx, cfg); err != nil {
		return err
	}

	subscribePorts(rob)
	rob.StartStatusPoller()

	if spin {
		if _, err := rob.Drivetrain().Turn(ctx, 360, 60, 0); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	var once bool
	var step float64
	for {
		err := func() error {
			defer utils.ContextMainIterFunc(ctx)()
			if !once {
				once = true
				defer utils.ContextMainReadyFunc(ctx)()
			}
			if !utils.SelectContextOrWaitChan(ctx, ticker.C) {
				return ctx.Err()
			}

			// nudge the simulated hardware so the drivers see activity
			step++
			im.SetYawAngle(step * 5)
			dev.SetMotorStatus(1, mcu.MotorStatusNormal, step*30, 30)
			dev.SetMotorStatus(2, mcu.MotorStatusNormal, step*30, 30)
			dev.SetPortPayload(mcu.PortClassSensor, 1, []byte{byte(int(step) % 2)})
			dev.SetPortPayload(mcu.PortClassSensor, 2, distancePayload(step))
			return nil
		}()
		if err != nil {
			return err
		}
	}
}

func subscribePorts(rob *robot.Robot) {
	for _, p := range rob.MotorPorts().All() {
		if !p.Configured() {
			continue
		}
		p.OnStatusChanged().Subscribe(func(changed *ports.Port) {
			logger.Infow("motor status",
				"port", changed.Index(),
				"status", changed.Motor().Status(),
				"position", changed.Motor().Position(),
				"speed", changed.Motor().Speed())
		})
	}
	for _, p := range rob.SensorPorts().All() {
		if !p.Configured() {
			continue
		}
		p.OnStatusChanged().Subscribe(func(changed *ports.Port) {
			logger.Infow("sensor value", "port", changed.Index(), "value", changed.Sensor().Value())
		})
	}
}

func distancePayload(step float64) []byte {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, uint32(100+int(step)*10))
	return data
}
