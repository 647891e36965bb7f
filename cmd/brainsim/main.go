// Command brainsim runs a robot program against the simulated kernel: it
// loads a brain layout, boots the competition state machine, and exposes an
// interactive shell for moving the competition switch and poking devices.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/shlex"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"brainrtos-go/config"
	"brainrtos-go/devices"
	"brainrtos-go/kernel/sim"
	"brainrtos-go/ports"
	"brainrtos-go/robot"
	"brainrtos-go/rtos"
)

func main() {
	cfgPath := flag.String("config", "", "brain layout YAML")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	log, err := buildLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	brain := sim.New(sim.WithLogger(log))
	if *cfgPath != "" {
		layout, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatal("layout load failed", zap.Error(err))
		}
		if err := layout.Apply(brain); err != nil {
			log.Fatal("layout apply failed", zap.Error(err))
		}
	} else if _, err := brain.PlugMotor(1); err != nil {
		log.Fatal("default layout failed", zap.Error(err))
	}

	robot.Run(brain, func() robot.Robot { return newDemoRobot(log) })
	brain.StartSetup()
	brain.SetMode(sim.ModeDisabled)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error { return shell(ctx, brain, log) })
	if err := g.Wait(); err != nil {
		log.Fatal("shell failed", zap.Error(err))
	}
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	return cfg.Build()
}

// demoRobot drives the motor on port 1 from the master controller's left
// stick and logs mode transitions.
type demoRobot struct {
	log   *zap.Logger
	motor *devices.Motor
	pad   *devices.Controller
}

func newDemoRobot(log *zap.Logger) *demoRobot {
	arena := ports.Initialize()
	r := &demoRobot{log: log, pad: devices.NewController(devices.Master)}
	if p, err := arena.Take(1); err == nil {
		if m, err := devices.NewMotorDefault(p); err == nil {
			r.motor = m
		} else {
			log.Warn("no motor on port 1", zap.Error(err))
		}
	}
	return r
}

func (r *demoRobot) Disabled() {
	r.log.Info("disabled")
	if r.motor != nil {
		_ = r.motor.Stop()
	}
	var next robot.Mode
	rtos.Select(
		rtos.When(robot.ModeChanged(robot.ModeDisabled), func(m robot.Mode) { next = m }),
	)
	r.log.Info("leaving disabled", zap.String("next", next.String()))
}

func (r *demoRobot) Autonomous() {
	r.log.Info("autonomous")
	if r.motor != nil {
		_ = r.motor.MoveVelocity(100)
	}
	done := false
	for !done {
		rtos.Select(
			rtos.When(robot.ModeChanged(robot.ModeAutonomous), func(robot.Mode) { done = true }),
			rtos.When(rtos.After(2*time.Second), func(struct{}) {
				if r.motor != nil {
					_ = r.motor.Stop()
				}
			}),
		)
	}
	if r.motor != nil {
		_ = r.motor.Stop()
	}
}

func (r *demoRobot) Opcontrol() {
	r.log.Info("opcontrol")
	tick := rtos.NewInterval(20 * time.Millisecond)
	done := false
	for !done {
		rtos.Select(
			rtos.When(robot.ModeChanged(robot.ModeOpcontrol), func(robot.Mode) { done = true }),
			rtos.When(tick.Action(), func(struct{}) {
				if r.motor == nil {
					return
				}
				v, err := r.pad.Analog(devices.LeftY)
				if err != nil {
					return
				}
				_ = r.motor.Move(v)
			}),
		)
	}
	if r.motor != nil {
		_ = r.motor.Stop()
	}
}

func shell(ctx context.Context, brain *sim.Brain, log *zap.Logger) error {
	sc := bufio.NewScanner(os.Stdin)
	fmt.Println("brainsim: mode <disabled|auto|op> | stick <chan> <val> | adi <pin> <val> | plugged <port> | quit")
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		args, err := shlex.Split(sc.Text())
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "quit", "exit":
			return nil
		case "mode":
			if len(args) != 2 {
				fmt.Println("usage: mode <disabled|auto|op>")
				continue
			}
			switch args[1] {
			case "auto":
				brain.SetMode(sim.ModeAutonomous)
			case "op":
				brain.SetMode(sim.ModeOpcontrol)
			default:
				brain.SetMode(sim.ModeDisabled)
			}
		case "stick":
			if len(args) != 3 {
				fmt.Println("usage: stick <channel 0-3> <value>")
				continue
			}
			ch, _ := strconv.Atoi(args[1])
			v, _ := strconv.Atoi(args[2])
			brain.SetAnalog(0, ch, int32(v))
		case "adi":
			if len(args) != 3 {
				fmt.Println("usage: adi <pin 1-8> <value>")
				continue
			}
			pin, _ := strconv.Atoi(args[1])
			v, _ := strconv.Atoi(args[2])
			brain.SetAdiValue(ports.InternalExpanderPort, uint8(pin), int32(v))
		case "plugged":
			if len(args) != 2 {
				fmt.Println("usage: plugged <port>")
				continue
			}
			port, _ := strconv.Atoi(args[1])
			fmt.Println(ports.DeviceTypeFromRaw(brain.RegistryPluggedType(uint8(port))))
		default:
			fmt.Println("unknown command:", args[0])
		}
	}
	if err := sc.Err(); err != nil {
		log.Warn("stdin closed", zap.Error(err))
	}
	return nil
}
