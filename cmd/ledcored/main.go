// Command ledcored runs the LED indicator arbitration core as a
// long-lived daemon: load the pattern repository and settings from an
// INI file, select a backend family, wire the core, and serve D-Bus
// until terminated.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/sailfishos/mce-ledind/arbiter"
	"github.com/sailfishos/mce-ledind/backend"
	"github.com/sailfishos/mce-ledind/breathing"
	"github.com/sailfishos/mce-ledind/bus"
	"github.com/sailfishos/mce-ledind/config"
	"github.com/sailfishos/mce-ledind/core"
	"github.com/sailfishos/mce-ledind/dbusface"
	"github.com/sailfishos/mce-ledind/graph"
	"github.com/sailfishos/mce-ledind/repository"
	"github.com/sailfishos/mce-ledind/x/timex"
)

func main() {
	configPath := flag.StringP("config", "c", "/etc/mce/ledind.ini", "path to the LED indicator INI config")
	family := flag.Int("family", int(repository.FamilyNone), "backend family tag (see repository.Family)")
	i2cDevice := flag.String("i2c-device", "/dev/i2c-1", "I2C bus device node for engine backends")
	i2cAddr := flag.Uint("i2c-addr", 0x30, "I2C 7-bit slave address for engine backends")
	engine1Mux := flag.Uint("engine1-mux", 0, "engine-1 LED mux bitmask (engine-rgb only)")
	engine2Mux := flag.Uint("engine2-mux", 0, "engine-2 LED mux bitmask (engine-rgb only)")
	brightnessPath := flag.String("brightness-path", "", "sysfs brightness path (direct-mono only)")
	triggerPath := flag.String("trigger-path", "", "sysfs trigger path (direct-mono only)")
	delayOnPath := flag.String("delay-on-path", "", "sysfs delay_on path (direct-mono only)")
	delayOffPath := flag.String("delay-off-path", "", "sysfs delay_off path (direct-mono only)")
	sessionBus := flag.Bool("session-bus", false, "export on the session bus instead of the system bus")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	store, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).WithField("path", *configPath).Fatal("failed to load config")
	}

	fam := repository.Family(*family)
	repo, warnings := repository.Load(fam, store)
	for _, w := range warnings {
		log.WithField("component", "repository").Warn(w.String())
	}

	g := graph.New()
	for _, ruleName := range store.CombinationRuleNames() {
		fields, ok := store.Fields(store.PatternGroup(), ruleName)
		if !ok || len(fields) < 2 {
			log.WithField("component", "graph").WithField("rule", ruleName).Warn("combination rule has no definition or fewer than 2 fields")
			continue
		}
		derivedName, prereqs := fields[0], fields[1:]
		if err := g.AddRule(derivedName, prereqs); err != nil {
			log.WithField("component", "graph").WithError(err).Warn("rejected combination rule")
			continue
		}
		repo.Add(&repository.Pattern{Name: derivedName, Priority: derivedPriority(repo, prereqs), Visibility: repository.VisibilityAlways, Derived: true, Enabled: true})
	}

	var dbusConn *dbus.Conn
	if *sessionBus {
		dbusConn, err = dbus.ConnectSessionBus()
	} else {
		dbusConn, err = dbus.ConnectSystemBus()
	}
	if err != nil {
		log.WithError(err).Fatal("failed to connect to D-Bus")
	}
	defer dbusConn.Close()

	backendCfg := backend.Config{
		BrightnessPath: *brightnessPath,
		TriggerPath:    *triggerPath,
		DelayOnPath:    *delayOnPath,
		DelayOffPath:   *delayOffPath,
		I2CDevice:      *i2cDevice,
		I2CAddr:        uint16(*i2cAddr),
		Engine1Mux:     uint8(*engine1Mux),
		Engine2Mux:     uint8(*engine2Mux),
		Indicator:      dbusface.NewIndicator(dbusConn),
	}
	driver := backend.Build(fam, backendCfg, log)

	internalBus := bus.NewBus(16)
	conn := internalBus.NewConnection("ledcored")

	breathSup := breathing.New(conn, store, driver, nil)
	clock := timex.BootClock{}

	ledCore := core.New(conn, log, clock, repo, g, asArbiterDriver(driver), breathSup)

	facade := dbusface.New(dbusConn, conn, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := facade.Export(ctx); err != nil {
		log.WithError(err).Fatal("failed to export D-Bus object")
	}

	log.WithField("family", fam.String()).Info("ledcored starting")
	ledCore.Run(ctx)
	log.Info("ledcored stopped")
}

// asArbiterDriver narrows backend.Driver to arbiter.Driver at the one
// point the two packages meet, keeping core's dependency on arbiter
// one-directional.
func asArbiterDriver(d backend.Driver) arbiter.Driver { return d }

// derivedPriority gives a combination-rule pattern the lowest (most
// urgent) priority among its prerequisites, or 0 when none of them is
// loaded. The derived pattern is added after its prerequisites, so on
// equal priority the stable tie-break ranks it behind them.
func derivedPriority(repo *repository.Repository, prereqs []string) int {
	best := 1 << 30
	for _, name := range prereqs {
		if p := repo.Find(name); p != nil && p.Priority < best {
			best = p.Priority
		}
	}
	if best == 1<<30 {
		return 0
	}
	return best
}
