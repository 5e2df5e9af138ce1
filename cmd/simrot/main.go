// Package main provides the simulation driver binary: it runs a scripted
// encounter against the rotation engine at a fixed tick interval and reports
// per-handler decision counts plus a survival summary.
package main

import (
	"flag"
	"log"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/calebrowe/weaver/internal/config"
	"github.com/calebrowe/weaver/internal/game/action"
	"github.com/calebrowe/weaver/internal/game/rotation"
	"github.com/calebrowe/weaver/internal/observability"
	"github.com/calebrowe/weaver/internal/scripting"
	"github.com/calebrowe/weaver/internal/sim"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/default.yaml", "path to configuration file")
	encounterPath := flag.String("encounter", "content/encounters/tankbuster.yaml", "path to encounter YAML script")
	decisionLogSize := flag.Int("decision-log", 256, "decision ring-buffer capacity")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	enc, err := sim.LoadEncounter(*encounterPath)
	if err != nil {
		logger.Fatal("loading encounter", zap.Error(err))
	}
	logger.Info("encounter loaded",
		zap.String("name", enc.Name),
		zap.Int("party", len(enc.Party)),
		zap.Int("enemies", len(enc.Enemies)),
		zap.Float64("duration_sec", enc.DurationSec),
	)

	catalog := action.DefaultCatalog()
	world := sim.NewWorld(enc, catalog, logger)

	var gate rotation.Gate
	if cfg.Scripting.ProfilePath != "" {
		vg, err := scripting.LoadVetoGate(cfg.Scripting.ProfilePath, cfg.Scripting.InstructionLimit, logger)
		if err != nil {
			logger.Fatal("loading veto profile", zap.Error(err))
		}
		defer vg.Close()
		gate = vg
	}

	decisionLog := observability.NewDecisionLog(logger, *decisionLogSize)
	sched, err := rotation.NewScheduler(logger, world, world, catalog, &cfg, decisionLog, gate)
	if err != nil {
		logger.Fatal("building scheduler", zap.Error(err))
	}
	if err := rotation.RegisterDefaults(sched, &cfg); err != nil {
		logger.Fatal("registering rotations", zap.Error(err))
	}

	interval := time.Duration(cfg.Engine.TickIntervalMs) * time.Millisecond
	dt := interval.Seconds()
	now := time.Now()
	acted := 0

	for !world.Done() {
		world.Advance(dt)
		now = now.Add(interval)

		self, ok := world.ControlledActor()
		if !ok || !self.IsAlive() {
			continue
		}
		if !sched.UpdateActiveRotation(self.Job) {
			// Transient during job changes; retry next tick.
			logger.Warn("no rotation for job", zap.String("job", string(self.Job)))
			continue
		}
		if sched.Execute(now) {
			acted++
		}
	}

	perHandler := make(map[string]int)
	for _, d := range decisionLog.Recent(*decisionLogSize) {
		perHandler[d.Handler]++
	}
	handlers := make([]string, 0, len(perHandler))
	for h := range perHandler {
		handlers = append(handlers, h)
	}
	sort.Strings(handlers)
	for _, h := range handlers {
		logger.Info("handler summary",
			zap.String("handler", h),
			zap.Int("decisions", perHandler[h]),
		)
	}

	logger.Info("encounter finished",
		zap.Uint64("ticks", sched.Tick()),
		zap.Int("actions", acted),
		zap.Int("deaths", world.Deaths),
		zap.Duration("elapsed", time.Since(start)),
	)
}
