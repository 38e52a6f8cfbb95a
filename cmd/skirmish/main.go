// Package main provides the skirmish binary that loads content, builds a
// battle from a scenario file, and runs the simulation to completion.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/coldfront-games/flurry/internal/config"
	"github.com/coldfront-games/flurry/internal/game/ability"
	"github.com/coldfront-games/flurry/internal/game/actor"
	"github.com/coldfront-games/flurry/internal/game/encounter"
	"github.com/coldfront-games/flurry/internal/game/rng"
	"github.com/coldfront-games/flurry/internal/game/scenario"
	"github.com/coldfront-games/flurry/internal/game/sim"
	"github.com/coldfront-games/flurry/internal/game/status"
	"github.com/coldfront-games/flurry/internal/game/terrain"
	"github.com/coldfront-games/flurry/internal/observability"
	"github.com/coldfront-games/flurry/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "config.yaml", "path to configuration file")
	scenarioPath := flag.String("scenario", "content/scenarios/tundra.yaml", "path to scenario YAML file")
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

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	roller := rng.NewRoller(rng.NewSeededSource(seed), logger)

	logger.Info("starting skirmish",
		zap.String("scenario", *scenarioPath),
		zap.Int64("seed", seed),
	)

	// Load content.
	contentStart := time.Now()
	abilities, err := ability.LoadDirectory(cfg.Content.AbilitiesDir)
	if err != nil {
		logger.Fatal("loading ability definitions", zap.Error(err))
	}
	effects, err := status.LoadDirectory(cfg.Content.EffectsDir)
	if err != nil {
		logger.Fatal("loading effect definitions", zap.Error(err))
	}
	encounters := encounter.NewRegistry()
	if cfg.Content.EncountersDir != "" {
		if info, statErr := os.Stat(cfg.Content.EncountersDir); statErr == nil && info.IsDir() {
			encounters, err = encounter.LoadDirectory(cfg.Content.EncountersDir)
			if err != nil {
				logger.Fatal("loading encounter definitions", zap.Error(err))
			}
		}
	}
	logger.Info("content loaded",
		zap.Int("abilities", abilities.Count()),
		zap.Int("effects", len(effects.All())),
		zap.Int("encounters", encounters.Count()),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Load scenario.
	scn, err := scenario.Load(*scenarioPath)
	if err != nil {
		logger.Fatal("loading scenario", zap.Error(err))
	}
	actors, brains, bindings, err := scenario.Build(scn, abilities, roller, scenario.EngageDefaults{
		AggroRadius: cfg.Engage.AggroRadius,
		LeashRadius: cfg.Engage.LeashRadius,
	})
	if err != nil {
		logger.Fatal("building scenario", zap.Error(err))
	}
	logger.Info("scenario built",
		zap.String("id", scn.ID),
		zap.Int("actors", len(actors)),
		zap.Int("encounter_bindings", len(bindings)),
	)

	// Initialise scripting engine; empty scripts dir disables it.
	var scriptMgr *scripting.Manager
	if cfg.Content.ScriptsDir != "" {
		scriptStart := time.Now()
		scriptMgr = scripting.NewManager(roller, logger)
		defer scriptMgr.Close()
		wireScriptCallbacks(scriptMgr, actors, effects, logger)

		if err := scriptMgr.LoadGlobal(cfg.Content.ScriptsDir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading global scripts",
				zap.String("dir", cfg.Content.ScriptsDir), zap.Error(err))
		}

		// Each subdirectory holds the scripts for one encounter VM.
		entries, err := os.ReadDir(cfg.Content.ScriptsDir)
		if err != nil {
			logger.Fatal("reading scripts directory", zap.Error(err))
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			dir := filepath.Join(cfg.Content.ScriptsDir, e.Name())
			if err := scriptMgr.LoadEncounter(e.Name(), dir, cfg.Scripting.InstructionLimit); err != nil {
				logger.Fatal("loading encounter scripts",
					zap.String("encounter", e.Name()), zap.Error(err))
			}
			logger.Info("encounter scripts loaded",
				zap.String("encounter", e.Name()), zap.String("dir", dir))
		}
		logger.Info("scripting engine initialized",
			zap.Duration("elapsed", time.Since(scriptStart)))
	}

	field := terrain.New()

	driver := sim.NewDriver(sim.Deps{
		Actors:           actors,
		Brains:           brains,
		Terrain:          field,
		TerrainOps:       field,
		Effects:          effects,
		Roll:             roller,
		Logger:           logger,
		TickMs:           cfg.Simulation.TickMs,
		MinUtility:       cfg.Simulation.MinUtility,
		DecisionInterval: cfg.Simulation.DecisionIntervalTicks,
		PlayerTeam:       scn.PlayerTeam,
	})

	for _, b := range bindings {
		def, ok := encounters.Get(b.EncounterID)
		if !ok {
			logger.Fatal("scenario references unknown encounter",
				zap.String("boss", b.BossID),
				zap.String("encounter", b.EncounterID),
			)
		}
		driver.BindEncounter(b.BossID, encounter.NewDirector(def, abilities, effects, scriptMgr, logger))
		logger.Info("encounter bound",
			zap.String("boss", b.BossID),
			zap.String("encounter", b.EncounterID),
		)
	}

	// Run until the tick budget is spent or only one team still stands.
	ticksRun := 0
	for ticksRun < scn.Ticks && teamsAlive(actors) > 1 {
		driver.Tick()
		ticksRun++
	}

	logSummary(logger, actors, ticksRun, time.Since(start))
}

// wireScriptCallbacks connects the engine.* Lua modules to the live battle
// state.
func wireScriptCallbacks(mgr *scripting.Manager, actors []*actor.Actor, effects *status.Registry, logger *zap.Logger) {
	find := func(id string) *actor.Actor {
		for _, a := range actors {
			if a.ID == id {
				return a
			}
		}
		return nil
	}

	mgr.GetActor = func(id string) *scripting.ActorInfo {
		a := find(id)
		if a == nil {
			return nil
		}
		active := a.Statuses.All()
		ids := make([]string, 0, len(active))
		for _, e := range active {
			ids = append(ids, e.Def.ID)
		}
		return &scripting.ActorInfo{
			ID:        a.ID,
			Name:      a.Name,
			Team:      a.Team,
			Warmth:    a.Warmth,
			MaxWarmth: a.MaxWarmth,
			Effects:   ids,
		}
	}

	mgr.ApplyEffect = func(actorID, effectID string) error {
		a := find(actorID)
		if a == nil {
			return fmt.Errorf("unknown actor %q", actorID)
		}
		def, ok := effects.Get(effectID)
		if !ok {
			return fmt.Errorf("unknown effect %q", effectID)
		}
		_, err := a.Statuses.Apply(def)
		return err
	}

	mgr.DealDamage = func(actorID string, amount float64) error {
		a := find(actorID)
		if a == nil {
			return fmt.Errorf("unknown actor %q", actorID)
		}
		a.ApplyDamage(amount)
		a.RecordDamage("script", "script", amount)
		return nil
	}

	mgr.Announce = func(msg string) {
		logger.Info("announce", zap.String("message", msg))
	}
}

func teamsAlive(actors []*actor.Actor) int {
	alive := make(map[int]bool)
	for _, a := range actors {
		if a.Alive() {
			alive[a.Team] = true
		}
	}
	return len(alive)
}

func logSummary(logger *zap.Logger, actors []*actor.Actor, ticksRun int, elapsed time.Duration) {
	survivors := make(map[int]int)
	warmth := make(map[int]float64)
	for _, a := range actors {
		if a.Alive() {
			survivors[a.Team]++
			warmth[a.Team] += a.Warmth
		}
	}

	teams := make([]int, 0, len(survivors))
	for t := range survivors {
		teams = append(teams, t)
	}
	sort.Ints(teams)

	fields := []zap.Field{
		zap.Int("ticks", ticksRun),
		zap.Duration("elapsed", elapsed),
	}
	for _, t := range teams {
		fields = append(fields,
			zap.Int(fmt.Sprintf("team_%d_survivors", t), survivors[t]),
			zap.Float64(fmt.Sprintf("team_%d_warmth", t), warmth[t]),
		)
	}
	logger.Info("skirmish complete", fields...)
}
