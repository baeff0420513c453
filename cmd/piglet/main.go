package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/domino14/piglet/cache"
	"github.com/domino14/piglet/config"
	"github.com/domino14/piglet/game"
	"github.com/domino14/piglet/montecarlo"
	"github.com/domino14/piglet/solver"
)

func usage(w io.Writer) {
	io.WriteString(w, "usage: piglet [flags] [command...]\n")
	io.WriteString(w, "commands:\n")
	io.WriteString(w, "solve - solve and print the hold threshold grid (default)\n")
	io.WriteString(w, "sim - play optimal strategy against --sim-opponent and summarize\n")
	io.WriteString(w, "reachable - list states reachable from (0, 0, 0) under optimal play\n")
	io.WriteString(w, "help - this message\n")
}

func setupLogging(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
}

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		usage(os.Stderr)
		os.Exit(2)
	}
	setupLogging(cfg.GetBool(config.ConfigDebug))
	log.Debug().Msgf("Loaded config: %v", cfg.SanitizedSettings())

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, cfg, os.Stdout)
	stop()
	// os.Exit skips deferred calls.
	pprof.StopCPUProfile()
	if err != nil {
		log.Fatal().Err(err).Msg("piglet-failed")
	}
}

// run executes each command in turn. Commands after the first reuse the
// solved tables from the cache.
func run(ctx context.Context, cfg *config.Config, w io.Writer) error {
	for _, cmd := range cfg.Commands() {
		if err := runCommand(ctx, cfg, cmd, w); err != nil {
			return err
		}
	}
	return nil
}

func runCommand(ctx context.Context, cfg *config.Config, cmd string, w io.Writer) error {
	switch cmd {
	case "help":
		usage(w)
		return nil
	case "solve", "sim", "reachable":
	default:
		usage(w)
		return fmt.Errorf("unknown command %q", cmd)
	}
	s, err := solve(cfg)
	if err != nil {
		return err
	}
	format := cfg.GetString(config.ConfigFormat)

	switch cmd {
	case "sim":
		res, err := simulate(ctx, cfg, s)
		if err != nil {
			return err
		}
		return writeSummary(w, res, format, cfg.GetInt(config.ConfigHistogramBins))
	case "reachable":
		states, err := s.Reachable(solver.State{})
		if err != nil {
			return err
		}
		return writeStates(w, states, format)
	default:
		return s.Report().Write(w, format)
	}
}

func solve(cfg *config.Config) (*solver.Solver, error) {
	variant, err := game.ParseVariant(cfg.GetString(config.ConfigVariant))
	if err != nil {
		return nil, err
	}
	goal := cfg.GetInt(config.ConfigGoal)
	epsilon := cfg.GetFloat64(config.ConfigEpsilon)
	key := fmt.Sprintf("%s:%d:%g", variant, goal, epsilon)
	obj, err := cache.Load(key, func(string) (any, error) {
		return solver.NewSolver(goal, epsilon,
			solver.WithVariant(variant),
			solver.WithMaxSweeps(cfg.GetInt(config.ConfigMaxSweeps)),
			solver.WithMemoryFraction(cfg.GetFloat64(config.ConfigMemoryFraction)),
		)
	})
	if err != nil {
		return nil, err
	}
	s := obj.(*solver.Solver)
	if err := s.CheckMonotone(); err != nil {
		log.Warn().Err(err).Msg("hold-thresholds-may-be-misleading")
	}
	log.Info().Str("fingerprint", fmt.Sprintf("%016x", s.HoldGrid().Fingerprint())).
		Float64("first-mover-win-prob", s.PWin(0, 0, 0)).
		Dur("solve-time", s.Elapsed()).Msg("solved")
	return s, nil
}

func simulate(ctx context.Context, cfg *config.Config, s *solver.Solver) (*montecarlo.Result, error) {
	grid := s.HoldGrid()
	opponent, err := parseStrategy(cfg.GetString(config.ConfigSimOpponent), grid)
	if err != nil {
		return nil, err
	}
	sc, err := parseStoppingCondition(cfg.GetString(config.ConfigSimStopping))
	if err != nil {
		return nil, err
	}
	simmer := &montecarlo.Simmer{}
	if err := simmer.Init(s.Variant(), s.Goal(), [2]game.Strategy{grid, opponent}); err != nil {
		return nil, err
	}
	simmer.SetThreads(cfg.GetInt(config.ConfigSimThreads))
	log.Debug().Int("threads", simmer.Threads()).Msg("starting-sim")
	simmer.SetStoppingCondition(sc)
	if seed := cfg.GetString(config.ConfigSimSeed); seed != "" {
		simmer.SetSeed(parseSeed(seed))
	}
	err = simmer.SetStartScores([2]int{
		cfg.GetInt(config.ConfigSimStartScore),
		cfg.GetInt(config.ConfigSimOpponentStartScore),
	})
	if err != nil {
		return nil, err
	}
	return simmer.Simulate(ctx, cfg.GetInt(config.ConfigSimGames))
}

func writeSummary(w io.Writer, res *montecarlo.Result, format string, bins int) error {
	switch format {
	case "yaml":
		return encodeYAML(w, res.Summary())
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Summary())
	default:
		return res.Fprint(w, bins)
	}
}

func writeStates(w io.Writer, states []solver.State, format string) error {
	switch format {
	case "yaml":
		return encodeYAML(w, states)
	case "json":
		return json.NewEncoder(w).Encode(states)
	default:
		for _, st := range states {
			if _, err := fmt.Fprintf(w, "%d %d %d\n", st.I, st.J, st.K); err != nil {
				return err
			}
		}
		return nil
	}
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
