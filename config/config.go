package config

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigGoal                  = "goal"
	ConfigEpsilon               = "epsilon"
	ConfigMaxSweeps             = "max-sweeps"
	ConfigVariant               = "variant"
	ConfigFormat                = "format"
	ConfigDebug                 = "debug"
	ConfigMemoryFraction        = "memory-fraction"
	ConfigSimGames              = "sim-games"
	ConfigSimThreads            = "sim-threads"
	ConfigSimSeed               = "sim-seed"
	ConfigSimOpponent           = "sim-opponent"
	ConfigSimStartScore         = "sim-start-score"
	ConfigSimOpponentStartScore = "sim-opponent-start-score"
	ConfigSimStopping           = "sim-stopping-condition"
	ConfigHistogramBins         = "histogram-bins"
	ConfigCPUProfile            = "cpu-profile"
)

// Config is read from command-line flags and from PIGLET_-prefixed
// environment variables, flags taking precedence.
type Config struct {
	*viper.Viper
	args []string
}

func (c *Config) Load(args []string) error {
	c.Viper = viper.New()

	fs := pflag.NewFlagSet("piglet", pflag.ContinueOnError)
	fs.Int(ConfigGoal, 10, "the score needed to win")
	fs.Float64(ConfigEpsilon, 1e-9, "stop value iteration once no probability changes by this much in a sweep")
	fs.Int(ConfigMaxSweeps, 100000, "give up on value iteration after this many sweeps")
	fs.String(ConfigVariant, "piglet", "piglet (coin) or pig (die)")
	fs.String(ConfigFormat, "text", "output format: text, yaml or json")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Float64(ConfigMemoryFraction, 0.5, "largest fraction of system memory the solver tables may use; 0 disables the check")
	fs.Int(ConfigSimGames, 10000, "number of games to simulate")
	fs.Int(ConfigSimThreads, runtime.NumCPU(), "number of simulation threads")
	fs.String(ConfigSimSeed, "", "seed for a reproducible simulation")
	fs.String(ConfigSimOpponent, "optimal", "second player's strategy: optimal or hold-at-N")
	fs.Int(ConfigSimStartScore, 0, "first player's starting score")
	fs.Int(ConfigSimOpponentStartScore, 0, "second player's starting score")
	fs.String(ConfigSimStopping, "none", "stop early on a confidence interval: none, 95, 98 or 99")
	fs.Int(ConfigHistogramBins, 10, "bins in the turns-to-win histogram")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()

	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.SetEnvPrefix("piglet")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	return nil
}

// Args are the positional arguments left after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

// Commands are the positional arguments, run in order. With none given the
// command is "solve".
func (c *Config) Commands() []string {
	if len(c.args) == 0 {
		return []string{"solve"}
	}
	return c.args
}

func (c *Config) SanitizedSettings() string {
	keys := c.AllKeys()
	slices.Sort(keys)
	var ss strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&ss, "%s=%v ", k, c.Get(k))
	}
	return strings.TrimSpace(ss.String())
}
