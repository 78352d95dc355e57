package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/theapemachine/qecc"
)

var (
	configPath string
	logLevel   string
	format     string
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit string) error {
	return newRootCommand(version, commit).ExecuteContext(ctx)
}

func newRootCommand(version, commit string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qecc",
		Short: "Verify the Shor nine-qubit code on a statevector simulator",
		Long: `qecc encodes one logical qubit into the Shor nine-qubit code, injects
bit and phase errors, decodes, and checks that the logical state came back
up to a global phase.

Configuration is read from an optional YAML file, QECC_* environment
variables and flags, in increasing order of precedence.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("log level %q: %w", logLevel, err)
			}
			log.SetLevel(level)

			switch format {
			case "text", "yaml":
				return nil
			default:
				return fmt.Errorf("unknown output format %q", format)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "o", "text", "output format: text or yaml")

	rootCmd.AddCommand(newSweepCommand())
	rootCmd.AddCommand(newEvalCommand())
	rootCmd.AddCommand(newCircuitCommand())
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// configKeys maps viper keys to the flag names that may override them.
var configKeys = map[string]string{
	"workers":                "workers",
	"scheduling_timeout":     "scheduling-timeout",
	"result_ttl":             "result-ttl",
	"tolerance":              "tolerance",
	"norm_tolerance":         "norm-tolerance",
	"negligible_probability": "negligible-probability",
	"probability_tolerance":  "probability-tolerance",
	"shots":                  "shots",
	"seed":                   "seed",
	"max_errors":             "max-errors",
	"fatal_breaker":          "fatal-breaker",
}

// addConfigFlags registers the engine flags on cmd, defaulted from
// qecc.NewConfig.
func addConfigFlags(flags *pflag.FlagSet) {
	defaults := qecc.NewConfig()

	flags.Int("workers", defaults.Workers, "evaluation workers")
	flags.Duration("scheduling-timeout", defaults.SchedulingTimeout, "how long a job may wait for a worker")
	flags.Duration("result-ttl", defaults.ResultTTL, "how long an uncollected sweep result is kept")
	flags.Float64("tolerance", defaults.Tolerance, "state equivalence tolerance")
	flags.Float64("norm-tolerance", defaults.NormTolerance, "allowed drift of the squared norm")
	flags.Float64("negligible-probability", defaults.NegligibleProbability, "probability below which an amplitude is ignored")
	flags.Float64("probability-tolerance", defaults.ProbabilityTolerance, "allowed |P(0)-|α|²| in the measurement check")
	flags.Int("shots", defaults.Shots, "measurement samples per scenario, 0 to skip")
	flags.Uint64("seed", defaults.Seed, "sampling seed")
	flags.Int("max-errors", defaults.MaxErrors, "largest error pattern in a sweep")
	flags.Int("fatal-breaker", defaults.FatalBreaker, "stop a sweep after this many fatal errors, 0 to never stop")
}

// loadConfig layers defaults, the config file, QECC_* variables and
// changed flags into a validated qecc.Config.
func loadConfig(flags *pflag.FlagSet) (*qecc.Config, error) {
	config := qecc.NewConfig()

	v := viper.New()
	v.SetDefault("workers", config.Workers)
	v.SetDefault("scheduling_timeout", config.SchedulingTimeout)
	v.SetDefault("result_ttl", config.ResultTTL)
	v.SetDefault("tolerance", config.Tolerance)
	v.SetDefault("norm_tolerance", config.NormTolerance)
	v.SetDefault("negligible_probability", config.NegligibleProbability)
	v.SetDefault("probability_tolerance", config.ProbabilityTolerance)
	v.SetDefault("shots", config.Shots)
	v.SetDefault("seed", config.Seed)
	v.SetDefault("max_errors", config.MaxErrors)
	v.SetDefault("fatal_breaker", config.FatalBreaker)

	v.SetEnvPrefix("QECC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
		}
		log.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	for key, name := range configKeys {
		if flag := flags.Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// codeFlags are shared by every command that builds circuits.
type codeFlags struct {
	code  string
	fault string
}

func (f *codeFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.code, "code", "shor", "code to run: shor or bitflip")
	flags.StringVar(&f.fault, "fault", "bit+phase", "injected fault: bit+phase, bit or phase")
}

func (f *codeFlags) evaluator(config *qecc.Config) (*qecc.Evaluator, error) {
	code, err := qecc.ParseCode(f.code)
	if err != nil {
		return nil, err
	}

	fault, err := qecc.ParseFault(f.fault)
	if err != nil {
		return nil, err
	}

	return qecc.NewEvaluator(config, qecc.WithCode(code), qecc.WithFault(fault)), nil
}

// scenarioFlags pick a single input state and error pattern.
type scenarioFlags struct {
	theta  float64
	phi    float64
	errors string
}

func (f *scenarioFlags) register(flags *pflag.FlagSet) {
	flags.Float64Var(&f.theta, "theta", 0, "polar angle θ in [0, π]")
	flags.Float64Var(&f.phi, "phi", 0, "azimuthal angle φ in [0, 2π)")
	flags.StringVarP(&f.errors, "errors", "e", "", "comma separated qubits to corrupt, e.g. 0,4")
}

func (f *scenarioFlags) scenario() (qecc.InputState, qecc.ErrorPattern, error) {
	in := qecc.InputState{Theta: f.theta, Phi: f.phi}
	if err := in.Validate(); err != nil {
		return in, nil, err
	}

	errs, err := qecc.ParseErrorPattern(f.errors)
	return in, errs, err
}
