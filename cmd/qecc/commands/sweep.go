package commands

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/theapemachine/qecc"
)

func newSweepCommand() *cobra.Command {
	var (
		codes       codeFlags
		strict      bool
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate every standard input against every error pattern",
		Long: `Evaluate the cross product of the standard input states and every
error pattern of up to --max-errors qubits.

Single-qubit patterns must all pass. Larger patterns exceed what the code
corrects, so mismatches there are reported but only fail the command with
--strict. Fatal errors always fail it.`,
		Example: `  # Every single error, bit and phase flip together
  qecc sweep

  # All pairs as well, as YAML
  qecc sweep --max-errors 2 -o yaml

  # The three-qubit repetition code against phase flips
  qecc sweep --code bitflip --fault phase`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			eval, err := codes.evaluator(config)
			if err != nil {
				return err
			}

			scenarios := qecc.Scenarios(qecc.StandardInputs(), eval.Code().ErrorPatterns(config.MaxErrors))

			log.Info("starting sweep",
				"code", eval.Code(),
				"fault", eval.Fault(),
				"scenarios", len(scenarios),
				"workers", config.Workers,
			)

			sweeper, err := qecc.NewSweeper(cmd.Context(), config, qecc.WithEvaluator(eval))
			if err != nil {
				return err
			}
			defer sweeper.Close()

			report, err := sweeper.Run(cmd.Context(), scenarios)
			if err != nil {
				return err
			}

			if err := renderReport(cmd.OutOrStdout(), eval, report); err != nil {
				return err
			}

			if showMetrics {
				if err := renderMetrics(cmd.OutOrStdout(), sweeper.Metrics()); err != nil {
					return err
				}
			}

			switch {
			case report.Fatal > 0:
				return fmt.Errorf("%d of %d scenarios hit a fatal error", report.Fatal, report.Total)
			case report.Invalid > 0:
				return fmt.Errorf("%d of %d scenarios were invalid", report.Invalid, report.Total)
			case strict && !report.OK():
				return fmt.Errorf("%d of %d scenarios did not pass", report.Total-report.Passed, report.Total)
			}

			return nil
		},
	}

	codes.register(cmd.Flags())
	addConfigFlags(cmd.Flags())
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on any mismatch")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print pool metrics after the report")

	return cmd
}
