package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEvalCommand() *cobra.Command {
	var (
		codes     codeFlags
		scenarios scenarioFlags
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate one input state against one error pattern",
		Example: `  # |1⟩ with qubit 4 corrupted
  qecc eval --theta 3.14159 --phi 3.14159 --errors 4

  # Sample qubit 0 a thousand times as well
  qecc eval --theta 1.5708 --phi 2 --errors 0 --shots 1000`,
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

			in, errs, err := scenarios.scenario()
			if err != nil {
				return err
			}

			verdict, err := eval.Evaluate(in, errs)
			if err != nil {
				return err
			}

			name := fmt.Sprintf("%s %s errors=%s", eval.Code(), in, errs)
			return renderVerdict(cmd.OutOrStdout(), name, verdict)
		},
	}

	codes.register(cmd.Flags())
	scenarios.register(cmd.Flags())
	addConfigFlags(cmd.Flags())

	return cmd
}
