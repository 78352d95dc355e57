package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/theapemachine/qecc"
)

func newCircuitCommand() *cobra.Command {
	var (
		codes     codeFlags
		scenarios scenarioFlags
	)

	cmd := &cobra.Command{
		Use:   "circuit",
		Short: "Print the gate sequence for one scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eval, err := codes.evaluator(qecc.NewConfig())
			if err != nil {
				return err
			}

			in, errs, err := scenarios.scenario()
			if err != nil {
				return err
			}

			c := eval.Circuit(in, errs)
			if err := c.Validate(); err != nil {
				return err
			}

			if format == "yaml" {
				return writeYAML(cmd.OutOrStdout(), newCircuitDoc(c))
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), c)
			return err
		},
	}

	codes.register(cmd.Flags())
	scenarios.register(cmd.Flags())

	return cmd
}
