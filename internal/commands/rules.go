package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgersync-dev/ledgersync/internal/rules"
)

func newRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect classification rules",
	}
	cmd.AddCommand(newRulesCheckCommand())
	return cmd
}

func newRulesCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a classification rule file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleSet, loadErrs, err := rules.Load(args[0])
			if err != nil {
				return err
			}
			for _, le := range loadErrs {
				fmt.Printf("invalid: %v\n", le)
			}
			fmt.Printf("%d rule(s) valid, %d invalid\n", len(ruleSet), len(loadErrs))
			if len(loadErrs) > 0 {
				return fmt.Errorf("%d invalid rule(s)", len(loadErrs))
			}
			return nil
		},
	}
}
