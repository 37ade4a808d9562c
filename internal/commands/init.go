package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgersync-dev/ledgersync/internal/config"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledgersync project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir)
		},
	}

	return cmd
}

func runInit(dir string) error {
	// Create directory structure.
	dirs := []string{
		"ledger",
		"statements",
		"rules",
		"output",
		"logs",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write ledgersync.yaml.
	cfg := config.Default()
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write empty classification rules.
	rulesContent := "rules: []\n"
	if err := os.WriteFile(filepath.Join(dir, "rules", "classification-rules.yaml"), []byte(rulesContent), 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	fmt.Printf("Initialized ledgersync project in %s\n", dir)
	fmt.Println("Next steps:")
	fmt.Println("  1. Put the target workbook under ledger/ and point ledger.workbook at it")
	fmt.Println("  2. Map each account to its sheet under accounts: in " + config.FileName)
	fmt.Println("  3. Drop monthly exports under statements/YYYY-MM/ and run: ledgersync process")
	return nil
}
