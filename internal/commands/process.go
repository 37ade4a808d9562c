package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgersync-dev/ledgersync/internal/config"
	"github.com/ledgersync-dev/ledgersync/internal/logger"
	"github.com/ledgersync-dev/ledgersync/internal/pipeline"
	"github.com/ledgersync-dev/ledgersync/internal/rules"
)

func newProcessCommand() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "process [directory]",
		Short: "Parse a month's statement exports and update the ledger workbook",
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

			month, err := resolveMonth(dateFlag)
			if err != nil {
				return err
			}

			return runProcess(cmd, absDir, month)
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "any date in the target month, YYYY-MM-DD (default: previous month)")

	return cmd
}

// resolveMonth turns the --date flag into the first of its month. The
// default is the month before the current one, since exports for the
// running month are still partial.
func resolveMonth(flag string) (time.Time, error) {
	if flag == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0), nil
	}
	d, err := time.Parse("2006-01-02", flag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", flag)
	}
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

func runProcess(cmd *cobra.Command, dir string, month time.Time) error {
	log := logger.New()

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return err
	}
	resolvePaths(cfg, dir)

	ruleSet, loadErrs, err := rules.LoadOrDefault(cfg.Rules.File)
	if err != nil {
		return err
	}
	for _, le := range loadErrs {
		log.Warn().Err(le).Msg("skipping invalid rule")
	}

	p := pipeline.New(cfg, rules.NewClassifier(ruleSet), dir, log)
	report, err := p.Run(cmd.Context(), month)
	if err != nil {
		return err
	}

	printReport(report)
	return nil
}

// resolvePaths makes relative config paths relative to the project
// directory rather than the process working directory.
func resolvePaths(cfg *config.Config, dir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	cfg.Ledger.Workbook = resolve(cfg.Ledger.Workbook)
	cfg.Ledger.OutputDir = resolve(cfg.Ledger.OutputDir)
	cfg.Statements.Dir = resolve(cfg.Statements.Dir)
	cfg.Rules.File = resolve(cfg.Rules.File)
}

func printReport(r *pipeline.Report) {
	fmt.Printf("Processed %s: %d file(s), %d transaction(s)\n", r.Month, r.Files, r.Transactions)
	if r.FailedFiles > 0 {
		fmt.Printf("  %d file(s) failed to parse\n", r.FailedFiles)
	}
	for _, s := range r.Sheets {
		fmt.Printf("  %-24s added %3d  duplicates %3d\n", s.Sheet, s.Added, s.Duplicates)
	}
	if r.Unmatched > 0 {
		fmt.Printf("  %d transaction(s) had no mapped sheet\n", r.Unmatched)
	}
	if r.Output == "" {
		fmt.Println("Workbook already up to date, nothing written")
		return
	}
	fmt.Printf("Wrote %s\n", r.Output)
	if r.AssetWarning != "" {
		fmt.Printf("Warning: %s\n", r.AssetWarning)
	}
}
