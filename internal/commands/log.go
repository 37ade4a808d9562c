package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgersync-dev/ledgersync/internal/id"
	"github.com/ledgersync-dev/ledgersync/internal/runlog"
)

func newLogCommand() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "log [directory]",
		Short: "Show past processing runs",
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

			return runLog(cmd.OutOrStdout(), absDir, account)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "filter by account id, or by a row id like BMO0798_12")

	return cmd
}

// runLog prints the run log, newest entries last. The filter accepts
// either a bare account id or a row id from debug output; a row id is
// split back into its account part.
func runLog(w io.Writer, dir, filter string) error {
	if filter != "" {
		if account, _, err := id.ParseSerial(filter); err == nil {
			filter = account
		}
	}

	entries, err := runlog.Read(dir)
	if err != nil {
		return err
	}

	shown := 0
	for _, e := range entries {
		if filter != "" && e.Account != filter {
			continue
		}
		shown++
		fmt.Fprintf(w, "%s  %s  %-10s %-24s added %3d  duplicates %3d",
			e.Timestamp.Format("2006-01-02 15:04"), e.Month, e.Account, e.Sheet, e.Added, e.Duplicates)
		if e.Restored > 0 {
			fmt.Fprintf(w, "  assets restored %d", e.Restored)
		}
		if e.Warning != "" {
			fmt.Fprintf(w, "  warning: %s", e.Warning)
		}
		fmt.Fprintln(w)
	}
	if shown == 0 {
		fmt.Fprintln(w, "No runs recorded")
	}
	return nil
}
