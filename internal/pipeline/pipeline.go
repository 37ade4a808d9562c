// Package pipeline runs one end-to-end processing pass: scan a month's
// statement exports, parse and classify their transactions, reconcile
// against the target workbook, and write an updated copy.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ledgersync-dev/ledgersync/internal/archive"
	"github.com/ledgersync-dev/ledgersync/internal/config"
	"github.com/ledgersync-dev/ledgersync/internal/id"
	"github.com/ledgersync-dev/ledgersync/internal/ledger"
	"github.com/ledgersync-dev/ledgersync/internal/model"
	"github.com/ledgersync-dev/ledgersync/internal/rules"
	"github.com/ledgersync-dev/ledgersync/internal/runlog"
	"github.com/ledgersync-dev/ledgersync/internal/statement"
)

// SheetResult summarizes what happened to one sheet.
type SheetResult struct {
	Account    string
	Sheet      string
	Added      int
	Duplicates int
}

// Report is the outcome of one run.
type Report struct {
	Month        string
	Files        int // exports parsed successfully
	FailedFiles  int
	Transactions int
	Unmatched    int // transactions with no mapped sheet
	Sheets       []SheetResult
	Output       string // empty when nothing needed writing

	AssetsHeld     int
	AssetsRestored int
	AssetWarning   string
}

// Pipeline wires the statement parsers, classifier, and workbook
// patcher together for one run. Build a fresh one per invocation; it
// carries run-scoped state such as the output lock registry.
type Pipeline struct {
	cfg        *config.Config
	log        zerolog.Logger
	classifier *rules.Classifier
	registry   *statement.Registry
	patcher    *archive.Patcher
	root       string // directory for the run log
}

func New(cfg *config.Config, classifier *rules.Classifier, root string, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		log:        log,
		classifier: classifier,
		registry:   statement.DefaultRegistry(log),
		patcher:    archive.NewPatcher(log),
		root:       root,
	}
}

// Run processes the given month. Individual export files that fail to
// parse are logged and skipped; the run fails only when no export could
// be used or the workbook itself cannot be read or written.
func (p *Pipeline) Run(ctx context.Context, month time.Time) (*Report, error) {
	report := &Report{Month: month.Format("2006-01")}

	files, err := statement.Scan(p.cfg.Statements.Dir, month)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no statement exports found for %s under %s", report.Month, p.cfg.Statements.Dir)
	}

	txns, failed, err := p.parseAll(ctx, files)
	if err != nil {
		return nil, err
	}
	report.Files = len(files) - failed
	report.FailedFiles = failed
	if report.Files == 0 {
		return nil, fmt.Errorf("every statement export for %s failed to parse", report.Month)
	}

	classified := make([]ledger.Classified, len(txns))
	for i, t := range txns {
		classified[i] = ledger.Classified{Transaction: t, Result: p.classifier.Classify(t)}
	}
	report.Transactions = len(classified)

	mappings, err := p.mappings()
	if err != nil {
		return nil, err
	}
	snap, err := ledger.ReadSnapshot(p.cfg.Ledger.Workbook, mappings, p.log)
	if err != nil {
		return nil, err
	}

	plan := ledger.Reconcile(snap, classified, month)
	report.Unmatched = len(plan.Unmatched)
	for _, u := range plan.Unmatched {
		p.log.Warn().Str("account", u.Account).Str("date", u.Date.Format("2006-01-02")).
			Msg("no sheet mapped for account, transaction skipped")
	}
	for _, sp := range plan.Sheets {
		report.Sheets = append(report.Sheets, SheetResult{
			Account:    sp.Account,
			Sheet:      sp.Sheet,
			Added:      len(sp.Append),
			Duplicates: sp.Duplicates,
		})
	}

	if plan.Empty() {
		p.log.Info().Str("month", report.Month).Msg("workbook already up to date")
		return report, p.logRun(report)
	}

	out := filepath.Join(p.cfg.Ledger.OutputDir, report.Month,
		"Updated_"+filepath.Base(p.cfg.Ledger.Workbook))
	writer := ledger.NewWriter(p.log)
	patch, err := p.patcher.WithAssetPreservation(p.cfg.Ledger.Workbook, out, func(f *excelize.File) error {
		return writer.Append(f, plan)
	})
	if err != nil {
		return nil, err
	}
	report.Output = out
	report.AssetsHeld = patch.Held
	report.AssetsRestored = patch.Restored
	report.AssetWarning = patch.Warning

	return report, p.logRun(report)
}

// parseAll parses every export concurrently, preserving file order in
// the combined result. A file that fails to parse is logged and its
// slot left empty.
func (p *Pipeline) parseAll(ctx context.Context, files []statement.FileInfo) ([]model.Transaction, int, error) {
	results := make([][]model.Transaction, len(files))
	var mu sync.Mutex
	failed := 0

	g, ctx := errgroup.WithContext(ctx)
	for i, fi := range files {
		i, fi := i, fi
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			txns, err := p.registry.ParseFile(fi.Path)
			if err != nil {
				p.log.Error().Str("file", fi.Name).Err(err).Msg("statement export failed to parse")
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			p.log.Info().Str("file", fi.Name).Int("transactions", len(txns)).Msg("parsed statement export")
			results[i] = txns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var all []model.Transaction
	for _, txns := range results {
		all = append(all, txns...)
	}
	return all, failed, nil
}

func (p *Pipeline) mappings() ([]ledger.Mapping, error) {
	mappings := make([]ledger.Mapping, 0, len(p.cfg.Accounts))
	for _, a := range p.cfg.Accounts {
		layout, err := ledger.ParseLayout(a.Layout)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Account, err)
		}
		account := a.Account
		if account == "" {
			// Mapping without an explicit account id: derive it from
			// the sheet name the way the parsers build theirs.
			account = id.AccountFromSheet(a.Sheet, layout.Brand())
		}
		mappings = append(mappings, ledger.Mapping{Account: account, Sheet: a.Sheet, Layout: layout})
	}
	return mappings, nil
}

func (p *Pipeline) logRun(report *Report) error {
	now := time.Now()
	var entries []runlog.Entry
	for _, s := range report.Sheets {
		entries = append(entries, runlog.Entry{
			Timestamp:  now,
			Month:      report.Month,
			Account:    s.Account,
			Sheet:      s.Sheet,
			Added:      s.Added,
			Duplicates: s.Duplicates,
			Restored:   report.AssetsRestored,
			Warning:    report.AssetWarning,
		})
	}
	if len(entries) == 0 {
		return nil
	}
	return runlog.Append(p.root, entries)
}
