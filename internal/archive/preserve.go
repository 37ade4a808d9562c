// Package archive keeps embedded workbook assets alive across a
// rewrite. Spreadsheet rewrites can drop zip entries they do not model
// (images, drawings, charts, embedded objects); the patcher extracts
// those entries from the source workbook first and splices any that
// went missing back into the output afterwards.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// assetNamespaces are zip path segments whose entries are treated as
// presentation assets.
var assetNamespaces = []string{"media/", "drawings/", "charts/", "embeddings/"}

// assetExtensions catch image payloads stored outside the usual
// namespaces.
var assetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".emf": true,
	".wmf": true, ".svg": true, ".ico": true,
}

func isAsset(name string) bool {
	lower := strings.ToLower(name)
	for _, ns := range assetNamespaces {
		if strings.Contains(lower, ns) {
			return true
		}
	}
	return assetExtensions[filepath.Ext(lower)]
}

// Report summarizes what the patcher held and put back. Warning is set
// when reinjection failed after the workbook was already written; the
// output is usable, just possibly missing assets.
type Report struct {
	Held     int
	Restored int
	Warning  string
}

// Patcher serializes workbook writes per destination path. Create one
// per run; concurrent calls targeting the same output file queue up
// instead of corrupting it.
type Patcher struct {
	log zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewPatcher(log zerolog.Logger) *Patcher {
	return &Patcher{log: log, locks: make(map[string]*sync.Mutex)}
}

func (p *Patcher) lockFor(path string) *sync.Mutex {
	key := filepath.Clean(path)
	p.mu.Lock()
	defer p.mu.Unlock()
	l := p.locks[key]
	if l == nil {
		l = &sync.Mutex{}
		p.locks[key] = l
	}
	return l
}

// WithAssetPreservation copies src to dst, opens dst, runs mutate, and
// saves. Asset entries extracted from src before the rewrite are
// compared against dst afterwards; any that the rewrite dropped are
// spliced back in. Extraction, copy, open, mutate, and save failures
// are fatal. Reinjection failure is not: the report carries a warning
// and the already-written workbook stands.
func (p *Patcher) WithAssetPreservation(src, dst string, mutate func(*excelize.File) error) (Report, error) {
	l := p.lockFor(dst)
	l.Lock()
	defer l.Unlock()

	var report Report
	assets, err := extractAssets(src)
	if err != nil {
		return report, fmt.Errorf("extracting assets from %s: %w", src, err)
	}
	report.Held = len(assets)

	if err := copyFile(src, dst); err != nil {
		return report, fmt.Errorf("copying workbook: %w", err)
	}

	f, err := excelize.OpenFile(dst)
	if err != nil {
		return report, fmt.Errorf("opening %s: %w", dst, err)
	}
	if err := mutate(f); err != nil {
		f.Close()
		return report, err
	}
	if err := f.Save(); err != nil {
		f.Close()
		return report, fmt.Errorf("saving %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return report, fmt.Errorf("closing %s: %w", dst, err)
	}

	if len(assets) == 0 {
		return report, nil
	}
	restored, err := reinject(dst, assets)
	report.Restored = restored
	if err != nil {
		report.Warning = fmt.Sprintf("restoring assets into %s: %v", dst, err)
		p.log.Warn().Str("workbook", dst).Err(err).
			Msg("could not restore embedded assets, output may be missing images")
	}
	return report, nil
}

// extractAssets reads every asset entry out of the workbook's zip
// container, keyed by entry name.
func extractAssets(path string) (map[string][]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	assets := make(map[string][]byte)
	for _, entry := range r.File {
		if !isAsset(entry.Name) {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name, err)
		}
		assets[entry.Name] = data
	}
	return assets, nil
}

// reinject rewrites the workbook's zip container with any held entries
// that the rewrite dropped. The zip format has no append mode, so the
// container is rebuilt into a temp file and renamed over the original.
func reinject(path string, assets map[string][]byte) (int, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	present := make(map[string]bool, len(r.File))
	for _, entry := range r.File {
		present[entry.Name] = true
	}
	var missing []string
	for name := range assets {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".assets-*.xlsx")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	zw := zip.NewWriter(tmp)
	for _, entry := range r.File {
		if err := zw.Copy(entry); err != nil {
			zw.Close()
			tmp.Close()
			return 0, fmt.Errorf("copying %s: %w", entry.Name, err)
		}
	}
	for _, name := range missing {
		w, err := zw.Create(name)
		if err != nil {
			zw.Close()
			tmp.Close()
			return 0, fmt.Errorf("adding %s: %w", name, err)
		}
		if _, err := w.Write(assets[name]); err != nil {
			zw.Close()
			tmp.Close()
			return 0, fmt.Errorf("adding %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, err
	}
	return len(missing), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
