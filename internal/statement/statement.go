// Package statement parses bank export files into canonical transactions.
package statement

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgersync-dev/ledgersync/internal/model"
)

// Parser converts the rows of one bank's export into transactions. Parsers
// perform no classification and no writes; transactions come back in file
// order, tagged with their source account id.
type Parser interface {
	Parse(rows [][]string) ([]model.Transaction, error)
	Bank() model.BankBrand
}

// Registry holds the parser for each bank brand.
type Registry struct {
	parsers map[model.BankBrand]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[model.BankBrand]Parser)}
}

// Register adds a parser. Panics on duplicate brand.
func (r *Registry) Register(p Parser) {
	if _, ok := r.parsers[p.Bank()]; ok {
		panic("duplicate parser for bank: " + string(p.Bank()))
	}
	r.parsers[p.Bank()] = p
}

// Get returns the parser for a brand, or nil.
func (r *Registry) Get(brand model.BankBrand) Parser {
	return r.parsers[brand]
}

// DefaultRegistry returns a registry with all built-in bank parsers.
func DefaultRegistry(log zerolog.Logger) *Registry {
	r := NewRegistry()
	r.Register(NewBMOParser(log))
	r.Register(NewRBCParser(log))
	r.Register(NewCIBCParser(log))
	return r
}

// FileInfo describes one statement export found for a month.
type FileInfo struct {
	Name  string
	Path  string
	Brand model.BankBrand
}

// Scan lists the statement exports under <dir>/<YYYY-MM>/ whose filenames
// match a known bank pattern. Editor lock temporaries (~$ prefix) are
// skipped. A missing month folder yields no files, not an error.
func Scan(dir string, month time.Time) ([]FileInfo, error) {
	folder := filepath.Join(dir, month.Format("2006-01"))
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading statement dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		brand := model.DetectBrand(e.Name())
		if brand == "" {
			continue
		}
		files = append(files, FileInfo{
			Name:  e.Name(),
			Path:  filepath.Join(folder, e.Name()),
			Brand: brand,
		})
	}
	return files, nil
}

// ParseFile reads and parses one export with the registry's parser for its
// detected brand.
func (r *Registry) ParseFile(path string) ([]model.Transaction, error) {
	brand := model.DetectBrand(path)
	if brand == "" {
		return nil, fmt.Errorf("unrecognized bank export: %s", filepath.Base(path))
	}
	p := r.Get(brand)
	if p == nil {
		return nil, fmt.Errorf("no parser registered for %s", brand)
	}
	rows, err := ReadRows(path)
	if err != nil {
		return nil, err
	}
	txns, err := p.Parse(rows)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return txns, nil
}
