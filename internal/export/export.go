// Package export writes tables, nested descriptions and edge lists to files.
// Every write honours an overwrite flag: when it is false and the target
// already exists, the write fails with graph.ErrDestinationExists.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/tree2tabular/api"
	"github.com/agentic-research/tree2tabular/internal/graph"
	billy "github.com/go-git/go-billy/v5"
	"gopkg.in/yaml.v3"
)

// Exporter writes artifacts into a billy filesystem.
type Exporter struct {
	fs     billy.Filesystem
	logger *slog.Logger

	// Comma is the CSV field delimiter. Defaults to ','.
	Comma rune
}

// New returns an Exporter writing into fsys.
func New(fsys billy.Filesystem, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Exporter{fs: fsys, logger: logger, Comma: ','}
}

// Exists reports whether path is present in the filesystem.
func (e *Exporter) Exists(path string) (bool, error) {
	_, err := e.fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// EnsureAbsent fails with graph.ErrDestinationExists on the first path
// that is already present.
func (e *Exporter) EnsureAbsent(paths ...string) error {
	for _, p := range paths {
		exists, err := e.Exists(p)
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if exists {
			return graph.DestinationExists(p)
		}
	}
	return nil
}

// WriteFile opens path, hands it to write and closes it on every exit path.
func (e *Exporter) WriteFile(path string, overwrite bool, write func(io.Writer) error) (err error) {
	exists, err := e.Exists(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if exists && !overwrite {
		return graph.DestinationExists(path)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := e.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	f, err := e.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	e.logger.Info("wrote file", "path", path)
	return nil
}

// Records is anything that renders as a header row plus data rows.
type Records interface {
	Records() [][]string
}

// WriteCSV writes rec as a delimited file.
func (e *Exporter) WriteCSV(path string, rec Records, overwrite bool) error {
	return e.WriteFile(path, overwrite, func(w io.Writer) error {
		return EncodeCSV(w, rec.Records(), e.Comma)
	})
}

// WriteNested writes doc as JSON when path ends in .json, YAML otherwise.
func (e *Exporter) WriteNested(path string, doc *api.Document, overwrite bool) error {
	return e.WriteFile(path, overwrite, func(w io.Writer) error {
		if strings.EqualFold(filepath.Ext(path), ".json") {
			return EncodeJSON(w, doc)
		}
		return EncodeYAML(w, doc)
	})
}

// EncodeCSV writes records using comma as the delimiter.
func EncodeCSV(w io.Writer, records [][]string, comma rune) error {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// EncodeYAML writes doc as YAML with two-space indentation.
func EncodeYAML(w io.Writer, doc *api.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// EncodeJSON writes doc as indented JSON.
func EncodeJSON(w io.Writer, doc *api.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}
