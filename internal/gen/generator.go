package gen

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/roach88/routegen/internal/compiler"
	"github.com/roach88/routegen/internal/ir"
)

// FileName is the name of the file emitted in each namespace directory.
const FileName = "client.go"

// Config configures a Generator.
type Config struct {
	// OutDir receives one <namespace>/client.go per namespace with routes.
	OutDir string

	// Check compares generated output with OutDir instead of writing.
	Check bool

	Options Options

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Generator walks an API and writes its client files.
type Generator struct {
	cfg    Config
	logger *slog.Logger
}

// New returns a generator.
func New(cfg Config) *Generator {
	cfg.Options = cfg.Options.WithDefaults()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{cfg: cfg, logger: logger}
}

// File is one rendered namespace file.
type File struct {
	Namespace string
	Path      string // relative to the output directory
	Content   []byte
}

// FileResult records what happened to one file.
type FileResult struct {
	Namespace   string `json:"namespace"`
	Path        string `json:"path"`
	ContentHash string `json:"content_hash"`
	Written     bool   `json:"written"`
	Stale       bool   `json:"stale,omitempty"`
}

// Result summarizes a generation run.
type Result struct {
	APIHash          string       `json:"api_hash"`
	GeneratorVersion string       `json:"generator_version"`
	OutDir           string       `json:"out_dir"`
	Check            bool         `json:"check"`
	Files            []FileResult `json:"files"`
	Skipped          []string     `json:"skipped,omitempty"` // namespaces without routes
}

// Stale returns the paths check mode found out of date.
func (r *Result) Stale() []string {
	var paths []string
	for _, f := range r.Files {
		if f.Stale {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

// Render validates api and renders every namespace with routes. Nothing is
// written; a failure in any namespace fails the whole call.
func (g *Generator) Render(ctx context.Context, api *ir.API) ([]File, error) {
	if errs := compiler.Validate(api); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidAPI, strings.Join(msgs, "; "))
	}

	asm := NewAssembler(api, g.cfg.Options)
	var files []File
	for i := range api.Namespaces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ns := &api.Namespaces[i]
		if !ns.HasRoutes() {
			g.logger.Debug("skipping namespace without routes", "namespace", ns.Name)
			continue
		}

		content, err := asm.Render(ns)
		if err != nil {
			return nil, err
		}
		files = append(files, File{
			Namespace: ns.Name,
			Path:      filepath.Join(ns.Name, FileName),
			Content:   content,
		})
		g.logger.Debug("namespace rendered",
			"namespace", ns.Name,
			"routes", len(ns.Routes),
			"bytes", len(content),
		)
	}
	return files, nil
}

// Generate renders api and writes the files under the output directory.
// In check mode it writes nothing and returns a *DriftError naming every
// file that is missing or differs, along with the result.
func (g *Generator) Generate(ctx context.Context, api *ir.API) (*Result, error) {
	apiHash, err := ir.APIHash(api)
	if err != nil {
		return nil, fmt.Errorf("hash api: %w", err)
	}

	files, err := g.Render(ctx, api)
	if err != nil {
		return nil, err
	}

	res := &Result{
		APIHash:          apiHash,
		GeneratorVersion: ir.GeneratorVersion,
		OutDir:           g.cfg.OutDir,
		Check:            g.cfg.Check,
	}
	rendered := make(map[string]bool, len(files))
	for _, f := range files {
		rendered[f.Namespace] = true
	}
	for _, ns := range api.Namespaces {
		if !rendered[ns.Name] {
			res.Skipped = append(res.Skipped, ns.Name)
		}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wrote, stale, err := WriteFile(filepath.Join(g.cfg.OutDir, f.Path), f.Content, WriteOptions{Check: g.cfg.Check})
		if err != nil {
			return nil, &Error{Namespace: f.Namespace, Err: err}
		}
		res.Files = append(res.Files, FileResult{
			Namespace:   f.Namespace,
			Path:        filepath.ToSlash(f.Path),
			ContentHash: ir.OutputHash(f.Content),
			Written:     wrote,
			Stale:       stale,
		})

		switch {
		case stale:
			g.logger.Warn("file out of date", "namespace", f.Namespace, "path", f.Path)
		case wrote:
			g.logger.Info("file written", "namespace", f.Namespace, "path", f.Path)
		default:
			g.logger.Debug("file unchanged", "namespace", f.Namespace, "path", f.Path)
		}
	}

	if stale := res.Stale(); len(stale) > 0 {
		return res, &DriftError{Paths: stale}
	}
	return res, nil
}
