package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/sameehj/envdefs/pkg/defs"
	"github.com/sameehj/envdefs/pkg/env"
)

const (
	loadedBanner   = "\n--- Environmental variables loaded: %s ---\n"
	notFoundBanner = "\n--- ERROR: .env FILE NOT FOUND ---\n"
)

// Result describes one configuration run.
type Result struct {
	Path    string
	Found   bool
	Keys    []string
	Skipped []env.SkippedLine
}

// Loader reads a definition file and appends its entries to a build context.
type Loader struct {
	path    string
	console io.Writer
	logger  *slog.Logger
}

type Option func(*Loader)

func WithPath(path string) Option {
	return func(l *Loader) {
		if path != "" {
			l.path = path
		}
	}
}

func WithConsole(w io.Writer) Option {
	return func(l *Loader) {
		if w != nil {
			l.console = w
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loader for ./.env printing to stdout.
func New(opts ...Option) *Loader {
	l := &Loader{
		path:    env.DefaultFile,
		console: os.Stdout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Path() string {
	return l.path
}

// Load appends one definition per entry of the definition file to ctx. A file
// that cannot be opened is reported on the console and is not an error.
func (l *Loader) Load(ctx defs.BuildContext) (*Result, error) {
	if isNil(ctx) {
		return nil, errors.New("build context is required")
	}

	result := &Result{Path: l.path}

	doc, err := env.ParseFile(l.path)
	var openErr *env.OpenError
	if errors.As(err, &openErr) {
		l.logger.Warn("definition_file_unavailable", "path", l.path, "error", openErr.Err)
		fmt.Fprint(l.console, notFoundBanner)
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", l.path, err)
	}
	result.Found = true

	definitions := make([]defs.Definition, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		definitions = append(definitions, defs.New(entry.Key, entry.Value))
	}
	ctx.AppendDefinitions(definitions...)

	for _, skipped := range doc.Skipped {
		l.logger.Debug("line_skipped", "path", l.path, "line", skipped.Line, "reason", skipped.Reason)
	}

	result.Keys = doc.Keys()
	result.Skipped = doc.Skipped
	l.logger.Info("definitions_loaded", "path", l.path, "count", len(result.Keys), "skipped", len(result.Skipped))
	fmt.Fprintf(l.console, loadedBanner, strings.Join(result.Keys, ", "))
	return result, nil
}

// isNil also catches typed nil pointers such as (*defs.List)(nil).
func isNil(ctx defs.BuildContext) bool {
	if ctx == nil {
		return true
	}
	v := reflect.ValueOf(ctx)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
