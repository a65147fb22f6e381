// Package pipeline runs a conversion end to end: open the source, parse it,
// transform it to a catalog document and write the rendered result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/salmonumbrella/icd10-cli/internal/catalog"
	"github.com/salmonumbrella/icd10-cli/internal/markup"
)

// IOError reports a failure to read the source or write the output.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e IOError) Unwrap() error { return e.Err }

// Stdin names the standard input as a source or output path.
const Stdin = "-"

// Open returns a reader for source, a file path or "-" for stdin.
// The caller must close it. Closing stdin is a no-op.
func Open(source string, stdin io.Reader) (io.ReadCloser, error) {
	trimmed := strings.TrimSpace(source)
	switch trimmed {
	case "":
		return nil, IOError{Op: "open", Err: errors.New("empty input source")}
	case Stdin:
		if stdin == nil {
			stdin = os.Stdin
		}
		return io.NopCloser(stdin), nil
	}

	file, err := os.Open(trimmed)
	if err != nil {
		return nil, IOError{Op: "open", Path: trimmed, Err: err}
	}
	return file, nil
}

// Pipeline converts one source document. The zero value parses XML with the
// default transformer, applies no search terms and logs nothing.
type Pipeline struct {
	Parser      markup.Kind
	Transformer catalog.Transformer
	Terms       catalog.SearchTerms
	Logger      zerolog.Logger
}

// Load opens, parses and transforms source, then applies the search terms.
// Parse and missing-field errors are returned unchanged; read failures are
// IOErrors.
func (p Pipeline) Load(ctx context.Context, source string, stdin io.Reader) (catalog.Document, error) {
	kind := p.Parser
	if kind == "" {
		kind = markup.KindXML
	}
	log := p.Logger.With().Str("source", source).Str("parser", string(kind)).Logger()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, err := Open(source, stdin)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	start := time.Now()
	root, err := markup.Parse(r, kind)
	if err != nil {
		var perr markup.ParseError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, IOError{Op: "read", Path: source, Err: err}
	}
	log.Debug().Str("root", root.Tag()).Dur("elapsed", time.Since(start)).Msg("parsed document")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := p.Transformer.Document(root)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("chapters", len(doc)).Msg("transformed document")

	if !p.Terms.Empty() {
		doc = doc.Filter(p.Terms)
		log.Debug().
			Strs("include", p.Terms.Include).
			Strs("exclude", p.Terms.Exclude).
			Int("chapters", len(doc)).
			Msg("filtered document")
	}
	return doc, nil
}

// WriteTo renders to stdout when path is empty or "-", otherwise to a newly
// created file at path. Failures to create, write or close the output are
// IOErrors; other render errors are returned as they are.
func WriteTo(path string, stdout io.Writer, render func(io.Writer) error) (err error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == Stdin {
		if stdout == nil {
			stdout = os.Stdout
		}
		return renderTo(stdout, "", render)
	}

	file, err := os.Create(trimmed)
	if err != nil {
		return IOError{Op: "create", Path: trimmed, Err: err}
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = IOError{Op: "close", Path: trimmed, Err: cerr}
		}
	}()

	return renderTo(file, trimmed, render)
}

func renderTo(w io.Writer, path string, render func(io.Writer) error) error {
	tw := &trackingWriter{w: w}
	if err := render(tw); err != nil {
		if tw.err != nil {
			return IOError{Op: "write", Path: path, Err: tw.err}
		}
		return err
	}
	return nil
}

// trackingWriter remembers the first write error so it can be told apart
// from encoding errors.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}
