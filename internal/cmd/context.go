package cmd

import (
	"context"
	"io"
	"os"
)

type ioKey struct{}

type errorFormatKey struct{}

// streams are the command's stdin, stdout and stderr.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func withIO(ctx context.Context, in io.Reader, out, err io.Writer) context.Context {
	return context.WithValue(ctx, ioKey{}, streams{in: in, out: out, err: err})
}

func streamsFromContext(ctx context.Context) streams {
	if ctx != nil {
		if v, ok := ctx.Value(ioKey{}).(streams); ok {
			return v
		}
	}
	return streams{}
}

func stdinFromContext(ctx context.Context) io.Reader {
	if in := streamsFromContext(ctx).in; in != nil {
		return in
	}
	return os.Stdin
}

func stdoutFromContext(ctx context.Context) io.Writer {
	if out := streamsFromContext(ctx).out; out != nil {
		return out
	}
	return os.Stdout
}

func stderrFromContext(ctx context.Context) io.Writer {
	if err := streamsFromContext(ctx).err; err != nil {
		return err
	}
	return os.Stderr
}

// WithErrorFormat stores the error format in the context.
func WithErrorFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, errorFormatKey{}, format)
}

// ErrorFormatFromContext retrieves the error format from context.
func ErrorFormatFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(errorFormatKey{}).(string); ok {
		return v
	}
	return ""
}
