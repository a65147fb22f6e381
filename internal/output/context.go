package output

import "context"

// options are the output settings carried by a command context.
type options struct {
	format Format
	query  string
	limit  int
	sortBy string
	desc   bool
	quiet  bool
}

type optionsKey struct{}

func optionsFromContext(ctx context.Context) options {
	if ctx == nil {
		return options{}
	}
	opts, _ := ctx.Value(optionsKey{}).(options)
	return opts
}

func withOptions(ctx context.Context, update func(*options)) context.Context {
	opts := optionsFromContext(ctx)
	update(&opts)
	return context.WithValue(ctx, optionsKey{}, opts)
}

// WithFormat returns a new context with the output format attached.
func WithFormat(ctx context.Context, format Format) context.Context {
	return withOptions(ctx, func(o *options) { o.format = format })
}

// FormatFromContext returns the output format, FormatYAML when none is set.
func FormatFromContext(ctx context.Context) Format {
	if format := optionsFromContext(ctx).format; format != "" {
		return format
	}
	return FormatYAML
}

// WithQuery attaches a jq expression applied to structured output.
func WithQuery(ctx context.Context, query string) context.Context {
	return withOptions(ctx, func(o *options) { o.query = query })
}

func QueryFromContext(ctx context.Context) string {
	return optionsFromContext(ctx).query
}

// WithLimit sets the --result-limit value (0 = unlimited).
func WithLimit(ctx context.Context, limit int) context.Context {
	return withOptions(ctx, func(o *options) { o.limit = limit })
}

func LimitFromContext(ctx context.Context) int {
	return optionsFromContext(ctx).limit
}

// WithSort sets the field top-level results are ordered by.
func WithSort(ctx context.Context, field string, desc bool) context.Context {
	return withOptions(ctx, func(o *options) {
		o.sortBy = field
		o.desc = desc
	})
}

func SortFromContext(ctx context.Context) (field string, desc bool) {
	opts := optionsFromContext(ctx)
	return opts.sortBy, opts.desc
}

// WithQuiet suppresses notices written next to the main output.
func WithQuiet(ctx context.Context, quiet bool) context.Context {
	return withOptions(ctx, func(o *options) { o.quiet = quiet })
}

func QuietFromContext(ctx context.Context) bool {
	return optionsFromContext(ctx).quiet
}
