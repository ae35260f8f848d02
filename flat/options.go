package flat

import "time"

type options struct {
	separator   string
	timeLayouts []string
}

// Option configures decoding and reading.
type Option func(*options)

// WithSeparator joins path segments with sep. An empty separator is ignored.
func WithSeparator(sep string) Option {
	return func(o *options) {
		if sep != "" {
			o.separator = sep
		}
	}
}

// WithTimes makes NewReader surface strings matching one of layouts as time
// values. RFC 3339 is used when no layout is given.
func WithTimes(layouts ...string) Option {
	return func(o *options) {
		if len(layouts) == 0 {
			layouts = []string{time.RFC3339Nano}
		}
		o.timeLayouts = append(o.timeLayouts, layouts...)
	}
}

func newOptions(opts []Option) options {
	o := options{separator: DefaultSeparator}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
