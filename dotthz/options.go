package dotthz

import "log/slog"

// Option configures Save and Load.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	overwrite bool
	atomic    bool
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:    slog.Default(),
		overwrite: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger used for progress messages. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithOverwrite controls whether Save replaces an existing file. It does by
// default; with false, saving onto an existing path fails with ErrIO.
func WithOverwrite(overwrite bool) Option {
	return func(o *options) {
		o.overwrite = overwrite
	}
}

// WithAtomicWrite makes Save write to a temporary file in the destination
// directory and rename it into place once complete, so a failed save leaves
// any previous file untouched.
func WithAtomicWrite() Option {
	return func(o *options) {
		o.atomic = true
	}
}
