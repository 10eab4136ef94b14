package logging

// Options holds the resolved logging configuration for a component
// constructor. Components in this module (calendar, machine, scheduler,
// sim) keep a Logger field rather than consulting a package global:
// each simulation run constructs its own components.
type Options struct {
	Logger Logger
}

// Option configures Options.
type Option interface {
	apply(*Options)
}

type optionFunc func(*Options)

func (f optionFunc) apply(o *Options) { f(o) }

// WithLogger sets the Logger used by a component. A nil logger is
// equivalent to NoOp().
func WithLogger(l Logger) Option {
	return optionFunc(func(o *Options) {
		if l == nil {
			l = NoOp()
		}
		o.Logger = l
	})
}

// Resolve applies opts over a default configuration (NoOp logger).
func Resolve(opts ...Option) *Options {
	o := &Options{Logger: NoOp()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(o)
	}
	return o
}
