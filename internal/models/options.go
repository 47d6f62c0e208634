package models

// DefaultSeed seeds parameter initialization when WithSeed is not given.
const DefaultSeed int64 = 42

type options struct {
	seed int64
}

// Option configures architecture construction.
type Option func(*options)

// WithSeed sets the seed of the initializer that draws every parameter and
// dropout mask source. Two models built with the same seed are identical.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

func buildOptions(opts []Option) options {
	o := options{seed: DefaultSeed}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
