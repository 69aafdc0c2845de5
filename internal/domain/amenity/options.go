package amenity

type options struct {
	weights map[string]float64
}

// Option configures an Adjuster.
type Option func(*options)

// WithWeights replaces the weight table. Empty maps are ignored.
func WithWeights(weights map[string]float64) Option {
	return func(o *options) {
		if len(weights) == 0 {
			return
		}
		o.weights = weights
	}
}
