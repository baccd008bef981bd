package symspell

// DefaultOptions are tuned for short Danish learner tokens: distance-2
// candidate generation over a prefix window keeps the delete map compact.
var DefaultOptions = IndexOptions{
	MaxDictionaryEditDistance: 2,
	PrefixLength:              7,
	CountThreshold:            1,
	InitialCapacity:           65536,
}

type IndexOptions struct {
	MaxDictionaryEditDistance int
	PrefixLength              int
	CountThreshold            int // minimum count for a term to be suggestible
	InitialCapacity           int
}

type Option interface {
	Apply(options *IndexOptions)
}

type funcOption struct {
	ops func(options *IndexOptions)
}

func (w funcOption) Apply(conf *IndexOptions) {
	w.ops(conf)
}

func newFuncOption(f func(options *IndexOptions)) *funcOption {
	return &funcOption{ops: f}
}

func WithMaxDictionaryEditDistance(maxDictionaryEditDistance int) Option {
	return newFuncOption(func(options *IndexOptions) {
		options.MaxDictionaryEditDistance = maxDictionaryEditDistance
	})
}

func WithPrefixLength(prefixLength int) Option {
	return newFuncOption(func(options *IndexOptions) {
		options.PrefixLength = prefixLength
	})
}

func WithCountThreshold(countThreshold int) Option {
	return newFuncOption(func(options *IndexOptions) {
		options.CountThreshold = countThreshold
	})
}

func WithInitialCapacity(capacity int) Option {
	return newFuncOption(func(options *IndexOptions) {
		options.InitialCapacity = capacity
	})
}
