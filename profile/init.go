package profile

// Config reports the settings of a profiler: the mode to record, the output
// directory, and whether pkg/profile's own log lines are suppressed.
type Config func() (mode, path string, quiet bool)

// Option modifies a [Config].
type Option func(Config) Config

// Make returns a Config with the given options applied to an empty mode,
// an empty path (pkg/profile's temporary directory), and quiet disabled.
func Make(opts ...Option) Config {
	c := Config(func() (string, string, bool) { return "", "", false })

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// Start begins profiling and returns a stopper that flushes the profile.
// It returns a no-op stopper when the mode is empty or unknown, or when
// built without the pprof tag. Both Start and Stop are always safe to call.
func (c Config) Start() interface{ Stop() } {
	mode, path, quiet := c()

	if mode == "" {
		return ignore{}
	}

	return start(mode, path, quiet)
}

// WithMode sets the profiling mode. See [Modes].
func WithMode(mode string) Option {
	return func(c Config) Config {
		_, path, quiet := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithPath sets the directory the profile is written to.
func WithPath(path string) Option {
	return func(c Config) Config {
		mode, _, quiet := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithQuiet suppresses the messages pkg/profile logs on start and stop.
func WithQuiet(quiet bool) Option {
	return func(c Config) Config {
		mode, path, _ := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

type ignore struct{}

func (ignore) Stop() {}
