package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/egg/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads YAML configuration
// files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// The document is converted as follows:
//   - Top-level keys name flags; "log-level" and "log_level" are equivalent
//   - Nested mappings are flattened by joining keys with "-", so that
//     log: {level: debug} sets --log-level
//   - Numbers are converted to strings for kong to parse
//   - Sequences set repeatable flags
//
// Example config file:
//
//	log:
//	  level: debug
//	  format: json
//	max-depth: 500
//
// Command-line flags override config file values. A file that does not parse
// is ignored with a warning.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).Decode(&doc)
		if err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.Any("error", err),
			)

			return config{}, nil
		}

		cfg := make(config)
		cfg.flatten("", doc)

		return cfg, nil
	}
}

// config implements [kong.Resolver] for flattened YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Keys are stored with hyphens.
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	// Not found - return nil to let kong use defaults
	return nil, nil
}

// flatten stores every scalar and sequence of m under its hyphenated path.
func (r config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		key = strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		if nested, ok := value.(map[string]any); ok {
			r.flatten(key, nested)

			continue
		}

		r[key] = configScalar(value)
	}
}

// configScalar converts a decoded YAML value to a form kong can map.
// Kong requires numbers as strings for parsing.
func configScalar(value any) any {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v)

	case int64:
		return strconv.FormatInt(v, 10)

	case uint64:
		return strconv.FormatUint(v, 10)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = configScalar(elem)
		}

		return out

	default:
		return v
	}
}
