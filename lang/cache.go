package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/egg/log"
)

// ParseReader parses one expression from the entire content of r.
func ParseReader(ctx context.Context, r io.Reader) (Node, error) {
	text, err := ReadSource(ctx, r)
	if err != nil {
		return nil, err
	}

	return Parse(text)
}

// ReadSource reads the entire content of r as program text.
func ReadSource(ctx context.Context, r io.Reader) (string, error) {
	// Read ahead asynchronously so that slow sources (pipes, terminals) are
	// drained while earlier chunks are copied.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", WrapError(err).With(slog.String("source", "reader"))
	}

	if err := context.Cause(ctx); err != nil {
		return "", ErrCanceled.Wrap(err)
	}

	return string(data), nil
}

// parseCache stores parsed programs keyed by the xxh3 hash of their source.
// Trees are immutable after parsing, so a cached tree may be evaluated any
// number of times.
type parseCache struct {
	entries sync.Map // string → *state
}

// state tracks the parse of one source text.
type state struct {
	once   sync.Once
	source string
	node   Node
	err    error
}

func newParseCache() *parseCache {
	return &parseCache{}
}

// sourceKey returns the cache key of source.
func sourceKey(source string) string {
	return strconv.FormatUint(xxh3.HashString(source), 36)
}

func (c *parseCache) parse(
	ctx context.Context,
	logger log.Logger,
	source string,
) (Node, error) {
	key := sourceKey(source)

	value, cacheHit := c.entries.LoadOrStore(key, &state{source: source})

	entry, ok := value.(*state)
	if !ok || entry.source != source {
		// Hash collision: parse without caching.
		logger.TraceContext(ctx, "cache bypass", slog.String("key", key))

		return Parse(source)
	}

	logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("key", key),
		slog.Bool("cache_hit", cacheHit),
	)

	entry.once.Do(func() {
		entry.node, entry.err = Parse(source)
		if entry.err == nil {
			logger.TraceContext(
				ctx,
				"parse complete",
				slog.Int("nodes", Count(entry.node)),
			)
		}
	})

	return entry.node, entry.err
}

// Len returns the number of cached sources.
func (c *parseCache) Len() int {
	n := 0

	c.entries.Range(func(_, _ any) bool {
		n++

		return true
	})

	return n
}
