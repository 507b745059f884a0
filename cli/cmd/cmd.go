package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/egg/lang"
	"github.com/ardnew/egg/log"
	"github.com/ardnew/egg/pkg"
)

type (
	kongContextKey struct{}
	stdioKey       struct{}
	optionsKey     struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongContextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongContextKey{}).(*kong.Context)

	return ktx
}

// Stdio holds the streams a command reads programs from and writes results
// to. Nil fields default to the process's standard streams.
type Stdio struct {
	In       io.Reader
	Out, Err io.Writer
}

// WithStdio returns a new context.Context whose commands use the given
// streams.
func WithStdio(ctx context.Context, s Stdio) context.Context {
	return context.WithValue(ctx, stdioKey{}, s)
}

func stdioFrom(ctx context.Context) Stdio {
	s, _ := ctx.Value(stdioKey{}).(Stdio)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// WithOptions returns a new context.Context whose commands create
// interpreters with the given options, after the defaults.
func WithOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

// newInterpreter returns an interpreter configured from ctx. Printed values
// are mirrored to out when it is not nil.
func newInterpreter(ctx context.Context, out io.Writer) *lang.Interpreter {
	opts := []lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithParseCache(true),
	}

	if out != nil {
		opts = append(opts, lang.WithOutput(out))
	}

	extra, _ := ctx.Value(optionsKey{}).([]lang.Option)

	return lang.New(append(opts, extra...)...)
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// programText assembles the program named by an inline expression and a list
// of source paths. Files are read in order and joined with newlines; a file
// named more than once (directly, through a symlink, or by another relative
// path) is read only once, and all occurrences of "-" read standard input
// once, after the regular files. The inline expression comes last.
func programText(ctx context.Context, expr string, paths []string) (string, error) {
	var (
		parts    []string
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		text, ok, err := readUniqueFile(ctx, path, seen)
		if err != nil {
			return "", err
		}

		if ok {
			parts = append(parts, text)
		}
	}

	if hasStdin {
		text, err := lang.ReadSource(ctx, stdioFrom(ctx).In)
		if err != nil {
			return "", pkg.ErrReadInput.Wrap(err)
		}

		parts = append(parts, text)
	}

	if expr != "" {
		parts = append(parts, expr)
	}

	if len(parts) == 0 {
		return "", pkg.ErrNoSource
	}

	return strings.Join(parts, "\n"), nil
}

// readUniqueFile reads the file at path unless a file with the same device
// and inode was read before.
func readUniqueFile(
	ctx context.Context,
	path string,
	seen map[fileKey]struct{},
) (string, bool, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false, pkg.ErrReadInput.Wrap(err)
	}

	file, err := os.Open(resolved)
	if err != nil {
		return "", false, pkg.ErrReadInput.Wrap(err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", false, pkg.ErrReadInput.Wrap(err)
	}

	if key, ok := makeFileKey(info); ok {
		if _, dup := seen[key]; dup {
			return "", false, nil
		}

		seen[key] = struct{}{}
	}

	text, err := lang.ReadSource(ctx, file)
	if err != nil {
		return "", false, pkg.ErrReadInput.Wrapf("%s", path).Wrap(err)
	}

	return text, true, nil
}
