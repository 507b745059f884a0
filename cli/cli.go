package cli

import (
	"context"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/egg/cli/cmd"
	"github.com/ardnew/egg/lang"
	"github.com/ardnew/egg/pkg"
)

// CLI is the top-level command-line interface for egg.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	MaxDepth int              `default:"${maxDepth}" help:"Limit nested applications and calls (0 disables)."`
	Version  kong.VersionFlag `help:"Print version and exit."                                                  short:"V"`

	Run   cmd.Run   `cmd:"" default:"withargs" help:"Evaluate a program"`
	Parse cmd.Parse `cmd:""                    help:"Print the syntax tree of a program"`
	Repl  cmd.Repl  `cmd:""                    help:"Start an interactive session"`
	Init  cmd.Init  `cmd:""                    help:"Initialize configuration file"`
}

// helpOptions configures the compact command tree shown by --help.
var helpOptions = kong.HelpOptions{
	Compact:             true,
	Summary:             true,
	Tree:                true,
	NoExpandSubcommands: true,
}

// Run executes the egg CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	if err := mkdirAllRequired(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var cli CLI

	// Pre-scan for logger flags so that they apply to messages logged while
	// parsing, regardless of flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli, cli.options(&ctx, exit)...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOptions(ctx, lang.WithMaxDepth(cli.MaxDepth))

	// Apply the logger flags that have no early hook, such as the time layout.
	cli.Log.start(ctx)

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

// options returns the kong parser options: metadata, groups, the YAML
// configuration file, and the variables interpolated into struct tags.
//
// Commands receive *ctx as it is when they run, so it must point at the
// context Run decorates after parsing.
func (c *CLI) options(ctx *context.Context, exit func(int)) []kong.Option {
	path := configPath(configFile)

	vars := kong.Vars{
		cmd.ConfigIdentifier: path,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"version":            pkg.Version(),
		"maxDepth":           strconv.Itoa(lang.DefaultMaxDepth),
	}

	return []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{c.Log.group(), c.Pprof.group()}),
		kong.BindSingletonProvider(func() context.Context { return *ctx }),
		kong.ConfigureHelp(helpOptions),
		kong.Configuration(resolve(*ctx), path),
		vars.CloneWith(c.Log.vars()).CloneWith(c.Pprof.vars()),
	}
}
