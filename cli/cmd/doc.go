// Package cmd implements the egg subcommands: run, parse, repl, and init.
//
// Commands receive their [context.Context] from kong. The caller stores the
// kong context, standard streams, and interpreter options in it with
// [WithContext], [WithStdio], and [WithOptions] before running a command.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
