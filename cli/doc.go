// Package cli contains the command line interface for egg.
//
// # Usage
//
//	egg [flags] [run] [-e PROGRAM] [FILE|-]...
//	egg parse [tree|json|yaml|egg] [-e PROGRAM] [FILE|-]...
//	egg repl [FILE]...
//	egg init [--force]
//
// The run command is the default, so "egg prog.egg" evaluates prog.egg and
// prints its result.
//
// # Configuration
//
// Flag defaults are read from a YAML file in the user configuration
// directory (for example ~/.config/egg/config.yaml), which "egg init"
// writes. Nested keys are joined with "-":
//
//	log:
//	  level: debug
//	max-depth: 500
//
// Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp layout (RFC3339, Kitchen, a Go layout, none)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o egg .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/egg/pprof)
//
// # Examples
//
//	# Evaluate an inline program
//	egg -e 'do(let(x, 6), *(x, 7))'
//
//	# Report the result and printed values as JSON
//	egg run -o json prog.egg
//
//	# Trace evaluation with CPU profiling
//	egg --log-level=trace --pprof-mode=cpu prog.egg
package cli
