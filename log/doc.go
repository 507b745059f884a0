// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Loggers are configured at creation time using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// [Logger.With] returns a logger that adds attributes to every message, and
// [Logger.Wrap] derives a logger with some options overridden.
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Trace sits below Debug and is reported as
// "TRACE" rather than "DEBUG-4". Messages below the configured level are
// discarded before any attribute is rendered.
//
// # Output
//
// Two formats are supported: [FormatText] (default) and [FormatJSON]. With
// [WithPretty] enabled (default), records are colorized using styles bound to
// the output writer, so color is only emitted when writing to a terminal. The
// pretty JSON layout places one field per line and is meant for reading, not
// parsing. Disable pretty output to get the plain [log/slog] handlers.
//
// Time formatting is configurable using [WithTimeLayout], which accepts
// named layouts from the [time] package (such as "RFC3339" or "kitchen"), a
// custom layout, or "none" to omit timestamps.
//
// # Package Logger
//
// The package-level functions log through a shared default logger writing to
// standard error. [Config] replaces its options. Context-unaware functions
// call their context-aware counterparts with [DefaultContextProvider].
package log
