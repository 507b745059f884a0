// Package profile provides optional runtime profiling for egg using
// [github.com/pkg/profile].
//
// Profiling must be enabled at build time with the "pprof" build tag:
//
//	go build -tags pprof .
//	egg --pprof-mode cpu run fib.egg
//	go tool pprof ~/.cache/egg/pprof/cpu.pprof
//
// Without the tag, [Modes] is empty and [Config.Start] returns a no-op
// stopper, so callers never need their own build constraints.
//
// The supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread, and trace. Each writes <mode>.pprof (or trace.out) into the
// configured directory when the stopper returned by [Config.Start] is
// stopped. Tagged builds also register the [net/http/pprof] handlers on
// [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
