// Package trace records what the lowering pipeline is doing.
//
// Events are grouped by scope: the driver, a pass over a whole module, a
// single function, and individual lowering steps (scope pushes, pops, early
// exits). The level picks how deep the recording goes:
//
//   - LevelOff: nothing
//   - LevelError: ring only, dumped when lowering panics
//   - LevelPhase: driver and pass spans
//   - LevelDetail: one span per lowered function
//   - LevelDebug: every scope and loop operation
//
// Tracers travel through the pipeline on the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "lower", 0)
//	defer span.End("")
package trace
