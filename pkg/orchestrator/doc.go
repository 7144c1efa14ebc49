// Package orchestrator drives one /generate-sql request through the
// six-phase generation pipeline, streaming a newline-delimited frame
// protocol to the HTTP handler as it goes.
//
// # Phases
//
//	runPhase1 - question validation & translation
//	runPhase2 - keyword extraction
//	runPhase3 - context retrieval (vector store + LSH + schema rendering)
//	runPhase4 - SQL candidate generation, fanned out in parallel
//	runPhase5 - test generation & evaluation
//	runPhase6 - selection, escalation, delimiter correction, ThothLog write
//
// Each method maps 1:1 onto a step function of the pipeline this package
// is ported from (see DESIGN.md). Every phase re-checks ctx.Err() before
// issuing work and on cancellation the run emits a single CANCELLED frame
// and returns without writing a ThothLog entry.
//
// Fan-out inside phase 4 uses pkg/jobs/worker's Future pattern bounded by
// MaxParallelSQLs; phase 5's simpler per-candidate evaluation fan-out uses
// golang.org/x/sync/errgroup with SetLimit, matching the two fan-out
// idioms this pack exercises for background jobs and request-path work
// respectively.
package orchestrator
