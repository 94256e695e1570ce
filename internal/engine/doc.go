// Package engine orchestrates simulations end to end: it resolves a process
// model (calibrated from history or built from caller parameters), runs the
// path generation, derives the statistics report, and hands the results to
// the persistence and export collaborators.
//
// Cancellation is cooperative and coarse-grained. Each simulation owns an
// entry in a mutex-guarded stop registry keyed by simulation id; the flag is
// checked between major phases only, never inside a generation loop. A
// positive check surfaces as ErrInterrupted, which batch orchestration
// treats as a control signal distinct from computational failure: results
// already completed are kept, not discarded.
package engine
