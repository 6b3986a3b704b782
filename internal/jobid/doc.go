// Package jobid defines the structured identifier for job instances. An
// address couples a template identifier with the frozen matrix binding that
// produced the instance, and serializes to a stable, human-readable string
// used as the instance key throughout the engine.
package jobid
