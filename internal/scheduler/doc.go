// Package scheduler drives the execution graph to completion: it launches
// ready instances on a bounded worker pool, reacts to completions by
// unlocking dependents, consults the condition evaluator once per instance,
// and hands the finished graph to the report aggregator.
//
// Every instance reaches exactly one terminal state through exactly one
// path (condition decision, execution, or cancellation), which is what
// guarantees loop termination for acyclic graphs with terminating job
// units.
package scheduler
