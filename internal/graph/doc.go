// Package graph builds and validates the execution DAG: job templates are
// expanded into instances, template-level dependency identifiers are
// resolved into instance-level edges, and the result is checked for unknown
// references, self-dependencies, and cycles before anything is scheduled.
package graph
