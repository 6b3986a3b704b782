// Package hcl implements the HCL workflow loader: it parses `job` blocks
// from a workflow file and translates them into the format-agnostic
// config model. Custom run conditions are captured as raw expressions and
// evaluated later by the condition package, once the dependency results
// they reference exist.
package hcl
