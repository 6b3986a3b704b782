// Package config defines the format-agnostic workflow model for the
// application, along with the Loader interface for producing it from
// various sources.
//
// The config.Workflow is the single source of truth for the graph and
// scheduler packages. Concrete loaders, such as for HCL and YAML, are
// provided in separate packages.
package config
