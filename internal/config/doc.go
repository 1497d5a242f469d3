// Package config defines the format-agnostic description of a compositing
// graph, along with the Loader interface implemented per file format.
//
// The `config.Model` is the single source of truth for the builder. Concrete
// loaders, for HCL and YAML, are provided in separate packages.
package config
