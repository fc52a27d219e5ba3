// Package config defines the format-agnostic configuration model for the
// application, its defaults and validation, along with the Loader interface
// for reading configuration from files.
//
// The `config.Model` is the single source of truth for `app`. Concrete
// loaders, such as for HCL, are provided in separate packages. Command-line
// flags are applied by `cli` after a loader has run.
package config
