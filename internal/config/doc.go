// Package config loads the pipeline configuration from YAML with
// environment-variable expansion, applies defaults, and validates it.
// The series catalog (which series to ingest, from which provider) is
// part of the configuration and read-only to the pipeline.
package config
