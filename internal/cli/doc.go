// Package cli wires together the Cobra command tree for the krokidoc binary.
//
// It defines the root command and all subcommands (render, diagram, encode,
// doctor, cache, config, version), binds flags, reads configuration, builds
// the render engine, and returns deterministic exit codes for CI gating.
package cli
