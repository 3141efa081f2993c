// Package project defines the canonical project record and the registry that
// discovers, loads, and persists records beneath the configured base
// directory.
//
// The metadata file inside each project's content directory is the durable
// on-disk contract; missing fields default on load so schema additions stay
// backward compatible.
package project
