// Package scaffold materializes new project directories: the source and
// content skeleton, the per-category media trees, the metadata file, and the
// optional task item and remote repository registrations.
package scaffold
