// Package media scans a project's published media subtree into a typed,
// stably ordered inventory consumed by the content composer and channels.
package media
