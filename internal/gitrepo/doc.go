// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for inspecting worktree status, remotes, and
// branches, along with remote URL parsing utilities consumed by the identity
// and channel services that need structured Git operations.
package gitrepo
