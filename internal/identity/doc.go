// Package identity propagates project rename, status, and delete operations
// across every system that stores a copy of the project's identity: the local
// directory tree, the metadata file, the git remote, the task list, and
// published website artifacts.
package identity
