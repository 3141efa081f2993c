// Package projects provides the project lifecycle commands: create, list,
// rename, status, delete, stage, and publish. Builders accept providers for
// configuration and logging plus optional collaborator overrides so tests can
// substitute registries, executors, and task managers.
package projects
