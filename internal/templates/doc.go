// Package templates provides the Renderer collaborator consumed by channels.
// The core treats rendering as a black box: a named template plus a context
// map in, text out.
package templates
