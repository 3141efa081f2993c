// Package compose builds the rendering context handed to the template
// collaborator and computes the content fingerprint used for staleness
// detection.
package compose
