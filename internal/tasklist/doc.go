// Package tasklist mirrors project lifecycle events into an external task
// list. The Things 3 implementation drives the application over osascript;
// a disabled implementation keeps every call a no-op when the integration
// is switched off.
package tasklist
