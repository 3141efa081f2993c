// Package channels implements the publication destinations as a closed
// variant set behind one shared capability interface: stage materializes
// output without external visibility, publish makes it visible and updates
// the record's channel sync state, and eligibility gates what each channel
// will accept.
package channels
