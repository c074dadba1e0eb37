// Package check runs periodic background grammar checks over the document
// and applies the resulting error spans as annotations.
//
// A Scheduler owns the check cycle: on each tick it snapshots the document
// through the interactive surface, hands the text to a Checker, and posts
// the resulting batch back onto the surface so annotations are only ever
// touched from the interactive loop. Oversized documents skip the cycle.
// Checks over an explicit selection bypass the ticker entirely.
package check
