// Package replace implements the rule-based text replacement engine:
// an ordered table of wrong/correct word pairs, the substitution
// operations triggered by typing events, and a bounded FIFO cache of
// already-processed line prefixes.
//
// Rule tables are loaded from a line-oriented text file or from a Lua
// script and can be swapped atomically at runtime, so a reload never
// exposes a partially updated table to an in-flight substitution.
package replace
