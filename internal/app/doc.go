// Package app wires the editor together: configuration, the replacement
// engine and its cache, the annotation pipeline, the check scheduler, the
// rewrite dispatcher and the interactive event loop.
//
// The event loop is the single goroutine that touches the buffer and the
// annotations. Background workers hand results back by posting callbacks
// onto the surface, which the loop drains in order.
package app
