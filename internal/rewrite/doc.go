// Package rewrite sends selected text to a remote generative endpoint and
// delivers the rewritten result back to the interactive surface.
//
// A Dispatcher runs each request on its own goroutine and posts exactly one
// completion per request, so the surface never blocks on the network and
// concurrent requests resolve independently. The bundled Client speaks the
// OpenAI-compatible chat-completions protocol and classifies HTTP failures
// so they can be shown to the user as-is.
package rewrite
