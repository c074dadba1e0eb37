// Package surface provides the interactive editing surface: the line
// buffer, the position and range types used to address it, and a
// terminal editor built on tcell.
//
// The surface owns buffer content, cursor, selection and highlight
// rendering. Background workers never touch any of that directly;
// they hand mutations to Post, which marshals them onto the event
// loop as pending callbacks, so all mutable editor state is only ever
// touched from one logical thread of control.
package surface
