// Package urljs generates standalone JavaScript that reverses a server
// route table by name, so clients never hardcode URL strings.
//
// Generation works by proof rather than by translating regex syntax: each
// route is reversed once with registered sample values, the produced URL
// is matched back against the route's own pattern, and the match spans
// mark where caller arguments belong. A route that cannot be confirmed
// this way is omitted instead of emitting a guess.
package urljs
