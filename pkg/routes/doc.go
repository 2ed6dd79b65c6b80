// Package routes models a server-side URL routing table: typed path
// patterns, raw regex patterns, namespaced includes, and name-based
// reversal. The table is the input to the client-side URL generator in
// pkg/urljs; Reverse is the server-side counterpart of the generated
// JavaScript and follows the same matching rules.
package routes
