// Package tabrelay relays typeahead suggestions, title searches and document
// text from a content site without a public API to websocket clients.
// A small pool of long-lived browser pages performs the lookups; results are
// deduplicated across clients and cached for the life of the process.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, websocket/).
package tabrelay
