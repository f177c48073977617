// Package connectors observes knowledge sources outside the process.
//
// The filesystem connector watches the source document so the knowledge
// base can be rebuilt when it changes.
package connectors
