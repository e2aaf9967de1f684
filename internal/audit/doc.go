// Package audit defines the structured event model and asynchronous
// dispatching used for famguard's security audit trail.
//
// # Architecture boundaries
//
// This package owns the Event schema, sink implementations, and the
// buffered Dispatcher. Event names and emission policy live in the root
// package.
//
// # What this package must NOT do
//
//   - Block engine hot paths (dispatch is buffered; DropIfFull sheds
//     load instead of stalling).
//   - Log raw fingerprint signals or full device identifiers.
package audit
