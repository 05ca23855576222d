// Package dispatch runs a single command through the handler registry.
//
// The dispatcher resolves the command kind, executes the handler, and turns
// every way a handler can end into an Outcome:
//   - Unknown kind: failed, detail is the lookup error
//   - Handler result: passed through, kind forced to the command's kind
//   - Handler panic: failed with "unexpected error", stack logged
//
// Dispatch is synchronous. Commands of one batch run one after another so a
// reader never sees two sessions at once.
package dispatch
