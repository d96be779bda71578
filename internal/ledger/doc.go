// Package ledger records completed items and runs in SQLite.
//
// The ledger lets --skip-existing recognise items that were downloaded by an
// earlier run even when their folder was moved, and backs the history
// command. It is bookkeeping only: artifacts on disk stay the source of truth
// for what a run produced. Schema changes bump schemaVersion; users delete the
// ledger file to adopt a new schema.
package ledger
