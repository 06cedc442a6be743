// Package migration holds the reconciliation vocabulary of a migration run:
// decisions, configured strategies, run-scoped mapping tables, source
// selection filters, per-kind summaries, and the sentinel errors that
// classify destination-side conflicts.
package migration
