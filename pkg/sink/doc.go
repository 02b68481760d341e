// Package sink provides reference implementations of the instrument.Sink
// contract: a SQLite-backed sink that persists usage and inspection records
// durably, and a logger-backed sink for hosts embedding the agent without a
// database. The SQLite sink ships with cron-scheduled retention pruning.
package sink
