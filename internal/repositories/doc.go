// Package repositories implements SQLite persistence for the local activity history.
//
// Every task operation issued by wsctl can be recorded as a [models.Activity]. The [ActivityRepository]
// stores entries with a UUID and a sequence number, lists them per task newest first, and purges the
// history of a task.
//
// Sequence numbers provide stable ordering independent of UUIDs and timestamps, which may collide when
// several operations finish within the same clock tick. The [NextSequence] function atomically increments
// per-table sequence counters in dedicated sequence tables.
package repositories
