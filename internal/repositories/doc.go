// Package repositories implements SQLite persistence for the local operator history.
//
// Key Implementations:
//   - [AlertRepository] : alerts observed on channel detail fetches, keyed by channel and alert id
//   - [ActionRepository] : every mutation issued through the coordinator and its outcome
//   - [ActionLogAdapter] : plugs [ActionRepository] into tasks.Coordinator as its action recorder
//
// Actions carry a sequence number for stable ordering. The [NextSequence] function atomically
// increments per-table sequence counters in dedicated sequence tables.
//
// Cleared alerts expire after models.DefaultAlertExpiry and are removed by [AlertRepository.Prune].
package repositories
