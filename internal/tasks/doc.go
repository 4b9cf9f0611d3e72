// Package tasks coordinates writes to the channel service and long-running reads.
//
// # Mutation Coordinator
//
// [Coordinator] exposes one method per mutation: [Coordinator.SetStatus], [Coordinator.SwitchInput],
// [Coordinator.PrepareInput], [Coordinator.InsertGraphic], [Coordinator.StopGraphics],
// [Coordinator.AddConfigItem] and [Coordinator.RemoveConfigItem]. Each follows the same protocol:
//
//  1. Issue the request through [services.ChannelAPI]
//  2. On success, invalidate the affected cache entries and emit a success [Notification]
//     - status, input and graphic insert requests invalidate the channel list and the channel detail
//     - stop graphics and output/graphic edits invalidate the channel detail
//  3. On failure, emit an error [Notification], leave the cache untouched and return the error
//
// Mutations are never retried; the operator re-triggers them.
//
// # Notifications
//
// Notifications are delivered on a buffered channel with non-blocking sends. The UI keeps the
// visible ones in a [NotificationQueue] (at most three, each hidden after its TTL).
//
// # Action Log
//
// The optional [ActionRecorder] receives a [models.Action] for every settled mutation
// (repositories.ActionLogAdapter stores them in SQLite).
//
// # Dump
//
// [Dump] lists channels and fetches all channel details concurrently with an errgroup,
// reporting [ProgressUpdate] values the same non-blocking way.
package tasks
