// Package tasks coordinates the stateful parts of the study client: room membership, presence polling and
// the daily checklist.
//
// # Rooms
//
// [RoomController] owns the single "current room" pointer for one room kind (open or group):
//
//  1. [RoomController.Create] validates title and capacity locally, creates an open room and records it
//     as current, since the server seats the creator.
//  2. [RoomController.Join] joins a room. When the server reports that the user is already in a room, the
//     controller recovers the pointer and, for a different room, asks the [Confirmer] before leaving the
//     previous room and retrying the join once.
//  3. [RoomController.Leave] leaves and always clears the pointer, even when the request fails.
//  4. [RoomController.LeaveOnExit] sends a fire-and-forget leave while the process shuts down.
//  5. [RoomController.Delete] and [RoomController.End] remove or close a room after confirmation.
//
// Group rooms also drive the study timer: it is started after a join and ended before a leave.
//
// # Presence
//
// [PresencePoller] refreshes participants (every 5s) and the timer (every 1s) for a joined room until
// stopped. Failed ticks are logged and retried on the next interval.
//
// # Checklist
//
// [ChecklistManager] wraps the checklist endpoints, builds month calendars and deletes items in bulk with
// a rate-limited worker pool ([ChecklistManager.DeleteMany]).
//
// # Progress Reporting
//
// Long operations accept a send-only [ProgressUpdate] channel. Updates use select with default so a slow
// or absent reader never blocks the operation.
package tasks
