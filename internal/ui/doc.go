// Package ui implements the terminal room view using bubbletea's Elm architecture.
//
// The view walks through three states:
//  1. [JoiningView] : the room is being joined; a switch confirmation is shown when the user is already elsewhere
//  2. [RoomView] : participants and the study timer, refreshed by a [tasks.PresencePoller]
//  3. [ErrorView] : the join failed
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg
// union type. Presence snapshots and join progress flow through channels and are read one message at a time.
//
// Quitting stops the poller and leaves the room. Keyboard navigation uses vim-style bindings with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
