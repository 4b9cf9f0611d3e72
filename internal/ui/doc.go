// Package ui implements the operator console using bubbletea's Elm architecture.
//
// The console has two views:
//  1. [HomeView] : channel controls, inputs, graphics and alerts of the selected channel
//  2. [ConfigView] : configured outputs and graphics, plus outputs discovered from the provider
//
// The [Model] never calls the channel service for reads. It subscribes to keys of the
// [store.Store] and redraws from the snapshots it publishes; mutations go through the
// [tasks.Coordinator], whose notifications are shown for their TTL. Switching and
// preparing inputs are debounced by the gates of a [gate.Set].
//
// [Boundary] wraps the model so a panic shows a fallback screen instead of
// tearing down the terminal.
package ui
