// Package models defines the channel service entities and the persistence interfaces of the local history.
//
// The package contains two categories of types:
//
// 1. Wire types: structs decoded from the channel service, validated at the boundary
//   - [Channel] : Channel list entry with state and input attachments
//   - [ChannelDetail] : Configured outputs, graphics and alerts of one channel
//   - [DiscoveredOutput] : Candidate output reported by the provider
//   - [ConfigItem] : Body used to add an output or graphic
//
// 2. Persistent Entities: Database-backed records
//   - [Action] : Operator mutation and its outcome
//   - [AlertRecord] : Alert kept in the local alert history
//
// Status and input guards ([CanStart], [CanStop], [CanSwitchInput], [CanInsertGraphic]) are enforced
// by callers before a mutation is issued; the service itself is the final authority.
package models
