// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package itemindex holds the display metadata (ItemDescription) for every
// item id known to the show: scenes, events, statuses, groups and bare
// labels. It is the one piece of state every other component may read but
// only the Event Handler's edit path may write, so it is implemented as a
// plain mutex-protected map rather than its own actor: there is no
// meaningful ordering requirement between reads and writes that a mailbox
// would buy us.
package itemindex
