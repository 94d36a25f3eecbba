// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package model

import (
	"fmt"
	"time"
)

// DMXUniverseSize is the number of addressable DMX channels. Channel 0 is
// reserved/invalid; channels 1..=512 are valid.
const DMXUniverseSize = 512

// DMXUniverse is a dense array of channel values. Index 0 is unused filler
// so that Channel values (1..=512) index directly.
type DMXUniverse struct {
	Channels [DMXUniverseSize + 1]uint8
}

// NewDMXUniverse returns an all-zero universe.
func NewDMXUniverse() *DMXUniverse {
	return &DMXUniverse{}
}

// Set writes value to channel, validating range. Channel 0 is always invalid.
func (u *DMXUniverse) Set(channel int, value uint8) error {
	if channel < 1 || channel > DMXUniverseSize {
		return fmt.Errorf("dmx channel %d out of range [1,%d]", channel, DMXUniverseSize)
	}
	u.Channels[channel] = value
	return nil
}

// Get reads channel's value, returning 0 for out-of-range channels.
func (u *DMXUniverse) Get(channel int) uint8 {
	if channel < 1 || channel > DMXUniverseSize {
		return 0
	}
	return u.Channels[channel]
}

// Snapshot returns a copy of the 512 addressable channels (1..=512).
func (u *DMXUniverse) Snapshot() [DMXUniverseSize]uint8 {
	var out [DMXUniverseSize]uint8
	copy(out[:], u.Channels[1:])
	return out
}

// DMXFade describes a single-channel transition to dispatch to the DMX
// Interface. A nil Duration means an instantaneous set.
type DMXFade struct {
	Channel  int
	Value    uint8
	Duration *time.Duration
}

// Validate checks the channel is in the addressable range.
func (f DMXFade) Validate() error {
	if f.Channel < 1 || f.Channel > DMXUniverseSize {
		return fmt.Errorf("dmx channel %d out of range [1,%d]", f.Channel, DMXUniverseSize)
	}
	return nil
}
