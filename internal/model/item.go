// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package model

// ItemID identifies any addressable object in the show: an item, event,
// scene, or status. Ordering, equality, and hashing use only the numeric
// value. Zero is reserved for the all-stop sentinel and must never be
// assigned to a real item.
type ItemID uint32

// AllStopID is the reserved broadcast identity for AllStop. It must never
// be a legitimate event or item id.
const AllStopID ItemID = 0

// MaxCANBusID constrains identifiers to 29 bits for CAN-bus compatible
// deployments. Enforced only when CANBusConstrained is true at verification
// time; it is a deployment policy, not a type-level limit.
const MaxCANBusID ItemID = 1<<29 - 1

// DisplayKind discriminates the tagged variant carried by an ItemDescription.
type DisplayKind int

const (
	// DisplayControl is an operator-triggerable control with no group.
	DisplayControl DisplayKind = iota
	// DisplayWith groups the item under another item's control for layout.
	DisplayWith
	// DisplayDebug is visible only in debug mode, optionally grouped.
	DisplayDebug
	// DisplayLabelControl is a label that also behaves as a control.
	DisplayLabelControl
	// DisplayLabelHidden is a label-only item, never triggerable.
	DisplayLabelHidden
	// DisplayHidden carries no layout attributes and is never shown.
	DisplayHidden
)

// HighlightState pairs a status id with the state that activates an item's
// highlight color in the operator UI.
type HighlightState struct {
	StatusID ItemID
	StateID  ItemID
}

// RGB is a basic 24-bit color used for item layout attributes.
type RGB struct {
	R, G, B uint8
}

// Display carries the layout attributes for a non-hidden ItemDescription.
// Group is only meaningful for DisplayWith and DisplayDebug; the remaining
// fields are optional for every non-hidden variant.
type Display struct {
	Kind           DisplayKind
	Group          ItemID // zero value means "no group"
	HasGroup       bool
	Position       int
	HasPosition    bool
	Color          RGB
	HasColor       bool
	Highlight      RGB
	HasHighlight   bool
	HighlightState HighlightState
	HasHighlightOn bool
	Spotlight      int // flash count; zero means no spotlight
}

// ItemDescription is the human-facing text and layout metadata for an item,
// as served by the Item Index.
type ItemDescription struct {
	Text    string
	Display Display
}

// DefaultItemDescription is returned by the Item Index in place of a
// missing entry, per spec: failure of the index is non-fatal.
func DefaultItemDescription() ItemDescription {
	return ItemDescription{Text: "", Display: Display{Kind: DisplayHidden}}
}

// ItemPair bundles an id with its description for display convenience.
// Equality, ordering, and hashing use ID only — Description is carried data,
// not part of the key.
type ItemPair struct {
	ID          ItemID
	Description ItemDescription
}

// DefaultItemPair returns the zero-value pair substituted when an id is
// unknown to the Item Index.
func DefaultItemPair(id ItemID) ItemPair {
	return ItemPair{ID: id, Description: DefaultItemDescription()}
}

// Less orders two ItemPairs by ID ascending, for list_pairs().
func (p ItemPair) Less(other ItemPair) bool {
	return p.ID < other.ID
}
