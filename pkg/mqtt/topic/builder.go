// Package topic constructs the MQTT topic strings of the bridged vehicle
// link. The segment layout is the protocol contract between the engine and
// whatever bridges frames onto the broker; changing it breaks existing
// bridges.
package topic

import (
	"fmt"
)

const (
	// SuffixUp carries frames from the vehicle to the ground station.
	// Structure: {root}/up/{linkID}
	SuffixUp = "up"

	// SuffixDown carries frames from the ground station to the vehicle.
	// Structure: {root}/down/{linkID}
	SuffixDown = "down"
)

// Standard MQTT wildcard definitions.
const (
	// Wildcard is the single-level wildcard "+". It matches exactly one
	// topic level.
	Wildcard = "+"

	// MultiWildcard is the multi-level wildcard "#". It matches the current
	// level and all subsequent levels and must be the last character in the
	// topic filter.
	MultiWildcard = "#"
)

// Builder constructs the frame topics under one root namespace
// (e.g. "gl/v1").
type Builder struct {
	root string
}

func NewBuilder(root string) *Builder {
	return &Builder{root: root}
}

// Up returns the uplink frame topic of one vehicle link.
func (b *Builder) Up(linkID string) string {
	return b.build(SuffixUp, linkID)
}

// UpWildcard returns the filter matching the uplink of every vehicle link.
func (b *Builder) UpWildcard() string {
	return b.build(SuffixUp, Wildcard)
}

// Down returns the downlink frame topic of one vehicle link.
func (b *Builder) Down(linkID string) string {
	return b.build(SuffixDown, linkID)
}

func (b *Builder) build(suffix, id string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, suffix, id)
}
