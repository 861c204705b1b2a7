package domain

import (
	"fmt"
	"time"
)

// SignID is the stable catalog number of a sign (Mahadevan numbering)
type SignID int64

// Role represents the administrative role of a sign
type Role string

const (
	RoleOpener          Role = "OPENER"
	RoleCloser          Role = "CLOSER"
	RolePayload         Role = "PAYLOAD"
	RoleQuantity        Role = "QUANTITY"
	RoleDirectionSwitch Role = "DIRECTION_SWITCH"
)

// ParseRole converts a role name into a Role
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOpener, RoleCloser, RolePayload, RoleQuantity, RoleDirectionSwitch:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Sign represents a catalog entry for a single sign
type Sign struct {
	ID          SignID    `json:"id"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	Frequency   int64     `json:"frequency"` // corpus attestation count
	Description string    `json:"description"`
	LastUpdated time.Time `json:"last_updated"`
}

// Direction is the reading direction of the validator head
type Direction string

const (
	DirectionForward Direction = "FORWARD"
	DirectionReverse Direction = "REVERSE"
)

// Flip returns the opposite direction
func (d Direction) Flip() Direction {
	if d == DirectionForward {
		return DirectionReverse
	}
	return DirectionForward
}

// Inscription represents an archived sign sequence
type Inscription struct {
	ID         string    `json:"id"`
	Signs      []SignID  `json:"signs"`
	Provenance string    `json:"provenance"`
	Status     string    `json:"status"` // verdict at archive time
	CreatedAt  time.Time `json:"created_at"`
}

// Bigram represents an aggregated sign-to-sign transition count
type Bigram struct {
	Source SignID `json:"source"`
	Target SignID `json:"target"`
	Count  int64  `json:"count"`
}
