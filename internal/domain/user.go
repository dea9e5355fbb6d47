// Package domain contains entity without logic, just meta-data
package domain

// Display names and room names are 2..20 characters once trimmed.
// The boundary enforces this; the core treats both as opaque.
const (
	MinNameLen = 2
	MaxNameLen = 20
)

// Username is unique only as a key inside one room.
type Username string
