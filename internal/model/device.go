package model

import "time"

// Device status values.  New devices default to StatusActive.
const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusMaintenance = "maintenance"
)

// ValidStatus reports whether s is one of the allowed device statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance:
		return true
	}
	return false
}

// AssignedStudent is the projection of a student embedded in device
// responses: only the fields needed to identify the assignee.
type AssignedStudent struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Device represents a row in the `devices` table.  AssignedTo is
// resolved at read time by joining the students table; it is null when
// the device is unassigned or the referenced student no longer exists.
// The stored assignment is a weak reference: deleting a student does
// not touch the devices that pointed at it.
type Device struct {
	ID         uint64           `json:"id"`
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	Status     string           `json:"status"`
	AssignedTo *AssignedStudent `json:"assignedTo"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// DevicePatch carries the fields of a partial device update.  Nil
// pointers mean "leave unchanged".  ClearAssigned unassigns the device
// (an explicit null in the request body), which AssignedTo alone cannot
// express.
type DevicePatch struct {
	Name          *string
	Type          *string
	Status        *string
	AssignedTo    *uint64
	ClearAssigned bool
}
