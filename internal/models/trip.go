package models

// Trip represents a shared trip whose members split expenses.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Name is the display name of the trip (e.g., "Lisbon long weekend").
	Name string

	// Destination is a free-form place name.
	Destination string

	// Currency is the ISO 4217 code all trip amounts are recorded in.
	Currency string

	// Members is the ordered list of participant IDs on this trip.
	// Order is preserved and decides tie-breaks when suggesting transfers.
	Members []string

	// CreatedBy is the user ID that created the trip.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64
}

// HasMember reports whether id is one of the trip's members.
func (t *Trip) HasMember(id string) bool {
	for _, m := range t.Members {
		if m == id {
			return true
		}
	}
	return false
}
