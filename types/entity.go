package types

import "time"

// Entity is the base type for stored ledger records. It carries store
// bookkeeping timestamps only; domain timestamps (registration time,
// receipt time) are int64 unix-second fields on the records themselves,
// sourced from the injected clock.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntity creates a new Entity with current timestamps.
func NewEntity() Entity {
	now := time.Now().UTC()
	return Entity{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp to now.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}
