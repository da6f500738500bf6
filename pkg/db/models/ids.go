package models

import "github.com/google/uuid"

// assignID gives a row its identity before insert so the same models work on
// Postgres and on SQLite, which has no gen_random_uuid().
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model, in dependency order.
func All() []any {
	return []any{
		&User{},
		&InventoryItem{},
		&CartItem{},
		&Order{},
		&Checkout{},
	}
}
