package model

import "time"

// Customer is one ledger owner. Each customer has exactly one ledger.
type Customer struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	ID        int
	RowCount  int
}
