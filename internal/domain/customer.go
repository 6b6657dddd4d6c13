package domain

// Customer carries a per-customer manday budget. Records are created or
// overwritten wholesale by spreadsheet import; ticket confirmation is the
// only other mutator.
type Customer struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	TotalMandays     float64 `json:"totalMandays"`
	UsedMandays      float64 `json:"usedMandays"`
	RemainingMandays float64 `json:"remainingMandays"`
}

// Debit returns a copy with usedMandays increased by amount and
// remainingMandays recomputed as total minus used. The balance may go
// negative; callers decide how to surface over-spend.
func (c Customer) Debit(amount float64) Customer {
	c.UsedMandays += amount
	c.RemainingMandays = c.TotalMandays - c.UsedMandays
	return c
}
