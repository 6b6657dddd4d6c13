package dto

// CustomerResponse mirrors a customer budget record.
type CustomerResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	TotalMandays     float64 `json:"total_mandays"`
	UsedMandays      float64 `json:"used_mandays"`
	RemainingMandays float64 `json:"remaining_mandays"`
}

// ImportResponse reports an import outcome.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// SheetURLRequest payload.
type SheetURLRequest struct {
	URL string `json:"url"`
}

// SheetURLResponse payload.
type SheetURLResponse struct {
	URL string `json:"url"`
}
