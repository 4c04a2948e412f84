package payment

// Summary aggregates an owner's payments: per-status counts plus a breakdown
// of failure reasons.
type Summary struct {
	Total            int            `json:"total"`
	StatusCounts     map[Status]int `json:"statusCounts"`
	FailureBreakdown map[string]int `json:"failureBreakdown"`
}

func NewSummary() *Summary {
	return &Summary{
		StatusCounts:     map[Status]int{},
		FailureBreakdown: map[string]int{},
	}
}
