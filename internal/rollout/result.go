package rollout

import "time"

// SMR status codes stored in address.smr_status.
const (
	StatusConnectionAllowed = "CONNECTION_ALLOWED"
	StatusSMRCompleted      = "SMR_COMPLETED"
	StatusInProgress        = "IN_PROGRESS"
	StatusNotStarted        = "NOT_STARTED"
	StatusOnCheck           = "ON_CHECK"
)

// DeliveredHistoryStatusID is the status history code recorded when an address is delivered.
const DeliveredHistoryStatusID = "3"

type PortsRow struct {
	Month    string `json:"month,omitempty"`
	Locality string `json:"locality,omitempty"`
	Ports    int64  `json:"ports"`
}

// PortsResult holds either a scalar Total (ungrouped) or Rows (grouped).
type PortsResult struct {
	Grouped bool       `json:"grouped"`
	Total   int64      `json:"total"`
	Rows    []PortsRow `json:"rows,omitempty"`
}

// Sum returns the scalar total, or the sum over rows for grouped results.
func (r PortsResult) Sum() int64 {
	if !r.Grouped {
		return r.Total
	}
	var sum int64
	for _, row := range r.Rows {
		sum += row.Ports
	}
	return sum
}

// Empty reports whether the result carries no data for the requested filters.
func (r PortsResult) Empty() bool {
	if r.Grouped {
		return len(r.Rows) == 0
	}
	return r.Total == 0
}

type DeliveredAddress struct {
	Address     string    `json:"address"`
	Locality    string    `json:"locality"`
	Ports       int64     `json:"ports"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// AddressStatus is an address in whatever state it currently is, found by the fallback lookup.
type AddressStatus struct {
	Address     string     `json:"address"`
	Locality    string     `json:"locality"`
	Ports       int64      `json:"ports"`
	RawStatus   string     `json:"raw_status"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	Excluded    bool       `json:"excluded"`
}

// AddressResult is the outcome of a delivered-addresses query. NotFoundRows is only meaningful
// when FallbackAttempted is set; an attempted fallback with no rows means the address does not
// exist in any state.
type AddressResult struct {
	Rows              []DeliveredAddress `json:"rows"`
	FallbackAttempted bool               `json:"fallback_attempted"`
	NotFoundRows      []AddressStatus    `json:"not_found_rows,omitempty"`
}

type ObjectsStatusCounts struct {
	Delivered  int64 `json:"delivered"`
	InProgress int64 `json:"in_progress"`
	Excluded   int64 `json:"excluded"`
}

func (c ObjectsStatusCounts) Total() int64 {
	return c.Delivered + c.InProgress + c.Excluded
}
