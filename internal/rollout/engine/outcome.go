package engine

import (
	"time"

	"github.com/malbeclabs/rollout-analytics/internal/rollout"
)

// Kind tags how a resolution ended.
type Kind string

const (
	// KindNone means the question is not an analytics question; the caller answers it another way.
	KindNone Kind = "none"
	// KindUnsupported means an analytics question the engine cannot answer.
	KindUnsupported Kind = "unsupported"
	// KindUnavailable means the store was not available; nothing was queried or cached.
	KindUnavailable Kind = "unavailable"
	// KindQueryFailed carries the error text of a failed fetch.
	KindQueryFailed Kind = "query_failed"
	// KindMalformedParameters means the parameter record was missing or invalid.
	KindMalformedParameters Kind = "malformed_parameters"
	// KindNoData is a successful query with a zero or empty ports result.
	KindNoData Kind = "no_data"
	// KindNotFound is an address query that matched nothing, including after the fallback.
	KindNotFound Kind = "not_found"
	// KindStatusUndetermined is an objects status query where every count was zero.
	KindStatusUndetermined Kind = "status_undetermined"

	KindTotalPorts    Kind = "total_ports"
	KindPorts         Kind = "ports"
	KindAddresses     Kind = "addresses"
	KindAddressStatus Kind = "address_status"
	KindObjectsStatus Kind = "objects_status"
)

// Failed reports whether the outcome is a fault rather than an answer.
func (k Kind) Failed() bool {
	switch k {
	case KindUnavailable, KindQueryFailed, KindMalformedParameters:
		return true
	default:
		return false
	}
}

// Request is a classified analytics question.
type Request struct {
	Intent  rollout.Intent         `json:"intent"`
	Ports   *rollout.PortsParams   `json:"ports,omitempty"`
	Address *rollout.AddressParams `json:"address,omitempty"`
}

// Outcome is the shaped result of one resolution. Only the fields relevant to Kind are set.
type Outcome struct {
	Kind   Kind           `json:"kind"`
	Intent rollout.Intent `json:"intent"`

	// Normalized params the result was resolved with.
	PortsParams   *rollout.PortsParams   `json:"ports_params,omitempty"`
	AddressParams *rollout.AddressParams `json:"address_params,omitempty"`

	Ports     *rollout.PortsResult         `json:"ports,omitempty"`
	Addresses *rollout.AddressResult       `json:"addresses,omitempty"`
	Objects   *rollout.ObjectsStatusCounts `json:"objects,omitempty"`
	Supported []rollout.Intent             `json:"supported,omitempty"`

	Err        string    `json:"error,omitempty"`
	Cached     bool      `json:"cached"`
	ResolvedAt time.Time `json:"resolved_at"`
}
