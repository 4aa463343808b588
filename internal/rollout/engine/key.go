package engine

import (
	"strings"

	"github.com/malbeclabs/rollout-analytics/internal/rollout"
)

// Key identifies a cached result. Keys are built from normalized params only, so two requests
// that describe the same filter share an entry. An empty Locality or Months means "all"; a
// normalized locality is never empty and validated month tokens never contain a comma, which
// keeps the mapping injective per intent.
type Key struct {
	Intent   rollout.Intent
	Locality string
	Months   string
	GroupBy  rollout.GroupBy
}

func TotalPortsKey() Key {
	return Key{Intent: rollout.IntentTotalPorts}
}

// PortsKey expects params returned by PortsParams.Normalize.
func PortsKey(p rollout.PortsParams) Key {
	return Key{
		Intent:   rollout.IntentPorts,
		Locality: p.Locality,
		Months:   strings.Join(p.Months, ","),
		GroupBy:  p.GroupBy,
	}
}

// AddressesKey expects params returned by AddressParams.Normalize. The address search is not part
// of the key; searches are never cached.
func AddressesKey(p rollout.AddressParams) Key {
	return Key{
		Intent:   rollout.IntentDeliveredAddresses,
		Locality: p.Locality,
		Months:   strings.Join(p.Months, ","),
	}
}

func ObjectsStatusKey() Key {
	return Key{Intent: rollout.IntentObjectsStatus}
}

func (k Key) String() string {
	parts := []string{string(k.Intent), orAll(k.Locality), orAll(k.Months)}
	if k.GroupBy != "" {
		parts = append(parts, string(k.GroupBy))
	}
	return strings.Join(parts, "|")
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
