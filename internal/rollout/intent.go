package rollout

import "strings"

// Intent is the analytics question type produced by the classifier.
type Intent string

const (
	IntentTotalPorts         Intent = "total_ports"
	IntentPorts              Intent = "ports"
	IntentDeliveredAddresses Intent = "delivered_addresses"
	IntentObjectsStatus      Intent = "objects_status"
	IntentUnsupported        Intent = "unsupported"
	IntentNone               Intent = "none"
)

// ParseIntent maps a classifier tag to an Intent. Unknown tags map to IntentNone.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentTotalPorts:
		return IntentTotalPorts
	case IntentPorts:
		return IntentPorts
	case IntentDeliveredAddresses:
		return IntentDeliveredAddresses
	case IntentObjectsStatus:
		return IntentObjectsStatus
	case IntentUnsupported:
		return IntentUnsupported
	default:
		return IntentNone
	}
}

// RequiresStore reports whether resolving the intent queries the store.
func (i Intent) RequiresStore() bool {
	switch i {
	case IntentTotalPorts, IntentPorts, IntentDeliveredAddresses, IntentObjectsStatus:
		return true
	default:
		return false
	}
}

func (i Intent) String() string {
	return string(i)
}

// SupportedIntents lists the analytics questions the engine can answer, in display order.
func SupportedIntents() []Intent {
	return []Intent{IntentTotalPorts, IntentPorts, IntentDeliveredAddresses, IntentObjectsStatus}
}
