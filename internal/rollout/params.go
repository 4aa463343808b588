package rollout

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidGroupBy = errors.New("invalid group_by")
)

var monthPattern = regexp.MustCompile(`^[0-9]{4}-(0[1-9]|1[0-2])$`)

// GroupBy selects the grouping axes of a ports query.
type GroupBy string

const (
	GroupByNone     GroupBy = "none"
	GroupByLocality GroupBy = "locality"
	GroupByMonth    GroupBy = "month"
	GroupByBoth     GroupBy = "both"
)

// ParseGroupBy parses a group_by value. An empty value means GroupByNone.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GroupByNone, nil
	case GroupByNone, GroupByLocality, GroupByMonth, GroupByBoth:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGroupBy, s)
	}
}

// GroupByFlags returns the GroupBy value for the given axis flags.
func GroupByFlags(byLocality, byMonth bool) GroupBy {
	switch {
	case byLocality && byMonth:
		return GroupByBoth
	case byLocality:
		return GroupByLocality
	case byMonth:
		return GroupByMonth
	default:
		return GroupByNone
	}
}

func (g GroupBy) ByLocality() bool {
	return g == GroupByLocality || g == GroupByBoth
}

func (g GroupBy) ByMonth() bool {
	return g == GroupByMonth || g == GroupByBoth
}

// Grouped reports whether at least one grouping axis is selected.
func (g GroupBy) Grouped() bool {
	return g.ByLocality() || g.ByMonth()
}

// PortsParams filters and groups a ports count. Empty Locality and nil Months mean "all".
type PortsParams struct {
	Locality string   `json:"locality,omitempty"`
	Months   []string `json:"months,omitempty"`
	GroupBy  GroupBy  `json:"group_by,omitempty"`
}

// Normalize returns a canonical copy: nominative locality, sorted unique months and an explicit
// GroupBy. Two parameter sets that describe the same filter normalize to equal values.
func (p PortsParams) Normalize() (PortsParams, error) {
	months, err := NormalizeMonths(p.Months)
	if err != nil {
		return PortsParams{}, err
	}
	groupBy, err := ParseGroupBy(string(p.GroupBy))
	if err != nil {
		return PortsParams{}, err
	}
	return PortsParams{
		Locality: NormalizeLocality(p.Locality),
		Months:   months,
		GroupBy:  groupBy,
	}, nil
}

// AddressParams filters a delivered-addresses listing or looks up a specific address.
type AddressParams struct {
	Locality      string   `json:"locality,omitempty"`
	Months        []string `json:"months,omitempty"`
	AddressSearch string   `json:"address_search,omitempty"`
}

func (p AddressParams) Normalize() (AddressParams, error) {
	months, err := NormalizeMonths(p.Months)
	if err != nil {
		return AddressParams{}, err
	}
	return AddressParams{
		Locality:      NormalizeLocality(p.Locality),
		Months:        months,
		AddressSearch: strings.Join(strings.Fields(p.AddressSearch), " "),
	}, nil
}

// HasSearch reports whether the params target a specific address.
func (p AddressParams) HasSearch() bool {
	return len(p.SearchTokens()) > 0
}

// SearchTokens splits the address search on whitespace. Each token is matched independently so
// that punctuation in stored names ("Сарайшык, 4") does not defeat the lookup.
func (p AddressParams) SearchTokens() []string {
	return strings.Fields(p.AddressSearch)
}

// NormalizeMonths validates YYYY-MM tokens and returns them sorted and deduplicated. An empty
// input returns nil.
func NormalizeMonths(months []string) ([]string, error) {
	if len(months) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(months))
	for _, m := range months {
		m = strings.TrimSpace(m)
		if !monthPattern.MatchString(m) {
			return nil, fmt.Errorf("%w: %q (expected YYYY-MM)", ErrInvalidMonth, m)
		}
		out = append(out, m)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
