package query

import (
	"strings"

	"github.com/malbeclabs/rollout-analytics/internal/rollout"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Addresses composes an address listing for normalized params.
//
// With includeAllStatuses unset the statement lists delivered addresses with their earliest
// delivery timestamp. With it set the delivered predicates are dropped and status history is
// outer-joined, so addresses in any state (or without history) are returned with their raw
// status code.
func Addresses(p rollout.AddressParams, includeAllStatuses bool) Statement {
	var b *builder
	if includeAllStatuses {
		b = &builder{
			name:  "address_statuses",
			shape: ShapeRows,
			columns: []string{
				"a.name AS address_name",
				"a.locality AS locality",
				"a.ports_count::bigint AS ports_count",
				"a.smr_status::text AS smr_status",
				"MIN(h.status_date_time) FILTER (WHERE h.status_id = '" + rollout.DeliveredHistoryStatusID + "') AS delivered_at",
				"COALESCE(bool_or(n.excluded::text = 'true'), false) AS excluded",
			},
			from: `FROM contractor_service.address a
LEFT JOIN contractor_service.address_smr_status_history h ON a.id = h.address_id
LEFT JOIN contractor_service.network_design_address n ON n.address_id = a.id`,
			groupBy: []string{"a.id", "a.name", "a.locality", "a.ports_count", "a.smr_status"},
			orderBy: []string{"address_name ASC"},
		}
	} else {
		b = &builder{
			name:  "delivered_addresses",
			shape: ShapeRows,
			columns: []string{
				"a.name AS address_name",
				"a.locality AS locality",
				"a.ports_count::bigint AS ports_count",
				"MIN(h.status_date_time) AS delivered_at",
			},
			from:    deliveredFrom,
			where:   append([]string(nil), deliveredPredicates...),
			groupBy: []string{"a.id", "a.name", "a.locality", "a.ports_count"},
			orderBy: []string{"delivered_at DESC", "address_name ASC"},
		}
	}

	if p.Locality != "" {
		b.where = append(b.where, "a.locality = "+b.bind(p.Locality))
	}
	if len(p.Months) > 0 {
		b.where = append(b.where, monthExpr+" = ANY("+b.bind(p.Months)+"::text[])")
	}
	for _, token := range p.SearchTokens() {
		b.where = append(b.where, "a.name ILIKE '%' || "+b.bind(likeEscaper.Replace(token))+"::text || '%'")
	}

	return b.build()
}
