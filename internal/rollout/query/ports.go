package query

import (
	"github.com/malbeclabs/rollout-analytics/internal/rollout"
)

const (
	deliveredFrom = `FROM contractor_service.address a
JOIN contractor_service.address_smr_status_history h ON a.id = h.address_id
JOIN contractor_service.network_design_address n ON n.address_id = a.id`

	monthExpr = `to_char(h.status_date_time, 'YYYY-MM')`
)

// deliveredPredicates select addresses that reached CONNECTION_ALLOWED with a delivered history
// entry and are still part of the network design.
var deliveredPredicates = []string{
	"a.smr_status = '" + rollout.StatusConnectionAllowed + "'",
	"h.status_date_time IS NOT NULL",
	"h.status_id = '" + rollout.DeliveredHistoryStatusID + "'",
	"n.excluded = 'false'",
}

// TotalPorts sums ports over every delivered address in the design, without the history join.
func TotalPorts() Statement {
	b := &builder{
		name:    "total_ports",
		shape:   ShapeScalar,
		columns: []string{"SUM(a.ports_count)::bigint AS ports"},
		from: `FROM contractor_service.address a
JOIN contractor_service.network_design_address n ON n.address_id = a.id`,
		where: []string{
			"a.smr_status = '" + rollout.StatusConnectionAllowed + "'",
			"n.excluded = 'false'",
		},
	}
	return b.build()
}

// Ports composes a delivered-ports statement for normalized params. Grouping flags decide the
// columns, GROUP BY and ORDER BY; locality and months are bound as parameters.
func Ports(p rollout.PortsParams) Statement {
	byLocality, byMonth := p.GroupBy.ByLocality(), p.GroupBy.ByMonth()

	b := &builder{
		name:  portsStatementName(byLocality, byMonth),
		shape: ShapeScalar,
		from:  deliveredFrom,
		where: append([]string(nil), deliveredPredicates...),
	}

	if byMonth {
		b.columns = append(b.columns, monthExpr+" AS month")
		b.groupBy = append(b.groupBy, monthExpr)
	}
	if byLocality {
		b.columns = append(b.columns, "a.locality AS locality")
		b.groupBy = append(b.groupBy, "a.locality")
		b.where = append(b.where, "a.locality IS NOT NULL", "btrim(a.locality) <> ''")
	}
	b.columns = append(b.columns, "SUM(a.ports_count)::bigint AS ports")

	if p.Locality != "" {
		b.where = append(b.where, "a.locality = "+b.bind(p.Locality))
	}
	if len(p.Months) > 0 {
		b.where = append(b.where, monthExpr+" = ANY("+b.bind(p.Months)+"::text[])")
	}

	switch {
	case byLocality && byMonth:
		b.orderBy = []string{"month ASC", "ports DESC", "locality ASC"}
	case byMonth:
		b.orderBy = []string{"month ASC"}
	case byLocality:
		b.orderBy = []string{"ports DESC", "locality ASC"}
	}
	if byLocality || byMonth {
		b.shape = ShapeRows
	}

	return b.build()
}

func portsStatementName(byLocality, byMonth bool) string {
	switch {
	case byLocality && byMonth:
		return "ports_by_locality_month"
	case byLocality:
		return "ports_by_locality"
	case byMonth:
		return "ports_by_month"
	default:
		return "ports"
	}
}
