package query

import "github.com/malbeclabs/rollout-analytics/internal/rollout"

const designFrom = `FROM contractor_service.address a
JOIN contractor_service.network_design_address n ON n.address_id = a.id`

// ObjectsDelivered counts delivered addresses still in the design.
func ObjectsDelivered() Statement {
	b := &builder{
		name:    "objects_delivered",
		shape:   ShapeScalar,
		columns: []string{"COUNT(*) AS count"},
		from:    designFrom,
		where: []string{
			"a.smr_status = '" + rollout.StatusConnectionAllowed + "'",
			"n.excluded = 'false'",
		},
	}
	return b.build()
}

// ObjectsInProgress counts addresses under construction or on acceptance check.
func ObjectsInProgress() Statement {
	b := &builder{
		name:    "objects_in_progress",
		shape:   ShapeScalar,
		columns: []string{"COUNT(*) AS count"},
		from:    designFrom,
		where: []string{
			"a.smr_status IN ('" + rollout.StatusOnCheck + "', '" + rollout.StatusInProgress + "')",
			"n.excluded = 'false'",
		},
	}
	return b.build()
}

// ObjectsExcluded counts addresses excluded from the design.
func ObjectsExcluded() Statement {
	b := &builder{
		name:    "objects_excluded",
		shape:   ShapeScalar,
		columns: []string{"COUNT(*) AS count"},
		from:    designFrom,
		where:   []string{"n.excluded = 'true'"},
	}
	return b.build()
}
