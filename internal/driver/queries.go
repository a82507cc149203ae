package driver

// Graph layout:
//
//	(:Member)-[:RELATES]->(:Member)
//	(:Member)-[:LOGGED]->(:Activity)
//	(:Member)-[:CHANGED]->(:PerformanceChange)
//	(:Org) holds revenue and STU totals for ω.
//
// Timestamps are stored as RFC 3339 strings in UTC.

var IndexQueries = []string{
	"CREATE INDEX ON :Member(id);",
	"CREATE INDEX ON :Member(org_id);",
	"CREATE INDEX ON :Activity(node_id);",
	"CREATE INDEX ON :PerformanceChange(node_id);",
	"CREATE INDEX ON :Org(id);",
}

const memberColumns = `
		m.id AS id,
		m.org_id AS org_id,
		m.name AS name,
		m.role AS role,
		m.lambda AS lambda,
		m.replaceability AS replaceability,
		m.influence AS influence,
		m.expertise AS expertise,
		m.network AS network,
		m.growth_rate AS growth_rate,
		m.goals AS goals,
		m.created_at AS created_at
`

const relationshipColumns = `
		r.id AS id,
		r.org_id AS org_id,
		a.id AS node_a,
		b.id AS node_b,
		r.sigma AS sigma,
		r.style AS style,
		r.goal_alignment AS goal_alignment,
		r.value_match AS value_match,
		r.rhythm_sync AS rhythm_sync,
		r.density AS density,
		r.frequency AS frequency,
		r.quality AS quality,
		r.depth AS depth,
		r.last_interaction AS last_interaction,
		r.decay_rate AS decay_rate,
		r.invested_a AS invested_a,
		r.invested_b AS invested_b,
		r.months AS months
`

const activityColumns = `
		act.id AS id,
		act.node_id AS node_id,
		act.nature AS nature,
		act.hours AS hours,
		act.before_hours AS before_hours,
		act.after_hours AS after_hours,
		act.expected_months AS expected_months,
		act.monthly_hours AS monthly_hours,
		act.probability AS probability,
		act.lambda AS lambda,
		act.recorded_at AS recorded_at
`

const changeColumns = `
		c.id AS id,
		c.node_id AS node_id,
		c.category AS category,
		c.delta AS delta,
		c.timestamp AS timestamp
`

const (
	UpsertMemberQuery = `
		MERGE (m:Member {id: $id})
		SET m.org_id = $org_id,
			m.name = $name,
			m.role = $role,
			m.lambda = $lambda,
			m.replaceability = $replaceability,
			m.influence = $influence,
			m.expertise = $expertise,
			m.network = $network,
			m.growth_rate = $growth_rate,
			m.goals = $goals,
			m.created_at = coalesce(m.created_at, $created_at)
		RETURN m.id AS id
	`

	GetMemberQuery = `
		MATCH (m:Member {id: $id})
		RETURN` + memberColumns

	GetMembersByIDQuery = `
		MATCH (m:Member)
		WHERE m.id IN $ids
		RETURN` + memberColumns

	GetOrgMembersQuery = `
		MATCH (m:Member {org_id: $org_id})
		RETURN` + memberColumns + `
		ORDER BY id
	`

	UpsertRelationshipQuery = `
		MATCH (a:Member {id: $node_a})
		MATCH (b:Member {id: $node_b})
		MERGE (a)-[r:RELATES {id: $id}]->(b)
		SET r.org_id = $org_id,
			r.sigma = $sigma,
			r.style = $style,
			r.goal_alignment = $goal_alignment,
			r.value_match = $value_match,
			r.rhythm_sync = $rhythm_sync,
			r.density = $density,
			r.frequency = $frequency,
			r.quality = $quality,
			r.depth = $depth,
			r.last_interaction = $last_interaction,
			r.decay_rate = $decay_rate,
			r.invested_a = $invested_a,
			r.invested_b = $invested_b,
			r.months = $months
		RETURN r.id AS id
	`

	GetRelationshipBetweenQuery = `
		MATCH (a:Member)-[r:RELATES]-(b:Member)
		WHERE a.id = $node_a AND b.id = $node_b
		RETURN` + relationshipColumns + `
		LIMIT 1
	`

	GetOrgRelationshipsQuery = `
		MATCH (a:Member)-[r:RELATES]->(b:Member)
		WHERE r.org_id = $org_id
		RETURN` + relationshipColumns + `
		ORDER BY id
	`

	SaveActivityQuery = `
		MATCH (m:Member {id: $node_id})
		CREATE (m)-[:LOGGED]->(act:Activity {
			id: $id,
			node_id: $node_id,
			nature: $nature,
			hours: $hours,
			before_hours: $before_hours,
			after_hours: $after_hours,
			expected_months: $expected_months,
			monthly_hours: $monthly_hours,
			probability: $probability,
			lambda: $lambda,
			recorded_at: $recorded_at
		})
		RETURN act.id AS id
	`

	GetNodeActivitiesQuery = `
		MATCH (m:Member {id: $node_id})-[:LOGGED]->(act:Activity)
		RETURN` + activityColumns + `
		ORDER BY recorded_at
	`

	GetOrgActivitiesQuery = `
		MATCH (m:Member {org_id: $org_id})-[:LOGGED]->(act:Activity)
		RETURN` + activityColumns + `
		ORDER BY recorded_at
	`

	SavePerformanceChangeQuery = `
		MATCH (m:Member {id: $node_id})
		CREATE (m)-[:CHANGED]->(c:PerformanceChange {
			id: $id,
			node_id: $node_id,
			category: $category,
			delta: $delta,
			timestamp: $timestamp
		})
		RETURN c.id AS id
	`

	GetNodeChangesQuery = `
		MATCH (m:Member {id: $node_id})-[:CHANGED]->(c:PerformanceChange)
		RETURN` + changeColumns + `
		ORDER BY timestamp
	`

	GetChangesForNodesQuery = `
		MATCH (m:Member)-[:CHANGED]->(c:PerformanceChange)
		WHERE m.id IN $ids
		RETURN` + changeColumns + `
		ORDER BY timestamp
	`

	GetOrgChangesQuery = `
		MATCH (m:Member {org_id: $org_id})-[:CHANGED]->(c:PerformanceChange)
		RETURN` + changeColumns + `
		ORDER BY timestamp
	`

	UpsertOrgTotalsQuery = `
		MERGE (o:Org {id: $org_id})
		SET o.revenue = $revenue,
			o.total_stu = $total_stu,
			o.period_start = $period_start,
			o.period_end = $period_end
		RETURN o.id AS org_id
	`

	GetOrgTotalsQuery = `
		MATCH (o:Org {id: $org_id})
		RETURN o.id AS org_id,
			o.revenue AS revenue,
			o.total_stu AS total_stu,
			o.period_start AS period_start,
			o.period_end AS period_end
	`
)
