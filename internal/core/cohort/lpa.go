// Package cohort groups nodes into cohorts of dense relationships using label propagation.
package cohort

import (
	"sort"
)

// Edge is an undirected, weighted link between two node IDs.
type Edge struct {
	A      string
	B      string
	Weight float64
}

type Cohort struct {
	Members    []string `json:"members"`
	MeanWeight float64  `json:"mean_weight"`
	Edges      int      `json:"edges"`
}

// Detector implements weighted label propagation.
type Detector struct {
	MaxIterations int
	// MinWeight drops edges lighter than this before propagation.
	MinWeight float64
}

func NewDetector(minWeight float64) *Detector {
	return &Detector{
		MaxIterations: 20,
		MinWeight:     minWeight,
	}
}

// Detect returns cohorts of at least two members, largest first. Edges that reference
// IDs outside nodeIDs are ignored.
func (d *Detector) Detect(nodeIDs []string, edges []Edge) []Cohort {
	if len(nodeIDs) == 0 {
		return nil
	}

	known := make(map[string]bool, len(nodeIDs))
	adj := make(map[string]map[string]float64, len(nodeIDs))
	for _, id := range nodeIDs {
		known[id] = true
		adj[id] = make(map[string]float64)
	}

	for _, e := range edges {
		if !known[e.A] || !known[e.B] || e.A == e.B {
			continue
		}
		if e.Weight < d.MinWeight || e.Weight <= 0 {
			continue
		}
		adj[e.A][e.B] += e.Weight
		adj[e.B][e.A] += e.Weight
	}

	labels := make(map[string]string, len(nodeIDs))
	for _, id := range nodeIDs {
		labels[id] = id
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changed := 0
		for _, u := range nodeIDs {
			neighbors := adj[u]
			if len(neighbors) == 0 {
				continue
			}

			scores := make(map[string]float64)
			best := 0.0
			for v, w := range neighbors {
				l := labels[v]
				scores[l] += w
				if scores[l] > best {
					best = scores[l]
				}
			}

			var candidates []string
			for l, s := range scores {
				if s == best {
					candidates = append(candidates, l)
				}
			}
			// lexicographically largest wins ties so runs are reproducible
			sort.Strings(candidates)
			next := candidates[len(candidates)-1]

			if labels[u] != next {
				labels[u] = next
				changed++
			}
		}
		if changed == 0 {
			break
		}
	}

	groups := make(map[string][]string)
	for _, id := range nodeIDs {
		groups[labels[id]] = append(groups[labels[id]], id)
	}

	var out []Cohort
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		out = append(out, summarize(members, adj))
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Members) != len(out[j].Members) {
			return len(out[i].Members) > len(out[j].Members)
		}
		return out[i].Members[0] < out[j].Members[0]
	})
	return out
}

func summarize(members []string, adj map[string]map[string]float64) Cohort {
	in := make(map[string]bool, len(members))
	for _, m := range members {
		in[m] = true
	}
	var total float64
	var n int
	for _, u := range members {
		for v, w := range adj[u] {
			if in[v] && u < v {
				total += w
				n++
			}
		}
	}
	c := Cohort{Members: members, Edges: n}
	if n > 0 {
		c.MeanWeight = total / float64(n)
	}
	return c
}
