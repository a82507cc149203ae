// Package timemetrics accumulates invested, saved and created time (T1, T2, T3) and derives NTV.
package timemetrics

import (
	"time"

	"github.com/agenthands/tempo/internal/core/model"
)

// Totals are λ-weighted sums in STU.
type Totals struct {
	T1 float64 `json:"t1"`
	T2 float64 `json:"t2"`
	T3 float64 `json:"t3"`
}

// NTV is the net time value of a set of totals.
type NTV struct {
	Totals
	NTV             float64 `json:"ntv"`
	EfficiencyRatio float64 `json:"efficiency_ratio"`
	ROITime         float64 `json:"roi_time"`
}

// NetTimeValue returns NTV = T3 − T1 + T2 with efficiency (T2+T3)/T1 and ROI NTV/T1, both 0 when T1 = 0.
func NetTimeValue(t1, t2, t3 float64) NTV {
	out := NTV{
		Totals: Totals{T1: t1, T2: t2, T3: t3},
		NTV:    t3 - t1 + t2,
	}
	if t1 != 0 {
		out.EfficiencyRatio = (t2 + t3) / t1
		out.ROITime = out.NTV / t1
	}
	return out
}

// Aggregator is an incremental, order-independent accumulator. The zero value is ready to use.
type Aggregator struct {
	totals Totals
	count  int
}

// Add folds one activity into the totals. Unknown natures are ignored.
func (a *Aggregator) Add(act model.TimeActivity) {
	v := act.STU()
	switch act.Nature {
	case model.NatureInvested:
		a.totals.T1 += v
	case model.NatureSaved:
		a.totals.T2 += v
	case model.NatureCreated:
		a.totals.T3 += v
	default:
		return
	}
	a.count++
}

// Merge folds another aggregator's totals into a.
func (a *Aggregator) Merge(other *Aggregator) {
	if other == nil {
		return
	}
	a.totals.T1 += other.totals.T1
	a.totals.T2 += other.totals.T2
	a.totals.T3 += other.totals.T3
	a.count += other.count
}

func (a *Aggregator) Totals() Totals {
	return a.totals
}

// Count is the number of activities folded in.
func (a *Aggregator) Count() int {
	return a.count
}

func (a *Aggregator) NetTimeValue() NTV {
	return NetTimeValue(a.totals.T1, a.totals.T2, a.totals.T3)
}

// Compute aggregates a whole log.
func Compute(activities []model.TimeActivity) Totals {
	var agg Aggregator
	for _, act := range activities {
		agg.Add(act)
	}
	return agg.Totals()
}

// ByNode aggregates per node ID.
func ByNode(activities []model.TimeActivity) map[string]*Aggregator {
	out := make(map[string]*Aggregator)
	for _, act := range activities {
		agg, ok := out[act.NodeID]
		if !ok {
			agg = &Aggregator{}
			out[act.NodeID] = agg
		}
		agg.Add(act)
	}
	return out
}

// ForPeriod keeps activities recorded in [from, to). A zero bound is open.
func ForPeriod(activities []model.TimeActivity, from, to time.Time) []model.TimeActivity {
	var out []model.TimeActivity
	for _, act := range activities {
		if !from.IsZero() && act.RecordedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !act.RecordedAt.Before(to) {
			continue
		}
		out = append(out, act)
	}
	return out
}

// InvestedHours sums the real (unweighted) invested hours of one node.
func InvestedHours(activities []model.TimeActivity, nodeID string) float64 {
	var h float64
	for _, act := range activities {
		if act.NodeID == nodeID && act.Nature == model.NatureInvested {
			h += act.Hours
		}
	}
	return h
}
