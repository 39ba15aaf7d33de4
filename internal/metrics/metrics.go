// Package metrics holds the domain counters exposed next to the HTTP metrics on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fictiondb"

var (
	// DimensionsCreated counts fandoms and languages stored for the first time
	DimensionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dimensions_created_total",
		Help:      "Dimension values created on first use.",
	}, []string{"kind"})

	// TagUsageAdjustments counts tag usage counter changes by direction
	TagUsageAdjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tag_usage_adjustments_total",
		Help:      "Tag usage count increments and decrements applied.",
	}, []string{"direction"})

	// DeletionGuardOutcomes counts guarded deletes by kind and outcome
	DeletionGuardOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deletion_guard_outcomes_total",
		Help:      "Guarded fandom and tag deletions by outcome.",
	}, []string{"kind", "outcome"})

	// CascadeDeletes counts records removed by user cascades
	CascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_deleted_records_total",
		Help:      "Records removed while deleting users.",
	}, []string{"entity"})

	// RepairCorrections counts records rewritten by the repair pass
	RepairCorrections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "repair_corrections_total",
		Help:      "Records corrected by the integrity repair pass.",
	}, []string{"kind"})
)
