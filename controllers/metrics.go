package controllers

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

const controllerModInstance = "ModInstance"

var (
	modbinderControllerReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modbinder_controller_reconcile_total",
			Help: "Number of reconciliations by controller.",
		},
		[]string{"controller"},
	)
	modbinderControllerReconcileErrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modbinder_controller_reconcile_error_total",
			Help: "Number of reconciliation errors by controller.",
		},
		[]string{"controller"},
	)

	modInstanceResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modbinder_modinstance_resolutions_total",
			Help: "Number of resolutions by outcome phase.",
		},
		[]string{"phase"},
	)

	modInstanceSelected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "modbinder_modinstance_selected_packages",
			Help: "Number of package versions selected in the last ModInstance reconcile.",
		},
	)
	modInstanceUnresolved = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "modbinder_modinstance_unresolved_dependencies",
			Help: "Number of unresolved dependency edges observed in the last ModInstance reconcile.",
		},
	)
	modInstanceOrphans = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "modbinder_modinstance_orphans",
			Help: "Number of orphaned installed packages observed in the last ModInstance reconcile.",
		},
	)

	modInstanceResolutionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "modbinder_modinstance_resolution_duration_seconds",
			Help:    "Time taken to resolve the requested packages of a ModInstance.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	metrics.Registry.MustRegister(
		modbinderControllerReconcileTotal,
		modbinderControllerReconcileErrorTotal,
		modInstanceResolutionsTotal,
		modInstanceSelected,
		modInstanceUnresolved,
		modInstanceOrphans,
		modInstanceResolutionDuration,
	)
}
