package controllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	modsv1alpha1 "github.com/bayleafwalker/modbinder/api/v1alpha1"
	"github.com/bayleafwalker/modbinder/internal/catalog"
	"github.com/bayleafwalker/modbinder/internal/graph"
	"github.com/bayleafwalker/modbinder/internal/mod"
	"github.com/bayleafwalker/modbinder/internal/resolver"
	"github.com/bayleafwalker/modbinder/internal/selector"
)

// ModInstanceReconciler resolves the requested packages of a ModInstance
// against the catalog and reports the outcome in its status.
//
// RBAC:
// +kubebuilder:rbac:groups=mods.bindery.platform,resources=modinstances,verbs=get;list;watch
// +kubebuilder:rbac:groups=mods.bindery.platform,resources=modinstances/status,verbs=get;update;patch
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch;update
type ModInstanceReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder
	Index    catalog.Index
	// Selector replaces the catalog-backed Highest selector when set.
	// Pins from the instance spec are always consulted first.
	Selector selector.Selector
	// DefaultSoftEdges applies to instances that leave softDependencies unset.
	DefaultSoftEdges graph.SoftEdgePolicy
	// Sinks returns extra event sinks for one instance. May be nil.
	Sinks func(instance types.NamespacedName) []resolver.EventSink
}

func (r *ModInstanceReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	modbinderControllerReconcileTotal.WithLabelValues(controllerModInstance).Inc()

	logger := log.FromContext(ctx).WithValues(
		"controller", controllerModInstance,
		"namespace", req.Namespace,
		"instance", req.Name,
	)
	ctx = log.IntoContext(ctx, logger)

	var instance modsv1alpha1.ModInstance
	if err := r.Get(ctx, req.NamespacedName, &instance); err != nil {
		if client.IgnoreNotFound(err) == nil {
			return ctrl.Result{}, nil
		}
		modbinderControllerReconcileErrorTotal.WithLabelValues(controllerModInstance).Inc()
		return ctrl.Result{}, err
	}
	logger.Info("reconciling mod instance", "requested", len(instance.Spec.Requested), "installed", len(instance.Spec.Installed))

	policy, err := r.softEdgePolicy(&instance)
	if err != nil {
		msg := err.Error()
		if perr := r.patchInstanceStatus(ctx, &instance, modsv1alpha1.ModInstancePhaseError, msg, clearResolution,
			metav1.Condition{Type: ConditionResolved, Status: metav1.ConditionFalse, Reason: "InvalidSpec", Message: msg},
		); perr != nil {
			logger.Error(perr, "failed to patch instance status")
		}
		r.recordEventf(&instance, corev1.EventTypeWarning, "InvalidSpec", "%s", msg)
		return ctrl.Result{}, nil
	}

	installed := instance.Spec.Snapshot()
	res := &resolver.DefaultResolver{
		Index:     r.Index,
		Selector:  r.selectorFor(&instance),
		Installed: installed,
		Events:    r.sinkFor(&instance, logger),
		Graph:     graph.Options{SoftEdges: policy},
	}

	timer := prometheus.NewTimer(modInstanceResolutionDuration)
	plan, err := res.Resolve(ctx, instance.Spec.RequestedIDs())
	timer.ObserveDuration()
	if err != nil {
		if !errors.Is(err, resolver.ErrUnresolvableRequest) {
			logger.Error(err, "resolution aborted")
			modbinderControllerReconcileErrorTotal.WithLabelValues(controllerModInstance).Inc()
			return ctrl.Result{}, err
		}
		msg := err.Error()
		if perr := r.patchInstanceStatus(ctx, &instance, modsv1alpha1.ModInstancePhaseError, msg, clearResolution,
			metav1.Condition{Type: ConditionResolved, Status: metav1.ConditionFalse, Reason: "UnresolvableRequest", Message: msg},
		); perr != nil {
			logger.Error(perr, "failed to patch instance status")
		}
		modInstanceResolutionsTotal.WithLabelValues(modsv1alpha1.ModInstancePhaseError).Inc()
		logger.Info("requested package cannot be resolved; marking instance error")
		return ctrl.Result{}, nil
	}

	g, consistent := res.InstalledGraph()
	report := instanceReport{plan: plan, consistent: consistent}
	if consistent {
		orphans, err := res.OrphansIn(g)
		if err != nil {
			logger.Error(err, "failed to compute orphans")
			modbinderControllerReconcileErrorTotal.WithLabelValues(controllerModInstance).Inc()
			return ctrl.Result{}, err
		}
		report.orphans = orphans
	} else {
		report.problems = g.Problems()
	}
	report.updates = catalog.UpdatesFor(r.Index, installed, instance.Spec.GameVersion)

	modInstanceSelected.Set(float64(len(plan.Selection)))
	modInstanceUnresolved.Set(float64(len(plan.Diagnostics.Unresolved)))
	modInstanceOrphans.Set(float64(len(report.orphans)))

	prevPhase := instance.Status.Phase
	phase, message, conds := report.summarize()
	if err := r.patchInstanceStatus(ctx, &instance, phase, message, report.apply, conds...); err != nil {
		logger.Error(err, "failed to patch instance status")
		modbinderControllerReconcileErrorTotal.WithLabelValues(controllerModInstance).Inc()
		return ctrl.Result{}, err
	}
	modInstanceResolutionsTotal.WithLabelValues(phase).Inc()
	logger.Info("mod instance resolved", "phase", phase, "selected", len(plan.Selection), "orphans", len(report.orphans))

	if prevPhase != phase && phase == modsv1alpha1.ModInstancePhaseResolved {
		r.recordEventf(&instance, corev1.EventTypeNormal, "Resolved", "%s", message)
	}
	return ctrl.Result{}, nil
}

func (r *ModInstanceReconciler) softEdgePolicy(instance *modsv1alpha1.ModInstance) (graph.SoftEdgePolicy, error) {
	if instance.Spec.SoftDependencies == "" {
		return r.DefaultSoftEdges, nil
	}
	return graph.ParseSoftEdgePolicy(string(instance.Spec.SoftDependencies))
}

func (r *ModInstanceReconciler) selectorFor(instance *modsv1alpha1.ModInstance) selector.Selector {
	var base selector.Selector = selector.Highest{Index: r.Index, Compat: instance.Spec.GameVersion}
	if r.Selector != nil {
		base = r.Selector
	}
	pins := instance.Spec.PinnedTags()
	if len(pins) == 0 {
		return base
	}
	return selector.Pinned{Pins: pins, Fallback: base}
}

func (r *ModInstanceReconciler) sinkFor(instance *modsv1alpha1.ModInstance, logger logr.Logger) resolver.EventSink {
	sinks := resolver.MultiSink{
		resolver.LogSink{Log: logger},
		&recorderSink{recorder: r.Recorder, obj: instance},
	}
	if r.Sinks != nil {
		sinks = append(sinks, r.Sinks(client.ObjectKeyFromObject(instance))...)
	}
	return sinks
}

func (r *ModInstanceReconciler) patchInstanceStatus(ctx context.Context, instance *modsv1alpha1.ModInstance, phase, message string, apply func(*modsv1alpha1.ModInstanceStatus), conds ...metav1.Condition) error {
	before := instance.DeepCopy()
	instance.Status.ObservedGeneration = instance.Generation
	instance.Status.Phase = phase
	instance.Status.Message = message
	if apply != nil {
		apply(&instance.Status)
	}
	for _, c := range conds {
		setInstanceCondition(instance, c)
	}
	return r.Status().Patch(ctx, instance, client.MergeFrom(before))
}

func (r *ModInstanceReconciler) recordEventf(obj client.Object, eventType, reason, messageFmt string, args ...any) {
	if r.Recorder == nil || obj == nil {
		return
	}
	r.Recorder.Eventf(obj, eventType, reason, messageFmt, args...)
}

func (r *ModInstanceReconciler) SetupWithManager(mgr ctrl.Manager) error {
	if r.Index == nil {
		return fmt.Errorf("ModInstanceReconciler: catalog index is required")
	}
	return ctrl.NewControllerManagedBy(mgr).
		For(&modsv1alpha1.ModInstance{}, builder.WithPredicates(predicate.GenerationChangedPredicate{})).
		Complete(r)
}

// instanceReport collects everything written to status after a successful Resolve.
type instanceReport struct {
	plan       resolver.Plan
	consistent bool
	problems   []graph.Problem
	orphans    []mod.PackageID
	updates    []catalog.Update
}

func (rep instanceReport) summarize() (string, string, []metav1.Condition) {
	unresolved := rep.plan.Diagnostics.Unresolved
	phase := modsv1alpha1.ModInstancePhaseResolved
	message := fmt.Sprintf("%d package versions selected", len(rep.plan.Selection))

	resolved := metav1.Condition{Type: ConditionResolved, Status: metav1.ConditionTrue, Reason: "Resolved", Message: message}
	if len(unresolved) > 0 {
		phase = modsv1alpha1.ModInstancePhaseDegraded
		message = summarizeUnresolved(unresolved)
		resolved = metav1.Condition{Type: ConditionResolved, Status: metav1.ConditionFalse, Reason: "UnresolvedDependencies", Message: message}
	}

	consistent := metav1.Condition{Type: ConditionGraphConsistent, Status: metav1.ConditionTrue, Reason: "Consistent", Message: "Installed packages form a complete graph"}
	if !rep.consistent {
		phase = modsv1alpha1.ModInstancePhaseDegraded
		msg := summarizeProblems(rep.problems)
		consistent = metav1.Condition{Type: ConditionGraphConsistent, Status: metav1.ConditionFalse, Reason: "InconsistentGraph", Message: msg}
		if len(unresolved) == 0 {
			message = "installed graph is inconsistent; orphans not reported: " + msg
		}
	}
	return phase, message, []metav1.Condition{resolved, consistent}
}

func (rep instanceReport) apply(status *modsv1alpha1.ModInstanceStatus) {
	status.Selected = nil
	for _, ref := range rep.plan.Selection.Refs() {
		status.Selected = append(status.Selected, modsv1alpha1.PackageVersion{UID: string(ref.UID), Version: string(ref.Tag)})
	}
	status.Unresolved = nil
	for _, d := range rep.plan.Diagnostics.Unresolved {
		status.Unresolved = append(status.Unresolved, modsv1alpha1.UnresolvedDependency{
			From:       d.From.String(),
			UID:        string(d.To),
			Constraint: d.Constraint,
			Reason:     d.Reason,
		})
	}
	status.Orphans = nil
	for _, uid := range rep.orphans {
		status.Orphans = append(status.Orphans, string(uid))
	}
	status.UpdatesAvailable = nil
	for _, u := range rep.updates {
		status.UpdatesAvailable = append(status.UpdatesAvailable, modsv1alpha1.AvailableUpdate{
			UID:       string(u.UID),
			Installed: string(u.Installed),
			Latest:    string(u.Latest),
		})
	}
}

// clearResolution drops results that no longer describe the spec.
func clearResolution(status *modsv1alpha1.ModInstanceStatus) {
	status.Selected = nil
	status.Unresolved = nil
	status.Orphans = nil
	status.UpdatesAvailable = nil
	meta.RemoveStatusCondition(&status.Conditions, ConditionGraphConsistent)
}
