package controllers

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	modsv1alpha1 "github.com/bayleafwalker/modbinder/api/v1alpha1"
	"github.com/bayleafwalker/modbinder/internal/graph"
	"github.com/bayleafwalker/modbinder/internal/resolver"
)

const (
	ConditionResolved        = "Resolved"
	ConditionGraphConsistent = "GraphConsistent"
)

func setInstanceCondition(instance *modsv1alpha1.ModInstance, condition metav1.Condition) {
	if instance == nil {
		return
	}
	condition.ObservedGeneration = instance.Generation
	meta.SetStatusCondition(&instance.Status.Conditions, condition)
}

// maxSummaryItems bounds messages built from lists.
const maxSummaryItems = 4

func summarizeUnresolved(deps []resolver.UnresolvedDependency) string {
	if len(deps) == 0 {
		return ""
	}
	parts := make([]string, 0, min(len(deps), maxSummaryItems+1))
	for i := 0; i < len(deps) && i < maxSummaryItems; i++ {
		d := deps[i]
		parts = append(parts, fmt.Sprintf("%s requires %s (%s)", d.From, d.To, d.Reason))
	}
	if len(deps) > maxSummaryItems {
		parts = append(parts, fmt.Sprintf("...and %d more", len(deps)-maxSummaryItems))
	}
	return strings.Join(parts, "; ")
}

func summarizeProblems(problems []graph.Problem) string {
	parts := make([]string, 0, min(len(problems), maxSummaryItems+1))
	for i := 0; i < len(problems) && i < maxSummaryItems; i++ {
		parts = append(parts, problems[i].String())
	}
	if len(problems) > maxSummaryItems {
		parts = append(parts, fmt.Sprintf("...and %d more", len(problems)-maxSummaryItems))
	}
	return strings.Join(parts, "; ")
}
