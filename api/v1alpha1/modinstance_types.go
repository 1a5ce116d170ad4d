package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// SoftDependencyPolicy controls whether soft dependencies count as edges
// when deciding which installed packages are still needed.
//
// +kubebuilder:validation:Enum=Exclude;Include
type SoftDependencyPolicy string

const (
	SoftDependenciesExclude SoftDependencyPolicy = "Exclude"
	SoftDependenciesInclude SoftDependencyPolicy = "Include"
)

const (
	ModInstancePhasePending  = "Pending"
	ModInstancePhaseResolved = "Resolved"
	ModInstancePhaseDegraded = "Degraded"
	ModInstancePhaseError    = "Error"
)

// ModInstance is one game installation: the packages a user asked for and
// what is currently installed.
//
// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced,shortName=mi
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Game",type=string,JSONPath=`.spec.gameVersion`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`
type ModInstance struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ModInstanceSpec   `json:"spec"`
	Status ModInstanceStatus `json:"status,omitempty"`
}

type ModInstanceSpec struct {
	// GameVersion filters candidate versions by compatibility. Empty accepts all.
	GameVersion string `json:"gameVersion,omitempty"`
	// Requested lists the package uids the user explicitly asked for.
	Requested []string `json:"requested,omitempty"`
	// Pins fixes the version chosen for a uid whenever it satisfies the
	// constraint in play.
	Pins      map[string]string  `json:"pins,omitempty"`
	Installed []InstalledPackage `json:"installed,omitempty"`
	// +kubebuilder:default=Exclude
	SoftDependencies SoftDependencyPolicy `json:"softDependencies,omitempty"`
}

type InstalledPackage struct {
	UID     string `json:"uid"`
	Version string `json:"version,omitempty"`
	// AsDependency marks a package that was installed only to satisfy another.
	AsDependency bool `json:"asDependency,omitempty"`
}

type PackageVersion struct {
	UID     string `json:"uid"`
	Version string `json:"version"`
}

type UnresolvedDependency struct {
	From       string `json:"from"`
	UID        string `json:"uid"`
	Constraint string `json:"constraint,omitempty"`
	Reason     string `json:"reason"`
}

type AvailableUpdate struct {
	UID       string `json:"uid"`
	Installed string `json:"installed"`
	Latest    string `json:"latest"`
}

type ModInstanceStatus struct {
	ObservedGeneration int64              `json:"observedGeneration,omitempty"`
	Phase              string             `json:"phase,omitempty"`
	Message            string             `json:"message,omitempty"`
	Conditions         []metav1.Condition `json:"conditions,omitempty"`

	Selected         []PackageVersion       `json:"selected,omitempty"`
	Orphans          []string               `json:"orphans,omitempty"`
	Unresolved       []UnresolvedDependency `json:"unresolved,omitempty"`
	UpdatesAvailable []AvailableUpdate      `json:"updatesAvailable,omitempty"`
}

// +kubebuilder:object:root=true
type ModInstanceList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ModInstance `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ModInstance{}, &ModInstanceList{})
}
