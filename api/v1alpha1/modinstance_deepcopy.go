package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ModInstance) DeepCopyInto(out *ModInstance) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopy copies the receiver, creating a new ModInstance.
func (in *ModInstance) DeepCopy() *ModInstance {
	if in == nil {
		return nil
	}
	out := new(ModInstance)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *ModInstance) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ModInstanceList) DeepCopyInto(out *ModInstanceList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]ModInstance, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy copies the receiver, creating a new ModInstanceList.
func (in *ModInstanceList) DeepCopy() *ModInstanceList {
	if in == nil {
		return nil
	}
	out := new(ModInstanceList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject copies the receiver, creating a new runtime.Object.
func (in *ModInstanceList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ModInstanceSpec) DeepCopyInto(out *ModInstanceSpec) {
	*out = *in
	if in.Requested != nil {
		out.Requested = make([]string, len(in.Requested))
		copy(out.Requested, in.Requested)
	}
	if in.Pins != nil {
		out.Pins = make(map[string]string, len(in.Pins))
		for k, v := range in.Pins {
			out.Pins[k] = v
		}
	}
	if in.Installed != nil {
		out.Installed = make([]InstalledPackage, len(in.Installed))
		copy(out.Installed, in.Installed)
	}
}

// DeepCopy copies the receiver, creating a new ModInstanceSpec.
func (in *ModInstanceSpec) DeepCopy() *ModInstanceSpec {
	if in == nil {
		return nil
	}
	out := new(ModInstanceSpec)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyInto copies the receiver, writing into out. in must be non-nil.
func (in *ModInstanceStatus) DeepCopyInto(out *ModInstanceStatus) {
	*out = *in
	if in.Conditions != nil {
		out.Conditions = make([]metav1.Condition, len(in.Conditions))
		for i := range in.Conditions {
			in.Conditions[i].DeepCopyInto(&out.Conditions[i])
		}
	}
	if in.Selected != nil {
		out.Selected = make([]PackageVersion, len(in.Selected))
		copy(out.Selected, in.Selected)
	}
	if in.Orphans != nil {
		out.Orphans = make([]string, len(in.Orphans))
		copy(out.Orphans, in.Orphans)
	}
	if in.Unresolved != nil {
		out.Unresolved = make([]UnresolvedDependency, len(in.Unresolved))
		copy(out.Unresolved, in.Unresolved)
	}
	if in.UpdatesAvailable != nil {
		out.UpdatesAvailable = make([]AvailableUpdate, len(in.UpdatesAvailable))
		copy(out.UpdatesAvailable, in.UpdatesAvailable)
	}
}

// DeepCopy copies the receiver, creating a new ModInstanceStatus.
func (in *ModInstanceStatus) DeepCopy() *ModInstanceStatus {
	if in == nil {
		return nil
	}
	out := new(ModInstanceStatus)
	in.DeepCopyInto(out)
	return out
}
