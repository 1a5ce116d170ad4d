package controllers

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"

	"github.com/bayleafwalker/modbinder/internal/resolver"
)

// recorderSink turns resolution warnings and errors into Kubernetes events on
// obj. Info events stay in the log.
type recorderSink struct {
	recorder record.EventRecorder
	obj      runtime.Object
}

func (s *recorderSink) Emit(_ context.Context, e resolver.Event) {
	if s.recorder == nil || s.obj == nil {
		return
	}
	switch e.Kind {
	case resolver.EventWarning, resolver.EventError:
		s.recorder.Event(s.obj, corev1.EventTypeWarning, e.Reason, e.Message)
	}
}
