package selector

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/bayleafwalker/modbinder/internal/mod"
	"github.com/bayleafwalker/modbinder/internal/semver"
)

// The selector service speaks google.protobuf.Struct in both directions:
//
//	request:  {"uid": string, "constraint": string (optional)}
//	response: {"uid": string, "version": string}
//
// Failures travel as gRPC status codes: NotFound (no candidate), Aborted
// (declined), Canceled/DeadlineExceeded (context), InvalidArgument.
const (
	serviceName  = "modbinder.selector.v1.VersionSelector"
	chooseMethod = "/" + serviceName + "/Choose"

	fieldUID        = "uid"
	fieldConstraint = "constraint"
	fieldVersion    = "version"
)

// ChooseServer is the server-side contract of the selector service.
type ChooseServer interface {
	Choose(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ChooseServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Choose", Handler: chooseHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "modbinder/selector/v1/selector.proto",
}

func chooseHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChooseServer).Choose(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: chooseMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChooseServer).Choose(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Register exposes sel on s.
func Register(s grpc.ServiceRegistrar, sel Selector, log logr.Logger) {
	s.RegisterService(&serviceDesc, &Server{Selector: sel, Log: log})
}

// Server serves a local Selector over gRPC.
type Server struct {
	Selector Selector
	Log      logr.Logger
}

func (s *Server) Choose(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	uid := fields[fieldUID].GetStringValue()
	if uid == "" {
		return nil, status.Error(codes.InvalidArgument, "uid is required")
	}
	var constraint *semver.Constraint
	if raw, ok := fields[fieldConstraint]; ok && raw.GetStringValue() != "" {
		c := semver.ParseTagConstraint(raw.GetStringValue())
		constraint = &c
	}

	ref, err := s.Selector.Choose(ctx, mod.PackageID(uid), constraint)
	if err != nil {
		s.Log.V(1).Info("choose failed", "uid", uid, "error", err.Error())
		return nil, toStatus(err)
	}
	s.Log.V(1).Info("chose version", "uid", uid, "version", ref.Tag)
	return structpb.NewStruct(map[string]any{
		fieldUID:     string(ref.UID),
		fieldVersion: string(ref.Tag),
	})
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrNoCandidates):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrDeclined):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, err.Error())
}

// Remote is a Selector backed by a selector service.
type Remote struct {
	conn grpc.ClientConnInterface
}

var _ Selector = (*Remote)(nil)

func NewRemote(conn grpc.ClientConnInterface) *Remote {
	return &Remote{conn: conn}
}

func (r *Remote) Choose(ctx context.Context, uid mod.PackageID, constraint *semver.Constraint) (mod.VersionRef, error) {
	fields := map[string]any{fieldUID: string(uid)}
	if constraint != nil {
		fields[fieldConstraint] = constraint.String()
	}
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return mod.VersionRef{}, fmt.Errorf("selector: encode request: %w", err)
	}

	resp := new(structpb.Struct)
	if err := r.conn.Invoke(ctx, chooseMethod, req, resp); err != nil {
		return mod.VersionRef{}, fromStatus(ctx, uid, err)
	}

	tag := resp.GetFields()[fieldVersion].GetStringValue()
	if tag == "" {
		return mod.VersionRef{}, fmt.Errorf("selector: remote returned no version for %s", uid)
	}
	got := mod.PackageID(resp.GetFields()[fieldUID].GetStringValue())
	if got != "" && got != uid {
		return mod.VersionRef{}, fmt.Errorf("selector: remote answered for %s, asked for %s", got, uid)
	}
	return mod.VersionRef{UID: uid, Tag: mod.VersionTag(tag)}, nil
}

func fromStatus(ctx context.Context, uid mod.PackageID, err error) error {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w for %s: %s", ErrNoCandidates, uid, st.Message())
	case codes.Aborted:
		return fmt.Errorf("%w for %s: %s", ErrDeclined, uid, st.Message())
	case codes.Canceled, codes.DeadlineExceeded:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if st.Code() == codes.Canceled {
			return fmt.Errorf("selector: remote choose %s: %w", uid, context.Canceled)
		}
		return fmt.Errorf("selector: remote choose %s: %w", uid, context.DeadlineExceeded)
	}
	return fmt.Errorf("selector: remote choose %s: %w", uid, err)
}
