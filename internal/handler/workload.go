package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/canopyhost/canopy/internal/core"
)

// WorkloadServiceName is the fully-qualified ConnectRPC service name.
const WorkloadServiceName = "canopy.v1.WorkloadService"

// Procedure paths of the workload service.
const (
	WorkloadServiceGetProcedure    = "/canopy.v1.WorkloadService/Get"
	WorkloadServiceListProcedure   = "/canopy.v1.WorkloadService/List"
	WorkloadServiceCreateProcedure = "/canopy.v1.WorkloadService/Create"
	WorkloadServiceDeleteProcedure = "/canopy.v1.WorkloadService/Delete"
	WorkloadServiceWatchProcedure  = "/canopy.v1.WorkloadService/Watch"
	WorkloadServiceLogsProcedure   = "/canopy.v1.WorkloadService/Logs"
)

// WorkloadService exposes the workload use-case over ConnectRPC.
// Requests and responses are carried as protobuf Structs so the same
// handler serves every resource kind.
type WorkloadService struct {
	workload *core.WorkloadUseCase
}

// NewWorkloadService returns a WorkloadService backed by the given
// use-case.
func NewWorkloadService(workload *core.WorkloadUseCase) *WorkloadService {
	return &WorkloadService{workload: workload}
}

// NewWorkloadServiceHandler builds the HTTP handler for the workload
// service and returns the path prefix it must be mounted under. It
// mirrors the shape of generated Connect handler constructors.
func NewWorkloadServiceHandler(svc *WorkloadService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(WorkloadServiceGetProcedure, connect.NewUnaryHandler(WorkloadServiceGetProcedure, svc.Get, opts...))
	mux.Handle(WorkloadServiceListProcedure, connect.NewUnaryHandler(WorkloadServiceListProcedure, svc.List, opts...))
	mux.Handle(WorkloadServiceCreateProcedure, connect.NewUnaryHandler(WorkloadServiceCreateProcedure, svc.Create, opts...))
	mux.Handle(WorkloadServiceDeleteProcedure, connect.NewUnaryHandler(WorkloadServiceDeleteProcedure, svc.Delete, opts...))
	mux.Handle(WorkloadServiceWatchProcedure, connect.NewServerStreamHandler(WorkloadServiceWatchProcedure, svc.Watch, opts...))
	mux.Handle(WorkloadServiceLogsProcedure, connect.NewServerStreamHandler(WorkloadServiceLogsProcedure, svc.Logs, opts...))
	return "/" + WorkloadServiceName + "/", mux
}

// Get returns a single resource by kind, namespace, and name.
func (s *WorkloadService) Get(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	resource, err := s.workload.GetResource(
		ctx,
		core.ResourceKind(stringField(req.Msg, "kind")),
		stringField(req.Msg, "namespace"),
		stringField(req.Msg, "name"),
	)
	if err != nil {
		return nil, domainErrorToConnectError(err)
	}

	msg, err := resourceToStruct(resource)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// List returns all resources of a kind in a namespace.
func (s *WorkloadService) List(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	resources, err := s.workload.ListResources(
		ctx,
		core.ResourceKind(stringField(req.Msg, "kind")),
		stringField(req.Msg, "namespace"),
	)
	if err != nil {
		return nil, domainErrorToConnectError(err)
	}

	items := make([]*structpb.Value, 0, len(resources))
	for _, resource := range resources {
		msg, err := resourceToStruct(resource)
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		items = append(items, structpb.NewStructValue(msg))
	}

	resp := &structpb.Struct{Fields: map[string]*structpb.Value{
		"items": structpb.NewListValue(&structpb.ListValue{Values: items}),
	}}
	return connect.NewResponse(resp), nil
}

// Create stores a new resource and returns the stored copy with
// backend-assigned fields populated.
func (s *WorkloadService) Create(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	resource, err := structToResource(structField(req.Msg, "resource"))
	if err != nil {
		return nil, domainErrorToConnectError(err)
	}

	created, err := s.workload.CreateResource(ctx, resource)
	if err != nil {
		return nil, domainErrorToConnectError(err)
	}

	msg, err := resourceToStruct(created)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// Delete removes the named resource.
func (s *WorkloadService) Delete(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[emptypb.Empty], error) {
	if err := s.workload.DeleteResource(
		ctx,
		core.ResourceKind(stringField(req.Msg, "kind")),
		stringField(req.Msg, "namespace"),
		stringField(req.Msg, "name"),
	); err != nil {
		return nil, domainErrorToConnectError(err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// Watch opens a server-streaming RPC that replays the stored
// resources of a kind and then forwards subsequent change events.
// The stream ends when the client cancels the context or the backend
// closes the watcher.
func (s *WorkloadService) Watch(ctx context.Context, req *connect.Request[structpb.Struct], stream *connect.ServerStream[structpb.Struct]) error {
	watcher, err := s.workload.WatchResources(
		ctx,
		core.ResourceKind(stringField(req.Msg, "kind")),
		stringField(req.Msg, "namespace"),
	)
	if err != nil {
		return domainErrorToConnectError(err)
	}
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.ResultChan():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return connect.NewError(connect.CodeUnavailable, errors.New("watch closed"))
			}

			msg, err := watchEventToStruct(event)
			if err != nil {
				return connect.NewError(connect.CodeInternal, err)
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

// Logs streams the referenced workload's log output line by line.
func (s *WorkloadService) Logs(ctx context.Context, req *connect.Request[structpb.Struct], stream *connect.ServerStream[structpb.Struct]) error {
	streamType := core.LogStreamType(stringField(req.Msg, "stream"))
	if streamType == "" {
		streamType = core.LogStreamStdOut
	}

	reader, err := s.workload.StreamLogs(
		ctx,
		core.ResourceKind(stringField(req.Msg, "kind")),
		stringField(req.Msg, "namespace"),
		stringField(req.Msg, "name"),
		streamType,
		core.LogOptions{
			Follow:     boolField(req.Msg, "follow"),
			Timestamps: boolField(req.Msg, "timestamps"),
		},
	)
	if err != nil {
		return domainErrorToConnectError(err)
	}
	defer reader.Close()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		msg := &structpb.Struct{Fields: map[string]*structpb.Value{
			"line": structpb.NewStringValue(scanner.Text()),
		}}
		if err := stream.Send(msg); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return connect.NewError(connect.CodeUnavailable, fmt.Errorf("read logs: %w", err))
	}
	return nil
}

func watchEventToStruct(event core.WatchEvent) (*structpb.Struct, error) {
	fields := map[string]*structpb.Value{
		"type": structpb.NewStringValue(string(event.Type)),
	}
	if event.Resource != nil {
		msg, err := resourceToStruct(event.Resource)
		if err != nil {
			return nil, err
		}
		fields["resource"] = structpb.NewStructValue(msg)
	}
	return &structpb.Struct{Fields: fields}, nil
}
