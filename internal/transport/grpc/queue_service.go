package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// QueueServiceName is the fully qualified gRPC service name. Messages are
// protobuf well-known types, so no generated code is needed on either side.
const QueueServiceName = "smartqueue.v1.QueueService"

type QueueServiceServer interface {
	Reserve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Cancel(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	ServeNext(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	PositionOf(context.Context, *wrapperspb.StringValue) (*wrapperspb.Int32Value, error)
	WaitEstimate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAll(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	SetDuration(context.Context, *wrapperspb.Int32Value) (*emptypb.Empty, error)
	SetHours(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

var QueueServiceDesc = grpc.ServiceDesc{
	ServiceName: QueueServiceName,
	HandlerType: (*QueueServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Reserve", Handler: unary("Reserve", newStruct, QueueServiceServer.Reserve)},
		{MethodName: "Cancel", Handler: unary("Cancel", newStringValue, QueueServiceServer.Cancel)},
		{MethodName: "ServeNext", Handler: unary("ServeNext", newEmpty, QueueServiceServer.ServeNext)},
		{MethodName: "PositionOf", Handler: unary("PositionOf", newStringValue, QueueServiceServer.PositionOf)},
		{MethodName: "WaitEstimate", Handler: unary("WaitEstimate", newStruct, QueueServiceServer.WaitEstimate)},
		{MethodName: "ListAll", Handler: unary("ListAll", newEmpty, QueueServiceServer.ListAll)},
		{MethodName: "SetDuration", Handler: unary("SetDuration", newInt32Value, QueueServiceServer.SetDuration)},
		{MethodName: "SetHours", Handler: unary("SetHours", newStruct, QueueServiceServer.SetHours)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "smartqueue/v1/queue.proto",
}

func RegisterQueueServiceServer(s grpc.ServiceRegistrar, srv QueueServiceServer) {
	s.RegisterService(&QueueServiceDesc, srv)
}

func newStruct() *structpb.Struct             { return new(structpb.Struct) }
func newStringValue() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }
func newInt32Value() *wrapperspb.Int32Value   { return new(wrapperspb.Int32Value) }
func newEmpty() *emptypb.Empty                { return new(emptypb.Empty) }

func fullMethod(method string) string {
	return "/" + QueueServiceName + "/" + method
}

func unary[Req proto.Message, Resp proto.Message](
	method string,
	newReq func() Req,
	call func(QueueServiceServer, context.Context, Req) (Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(QueueServiceServer), ctx, req.(Req))
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		return interceptor(ctx, in, info, handler)
	}
}

// QueueServiceClient is a thin client for the service above.
type QueueServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewQueueServiceClient(cc grpc.ClientConnInterface) *QueueServiceClient {
	return &QueueServiceClient{cc: cc}
}

func (c *QueueServiceClient) Reserve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.cc.Invoke(ctx, fullMethod("Reserve"), in, out, opts...)
}

func (c *QueueServiceClient) Cancel(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	return out, c.cc.Invoke(ctx, fullMethod("Cancel"), in, out, opts...)
}

func (c *QueueServiceClient) ServeNext(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.cc.Invoke(ctx, fullMethod("ServeNext"), in, out, opts...)
}

func (c *QueueServiceClient) PositionOf(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.Int32Value, error) {
	out := new(wrapperspb.Int32Value)
	return out, c.cc.Invoke(ctx, fullMethod("PositionOf"), in, out, opts...)
}

func (c *QueueServiceClient) WaitEstimate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	return out, c.cc.Invoke(ctx, fullMethod("WaitEstimate"), in, out, opts...)
}

func (c *QueueServiceClient) ListAll(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	return out, c.cc.Invoke(ctx, fullMethod("ListAll"), in, out, opts...)
}

func (c *QueueServiceClient) SetDuration(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	return out, c.cc.Invoke(ctx, fullMethod("SetDuration"), in, out, opts...)
}

func (c *QueueServiceClient) SetHours(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	return out, c.cc.Invoke(ctx, fullMethod("SetHours"), in, out, opts...)
}
