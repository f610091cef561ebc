package pb

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
)

// DiagnosticsServer is the server API for the read-only diagnostics
// service: current best bid/ask, a depth snapshot, and a trade feed.
// It never accepts an order or a cancellation; the core's only write
// path is the UDP wire feed (spec §1).
type DiagnosticsServer interface {
	GetBestBidAsk(context.Context, *BestBidAskRequest) (*BestBidAskResponse, error)
	GetDepth(context.Context, *DepthRequest) (*DepthResponse, error)
	StreamTrades(*StreamTradesRequest, Diagnostics_StreamTradesServer) error
}

// UnimplementedDiagnosticsServer can be embedded to satisfy
// DiagnosticsServer without implementing every method, the way
// protoc-gen-go-grpc embeds it for forward compatibility.
type UnimplementedDiagnosticsServer struct{}

func (UnimplementedDiagnosticsServer) GetBestBidAsk(context.Context, *BestBidAskRequest) (*BestBidAskResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetBestBidAsk not implemented")
}

func (UnimplementedDiagnosticsServer) GetDepth(context.Context, *DepthRequest) (*DepthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDepth not implemented")
}

func (UnimplementedDiagnosticsServer) StreamTrades(*StreamTradesRequest, Diagnostics_StreamTradesServer) error {
	return status.Error(codes.Unimplemented, "method StreamTrades not implemented")
}

// Diagnostics_StreamTradesServer is the server-side stream handle for
// StreamTrades, mirroring the shape protoc-gen-go-grpc emits for a
// server-streaming RPC.
type Diagnostics_StreamTradesServer interface {
	Send(*TradeEvent) error
	grpc.ServerStream
}

type diagnosticsStreamTradesServer struct {
	grpc.ServerStream
}

func (s *diagnosticsStreamTradesServer) Send(ev *TradeEvent) error {
	return s.ServerStream.SendMsg(ev)
}

func _Diagnostics_GetBestBidAsk_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BestBidAskRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiagnosticsServer).GetBestBidAsk(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/matchcore.diagnostics.v1.Diagnostics/GetBestBidAsk"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DiagnosticsServer).GetBestBidAsk(ctx, req.(*BestBidAskRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Diagnostics_GetDepth_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DepthRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiagnosticsServer).GetDepth(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/matchcore.diagnostics.v1.Diagnostics/GetDepth"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DiagnosticsServer).GetDepth(ctx, req.(*DepthRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Diagnostics_StreamTrades_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(StreamTradesRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(DiagnosticsServer).StreamTrades(m, &diagnosticsStreamTradesServer{stream})
}

// DiagnosticsServiceDesc is the grpc.ServiceDesc protoc-gen-go-grpc
// would otherwise generate from the diagnostics .proto.
var DiagnosticsServiceDesc = grpc.ServiceDesc{
	ServiceName: "matchcore.diagnostics.v1.Diagnostics",
	HandlerType: (*DiagnosticsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetBestBidAsk", Handler: _Diagnostics_GetBestBidAsk_Handler},
		{MethodName: "GetDepth", Handler: _Diagnostics_GetDepth_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "StreamTrades", Handler: _Diagnostics_StreamTrades_Handler, ServerStreams: true},
	},
	Metadata: "matchcore/diagnostics/v1/diagnostics.proto",
}

// RegisterDiagnosticsServer registers impl on s, the way protoc-gen-
// go-grpc's generated RegisterDiagnosticsServer would.
func RegisterDiagnosticsServer(s grpc.ServiceRegistrar, impl DiagnosticsServer) {
	s.RegisterService(&DiagnosticsServiceDesc, impl)
}

// DiagnosticsClient is the client API for Diagnostics.
type DiagnosticsClient interface {
	GetBestBidAsk(ctx context.Context, in *BestBidAskRequest, opts ...grpc.CallOption) (*BestBidAskResponse, error)
	GetDepth(ctx context.Context, in *DepthRequest, opts ...grpc.CallOption) (*DepthResponse, error)
	StreamTrades(ctx context.Context, in *StreamTradesRequest, opts ...grpc.CallOption) (Diagnostics_StreamTradesClient, error)
}

type diagnosticsClient struct {
	cc grpc.ClientConnInterface
}

func NewDiagnosticsClient(cc grpc.ClientConnInterface) DiagnosticsClient {
	return &diagnosticsClient{cc}
}

func (c *diagnosticsClient) GetBestBidAsk(ctx context.Context, in *BestBidAskRequest, opts ...grpc.CallOption) (*BestBidAskResponse, error) {
	out := new(BestBidAskResponse)
	if err := c.cc.Invoke(ctx, "/matchcore.diagnostics.v1.Diagnostics/GetBestBidAsk", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diagnosticsClient) GetDepth(ctx context.Context, in *DepthRequest, opts ...grpc.CallOption) (*DepthResponse, error) {
	out := new(DepthResponse)
	if err := c.cc.Invoke(ctx, "/matchcore.diagnostics.v1.Diagnostics/GetDepth", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *diagnosticsClient) StreamTrades(ctx context.Context, in *StreamTradesRequest, opts ...grpc.CallOption) (Diagnostics_StreamTradesClient, error) {
	stream, err := c.cc.NewStream(ctx, &DiagnosticsServiceDesc.Streams[0], "/matchcore.diagnostics.v1.Diagnostics/StreamTrades", opts...)
	if err != nil {
		return nil, err
	}
	x := &diagnosticsStreamTradesClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// Diagnostics_StreamTradesClient is the client-side stream handle for
// StreamTrades.
type Diagnostics_StreamTradesClient interface {
	Recv() (*TradeEvent, error)
	grpc.ClientStream
}

type diagnosticsStreamTradesClient struct {
	grpc.ClientStream
}

func (x *diagnosticsStreamTradesClient) Recv() (*TradeEvent, error) {
	m := new(TradeEvent)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// jsonCodec marshals these hand-written message types as JSON instead
// of the protobuf wire format: without a .proto/protoc step there is
// no generated Marshal/Unmarshal or protoreflect.Message for them, and
// implementing that by hand is what protoc-gen-go exists to avoid. The
// codec is named "proto" so it satisfies grpc-go's default content-
// type negotiation without requiring clients to set a custom
// Content-Subtype.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "proto" }

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
