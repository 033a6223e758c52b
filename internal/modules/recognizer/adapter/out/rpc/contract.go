package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "recognizer"
	serviceName       = "detox.recognizer.v1.Recognizer"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodRecognize   = "/" + serviceName + "/Recognize"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "DETOX_RECOGNIZER",
	MagicCookieValue: "detox",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Formats []string `json:"formats"`
}

type RecognizeRequest struct {
	ImagePath string `json:"image_path"`
}

// RecognizeResponse carries text fragments in reading order.
type RecognizeResponse struct {
	Tokens []string `json:"tokens"`
}

type RecognizerServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Recognize(ctx context.Context, in *RecognizeRequest) (*RecognizeResponse, error)
}

type RecognizerClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Recognize(ctx context.Context, in *RecognizeRequest) (*RecognizeResponse, error)
}

type recognizerClient struct {
	conn *grpc.ClientConn
}

func NewRecognizerClient(conn *grpc.ClientConn) RecognizerClient {
	return &recognizerClient{conn: conn}
}

func (c *recognizerClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recognizerClient) Recognize(ctx context.Context, in *RecognizeRequest) (*RecognizeResponse, error) {
	out := &RecognizeResponse{}
	if err := c.conn.Invoke(ctx, methodRecognize, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterRecognizerServer(server grpc.ServiceRegistrar, impl RecognizerServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*RecognizerServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Recognize",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &RecognizeRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Recognize(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRecognize}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*RecognizeRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Recognize(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/recognizer-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl RecognizerServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterRecognizerServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewRecognizerClient(conn), nil
}

func PluginMap(impl RecognizerServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
