package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

/*
 * Service descriptor for adaptive.v1.EvaluationService.
 *
 * Requests and responses are google.protobuf.Struct documents, so the service
 * needs no generated stubs: operand trees already have a JSON form, and Struct
 * carries it over the default proto codec unchanged.
 */

const (
	ServiceName = "adaptive.v1.EvaluationService"

	EvaluateMethod   = "/" + ServiceName + "/Evaluate"
	ValidateMethod   = "/" + ServiceName + "/Validate"
	PutOperandMethod = "/" + ServiceName + "/PutOperand"
)

// EvaluationServer is the server API for the evaluation service.
type EvaluationServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Validate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PutOperand(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterEvaluationServer registers srv on s.
func RegisterEvaluationServer(s grpc.ServiceRegistrar, srv EvaluationServer) {
	s.RegisterService(&EvaluationServiceDesc, srv)
}

// EvaluationServiceDesc describes adaptive.v1.EvaluationService.
var EvaluationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: unaryHandler(EvaluateMethod, EvaluationServer.Evaluate)},
		{MethodName: "Validate", Handler: unaryHandler(ValidateMethod, EvaluationServer.Validate)},
		{MethodName: "PutOperand", Handler: unaryHandler(PutOperandMethod, EvaluationServer.PutOperand)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "adaptive/v1/evaluation.proto",
}

type unaryMethod func(EvaluationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EvaluationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(EvaluationServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// EvaluationClient calls adaptive.v1.EvaluationService.
type EvaluationClient struct {
	cc grpc.ClientConnInterface
}

// NewEvaluationClient wraps a client connection.
func NewEvaluationClient(cc grpc.ClientConnInterface) *EvaluationClient {
	return &EvaluationClient{cc: cc}
}

func (c *EvaluationClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Evaluate evaluates an inline or stored operand tree.
func (c *EvaluationClient) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, EvaluateMethod, in, opts...)
}

// Validate compiles an operand tree without evaluating it.
func (c *EvaluationClient) Validate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ValidateMethod, in, opts...)
}

// PutOperand compiles and stores an operand tree for an element property.
func (c *EvaluationClient) PutOperand(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, PutOperandMethod, in, opts...)
}
