// Package remote serves an lp.Solver over gRPC and solves programs through a
// remote server.
//
// A whole program is sent with a single Solve call once its session is
// solved, so a remote session costs one round trip.
package remote

import (
	"context"

	"github.com/golang/protobuf/ptypes/empty"
	"google.golang.org/grpc"

	"imdpsim/lp"
)

const (
	serviceName  = "imdpsim.lp.Feasibility"
	solveMethod  = "/" + serviceName + "/Solve"
	pingMethod   = "/" + serviceName + "/Ping"
	serviceProto = "imdpsim/lp/remote/feasibility.proto"
)

type feasibilityServer interface {
	Solve(context.Context, *lp.Program) (*result, error)
	Ping(context.Context, *empty.Empty) (*empty.Empty, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*feasibilityServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Solve",
			Handler:    solveHandler,
		},
		{
			MethodName: "Ping",
			Handler:    pingHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: serviceProto,
}

func solveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(lp.Program)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(feasibilityServer).Solve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: solveMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(feasibilityServer).Solve(ctx, req.(*lp.Program))
	}
	return interceptor(ctx, in, info, handler)
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(empty.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(feasibilityServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: pingMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(feasibilityServer).Ping(ctx, req.(*empty.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
