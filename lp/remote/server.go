package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/golang/protobuf/ptypes/empty"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"imdpsim/lp"
)

// Server solves programs sent by Clients with a local lp.Solver.
type Server struct {
	solver lp.Solver
	logger *slog.Logger
	srv    *grpc.Server
}

type ServerOption interface{}

type loggerOption struct{ logger *slog.Logger }

// Logs failed requests.
//
// Default value is slog.Default().
func WithLogger(logger *slog.Logger) ServerOption {
	return loggerOption{logger: logger}
}

type grpcServerOption struct{ opts []grpc.ServerOption }

// Options for the underlying grpc.Server.
func WithServerOptions(opts ...grpc.ServerOption) ServerOption {
	return grpcServerOption{opts: opts}
}

func NewServer(solver lp.Solver, opts ...ServerOption) *Server {
	logger := slog.Default()
	grpcOpts := []grpc.ServerOption{grpc.ForceServerCodec(codec{})}
	for _, opt := range opts {
		switch t := opt.(type) {
		case loggerOption:
			logger = t.logger
		case grpcServerOption:
			grpcOpts = append(grpcOpts, t.opts...)
		}
	}
	s := &Server{
		solver: solver,
		logger: logger,
		srv:    grpc.NewServer(grpcOpts...),
	}
	s.srv.RegisterService(&serviceDesc, s)
	return s
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("serving lp solver", "addr", lis.Addr().String())
	return s.srv.Serve(lis)
}

// Stop waits for pending requests and stops the server.
func (s *Server) Stop() {
	s.srv.GracefulStop()
}

func (s *Server) Solve(ctx context.Context, p *lp.Program) (*result, error) {
	res, err := s.solve(p)
	if err != nil {
		s.logger.Warn("solving program failed",
			"variables", len(p.Variables),
			"constraints", len(p.Constraints),
			"err", err)
		if errors.Is(err, lp.ErrUnsupported) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &result{result: res}, nil
}

// Replays the program into a session of the local solver.
func (s *Server) solve(p *lp.Program) (lp.Result, error) {
	session, err := s.solver.NewSession()
	if err != nil {
		return lp.Unsat, err
	}
	defer session.Close()

	for _, v := range p.Variables {
		if _, err := session.AddVariable(v.Name, v.Type, v.Lower, v.Upper); err != nil {
			return lp.Unsat, fmt.Errorf("%w: %v", lp.ErrUnsupported, err)
		}
	}
	for _, c := range p.Constraints {
		if err := session.AddConstraint(c.Coeffs, c.Vars, c.Relation, c.RHS); err != nil {
			return lp.Unsat, fmt.Errorf("%w: %v", lp.ErrUnsupported, err)
		}
	}
	if len(p.Objective) > 0 {
		vars := make([]int, len(p.Objective))
		for i := range vars {
			vars[i] = i
		}
		if err := session.SetObjective(p.Objective, vars); err != nil {
			return lp.Unsat, fmt.Errorf("%w: %v", lp.ErrUnsupported, err)
		}
	}
	session.SetDirection(p.Direction)
	return session.Solve()
}

func (s *Server) Ping(context.Context, *empty.Empty) (*empty.Empty, error) {
	return &empty.Empty{}, nil
}
