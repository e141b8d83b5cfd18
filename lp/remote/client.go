package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/protobuf/ptypes/empty"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"imdpsim/lp"
)

// Client is an lp.Solver solving its programs on a remote Server.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

type ClientOption interface{}

type timeoutOption struct{ d time.Duration }

// Bounds the time of a single Solve call. A call that times out fails with
// lp.ErrSolver.
//
// Default value is 0, no timeout.
func Timeout(d time.Duration) ClientOption {
	return timeoutOption{d: d}
}

type dialOption struct{ opts []grpc.DialOption }

// Options for the underlying connection. Without options the connection is
// insecure.
func WithDialOptions(opts ...grpc.DialOption) ClientOption {
	return dialOption{opts: opts}
}

// Dial creates a client for the server at target. The connection is
// established lazily.
func Dial(target string, opts ...ClientOption) (*Client, error) {
	c := &Client{}
	dialOpts := []grpc.DialOption{}
	for _, opt := range opts {
		switch t := opt.(type) {
		case timeoutOption:
			c.timeout = t.d
		case dialOption:
			dialOpts = append(dialOpts, t.opts...)
		}
	}
	if len(dialOpts) == 0 {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	dialOpts = append(dialOpts, grpc.WithDefaultCallOptions(grpc.ForceCodec(codec{})))

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("remote: dial %v: %w", target, err)
	}
	c.conn = conn
	return c, nil
}

func (c *Client) NewSession() (lp.Session, error) {
	return lp.SolveFunc(c.solve).NewSession()
}

func (c *Client) solve(p *lp.Program) (lp.Result, error) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	out := &result{}
	if err := c.conn.Invoke(ctx, solveMethod, p, out); err != nil {
		if status.Code(err) == codes.InvalidArgument {
			return lp.Unsat, fmt.Errorf("%w: %v", lp.ErrUnsupported, status.Convert(err).Message())
		}
		return lp.Unsat, fmt.Errorf("%w: remote: %v", lp.ErrSolver, err)
	}
	return out.result, nil
}

// Ping checks that the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.conn.Invoke(ctx, pingMethod, &empty.Empty{}, &empty.Empty{}); err != nil {
		return fmt.Errorf("remote: ping: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
