package main

import (
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"imdpsim/lp"
	"imdpsim/lp/remote"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the simplex LP solver over gRPC",
		Long: `Runs an LP feasibility server that solvers configured with the remote
backend send their programs to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			srv := remote.NewServer(&lp.Simplex{Tolerance: cfg.LP.Tolerance}, remote.WithLogger(opts.logger))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				opts.logger.Info("shutting down")
				srv.Stop()
			}()
			return srv.Serve(lis)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:7070", "address to listen on")
	return cmd
}
