package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"imdpsim/imdp"
	"imdpsim/solver"
	"imdpsim/violation"
)

func newViolateCmd(opts *options) *cobra.Command {
	var metrics, keepGoing bool
	cmd := &cobra.Command{
		Use:   "violate [model.yaml]",
		Short: "Decides whether states of a model violate simulation",
		Long: `Reads a model, a partition of its states and pairs of states, and prints
for each pair whether the first state violates simulation by the second.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := imdp.Load(args[0])
			if err != nil {
				return err
			}
			model, err := f.Model()
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			engine, err := cfg.Open(opts.logger)
			if err != nil {
				return err
			}
			defer engine.Close()

			pairs := make([]violation.Pair, len(f.Pairs))
			for i, p := range f.Pairs {
				pairs[i] = violation.Pair{State: p.State, CompareState: p.Compare}
			}
			poolOpts := engine.PoolOptions()
			if keepGoing {
				poolOpts = append(poolOpts, violation.IgnoreErrors())
			}
			pool := violation.NewPool(model, f.Partition(), poolOpts...)
			results, checkErr := pool.Check(cmd.Context(), pairs)
			if results == nil {
				return checkErr
			}

			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(out, "STATE\tCOMPARE\tVIOLATED")
			for i, p := range pairs {
				fmt.Fprintf(out, "%v\t%v\t%v\n", p.State, p.CompareState, results[i])
			}
			if err := out.Flush(); err != nil {
				return err
			}
			opts.logger.Info("checked pairs", "count", len(pairs), "problems", pool.Stats().Problems)
			if metrics {
				if err := writeMetrics(cmd.OutOrStdout(), solver.NewCollector("imdpsim", pool.SolverStats)); err != nil {
					return err
				}
			}
			// Failed pairs are printed as not violated.
			return checkErr
		},
	}
	cmd.Flags().BoolVar(&metrics, "metrics", false, "print solver metrics in the Prometheus text format")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "decide the remaining pairs when a pair fails and report all failures at the end")
	return cmd
}
