package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"imdpsim/solver"
)

func newCheckCmd(opts *options) *cobra.Command {
	var (
		verbose bool
		metrics bool
	)
	cmd := &cobra.Command{
		Use:   "check [problems.yaml]",
		Short: "Decides whether comparison problems are violated",
		Long: `Reads a file of comparison problems and prints for each whether its
challenger can be simulated by a combination of its defender actions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			problems, names, err := loadProblems(args[0])
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
			s, err := engine.NewSolver()
			if err != nil {
				return err
			}

			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(out, "PROBLEM\tVIOLATED")
			for i, p := range problems {
				opts.logger.Debug("deciding problem", "name", names[i], "classes", p.NumClasses(), "actions", p.NumActions())
				violated, err := s.Violated(p)
				if err != nil {
					return fmt.Errorf("problem %v: %w", names[i], err)
				}
				fmt.Fprintf(out, "%v\t%v\n", names[i], violated)
				if verbose {
					fmt.Fprintf(out, "%v\n", p)
				}
			}
			if err := out.Flush(); err != nil {
				return err
			}
			opts.logger.Info("checked problems", "count", len(problems), "lp_decisions", s.Stats().LPDecisions)
			if metrics {
				return writeMetrics(cmd.OutOrStdout(), solver.NewCollector("imdpsim", s.Stats))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every problem")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "print solver metrics in the Prometheus text format")
	return cmd
}
