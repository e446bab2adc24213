/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// countCmd represents the count command
var countCmd = &cobra.Command{
	Use:   "count <file>...",
	Short: "Count the records in one or more log files",
	Long: `Count the records in one or more log files. Files are indexed concurrently.

Examples:
  monolog count app.log
  monolog count /var/log/app/*.log`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := sessionFrom(cmd)
		if err != nil {
			return err
		}

		counts := make([]int, len(args))

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(runtime.NumCPU())
		for i, path := range args {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				r, err := openReader(rt, path)
				if err != nil {
					return err
				}
				defer r.Close()
				counts[i] = r.Count()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if len(args) == 1 {
			fmt.Fprintln(cmd.OutOrStdout(), counts[0])
			return nil
		}

		total := 0
		for i, path := range args {
			fmt.Fprintf(cmd.OutOrStdout(), "%8d %s\n", counts[i], path)
			total += counts[i]
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%8d total\n", total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
