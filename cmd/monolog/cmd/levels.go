/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// levelsCmd represents the levels command
var levelsCmd = &cobra.Command{
	Use:   "levels <file>",
	Short: "Count records per level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := sessionFrom(cmd)
		if err != nil {
			return err
		}
		r, err := openReader(rt, args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		counts := r.Levels()
		for _, level := range r.LevelNames() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", levelStyle(level).Width(10).Render(level), counts[level])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(levelsCmd)
}
