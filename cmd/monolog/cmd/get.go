/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/ssargent/monologreader/pkg/codec"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <file> <index>",
	Short: "Print one record",
	Long: `Print the record at a 0-based index as JSON, or with --raw in the
canonical "[date] channel.LEVEL: message context extra" form.

Example:
  monolog get app.log 42`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")

		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[1])
		}

		rt, err := sessionFrom(cmd)
		if err != nil {
			return err
		}
		r, err := openReader(rt, args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		rec, err := r.Get(index)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("record %d did not decode", index)
		}

		if raw {
			fmt.Fprintln(cmd.OutOrStdout(), codec.EncodeLayout(rec, rt.decoder.DateLayout()))
			return nil
		}

		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().Bool("raw", false, "Print the record as log text instead of JSON")
}
