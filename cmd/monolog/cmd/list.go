/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/ssargent/monologreader/pkg/query"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List records",
	Long: `List the records of a log file, one per line, with the level coloured.
Multi-line messages show their first line only; use --json for full records.

Dates for --from and --to are read in the log's date layout or as RFC3339.

Examples:
  monolog list app.log --level ERROR,CRITICAL
  monolog list app.log --from "2024-03-01 10:00:00" --to "2024-03-01 11:00:00"
  monolog list app.log --where context.user=bob --where "extra.ms>=500"
  monolog list app.log --limit 20 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		levels, _ := cmd.Flags().GetStringSlice("level")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")
		where, _ := cmd.Flags().GetStringArray("where")

		rt, err := sessionFrom(cmd)
		if err != nil {
			return err
		}

		from, err := parseTimeFlag(rt, "from", fromStr)
		if err != nil {
			return err
		}
		to, err := parseTimeFlag(rt, "to", toStr)
		if err != nil {
			return err
		}

		q := query.Query{Levels: levels, From: from, To: to}
		for _, cond := range where {
			fq, err := query.ParseFieldQuery(cond)
			if err != nil {
				return fmt.Errorf("invalid --where: %w", err)
			}
			q.Fields = append(q.Fields, fq)
		}

		r, err := openReader(rt, args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		engine := query.NewSimpleQueryEngine(r, nil)
		it, err := engine.Execute(cmd.Context(), q)
		if err != nil {
			return err
		}
		defer it.Close()

		out := cmd.OutOrStdout()
		for n := 0; (limit <= 0 || n < limit) && it.Next(); n++ {
			res := it.Result()
			if asJSON {
				if err := writeJSONLine(out, res.Index, res.Record); err != nil {
					return err
				}
				continue
			}
			fmt.Fprintln(out, recordLine(res.Index, res.Record, rt.decoder.DateLayout()))
		}
		return it.Err()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringSliceP("level", "l", nil, "Only records with these levels (comma separated)")
	listCmd.Flags().String("from", "", "Only records dated at or after this time")
	listCmd.Flags().String("to", "", "Only records dated at or before this time")
	listCmd.Flags().IntP("limit", "n", 0, "Stop after this many records (0 for all)")
	listCmd.Flags().StringArrayP("where", "w", nil, "Only records matching a field condition, e.g. context.user=bob (repeatable)")
	listCmd.Flags().Bool("json", false, "Print one JSON object per record")
}

func parseTimeFlag(rt *session, name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(rt.decoder.DateLayout(), value, rt.decoder.Location()); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: use %q or RFC3339", name, value, rt.decoder.DateLayout())
	}
	return &t, nil
}
