// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/policy-engine/internal/api"
	"github.com/pdiddy/policy-engine/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search across indexed policies",
	Long: `Search ranks policies against a free-text query. Space-separated
terms all contribute to the score; title matches outrank body matches.

Results can be narrowed by metadata:

  policy-engine search 客户身份识别 --status 现行有效 --from 2020-01-01

Use --save to keep the query and its results in a YAML file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	topK, _ := cmd.Flags().GetInt("top-k")
	authority, _ := cmd.Flags().GetStringSlice("authority")
	status, _ := cmd.Flags().GetStringSlice("status")
	lawLevel, _ := cmd.Flags().GetStringSlice("law-level")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	savePath, _ := cmd.Flags().GetString("save")

	filter, err := filterJSON(authority, status, lawLevel, from, to)
	if err != nil {
		return err
	}

	eng, err := loadEngine(context.Background())
	if err != nil {
		return err
	}
	resp, err := eng.svc.Search(context.Background(), api.SearchRequest{
		Query:      joinArgs(args),
		TopK:       topK,
		MetaFilter: filter,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := search.FormatJSON(resp.Results, os.Stdout); err != nil {
			return err
		}
	} else {
		search.FormatTable(resp.Results, os.Stdout)
	}

	if savePath != "" {
		filters, err := search.DecodeFilters(filter)
		if err != nil {
			return err
		}
		q := search.Query{Text: resp.Query, Filters: filters, Limit: topK}
		if err := search.WriteQueryFile(savePath, q, resp.Generation, resp.Results); err != nil {
			return fmt.Errorf("saving query: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved %d results to %s\n", resp.Count, savePath)
	}
	return nil
}

// filterJSON builds the metadata filter object from command-line flags.
func filterJSON(authority, status, lawLevel []string, from, to string) (json.RawMessage, error) {
	f := map[string]any{}
	if len(authority) > 0 {
		f["issuing_authority"] = authority
	}
	if len(status) > 0 {
		f["status"] = status
	}
	if len(lawLevel) > 0 {
		f["law_level"] = lawLevel
	}
	if from != "" || to != "" {
		if _, err := search.ParseDateRange(from, to); err != nil {
			return nil, err
		}
		f["date_range"] = map[string]string{"from": from, "to": to}
	}
	if len(f) == 0 {
		return nil, nil
	}
	return json.Marshal(f)
}

func init() {
	searchCmd.Flags().Int("top-k", 0, "maximum number of results (default search.default_top_k)")
	searchCmd.Flags().StringSlice("authority", nil, "issuing authority (substring match)")
	searchCmd.Flags().StringSlice("status", nil, "validity status, e.g. 现行有效")
	searchCmd.Flags().StringSlice("law-level", nil, "law level, e.g. 法律, 部门规章")
	searchCmd.Flags().String("from", "", "effective on or after YYYY-MM-DD")
	searchCmd.Flags().String("to", "", "effective on or before YYYY-MM-DD")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "save the query and results to a YAML file")

	rootCmd.AddCommand(searchCmd)
}
