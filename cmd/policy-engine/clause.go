// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/policy-engine/internal/api"
)

var clauseCmd = &cobra.Command{
	Use:   "clause [citation...]",
	Short: "Look up the text of cited clauses",
	Long: `Clause resolves citations to clause text. Pass free-form citations as
arguments, for example:

  policy-engine clause "《中华人民共和国反洗钱法》第三条、第五条第二项"

or name the law and the clause separately with --title and --item:

  policy-engine clause --title 反洗钱法 --item 第三条第二款

Each cited clause is reported with its status: resolved, title_ambiguous,
title_not_found or clause_not_found.`,
	RunE: runClause,
}

func runClause(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	item, _ := cmd.Flags().GetString("item")

	eng, err := loadEngine(context.Background())
	if err != nil {
		return err
	}
	resp, err := eng.svc.LookupClause(context.Background(), api.ClauseRequest{Title: title, Item: item, Keys: args})
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, resp)
	}

	unresolved := 0
	for i, r := range resp.Results {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s %s  [%s]\n", r.Query.Title, r.Query.Clause, r.Status)
		switch r.Status {
		case api.StatusResolved:
			fmt.Printf("policy: %s (%s)\n", r.Policy.Title, r.Policy.ID)
			for _, m := range r.Matches {
				fmt.Printf("--- %s\n%s\n", m.Label, m.Text)
			}
		case api.StatusTitleAmbiguous:
			unresolved++
			fmt.Println("candidates:")
			for _, c := range r.Candidates {
				fmt.Printf("  %.2f  %s  %s\n", c.Confidence, c.PolicyID, c.Title)
			}
		case api.StatusClauseNotFound:
			unresolved++
			if r.Policy != nil {
				fmt.Printf("policy: %s (%s)\n", r.Policy.Title, r.Policy.ID)
			}
		default:
			unresolved++
		}
	}
	if unresolved > 0 {
		return fmt.Errorf("%d of %d clause(s) not resolved", unresolved, len(resp.Results))
	}
	return nil
}

func init() {
	clauseCmd.Flags().String("title", "", "law or regulation title, full or abbreviated")
	clauseCmd.Flags().String("item", "", "clause expression, e.g. 第八条第三款")
	clauseCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(clauseCmd)
}

// joinArgs rejoins arguments split by the shell.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
