// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/policy-engine/internal/api"
	"github.com/pdiddy/policy-engine/internal/outline"
)

var policyCmd = &cobra.Command{
	Use:   "policy [title]",
	Short: "Show a policy's metadata, outline or text",
	Long: `Policy finds one policy by --id or by title (full, abbreviated or
approximate) and prints the projections selected with --include: meta,
outline, text or all.`,
	RunE: runPolicy,
}

func runPolicy(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	include, _ := cmd.Flags().GetStringSlice("include")

	eng, err := loadEngine(context.Background())
	if err != nil {
		return err
	}
	resp, err := eng.svc.GetPolicy(context.Background(), api.PolicyRequest{ID: id, Title: joinArgs(args), Include: include})
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, resp)
	}

	if resp.Match != nil {
		fmt.Printf("matched %s (%s, %.2f)\n\n", resp.Match.Title, resp.Match.Stage, resp.Match.Confidence)
	}
	if p := resp.Policy; p != nil {
		fmt.Printf("id:          %s\n", p.ID)
		fmt.Printf("title:       %s\n", p.Title)
		fmt.Printf("authority:   %s\n", p.IssuingAuthority)
		fmt.Printf("status:      %s\n", p.Status)
		fmt.Printf("level:       %s\n", p.LawLevel)
		fmt.Printf("doc no:      %s\n", p.DocNo)
		if p.EffectiveAt != nil {
			fmt.Printf("effective:   %s\n", p.EffectiveAt.Format("2006-01-02"))
		}
		fmt.Printf("source:      %s\n", p.SourcePath)
	}
	if resp.Outline != nil {
		fmt.Println()
		printTree(*resp.Outline, 0)
	}
	if resp.Text != "" {
		fmt.Println()
		fmt.Println(resp.Text)
	}
	return nil
}

// printTree prints headings and numbered nodes, indented by depth.
func printTree(n outline.TreeNode, depth int) {
	if n.Label != "" {
		text := ""
		if n.Text != n.Label {
			text = truncate(n.Text, 40)
		}
		fmt.Printf("%*s%s %s\n", depth*2, "", n.Label, text)
		depth++
	}
	for _, c := range n.Children {
		printTree(c, depth)
	}
}

func init() {
	policyCmd.Flags().String("id", "", "policy id")
	policyCmd.Flags().StringSlice("include", []string{"meta"}, "projections: meta, outline, text, all")
	policyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(policyCmd)
}
