// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/policy-engine/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the index and report corpus statistics",
	Long: `Index loads every artifact, parses each policy's outline and prints
how many policies, chapters, articles and items were recognized. Artifacts
that could not be indexed are listed with --warnings.`,
	RunE: runIndex,
}

type indexSummary struct {
	Generation uint64 `json:"generation"`
	Policies   int    `json:"policies"`
	Chapters   int    `json:"chapters"`
	Articles   int    `json:"articles"`
	Paragraphs int    `json:"paragraphs"`
	Items      int    `json:"items"`
	Warnings   int    `json:"warnings"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine(context.Background())
	if err != nil {
		return err
	}
	idx := eng.svc.Index()

	s := indexSummary{Generation: idx.Generation(), Policies: idx.Len(), Warnings: len(idx.Warnings())}
	for _, rec := range idx.All() {
		s.Chapters += rec.Outline.Count(types.LevelChapter)
		s.Articles += rec.Outline.Count(types.LevelArticle)
		s.Paragraphs += rec.Outline.Count(types.LevelParagraph)
		s.Items += rec.Outline.Count(types.LevelItem)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, s)
	}

	fmt.Printf("policies:   %d\n", s.Policies)
	fmt.Printf("chapters:   %d\n", s.Chapters)
	fmt.Printf("articles:   %d\n", s.Articles)
	fmt.Printf("paragraphs: %d\n", s.Paragraphs)
	fmt.Printf("items:      %d\n", s.Items)
	fmt.Printf("skipped:    %d\n", s.Warnings)

	if showWarnings, _ := cmd.Flags().GetBool("warnings"); showWarnings {
		for _, w := range idx.Warnings() {
			fmt.Printf("  %s\n", w.Error())
		}
	} else if s.Warnings > 0 {
		warnf("%d artifact(s) skipped; rerun with --warnings for details", s.Warnings)
	}
	return nil
}

func init() {
	indexCmd.Flags().Bool("json", false, "output statistics as JSON")
	indexCmd.Flags().Bool("warnings", false, "list skipped artifacts")

	rootCmd.AddCommand(indexCmd)
}
