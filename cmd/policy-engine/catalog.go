// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/policy-engine/internal/api"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List indexed policies",
	Long: `Catalog lists the indexed policies sorted by title. The default scope
shows only the curated whitelist (corpus.whitelist); --scope all lists
every policy. --export writes the listing to a YAML file.`,
	RunE: runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	scope, _ := cmd.Flags().GetString("scope")
	exportPath, _ := cmd.Flags().GetString("export")

	eng, err := loadEngine(context.Background())
	if err != nil {
		return err
	}
	resp, err := eng.svc.Catalog(context.Background(), api.CatalogRequest{Scope: scope})
	if err != nil {
		return err
	}

	if exportPath != "" {
		data, err := yaml.Marshal(resp)
		if err != nil {
			return fmt.Errorf("marshaling catalog: %w", err)
		}
		if err := os.WriteFile(exportPath, data, 0o644); err != nil {
			return fmt.Errorf("writing catalog: %w", err)
		}
		fmt.Printf("Exported %d policies to %s\n", resp.Count, exportPath)
		return nil
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, resp)
	}

	if resp.Count == 0 {
		fmt.Println("No policies found.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-16s  %-40s  %-10s  %s\n", "ID", "Title", "Status", "Authority")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, p := range resp.Policies {
		fmt.Fprintf(os.Stdout, "%-16s  %-40s  %-10s  %s\n",
			p.Meta.ID, truncate(p.Title, 40), p.Meta.Status, truncate(p.Meta.IssuingAuthority, 30))
	}
	fmt.Fprintf(os.Stdout, "\n%d policies (scope %s)\n", resp.Count, resp.Scope)
	return nil
}

func init() {
	catalogCmd.Flags().String("scope", "default", "catalog scope: default or all")
	catalogCmd.Flags().String("export", "", "write the catalog to a YAML file")
	catalogCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(catalogCmd)
}
