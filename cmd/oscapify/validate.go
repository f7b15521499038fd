// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/tmsincomb/oscapify/internal/header"
	"github.com/tmsincomb/oscapify/internal/table"
	"github.com/tmsincomb/oscapify/pkg/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate [csv-file]",
	Short: "Report header diagnostics for one CSV file",
	Long: `Validate reads a single CSV file and reports header diagnostics
without performing any DOI enrichment: found headers, structural problems
(duplicates, empty names, stray whitespace), sample data, detected header
patterns, and whether the required header set is satisfied.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("suggest-mappings", false, "print flag-ready header mapping suggestions")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	suggest, _ := cmd.Flags().GetBool("suggest-mappings")

	t, err := table.Read(args[0])
	if err != nil {
		return err
	}

	validator := header.NewValidator(types.DefaultHeaderMapping())
	report := validator.Debug(t)

	fmt.Printf("Validating: %s\n\n", args[0])
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	os.Stdout.Write(data)

	valid, corrections, _ := validator.Validate(t.Columns, false)
	switch {
	case valid && len(corrections) == 0:
		fmt.Println("\nAll required headers found.")
	case valid:
		fmt.Println("\nRequired headers resolvable with corrections:")
		for old, canonical := range corrections {
			fmt.Printf("  - rename %q to %q\n", old, canonical)
		}
	default:
		fmt.Println("\nMissing required headers.")
		for old, canonical := range corrections {
			fmt.Printf("  - rename %q to %q\n", old, canonical)
		}
	}

	if suggest {
		suggestions := validator.SuggestMapping(t.Columns)
		if len(suggestions) > 0 {
			fmt.Println("\nSuggested mappings:")
			for found, canonical := range suggestions {
				flag := strings.ReplaceAll(strings.ToLower(canonical), "_", "-")
				fmt.Printf("  --header-%s %q\n", flag, found)
			}
		}
	}

	return nil
}
