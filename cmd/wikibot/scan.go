package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aescanero/dago-wikibot/internal/wikitext"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [file|-]",
	Short: "Print the templates found in wikitext",
	Long: `Scan a wikitext file, or standard input, and print the templates found.

Examples:
  wikibot scan page.wiki
  wikibot scan page.wiki --name coord --nested --multi
  curl -s "$URL?action=raw" | wikibot scan - --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

var (
	scanOpts wikitext.Options
	scanJSON bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanOpts.Name, "name", "", "Only templates with this name")
	scanCmd.Flags().BoolVar(&scanOpts.Nested, "nested", false, "Parse templates inside parameter values")
	scanCmd.Flags().BoolVar(&scanOpts.Multi, "multi", false, "Return every match instead of the first")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Print JSON")
}

func runScan(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	templates, err := wikitext.Scan(string(data), scanOpts)
	if err != nil {
		return fmt.Errorf("failed to scan: %w", err)
	}

	out := cmd.OutOrStdout()
	if scanJSON {
		if templates == nil {
			templates = []*wikitext.Template{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(templates)
	}

	for _, t := range templates {
		printTemplate(out, t, 0)
	}
	return nil
}

func printTemplate(w io.Writer, t *wikitext.Template, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s{{%s}}\n", indent, t.Name)
	for i, a := range t.Anonymous {
		fmt.Fprintf(w, "%s  %d = %s\n", indent, i+1, a)
	}
	t.Params.Each(func(name string, v wikitext.Value) {
		for _, s := range v.Strings() {
			fmt.Fprintf(w, "%s  %s = %s\n", indent, name, s)
		}
	})
	for _, child := range t.Nested {
		printTemplate(w, child, depth+1)
	}
}
