package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/llmstxt/pkg/cli"
	"mercator-hq/llmstxt/pkg/content"
)

var contentFlags struct {
	all    bool
	output string
}

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect and import site content",
	Long: `Inspect the content types and import content into the content store.

Subcommands:
  types   - List content types and whether they are exported
  import  - Import types and items from a YAML fixture`,
}

var contentTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List content types",
	Long: `List the public content types offered for export. Types selected in the
stored settings are marked as selected.

Examples:
  # List public types
  llmstxt content types

  # Include non-public types
  llmstxt content types --all --output csv`,
	RunE: listContentTypes,
}

var contentImportCmd = &cobra.Command{
	Use:   "import <fixture.yaml>",
	Short: "Import content from a YAML fixture",
	Long: `Import content types and items from a YAML fixture. Existing items with
the same id are replaced.

Fixture format:
  types:
    - name: post
      label: Posts
      public: true
  items:
    - id: "7"
      type: post
      title: Hello
      permalink: https://acme.test/hello
      status: publish
      published_at: 2026-01-02T10:00:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: importContent,
}

func init() {
	rootCmd.AddCommand(contentCmd)
	contentCmd.AddCommand(contentTypesCmd, contentImportCmd)

	contentTypesCmd.Flags().BoolVar(&contentFlags.all, "all", false, "include non-public types")
	contentTypesCmd.Flags().StringVarP(&contentFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func listContentTypes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	var types []content.ContentType
	if contentFlags.all {
		types, err = a.content.Types(ctx)
	} else {
		types, err = a.content.PublicTypes(ctx)
	}
	if err != nil {
		return cli.NewCommandError("content types", err)
	}

	exportCfg, err := a.provider.ExportConfig(ctx)
	if err != nil {
		return cli.NewCommandError("content types", err)
	}

	return printOutput(contentFlags.output, newTypesView(types, exportCfg.IncludedTypes))
}

func importContent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.importFixture(cmd.Context(), args[0])
	if err != nil {
		return cli.NewCommandError("content import", err)
	}
	fmt.Fprintf(stdout, "Imported %d types and %d items from %s\n", result.Types, result.Items, args[0])
	return nil
}
