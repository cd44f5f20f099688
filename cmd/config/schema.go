// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"

	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Export configuration schema",
		Long: `Export the configuration schema in JSON Schema Draft 2020-12 format.

The schema can be used for:
  - IDE autocomplete and validation
  - Documentation generation
  - Third-party tooling integration`,
		Example: `  # Print schema to stdout
  keep config schema

  # Write it next to the config file
  keep config schema --output ~/.config/keep/config.schema.json

  # Use with VS Code (in .vscode/settings.json):
  {
    "yaml.schemas": {
      "~/.config/keep/config.schema.json": ".config/keep/config.yaml"
    }
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Generate JSON schema
			schema, err := config.GenerateJSONSchema()
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}

			// Write to file or stdout
			if outputFile != "" {
				if err := os.WriteFile(outputFile, schema, 0644); err != nil {
					return fmt.Errorf("failed to write schema to file: %w", err)
				}
				fmt.Printf("Schema written to %s\n", outputFile)
			} else {
				fmt.Println(string(schema))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write schema to file instead of stdout")

	return cmd
}
