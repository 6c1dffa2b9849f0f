package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/invoice-form-gate/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of a raw invoice form",
	Long: `Print the JSON Schema every form is checked against before it is decoded.
A form that does not match it is malformed input and never reaches
validation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(schema.Source())
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
