package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-form-gate/internal/form"
	"github.com/ginjaninja78/invoice-form-gate/internal/formparser"
	"github.com/ginjaninja78/invoice-form-gate/internal/notify"
)

var validateCmd = &cobra.Command{
	Use:   "validate <form>...",
	Short: "Validate invoice forms",
	Long: `The validate command checks each form and prints, for every form that
fails, the single warning describing the first rule it breaks.

Sections are checked in a fixed order and checking stops at the first
failure: recipient, rows, due date, currency, discount, tax, note.

The command fails if any form is rejected or cannot be read.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.close()
		return runValidate(cmd, e, args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, e *env, files []string) error {
	out := cmd.OutOrStdout()
	opts := formparser.DefaultOptions()
	opts.SchemaCheck = e.config.SchemaCheck

	validator := form.NewValidator(
		notify.Multi(notify.NewWriter(out), notify.Log(e.logger)),
		e.catalog,
		form.WithLogger(e.logger),
	)

	var bad int
	for _, file := range files {
		f, err := formparser.Parse(file, opts)
		if err != nil {
			bad++
			fmt.Fprintf(out, "✗ %s: %v\n", filepath.Base(file), err)
			continue
		}
		if e.config.UseSavedSettings {
			f = f.WithSavedDefaults()
		}

		fmt.Fprintf(out, "%s\n", filepath.Base(file))
		if validator.ValidateFormData(f) {
			fmt.Fprintln(out, "  ✓ valid")
			e.logger.Debug("form.validate.ok", zap.String("file", file))
			continue
		}
		bad++
	}

	if bad > 0 {
		return fmt.Errorf("%d of %d form(s) rejected", bad, len(files))
	}
	return nil
}
