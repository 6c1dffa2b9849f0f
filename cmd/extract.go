package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/invoice-form-gate/internal/form"
	"github.com/ginjaninja78/invoice-form-gate/internal/formparser"
	"github.com/ginjaninja78/invoice-form-gate/internal/notify"
	"github.com/ginjaninja78/invoice-form-gate/internal/payloadwriter"
	"github.com/ginjaninja78/invoice-form-gate/internal/types"
)

var (
	extractOutput         string
	extractFormat         string
	extractSkipValidation bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <form>",
	Short: "Print the invoice payload of a form",
	Long: `The extract command validates a form and writes its invoice payload.

The payload carries the recipient and rows, plus each optional section that
the form's required-fields settings mark as required. Sections that are not
required are left out entirely.

With --skip-validation the payload is extracted without checking the form
first. The result is only meaningful for forms that would pass validation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.close()
		return runExtract(cmd, e, args[0])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Write the payload to this file instead of stdout")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "", "Payload format: json, yaml or xml (default from config)")
	extractCmd.Flags().BoolVar(&extractSkipValidation, "skip-validation", false, "Extract without validating first")
}

func runExtract(cmd *cobra.Command, e *env, file string) error {
	opts := formparser.DefaultOptions()
	opts.SchemaCheck = e.config.SchemaCheck

	f, err := formparser.Parse(file, opts)
	if err != nil {
		return err
	}
	if e.config.UseSavedSettings {
		f = f.WithSavedDefaults()
	}

	var payload types.InvoicePayload
	if extractSkipValidation {
		payload = form.GetInvoiceData(f)
	} else {
		validator := form.NewValidator(
			notify.Multi(notify.NewWriter(cmd.ErrOrStderr()), notify.Log(e.logger)),
			e.catalog,
			form.WithLogger(e.logger),
		)
		var ok bool
		if payload, ok = validator.Gate(f); !ok {
			return fmt.Errorf("form %s is not valid", file)
		}
	}

	format := extractFormat
	if format == "" {
		format = e.config.OutputFormat
	}
	data, err := payloadwriter.Write(payload, format)
	if err != nil {
		return err
	}

	if extractOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(extractOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	e.logger.Info("form.extract.ok", zap.String("file", file), zap.String("output", extractOutput))
	return nil
}
