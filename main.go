// =============================================================================
// Invoice Form Gate - Main Entry Point
// =============================================================================
//
// USAGE:
//   formgate validate <form>...  - Check forms and print the first violation
//   formgate extract <form>      - Print the invoice payload of a valid form
//   formgate process             - Run the gate over the input directory
//   formgate schema              - Print the JSON Schema of a raw form
//   formgate version             - Display the application version
//
// ARCHITECTURE:
//   - cmd/          : CLI command definitions (Cobra)
//   - cmd/lambda/   : AWS Lambda entry point
//   - internal/     : Validator, extractor and the pipeline around them
//   - pkg/          : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/invoice-form-gate/cmd"
)

func main() {
	cmd.Execute()
}
