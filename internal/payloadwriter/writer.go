// =============================================================================
// Invoice Form Gate - Payload Writer Module
// =============================================================================
//
// This module encodes an extracted invoice payload for persistence. Sections
// that were not required are absent from the payload and therefore absent
// from every encoding.
//
// XML STRUCTURE:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <invoice>
//     <recipient>
//       <fullname>Ada Lovelace</fullname>
//       <email>ada@example.com</email>
//     </recipient>
//     <rows>
//       <row id="r1">
//         <description>Consulting</description>
//         <price>120.5</price>
//         <quantity>2</quantity>
//       </row>
//     </rows>
//     <tax>
//       <amount>20</amount>
//     </tax>
//   </invoice>
//
// =============================================================================

package payloadwriter

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/invoice-form-gate/internal/types"
)

// Supported encodings.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXML  = "xml"
)

// =============================================================================
// GENERATION OPTIONS
// =============================================================================

// Options contains options for payload encoding.
type Options struct {
	// Indent is the string used for indentation (JSON and XML).
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration writes the <?xml ...?> header.
	// Default: true
	IncludeXMLDeclaration bool
}

// DefaultOptions returns the default encoding options.
func DefaultOptions() Options {
	return Options{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
	}
}

// =============================================================================
// ENCODING
// =============================================================================

// Extension returns the file extension, with dot, for format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatYAML:
		return ".yaml"
	case FormatXML:
		return ".xml"
	default:
		return ".json"
	}
}

// Write encodes payload in format with the default options.
func Write(payload types.InvoicePayload, format string) ([]byte, error) {
	return WriteWithOptions(payload, format, DefaultOptions())
}

// WriteWithOptions encodes payload in format.
func WriteWithOptions(payload types.InvoicePayload, format string, options Options) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		out, err := json.MarshalIndent(payload, "", options.Indent)
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON payload: %w", err)
		}
		return append(out, '\n'), nil

	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("failed to encode YAML payload: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode YAML payload: %w", err)
		}
		return buf.Bytes(), nil

	case FormatXML:
		var buf bytes.Buffer
		if options.IncludeXMLDeclaration {
			buf.WriteString(xml.Header)
		}
		enc := xml.NewEncoder(&buf)
		enc.Indent("", options.Indent)
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("failed to encode XML payload: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unsupported payload format %q", format)
	}
}
