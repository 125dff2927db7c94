// Package codec moves endpoint type schemas in and out of the authoring
// session. Export emits the document verbatim; Import accepts a document only
// when it passes the same static validation as a commit.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/validation"
)

// Format selects the serialized representation.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	// ErrImportRejected is matched by every *ImportRejectedError.
	ErrImportRejected = errors.New("codec: import rejected")
	// ErrUnknownFormat reports a format other than json or yaml.
	ErrUnknownFormat = errors.New("codec: unknown format")
)

// ParseFormat resolves a format name. "yml" is accepted as yaml.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatForPath picks a format from a file extension, defaulting to yaml.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// DetectFormat sniffs data: a leading '{' means JSON, anything else YAML.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// ImportRejectedError explains why a document was refused. Cause is the decode
// error or a *schema.ValidationError listing every defect.
type ImportRejectedError struct {
	Cause error
}

func (e *ImportRejectedError) Error() string {
	return fmt.Sprintf("codec: import rejected: %v", e.Cause)
}

func (e *ImportRejectedError) Unwrap() []error {
	return []error{ErrImportRejected, e.Cause}
}

// Issues returns the validation issues behind the rejection, if any.
func (e *ImportRejectedError) Issues() []schema.Issue {
	var verr *schema.ValidationError
	if errors.As(e.Cause, &verr) {
		return verr.Issues
	}
	return nil
}

// Export serializes doc as-is.
func Export(doc schema.EndpointTypeSchema, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("codec: encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("codec: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("codec: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Import decodes data and validates the whole document. Any failure returns a
// zero schema and an *ImportRejectedError; nothing is partially applied.
// An empty format is detected from the content.
func Import(data []byte, format Format, opts ...validation.Option) (schema.EndpointTypeSchema, error) {
	if format == "" {
		format = DetectFormat(data)
	}
	doc, err := decode(data, format)
	if err != nil {
		return schema.EndpointTypeSchema{}, &ImportRejectedError{Cause: err}
	}
	if err := validation.Schema(doc, opts...).Err(); err != nil {
		return schema.EndpointTypeSchema{}, &ImportRejectedError{Cause: err}
	}
	return doc, nil
}

func decode(data []byte, format Format) (schema.EndpointTypeSchema, error) {
	var doc schema.EndpointTypeSchema
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, errors.New("codec: document is empty")
	}
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return doc, fmt.Errorf("codec: decode json: %w", err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return doc, errors.New("codec: decode json: trailing data after document")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return doc, fmt.Errorf("codec: decode yaml: %w", err)
		}
		var extra yaml.Node
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return doc, errors.New("codec: decode yaml: multiple documents are not supported")
		}
	default:
		return doc, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return doc, nil
}
