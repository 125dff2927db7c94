// Package store persists endpoint type schemas. Writes are all-or-nothing: a
// document that fails validation, or a write that fails midway, leaves the
// previously stored version untouched.
package store

import (
	"context"
	"errors"
	"regexp"
	"sort"

	"github.com/goliatone/go-endpointschema/pkg/schema"
)

var (
	// ErrNotFound reports an unknown schema id.
	ErrNotFound = errors.New("store: schema not found")
	// ErrInvalidID reports an id that cannot name a stored schema.
	ErrInvalidID = errors.New("store: invalid schema id")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Store is the persistence collaborator used by authoring sessions.
type Store interface {
	Load(ctx context.Context, id string) (schema.EndpointTypeSchema, error)
	Save(ctx context.Context, doc schema.EndpointTypeSchema) error
	List(ctx context.Context) ([]Summary, error)
}

// Summary is the listing view of a stored schema.
type Summary struct {
	ID            string        `json:"id"`
	TypeCode      string        `json:"typeCode"`
	TypeName      string        `json:"typeName"`
	SchemaVersion string        `json:"schemaVersion,omitempty"`
	Status        schema.Status `json:"status,omitempty"`
	Fields        int           `json:"fields"`
}

func summarize(doc schema.EndpointTypeSchema) Summary {
	return Summary{
		ID:            doc.ID,
		TypeCode:      doc.TypeCode,
		TypeName:      doc.TypeName,
		SchemaVersion: doc.SchemaVersion,
		Status:        doc.Status,
		Fields:        len(doc.Fields),
	}
}

func sortSummaries(items []Summary) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].TypeCode != items[j].TypeCode {
			return items[i].TypeCode < items[j].TypeCode
		}
		return items[i].ID < items[j].ID
	})
}

// ValidID reports whether id can name a stored schema.
func ValidID(id string) bool {
	return idPattern.MatchString(id) && id != "." && id != ".."
}
