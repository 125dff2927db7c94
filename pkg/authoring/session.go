// Package authoring ties one schema's editing session together: the schema
// header, the field editor, import and export, preview, and the commit that
// hands the finished document to the store.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-endpointschema/pkg/codec"
	"github.com/goliatone/go-endpointschema/pkg/editor"
	"github.com/goliatone/go-endpointschema/pkg/preview"
	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/store"
	"github.com/goliatone/go-endpointschema/pkg/validation"
)

// InitialVersion is assigned by the first commit of a schema without one.
const InitialVersion = "0.1.0"

// ErrNoStore is returned by Commit when the session has no store.
var ErrNoStore = errors.New("authoring: no store configured")

// Session owns one schema while it is being authored. It is not safe for
// concurrent use.
type Session struct {
	header     schema.EndpointTypeSchema
	editor     *editor.Editor
	editorOpts []editor.Option
	store      store.Store
	logger     *slog.Logger
	newID      func() string
	baseline   schema.EndpointTypeSchema
}

// Option configures a Session.
type Option func(*Session)

// WithStore sets the store Commit writes to.
func WithStore(st store.Store) Option {
	return func(s *Session) { s.store = st }
}

// WithLogger routes session events to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator overrides how schema ids are minted for new documents.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithEditorOptions passes options through to the field editor.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(s *Session) {
		s.editorOpts = append(s.editorOpts, opts...)
	}
}

// New starts a session over a copy of doc. A document without an id is
// given one.
func New(doc schema.EndpointTypeSchema, opts ...Option) *Session {
	s := &Session{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	doc = doc.Clone()
	if strings.TrimSpace(doc.ID) == "" {
		doc.ID = s.newID()
	}
	s.load(doc)
	return s
}

// Open loads id from st and starts a session that commits back to it.
func Open(ctx context.Context, st store.Store, id string, opts ...Option) (*Session, error) {
	if st == nil {
		return nil, ErrNoStore
	}
	doc, err := st.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("authoring: open %q: %w", id, err)
	}
	return New(doc, append([]Option{WithStore(st)}, opts...)...), nil
}

func (s *Session) load(doc schema.EndpointTypeSchema) {
	s.baseline = doc.Clone()
	s.header = doc.Clone()
	s.header.Fields = nil
	opts := append([]editor.Option{editor.WithSupportedModes(doc.SupportedModes)}, s.editorOpts...)
	s.editor = editor.New(doc.Fields, opts...)
}

// ID returns the schema id.
func (s *Session) ID() string { return s.header.ID }

// Editor exposes the field editor.
func (s *Session) Editor() *editor.Editor { return s.editor }

// Header returns the schema without its fields.
func (s *Session) Header() schema.EndpointTypeSchema {
	return s.header.Clone()
}

// SetHeader applies fn to the header. The id and field list cannot be changed
// this way; supported modes flow through to the editor's save checks.
func (s *Session) SetHeader(fn func(*schema.EndpointTypeSchema)) {
	if fn == nil {
		return
	}
	next := s.header.Clone()
	fn(&next)
	next.ID = s.header.ID
	next.Fields = nil
	s.header = next
	s.editor.SetSupportedModes(next.SupportedModes)
}

// Snapshot returns the header with the editor's committed rows. A pending
// edit is not included.
func (s *Session) Snapshot() schema.EndpointTypeSchema {
	doc := s.header.Clone()
	doc.Fields = s.editor.Fields()
	return doc
}

// Dirty reports whether the snapshot differs from what was loaded or last
// committed, or an edit is pending.
func (s *Session) Dirty() bool {
	if s.editor.IsEditing() {
		return true
	}
	a, errA := codec.Export(s.Snapshot(), codec.FormatJSON)
	b, errB := codec.Export(s.baseline, codec.FormatJSON)
	return errA != nil || errB != nil || string(a) != string(b)
}

// Commit flushes the pending edit, validates the whole document, bumps the
// patch version, and saves it. On any failure the store is untouched and the
// session keeps its state; a pending edit that fails validation is reported
// as both a *editor.ConcurrencyViolation and the *schema.ValidationError.
func (s *Session) Commit(ctx context.Context) (schema.EndpointTypeSchema, error) {
	if s.store == nil {
		return schema.EndpointTypeSchema{}, ErrNoStore
	}
	editing, _ := s.editor.EditingID()
	fields, err := s.editor.FlushPendingEdit()
	if err != nil {
		notice := &editor.ConcurrencyViolation{Op: "commit", Editing: editing}
		return schema.EndpointTypeSchema{}, fmt.Errorf("%w: %w", notice, err)
	}

	doc := s.header.Clone()
	doc.Fields = fields
	version, err := nextVersion(doc.SchemaVersion)
	if err != nil {
		return schema.EndpointTypeSchema{}, err
	}
	doc.SchemaVersion = version

	if err := validation.Schema(doc).Err(); err != nil {
		return schema.EndpointTypeSchema{}, fmt.Errorf("authoring: commit: %w", err)
	}
	if err := s.store.Save(ctx, doc); err != nil {
		return schema.EndpointTypeSchema{}, fmt.Errorf("authoring: commit: %w", err)
	}

	s.header.SchemaVersion = version
	s.baseline = doc.Clone()
	s.logger.Info("authoring: schema committed", "id", doc.ID, "version", version, "fields", len(doc.Fields))
	return doc, nil
}

// Revert discards the pending edit and every change since the last load or
// commit.
func (s *Session) Revert() {
	s.editor.CancelEdit()
	s.load(s.baseline)
}

// Import replaces header and fields with an imported document. It is refused
// while a field is being edited, and a rejected document changes nothing.
// The session keeps its own id.
func (s *Session) Import(data []byte, format codec.Format) error {
	if id, editing := s.editor.EditingID(); editing {
		return &editor.ConcurrencyViolation{Op: "import", Editing: id}
	}
	doc, err := codec.Import(data, format)
	if err != nil {
		s.logger.Warn("authoring: import rejected", "id", s.header.ID, "err", err)
		return err
	}
	if err := s.editor.Reset(doc.Fields); err != nil {
		return err
	}
	doc.ID = s.header.ID
	doc.Fields = nil
	s.header = doc
	s.editor.SetSupportedModes(doc.SupportedModes)
	return nil
}

// Export serializes the snapshot.
func (s *Session) Export(format codec.Format) ([]byte, error) {
	return codec.Export(s.Snapshot(), format)
}

// Preview builds a preview host over the snapshot.
func (s *Session) Preview(opts ...preview.Option) *preview.Host {
	return preview.New(s.Snapshot(), opts...)
}

func nextVersion(current string) (string, error) {
	if strings.TrimSpace(current) == "" {
		return InitialVersion, nil
	}
	v, err := validation.Version(current)
	if err != nil {
		return "", fmt.Errorf("authoring: %w", err)
	}
	return v.IncPatch().String(), nil
}
