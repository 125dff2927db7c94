package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-endpointschema/pkg/codec"
	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/validation"
)

const fileExt = ".yaml"

// FileStore keeps one YAML document per schema id in a directory.
type FileStore struct {
	dir      string
	logger   *slog.Logger
	debounce time.Duration
}

var _ Store = (*FileStore)(nil)

// FileOption customises a FileStore.
type FileOption func(*FileStore)

// WithLogger routes watch and listing warnings to logger.
func WithLogger(logger *slog.Logger) FileOption {
	return func(s *FileStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDebounce sets how long Watch waits for a burst of file events to settle.
func WithDebounce(d time.Duration) FileOption {
	return func(s *FileStore) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// NewFileStore creates dir when missing.
func NewFileStore(dir string, opts ...FileOption) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	s := &FileStore{
		dir:      filepath.Clean(dir),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		debounce: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Dir returns the backing directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file that holds id.
func (s *FileStore) Path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

// Load reads and validates the stored document. A file that no longer passes
// validation is reported as an error rather than returned partially.
func (s *FileStore) Load(ctx context.Context, id string) (schema.EndpointTypeSchema, error) {
	if err := ctx.Err(); err != nil {
		return schema.EndpointTypeSchema{}, err
	}
	if !ValidID(id) {
		return schema.EndpointTypeSchema{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return schema.EndpointTypeSchema{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return schema.EndpointTypeSchema{}, fmt.Errorf("store: read %q: %w", id, err)
	}
	doc, err := codec.Import(data, codec.FormatYAML)
	if err != nil {
		return schema.EndpointTypeSchema{}, fmt.Errorf("store: load %q: %w", id, err)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	return doc, nil
}

// Save validates doc and replaces its file atomically.
func (s *FileStore) Save(ctx context.Context, doc schema.EndpointTypeSchema) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidID(doc.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, doc.ID)
	}
	if err := validation.Schema(doc).Err(); err != nil {
		return fmt.Errorf("store: save %q: %w", doc.ID, err)
	}
	data, err := codec.Export(doc, codec.FormatYAML)
	if err != nil {
		return fmt.Errorf("store: save %q: %w", doc.ID, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+doc.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("store: save %q: %w", doc.ID, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("store: write %q: %w", doc.ID, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("store: sync %q: %w", doc.ID, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("store: close %q: %w", doc.ID, err)
	}
	if err := os.Rename(tmpName, s.Path(doc.ID)); err != nil {
		cleanup()
		return fmt.Errorf("store: replace %q: %w", doc.ID, err)
	}
	return nil
}

// List summarises every readable document. Files that fail to load are
// skipped with a warning.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	out := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		id, ok := idFromName(entry.Name())
		if entry.IsDir() || !ok {
			continue
		}
		doc, err := s.Load(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.Warn("store: skipping unreadable schema", "id", id, "err", err)
			continue
		}
		out = append(out, summarize(doc))
	}
	sortSummaries(out)
	return out, nil
}

// Watch calls fn with the id of every schema whose file is written, created,
// renamed, or removed, until ctx is cancelled. Bursts of events for one id
// are coalesced over the debounce window.
func (s *FileStore) Watch(ctx context.Context, fn func(id string)) error {
	if fn == nil {
		return errors.New("store: watch callback is required")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("store: watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("store: watch %s: %w", s.dir, err)
	}

	ticker := time.NewTicker(s.debounce)
	defer ticker.Stop()
	pending := map[string]struct{}{}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if id, ok := idFromName(filepath.Base(ev.Name)); ok {
				pending[id] = struct{}{}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("store: watch error", "err", err)
		case <-ticker.C:
			for _, id := range drain(pending) {
				fn(id)
			}
		}
	}
}

// drain empties pending and returns its ids in sorted order.
func drain(pending map[string]struct{}) []string {
	if len(pending) == 0 {
		return nil
	}
	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
		delete(pending, id)
	}
	sort.Strings(ids)
	return ids
}

func idFromName(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	id := strings.TrimSuffix(name, fileExt)
	return id, ValidID(id)
}
