// Package validation runs whole-document static validation over an
// EndpointTypeSchema. Import and commit both go through Schema; the field
// editor uses Field on its edit buffer.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/goliatone/go-endpointschema/pkg/rules"
	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/widgets"
)

var typeCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// SchemaValidationResult captures validation outcomes for a whole document.
type SchemaValidationResult struct {
	Valid  bool           `json:"valid"`
	Issues []schema.Issue `json:"issues,omitempty"`
}

// Err returns the issues as a *schema.ValidationError, or nil when valid.
func (r SchemaValidationResult) Err() error {
	return schema.AsError(r.Issues)
}

// Options configures validation behaviour.
type Options struct {
	Registry *widgets.Registry
	// StrictWidgets rejects widget kinds outside the registry. Stored
	// documents are validated leniently because the interpreter degrades
	// unknown kinds to a placeholder; the editor validates strictly.
	StrictWidgets bool
}

// Option mutates Options.
type Option func(*Options)

// WithRegistry checks widget properties against reg instead of the default
// registry.
func WithRegistry(reg *widgets.Registry) Option {
	return func(o *Options) {
		if reg != nil {
			o.Registry = reg
		}
	}
}

// WithStrictWidgets toggles rejection of unknown widget kinds.
func WithStrictWidgets(strict bool) Option {
	return func(o *Options) {
		o.StrictWidgets = strict
	}
}

func buildOptions(opts []Option) Options {
	cfg := Options{Registry: widgets.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Schema validates header, field list, and every field. All issues are
// reported together; paths are rooted at the document ("fields[2].key").
func Schema(doc schema.EndpointTypeSchema, opts ...Option) SchemaValidationResult {
	cfg := buildOptions(opts)
	var issues []schema.Issue

	issues = append(issues, headerIssues(doc)...)
	issues = append(issues, schema.KeyIssues(doc.Fields)...)
	issues = append(issues, schema.OrderIssues(doc.Fields)...)
	for idx, field := range doc.Fields {
		for _, issue := range schema.Prefix(fmt.Sprintf("fields[%d]", idx), fieldIssues(field, doc.SupportedModes, cfg)) {
			issue.Index = idx
			if issue.Field == "" {
				issue.Field = field.Key
			}
			issues = append(issues, issue)
		}
	}

	return SchemaValidationResult{Valid: len(issues) == 0, Issues: issues}
}

// Field validates one definition in isolation: everything except key
// uniqueness and ordering, which depend on the surrounding list. Paths are
// relative to the field ("label", "validationRules[0].message").
func Field(field schema.FieldDefinition, supported []schema.Mode, opts ...Option) []schema.Issue {
	cfg := buildOptions(opts)
	var issues []schema.Issue
	key := strings.TrimSpace(field.Key)
	switch {
	case key == "":
		issues = append(issues, schema.Issue{Index: -1, Path: "key", Message: "field key is required"})
	case !schema.ValidKey(key):
		issues = append(issues, schema.Issue{Index: -1, Path: "key", Field: key, Message: "field key must start with a letter or underscore and contain only letters, digits, and underscores"})
	}
	return append(issues, fieldIssues(field, supported, cfg)...)
}

// Version parses a schemaVersion. Partial versions such as "1.2" are
// accepted and normalized.
func Version(raw string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("validation: schema version %q: %w", raw, err)
	}
	return v, nil
}

func headerIssues(doc schema.EndpointTypeSchema) []schema.Issue {
	var issues []schema.Issue
	add := func(path, message string) {
		issues = append(issues, schema.Issue{Index: -1, Path: path, Message: message})
	}

	code := strings.TrimSpace(doc.TypeCode)
	switch {
	case code == "":
		add("typeCode", "type code is required")
	case !typeCodePattern.MatchString(code):
		add("typeCode", "type code may contain only letters, digits, '.', '_' and '-'")
	}
	if strings.TrimSpace(doc.TypeName) == "" {
		add("typeName", "type name is required")
	}
	if doc.SchemaVersion != "" {
		if _, err := Version(doc.SchemaVersion); err != nil {
			add("schemaVersion", "schema version must be a semantic version")
		}
	}
	if doc.Status != "" && !doc.Status.IsValid() {
		add("status", fmt.Sprintf("unknown status %q", string(doc.Status)))
	}
	issues = append(issues, modeIssues("supportedModes", doc.SupportedModes, nil)...)
	return issues
}

func fieldIssues(field schema.FieldDefinition, supported []schema.Mode, cfg Options) []schema.Issue {
	var issues []schema.Issue
	add := func(path, message string) {
		issues = append(issues, schema.Issue{Index: -1, Path: path, Message: message})
	}

	if strings.TrimSpace(field.Label) == "" {
		add("label", "label is required")
	}

	switch {
	case field.Widget == "":
		add("widget", "widget kind is required")
	default:
		result := cfg.Registry.Configure(field.Widget, field.Properties)
		if !result.Supported {
			if cfg.StrictWidgets {
				add("widget", fmt.Sprintf("unsupported widget kind %q", string(field.Widget)))
			}
			break
		}
		issues = append(issues, schema.Prefix("properties", result.Issues)...)
	}

	issues = append(issues, modeIssues("modes", field.Modes, supported)...)

	for idx, rule := range field.Rules {
		issues = append(issues, schema.Prefix(fmt.Sprintf("validationRules[%d]", idx), rule.Check())...)
	}
	issues = append(issues, schema.Prefix("visibilityPredicate", rules.PredicateIssues(field.Visibility))...)
	return issues
}

// modeIssues rejects unknown and repeated tags, and tags outside allowed when
// allowed is non-empty.
func modeIssues(path string, modes []schema.Mode, allowed []schema.Mode) []schema.Issue {
	var issues []schema.Issue
	seen := make(map[schema.Mode]struct{}, len(modes))
	for idx, mode := range modes {
		at := fmt.Sprintf("%s[%d]", path, idx)
		if !mode.IsValid() {
			issues = append(issues, schema.Issue{Index: -1, Path: at, Message: fmt.Sprintf("unknown mode %q", string(mode))})
			continue
		}
		if _, dup := seen[mode]; dup {
			issues = append(issues, schema.Issue{Index: -1, Path: at, Message: fmt.Sprintf("mode %s is listed twice", mode)})
			continue
		}
		seen[mode] = struct{}{}
		if len(allowed) > 0 && !containsMode(allowed, mode) {
			issues = append(issues, schema.Issue{Index: -1, Path: at, Message: fmt.Sprintf("mode %s is not supported by the endpoint type", mode)})
		}
	}
	return issues
}

func containsMode(modes []schema.Mode, mode schema.Mode) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}
