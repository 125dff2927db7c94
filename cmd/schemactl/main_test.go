package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/goliatone/go-endpointschema/pkg/store"
)

const webhookFixture = "../../pkg/testsupport/testdata/webhook.yaml"

type harness struct {
	t        *testing.T
	storeDir string
	config   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	storeDir := filepath.Join(dir, "schemas")
	config := filepath.Join(dir, "schemactl.toml")
	body := "store_dir = " + strconv.Quote(storeDir) + "\nlog_level = \"error\"\n"
	if err := os.WriteFile(config, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &harness{t: t, storeDir: storeDir, config: config}
}

// run executes schemactl with args and returns stdout, stderr, and the error.
func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	cmd := newRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--config", h.config}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errOut, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("schemactl %s: %v\n%s", strings.Join(args, " "), err, errOut)
	}
	return out
}

func TestValidate(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	out := h.mustRun("validate", "--file", webhookFixture)
	if !strings.Contains(out, "ok: HTTP Webhook (http.webhook) with 8 fields") {
		t.Fatalf("unexpected output %q", out)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("typeCode: \"\"\ntypeName: X\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, errOut, err := h.run("validate", "--file", bad)
	if err == nil {
		t.Fatalf("expected invalid document to fail")
	}
	if !strings.Contains(errOut, "invalid") || !strings.Contains(errOut, "type code is required") {
		t.Fatalf("expected issues on stderr, got %q", errOut)
	}
}

func TestImportListExport(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	if out := h.mustRun("import", "--file", webhookFixture); !strings.Contains(out, "imported ep-webhook") {
		t.Fatalf("unexpected import output %q", out)
	}
	if _, err := os.Stat(filepath.Join(h.storeDir, "ep-webhook.yaml")); err != nil {
		t.Fatalf("expected stored file: %v", err)
	}

	var items []store.Summary
	if err := json.Unmarshal([]byte(h.mustRun("list", "--output", "json")), &items); err != nil {
		t.Fatalf("list output is not JSON: %v", err)
	}
	if len(items) != 1 || items[0].ID != "ep-webhook" || items[0].Fields != 8 {
		t.Fatalf("unexpected listing %+v", items)
	}
	if table := h.mustRun("list"); !strings.Contains(table, "ep-webhook") || !strings.Contains(table, "TYPE CODE") {
		t.Fatalf("unexpected table %q", table)
	}

	if yamlOut := h.mustRun("export", "--id", "ep-webhook"); !strings.Contains(yamlOut, "typeCode: http.webhook") {
		t.Fatalf("unexpected yaml export %q", yamlOut)
	}
	if jsonOut := h.mustRun("export", "--id", "ep-webhook", "--format", "json"); !strings.HasPrefix(jsonOut, "{") {
		t.Fatalf("unexpected json export %q", jsonOut)
	}
	doc := h.mustRun("export", "--id", "ep-webhook", "--format", "openapi")
	if !strings.Contains(doc, `"HttpWebhookIn"`) || !strings.Contains(doc, `"HttpWebhookOut"`) {
		t.Fatalf("expected per-mode components, got %s", doc)
	}

	if _, _, err := h.run("export", "--id", "missing"); err == nil {
		t.Fatalf("expected unknown id to fail")
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	out := h.mustRun("preview", "--file", webhookFixture, "--mode", "OUT", "--values", `{"authType": "basic"}`)
	if !strings.Contains(out, "Mode OUT: 11 visible") || strings.Contains(out, "Mode IN") {
		t.Fatalf("unexpected preview %q", out)
	}

	var views []map[string]any
	if err := json.Unmarshal([]byte(h.mustRun("preview", "--file", webhookFixture, "--output", "json")), &views); err != nil {
		t.Fatalf("json preview: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected a view per supported mode, got %d", len(views))
	}

	if _, _, err := h.run("preview"); err == nil {
		t.Fatalf("expected a missing source to fail")
	}
	if _, _, err := h.run("preview", "--file", webhookFixture, "--mode", "SIDEWAYS"); err == nil {
		t.Fatalf("expected an unknown mode to fail")
	}
}

func TestSeed(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.mustRun("import", "--file", webhookFixture)

	spec := filepath.Join(t.TempDir(), "openapi.json")
	if err := os.WriteFile(spec, []byte(h.mustRun("export", "--id", "ep-webhook", "--format", "openapi")), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	printed := h.mustRun("seed", "--openapi", spec, "--component", "HttpWebhookIn", "--id", "seeded")
	if !strings.Contains(printed, "typeCode: http_webhook_in") || !strings.Contains(printed, "key: timeoutMs") {
		t.Fatalf("unexpected seeded schema %q", printed)
	}

	if out := h.mustRun("seed", "--openapi", spec, "--component", "HttpWebhookIn", "--id", "seeded", "--save"); !strings.Contains(out, "created seeded with 7 fields") {
		t.Fatalf("unexpected save output %q", out)
	}

	if _, _, err := h.run("seed", "--openapi", spec, "--component", "Nope"); err == nil {
		t.Fatalf("expected an unknown component to fail")
	}
}

func TestEditRequiresTarget(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	if _, _, err := h.run("edit"); err == nil || !strings.Contains(err.Error(), "--id or --new") {
		t.Fatalf("expected target error, got %v", err)
	}
	if _, _, err := h.run("edit", "--new"); err == nil || !strings.Contains(err.Error(), "--type-code") {
		t.Fatalf("expected header error, got %v", err)
	}
}

func TestConfigErrors(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	if _, _, err := h.run("--log-level", "loud", "list"); err == nil {
		t.Fatalf("expected an invalid flag override to fail")
	}
}
