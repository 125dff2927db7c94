package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-endpointschema/internal/config"
	"github.com/goliatone/go-endpointschema/pkg/codec"
	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/store"
)

// app carries the resolved configuration shared by every command.
type app struct {
	configPath string
	overrides  config.Config

	cfg    config.Config
	logger *slog.Logger
	// openStore is replaced in tests.
	openStore func() (store.Store, error)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "schemactl",
		Short:        "Author, validate, and preview endpoint type configuration schemas",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", fmt.Sprintf("config file (default $%s or ./%s)", config.EnvPath, config.DefaultPath))
	flags.StringVar(&a.overrides.StoreDir, "store", "", "schema store directory")
	flags.StringVar(&a.overrides.Format, "store-format", "", "default document format for output (yaml|json)")
	flags.StringVar(&a.overrides.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	flags.StringVar(&a.overrides.DefaultMode, "default-mode", "", "mode previewed when --mode is omitted")

	root.AddCommand(
		newValidateCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newPreviewCmd(a),
		newEditCmd(a),
		newSeedCmd(a),
		newListCmd(a),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg = cfg.Merge(a.overrides)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	if a.openStore == nil {
		a.openStore = func() (store.Store, error) {
			return store.NewFileStore(a.cfg.StoreDir, store.WithLogger(a.logger))
		}
	}
	return nil
}

func (a *app) format() codec.Format {
	format, err := codec.ParseFormat(a.cfg.Format)
	if err != nil {
		return codec.FormatYAML
	}
	return format
}

// readSchema loads and validates a schema document from path; "-" reads stdin.
func readSchema(path string, stdin io.Reader) (schema.EndpointTypeSchema, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return schema.EndpointTypeSchema{}, err
	}
	format := codec.Format("")
	if path != "-" {
		format = codec.FormatForPath(path)
	}
	return codec.Import(data, format)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("--file is required")
	}
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- operator supplied path
	if err != nil {
		return nil, err
	}
	return data, nil
}

// parseModes reads a comma separated mode list.
func parseModes(raw string) ([]schema.Mode, error) {
	var modes []schema.Mode
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		mode := schema.Mode(part)
		if !mode.IsValid() {
			return nil, fmt.Errorf("unknown mode %q", part)
		}
		modes = append(modes, mode)
	}
	return modes, nil
}

func writeIssues(w io.Writer, err error) {
	for _, issue := range issuesOf(err) {
		fmt.Fprintf(w, "  - %s\n", issue)
	}
}
