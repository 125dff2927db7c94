package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-endpointschema/pkg/interpreter"
	"github.com/goliatone/go-endpointschema/pkg/preview"
	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/store"
)

type previewOptions struct {
	file   string
	id     string
	mode   string
	values string
	output string
	watch  bool
}

func newPreviewCmd(a *app) *cobra.Command {
	opts := previewOptions{}
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the configuration form of a schema for each mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, a, opts)
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "", "schema document")
	cmd.Flags().StringVar(&opts.id, "id", "", "stored schema id (instead of --file)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "preview a single mode")
	cmd.Flags().StringVar(&opts.values, "values", "", "form values as a JSON/YAML object, or @path")
	cmd.Flags().StringVar(&opts.output, "output", "table", "table|json")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-render whenever the schema file changes")
	return cmd
}

func runPreview(cmd *cobra.Command, a *app, opts previewOptions) error {
	if (opts.file == "") == (opts.id == "") {
		return errors.New("exactly one of --file or --id is required")
	}
	if opts.output != "table" && opts.output != "json" {
		return fmt.Errorf("unknown output %q (table|json)", opts.output)
	}
	values, err := parseValues(opts.values)
	if err != nil {
		return err
	}

	var modes []schema.Mode
	switch {
	case opts.mode != "":
		if modes, err = parseModes(opts.mode); err != nil {
			return err
		}
	case a.cfg.Mode() != "":
		modes = []schema.Mode{a.cfg.Mode()}
	}

	interp := interpreter.New(interpreter.WithLogger(a.logger))
	render := func(w io.Writer, doc schema.EndpointTypeSchema) error {
		host := preview.New(doc,
			preview.WithInterpreter(interp),
			preview.WithValues(values),
			preview.WithModes(modes...),
		)
		if opts.output == "json" {
			return host.WriteJSON(w)
		}
		return host.WriteText(w)
	}

	var load func(ctx context.Context) (schema.EndpointTypeSchema, error)
	var watched *store.FileStore
	var watchedID string
	if opts.file != "" {
		load = func(context.Context) (schema.EndpointTypeSchema, error) {
			return readSchema(opts.file, cmd.InOrStdin())
		}
		if opts.watch {
			dir, id, err := watchTarget(opts.file)
			if err != nil {
				return err
			}
			if watched, err = store.NewFileStore(dir, store.WithLogger(a.logger)); err != nil {
				return err
			}
			watchedID = id
		}
	} else {
		st, err := a.openStore()
		if err != nil {
			return err
		}
		load = func(ctx context.Context) (schema.EndpointTypeSchema, error) {
			return st.Load(ctx, opts.id)
		}
		if opts.watch {
			fs, ok := st.(*store.FileStore)
			if !ok {
				return errors.New("--watch requires a file store")
			}
			watched, watchedID = fs, opts.id
		}
	}

	out := cmd.OutOrStdout()
	doc, err := load(cmd.Context())
	if err != nil {
		writeIssues(cmd.ErrOrStderr(), err)
		return err
	}
	if err := render(out, doc); err != nil {
		return err
	}
	if watched == nil {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	a.logger.Info("schemactl: watching for changes", "dir", watched.Dir(), "id", watchedID)
	err = watched.Watch(ctx, func(changed string) {
		if changed != watchedID {
			return
		}
		doc, err := load(ctx)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: invalid\n", watchedID)
			writeIssues(cmd.ErrOrStderr(), err)
			return
		}
		fmt.Fprintln(out)
		if err := render(out, doc); err != nil {
			a.logger.Warn("schemactl: render failed", "id", watchedID, "err", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchTarget maps a schema file to the store directory and id a FileStore
// watch reports it under.
func watchTarget(path string) (string, string, error) {
	base := filepath.Base(path)
	id := strings.TrimSuffix(base, ".yaml")
	if id == base || !store.ValidID(id) {
		return "", "", fmt.Errorf("--watch needs a <id>.yaml file, got %s", base)
	}
	return filepath.Dir(path), id, nil
}

// parseValues reads an inline JSON or YAML object, or a file when prefixed
// with '@'.
func parseValues(raw string) (schema.FormValues, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	data := []byte(raw)
	if strings.HasPrefix(raw, "@") {
		read, err := os.ReadFile(strings.TrimPrefix(raw, "@")) // #nosec G304 -- operator supplied path
		if err != nil {
			return nil, fmt.Errorf("--values: %w", err)
		}
		data = read
	}
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("--values: %w", err)
	}
	return schema.FormValues(values), nil
}
