package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-endpointschema/pkg/authoring"
	"github.com/goliatone/go-endpointschema/pkg/openapi"
	"github.com/goliatone/go-endpointschema/pkg/schema"
)

type seedOptions struct {
	file      string
	component string
	into      string
	id        string
	typeCode  string
	typeName  string
	modes     string
	save      bool
}

func newSeedCmd(a *app) *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create schema fields from an OpenAPI component schema",
		Long: "Seed converts the properties of an OpenAPI component schema into field " +
			"definitions. The result is printed as a new draft schema, saved with --save, " +
			"or appended to a stored schema with --into.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, a, opts)
		},
	}
	cmd.Flags().StringVar(&opts.file, "openapi", "", "OpenAPI document (JSON or YAML)")
	cmd.Flags().StringVar(&opts.component, "component", "", "component schema name")
	cmd.Flags().StringVar(&opts.into, "into", "", "append the seeded fields to this stored schema and commit")
	cmd.Flags().StringVar(&opts.id, "id", "", "id of the new schema")
	cmd.Flags().StringVar(&opts.typeCode, "type-code", "", "type code of the new schema (default derived from the component)")
	cmd.Flags().StringVar(&opts.typeName, "type-name", "", "type name of the new schema (default the component name)")
	cmd.Flags().StringVar(&opts.modes, "modes", "", "comma separated modes for the seeded fields")
	cmd.Flags().BoolVar(&opts.save, "save", false, "commit the new schema to the store")
	return cmd
}

func runSeed(cmd *cobra.Command, a *app, opts seedOptions) error {
	if opts.file == "" || opts.component == "" {
		return errors.New("--openapi and --component are required")
	}
	raw, err := os.ReadFile(opts.file) // #nosec G304 -- operator supplied path
	if err != nil {
		return err
	}
	modes, err := parseModes(opts.modes)
	if err != nil {
		return err
	}
	fields, err := openapi.SeedFields(cmd.Context(), raw, opts.component, openapi.WithModes(modes...))
	if err != nil {
		return err
	}
	a.logger.Debug("schemactl: seeded fields", "component", opts.component, "fields", len(fields))

	if opts.into != "" {
		st, err := a.openStore()
		if err != nil {
			return err
		}
		session, err := authoring.Open(cmd.Context(), st, opts.into, authoring.WithLogger(a.logger))
		if err != nil {
			return err
		}
		existing := session.Editor().Fields()
		for i := range fields {
			fields[i].SortOrder = len(existing) + i + 1
		}
		if err := session.Editor().Reset(append(existing, fields...)); err != nil {
			return err
		}
		committed, err := session.Commit(cmd.Context())
		if err != nil {
			writeIssues(cmd.ErrOrStderr(), err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %d fields to %s (version %s)\n", len(fields), committed.ID, committed.SchemaVersion)
		return nil
	}

	doc := schema.EndpointTypeSchema{
		ID:             opts.id,
		TypeCode:       opts.typeCode,
		TypeName:       opts.typeName,
		SupportedModes: modes,
		Status:         schema.StatusDraft,
		Fields:         fields,
	}
	if strings.TrimSpace(doc.TypeCode) == "" {
		doc.TypeCode = strcase.ToSnake(opts.component)
	}
	if strings.TrimSpace(doc.TypeName) == "" {
		doc.TypeName = opts.component
	}

	sessionOpts := []authoring.Option{authoring.WithLogger(a.logger)}
	if opts.save {
		st, err := a.openStore()
		if err != nil {
			return err
		}
		sessionOpts = append(sessionOpts, authoring.WithStore(st))
	}
	session := authoring.New(doc, sessionOpts...)
	if !opts.save {
		data, err := session.Export(a.format())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	committed, err := session.Commit(cmd.Context())
	if err != nil {
		writeIssues(cmd.ErrOrStderr(), err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s with %d fields\n", committed.ID, len(committed.Fields))
	return nil
}
