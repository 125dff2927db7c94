package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-endpointschema/pkg/authoring"
	"github.com/goliatone/go-endpointschema/pkg/prompt"
	"github.com/goliatone/go-endpointschema/pkg/schema"
)

type editOptions struct {
	id       string
	isNew    bool
	typeCode string
	typeName string
	category string
	modes    string
	retry    bool
}

func newEditCmd(a *app) *cobra.Command {
	opts := editOptions{}
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the fields of a schema interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := openSession(cmd, a, opts)
			if err != nil {
				return err
			}
			driver := prompt.NewSurveyDriver(cmd.OutOrStdout())
			flow := prompt.NewFlow(session, driver,
				prompt.WithOutput(cmd.OutOrStdout()),
				prompt.WithLogger(a.logger),
			)
			if err := flow.Run(cmd.Context()); err != nil {
				if errors.Is(err, prompt.ErrAborted) {
					fmt.Fprintln(cmd.ErrOrStderr(), "aborted; uncommitted changes discarded")
					return nil
				}
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.id, "id", "", "stored schema id, or the id to assign with --new")
	cmd.Flags().BoolVar(&opts.isNew, "new", false, "start a new schema")
	cmd.Flags().StringVar(&opts.typeCode, "type-code", "", "type code for --new")
	cmd.Flags().StringVar(&opts.typeName, "type-name", "", "type name for --new")
	cmd.Flags().StringVar(&opts.category, "category", "", "category for --new")
	cmd.Flags().StringVar(&opts.modes, "modes", "", "comma separated supported modes for --new")
	cmd.Flags().BoolVar(&opts.retry, "retry", false, "the new endpoint type supports retries")
	return cmd
}

func openSession(cmd *cobra.Command, a *app, opts editOptions) (*authoring.Session, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	if !opts.isNew {
		if strings.TrimSpace(opts.id) == "" {
			return nil, errors.New("one of --id or --new is required")
		}
		return authoring.Open(cmd.Context(), st, opts.id, authoring.WithLogger(a.logger))
	}

	if strings.TrimSpace(opts.typeCode) == "" || strings.TrimSpace(opts.typeName) == "" {
		return nil, errors.New("--new requires --type-code and --type-name")
	}
	modes, err := parseModes(opts.modes)
	if err != nil {
		return nil, err
	}
	doc := schema.EndpointTypeSchema{
		ID:             opts.id,
		TypeCode:       opts.typeCode,
		TypeName:       opts.typeName,
		Category:       opts.category,
		SupportedModes: modes,
		Status:         schema.StatusDraft,
		SupportsRetry:  opts.retry,
	}
	return authoring.New(doc, authoring.WithStore(st), authoring.WithLogger(a.logger)), nil
}
