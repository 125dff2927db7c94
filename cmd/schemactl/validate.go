package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-endpointschema/pkg/codec"
	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/validation"
)

func newValidateCmd(a *app) *cobra.Command {
	var file string
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a schema document",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			format := codec.Format("")
			if file != "-" {
				format = codec.FormatForPath(file)
			}
			doc, err := codec.Import(data, format, validation.WithStrictWidgets(strict))
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: invalid\n", file)
				writeIssues(cmd.ErrOrStderr(), err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%s) with %d fields\n", doc.TypeName, doc.TypeCode, len(doc.Fields))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "schema document (- for stdin)")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject unknown widget kinds")
	return cmd
}

// issuesOf lists the validation issues behind err; a parse failure is
// reported as a single issue.
func issuesOf(err error) []schema.Issue {
	var invalid *schema.ValidationError
	if errors.As(err, &invalid) {
		return invalid.Issues
	}
	var rejected *codec.ImportRejectedError
	if errors.As(err, &rejected) && rejected.Cause != nil {
		return []schema.Issue{{Index: -1, Message: rejected.Cause.Error()}}
	}
	if err == nil {
		return nil
	}
	return []schema.Issue{{Index: -1, Message: err.Error()}}
}
