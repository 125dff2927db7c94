package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-endpointschema/pkg/codec"
	"github.com/goliatone/go-endpointschema/pkg/openapi"
)

const formatOpenAPI = "openapi"

func newExportCmd(a *app) *cobra.Command {
	var id, format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored schema as YAML, JSON, or an OpenAPI document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(id) == "" {
				return fmt.Errorf("--id is required")
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			doc, err := st.Load(cmd.Context(), id)
			if err != nil {
				return err
			}

			var data []byte
			switch strings.ToLower(strings.TrimSpace(format)) {
			case "":
				data, err = codec.Export(doc, a.format())
			case formatOpenAPI:
				data, err = openapi.Marshal(doc)
			default:
				parsed, parseErr := codec.ParseFormat(format)
				if parseErr != nil {
					return parseErr
				}
				data, err = codec.Export(doc, parsed)
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "schema written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "schema id")
	cmd.Flags().StringVar(&format, "format", "", "yaml|json|openapi (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
