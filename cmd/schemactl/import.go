package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Validate a schema document and save it to the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readSchema(file, cmd.InOrStdin())
			if err != nil {
				writeIssues(cmd.ErrOrStderr(), err)
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if err := st.Save(cmd.Context(), doc); err != nil {
				return err
			}
			a.logger.Info("schemactl: schema imported", "id", doc.ID, "version", doc.SchemaVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", doc.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "schema document (- for stdin)")
	return cmd
}
