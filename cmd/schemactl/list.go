package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			items, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			switch output {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			case "table":
				tw := tablewriter.NewWriter(cmd.OutOrStdout())
				tw.SetHeader([]string{"ID", "Type code", "Name", "Version", "Status", "Fields"})
				tw.SetAutoWrapText(false)
				for _, item := range items {
					tw.Append([]string{
						item.ID, item.TypeCode, item.TypeName, item.SchemaVersion,
						string(item.Status), strconv.Itoa(item.Fields),
					})
				}
				tw.Render()
				return nil
			default:
				return fmt.Errorf("unknown output %q (table|json)", output)
			}
		},
	}
	cmd.Flags().StringVar(&output, "output", "table", "table|json")
	return cmd
}
