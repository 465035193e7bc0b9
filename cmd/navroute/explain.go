package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navroute/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe an error code",
		Long: `Describe an error code such as R003, or list every code when none
is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, code := range errors.GetAllCodes() {
					tmpl, _ := errors.GetTemplate(code)
					fmt.Fprintf(out, "%s  %-10s %s\n", code, tmpl.Category, tmpl.Message)
				}
				return nil
			}

			code := args[0]
			tmpl, ok := errors.GetTemplate(code)
			if !ok {
				return errors.Newf(errors.CategoryCLI, "unknown error code %s", code).
					WithSuggestion("Run 'navroute explain' to list the codes")
			}
			fmt.Fprintf(out, "%s: %s\n\n", code, tmpl.Message)
			fmt.Fprintf(out, "  Category:   %s\n", tmpl.Category)
			if tmpl.Detail != "" {
				fmt.Fprintf(out, "  Detail:     %s\n", tmpl.Detail)
			}
			fmt.Fprintf(out, "  Learn more: %s\n", tmpl.DocURL)
			return nil
		},
	}
}
