package main

import (
	"bytes"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/dom"
	"github.com/vango-dev/navroute/pkg/navigation"
)

func hashifyCmd() *cobra.Command {
	var (
		output   string
		selector string
	)

	cmd := &cobra.Command{
		Use:   "hashify <file.html>",
		Short: "Rewrite links in an HTML file for hash mode",
		Long: `Rewrite every router-managed link of an HTML document to its
fragment form ("/users/42" becomes "/#/users/42"), the same way the
router does in the browser in hash mode.

The result is written to stdout unless --output is given.

Examples:
  navroute hashify public/index.html
  navroute hashify page.html -o dist/page.html --selector="a.route"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHashify(cmd.OutOrStdout(), args[0], output, selector)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file")
	cmd.Flags().StringVar(&selector, "selector", "", "Link selector (default: router default)")

	return cmd
}

func runHashify(w io.Writer, input, output, selector string) error {
	f, err := os.Open(input)
	if err != nil {
		return errors.New("R032").WithDetailf("cannot open %s", input).Wrap(err)
	}
	doc, err := dom.Parse(f)
	f.Close()
	if err != nil {
		return errors.New("R032").WithDetailf("cannot parse %s", input).Wrap(err)
	}

	win, err := dom.NewWindow(doc, "http://localhost/")
	if err != nil {
		return err
	}
	if err := navigation.NewHash(win, selector).UpdateLinks(func() {}); err != nil {
		return err
	}

	if output == "" {
		return doc.Render(w)
	}
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return err
	}
	return os.WriteFile(output, buf.Bytes(), 0644)
}
