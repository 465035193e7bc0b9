package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navroute/internal/config"
	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/navigation"
)

const starterManifest = `# Routes are tried in order; the first match wins.
# ":name" captures one path segment of word characters.
mode: %s
routes:
  - path: /
    event: home
  - path: /users/:id
    event: user.show
`

const starterIndex = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>%s</title>
</head>
<body>
  <nav>
    <a href="/">Home</a>
    <a href="/users/1">First user</a>
  </nav>
  <main id="app"></main>
</body>
</html>
`

func initCmd() *cobra.Command {
	var (
		mode  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create navroute.json and a starter manifest",
		Long: `Create navroute.json, routes.yaml and public/index.html.

Existing manifest and index files are kept unless --force is given.

Examples:
  navroute init
  navroute init site --mode=hash`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, mode, force)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "history", "Navigation mode: history or hash")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")

	return cmd
}

func runInit(dir, mode string, force bool) error {
	if _, err := navigation.ParseMode(mode); err != nil {
		return err
	}
	if config.Exists(dir) && !force {
		return errors.Newf(errors.CategoryCLI, "%s already exists in %s", config.ConfigFileName, dir).
			WithSuggestion("Use --force to overwrite it")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	cfg := config.New()
	cfg.Name = filepath.Base(abs)

	if err := os.MkdirAll(filepath.Join(dir, cfg.Serve.Root), 0755); err != nil {
		return err
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(dir, cfg.Manifest), fmt.Sprintf(starterManifest, mode)},
		{filepath.Join(dir, cfg.Serve.Root, cfg.Serve.Index), fmt.Sprintf(starterIndex, cfg.Name)},
	}
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil && !force {
			warn("Keeping existing %s", f.path)
			continue
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0644); err != nil {
			return err
		}
		success("Created %s", f.path)
	}

	configPath := filepath.Join(dir, config.ConfigFileName)
	if err := cfg.SaveTo(configPath); err != nil {
		return err
	}
	success("Created %s", configPath)

	fmt.Println()
	info("Next: navroute serve")
	return nil
}
