package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navroute/internal/config"
	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/dom"
	"github.com/vango-dev/navroute/pkg/manifest"
	"github.com/vango-dev/navroute/pkg/navigation"
	"github.com/vango-dev/navroute/pkg/router"
)

func matchCmd() *cobra.Command {
	var (
		source  string
		asJSON  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "match <path>",
		Short: "Show the event a path dispatches",
		Long: `Load the manifest, open the path in an in-memory browser and
print the route, event and parameters the router dispatches.

The manifest defaults to the one named in navroute.json, or
routes.yaml when there is no project.

Examples:
  navroute match /users/42
  navroute match /posts/7/hello --manifest=s3://site/routes.yaml
  navroute match /users/42 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runMatch(ctx, cmd.OutOrStdout(), source, args[0], asJSON)
		},
	}

	cmd.Flags().StringVarP(&source, "manifest", "m", "", "Manifest file or s3:// URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the match as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for loading the manifest")

	return cmd
}

// matchResult is what the match command prints.
type matchResult struct {
	Path   string            `json:"path"`
	Mode   string            `json:"mode"`
	Route  string            `json:"route"`
	Event  string            `json:"event"`
	Params map[string]string `json:"params"`
}

// dispatchRecorder keeps the last dispatched route.
type dispatchRecorder struct {
	router.NopObserver
	route *router.Route
	ctx   router.Context
}

func (d *dispatchRecorder) Dispatched(route *router.Route, ctx router.Context, _ time.Duration, _ error) {
	d.route = route
	d.ctx = ctx
}

func runMatch(ctx context.Context, w io.Writer, source, path string, asJSON bool) error {
	m, err := loadManifest(ctx, source)
	if err != nil {
		return err
	}
	mode, err := m.NavigationMode()
	if err != nil {
		return err
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	rawURL := "http://localhost" + path
	if mode == navigation.ModeHash {
		rawURL = "http://localhost/#" + path
	}

	doc, err := dom.ParseString("<html><body></body></html>")
	if err != nil {
		return err
	}
	win, err := dom.NewWindow(doc, rawURL)
	if err != nil {
		return err
	}

	rec := &dispatchRecorder{}
	rt, err := m.NewRouter(router.Config{
		Browser:   win,
		Logger:    slog.Default(),
		Observers: []router.Observer{rec},
		Publish: func(event string, ctx router.Context) (any, error) {
			return event, nil
		},
	})
	if err != nil {
		return err
	}
	if _, err := rt.Process(); err != nil {
		return err
	}

	if rec.route == nil {
		return errors.Newf(errors.CategoryCLI, "no route matches %s", path).
			WithSuggestion(fmt.Sprintf("Add a route for %s to %s", path, m.Source))
	}

	event, _ := rec.route.EventName()
	result := matchResult{
		Path:   path,
		Mode:   mode.String(),
		Route:  rec.route.Path(),
		Event:  event,
		Params: rec.ctx.Map(),
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(w, "route   %s\n", result.Route)
	fmt.Fprintf(w, "event   %s\n", result.Event)
	fmt.Fprintf(w, "params  %s\n", rec.ctx)
	fmt.Fprintf(w, "mode    %s\n", result.Mode)
	return nil
}

// loadManifest reads source, or the project's manifest when source is
// empty. s3:// sources use the project's S3 settings.
func loadManifest(ctx context.Context, source string) (*manifest.Manifest, error) {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		var re *errors.RouterError
		if !stderrors.As(err, &re) || re.Code != "R031" {
			return nil, err
		}
		cfg = nil
	}

	if source == "" {
		source = "routes.yaml"
		if cfg != nil {
			source = cfg.ManifestSource()
		}
	}

	loader := &manifest.Loader{}
	if strings.HasPrefix(source, "s3://") {
		var s3cfg manifest.S3Config
		if cfg != nil {
			s3cfg = manifest.S3Config{
				Region:       cfg.S3.Region,
				Endpoint:     cfg.S3.Endpoint,
				UsePathStyle: cfg.S3.UsePathStyle,
			}
		}
		loader.S3 = manifest.NewS3Client(s3cfg)
	}
	return loader.Load(ctx, source)
}
