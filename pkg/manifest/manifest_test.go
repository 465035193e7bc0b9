package manifest

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/dom"
	"github.com/vango-dev/navroute/pkg/navigation"
	"github.com/vango-dev/navroute/pkg/router"
)

const sample = `mode: history
linkSelector: "a.route"
routes:
  - path: /users/:id
    event: user.show
  - path: /
    event: home.show
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type fakeGetter struct {
	objects map[string]string
	calls   []string
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.calls = append(f.calls, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, stderrors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sample), "routes.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if m.Mode != "history" || m.LinkSelector != "a.route" || len(m.Routes) != 2 {
		t.Fatalf("Parse() = %+v", m)
	}
	if m.Routes[0].Path != "/users/:id" || m.Routes[0].Event != "user.show" {
		t.Errorf("route 0 = %+v", m.Routes[0])
	}
	if m.Routes[0].Line() != 4 || m.Routes[1].Line() != 6 {
		t.Errorf("lines = %d, %d", m.Routes[0].Line(), m.Routes[1].Line())
	}
}

func TestParseJSON(t *testing.T) {
	m, err := Parse([]byte(`{"mode":"hash","routes":[{"path":"/a","event":"a"}]}`), "routes.json")
	if err != nil {
		t.Fatal(err)
	}
	if mode, _ := m.NavigationMode(); mode != navigation.ModeHash || len(m.Routes) != 1 {
		t.Errorf("Parse() = %+v", m)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "routes: [\n"},
		{"unknown field", "mode: history\nroutez: []\n"},
		{"wrong type", "routes: yes\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "bad.yaml")
			if !stderrors.Is(err, errors.New("R011")) {
				t.Errorf("Parse() error = %v, want R011", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		data string
		code string
		line int
	}{
		{"valid", sample, "", 0},
		{"default mode", "routes:\n  - path: /\n    event: home\n", "", 0},
		{"bad mode", "mode: pushstate\nroutes:\n  - path: /\n    event: home\n", "R013", 0},
		{"no routes", "mode: hash\n", "R012", 0},
		{"missing path", "routes:\n  - event: home\n", "R012", 2},
		{"missing event", "routes:\n  - path: /\n  - path: /users\n", "R012", 2},
		{"bad pattern", "routes:\n  - path: /\n    event: home\n  - path: /a/:id/:id\n    event: a\n", "R003", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.data)
			m, err := Parse([]byte(tt.data), path)
			if err != nil {
				t.Fatal(err)
			}
			err = m.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !stderrors.Is(err, errors.New(tt.code)) {
				t.Fatalf("Validate() error = %v, want %s", err, tt.code)
			}
			if tt.line == 0 {
				return
			}
			var re *errors.RouterError
			if !stderrors.As(err, &re) || re.Location == nil || re.Location.Line != tt.line {
				t.Errorf("location = %v, want line %d", re.Location, tt.line)
			}
			if len(re.Context) == 0 {
				t.Error("expected source context lines")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, sample)
	m, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Source != path || len(m.Routes) != 2 {
		t.Errorf("Load() = %+v", m)
	}

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	if !stderrors.Is(err, errors.New("R010")) {
		t.Errorf("Load(missing) error = %v, want R010", err)
	}
}

func TestLoadS3(t *testing.T) {
	getter := &fakeGetter{objects: map[string]string{"site/config/routes.yaml": sample}}
	l := &Loader{S3: getter}

	m, err := l.Load(context.Background(), "s3://site/config/routes.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(m.Routes) != 2 || len(getter.calls) != 1 || getter.calls[0] != "site/config/routes.yaml" {
		t.Errorf("Load() = %+v, calls = %v", m, getter.calls)
	}

	if _, err := l.Load(context.Background(), "s3://site/missing.yaml"); !stderrors.Is(err, errors.New("R010")) {
		t.Errorf("missing object error = %v, want R010", err)
	}
	if _, err := (&Loader{}).Load(context.Background(), "s3://site/config/routes.yaml"); !stderrors.Is(err, errors.New("R010")) {
		t.Errorf("no client error = %v, want R010", err)
	}
}

func TestLoadSizeLimit(t *testing.T) {
	l := &Loader{MaxSize: 10}
	if _, err := l.Load(context.Background(), writeFile(t, sample)); !stderrors.Is(err, errors.New("R010")) {
		t.Errorf("Load() error = %v, want R010", err)
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := ParseS3URL("s3://bucket/a/b.yaml")
	if err != nil || bucket != "bucket" || key != "a/b.yaml" {
		t.Errorf("ParseS3URL() = %q, %q, %v", bucket, key, err)
	}
	for _, bad := range []string{"s3://bucket", "s3:///key", "http://bucket/key"} {
		if _, _, err := ParseS3URL(bad); err == nil {
			t.Errorf("ParseS3URL(%q) should fail", bad)
		}
	}
}

func TestNewS3Client(t *testing.T) {
	c := NewS3Client(S3Config{Region: "eu-west-1", Endpoint: "http://localhost:9000", UsePathStyle: true})
	opts := c.Options()
	if opts.Region != "eu-west-1" || !opts.UsePathStyle || aws.ToString(opts.BaseEndpoint) != "http://localhost:9000" {
		t.Errorf("options = region %q, path style %v, endpoint %q", opts.Region, opts.UsePathStyle, aws.ToString(opts.BaseEndpoint))
	}
	var _ ObjectGetter = c
}

func TestNewRouter(t *testing.T) {
	m, err := Parse([]byte(sample), "routes.yaml")
	if err != nil {
		t.Fatal(err)
	}
	doc, err := dom.ParseString(`<a class="route" href="/users/1">one</a><a href="/users/2">two</a>`)
	if err != nil {
		t.Fatal(err)
	}
	win, err := dom.NewWindow(doc, "https://example.com/users/42")
	if err != nil {
		t.Fatal(err)
	}

	var published []string
	r, err := m.NewRouter(router.Config{
		Browser: win,
		Logger:  slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Publish: func(event string, ctx router.Context) (any, error) {
			published = append(published, event+" "+ctx.String())
			return nil, nil
		},
	})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	if r.Mode() != navigation.ModeHistory || len(r.Routes()) != 2 {
		t.Errorf("mode = %v, routes = %d", r.Mode(), len(r.Routes()))
	}
	if _, err := r.Process(); err != nil {
		t.Fatal(err)
	}
	if len(published) != 1 || published[0] != "user.show {id: 42}" {
		t.Errorf("published = %v", published)
	}

	// Only a.route links are managed.
	links, _ := doc.Query("a")
	if links[0].ClickHandlers() != 1 || links[1].ClickHandlers() != 0 {
		t.Errorf("click handlers = %d, %d", links[0].ClickHandlers(), links[1].ClickHandlers())
	}
}

func TestNewRouterWithoutPublisher(t *testing.T) {
	m, _ := Parse([]byte(sample), "routes.yaml")
	doc, _ := dom.ParseString(`<p>empty</p>`)
	win, _ := dom.NewWindow(doc, "https://example.com/")
	_, err := m.NewRouter(router.Config{Browser: win, Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))})
	if !stderrors.Is(err, errors.New("R001")) {
		t.Errorf("NewRouter() error = %v, want R001", err)
	}
}
