package pattern

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vango-dev/navroute/internal/errors"
)

func TestCompileParams(t *testing.T) {
	tests := []struct {
		template string
		want     []string
	}{
		{"/", []string{}},
		{"/about", []string{}},
		{"/users/:id", []string{"id"}},
		{"/users/:id/posts/:slug", []string{"id", "slug"}},
		{"/:a/:b/:c", []string{"a", "b", "c"}},
		{"/files/:name.:ext", []string{"name", "ext"}},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			p, err := Compile(tt.template)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.template, err)
			}
			if p.ParamCount() != len(tt.want) {
				t.Errorf("ParamCount() = %d, want %d", p.ParamCount(), len(tt.want))
			}
			got := p.Params()
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Params() = %v, want %v", got, tt.want)
			}
			if p.Template() != tt.template {
				t.Errorf("Template() = %q, want %q", p.Template(), tt.template)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		template string
		path     string
		ok       bool
		values   []string
	}{
		{"/", "/", true, []string{}},
		{"/", "", false, nil},
		{"/about", "/about", true, []string{}},
		{"/about", "/about/", false, nil},
		{"/about", "/aboutus", false, nil},
		{"/about", "/x/about", false, nil},
		{"/users/:id", "/users/42", true, []string{"42"}},
		{"/users/:id", "/users/abc_DEF_9", true, []string{"abc_DEF_9"}},
		{"/users/:id", "/users/", false, nil},
		{"/users/:id", "/users/4/2", false, nil},
		{"/users/:id", "/users/4-2", false, nil},
		{"/users/:id", "/users/4.2", false, nil},
		{"/users/:id/posts/:slug", "/users/7/posts/hello", true, []string{"7", "hello"}},
		{"/files/:name.:ext", "/files/readme.md", true, []string{"readme", "md"}},
		{"/files/:name.:ext", "/files/readmeXmd", false, nil},
		{"/a.b", "/a.b", true, []string{}},
		{"/a.b", "/aXb", false, nil},
		{"/search?q", "/search?q", true, []string{}},
		{"/search?q", "/searchq", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.template+" "+tt.path, func(t *testing.T) {
			p := MustCompile(tt.template)
			values, ok := p.Match(tt.path)
			if ok != tt.ok {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			}
			if !ok {
				return
			}
			if strings.Join(values, ",") != strings.Join(tt.values, ",") || len(values) != len(tt.values) {
				t.Errorf("Match(%q) = %v, want %v", tt.path, values, tt.values)
			}
		})
	}
}

func TestMatchParamCountProperty(t *testing.T) {
	for k := 0; k <= 6; k++ {
		var tmpl, path strings.Builder
		for i := 0; i < k; i++ {
			fmt.Fprintf(&tmpl, "/seg%d/:p%d", i, i)
			fmt.Fprintf(&path, "/seg%d/v%d", i, i)
		}
		if k == 0 {
			tmpl.WriteString("/")
			path.WriteString("/")
		}

		p := MustCompile(tmpl.String())
		if p.ParamCount() != k {
			t.Fatalf("k=%d: ParamCount() = %d", k, p.ParamCount())
		}
		values, ok := p.Match(path.String())
		if !ok {
			t.Fatalf("k=%d: %q did not match %q", k, path.String(), tmpl.String())
		}
		if len(values) != k {
			t.Fatalf("k=%d: got %d values", k, len(values))
		}
		for i, name := range p.Params() {
			if name != fmt.Sprintf("p%d", i) || values[i] != fmt.Sprintf("v%d", i) {
				t.Errorf("k=%d: param %d = %s=%s", k, i, name, values[i])
			}
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		template string
		code     string
	}{
		{"/users/:", "R002"},
		{"/users/:/posts", "R002"},
		{"/:id/:id", "R003"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			_, err := Compile(tt.template)
			if err == nil {
				t.Fatalf("Compile(%q) expected error", tt.template)
			}
			if !stderrors.Is(err, errors.New(tt.code)) {
				t.Errorf("Compile(%q) error = %v, want code %s", tt.template, err, tt.code)
			}
		})
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile should panic on an invalid template")
		}
	}()
	MustCompile("/:")
}

func TestBuild(t *testing.T) {
	p := MustCompile("/users/:id/posts/:slug")

	path, err := p.Build(map[string]string{"id": "42", "slug": "hello"})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if path != "/users/42/posts/hello" {
		t.Errorf("Build = %q", path)
	}

	values, ok := p.Match(path)
	if !ok || values[0] != "42" || values[1] != "hello" {
		t.Errorf("Match(Build(v)) = %v, %v", values, ok)
	}

	if _, err := p.Build(map[string]string{"id": "42"}); err == nil {
		t.Error("Build with a missing value should fail")
	}
	if _, err := p.Build(map[string]string{"id": "4/2", "slug": "x"}); !stderrors.Is(err, errors.New("R006")) {
		t.Errorf("Build with a slash value error = %v, want R006", err)
	}

	static := MustCompile("/about")
	if got, err := static.Build(nil); err != nil || got != "/about" {
		t.Errorf("static Build = %q, %v", got, err)
	}
}
