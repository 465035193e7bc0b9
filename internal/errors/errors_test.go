package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "R001",
			wantMsg: "No publish capability configured",
			wantCat: CategoryConfig,
		},
		{
			name:    "pattern error",
			code:    "R002",
			wantMsg: "Empty parameter name",
			wantCat: CategoryPattern,
		},
		{
			name:    "manifest error",
			code:    "R012",
			wantMsg: "Invalid manifest route",
			wantCat: CategoryManifest,
		},
		{
			name:    "unknown error code",
			code:    "R999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestRouterError_Error(t *testing.T) {
	got := New("R001").Error()
	want := "R001: No publish capability configured"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	got = New("R001").WithDetail(`route "/x"`).Error()
	want = `R001: No publish capability configured (route "/x")`
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err2 := &RouterError{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}
}

func TestRouterError_Is(t *testing.T) {
	err := New("R001").WithDetail("some route")

	if !stderrors.Is(err, New("R001")) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New("R002")) {
		t.Error("errors.Is should not match a different code")
	}
	if stderrors.Is(err, &RouterError{Message: "No publish capability configured"}) {
		t.Error("errors.Is should not match a code-less error")
	}

	outer := New("R010").Wrap(New("R011"))
	if !stderrors.Is(outer, New("R011")) {
		t.Error("errors.Is should walk wrapped errors")
	}
}

func TestRouterError_Wrap(t *testing.T) {
	inner := stderrors.New("connection refused")
	err := New("R020").Wrap(inner)

	if !stderrors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !strings.HasSuffix(err.Error(), ": connection refused") {
		t.Errorf("Error() = %q, want cause suffix", err.Error())
	}
}

func TestRouterError_WithLocation(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "routes.yaml")
	content := `routes:
  - path: /users/:id
    event: user.show
  - path: /posts
  - path: /about
    event: about
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("R012").WithLocation(tmpFile, 4, 5)
	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.String() != tmpFile+":4:5" {
		t.Errorf("Location = %q", err.Location.String())
	}
	if len(err.Context) == 0 {
		t.Error("Context should not be empty")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "R010") != nil {
		t.Error("FromError(nil) should be nil")
	}

	re := New("R011")
	if FromError(re, "R010") != re {
		t.Error("FromError should pass RouterError through")
	}

	wrapped := FromError(stderrors.New("boom"), "R010")
	if wrapped.Code != "R010" || wrapped.Wrapped == nil {
		t.Errorf("FromError = %+v", wrapped)
	}

	if FromError(fmt.Errorf("reload: %w", re), "R010") != re {
		t.Error("FromError should find a RouterError in the chain")
	}
}

func TestPrintError(t *testing.T) {
	SetColors(false)
	defer SetColors(true)

	tests := []struct {
		name   string
		err    error
		asJSON bool
		want   string
	}{
		{"text", New("R003"), false, "ERROR R003: Duplicate parameter name"},
		{"text plain", stderrors.New("boom"), false, "ERROR: boom"},
		{"json", New("R003"), true, `"code":"R003"`},
		{"json plain", stderrors.New("boom"), true, `"category":"cli","message":"boom"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			PrintError(&buf, tt.err, tt.asJSON)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("PrintError() = %q, want it to contain %q", buf.String(), tt.want)
			}
			if strings.Contains(buf.String(), "\033[") {
				t.Errorf("PrintError() wrote colors with colors off: %q", buf.String())
			}
		})
	}
}

func TestGetAllCodesSorted(t *testing.T) {
	codes := GetAllCodes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
	if _, ok := GetTemplate("R999"); ok {
		t.Error("GetTemplate(R999) found a template")
	}
}

func TestFormat(t *testing.T) {
	SetColors(false)
	defer SetColors(true)

	err := New("R001").
		WithDetail(`route "/users/:id" targets event "user.show"`).
		WithSuggestion("Set router.Config.Publish")

	out := err.Format()
	for _, want := range []string{
		"ERROR R001: No publish capability configured",
		`route "/users/:id" targets event "user.show"`,
		"Hint: Set router.Config.Publish",
		"Learn more: https://navroute.dev/docs/errors/R001",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCompactAndJSON(t *testing.T) {
	err := New("R003")
	if got := err.FormatCompact(); got != "R003: Duplicate parameter name" {
		t.Errorf("FormatCompact() = %q", got)
	}

	js := err.FormatJSON()
	if !strings.Contains(js, `"code":"R003"`) || !strings.Contains(js, `"category":"pattern"`) {
		t.Errorf("FormatJSON() = %s", js)
	}
}

func TestRegistryComplete(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%q) missing", code)
		}
		if tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template", code)
		}
		if !strings.HasSuffix(tmpl.DocURL, "/"+code) {
			t.Errorf("code %s DocURL = %q", code, tmpl.DocURL)
		}
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("define: %w", New("R001"))
	if got := CodeOf(wrapped); got != "R001" {
		t.Errorf("CodeOf(wrapped) = %q", got)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q", got)
	}
}

func TestFormatContextLineNumbers(t *testing.T) {
	SetColors(false)
	defer SetColors(true)

	tmpFile := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(tmpFile, []byte("routes:\n  - path: /a/:\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("R002").WithLocation(tmpFile, 1, 0)
	if len(err.Context) != 2 {
		t.Fatalf("Context = %q, want 2 lines", err.Context)
	}

	out := err.Format()
	for _, want := range []string{"→    1 │ routes:", "       2 │   - path: /a/:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCompactDetail(t *testing.T) {
	err := New("R012").WithDetail(`route "/x" has no event`)
	if got := err.FormatCompact(); got != `R012: Invalid manifest route (route "/x" has no event)` {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFormatJSONEscapes(t *testing.T) {
	err := New("R011").WithDetail("bad \x00 byte").Wrap(fmt.Errorf("line <2>"))
	js := err.FormatJSON()
	if !strings.Contains(js, `"detail":"bad \u0000 byte"`) {
		t.Errorf("FormatJSON() = %s", js)
	}
	if !strings.Contains(js, `"cause":"line \u003c2\u003e"`) {
		t.Errorf("FormatJSON() = %s", js)
	}
}
