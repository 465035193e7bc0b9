package dev

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func waitChange(t *testing.T, changes <-chan Change) Change {
	t.Helper()
	select {
	case c := <-changes:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no change detected")
		return Change{}
	}
}

func startWatcher(t *testing.T, cfg WatcherConfig) <-chan Change {
	t.Helper()
	cfg.Interval = 20 * time.Millisecond
	watcher := NewWatcher(cfg)

	changes := make(chan Change, 10)
	watcher.OnChange(func(c Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go watcher.Start(ctx)

	// Wait for the watches to be added
	time.Sleep(60 * time.Millisecond)
	return changes
}

func TestWatcher_ModifiedPage(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "index.html")
	touch(t, page, "<p>one</p>")

	changes := startWatcher(t, WatcherConfig{Paths: []string{dir}})

	touch(t, page, "<p>one, two</p>")

	c := waitChange(t, changes)
	if c.Path != page {
		t.Errorf("Path = %q, want %q", c.Path, page)
	}
	if c.Type != ChangePage {
		t.Errorf("Type = %v, want %v", c.Type, ChangePage)
	}
}

func TestWatcher_NewAndDeletedFile(t *testing.T) {
	dir := t.TempDir()
	changes := startWatcher(t, WatcherConfig{Paths: []string{dir}})

	asset := filepath.Join(dir, "css", "site.css")
	touch(t, asset, "body{}")

	c := waitChange(t, changes)
	if c.Path != asset || c.Type != ChangeAsset {
		t.Errorf("new file change = %+v", c)
	}

	if err := os.Remove(asset); err != nil {
		t.Fatal(err)
	}
	c = waitChange(t, changes)
	if c.Path != asset {
		t.Errorf("deleted file change = %+v", c)
	}
}

func TestWatcher_Manifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "routes.yaml")
	touch(t, manifest, "routes: []")

	changes := startWatcher(t, WatcherConfig{
		Paths:    []string{filepath.Join(dir, "public"), manifest},
		Manifest: manifest,
	})

	touch(t, manifest, "routes:\n  - path: /\n    event: home\n")

	c := waitChange(t, changes)
	if c.Type != ChangeManifest {
		t.Errorf("Type = %v, want %v", c.Type, ChangeManifest)
	}
}

func TestWatcher_ReportOncePerType(t *testing.T) {
	w := NewWatcher(WatcherConfig{Manifest: "routes.yaml"})

	var got []Change
	w.OnChange(func(c Change) { got = append(got, c) })

	w.report([]Change{
		{Path: "a.html", Type: ChangePage},
		{Path: "b.html", Type: ChangePage},
		{Path: "app.js", Type: ChangeAsset},
		{Path: "routes.yaml", Type: ChangeManifest},
	})

	want := []Change{
		{Path: "routes.yaml", Type: ChangeManifest},
		{Path: "a.html", Type: ChangePage},
		{Path: "app.js", Type: ChangeAsset},
	}
	if len(got) != len(want) {
		t.Fatalf("reported %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("change %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestWatcher_Ignore(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{
		Paths:  []string{"."},
		Ignore: []string{"*.swp", "drafts"},
	})

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join("public", "index.html.swp"), true},
		{filepath.Join("public", "drafts", "post.html"), true},
		{filepath.Join("public", "drafts"), true},
		{filepath.Join("public", "index.html"), false},
		{filepath.Join("public", "mydrafts.html"), false},
	}

	for _, tt := range tests {
		if got := watcher.shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_IgnoresChmodAndOutsidePaths(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "routes.yaml")
	touch(t, manifest, "routes: []")
	page := filepath.Join(dir, "public", "index.html")
	touch(t, page, "<p>one</p>")

	changes := startWatcher(t, WatcherConfig{
		Paths:    []string{manifest},
		Manifest: manifest,
	})

	// A sibling of the manifest is not watched, and a timestamp change is
	// not a content change.
	touch(t, filepath.Join(dir, "notes.txt"), "x")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(manifest, future, future); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-changes:
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(200 * time.Millisecond):
	}

	touch(t, manifest, "routes:\n  - path: /\n    event: home\n")
	if c := waitChange(t, changes); c.Type != ChangeManifest || c.Path != manifest {
		t.Errorf("change = %+v, want manifest", c)
	}
}

func TestClassifyChange(t *testing.T) {
	tests := []struct {
		path string
		want ChangeType
	}{
		{"index.html", ChangePage},
		{"about.HTM", ChangePage},
		{"style.css", ChangeAsset},
		{"app.wasm", ChangeAsset},
		{"routes.yaml", ChangeAsset},
	}

	for _, tt := range tests {
		if got := classifyChange(tt.path); got != tt.want {
			t.Errorf("classifyChange(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	w := NewWatcher(WatcherConfig{Manifest: filepath.Join("site", "routes.yaml")})
	if got := w.classify(filepath.Join("site", "routes.yaml")); got != ChangeManifest {
		t.Errorf("classify(manifest) = %v, want %v", got, ChangeManifest)
	}
}

func TestWatcher_IsRunning(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{Paths: []string{t.TempDir()}})
	if watcher.IsRunning() {
		t.Fatal("IsRunning() = true before Start")
	}

	done := make(chan struct{})
	go func() {
		watcher.Start(context.Background())
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for !watcher.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !watcher.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}

	watcher.Stop()
	<-done
	if watcher.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestReloadServer_Broadcast(t *testing.T) {
	rs := NewReloadServer(quietLogger())
	srv := httptest.NewServer(rs)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for rs.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rs.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", rs.ClientCount())
	}

	if sent := rs.NotifyError("R012: Invalid manifest route"); sent != 1 {
		t.Errorf("NotifyError() reached %d clients, want 1", sent)
	}
	if sent := rs.NotifyReload("public/index.html"); sent != 1 {
		t.Errorf("NotifyReload() reached %d clients, want 1", sent)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got []ReloadMessage
	for range 2 {
		var msg ReloadMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatal(err)
		}
		got = append(got, msg)
	}

	if got[0].Type != ReloadTypeError || got[0].Error != "R012: Invalid manifest route" {
		t.Errorf("first message = %+v", got[0])
	}
	if got[1].Type != ReloadTypeFull || got[1].File != "public/index.html" {
		t.Errorf("second message = %+v", got[1])
	}

	rs.Close()
	if rs.ClientCount() != 0 {
		t.Errorf("ClientCount() after Close = %d, want 0", rs.ClientCount())
	}
}

func TestReloadMessage_JSON(t *testing.T) {
	data, err := json.Marshal(ReloadMessage{Type: ReloadTypeClear})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"clear"}` {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestReloadClientScript(t *testing.T) {
	for _, want := range []string{"WebSocket", ReloadPath, "location.reload", "</script>"} {
		if !strings.Contains(ReloadClientScript, want) {
			t.Errorf("ReloadClientScript does not contain %q", want)
		}
	}
}
