package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Mavwarf/webshell/internal/config"
	"github.com/Mavwarf/webshell/internal/connectivity"
	"github.com/Mavwarf/webshell/internal/journal"
	"github.com/Mavwarf/webshell/internal/paths"
)

// isolate points the data directory at a fresh temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("APPDATA", dir)
	return paths.DataDir()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "webshell.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "webshell "+version) {
		t.Errorf("version output = %q", out)
	}
}

func TestHostsCmdDefaults(t *testing.T) {
	isolate(t)
	out, err := execute(t, "hosts")
	if err != nil {
		t.Fatal(err)
	}
	want := "accounts.google.com\ngemini.google.com\n"
	if out != want {
		t.Errorf("hosts = %q, want %q", out, want)
	}
}

func TestHostsCmdFromConfig(t *testing.T) {
	p := writeConfig(t, "allowed_hosts:\n  - gemini.google.com\n  - Docs.Example.com\n")
	out, err := execute(t, "hosts", "--config", p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "docs.example.com") || strings.Contains(out, "accounts.google.com") {
		t.Errorf("hosts = %q", out)
	}
}

func TestHostsCmdLong(t *testing.T) {
	isolate(t)
	out, err := execute(t, "hosts", "--long")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("hosts --long = %q, want header and two rows", out)
	}
	if !strings.HasPrefix(lines[0], "HOST") {
		t.Errorf("header = %q", lines[0])
	}
	var appRow string
	for _, l := range lines[1:] {
		if strings.HasPrefix(l, "gemini.google.com") {
			appRow = l
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(appRow), "app") {
		t.Errorf("app host row = %q", appRow)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	p := writeConfig(t, "app_url: ftp://example.com\n")
	if _, err := execute(t, "hosts", "-c", p); err == nil {
		t.Error("invalid config accepted")
	}
	if _, err := execute(t, "hosts", "-c", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing explicit config accepted")
	}
}

func TestJournalCmdOff(t *testing.T) {
	isolate(t)
	_, err := execute(t, "journal")
	if err != errNoJournal {
		t.Errorf("err = %v, want errNoJournal", err)
	}
}

func TestJournalCmdShowsEntries(t *testing.T) {
	dir := isolate(t)
	p := writeConfig(t, "journal: file\n")

	out, err := execute(t, "journal", "-c", p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Journal is empty.") {
		t.Errorf("empty journal output = %q", out)
	}

	store := journal.NewFileStore(filepath.Join(dir, paths.JournalFileName))
	for _, u := range []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"} {
		err := store.Record(journal.Entry{Time: time.Now(), Session: "0123456789abcdef", Kind: journal.KindNavigation, Subject: "external", URL: u})
		if err != nil {
			t.Fatal(err)
		}
	}

	out, err = execute(t, "journal", "-c", p, "-n", "2")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "example.com/1") || !strings.Contains(out, "example.com/3") {
		t.Errorf("journal -n 2 output = %q", out)
	}
	if !strings.Contains(out, "session 01234567") {
		t.Errorf("missing session header: %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("colors written to a non-terminal: %q", out)
	}

	if _, err := execute(t, "journal", "-c", p, "--clear"); err != nil {
		t.Fatal(err)
	}
	out, _ = execute(t, "journal", "-c", p)
	if !strings.Contains(out, "Journal is empty.") {
		t.Errorf("after --clear = %q", out)
	}

	if _, err := execute(t, "journal", "-c", p, "-n", "0"); err == nil {
		t.Error("-n 0 accepted")
	}
}

func TestRenderEntriesColor(t *testing.T) {
	var b bytes.Buffer
	renderEntries(&b, []journal.Entry{{Time: time.Now(), Session: "s", Kind: journal.KindTransition, Subject: "offline"}}, true)
	if !strings.Contains(b.String(), "\033[33m") {
		t.Errorf("offline not highlighted: %q", b.String())
	}
}

func TestTooltip(t *testing.T) {
	if got := tooltip("Gemini", true); got != "Gemini" {
		t.Errorf("online tooltip = %q", got)
	}
	if got := tooltip("Gemini", false); got != "Gemini (offline)" {
		t.Errorf("offline tooltip = %q", got)
	}
	if showHideLabel(true) != "Hide" || showHideLabel(false) != "Show" {
		t.Error("show/hide labels")
	}
}

func TestPngToICO(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	ico := pngToICO(png)
	if len(ico) != 22+len(png) {
		t.Fatalf("len = %d, want %d", len(ico), 22+len(png))
	}
	if binary.LittleEndian.Uint16(ico[2:]) != 1 || binary.LittleEndian.Uint16(ico[4:]) != 1 {
		t.Error("bad ICONDIR header")
	}
	if binary.LittleEndian.Uint32(ico[14:]) != uint32(len(png)) {
		t.Error("bad image size")
	}
	if binary.LittleEndian.Uint32(ico[18:]) != 22 {
		t.Error("bad image offset")
	}
	if !bytes.Equal(ico[22:], png) {
		t.Error("PNG payload not copied")
	}
}

func TestAutostartEntry(t *testing.T) {
	cfg := writeConfig(t, "")
	e, err := autostartEntry(defaultTestConfig(), cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	if e.Exe == "" || !e.Hidden || e.Title != "Gemini" {
		t.Errorf("entry = %+v", e)
	}
	if len(e.Args) != 2 || e.Args[0] != "--config" || !filepath.IsAbs(e.Args[1]) {
		t.Errorf("args = %q", e.Args)
	}

	e, err = autostartEntry(defaultTestConfig(), "", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(e.Args) != 0 || e.Hidden {
		t.Errorf("entry without config = %+v", e)
	}
}

func defaultTestConfig() config.Config { return config.Default() }

func TestOfflineMessage(t *testing.T) {
	cfg := config.Default()
	cfg.Title = "gemini"
	cfg.NotifyMessage = "{Title} cannot reach {host} ({state})"
	got := offlineMessage(cfg, connectivity.Offline)
	want := "Gemini cannot reach gemini.google.com (offline)"
	if got != want {
		t.Errorf("offlineMessage() = %q, want %q", got, want)
	}
}

func TestSilentCmd(t *testing.T) {
	isolate(t)
	out, err := execute(t, "silent")
	if err != nil || !strings.Contains(out, "Notifications are on.") {
		t.Fatalf("silent = %q, %v", out, err)
	}
	if out, err = execute(t, "silent", "45m"); err != nil || !strings.Contains(out, "paused until") {
		t.Fatalf("silent 45m = %q, %v", out, err)
	}
	if out, err = execute(t, "silent"); err != nil || !strings.Contains(out, "paused until") {
		t.Errorf("status after pause = %q, %v", out, err)
	}
	if out, err = execute(t, "silent", "off"); err != nil || !strings.Contains(out, "resumed") {
		t.Errorf("silent off = %q, %v", out, err)
	}
	if _, err = execute(t, "silent", "soon"); err == nil {
		t.Error("invalid duration accepted")
	}
	if _, err = execute(t, "silent", "-5m"); err == nil {
		t.Error("negative duration accepted")
	}
}

func TestBridgeFallbackFollowsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.AllowedHosts = []string{"gemini.google.com", "Docs.Example.com", "accounts.google.com"}
	js, err := bridgeScript(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := `const FALLBACK_HOSTS = ["accounts.google.com","docs.example.com","gemini.google.com"];`
	if !strings.Contains(js, want) {
		t.Errorf("bridge fallback does not match the configured allowlist; want %s", want)
	}
}
