package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.HTML.ClassPrefix != "pt-" {
		t.Errorf("ClassPrefix = %q, want pt-", cfg.HTML.ClassPrefix)
	}
	if !cfg.HTML.FabricateClasses {
		t.Error("FabricateClasses should be on by default")
	}
	if cfg.HTML.IncludeComments {
		t.Error("IncludeComments should be off by default")
	}
	if cfg.HTML.Images.Mode != ImageModeEmbed {
		t.Errorf("Images.Mode = %v, want embed", cfg.HTML.Images.Mode)
	}
	if !cfg.Preprocess.AcceptRevisions {
		t.Error("AcceptRevisions should be on by default")
	}
	if !cfg.Preprocess.Simplify.RemoveSmartTags {
		t.Error("RemoveSmartTags should be on by default")
	}
	if !cfg.WML.RasterizeSVG {
		t.Error("RasterizeSVG should be on by default")
	}
	if cfg.Document.OutputNameTemplate != "{{ .Name }}" {
		t.Errorf("OutputNameTemplate was expanded: %q", cfg.Document.OutputNameTemplate)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
html:
  css_class_prefix: "doc-"
  include_comments: true
  images:
    mode: drop
    jpeg_quality_level: 70
wml:
  fix_zip: true
preprocess:
  accept_revisions: false
logging:
  console:
    level: debug
`)
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.HTML.ClassPrefix != "doc-" {
		t.Errorf("ClassPrefix = %q", cfg.HTML.ClassPrefix)
	}
	if !cfg.HTML.IncludeComments {
		t.Error("Expected IncludeComments to be true")
	}
	if cfg.HTML.Images.Mode != ImageModeDrop {
		t.Errorf("Images.Mode = %v, want drop", cfg.HTML.Images.Mode)
	}
	if cfg.HTML.Images.JPEGQuality != 70 {
		t.Errorf("JPEGQuality = %d, want 70", cfg.HTML.Images.JPEGQuality)
	}
	if !cfg.WML.FixZip {
		t.Error("Expected FixZip to be true")
	}
	if cfg.Preprocess.AcceptRevisions {
		t.Error("Expected AcceptRevisions to be false")
	}
	// values absent from file keep template defaults
	if !cfg.Preprocess.SimplifyMarkup {
		t.Error("SimplifyMarkup default lost during merge")
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("console level = %q", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\nhtml:\n  include_comments: true\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"bad version", "version: 2\n"},
		{"bad image mode", "version: 1\nhtml:\n  images:\n    mode: inline\n"},
		{"quality out of range", "version: 1\nhtml:\n  images:\n    jpeg_quality_level: 20\n"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: loud\n"},
		{"empty replace search", "version: 1\npreprocess:\n  replace:\n    - search: \"\"\n      replace: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {}
	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("Prepared config is not valid: %v", err)
	}
	out, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	for _, want := range []string{"css_class_prefix: pt-", "mode: embed", "accept_revisions: true"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("Dump() output missing %q", want)
		}
	}
	// dumped configuration must be loadable again
	if _, err := unmarshalConfig(out, &Config{}, true); err != nil {
		t.Errorf("dumped config does not load: %v", err)
	}
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	_, err := unmarshalConfig([]byte("version: 99\n"), &Config{}, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "validat") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error, got bare error: %v", err)
	}
}

func TestReadAdditionalCSS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.css")
	if err := os.WriteFile(path, []byte("p { color: red; }"), 0644); err != nil {
		t.Fatal(err)
	}
	conf := HTMLConfig{AdditionalCSS: "h1 { margin: 0; }", AdditionalCSSPath: path}
	css, err := conf.ReadAdditionalCSS()
	if err != nil {
		t.Fatalf("ReadAdditionalCSS() error = %v", err)
	}
	if css != "h1 { margin: 0; }\np { color: red; }" {
		t.Errorf("ReadAdditionalCSS() = %q", css)
	}

	conf.AdditionalCSSPath = filepath.Join(dir, "absent.css")
	if _, err := conf.ReadAdditionalCSS(); err == nil {
		t.Error("expected error for absent file")
	}
}

func TestOutputFmt(t *testing.T) {
	tests := []struct {
		in   string
		fmt  OutputFmt
		ext  string
		fail bool
	}{
		{"html", OutputFmtHtml, ".html", false},
		{"docx", OutputFmtDocx, ".docx", false},
		{"epub", OutputFmt(0), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFmt(tt.in)
			if tt.fail {
				if !errors.Is(err, ErrInvalidOutputFmt) {
					t.Fatalf("ParseOutputFmt(%q) error = %v", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.fmt {
				t.Fatalf("ParseOutputFmt(%q) = %v, %v", tt.in, got, err)
			}
			if got.Ext() != tt.ext {
				t.Errorf("Ext() = %q, want %q", got.Ext(), tt.ext)
			}
			text, _ := got.MarshalText()
			if string(text) != tt.in {
				t.Errorf("MarshalText() = %q", text)
			}
		})
	}
}

func TestOutputFmt_Ext_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Ext() should panic for invalid format")
		}
	}()
	OutputFmt(99).Ext()
}
