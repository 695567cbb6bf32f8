package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/codeGROOVE-dev/anifeed/pkg/activity"
	"github.com/codeGROOVE-dev/anifeed/pkg/tzconvert"
)

// resetFlags clears every flag value and input variable used by loadConfig.
func resetFlags(t *testing.T) {
	t.Helper()
	for _, f := range []*string{userIDFlag, languageFlag, maxPostsFlag, readmeFlag, timezoneFlag, dateFormatFlag, textFormatFlag, cacheDir} {
		*f = ""
	}
	*dryRun = false
	*noCache = false
	for _, name := range []string{"USER_ID", "PREFERRED_LANGUAGE", "MAX_POST_COUNT", "README_PATH", "TIMEZONE", "DATE_FORMAT", "TEXT_FORMAT", "CACHE_DIR"} {
		t.Setenv(name, "")
		t.Setenv("INPUT_"+name, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	resetFlags(t)
	*userIDFlag = "42"
	*readmeFlag = "README.md"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.userID != 42 || cfg.maxPosts != 5 {
		t.Errorf("userID, maxPosts = %d, %d", cfg.userID, cfg.maxPosts)
	}
	want := activity.Options{
		Timezone:    "UTC",
		Language:    activity.LanguageRomaji,
		DatePattern: "{D}/{M}/{Y} {h}:{m}",
		Format:      activity.FormatMarkdown,
	}
	if cfg.render != want {
		t.Errorf("render = %+v, want %+v", cfg.render, want)
	}
}

func TestLoadConfigInputs(t *testing.T) {
	resetFlags(t)
	t.Setenv("INPUT_USER_ID", "7")
	t.Setenv("USER_ID", "8")
	t.Setenv("INPUT_PREFERRED_LANGUAGE", "English")
	t.Setenv("MAX_POST_COUNT", "12")
	t.Setenv("INPUT_TIMEZONE", "Europe/Paris")
	t.Setenv("INPUT_TEXT_FORMAT", "html")
	t.Setenv("INPUT_README_PATH", "profile/README.md")

	*dateFormatFlag = "{MW} {Y}"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.userID != 7 {
		t.Errorf("userID = %d, want INPUT_USER_ID to win", cfg.userID)
	}
	if cfg.maxPosts != 12 {
		t.Errorf("maxPosts = %d, want 12", cfg.maxPosts)
	}
	if cfg.render.Language != activity.LanguageEnglish {
		t.Errorf("language = %q", cfg.render.Language)
	}
	if cfg.render.Timezone != "Europe/Paris" || cfg.render.Format != "html" || cfg.render.DatePattern != "{MW} {Y}" {
		t.Errorf("render = %+v", cfg.render)
	}
	if cfg.readmePath != "profile/README.md" {
		t.Errorf("readmePath = %q", cfg.readmePath)
	}
}

func TestLoadConfigFindsReadme(t *testing.T) {
	resetFlags(t)
	root := t.TempDir()
	want := filepath.Join(root, "README.md")
	if err := os.WriteFile(want, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GITHUB_WORKSPACE", root)
	*userIDFlag = "1"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.readmePath != want {
		t.Errorf("readmePath = %q, want %q", cfg.readmePath, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		wantErr error
	}{
		{"missing user id", func() {}, errMissingUserID},
		{"bad language", func() { *userIDFlag = "1"; *languageFlag = "french" }, activity.ErrInvalidLanguage},
		{"bad timezone", func() { *userIDFlag = "1"; *timezoneFlag = "Moon/Base" }, tzconvert.ErrInvalidTimezone},
		{"non-numeric user id", func() { *userIDFlag = "abc" }, nil},
		{"non-numeric post count", func() { *userIDFlag = "1"; *maxPostsFlag = "many" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			*readmeFlag = "README.md"
			tt.setup()

			_, err := loadConfig()
			if err == nil {
				t.Fatal("loadConfig() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("loadConfig() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
