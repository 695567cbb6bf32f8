// Package main implements the anifeed CLI, which writes recent AniList
// activity into a profile README.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/codeGROOVE-dev/anifeed/pkg/activity"
	"github.com/codeGROOVE-dev/anifeed/pkg/anilist"
	"github.com/codeGROOVE-dev/anifeed/pkg/constants"
	"github.com/codeGROOVE-dev/anifeed/pkg/httpcache"
	"github.com/codeGROOVE-dev/anifeed/pkg/readme"
)

var (
	userIDFlag     = flag.String("user-id", "", "AniList user id (or set USER_ID)")
	languageFlag   = flag.String("language", "", "Preferred title language: romaji, english or native (or set PREFERRED_LANGUAGE)")
	maxPostsFlag   = flag.String("max-posts", "", "Number of activities to show, 1-50 (or set MAX_POST_COUNT)")
	readmeFlag     = flag.String("readme", "", "README to update (or set README_PATH; default: search the workspace)")
	timezoneFlag   = flag.String("timezone", "", "IANA timezone for dates (or set TIMEZONE)")
	dateFormatFlag = flag.String("date-format", "", "Date pattern using {h} {m} {D} {M} {MW} {Y} (or set DATE_FORMAT)")
	textFormatFlag = flag.String("text-format", "", "md for Markdown, anything else for HTML (or set TEXT_FORMAT)")
	cacheDir       = flag.String("cache-dir", "", "Cache AniList responses in this directory (or set CACHE_DIR)")
	noCache        = flag.Bool("no-cache", false, "Disable caching")
	dryRun         = flag.Bool("dry-run", false, "Print the activity block instead of updating the README")
	verbose        = flag.Bool("verbose", false, "Enable verbose logging")
	version        = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("anifeed CLI v0.3.0")
		return
	}

	// Configure logging
	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to load .env", "error", err)
	}

	if err := run(logger); err != nil {
		logger.Error("update failed", "error", err)
		color.New(color.FgRed).Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded",
		"user_id", cfg.userID,
		"max_posts", cfg.maxPosts,
		"language", cfg.render.Language,
		"timezone", cfg.render.Timezone,
		"date_layout", activity.CompilePattern(cfg.render.DatePattern).Layout(),
		"text_format", cfg.render.Format,
		"readme", cfg.readmePath)

	ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout)
	defer cancel()

	var cache *httpcache.Cache
	if !cfg.noCache && cfg.cacheDir != "" {
		cache, err = httpcache.New(cfg.cacheDir, constants.CacheTTL, logger)
		if err != nil {
			// Cache is optional, continue without it
			logger.Warn("cache initialization failed", "error", err, "cache_dir", cfg.cacheDir)
			cache = nil
		}
	}
	if cache != nil {
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Error("failed to save cache", "error", err)
			}
		}()
	}

	cached := httpcache.NewClient(cache, &http.Client{Timeout: constants.RequestTimeout}, logger)
	client := anilist.NewClient(logger, anilist.WithHTTPDo(cached.Do))

	raws, err := client.FetchActivities(ctx, cfg.userID, cfg.maxPosts)
	if err != nil {
		return fmt.Errorf("fetching activity: %w", err)
	}

	block, err := activity.Block(raws, cfg.render)
	if err != nil {
		return fmt.Errorf("rendering activity: %w", err)
	}

	if cfg.dryRun {
		printPreview(logger, block, cfg.render.Format)
		return nil
	}

	changed, err := readme.Update(cfg.readmePath, block)
	if err != nil {
		return fmt.Errorf("updating readme: %w", err)
	}

	if changed {
		color.New(color.FgGreen).Printf("✓ Updated %s with %d activities\n", cfg.readmePath, len(raws))
	} else {
		color.New(color.FgYellow).Printf("• %s is already up to date\n", cfg.readmePath)
	}
	return nil
}

// printPreview writes the block to stdout. HTML blocks are also shown as
// Markdown, which reads better in a terminal.
func printPreview(logger *slog.Logger, block string, format activity.TextFormat) {
	header := color.New(color.FgCyan, color.Bold)
	header.Println("Activity block")
	fmt.Println(strings.Repeat("─", 50))
	fmt.Println(block)

	if format == activity.FormatMarkdown || block == "" {
		return
	}

	fmt.Println()
	header.Println("Preview")
	fmt.Println(strings.Repeat("─", 50))
	for _, line := range strings.Split(block, "\n") {
		item := strings.TrimPrefix(line, "-   ")
		converted, err := md.ConvertString(item)
		if err != nil {
			logger.Debug("preview conversion failed", "error", err)
			converted = item
		}
		fmt.Println("- " + strings.TrimSpace(converted))
	}
}
