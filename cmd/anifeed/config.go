package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/codeGROOVE-dev/anifeed/pkg/activity"
	"github.com/codeGROOVE-dev/anifeed/pkg/constants"
	"github.com/codeGROOVE-dev/anifeed/pkg/readme"
	"github.com/codeGROOVE-dev/anifeed/pkg/tzconvert"
)

var errMissingUserID = errors.New("user id is required (-user-id or USER_ID)")

// config is the validated run configuration.
type config struct {
	readmePath string
	cacheDir   string
	render     activity.Options
	userID     int
	maxPosts   int
	noCache    bool
	dryRun     bool
}

// input reads a GitHub Actions input (INPUT_<NAME>), falling back to <NAME>.
func input(name string) string {
	if v := strings.TrimSpace(os.Getenv("INPUT_" + name)); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(name))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// loadConfig merges flags, inputs and defaults, then validates the result.
// Language and timezone are checked here so that bad values fail before any
// network traffic.
func loadConfig() (*config, error) {
	cfg := &config{
		cacheDir: firstNonEmpty(*cacheDir, input("CACHE_DIR")),
		noCache:  *noCache,
		dryRun:   *dryRun,
	}

	userID := firstNonEmpty(*userIDFlag, input("USER_ID"))
	if userID == "" {
		return nil, errMissingUserID
	}
	id, err := strconv.Atoi(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	cfg.userID = id

	maxPosts := firstNonEmpty(*maxPostsFlag, input("MAX_POST_COUNT"), strconv.Itoa(constants.DefaultPostCount))
	if cfg.maxPosts, err = strconv.Atoi(maxPosts); err != nil {
		return nil, fmt.Errorf("invalid max post count %q: %w", maxPosts, err)
	}

	lang, err := activity.ParseLanguage(firstNonEmpty(*languageFlag, input("PREFERRED_LANGUAGE"), constants.DefaultLanguage))
	if err != nil {
		return nil, err
	}

	timezone := firstNonEmpty(*timezoneFlag, input("TIMEZONE"), constants.DefaultTimezone)
	if _, err := tzconvert.Load(timezone); err != nil {
		return nil, err
	}

	cfg.render = activity.Options{
		Timezone:    timezone,
		Language:    lang,
		DatePattern: firstNonEmpty(*dateFormatFlag, input("DATE_FORMAT"), constants.DefaultDatePattern),
		Format:      activity.TextFormat(firstNonEmpty(*textFormatFlag, input("TEXT_FORMAT"), constants.DefaultTextFormat)),
	}

	cfg.readmePath = firstNonEmpty(*readmeFlag, input("README_PATH"))
	if cfg.readmePath == "" && !cfg.dryRun {
		root := firstNonEmpty(os.Getenv("GITHUB_WORKSPACE"), ".")
		if cfg.readmePath, err = readme.Find(root); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
