// Package misc keeps build time information.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

var (
	version = "dev"
	githash = "unknown"
	appname = "wmlconv"
)

// GetVersion returns version string set at build time.
func GetVersion() string {
	return version
}

// GetGitHash returns git commit hash set at build time.
func GetGitHash() string {
	return githash
}

// GetAppName returns program name. When running under test binary name is not
// meaningful, so build time name is used instead.
func GetAppName() string {
	if len(appname) > 0 {
		return appname
	}
	return strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))
}
