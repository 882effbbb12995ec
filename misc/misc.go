// Package misc has utility functions used across the program which do not
// have a better home.
package misc

import (
	"runtime/debug"
	"strings"
)

const appName = "msc"

// GetAppName returns name of the program.
func GetAppName() string {
	return appName
}

// GetVersion returns program version recorded by the module system.
func GetVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		if len(bi.Main.Version) > 0 && bi.Main.Version != "(devel)" {
			return bi.Main.Version
		}
	}
	return "development"
}

// GetGitHash returns git revision the program was built from.
func GetGitHash() string {
	var revision, modified string
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				revision = s.Value
			case "vcs.modified":
				if s.Value == "true" {
					modified = "*"
				}
			}
		}
	}
	if len(revision) == 0 {
		return "unknown"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	return strings.Join([]string{revision, modified}, "")
}
