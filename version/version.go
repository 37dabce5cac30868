package version

import (
	"runtime"
	"runtime/debug"
	"strconv"
)

// Populated at build time via -ldflags, e.g.
// -X recycling-helper/version.BuildVersion=1.2.0
var (
	BuildVersion = "dev"
	GitSHA       = ""
	BuildTime    = ""
)

type Info struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	Model       string `json:"model,omitempty"`
	GitSHA      string `json:"git_sha,omitempty"`
	BuildTime   string `json:"build_time,omitempty"`
	VCSModified *bool  `json:"vcs_modified,omitempty"`
	GoVersion   string `json:"go_version"`
}

// Get reports build information, falling back to the VCS stamp embedded by
// the Go toolchain when the ldflags were not set.
func Get(service, model string) Info {
	info := Info{
		Service:   service,
		Version:   BuildVersion,
		Model:     model,
		GitSHA:    GitSHA,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitSHA == "" {
				info.GitSHA = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			if b, err := strconv.ParseBool(s.Value); err == nil && info.VCSModified == nil {
				info.VCSModified = &b
			}
		}
	}
	return info
}
