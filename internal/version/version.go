package version

import (
	"fmt"
	"strings"
)

// Build metadata, injected with -ldflags "-X github.com/go-authgate/mailbridge/internal/version.Version=..."
var (
	App       = "MailBridge"
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	BuildOS   string
	BuildArch string
)

// String returns a one-line description such as "MailBridge v1.2.0 (abc1234)"
func String() string {
	s := App + " " + versionOrDev()
	if commit := shortCommit(); commit != "" {
		s += " (" + commit + ")"
	}
	return s
}

// PrintVersion prints the full build information
func PrintVersion() {
	var b strings.Builder
	fmt.Fprintf(&b, "%s version %s\n", App, versionOrDev())
	lines := []struct{ label, value string }{
		{"Git commit", shortCommit()},
		{"Build time", BuildTime},
		{"Go version", GoVersion},
	}
	for _, l := range lines {
		if l.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", l.label, l.value)
		}
	}
	if BuildOS != "" && BuildArch != "" {
		fmt.Fprintf(&b, "Built for: %s/%s\n", BuildOS, BuildArch)
	}
	fmt.Print(b.String())
}

func shortCommit() string {
	if len(GitCommit) > 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

func versionOrDev() string {
	if Version != "" {
		return Version
	}
	return "dev"
}
