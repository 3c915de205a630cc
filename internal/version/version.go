package version

// Build metadata, injected with -ldflags at release time. The defaults
// identify a local development build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = ""
)
