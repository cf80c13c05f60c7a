// Package version holds the release version reported by the server and CLIs.
package version

// Version is the current release.
const Version = "v0.1.0"
