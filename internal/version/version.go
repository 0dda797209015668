// Package version carries the build version, set with
// -ldflags "-X evt/internal/version.Version=...".
package version

var Version = "dev"
