// Package entities defines core domain models and data structures.
package entities

// Artifact represents a packaged build output
type Artifact struct {
	Name     string
	Version  string
	Platform string
	Path     string
	Type     string // "directory", "archive"
}

// PackageFiles groups a package archive with the sidecar files found next to it
type PackageFiles struct {
	Archive  string
	Sidecars []string
}
