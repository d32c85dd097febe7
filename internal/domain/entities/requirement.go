package entities

import "fmt"

// Requirement is a dependency name/version pair declared by the recipe
type Requirement struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Reference returns the name/version form of the requirement
func (r Requirement) Reference() string {
	return fmt.Sprintf("%s/%s", r.Name, r.Version)
}

// ResolvedDependency is a requirement located on disk
type ResolvedDependency struct {
	Requirement
	Prefix string `json:"prefix"`
}
