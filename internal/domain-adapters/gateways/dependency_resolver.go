package gateways

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

// DependencyResolver locates requirements installed under <root>/<name>/<version>
type DependencyResolver struct {
	root string
}

// NewDependencyResolver creates a resolver rooted at the deps directory
func NewDependencyResolver(root string) *DependencyResolver {
	return &DependencyResolver{root: root}
}

// Resolve maps every requirement to its install prefix.
// All missing requirements are reported together.
func (r *DependencyResolver) Resolve(reqs []entities.Requirement) ([]entities.ResolvedDependency, error) {
	resolved := make([]entities.ResolvedDependency, 0, len(reqs))
	var missing []string

	for _, req := range reqs {
		prefix, err := filepath.Abs(filepath.Join(r.root, req.Name, req.Version))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", req.Reference(), err)
		}
		info, err := os.Stat(prefix)
		if err != nil || !info.IsDir() {
			missing = append(missing, req.Reference())
			continue
		}
		resolved = append(resolved, entities.ResolvedDependency{Requirement: req, Prefix: prefix})
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w under %s: %s", entities.ErrDependencyMissing, r.root, strings.Join(missing, ", "))
	}
	return resolved, nil
}
