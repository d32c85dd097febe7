package services

import (
	"fmt"
	"sort"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

const (
	reqEigen        = "eigen"
	reqZlib         = "zlib"
	reqLibSPNG      = "libspng"
	reqLibJPEGTurbo = "libjpeg_turbo"
)

var knownRequirements = map[string]bool{
	reqEigen:        true,
	reqZlib:         true,
	reqLibSPNG:      true,
	reqLibJPEGTurbo: true,
}

// Requirements returns the dependencies the package links against.
// Unpinned requirements default to the recipe version.
func Requirements(recipe *entities.Recipe, options entities.Options) ([]entities.Requirement, error) {
	pinned := make([]string, 0, len(recipe.Requires))
	for name := range recipe.Requires {
		pinned = append(pinned, name)
	}
	sort.Strings(pinned)
	for _, name := range pinned {
		if !knownRequirements[name] {
			return nil, &entities.InvalidConfigurationError{
				Setting: "requires." + name,
				Reason:  fmt.Sprintf("recipe %s pins a requirement it does not use", recipe.Name),
			}
		}
	}

	names := []string{reqEigen, reqZlib}
	if options.WithSPNG {
		names = append(names, reqLibSPNG)
	}
	if options.WithJPEGTurbo {
		names = append(names, reqLibJPEGTurbo)
	}

	reqs := make([]entities.Requirement, 0, len(names))
	for _, name := range names {
		version := recipe.Version
		if v := recipe.Requires[name]; v != "" {
			version = v
		}
		reqs = append(reqs, entities.Requirement{Name: name, Version: version})
	}

	return reqs, nil
}
