package entities

// Recipe represents the packaging recipe loaded from YAML
type Recipe struct {
	Name        string
	Version     string
	Description string
	License     string
	Homepage    string

	// FilePath is the recipe file the entity was parsed from
	FilePath string

	Source    RecipeSource
	Options   map[string]bool   // option defaults overriding DefaultOptions
	Requires  map[string]string // requirement name -> pinned version
	Variables map[string]string // extra build-system variables
	Build     RecipeBuildStep
}

// RecipeSource locates the library sources exported before the build
type RecipeSource struct {
	Path        string // directory or .tar.gz/.tar.xz archive with the library sources
	ContribPath string // defaults to <Path>/../opencv_contrib
}

// RecipeBuildStep represents the build stage configuration
type RecipeBuildStep struct {
	TimeoutMinutes int
	PreBuild       string
	PostInstall    string
}

// ResolveOptions applies the recipe's option defaults on top of DefaultOptions
func (r *Recipe) ResolveOptions() (Options, error) {
	opts := DefaultOptions()
	for name, value := range r.Options {
		if err := opts.Set(name, value); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// HookKind names a recipe hook
type HookKind string

const (
	// HookPreBuild runs in the source folder before configure
	HookPreBuild HookKind = "pre_build"
	// HookPostInstall runs in the package folder after install
	HookPostInstall HookKind = "post_install"
)
