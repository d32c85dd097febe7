package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ochairo/cvpack/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/cvpack/internal/domain-orchestrators"
	"github.com/ochairo/cvpack/internal/domain/entities"
	"github.com/ochairo/cvpack/internal/domain/interfaces"
	"github.com/ochairo/cvpack/internal/domain/services"
)

const defaultRecipe = "opencv"

// targetFlags select the recipe, profile and overrides shared by most commands
type targetFlags struct {
	profile  string
	settings []string
	options  []string
	conf     []string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "profile name or .toml path (default: host settings)")
	cmd.Flags().StringArrayVarP(&f.settings, "setting", "s", nil, "override a setting, e.g. -s os.api_level=24")
	cmd.Flags().StringArrayVarP(&f.options, "option", "o", nil, "override an option, e.g. -o shared=true")
	cmd.Flags().StringArrayVarP(&f.conf, "conf", "c", nil, "set a tool location, e.g. -c android_ndk=/opt/android-ndk")
}

// recipeArg returns the positional recipe name, defaulting to opencv
func recipeArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultRecipe
}

// parseKeyValues turns key=value flags into a map. Later values win.
func parseKeyValues(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &entities.InvalidConfigurationError{Setting: pair, Reason: "expected key=value"}
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// hostSettings describes the machine cvpack runs on
func hostSettings() map[string]string {
	osMap := map[string]string{
		"linux":   entities.OSLinux,
		"darwin":  entities.OSMacos,
		"windows": entities.OSWindows,
	}
	archMap := map[string]string{
		"amd64": "x86_64",
		"arm64": "armv8",
		"386":   "x86",
		"arm":   "armv7",
	}
	compilerMap := map[string]string{
		"linux":   "gcc",
		"darwin":  "apple-clang",
		"windows": entities.CompilerMSVC,
	}

	settings := map[string]string{}
	if hostOS, ok := osMap[runtime.GOOS]; ok {
		settings["os"] = hostOS
		settings["compiler"] = compilerMap[runtime.GOOS]
	}
	arch := archMap[runtime.GOARCH]
	if arch == "" {
		arch = runtime.GOARCH
	}
	settings["arch"] = arch
	return settings
}

// loadProfile reads the selected profile and applies -s/-o overrides.
// Without --profile the host settings seed the overrides.
func (a *app) loadProfile(ctx context.Context, flags targetFlags) (*entities.Profile, error) {
	settings, err := parseKeyValues(flags.settings)
	if err != nil {
		return nil, err
	}
	options, err := parseKeyValues(flags.options)
	if err != nil {
		return nil, err
	}
	conf, err := parseKeyValues(flags.conf)
	if err != nil {
		return nil, err
	}

	if flags.profile == "" {
		host := hostSettings()
		for k, v := range settings {
			host[k] = v
		}
		settings = host
	}

	profile, err := a.profiles.LoadProfile(ctx, flags.profile, entities.ProfileOverrides{
		Settings: settings,
		Options:  options,
		Conf:     conf,
	})
	if err != nil {
		return nil, err
	}
	confFromEnv(&profile.Conf, os.Getenv)
	return profile, nil
}

// confFromEnv fills tool roots the SDK installers export when the profile leaves them empty
func confFromEnv(conf *entities.Conf, getenv func(string) string) {
	if conf.AndroidNDK == "" {
		conf.AndroidNDK = getenv("ANDROID_NDK_ROOT")
	}
	if conf.Emsdk == "" {
		conf.Emsdk = getenv("EMSDK")
	}
}

// newBuildOrchestrator wires the build workflow from configuration
func (a *app) newBuildOrchestrator(sign bool, hookOutput io.Writer) (*orchestrators.BuildOrchestrator, error) {
	format, err := gateways.ParseArchiveFormat(a.cfg.Archive.Format)
	if err != nil {
		return nil, err
	}

	executor := gateways.NewScriptExecutor(a.logger)
	cmake := gateways.NewCMake(executor, gateways.CMakeConfig{
		Binary:    a.cfg.CMake.Binary,
		Generator: a.cfg.CMake.Generator,
		Jobs:      a.cfg.CMake.Jobs,
		Timeout:   time.Duration(a.cfg.CMake.TimeoutMinutes) * time.Minute,
		Output:    hookOutput,
	}, a.logger)

	deps := orchestrators.BuildOrchestratorDeps{
		Recipes:    a.recipes,
		Resolver:   gateways.NewDependencyResolver(a.cfg.DepsDir),
		Exporter:   gateways.NewSourceExporter(a.logger),
		Generators: gateways.NewToolchainWriter(a.cfg.CMake.Generator),
		BuildSys:   cmake,
		Hooks:      executor,
		Packager:   gateways.NewPackager(format, a.logger),
		Security:   services.NewSecurityArtifactsService(a.logger),
	}

	if sign {
		if a.cfg.Signing.KeyFile == "" {
			return nil, fmt.Errorf("--sign requires signing.key_file in the config or CVPACK_SIGNING_KEY_FILE")
		}
		signer, err := gateways.NewGPGSigner(a.cfg.Signing.KeyFile, a.cfg.Signing.Passphrase)
		if err != nil {
			return nil, err
		}
		a.logger.Info("signing enabled", interfaces.F("fingerprint", signer.Fingerprint()))
		deps.Signer = signer
	}

	return orchestrators.NewBuildOrchestrator(deps, orchestrators.BuildOrchestratorConfig{
		BuildRoot:         a.cfg.BuildRoot,
		OutputDir:         a.cfg.OutputDir,
		SecurityArtifacts: a.cfg.Security.Artifacts,
		HookOutput:        hookOutput,
	}, a.logger), nil
}

// plan derives the configuration without touching the filesystem
func (a *app) plan(ctx context.Context, recipe string, flags targetFlags) (*orchestrators.BuildPlan, error) {
	profile, err := a.loadProfile(ctx, flags)
	if err != nil {
		return nil, err
	}
	orch, err := a.newBuildOrchestrator(false, io.Discard)
	if err != nil {
		return nil, err
	}
	return orch.Plan(ctx, recipe, profile)
}
