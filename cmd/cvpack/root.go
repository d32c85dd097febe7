package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/ochairo/cvpack/internal/config"
	"github.com/ochairo/cvpack/internal/domain/interfaces/repositories"
	"github.com/ochairo/cvpack/internal/domain/services"
	"github.com/ochairo/cvpack/internal/external-adapters/charmlog"
	"github.com/ochairo/cvpack/internal/external-adapters/toml"
	"github.com/ochairo/cvpack/internal/external-adapters/yaml"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"

	cfgFile string
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "cvpack",
		Short: "Configure, build and package OpenCV for a target platform",
		Long: titleStyle.Render("cvpack") + subtitleStyle.Render(" - OpenCV build packaging") + `

cvpack derives the CMake configuration for OpenCV from a recipe and a target
profile, drives cmake through configure, build and install, and publishes the
installed tree as an archive with checksums, SBOM, provenance and an optional
OpenPGP signature.

` + subtitleStyle.Render("Examples:") + `
  cvpack build opencv --profile android-armv8
  cvpack build opencv -s os=Emscripten -s arch=wasm -s os.sdk_version=3.1.31
  cvpack toolchain opencv --profile linux -o with_spng=false
  cvpack verify opencv --dir dist --keyring release.asc`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cvpack.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(toolchainCmd)
	rootCmd.AddCommand(requirementsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(verifyCmd)
}

// Execute runs the root command and exits with the mapped exit code.
func Execute() {
	services.ToolVersion = Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(exitFailure)
	}
}

// app bundles the configuration and repositories shared by commands
type app struct {
	cfg      *config.Config
	logger   *charmlog.Logger
	recipes  *yaml.RecipeRepository
	profiles repositories.ProfileRepository
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, resolved, err := config.Load(cfgFile)
	if err != nil {
		return nil, &ExitError{Code: exitInvalidConfig, Err: err}
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := charmlog.New(cmd.ErrOrStderr(), level)
	if err != nil {
		return nil, &ExitError{Code: exitInvalidConfig, Err: err}
	}
	if resolved != "" {
		logger.Debug(fmt.Sprintf("using config %s", resolved))
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		recipes:  yaml.NewRecipeRepository(cfg.RecipesDir, logger),
		profiles: toml.NewProfileRepository(cfg.ProfilesDir),
	}, nil
}
