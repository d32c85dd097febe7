// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ochairo/cvpack/internal/domain/entities"
	"github.com/ochairo/cvpack/internal/domain/interfaces"
	"github.com/ochairo/cvpack/internal/domain/interfaces/gateways"
	"github.com/ochairo/cvpack/internal/domain/interfaces/repositories"
	"github.com/ochairo/cvpack/internal/domain/services"
)

// DependencyResolver locates installed prefixes for requirements
type DependencyResolver interface {
	Resolve(reqs []entities.Requirement) ([]entities.ResolvedDependency, error)
}

// SourceExporter copies library sources into the source folder
type SourceExporter interface {
	Export(ctx context.Context, recipe *entities.Recipe, sourceFolder string) (*entities.Artifact, error)
}

// GeneratorWriter writes the toolchain file and presets into the generators folder
type GeneratorWriter interface {
	Write(layout entities.Layout, settings entities.Settings, tc *entities.Toolchain, deps []entities.ResolvedDependency) (string, error)
}

// HookRunner executes recipe hooks
type HookRunner interface {
	RunHook(ctx context.Context, kind entities.HookKind, recipe *entities.Recipe, settings entities.Settings, layout entities.Layout, output io.Writer) error
}

// Packager writes package metadata and archives the package folder
type Packager interface {
	WritePackageInfo(packageFolder string, info *entities.PackageInfo) (string, error)
	PackageArtifact(ctx context.Context, recipe *entities.Recipe, settings entities.Settings, packageFolder, outputDir string) (*entities.Artifact, error)
}

// SecurityArtifactGenerator emits checksums, SBOM and provenance next to an archive
type SecurityArtifactGenerator interface {
	GenerateAllArtifacts(ctx context.Context, archivePath string, info *entities.PackageInfo) (*services.SecurityArtifacts, error)
}

// BuildOrchestrator coordinates the complete package build workflow
type BuildOrchestrator struct {
	recipeRepo repositories.RecipeRepository
	resolver   DependencyResolver
	exporter   SourceExporter
	generators GeneratorWriter
	buildSys   gateways.BuildSystem
	hooks      HookRunner
	packager   Packager
	security   SecurityArtifactGenerator
	signer     gateways.Signer
	config     BuildOrchestratorConfig
	logger     interfaces.Logger
}

// BuildOrchestratorConfig holds configuration for the orchestrator
type BuildOrchestratorConfig struct {
	BuildRoot         string
	OutputDir         string
	SecurityArtifacts bool
	HookOutput        io.Writer
}

// BuildOrchestratorDeps groups the collaborators of the orchestrator.
// Security and Signer are optional.
type BuildOrchestratorDeps struct {
	Recipes    repositories.RecipeRepository
	Resolver   DependencyResolver
	Exporter   SourceExporter
	Generators GeneratorWriter
	BuildSys   gateways.BuildSystem
	Hooks      HookRunner
	Packager   Packager
	Security   SecurityArtifactGenerator
	Signer     gateways.Signer
}

// NewBuildOrchestrator creates a new build orchestrator
func NewBuildOrchestrator(deps BuildOrchestratorDeps, config BuildOrchestratorConfig, logger interfaces.Logger) *BuildOrchestrator {
	if config.OutputDir == "" {
		config.OutputDir = "dist"
	}
	if config.BuildRoot == "" {
		config.BuildRoot = ".cvpack"
	}
	// cmake resolves relative paths against -S or -B, never the working directory
	if abs, err := filepath.Abs(config.OutputDir); err == nil {
		config.OutputDir = abs
	}
	if abs, err := filepath.Abs(config.BuildRoot); err == nil {
		config.BuildRoot = abs
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &BuildOrchestrator{
		recipeRepo: deps.Recipes,
		resolver:   deps.Resolver,
		exporter:   deps.Exporter,
		generators: deps.Generators,
		buildSys:   deps.BuildSys,
		hooks:      deps.Hooks,
		packager:   deps.Packager,
		security:   deps.Security,
		signer:     deps.Signer,
		config:     config,
		logger:     logger,
	}
}

// BuildRequest selects what to build
type BuildRequest struct {
	Recipe       string
	Profile      *entities.Profile
	GenerateOnly bool // stop after writing the generator files
	Sign         bool
}

// BuildPlan is everything derived from a recipe and profile before touching the filesystem
type BuildPlan struct {
	Recipe       *entities.Recipe
	Settings     entities.Settings
	Options      entities.Options
	Requirements []entities.Requirement
	Layout       entities.Layout
	Toolchain    *entities.Toolchain
	PackageInfo  *entities.PackageInfo
}

// BuildResult contains the result of a build operation
type BuildResult struct {
	Plan           *BuildPlan
	Dependencies   []entities.ResolvedDependency
	ToolchainFile  string
	Artifact       *entities.Artifact
	Security       *services.SecurityArtifacts
	SignaturePath  string
	ExportDuration time.Duration
	BuildDuration  time.Duration
	TotalDuration  time.Duration
	Success        bool
	Error          error
}

// Plan loads the recipe, validates the configuration and derives the build-system table.
// It performs no filesystem writes.
func (o *BuildOrchestrator) Plan(ctx context.Context, recipeName string, profile *entities.Profile) (*BuildPlan, error) {
	if profile == nil {
		return nil, fmt.Errorf("no profile selected")
	}

	recipe, err := o.recipeRepo.GetRecipe(ctx, recipeName)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}

	options, err := ResolveOptions(recipe, profile)
	if err != nil {
		return nil, err
	}
	settings := profile.Settings

	if err := services.ValidateConfiguration(settings, options); err != nil {
		return nil, err
	}

	reqs, err := services.Requirements(recipe, options)
	if err != nil {
		return nil, err
	}

	layout := services.LayoutFor(recipe, settings, o.config.BuildRoot, o.config.OutputDir)

	tc, err := services.ConfigurationFor(settings, options, layout)
	if err != nil {
		return nil, err
	}
	if err := services.ApplyPlatform(tc, settings, profile.Conf); err != nil {
		return nil, err
	}
	if err := services.ApplyExtraVariables(tc, recipe.Variables); err != nil {
		return nil, err
	}

	return &BuildPlan{
		Recipe:       recipe,
		Settings:     settings,
		Options:      options,
		Requirements: reqs,
		Layout:       layout,
		Toolchain:    tc,
		PackageInfo:  services.PackageInfoFor(recipe, settings, options, reqs),
	}, nil
}

// ResolveOptions layers profile options over the recipe's option defaults
func ResolveOptions(recipe *entities.Recipe, profile *entities.Profile) (entities.Options, error) {
	options, err := recipe.ResolveOptions()
	if err != nil {
		return options, &entities.InvalidConfigurationError{Setting: "options", Reason: err.Error()}
	}
	for name, value := range profile.Options {
		if err := options.Set(name, value); err != nil {
			return options, &entities.InvalidConfigurationError{Setting: "options", Reason: err.Error()}
		}
	}
	return options, nil
}

// BuildPackage executes the complete build workflow for a package
func (o *BuildOrchestrator) BuildPackage(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := time.Now()
	result := &BuildResult{}

	// Step 1: Validate and derive the configuration before any work
	plan, err := o.Plan(ctx, req.Recipe, req.Profile)
	if err != nil {
		result.Error = err
		return result, err
	}
	result.Plan = plan
	layout := plan.Layout

	o.logger.Info("building package",
		interfaces.F("package", plan.Recipe.Name),
		interfaces.F("version", plan.Recipe.Version),
		interfaces.F("target", plan.Settings.Target()))

	// Step 2: Locate installed requirements
	deps, err := o.resolver.Resolve(plan.Requirements)
	if err != nil {
		result.Error = fmt.Errorf("failed to resolve requirements: %w", err)
		return result, result.Error
	}
	result.Dependencies = deps

	// Step 3: Export sources
	exportStart := time.Now()
	if _, err := o.exporter.Export(ctx, plan.Recipe, layout.SourceFolder); err != nil {
		result.Error = fmt.Errorf("failed to export sources: %w", err)
		return result, result.Error
	}
	result.ExportDuration = time.Since(exportStart)

	// Step 4: Generate toolchain and presets
	toolchainFile, err := o.generators.Write(layout, plan.Settings, plan.Toolchain, deps)
	if err != nil {
		result.Error = fmt.Errorf("failed to write generator files: %w", err)
		return result, result.Error
	}
	result.ToolchainFile = toolchainFile

	if req.GenerateOnly {
		result.Success = true
		result.TotalDuration = time.Since(startTime)
		return result, nil
	}

	// Step 5: Configure, build and install
	buildStart := time.Now()
	if err := o.hooks.RunHook(ctx, entities.HookPreBuild, plan.Recipe, plan.Settings, layout, o.config.HookOutput); err != nil {
		result.Error = err
		return result, err
	}
	if err := o.buildSys.Configure(ctx, layout, toolchainFile, plan.Toolchain.CacheArgs()); err != nil {
		result.Error = err
		return result, err
	}
	if err := o.buildSys.Build(ctx, layout, plan.Settings.BuildType); err != nil {
		result.Error = err
		return result, err
	}
	if err := o.buildSys.Install(ctx, layout, plan.Settings.BuildType); err != nil {
		result.Error = err
		return result, err
	}
	if err := o.hooks.RunHook(ctx, entities.HookPostInstall, plan.Recipe, plan.Settings, layout, o.config.HookOutput); err != nil {
		result.Error = err
		return result, err
	}
	result.BuildDuration = time.Since(buildStart)

	// Step 6: Publish package metadata
	if _, err := o.packager.WritePackageInfo(layout.PackageFolder, plan.PackageInfo); err != nil {
		result.Error = err
		return result, err
	}

	// Step 7: Archive the package folder
	artifact, err := o.packager.PackageArtifact(ctx, plan.Recipe, plan.Settings, layout.PackageFolder, o.config.OutputDir)
	if err != nil {
		result.Error = fmt.Errorf("packaging failed: %w", err)
		return result, result.Error
	}
	result.Artifact = artifact

	// Step 8: Security artifacts and signature
	if o.config.SecurityArtifacts && o.security != nil {
		sec, err := o.security.GenerateAllArtifacts(ctx, artifact.Path, plan.PackageInfo)
		if err != nil {
			result.Error = fmt.Errorf("security artifacts failed: %w", err)
			return result, result.Error
		}
		result.Security = sec
	}

	if req.Sign {
		if o.signer == nil {
			result.Error = fmt.Errorf("signing requested but no signing key is configured")
			return result, result.Error
		}
		sigPath, err := o.signer.SignFile(ctx, artifact.Path)
		if err != nil {
			result.Error = fmt.Errorf("signing failed: %w", err)
			return result, result.Error
		}
		result.SignaturePath = sigPath
	}

	result.Success = true
	result.TotalDuration = time.Since(startTime)
	return result, nil
}

// GetBuildSummary returns a human-readable summary of the build
func (r *BuildResult) GetBuildSummary() string {
	if !r.Success {
		return fmt.Sprintf("Build failed: %v", r.Error)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Build successful!\nPackage: %s %s\nTarget: %s\n",
		r.Plan.Recipe.Name, r.Plan.Recipe.Version, r.Plan.Settings.Target())

	if r.Artifact == nil {
		fmt.Fprintf(&b, "Generators: %s\n", r.ToolchainFile)
	} else {
		fmt.Fprintf(&b, "Archive: %s\n", r.Artifact.Path)
	}
	fmt.Fprintf(&b, "Export: %v\nBuild: %v\nTotal: %v", r.ExportDuration, r.BuildDuration, r.TotalDuration)

	if r.Security != nil {
		fmt.Fprintf(&b, "\n\nChecksums: %s, %s", r.Security.SHA256Path, r.Security.SHA512Path)
		if r.Security.SBOMPath != "" {
			fmt.Fprintf(&b, "\nSBOM: %s", r.Security.SBOMPath)
		}
		if r.Security.ProvenancePath != "" {
			fmt.Fprintf(&b, "\nProvenance: %s", r.Security.ProvenancePath)
		}
	}
	if r.SignaturePath != "" {
		fmt.Fprintf(&b, "\nSignature: %s", r.SignaturePath)
	}

	return b.String()
}
