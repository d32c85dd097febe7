package gateways

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ochairo/cvpack/internal/domain/entities"
	"github.com/ochairo/cvpack/internal/domain/interfaces"
)

// ScriptRunner executes a shell command line
type ScriptRunner interface {
	ExecuteScript(ctx context.Context, config ExecuteScriptConfig) *ExecuteResult
}

// CMakeConfig selects the cmake binary and how it builds
type CMakeConfig struct {
	Binary    string        // defaults to "cmake"
	Generator string        // empty lets cmake pick its platform default
	Jobs      int           // 0 lets the native tool decide
	Timeout   time.Duration // 0 runs cmake without a deadline
	Output    io.Writer
}

// CMake implements the BuildSystem gateway by shelling out to cmake
type CMake struct {
	runner ScriptRunner
	config CMakeConfig
	logger interfaces.Logger
}

// NewCMake creates a cmake build system
func NewCMake(runner ScriptRunner, config CMakeConfig, logger interfaces.Logger) *CMake {
	if config.Binary == "" {
		config.Binary = "cmake"
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &CMake{runner: runner, config: config, logger: logger}
}

// ConfigureArgs returns the configure command line
func (c *CMake) ConfigureArgs(layout entities.Layout, toolchainFile string, cacheArgs []string) []string {
	args := []string{c.config.Binary}
	if c.config.Generator != "" {
		args = append(args, "-G", c.config.Generator)
	}
	args = append(args,
		"-S", layout.SourceFolder,
		"-B", layout.BuildFolder,
		"-DCMAKE_TOOLCHAIN_FILE="+toolchainFile,
		"-DCMAKE_INSTALL_PREFIX="+layout.PackageFolder,
	)
	return append(args, cacheArgs...)
}

// BuildArgs returns the build command line
func (c *CMake) BuildArgs(layout entities.Layout, buildType string) []string {
	args := []string{c.config.Binary, "--build", layout.BuildFolder, "--config", buildType, "--parallel"}
	if c.config.Jobs > 0 {
		args = append(args, strconv.Itoa(c.config.Jobs))
	}
	return args
}

// InstallArgs returns the install command line
func (c *CMake) InstallArgs(layout entities.Layout, buildType string) []string {
	return []string{c.config.Binary, "--install", layout.BuildFolder, "--config", buildType}
}

// Configure generates the native build tree
func (c *CMake) Configure(ctx context.Context, layout entities.Layout, toolchainFile string, cacheArgs []string) error {
	return c.run(ctx, "configure", c.ConfigureArgs(layout, toolchainFile, cacheArgs))
}

// Build compiles the configured tree
func (c *CMake) Build(ctx context.Context, layout entities.Layout, buildType string) error {
	return c.run(ctx, "build", c.BuildArgs(layout, buildType))
}

// Install copies build outputs into the package folder
func (c *CMake) Install(ctx context.Context, layout entities.Layout, buildType string) error {
	return c.run(ctx, "install", c.InstallArgs(layout, buildType))
}

func (c *CMake) run(ctx context.Context, step string, args []string) error {
	script, err := QuoteArgs(args)
	if err != nil {
		return fmt.Errorf("cmake %s: %w", step, err)
	}

	c.logger.Info("running cmake", interfaces.F("step", step))
	c.logger.Debug("command", interfaces.F("line", script))

	timeout := c.config.Timeout
	if timeout <= 0 {
		timeout = NoTimeout
	}

	result := c.runner.ExecuteScript(ctx, ExecuteScriptConfig{
		Script:      script,
		Timeout:     timeout,
		Description: "cmake " + step,
		Output:      c.config.Output,
	})
	if !result.Success {
		return &ToolError{Step: "cmake " + step, ExitCode: result.ExitCode, Stderr: result.Stderr, Err: result.Error}
	}

	c.logger.Debug("cmake step finished", interfaces.F("step", step), interfaces.F("duration", result.Duration))
	return nil
}

// ToolError reports a failed external tool invocation
type ToolError struct {
	Step     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s failed (exit %d): %v", e.Step, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s failed (exit %d): %v\nStderr: %s", e.Step, e.ExitCode, e.Err, e.Stderr)
}

func (e *ToolError) Unwrap() error { return e.Err }
