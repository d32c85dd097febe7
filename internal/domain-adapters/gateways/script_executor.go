package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/ochairo/cvpack/internal/domain/entities"
	"github.com/ochairo/cvpack/internal/domain/interfaces"
)

// ScriptExecutor runs shell scripts with an embedded POSIX interpreter,
// so hooks and cmake invocations behave the same on every host.
type ScriptExecutor struct {
	defaultTimeout time.Duration
	logger         interfaces.Logger
}

// NewScriptExecutor creates a new script executor
func NewScriptExecutor(logger interfaces.Logger) *ScriptExecutor {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &ScriptExecutor{
		defaultTimeout: 30 * time.Minute,
		logger:         logger,
	}
}

// NoTimeout disables the execution deadline of a script
const NoTimeout time.Duration = -1

// ExecuteScriptConfig contains configuration for executing a shell script.
type ExecuteScriptConfig struct {
	Script      string
	WorkingDir  string
	Env         map[string]string
	Timeout     time.Duration // 0 uses the executor default, NoTimeout runs unbounded
	Description string
	Output      io.Writer // optional live copy of stdout and stderr
}

// ExecuteResult contains the result of script execution
type ExecuteResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// ExecuteScript runs a shell script with the given configuration
func (se *ScriptExecutor) ExecuteScript(ctx context.Context, config ExecuteScriptConfig) *ExecuteResult {
	startTime := time.Now()
	result := &ExecuteResult{}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = se.defaultTimeout
	}

	execCtx, cancel := context.WithCancel(ctx)
	if timeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	prog, err := syntax.NewParser().Parse(strings.NewReader(config.Script), config.Description)
	if err != nil {
		result.ExitCode = -1
		result.Error = fmt.Errorf("failed to parse script: %w", err)
		return result
	}

	var stdout, stderr bytes.Buffer
	var outWriter, errWriter io.Writer = &stdout, &stderr
	if config.Output != nil {
		outWriter = io.MultiWriter(&stdout, config.Output)
		errWriter = io.MultiWriter(&stderr, config.Output)
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(environ(config.Env)...)),
		interp.StdIO(nil, outWriter, errWriter),
	}
	if config.WorkingDir != "" {
		opts = append(opts, interp.Dir(config.WorkingDir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		result.ExitCode = -1
		result.Error = fmt.Errorf("failed to create interpreter: %w", err)
		return result
	}

	if config.Description != "" {
		se.logger.Debug("executing script", interfaces.F("step", config.Description), interfaces.F("dir", config.WorkingDir))
	}

	err = runner.Run(execCtx, prog)
	result.Duration = time.Since(startTime)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		result.Error = err
		var exitStatus interp.ExitStatus
		switch {
		case execCtx.Err() == context.DeadlineExceeded:
			result.Error = fmt.Errorf("script execution timeout after %v", timeout)
			result.ExitCode = -1
		case errors.As(err, &exitStatus):
			result.ExitCode = int(exitStatus)
		default:
			result.ExitCode = -1
		}
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}

// RunHook executes a recipe hook. An empty hook is a no-op.
func (se *ScriptExecutor) RunHook(
	ctx context.Context,
	kind entities.HookKind,
	recipe *entities.Recipe,
	settings entities.Settings,
	layout entities.Layout,
	output io.Writer,
) error {
	script := recipe.Build.PreBuild
	workingDir := layout.SourceFolder
	if kind == entities.HookPostInstall {
		script = recipe.Build.PostInstall
		workingDir = layout.PackageFolder
	}
	if strings.TrimSpace(script) == "" {
		return nil
	}
	if err := se.ValidateScript(script); err != nil {
		return fmt.Errorf("%s hook: %w", kind, err)
	}

	timeout := se.defaultTimeout
	if recipe.Build.TimeoutMinutes > 0 {
		timeout = time.Duration(recipe.Build.TimeoutMinutes) * time.Minute
	}

	result := se.ExecuteScript(ctx, ExecuteScriptConfig{
		Script:     script,
		WorkingDir: workingDir,
		Env: map[string]string{
			"PREFIX":     layout.PackageFolder,
			"PACKAGE":    recipe.Name,
			"VERSION":    recipe.Version,
			"PLATFORM":   settings.Platform(),
			"BUILD_TYPE": settings.BuildType,
			"SOURCE_DIR": layout.SourceFolder,
			"BUILD_DIR":  layout.BuildFolder,
		},
		Timeout:     timeout,
		Description: string(kind),
		Output:      output,
	})
	if !result.Success {
		return fmt.Errorf("%s hook failed (exit %d): %w\nStderr: %s",
			kind, result.ExitCode, result.Error, result.Stderr)
	}

	se.logger.Info("hook completed", interfaces.F("hook", string(kind)), interfaces.F("duration", result.Duration))
	return nil
}

// ValidateScript performs basic validation on a shell script
func (se *ScriptExecutor) ValidateScript(script string) error {
	if strings.TrimSpace(script) == "" {
		return fmt.Errorf("script is empty")
	}

	if _, err := syntax.NewParser().Parse(strings.NewReader(script), "script"); err != nil {
		return fmt.Errorf("script does not parse: %w", err)
	}

	dangerous := []string{
		"rm -rf /",
		"mkfs",
		"dd if=/dev/zero",
		":(){:|:&};:", // fork bomb
	}

	for _, pattern := range dangerous {
		if strings.Contains(script, pattern) {
			return fmt.Errorf("script contains potentially dangerous pattern: %s", pattern)
		}
	}

	return nil
}

// QuoteArgs renders argv as a single shell command line
func QuoteArgs(args []string) (string, error) {
	quoted := make([]string, len(args))
	for i, arg := range args {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("cannot quote argument %q: %w", arg, err)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " "), nil
}

// environ merges extra variables over the process environment in a stable order
func environ(extra map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
