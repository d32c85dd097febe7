package gateways

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

// recordingRunner captures scripts instead of executing them
type recordingRunner struct {
	scripts  []string
	timeouts []time.Duration
	failStep string
}

func (r *recordingRunner) ExecuteScript(_ context.Context, config ExecuteScriptConfig) *ExecuteResult {
	r.scripts = append(r.scripts, config.Script)
	r.timeouts = append(r.timeouts, config.Timeout)
	if config.Description == r.failStep {
		return &ExecuteResult{ExitCode: 2, Stderr: "CMake Error: boom", Error: errors.New("exit status 2")}
	}
	return &ExecuteResult{Success: true}
}

var cmakeLayout = entities.Layout{
	SourceFolder:  "/src/opencv",
	BuildFolder:   "/work/build/Release",
	PackageFolder: "/dist/opencv pkg",
}

func TestCMake_Lifecycle(t *testing.T) {
	runner := &recordingRunner{}
	cm := NewCMake(runner, CMakeConfig{Generator: "Ninja", Jobs: 8}, nil)
	ctx := context.Background()

	cacheArgs := []string{"-DCMAKE_BUILD_TYPE=Release", "-DWITH_PNG=OFF"}
	if err := cm.Configure(ctx, cmakeLayout, "/work/build/Release/generators/cvpack_toolchain.cmake", cacheArgs); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if err := cm.Build(ctx, cmakeLayout, "Release"); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := cm.Install(ctx, cmakeLayout, "Release"); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	want := []string{
		"cmake -G Ninja -S /src/opencv -B /work/build/Release " +
			"-DCMAKE_TOOLCHAIN_FILE=/work/build/Release/generators/cvpack_toolchain.cmake " +
			"'-DCMAKE_INSTALL_PREFIX=/dist/opencv pkg' -DCMAKE_BUILD_TYPE=Release -DWITH_PNG=OFF",
		"cmake --build /work/build/Release --config Release --parallel 8",
		"cmake --install /work/build/Release --config Release",
	}
	if diff := cmp.Diff(want, runner.scripts); diff != "" {
		t.Errorf("scripts mismatch (-want +got):\n%s", diff)
	}
}

func TestCMake_DefaultGeneratorAndJobs(t *testing.T) {
	cm := NewCMake(&recordingRunner{}, CMakeConfig{Binary: "/opt/cmake/bin/cmake"}, nil)

	args := cm.ConfigureArgs(cmakeLayout, "tc.cmake", nil)
	if args[0] != "/opt/cmake/bin/cmake" || args[1] != "-S" {
		t.Errorf("ConfigureArgs() = %v", args)
	}

	build := cm.BuildArgs(cmakeLayout, "Debug")
	if build[len(build)-1] != "--parallel" {
		t.Errorf("BuildArgs() = %v, want bare --parallel", build)
	}
}

func TestCMake_FailurePropagatesExitCode(t *testing.T) {
	runner := &recordingRunner{failStep: "cmake build"}
	cm := NewCMake(runner, CMakeConfig{}, nil)

	err := cm.Build(context.Background(), cmakeLayout, "Release")

	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("Build() error = %v, want ToolError", err)
	}
	if toolErr.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", toolErr.ExitCode)
	}
	if !strings.Contains(err.Error(), "CMake Error: boom") {
		t.Errorf("error should carry stderr: %v", err)
	}
}

func TestCMake_Timeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"zero runs unbounded", 0, NoTimeout},
		{"configured limit", 90 * time.Minute, 90 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &recordingRunner{}
			cm := NewCMake(runner, CMakeConfig{Timeout: tt.timeout}, nil)

			if err := cm.Build(context.Background(), cmakeLayout, "Release"); err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if runner.timeouts[0] != tt.want {
				t.Errorf("timeout = %v, want %v", runner.timeouts[0], tt.want)
			}
		})
	}
}
