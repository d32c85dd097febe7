package gateways

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

func testToolchain() *entities.Toolchain {
	tc := entities.NewToolchain("Release")
	tc.PositionIndependentCode = entities.On()
	tc.Set("WITH_PNG", entities.Off())
	tc.Set("BUILD_LIST", entities.String("core,imgproc"))
	tc.Set("IOS", entities.Int(1))
	tc.Set("CPU_BASELINE", entities.String(""))
	tc.Define("__EMSCRIPTEN_minor__", "1")
	tc.Define("__EMSCRIPTEN_major__", "3")
	return tc
}

func TestRenderToolchain(t *testing.T) {
	deps := []entities.ResolvedDependency{
		{Requirement: entities.Requirement{Name: "zlib", Version: "1.3.1"}, Prefix: "/deps/zlib/1.3.1"},
	}

	got := RenderToolchain(testToolchain(), deps)

	for _, line := range []string{
		`set(CMAKE_BUILD_TYPE "Release" CACHE STRING "")`,
		`set(BUILD_SHARED_LIBS OFF CACHE BOOL "")`,
		`set(CMAKE_POSITION_INDEPENDENT_CODE ON CACHE BOOL "")`,
		`list(PREPEND CMAKE_PREFIX_PATH "/deps/zlib/1.3.1")`,
		`set(BUILD_LIST "core,imgproc" CACHE STRING "")`,
		`set(CPU_BASELINE "" CACHE STRING "")`,
		`set(IOS "1" CACHE STRING "")`,
		`set(WITH_PNG "OFF" CACHE BOOL "")`,
		`add_compile_definitions("__EMSCRIPTEN_major__=3" "__EMSCRIPTEN_minor__=1")`,
	} {
		if !strings.Contains(got, line+"\n") {
			t.Errorf("toolchain missing line %q\n%s", line, got)
		}
	}

	// variables are emitted in sorted order
	if strings.Index(got, "BUILD_LIST") > strings.Index(got, "WITH_PNG") {
		t.Error("variables are not sorted")
	}
	if strings.Contains(got, "FORCE") {
		t.Errorf("cache entries must not be forced:\n%s", got)
	}
}

func TestRenderToolchain_PlatformBlock(t *testing.T) {
	tc := testToolchain()
	tc.SetPlatform("CMAKE_SYSTEM_NAME", "Android")
	tc.SetPlatform("ANDROID_PLATFORM", "android-28")
	tc.SetPlatform("ANDROID_ABI", "arm64-v8a")
	tc.Includes = []string{"/opt/ndk/build/cmake/android.toolchain.cmake"}
	tc.ArchFlags = "-m64"

	got := RenderToolchain(tc, nil)

	order := []string{
		`set(ANDROID_ABI "arm64-v8a")`,
		`set(ANDROID_PLATFORM "android-28")`,
		`set(CMAKE_SYSTEM_NAME "Android")`,
		`include("/opt/ndk/build/cmake/android.toolchain.cmake")`,
		`string(APPEND CMAKE_C_FLAGS_INIT " -m64")`,
		`string(APPEND CMAKE_CXX_FLAGS_INIT " -m64")`,
		`set(CMAKE_BUILD_TYPE "Release" CACHE STRING "")`,
	}
	last := -1
	for _, line := range order {
		idx := strings.Index(got, line+"\n")
		if idx < 0 {
			t.Fatalf("toolchain missing line %q\n%s", line, got)
		}
		if idx < last {
			t.Errorf("%q is out of order\n%s", line, got)
		}
		last = idx
	}
}

func TestRenderToolchain_Stable(t *testing.T) {
	first := RenderToolchain(testToolchain(), nil)
	for i := 0; i < 10; i++ {
		if got := RenderToolchain(testToolchain(), nil); got != first {
			t.Fatalf("render %d differs from first render", i)
		}
	}
	if strings.Contains(first, "CMAKE_PREFIX_PATH") {
		t.Error("no dependencies should mean no prefix path")
	}
}

func TestCMakeQuote(t *testing.T) {
	if got := cmakeQuote(`C:\path "x" $ENV`); got != `"C:\\path \"x\" \$ENV"` {
		t.Errorf("cmakeQuote() = %s", got)
	}
}

func TestToolchainWriter_Write(t *testing.T) {
	root := t.TempDir()
	layout := entities.Layout{
		BuildFolder:      filepath.Join(root, "build"),
		GeneratorsFolder: filepath.Join(root, "build", "generators"),
		PackageFolder:    filepath.Join(root, "pkg"),
	}
	settings := entities.Settings{OS: entities.OSLinux, Arch: "x86_64", BuildType: "Release"}

	path, err := NewToolchainWriter("Ninja").Write(layout, settings, testToolchain(), nil)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if filepath.Base(path) != ToolchainFileName {
		t.Errorf("toolchain path = %s", path)
	}

	data, err := os.ReadFile(filepath.Join(layout.GeneratorsFolder, PresetsFileName))
	if err != nil {
		t.Fatalf("presets not written: %v", err)
	}

	var presets cmakePresets
	if err := json.Unmarshal(data, &presets); err != nil {
		t.Fatalf("presets are not valid JSON: %v", err)
	}
	if len(presets.ConfigurePresets) != 1 {
		t.Fatalf("configure presets = %d", len(presets.ConfigurePresets))
	}
	cp := presets.ConfigurePresets[0]
	if cp.Name != "cvpack-linux-x86_64-release" || cp.Generator != "Ninja" {
		t.Errorf("preset = %+v", cp)
	}
	if cp.ToolchainFile != filepath.ToSlash(path) {
		t.Errorf("toolchainFile = %s, want %s", cp.ToolchainFile, path)
	}
	if presets.BuildPresets[0].Configuration != "Release" {
		t.Errorf("build preset = %+v", presets.BuildPresets[0])
	}
}
