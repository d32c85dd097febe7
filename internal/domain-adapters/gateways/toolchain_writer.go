package gateways

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

const (
	// ToolchainFileName is the CMake toolchain written into the generators folder
	ToolchainFileName = "cvpack_toolchain.cmake"
	// PresetsFileName is the CMake presets file written next to it
	PresetsFileName = "CMakePresets.json"
)

// ToolchainWriter renders a derived Toolchain into files CMake reads
type ToolchainWriter struct {
	generator string
}

// NewToolchainWriter creates a writer; generator is recorded in the configure preset
func NewToolchainWriter(generator string) *ToolchainWriter {
	return &ToolchainWriter{generator: generator}
}

// Write creates the generators folder and both generated files.
// It returns the path of the toolchain file.
func (w *ToolchainWriter) Write(
	layout entities.Layout,
	settings entities.Settings,
	tc *entities.Toolchain,
	deps []entities.ResolvedDependency,
) (string, error) {
	if err := os.MkdirAll(layout.GeneratorsFolder, 0750); err != nil {
		return "", fmt.Errorf("failed to create generators folder: %w", err)
	}

	toolchainPath := filepath.Join(layout.GeneratorsFolder, ToolchainFileName)
	if err := os.WriteFile(toolchainPath, []byte(RenderToolchain(tc, deps)), 0600); err != nil {
		return "", fmt.Errorf("failed to write toolchain file: %w", err)
	}

	presets, err := w.RenderPresets(layout, settings, toolchainPath)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(layout.GeneratorsFolder, PresetsFileName), presets, 0600); err != nil {
		return "", fmt.Errorf("failed to write presets: %w", err)
	}

	return toolchainPath, nil
}

// RenderToolchain returns the toolchain file contents. Equal inputs give identical bytes.
// Cache entries are not forced, so -D arguments and preset values win.
func RenderToolchain(tc *entities.Toolchain, deps []entities.ResolvedDependency) string {
	var b strings.Builder
	b.WriteString("# Generated by cvpack. Do not edit.\n\n")

	if keys := tc.PlatformKeys(); len(keys) > 0 {
		for _, key := range keys {
			fmt.Fprintf(&b, "set(%s %s)\n", key, cmakeQuote(tc.Platform[key]))
		}
		b.WriteString("\n")
	}
	if len(tc.Includes) > 0 {
		for _, include := range tc.Includes {
			fmt.Fprintf(&b, "include(%s)\n", cmakeQuote(include))
		}
		b.WriteString("\n")
	}
	if tc.ArchFlags != "" {
		for _, lang := range []string{"C", "CXX"} {
			fmt.Fprintf(&b, "string(APPEND CMAKE_%s_FLAGS_INIT %s)\n", lang, cmakeQuote(" "+tc.ArchFlags))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "set(CMAKE_BUILD_TYPE %s CACHE STRING \"\")\n", cmakeQuote(tc.BuildType))
	fmt.Fprintf(&b, "set(BUILD_SHARED_LIBS %s CACHE BOOL \"\")\n", entities.Switch(tc.SharedLibs))
	if tc.PositionIndependentCode.IsSet() {
		fmt.Fprintf(&b, "set(CMAKE_POSITION_INDEPENDENT_CODE %s CACHE BOOL \"\")\n", tc.PositionIndependentCode)
	}

	if len(deps) > 0 {
		b.WriteString("\nlist(PREPEND CMAKE_PREFIX_PATH")
		for _, dep := range deps {
			b.WriteString(" " + cmakeQuote(filepath.ToSlash(dep.Prefix)))
		}
		b.WriteString(")\n")
	}

	b.WriteString("\n")
	for _, key := range tc.Keys() {
		v, _ := tc.Get(key)
		cacheType := "STRING"
		if v.Kind() == entities.KindSwitch {
			cacheType = "BOOL"
		}
		fmt.Fprintf(&b, "set(%s %s CACHE %s \"\")\n", key, cmakeQuote(v.String()), cacheType)
	}

	if names := tc.DefinitionNames(); len(names) > 0 {
		b.WriteString("\nadd_compile_definitions(")
		for i, name := range names {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(cmakeQuote(name + "=" + tc.PreprocessorDefinitions[name]))
		}
		b.WriteString(")\n")
	}

	return b.String()
}

type cmakePresets struct {
	Version              int               `json:"version"`
	CMakeMinimumRequired cmakeVersion      `json:"cmakeMinimumRequired"`
	ConfigurePresets     []configurePreset `json:"configurePresets"`
	BuildPresets         []buildPreset     `json:"buildPresets"`
}

type cmakeVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

type configurePreset struct {
	Name           string            `json:"name"`
	DisplayName    string            `json:"displayName"`
	Generator      string            `json:"generator,omitempty"`
	BinaryDir      string            `json:"binaryDir"`
	ToolchainFile  string            `json:"toolchainFile"`
	CacheVariables map[string]string `json:"cacheVariables"`
}

type buildPreset struct {
	Name            string `json:"name"`
	ConfigurePreset string `json:"configurePreset"`
	Configuration   string `json:"configuration"`
}

// RenderPresets returns the CMakePresets.json contents for one target
func (w *ToolchainWriter) RenderPresets(layout entities.Layout, settings entities.Settings, toolchainPath string) ([]byte, error) {
	name := "cvpack-" + settings.Target()
	presets := cmakePresets{
		Version:              3,
		CMakeMinimumRequired: cmakeVersion{Major: 3, Minor: 21},
		ConfigurePresets: []configurePreset{{
			Name:          name,
			DisplayName:   fmt.Sprintf("%s %s", settings.Platform(), settings.BuildType),
			Generator:     w.generator,
			BinaryDir:     filepath.ToSlash(layout.BuildFolder),
			ToolchainFile: filepath.ToSlash(toolchainPath),
			CacheVariables: map[string]string{
				"CMAKE_INSTALL_PREFIX": filepath.ToSlash(layout.PackageFolder),
			},
		}},
		BuildPresets: []buildPreset{{
			Name:            name,
			ConfigurePreset: name,
			Configuration:   settings.BuildType,
		}},
	}

	data, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal presets: %w", err)
	}
	return append(data, '\n'), nil
}

// cmakeQuote renders s as a quoted CMake argument
func cmakeQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
