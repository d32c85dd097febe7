package entities

import (
	"fmt"
	"strings"
)

// Operating systems understood by the recipe
const (
	OSLinux      = "Linux"
	OSWindows    = "Windows"
	OSMacos      = "Macos"
	OSiOS        = "iOS"
	OSAndroid    = "Android"
	OSEmscripten = "Emscripten"
)

// SupportedOS lists every operating system the configuration table covers
var SupportedOS = []string{OSLinux, OSWindows, OSMacos, OSiOS, OSAndroid, OSEmscripten}

// CompilerMSVC is the only compiler that changes the configuration table
const CompilerMSVC = "msvc"

// Settings describes the target a package is built for
type Settings struct {
	OS              string `json:"os"`
	Arch            string `json:"arch"`
	BuildType       string `json:"build_type"`
	Compiler        string `json:"compiler,omitempty"`
	CompilerVersion string `json:"compiler_version,omitempty"`
	CompilerRuntime string `json:"compiler_runtime,omitempty"` // "static" or "dynamic" (msvc)

	// OS sub-settings
	APILevel   int    `json:"api_level,omitempty"`   // Android
	SDKVersion string `json:"sdk_version,omitempty"` // Emscripten, MAJOR.MINOR.PATCH
	SIMD       bool   `json:"simd,omitempty"`        // Emscripten
}

// Platform returns the os-arch pair used in directory and archive names
func (s Settings) Platform() string {
	return fmt.Sprintf("%s-%s", strings.ToLower(s.OS), s.Arch)
}

// Target returns the platform qualified by build type, e.g. linux-x86_64-release
func (s Settings) Target() string {
	return fmt.Sprintf("%s-%s", s.Platform(), strings.ToLower(s.BuildType))
}

// IsSupportedOS reports whether os is covered by the configuration table
func IsSupportedOS(os string) bool {
	for _, known := range SupportedOS {
		if known == os {
			return true
		}
	}
	return false
}

// Options are the packaging options exposed by the recipe
type Options struct {
	Shared        bool `json:"shared"`
	FPIC          bool `json:"fPIC"`
	WithSPNG      bool `json:"with_spng"`
	WithJPEGTurbo bool `json:"with_jpeg_turbo"`
}

// DefaultOptions returns the option values used when neither recipe nor profile sets them
func DefaultOptions() Options {
	return Options{
		Shared:        false,
		FPIC:          true,
		WithSPNG:      true,
		WithJPEGTurbo: true,
	}
}

// Set assigns an option by its recipe name
func (o *Options) Set(name string, value bool) error {
	switch name {
	case "shared":
		o.Shared = value
	case "fPIC":
		o.FPIC = value
	case "with_spng":
		o.WithSPNG = value
	case "with_jpeg_turbo":
		o.WithJPEGTurbo = value
	default:
		return fmt.Errorf("unknown option %q", name)
	}
	return nil
}
