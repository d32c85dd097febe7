// Package services implements the recipe's build logic: validation, requirements,
// layout, toolchain derivation and package metadata.
package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

// MinAndroidAPILevel is the lowest Android API level the videoio camera backend builds against.
// See modules/videoio/cmake/detect_android_camera.cmake in OpenCV 4.5.5.
const MinAndroidAPILevel = 24

// ValidateConfiguration rejects settings the recipe cannot build.
// It runs before any filesystem or build work.
func ValidateConfiguration(settings entities.Settings, _ entities.Options) error {
	if !entities.IsSupportedOS(settings.OS) {
		return &entities.InvalidConfigurationError{
			Setting: "os",
			Reason:  fmt.Sprintf("%q is not supported (supported: %s)", settings.OS, strings.Join(entities.SupportedOS, ", ")),
		}
	}

	if settings.BuildType == "" {
		return &entities.InvalidConfigurationError{Setting: "build_type", Reason: "must be set"}
	}

	switch settings.OS {
	case entities.OSAndroid:
		if settings.APILevel < MinAndroidAPILevel {
			return &entities.InvalidConfigurationError{
				Setting: "os.api_level",
				Reason:  fmt.Sprintf("opencv videoio on Android requires api level >= %d, got %d", MinAndroidAPILevel, settings.APILevel),
			}
		}
	case entities.OSEmscripten:
		if _, err := EmscriptenVersionParts(settings.SDKVersion); err != nil {
			return &entities.InvalidConfigurationError{Setting: "os.sdk_version", Reason: err.Error()}
		}
	}

	return nil
}

// FPICApplies reports whether the fPIC option is meaningful for the target.
// Windows has no position-independent code switch and shared libraries are always PIC.
func FPICApplies(settings entities.Settings, options entities.Options) bool {
	if settings.OS == entities.OSWindows {
		return false
	}
	return !options.Shared
}

// EmscriptenVersionParts splits an emsdk version into major, minor and tiny components
func EmscriptenVersionParts(sdkVersion string) ([3]string, error) {
	var parts [3]string
	fields := strings.Split(sdkVersion, ".")
	if len(fields) != 3 {
		return parts, fmt.Errorf("expected MAJOR.MINOR.PATCH, got %q", sdkVersion)
	}
	for i, f := range fields {
		if _, err := strconv.Atoi(f); err != nil {
			return parts, fmt.Errorf("non-numeric component %q in %q", f, sdkVersion)
		}
		parts[i] = f
	}
	return parts, nil
}
