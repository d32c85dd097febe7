package services

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

// BuildList is the set of OpenCV modules compiled into the package
var BuildList = []string{
	"core", "features2d", "imgcodecs", "imgproc", "highgui",
	"video", "videoio", "calib3d", "aruco", "xfeatures2d",
}

// disabledBuilds are the OpenCV sub-builds never shipped in the package
var disabledBuilds = []string{
	"BUILD_TESTS",
	"BUILD_PERF_TESTS",
	"BUILD_EXAMPLES",
	"BUILD_PACKAGE",
	"BUILD_opencv_apps",
	"BUILD_JAVA",
	"BUILD_opencv_python2",
	"BUILD_opencv_python3",
}

// disabledFeatures are third-party integrations switched off on every platform
var disabledFeatures = []string{
	"WITH_ADE",
	"WITH_PROTOBUF",
	"WITH_TIFF",
	"WITH_OPENEXR",
	"WITH_WEBP",
	"WITH_FFMPEG",
}

// installPaths pins OpenCV's install tree to the package layout
var installPaths = map[string]string{
	"OPENCV_BIN_INSTALL_PATH":         "bin",
	"OPENCV_LIB_INSTALL_PATH":         "lib",
	"OPENCV_LIB_ARCHIVE_INSTALL_PATH": "lib",
	"OPENCV_3P_LIB_INSTALL_PATH":      "lib",
	"OPENCV_CONFIG_INSTALL_PATH":      "cmake",
	"OPENCV_INCLUDE_INSTALL_PATH":     "include",
}

// ConfigurationFor derives the build-system variables for a target.
// The result only depends on its arguments.
func ConfigurationFor(settings entities.Settings, options entities.Options, layout entities.Layout) (*entities.Toolchain, error) {
	tc := entities.NewToolchain(settings.BuildType)
	tc.SharedLibs = options.Shared
	if FPICApplies(settings, options) {
		tc.PositionIndependentCode = entities.Switch(options.FPIC)
	}

	tc.Set("BUILD_LIST", entities.String(strings.Join(BuildList, ",")))
	tc.Set("CMAKE_INSTALL_RPATH_USE_LINK_PATH", entities.Off())
	tc.Set("OPENCV_EXTRA_MODULES_PATH", entities.String(ExtraModulesPath(layout.SourceFolder)))

	if settings.Compiler == entities.CompilerMSVC {
		tc.Set("BUILD_WITH_STATIC_CRT", entities.Switch(settings.CompilerRuntime == "static"))
	}

	for _, key := range disabledBuilds {
		tc.Set(key, entities.Off())
	}

	applyCodecs(tc, options)

	for _, key := range disabledFeatures {
		tc.Set(key, entities.Off())
	}
	tc.Set("BUILD_ZLIB", entities.Off())

	tc.Set("WITH_IPP", entities.Switch(settings.OS == entities.OSWindows || settings.OS == entities.OSLinux))

	switch settings.OS {
	case entities.OSEmscripten:
		if err := applyEmscripten(tc, settings); err != nil {
			return nil, err
		}
	case entities.OSAndroid:
		tc.Set("BUILD_ANDROID_EXAMPLES", entities.Off())
	case entities.OSiOS:
		tc.Set("IOS", entities.Int(1))
		tc.Set("WITH_OPENCL", entities.Off())
		tc.Set("APPLE_FRAMEWORK", entities.Off())
		tc.Set("BUILD_opencv_world", entities.Off())
	}

	for key, value := range installPaths {
		tc.Set(key, entities.String(value))
	}

	return tc, nil
}

// applyCodecs sets the image codec switches. An enabled substitute always
// disables the bundled or alternate codec it replaces.
func applyCodecs(tc *entities.Toolchain, options entities.Options) {
	tc.Set("WITH_SPNG", entities.Switch(options.WithSPNG))
	tc.Set("WITH_PNG", entities.Switch(!options.WithSPNG))

	tc.Set("WITH_OPENJPEG", entities.Off())
	tc.Set("WITH_JASPER", entities.Off())
	tc.Set("WITH_JPEG", entities.On())
	tc.Set("BUILD_JPEG", entities.Switch(!options.WithJPEGTurbo))
}

func applyEmscripten(tc *entities.Toolchain, settings entities.Settings) error {
	tc.Set("WITH_ITT", entities.Off())
	tc.Set("WITH_QUIRC", entities.Off())
	tc.Set("WITH_ADE", entities.Off())
	tc.Set("BUILD_opencv_js", entities.Off())
	tc.Set("CPU_BASELINE", entities.String(""))
	tc.Set("CPU_DISPATCH", entities.String(""))
	tc.Set("CV_ENABLE_INTRINSICS", entities.Switch(settings.SIMD))
	tc.Set("BUILD_WASM_INTRIN_TESTS", entities.Off())

	// emsdk 3.1.31 moved the version macros to <emscripten/version.h>, which OpenCV does not include
	parts, err := EmscriptenVersionParts(settings.SDKVersion)
	if err != nil {
		return &entities.InvalidConfigurationError{Setting: "os.sdk_version", Reason: err.Error()}
	}
	tc.Define("__EMSCRIPTEN_major__", parts[0])
	tc.Define("__EMSCRIPTEN_minor__", parts[1])
	tc.Define("__EMSCRIPTEN_tiny__", parts[2])
	return nil
}

// ExtraModulesPath returns the opencv_contrib modules folder with forward slashes
func ExtraModulesPath(sourceFolder string) string {
	return path.Join(filepath.ToSlash(sourceFolder), "opencv_contrib", "modules")
}

// ApplyExtraVariables adds recipe-defined variables that the table does not own
func ApplyExtraVariables(tc *entities.Toolchain, extra map[string]string) error {
	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		_, owned := tc.Get(key)
		_, platform := tc.Platform[key]
		if owned || platform || isCacheBasic(key) {
			return &entities.InvalidConfigurationError{
				Setting: "variables." + key,
				Reason:  "managed by the recipe and cannot be overridden",
			}
		}
		tc.Set(key, entities.String(extra[key]))
	}
	return nil
}

func isCacheBasic(key string) bool {
	switch key {
	case "CMAKE_BUILD_TYPE", "BUILD_SHARED_LIBS", "CMAKE_POSITION_INDEPENDENT_CODE", "CMAKE_INSTALL_PREFIX", "CMAKE_TOOLCHAIN_FILE":
		return true
	}
	return false
}
