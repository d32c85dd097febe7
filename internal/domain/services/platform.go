package services

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

// androidABIs maps arch settings to NDK ABI names
var androidABIs = map[string]string{
	"armv7":  "armeabi-v7a",
	"armv8":  "arm64-v8a",
	"x86":    "x86",
	"x86_64": "x86_64",
}

// appleArchs maps arch settings to CMAKE_OSX_ARCHITECTURES values
var appleArchs = map[string]string{
	"armv7":  "armv7",
	"armv8":  "arm64",
	"x86":    "i386",
	"x86_64": "x86_64",
}

// bitnessFlags select the word size for gcc and clang on desktop targets
var bitnessFlags = map[string]string{
	"x86":    "-m32",
	"x86_64": "-m64",
}

const (
	ndkToolchain    = "build/cmake/android.toolchain.cmake"
	emsdkToolchain  = "upstream/emscripten/cmake/Modules/Platform/Emscripten.cmake"
	iosSysroot      = "iphoneos"
	iosSimulatorSDK = "iphonesimulator"
)

// ApplyPlatform adds the variables and toolchain includes that make CMake
// compile for settings instead of for the host.
func ApplyPlatform(tc *entities.Toolchain, settings entities.Settings, conf entities.Conf) error {
	if conf.UserToolchain != "" {
		tc.Includes = append(tc.Includes, filepath.ToSlash(conf.UserToolchain))
	}

	switch settings.OS {
	case entities.OSAndroid:
		if err := applyAndroid(tc, settings, conf); err != nil {
			return err
		}
	case entities.OSiOS:
		arch, ok := appleArchs[settings.Arch]
		if !ok {
			return archError(settings)
		}
		tc.SetPlatform("CMAKE_SYSTEM_NAME", "iOS")
		tc.SetPlatform("CMAKE_OSX_ARCHITECTURES", arch)
		sysroot := iosSysroot
		if settings.Arch == "x86_64" {
			sysroot = iosSimulatorSDK
		}
		tc.SetPlatform("CMAKE_OSX_SYSROOT", sysroot)
	case entities.OSMacos:
		arch, ok := appleArchs[settings.Arch]
		if !ok {
			return archError(settings)
		}
		tc.SetPlatform("CMAKE_OSX_ARCHITECTURES", arch)
	case entities.OSEmscripten:
		switch {
		case conf.Emsdk != "":
			tc.Includes = append(tc.Includes, path.Join(filepath.ToSlash(conf.Emsdk), emsdkToolchain))
		case conf.UserToolchain == "":
			return &entities.InvalidConfigurationError{
				Setting: "conf.emsdk",
				Reason:  "Emscripten builds need conf.emsdk or conf.user_toolchain",
			}
		}
	case entities.OSLinux:
		if settings.Compiler == "gcc" || settings.Compiler == "clang" {
			tc.ArchFlags = bitnessFlags[settings.Arch]
		}
	}

	if conf.CCompiler != "" {
		tc.SetPlatform("CMAKE_C_COMPILER", filepath.ToSlash(conf.CCompiler))
	}
	if conf.CXXCompiler != "" {
		tc.SetPlatform("CMAKE_CXX_COMPILER", filepath.ToSlash(conf.CXXCompiler))
	}
	return nil
}

// applyAndroid sets both the NDK toolchain variables and CMake's built-in
// Android variables, so the build works with or without conf.android_ndk.
// Without it CMake finds the NDK through ANDROID_NDK_ROOT.
func applyAndroid(tc *entities.Toolchain, settings entities.Settings, conf entities.Conf) error {
	abi, ok := androidABIs[settings.Arch]
	if !ok {
		return archError(settings)
	}
	api := strconv.Itoa(settings.APILevel)

	tc.SetPlatform("CMAKE_SYSTEM_NAME", "Android")
	tc.SetPlatform("CMAKE_SYSTEM_VERSION", api)
	tc.SetPlatform("CMAKE_ANDROID_ARCH_ABI", abi)
	tc.SetPlatform("ANDROID_PLATFORM", "android-"+api)
	tc.SetPlatform("ANDROID_ABI", abi)
	if conf.AndroidSTL != "" {
		tc.SetPlatform("ANDROID_STL", conf.AndroidSTL)
		tc.SetPlatform("CMAKE_ANDROID_STL_TYPE", conf.AndroidSTL)
	}
	if conf.AndroidNDK != "" {
		tc.Includes = append(tc.Includes, path.Join(filepath.ToSlash(conf.AndroidNDK), ndkToolchain))
	}
	return nil
}

func archError(settings entities.Settings) error {
	return &entities.InvalidConfigurationError{
		Setting: "arch",
		Reason:  fmt.Sprintf("%s is not a valid architecture for %s", settings.Arch, settings.OS),
	}
}
