package toml

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

const androidProfile = `
[settings]
os = "Android"
arch = "armv8"
build_type = "Release"
compiler = "clang"
compiler_version = "17"
api_level = 24

[options]
shared = true
`

func TestProfileParser_Parse(t *testing.T) {
	profile, err := NewProfileParser().Parse("android", []byte(androidProfile), entities.ProfileOverrides{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := entities.Settings{
		OS:              entities.OSAndroid,
		Arch:            "armv8",
		BuildType:       "Release",
		Compiler:        "clang",
		CompilerVersion: "17",
		APILevel:        24,
	}
	if diff := cmp.Diff(want, profile.Settings); diff != "" {
		t.Errorf("Settings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]bool{"shared": true}, profile.Options); diff != "" {
		t.Errorf("Options mismatch (-want +got):\n%s", diff)
	}
	if profile.Name != "android" {
		t.Errorf("Name = %s", profile.Name)
	}
}

func TestProfileParser_Overrides(t *testing.T) {
	overrides := entities.ProfileOverrides{
		Settings: map[string]string{"os.api_level": "30", "build_type": "Debug"},
		Options:  map[string]string{"with_spng": "False", "shared": "false"},
	}

	profile, err := NewProfileParser().Parse("android", []byte(androidProfile), overrides)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if profile.Settings.APILevel != 30 || profile.Settings.BuildType != "Debug" {
		t.Errorf("Settings = %+v", profile.Settings)
	}
	if diff := cmp.Diff(map[string]bool{"shared": false, "with_spng": false}, profile.Options); diff != "" {
		t.Errorf("Options mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileParser_OverridesOnly(t *testing.T) {
	overrides := entities.ProfileOverrides{Settings: map[string]string{
		"os":          "Emscripten",
		"arch":        "wasm",
		"sdk_version": "3.1.31",
		"os.simd":     "true",
	}}

	profile, err := NewProfileParser().Parse("(overrides)", nil, overrides)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if profile.Settings.BuildType != DefaultBuildType {
		t.Errorf("BuildType = %q, want default", profile.Settings.BuildType)
	}
	if !profile.Settings.SIMD || profile.Settings.SDKVersion != "3.1.31" {
		t.Errorf("Settings = %+v", profile.Settings)
	}
}

func TestProfileParser_Conf(t *testing.T) {
	data := androidProfile + "\n[conf]\nandroid_ndk = \"/opt/android-ndk-r26\"\nandroid_stl = \"c++_static\"\n"
	overrides := entities.ProfileOverrides{Conf: map[string]string{"android_stl": "c++_shared"}}

	profile, err := NewProfileParser().Parse("android", []byte(data), overrides)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := entities.Conf{AndroidNDK: "/opt/android-ndk-r26", AndroidSTL: "c++_shared"}
	if diff := cmp.Diff(want, profile.Conf); diff != "" {
		t.Errorf("Conf mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileParser_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		overrides entities.ProfileOverrides
		wantText  string
	}{
		{
			name:     "unknown os",
			data:     "[settings]\nos = \"Plan9\"\narch = \"x86_64\"\n",
			wantText: "settings.os",
		},
		{
			name:     "android without api level",
			data:     "[settings]\nos = \"Android\"\narch = \"armv8\"\n",
			wantText: "api_level",
		},
		{
			name:     "emscripten without sdk version",
			data:     "[settings]\nos = \"Emscripten\"\narch = \"wasm\"\n",
			wantText: "sdk_version",
		},
		{
			name:     "unknown setting",
			data:     "[settings]\nos = \"Linux\"\narch = \"x86_64\"\nlibc = \"musl\"\n",
			wantText: "libc",
		},
		{
			name:     "unknown option",
			data:     "[settings]\nos = \"Linux\"\narch = \"x86_64\"\n[options]\nwith_ffmpeg = true\n",
			wantText: "with_ffmpeg",
		},
		{
			name:      "non-numeric api level override",
			data:      androidProfile,
			overrides: entities.ProfileOverrides{Settings: map[string]string{"api_level": "latest"}},
			wantText:  "not an integer",
		},
		{
			name:     "unknown conf key",
			data:     "[settings]\nos = \"Linux\"\narch = \"x86_64\"\n[conf]\nsysroot = \"/opt\"\n",
			wantText: "sysroot",
		},
		{
			name:      "unsupported android stl",
			data:      androidProfile,
			overrides: entities.ProfileOverrides{Conf: map[string]string{"android_stl": "gnustl"}},
			wantText:  "conf.android_stl",
		},
		{
			name:      "non-boolean option override",
			data:      androidProfile,
			overrides: entities.ProfileOverrides{Options: map[string]string{"shared": "maybe"}},
			wantText:  "not a boolean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProfileParser().Parse("test", []byte(tt.data), tt.overrides)
			if !errors.Is(err, entities.ErrInvalidConfiguration) {
				t.Fatalf("Parse() error = %v, want ErrInvalidConfiguration", err)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error %q should mention %q", err, tt.wantText)
			}
		})
	}
}

func TestProfileParser_MalformedTOML(t *testing.T) {
	_, err := NewProfileParser().Parse("broken", []byte("[settings\nos = "), entities.ProfileOverrides{})
	if err == nil {
		t.Error("Parse() should fail on malformed TOML")
	}
}
