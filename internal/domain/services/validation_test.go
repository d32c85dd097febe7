package services

import (
	"errors"
	"testing"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

func TestValidateConfiguration_AndroidAPILevel(t *testing.T) {
	tests := []struct {
		name     string
		apiLevel int
		wantErr  bool
	}{
		{name: "unset", apiLevel: 0, wantErr: true},
		{name: "far below minimum", apiLevel: 16, wantErr: true},
		{name: "just below minimum", apiLevel: 23, wantErr: true},
		{name: "minimum", apiLevel: 24, wantErr: false},
		{name: "above minimum", apiLevel: 34, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := entities.Settings{OS: entities.OSAndroid, Arch: "armv8", BuildType: "Release", APILevel: tt.apiLevel}

			err := ValidateConfiguration(settings, entities.DefaultOptions())
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateConfiguration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, entities.ErrInvalidConfiguration) {
				t.Errorf("error %v does not wrap ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestValidateConfiguration_APILevelIgnoredOutsideAndroid(t *testing.T) {
	settings := entities.Settings{OS: entities.OSLinux, Arch: "x86_64", BuildType: "Release", APILevel: 10}

	if err := ValidateConfiguration(settings, entities.DefaultOptions()); err != nil {
		t.Errorf("ValidateConfiguration() error = %v, want nil", err)
	}
}

func TestValidateConfiguration_UnsupportedOS(t *testing.T) {
	settings := entities.Settings{OS: "Plan9", Arch: "x86_64", BuildType: "Release"}

	err := ValidateConfiguration(settings, entities.DefaultOptions())
	var cfgErr *entities.InvalidConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want InvalidConfigurationError", err)
	}
	if cfgErr.Setting != "os" {
		t.Errorf("Setting = %s, want os", cfgErr.Setting)
	}
}

func TestValidateConfiguration_MissingBuildType(t *testing.T) {
	settings := entities.Settings{OS: entities.OSLinux, Arch: "x86_64"}

	if err := ValidateConfiguration(settings, entities.DefaultOptions()); !errors.Is(err, entities.ErrInvalidConfiguration) {
		t.Errorf("error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestValidateConfiguration_EmscriptenSDKVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"3.1.31", false},
		{"3.1", true},
		{"", true},
		{"3.1.x", true},
		{"3.1.31.1", true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			settings := entities.Settings{OS: entities.OSEmscripten, Arch: "wasm", BuildType: "Release", SDKVersion: tt.version}
			err := ValidateConfiguration(settings, entities.DefaultOptions())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfiguration(%q) error = %v, wantErr %v", tt.version, err, tt.wantErr)
			}
		})
	}
}

func TestFPICApplies(t *testing.T) {
	static := entities.DefaultOptions()
	shared := entities.DefaultOptions()
	shared.Shared = true

	if !FPICApplies(entities.Settings{OS: entities.OSLinux}, static) {
		t.Error("fPIC should apply to static Linux builds")
	}
	if FPICApplies(entities.Settings{OS: entities.OSLinux}, shared) {
		t.Error("fPIC should not apply to shared builds")
	}
	if FPICApplies(entities.Settings{OS: entities.OSWindows}, static) {
		t.Error("fPIC should not apply on Windows")
	}
}
