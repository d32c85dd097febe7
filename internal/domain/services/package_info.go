package services

import "github.com/ochairo/cvpack/internal/domain/entities"

// PackageInfoFor describes how consumers find the installed package.
// OpenCV installs its own OpenCVConfig.cmake under cmake/, so no find module is generated.
func PackageInfoFor(recipe *entities.Recipe, settings entities.Settings, options entities.Options, reqs []entities.Requirement) *entities.PackageInfo {
	if !FPICApplies(settings, options) {
		options.FPIC = false
	}
	return &entities.PackageInfo{
		Name:          recipe.Name,
		Version:       recipe.Version,
		Settings:      settings,
		Options:       options,
		CMakeFindMode: "none",
		CMakeFileName: "OpenCV",
		IncludeDirs:   []string{"include"},
		LibDirs:       []string{"lib"},
		BinDirs:       []string{"bin"},
		BuildDirs:     []string{"cmake"},
		Requires:      reqs,
	}
}
