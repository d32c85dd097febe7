// Package gateways defines contracts for the external tools the build drives.
package gateways

import (
	"context"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

// BuildSystem drives the external native build system through its lifecycle
type BuildSystem interface {
	// Configure generates the native build tree from the toolchain file.
	// cacheArgs are -DKEY=VALUE pairs that replace stale cache entries.
	Configure(ctx context.Context, layout entities.Layout, toolchainFile string, cacheArgs []string) error

	// Build compiles the configured tree
	Build(ctx context.Context, layout entities.Layout, buildType string) error

	// Install copies the build outputs into the package folder
	Install(ctx context.Context, layout entities.Layout, buildType string) error
}
