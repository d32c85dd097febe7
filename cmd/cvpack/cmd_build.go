package main

import (
	"fmt"

	"github.com/spf13/cobra"

	orchestrators "github.com/ochairo/cvpack/internal/domain-orchestrators"
)

var (
	buildTarget       targetFlags
	buildGenerateOnly bool
	buildSign         bool

	buildCmd = &cobra.Command{
		Use:   "build [recipe]",
		Short: "Export sources, run cmake and package the install folder",
		Long: `Build runs the full lifecycle for one target: validate, resolve requirements,
export sources, write the toolchain and presets, configure, build, install,
write package metadata, archive, and emit checksums, SBOM and provenance.`,
		Example: `  cvpack build --profile linux
  cvpack build opencv --profile android-armv8 -o shared=true
  cvpack build opencv --profile ios --generate-only
  cvpack build opencv --profile windows-msvc --sign`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}
)

func init() {
	buildTarget.register(buildCmd)
	buildCmd.Flags().BoolVar(&buildGenerateOnly, "generate-only", false, "stop after writing the toolchain file and presets")
	buildCmd.Flags().BoolVar(&buildSign, "sign", false, "sign the archive with the configured OpenPGP key")
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	profile, err := a.loadProfile(ctx, buildTarget)
	if err != nil {
		return classify(err)
	}

	orch, err := a.newBuildOrchestrator(buildSign, cmd.OutOrStdout())
	if err != nil {
		return classify(err)
	}

	result, err := orch.BuildPackage(ctx, orchestrators.BuildRequest{
		Recipe:       recipeArg(args),
		Profile:      profile,
		GenerateOnly: buildGenerateOnly,
		Sign:         buildSign,
	})
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("✗ ")+result.GetBuildSummary())
		return classify(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ ")+result.GetBuildSummary())
	return nil
}
