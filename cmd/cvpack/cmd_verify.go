package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ochairo/cvpack/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/cvpack/internal/domain-orchestrators"
	"github.com/ochairo/cvpack/internal/domain/interfaces"
	domaingateways "github.com/ochairo/cvpack/internal/domain/interfaces/gateways"
)

var (
	verifyDir     string
	verifyVersion string
	verifyKeyring []string

	verifyCmd = &cobra.Command{
		Use:   "verify [recipe]",
		Short: "Verify checksums and signatures of published packages",
		Long: `Verify finds every <name>-<version>-* archive under the output directory and
checks its .sha256/.sha512 sidecars. When --keyring is given, each archive must
also carry a valid .asc signature from one of the keys.`,
		Example: `  cvpack verify
  cvpack verify opencv --version 4.10.0 --keyring release-public.asc`,
		Args: cobra.MaximumNArgs(1),
		RunE: runVerify,
	}
)

func init() {
	verifyCmd.Flags().StringVar(&verifyDir, "dir", "", "directory to search (default: output_dir from config)")
	verifyCmd.Flags().StringVar(&verifyVersion, "version", "", "only verify this version")
	verifyCmd.Flags().StringArrayVar(&verifyKeyring, "keyring", nil, "OpenPGP public key file; repeatable")
}

func runVerify(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	dir := verifyDir
	if dir == "" {
		dir = a.cfg.OutputDir
	}

	var verifier domaingateways.SignatureVerifier
	if len(verifyKeyring) > 0 {
		v, err := gateways.NewGPGVerifier(verifyKeyring...)
		if err != nil {
			return classify(err)
		}
		a.logger.Debug("loaded keyring", interfaces.F("keys", v.GetKeyringSize()))
		verifier = v
	}

	orch := orchestrators.NewVerifyOrchestrator(gateways.NewArtifactFinder(), gateways.NewChecksumVerifier(), verifier)
	result, err := orch.Verify(cmd.Context(), dir, recipeArg(args), verifyVersion)
	if result != nil {
		fmt.Fprintln(cmd.OutOrStdout(), result.GetVerifySummary())
	}
	return classify(err)
}
