package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ochairo/cvpack/internal/domain-adapters/gateways"
	"github.com/ochairo/cvpack/internal/domain/entities"
)

var (
	infoTarget  targetFlags
	infoPackage string

	infoCmd = &cobra.Command{
		Use:   "info [recipe]",
		Short: "Print the package metadata consumers use to find the library",
		Long: `Info prints the metadata cvpack writes as cvpack-package.json: CMake find
mode and file name, include/lib/bin/build directories and requirements.
With --package it reads the metadata of an installed package folder instead.`,
		Example: `  cvpack info --profile android-armv8
  cvpack info --package dist/opencv-4.10.0-linux-x86_64-release`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInfo,
	}
)

func init() {
	infoTarget.register(infoCmd)
	infoCmd.Flags().StringVar(&infoPackage, "package", "", "installed package folder to read")
}

func runInfo(cmd *cobra.Command, args []string) error {
	var info *entities.PackageInfo

	if infoPackage != "" {
		read, err := gateways.ReadPackageInfo(infoPackage)
		if err != nil {
			return classify(err)
		}
		info = read
	} else {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		plan, err := a.plan(cmd.Context(), recipeArg(args), infoTarget)
		if err != nil {
			return classify(err)
		}
		info = plan.PackageInfo
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
