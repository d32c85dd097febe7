package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ochairo/cvpack/internal/domain-adapters/gateways"
)

var (
	requirementsTarget  targetFlags
	requirementsResolve bool

	requirementsCmd = &cobra.Command{
		Use:   "requirements [recipe]",
		Short: "List the dependencies the package links against",
		Example: `  cvpack requirements --profile linux
  cvpack requirements -o with_spng=false --resolve`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRequirements,
	}
)

func init() {
	requirementsTarget.register(requirementsCmd)
	requirementsCmd.Flags().BoolVar(&requirementsResolve, "resolve", false, "locate each requirement under the deps directory")
}

func runRequirements(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	plan, err := a.plan(cmd.Context(), recipeArg(args), requirementsTarget)
	if err != nil {
		return classify(err)
	}

	out := cmd.OutOrStdout()
	if !requirementsResolve {
		for _, req := range plan.Requirements {
			fmt.Fprintln(out, req.Reference())
		}
		return nil
	}

	deps, err := gateways.NewDependencyResolver(a.cfg.DepsDir).Resolve(plan.Requirements)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), warningStyle.Render("missing: ")+err.Error())
		return classify(err)
	}
	for _, dep := range deps {
		fmt.Fprintf(out, "%s %s\n", dep.Reference(), subtitleStyle.Render(dep.Prefix))
	}
	return nil
}
