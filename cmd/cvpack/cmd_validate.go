package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	validateTarget targetFlags

	validateCmd = &cobra.Command{
		Use:   "validate [recipe]",
		Short: "Check that a recipe can be built for the selected target",
		Example: `  cvpack validate --profile android-armv8
  cvpack validate -s os=Android -s arch=armv8 -s os.api_level=21`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}
)

func init() {
	validateTarget.register(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	plan, err := a.plan(cmd.Context(), recipeArg(args), validateTarget)
	if err != nil {
		return classify(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s for %s\n",
		successStyle.Render("✓ valid:"), plan.Recipe.Name, plan.Recipe.Version, keyStyle.Render(plan.Settings.Target()))
	return nil
}
