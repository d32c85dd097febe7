package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available recipes and profiles",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	recipes, err := a.recipes.ListRecipes(ctx)
	if err != nil {
		return classify(err)
	}
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Recipes (%d total):", len(recipes))))
	for _, r := range recipes {
		fmt.Fprintf(out, "  %s %s", keyStyle.Render(r.Name), r.Version)
		if r.Description != "" {
			fmt.Fprintf(out, " %s", subtitleStyle.Render("- "+r.Description))
		}
		fmt.Fprintln(out)
	}

	profiles, err := a.profiles.ListProfiles(ctx)
	if err != nil {
		return classify(err)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Profiles (%d total):", len(profiles))))
	for _, name := range profiles {
		profile, err := a.profiles.GetProfile(ctx, name)
		if err != nil {
			fmt.Fprintf(out, "  %s %s\n", keyStyle.Render(name), warningStyle.Render("invalid: "+err.Error()))
			continue
		}
		fmt.Fprintf(out, "  %s %s\n", keyStyle.Render(name), subtitleStyle.Render(profile.Settings.Target()))
	}
	return nil
}
