package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ochairo/cvpack/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/cvpack/internal/domain-orchestrators"
)

var (
	toolchainTarget targetFlags
	toolchainFormat string

	toolchainCmd = &cobra.Command{
		Use:   "toolchain [recipe]",
		Short: "Print the derived CMake configuration",
		Long: `Toolchain prints the variables and preprocessor definitions derived for the
selected target without exporting sources or resolving requirements.

Formats:
  table  aligned KEY VALUE listing (default)
  args   -DKEY=VALUE arguments for a cmake command line
  cmake  the toolchain file cvpack writes into the generators folder
  json   platform, includes, variables and definitions as JSON

Android, iOS and Emscripten targets get a platform block selecting the
cross toolchain. NDK and emsdk roots come from the profile [conf] table,
-c overrides, or the ANDROID_NDK_ROOT and EMSDK environment variables.`,
		Example: `  cvpack toolchain --profile emscripten
  cvpack toolchain --profile linux --format args`,
		Args: cobra.MaximumNArgs(1),
		RunE: runToolchain,
	}
)

func init() {
	toolchainTarget.register(toolchainCmd)
	toolchainCmd.Flags().StringVarP(&toolchainFormat, "format", "f", "table", "output format: table, args, cmake, json")
}

func runToolchain(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	plan, err := a.plan(cmd.Context(), recipeArg(args), toolchainTarget)
	if err != nil {
		return classify(err)
	}

	return classify(printToolchain(cmd.OutOrStdout(), plan, toolchainFormat))
}

func printToolchain(w io.Writer, plan *orchestrators.BuildPlan, format string) error {
	tc := plan.Toolchain

	switch format {
	case "args":
		quoted, err := gateways.QuoteArgs(append(tc.PlatformArgs(), tc.CacheArgs()...))
		if err != nil {
			return err
		}
		fmt.Fprintln(w, quoted)
	case "cmake":
		fmt.Fprint(w, gateways.RenderToolchain(tc, nil))
	case "json":
		doc := struct {
			Target      string            `json:"target"`
			Platform    map[string]string `json:"platform,omitempty"`
			Includes    []string          `json:"includes,omitempty"`
			Variables   map[string]string `json:"variables"`
			Definitions map[string]string `json:"definitions,omitempty"`
		}{
			Target:      plan.Settings.Target(),
			Platform:    tc.Platform,
			Includes:    tc.Includes,
			Variables:   map[string]string{},
			Definitions: tc.PreprocessorDefinitions,
		}
		for _, arg := range tc.CacheArgs() {
			key, value, _ := strings.Cut(strings.TrimPrefix(arg, "-D"), "=")
			doc.Variables[key] = value
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "table":
		fmt.Fprintln(w, titleStyle.Render(plan.Recipe.Name+" "+plan.Recipe.Version)+" "+subtitleStyle.Render(plan.Settings.Target()))
		cacheArgs := append(tc.PlatformArgs(), tc.CacheArgs()...)
		width := 0
		for _, arg := range cacheArgs {
			key, _, _ := strings.Cut(strings.TrimPrefix(arg, "-D"), "=")
			width = max(width, len(key))
		}
		for _, arg := range cacheArgs {
			key, value, _ := strings.Cut(strings.TrimPrefix(arg, "-D"), "=")
			fmt.Fprintf(w, "  %s %s\n", keyStyle.Render(fmt.Sprintf("%-*s", width, key)), value)
		}
		if len(tc.Includes) > 0 {
			fmt.Fprintln(w, subtitleStyle.Render("includes:"))
			for _, include := range tc.Includes {
				fmt.Fprintf(w, "  %s\n", include)
			}
		}
		if names := tc.DefinitionNames(); len(names) > 0 {
			fmt.Fprintln(w, subtitleStyle.Render("definitions:"))
			for _, name := range names {
				fmt.Fprintf(w, "  %s=%s\n", name, tc.PreprocessorDefinitions[name])
			}
		}
	default:
		return &ExitError{Code: exitFailure, Err: fmt.Errorf("unknown format %q (want table, args, cmake or json)", format)}
	}
	return nil
}
