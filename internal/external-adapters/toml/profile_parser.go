// Package toml loads build profiles from TOML files and validates them against an embedded CUE schema.
package toml

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/ochairo/cvpack/internal/domain/entities"
)

//go:embed profile_schema.cue
var profileSchema []byte

// DefaultBuildType is used when a profile names no build_type
const DefaultBuildType = "Release"

// maxProfileSize bounds profile files before they are decoded
const maxProfileSize = 1 << 20

// settingAliases maps dotted sub-setting names to profile keys
var settingAliases = map[string]string{
	"os.api_level":     "api_level",
	"os.sdk_version":   "sdk_version",
	"os.simd":          "simd",
	"compiler.version": "compiler_version",
	"compiler.runtime": "compiler_runtime",
}

var (
	intSettings  = map[string]bool{"api_level": true}
	boolSettings = map[string]bool{"simd": true}
)

type profileDoc struct {
	Settings entities.Settings `json:"settings"`
	Options  map[string]bool   `json:"options"`
	Conf     entities.Conf     `json:"conf"`
}

// ProfileParser decodes and validates profiles
type ProfileParser struct{}

// NewProfileParser creates a new profile parser
func NewProfileParser() *ProfileParser {
	return &ProfileParser{}
}

// Parse decodes TOML profile data, applies overrides and validates the result.
// Empty data yields a profile built from overrides alone.
func (p *ProfileParser) Parse(name string, data []byte, overrides entities.ProfileOverrides) (*entities.Profile, error) {
	if len(data) > maxProfileSize {
		return nil, fmt.Errorf("profile %s exceeds %d bytes", name, maxProfileSize)
	}

	raw := map[string]any{}
	if len(data) > 0 {
		if err := gotoml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse profile %s: %w", name, err)
		}
	}

	if err := applyOverrides(raw, overrides); err != nil {
		return nil, err
	}
	if settings, ok := raw["settings"].(map[string]any); ok {
		if _, set := settings["build_type"]; !set {
			settings["build_type"] = DefaultBuildType
		}
	}

	doc, err := validate(name, raw)
	if err != nil {
		return nil, err
	}

	return &entities.Profile{
		Name:     name,
		Settings: doc.Settings,
		Options:  doc.Options,
		Conf:     doc.Conf,
	}, nil
}

func applyOverrides(raw map[string]any, overrides entities.ProfileOverrides) error {
	if len(overrides.Settings) > 0 {
		settings, err := table(raw, "settings")
		if err != nil {
			return err
		}
		for _, key := range sortedKeys(overrides.Settings) {
			value := overrides.Settings[key]
			name := key
			if alias, ok := settingAliases[key]; ok {
				name = alias
			}

			switch {
			case intSettings[name]:
				n, err := strconv.Atoi(value)
				if err != nil {
					return &entities.InvalidConfigurationError{Setting: key, Reason: fmt.Sprintf("%q is not an integer", value)}
				}
				settings[name] = n
			case boolSettings[name]:
				b, err := strconv.ParseBool(value)
				if err != nil {
					return &entities.InvalidConfigurationError{Setting: key, Reason: fmt.Sprintf("%q is not a boolean", value)}
				}
				settings[name] = b
			default:
				settings[name] = value
			}
		}
	}

	if len(overrides.Options) > 0 {
		options, err := table(raw, "options")
		if err != nil {
			return err
		}
		for _, key := range sortedKeys(overrides.Options) {
			b, err := strconv.ParseBool(overrides.Options[key])
			if err != nil {
				return &entities.InvalidConfigurationError{Setting: "options." + key, Reason: fmt.Sprintf("%q is not a boolean", overrides.Options[key])}
			}
			options[key] = b
		}
	}

	if len(overrides.Conf) > 0 {
		conf, err := table(raw, "conf")
		if err != nil {
			return err
		}
		for _, key := range sortedKeys(overrides.Conf) {
			conf[key] = overrides.Conf[key]
		}
	}

	return nil
}

// table returns raw[name] as a table, creating it when absent
func table(raw map[string]any, name string) (map[string]any, error) {
	existing, ok := raw[name]
	if !ok {
		t := map[string]any{}
		raw[name] = t
		return t, nil
	}
	t, ok := existing.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("profile key %q must be a table", name)
	}
	return t, nil
}

func validate(name string, raw map[string]any) (*profileDoc, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(profileSchema, cue.Filename("profile_schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile profile schema: %w", schema.Err())
	}

	root := schema.LookupPath(cue.ParsePath("#Profile"))
	if root.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition #Profile not found: %w", root.Err())
	}

	user := ctx.Encode(raw)
	if user.Err() != nil {
		return nil, formatError(name, user.Err())
	}

	unified := root.Unify(user)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatError(name, err)
	}

	var doc profileDoc
	if err := unified.Decode(&doc); err != nil {
		return nil, formatError(name, err)
	}
	return &doc, nil
}

// formatError flattens CUE errors into a single InvalidConfigurationError
func formatError(name string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &entities.InvalidConfigurationError{Setting: "profile " + name, Reason: err.Error()}
	}

	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		path := strings.Join(cueerrors.Path(e), ".")
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path != "" {
			msg = path + ": " + msg
		}
		lines = append(lines, msg)
	}
	sort.Strings(lines)

	return &entities.InvalidConfigurationError{Setting: "profile " + name, Reason: strings.Join(lines, "; ")}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
