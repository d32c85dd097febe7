package entities

import (
	"fmt"
	"sort"
	"strconv"
)

// ValueKind classifies a build-system variable value
type ValueKind int

const (
	// KindUnset marks a zero Value
	KindUnset ValueKind = iota
	// KindSwitch is an ON/OFF value
	KindSwitch
	// KindString is a free-form string value
	KindString
	// KindInt is an integer value
	KindInt
)

// Value is a single build-system variable value
type Value struct {
	kind ValueKind
	on   bool
	str  string
	num  int
}

// On returns the ON switch
func On() Value { return Value{kind: KindSwitch, on: true} }

// Off returns the OFF switch
func Off() Value { return Value{kind: KindSwitch} }

// Switch returns ON when b is true and OFF otherwise
func Switch(b bool) Value { return Value{kind: KindSwitch, on: b} }

// String returns a string value
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int returns an integer value
func Int(n int) Value { return Value{kind: KindInt, num: n} }

// Kind returns the value's kind
func (v Value) Kind() ValueKind { return v.kind }

// IsSet reports whether v holds a value
func (v Value) IsSet() bool { return v.kind != KindUnset }

// Enabled reports whether v is the ON switch
func (v Value) Enabled() bool { return v.kind == KindSwitch && v.on }

// String renders the value the way CMake expects it on the command line
func (v Value) String() string {
	switch v.kind {
	case KindSwitch:
		if v.on {
			return "ON"
		}
		return "OFF"
	case KindString:
		return v.str
	case KindInt:
		return strconv.Itoa(v.num)
	default:
		return ""
	}
}

// MarshalText renders the value for JSON and YAML encoders
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Toolchain is the full set of build-system configuration derived for a target
type Toolchain struct {
	BuildType               string
	SharedLibs              bool
	PositionIndependentCode Value // unset when fPIC does not apply
	Variables               map[string]Value
	PreprocessorDefinitions map[string]string

	// Platform selects the target system. These are plain variables that
	// must be defined before CMake enables any language.
	Platform map[string]string
	// Includes are toolchain files read after the platform variables
	Includes []string
	// ArchFlags are appended to the initial C and C++ flags
	ArchFlags string
}

// NewToolchain creates an empty toolchain for a build type
func NewToolchain(buildType string) *Toolchain {
	return &Toolchain{
		BuildType:               buildType,
		Variables:               make(map[string]Value),
		PreprocessorDefinitions: make(map[string]string),
		Platform:                make(map[string]string),
	}
}

// SetPlatform assigns a platform variable
func (t *Toolchain) SetPlatform(key, value string) {
	t.Platform[key] = value
}

// PlatformKeys returns platform variable names in sorted order
func (t *Toolchain) PlatformKeys() []string {
	keys := make([]string, 0, len(t.Platform))
	for k := range t.Platform {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PlatformArgs returns the platform variables as sorted -DKEY=VALUE arguments.
// Includes have no command-line form and are only honoured through the toolchain file.
func (t *Toolchain) PlatformArgs() []string {
	args := make([]string, 0, len(t.Platform))
	for _, k := range t.PlatformKeys() {
		args = append(args, fmt.Sprintf("-D%s=%s", k, t.Platform[k]))
	}
	return args
}

// Set assigns a variable, replacing an earlier value
func (t *Toolchain) Set(key string, value Value) {
	t.Variables[key] = value
}

// Get returns a variable and whether it is defined
func (t *Toolchain) Get(key string) (Value, bool) {
	v, ok := t.Variables[key]
	return v, ok
}

// Define adds a preprocessor definition
func (t *Toolchain) Define(name, value string) {
	t.PreprocessorDefinitions[name] = value
}

// Keys returns variable names in sorted order
func (t *Toolchain) Keys() []string {
	keys := make([]string, 0, len(t.Variables))
	for k := range t.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefinitionNames returns preprocessor definition names in sorted order
func (t *Toolchain) DefinitionNames() []string {
	names := make([]string, 0, len(t.PreprocessorDefinitions))
	for k := range t.PreprocessorDefinitions {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// CacheArgs returns the variables as sorted -DKEY=VALUE arguments
func (t *Toolchain) CacheArgs() []string {
	args := make([]string, 0, len(t.Variables)+3)
	args = append(args, fmt.Sprintf("-DCMAKE_BUILD_TYPE=%s", t.BuildType))
	args = append(args, fmt.Sprintf("-DBUILD_SHARED_LIBS=%s", Switch(t.SharedLibs)))
	if t.PositionIndependentCode.IsSet() {
		args = append(args, fmt.Sprintf("-DCMAKE_POSITION_INDEPENDENT_CODE=%s", t.PositionIndependentCode))
	}
	for _, k := range t.Keys() {
		args = append(args, fmt.Sprintf("-D%s=%s", k, t.Variables[k]))
	}
	return args
}
