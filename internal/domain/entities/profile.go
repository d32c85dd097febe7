package entities

// Profile is a named set of settings and option overrides for one target
type Profile struct {
	Name     string
	Settings Settings
	Options  map[string]bool
	Conf     Conf
}

// Conf locates the tools a cross build needs. None of it changes the
// package identity, so it is kept apart from Settings.
type Conf struct {
	UserToolchain string `json:"user_toolchain,omitempty"` // included before the generated variables
	AndroidNDK    string `json:"android_ndk,omitempty"`    // NDK root
	AndroidSTL    string `json:"android_stl,omitempty"`
	Emsdk         string `json:"emsdk,omitempty"` // emsdk root
	CCompiler     string `json:"c_compiler,omitempty"`
	CXXCompiler   string `json:"cxx_compiler,omitempty"`
}

// ProfileOverrides are key=value pairs applied on top of a profile file
type ProfileOverrides struct {
	Settings map[string]string
	Options  map[string]string
	Conf     map[string]string
}
