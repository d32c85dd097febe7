package entities

// PackageInfo is the metadata published for consumers of the built package
type PackageInfo struct {
	Name          string        `json:"name"`
	Version       string        `json:"version"`
	Settings      Settings      `json:"settings"`
	Options       Options       `json:"options"`
	CMakeFindMode string        `json:"cmake_find_mode"`
	CMakeFileName string        `json:"cmake_file_name"`
	IncludeDirs   []string      `json:"includedirs"`
	LibDirs       []string      `json:"libdirs"`
	BinDirs       []string      `json:"bindirs"`
	BuildDirs     []string      `json:"builddirs"`
	Requires      []Requirement `json:"requires"`
}
