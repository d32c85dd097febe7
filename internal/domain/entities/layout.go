package entities

// Layout holds the folders used during a build
type Layout struct {
	SourceFolder     string
	BuildFolder      string
	GeneratorsFolder string
	PackageFolder    string
}
