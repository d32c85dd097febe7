package entities

// SBOM represents a CycloneDX Software Bill of Materials
type SBOM struct {
	BOMFormat   string      `json:"bomFormat"`
	SpecVersion string      `json:"specVersion"`
	Version     int         `json:"version"`
	Metadata    Metadata    `json:"metadata"`
	Components  []Component `json:"components"`
}

// Component represents a software component in the SBOM
type Component struct {
	Type    string `json:"type"` // "library", "file"
	Name    string `json:"name"`
	Version string `json:"version"`
	PURL    string `json:"purl,omitempty"`
	Hashes  []Hash `json:"hashes,omitempty"`
}

// Hash represents a cryptographic hash of a component
type Hash struct {
	Algorithm string `json:"alg"`
	Value     string `json:"content"`
}

// Metadata contains SBOM generation metadata
type Metadata struct {
	Timestamp string     `json:"timestamp"`
	Tools     []Tool     `json:"tools"`
	Component *Component `json:"component,omitempty"`
}

// Tool represents a tool used to generate the SBOM
type Tool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
