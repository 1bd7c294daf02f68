package cache

// Keyer generates cache keys.
type Keyer interface {
	// NetworkKey identifies a built network by input hash and build options.
	NetworkKey(inputHash string, opts NetworkKeyOpts) string

	// ArtifactKey identifies a rendered artifact by graph hash and render options.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// NetworkKeyOpts holds every build option that affects the resulting graph.
type NetworkKeyOpts struct {
	SnapTolerance     float64  `json:"snap_tolerance"`
	SegmentLengthKm   float64  `json:"segment_length_km"`
	StartEdgeID       int64    `json:"start_edge_id"`
	NameField         string   `json:"name_field"`
	DefaultName       string   `json:"default_name"`
	LengthMethod      string   `json:"length_method"`
	ProximityRadiusKm float64  `json:"proximity_radius_km"`
	Dissolve          bool     `json:"dissolve"`
	Filter            []string `json:"filter,omitempty"`
}

// ArtifactKeyOpts holds the render options that affect an artifact.
type ArtifactKeyOpts struct {
	Format        string  `json:"format"`
	Detailed      bool    `json:"detailed"`
	Scale         float64 `json:"scale"`
	HideProximity bool    `json:"hide_proximity"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// NetworkKey returns "network:<sha256>".
func (DefaultKeyer) NetworkKey(inputHash string, opts NetworkKeyOpts) string {
	return hashKey("network", inputHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}
