package io

import (
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/rivergraph/pkg/errors"
	"github.com/matzehuels/rivergraph/pkg/river"
)

// FallbackNameField is consulted when a feature lacks the configured name
// property.
const FallbackNameField = "name"

// ReadOptions configures feature loading.
type ReadOptions struct {
	// NameField is the property holding the channel name.
	NameField string
	// DefaultName is used when neither NameField nor FallbackNameField is
	// set to a string.
	DefaultName string
}

// LoadStats counts what [ReadFeatures] kept and skipped.
type LoadStats struct {
	Features    int // Features returned
	NullGeom    int // Returned with a nil geometry
	Unsupported int // Skipped for a non-line geometry type
}

// ReadFeatures decodes a GeoJSON FeatureCollection from r.
// Returned features keep input order; their positions are the feature
// indices used by later stages.
func ReadFeatures(r io.Reader, opts ReadOptions) ([]river.Feature, LoadStats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, LoadStats{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read features")
	}
	return DecodeFeatures(data, opts)
}

// DecodeFeatures is [ReadFeatures] for input already in memory.
func DecodeFeatures(data []byte, opts ReadOptions) ([]river.Feature, LoadStats, error) {
	var stats LoadStats
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, stats, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode GeoJSON")
	}

	features := make([]river.Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		var g orb.Geometry
		switch typed := f.Geometry.(type) {
		case nil:
			stats.NullGeom++
		case orb.LineString, orb.MultiLineString:
			g = typed
		default:
			stats.Unsupported++
			continue
		}
		features = append(features, river.Feature{
			Name:     featureName(f.Properties, opts),
			Geometry: g,
		})
	}
	stats.Features = len(features)
	return features, stats, nil
}

func featureName(props geojson.Properties, opts ReadOptions) string {
	for _, key := range []string{opts.NameField, FallbackNameField} {
		if key == "" {
			continue
		}
		if s, ok := props[key].(string); ok && s != "" {
			return s
		}
	}
	return opts.DefaultName
}

// ImportFeatures reads a GeoJSON file at path.
func ImportFeatures(path string, opts ReadOptions) ([]river.Feature, LoadStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, LoadStats{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, LoadStats{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return DecodeFeatures(data, opts)
}
