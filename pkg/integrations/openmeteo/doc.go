// Package openmeteo looks up terrain elevation for node coordinates through
// the Open-Meteo elevation API.
//
// Coordinates are sent in batches of comma-separated latitudes and
// longitudes; the API answers with one elevation in meters per point:
//
//	{"elevation": [512.0, 498.0]}
//
// Batches are cached by their coordinates, so repeated runs over the same
// network make no requests. Uncached requests are spaced by a short delay.
package openmeteo
