package network

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// CoordScale is the quantization factor applied to coordinates before node
// identity is derived: positions are identified at 10^-5 degree resolution.
const CoordScale = 1e5

const coordDecimals = 5

// Key is a quantized coordinate pair.
type Key struct {
	Lon int64
	Lat int64
}

// KeyOf quantizes p by scaling with CoordScale and rounding half away from
// zero.
func KeyOf(p orb.Point) Key {
	return Key{
		Lon: int64(math.Round(p[0] * CoordScale)),
		Lat: int64(math.Round(p[1] * CoordScale)),
	}
}

// ID renders the key as "<lon>_<lat>" with five decimals.
func (k Key) ID() string {
	return formatFixed(k.Lon) + "_" + formatFixed(k.Lat)
}

// Point returns the quantized position.
func (k Key) Point() orb.Point {
	return orb.Point{float64(k.Lon) / CoordScale, float64(k.Lat) / CoordScale}
}

func formatFixed(v int64) string {
	sign := ""
	u := uint64(v)
	if v < 0 {
		sign = "-"
		u = uint64(-v)
	}
	return fmt.Sprintf("%s%d.%0*d", sign, u/1e5, coordDecimals, u%1e5)
}

// ParseKey parses a node ID produced by [Key.ID].
func ParseKey(id string) (Key, error) {
	lon, lat, ok := strings.Cut(id, "_")
	if !ok {
		return Key{}, fmt.Errorf("node ID %q: missing separator", id)
	}
	lonV, err := parseFixed(lon)
	if err != nil {
		return Key{}, fmt.Errorf("node ID %q: longitude: %w", id, err)
	}
	latV, err := parseFixed(lat)
	if err != nil {
		return Key{}, fmt.Errorf("node ID %q: latitude: %w", id, err)
	}
	return Key{Lon: lonV, Lat: latV}, nil
}

func parseFixed(s string) (int64, error) {
	neg := strings.HasPrefix(s, "-")
	whole, frac, ok := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if !ok || len(frac) != coordDecimals || whole == "" {
		return 0, fmt.Errorf("want %d decimals, got %q", coordDecimals, s)
	}
	w, err := strconv.ParseUint(whole, 10, 63)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseUint(frac, 10, 63)
	if err != nil {
		return 0, err
	}
	v := int64(w*1e5 + f)
	if neg {
		v = -v
	}
	return v, nil
}
