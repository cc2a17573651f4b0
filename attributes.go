package sumonetvis

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Raw entity attributes arrive as string maps straight from the XML layer;
// all semantic parsing happens here.

func attrString(attrib map[string]string, key, fallback string) string {
	if value, ok := attrib[key]; ok {
		return value
	}
	return fallback
}

func attrFloat(attrib map[string]string, key string, fallback float64) (float64, error) {
	value, ok := attrib[key]
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback, errors.Wrapf(err, "attribute '%s'", key)
	}
	return parsed, nil
}

func attrInt(attrib map[string]string, key string, fallback int) (int, error) {
	value, ok := attrib[key]
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback, errors.Wrapf(err, "attribute '%s'", key)
	}
	return parsed, nil
}

func attrBool(attrib map[string]string, key string, fallback bool) bool {
	value, ok := attrib[key]
	if !ok {
		return fallback
	}
	switch value {
	case "t", "true", "1":
		return true
	case "f", "false", "0":
		return false
	}
	return fallback
}

// parseShape parses a SUMO shape attribute ("x0,y0 x1,y1 ...") into a
// polyline. Fewer than minPoints coordinate pairs is malformed.
func parseShape(shape string, minPoints int) (orb.LineString, error) {
	pairs := strings.Fields(shape)
	if len(pairs) < minPoints {
		return nil, errors.Wrapf(ErrMalformedGeometry, "shape has %d coordinate pairs, needs at least %d", len(pairs), minPoints)
	}
	line := make(orb.LineString, 0, len(pairs))
	for _, pair := range pairs {
		coords := strings.Split(pair, ",")
		if len(coords) < 2 {
			return nil, errors.Wrapf(ErrMalformedGeometry, "coordinate pair '%s'", pair)
		}
		x, err := strconv.ParseFloat(coords[0], 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedGeometry, "coordinate '%s'", coords[0])
		}
		y, err := strconv.ParseFloat(coords[1], 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedGeometry, "coordinate '%s'", coords[1])
		}
		line = append(line, orb.Point{x, y})
	}
	return line, nil
}

// splitLaneID splits a SUMO lane id into its parent edge id and lane index.
// The index is the numeric suffix after the last underscore; everything
// before it is the edge id (which may itself contain underscores).
func splitLaneID(laneID string) (string, int, error) {
	cut := strings.LastIndex(laneID, "_")
	if cut < 0 {
		return "", 0, errors.Wrapf(ErrUnresolvedReference, "lane id '%s' has no index suffix", laneID)
	}
	index, err := strconv.Atoi(laneID[cut+1:])
	if err != nil {
		return "", 0, errors.Wrapf(ErrUnresolvedReference, "lane id '%s' has a non-numeric index suffix", laneID)
	}
	return laneID[:cut], index, nil
}
