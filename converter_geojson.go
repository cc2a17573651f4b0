package sumonetvis

import (
	"github.com/charmbracelet/log"
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
)

// PrepareGeoJSONLinestring returns GeoJSON representation of LineString
func PrepareGeoJSONLinestring(line orb.LineString) string {
	b, err := geojson.NewLineStringGeometry(lineCoordinates(line)).MarshalJSON()
	if err != nil {
		log.Warn("can't convert geometry to geojson format", "err", err)
		return ""
	}
	return string(b)
}

// PrepareGeoJSONPolygon returns GeoJSON representation of Polygon
func PrepareGeoJSONPolygon(polygon orb.Polygon) string {
	b, err := geojson.NewPolygonGeometry(polygonCoordinates(polygon)).MarshalJSON()
	if err != nil {
		log.Warn("can't convert geometry to geojson format", "err", err)
		return ""
	}
	return string(b)
}

// PrepareGeoJSONPoint returns GeoJSON representation of Point
func PrepareGeoJSONPoint(pt orb.Point) string {
	b, err := geojson.NewPointGeometry([]float64{pt.X(), pt.Y()}).MarshalJSON()
	if err != nil {
		log.Warn("can't convert geometry to geojson format", "err", err)
		return ""
	}
	return string(b)
}

func lineCoordinates(line orb.LineString) [][]float64 {
	pts2d := make([][]float64, len(line))
	for i := range line {
		pts2d[i] = []float64{line[i].X(), line[i].Y()}
	}
	return pts2d
}

func polygonCoordinates(polygon orb.Polygon) [][][]float64 {
	rings := make([][][]float64, len(polygon))
	for i := range polygon {
		rings[i] = lineCoordinates(orb.LineString(polygon[i]))
	}
	return rings
}
