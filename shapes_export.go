package sumonetvis

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// shapeRecord is one drawable shape with its style metadata. The properties
// bag always carries "id" and "type".
type shapeRecord struct {
	geometry   orb.Geometry
	properties map[string]interface{}
}

// shapeGeometryFormats maps a geometry format name to the per-type converters
// used for text record output.
var shapeGeometryFormats = map[string]struct {
	line    func(orb.LineString) string
	polygon func(orb.Polygon) string
	point   func(orb.Point) string
}{
	"wkt":     {PrepareWKTLinestring, PrepareWKTPolygon, PrepareWKTPoint},
	"geojson": {PrepareGeoJSONLinestring, PrepareGeoJSONPolygon, PrepareGeoJSONPoint},
}

// NetworkShapesGeoJSON collects the drawable footprint of a network as a
// GeoJSON feature collection: junction polygons, lane polygons, connection
// areas and synthesized marking centerlines. Every feature carries id, type,
// color and zorder properties; markings additionally carry their width and
// dash pattern.
func NetworkShapesGeoJSON(net *Net, style *Style) *geojson.FeatureCollection {
	return recordsToCollection(networkShapeRecords(net, style.orDefault()))
}

// NetworkShapesText renders the same footprint as NetworkShapesGeoJSON as
// delimited text records, one shape per line: id, type and the geometry in
// the requested format ("wkt" or "geojson").
func NetworkShapesText(net *Net, style *Style, geomFormat string) (string, error) {
	return recordsToText(networkShapeRecords(net, style.orDefault()), geomFormat)
}

// AdditionalsShapesGeoJSON collects polys, POIs and bus stop areas as GeoJSON
// features.
func AdditionalsShapesGeoJSON(additionals *Additionals, style *Style) *geojson.FeatureCollection {
	return recordsToCollection(additionalsShapeRecords(additionals, style.orDefault()))
}

// AdditionalsShapesText renders polys, POIs and bus stop areas as delimited
// text records, one shape per line.
func AdditionalsShapesText(additionals *Additionals, style *Style, geomFormat string) (string, error) {
	return recordsToText(additionalsShapeRecords(additionals, style.orDefault()), geomFormat)
}

func networkShapeRecords(net *Net, style *Style) []shapeRecord {
	var records []shapeRecord

	for _, junction := range net.Junctions() {
		shape := junction.Shape()
		if shape == nil {
			continue
		}
		records = append(records, shapeRecord{
			geometry: orb.Polygon{shape},
			properties: map[string]interface{}{
				"id": junction.ID, "type": "junction", "color": junctionColor, "zorder": 1,
			},
		})
	}

	for _, edge := range net.Edges() {
		for _, lane := range edge.Lanes() {
			records = append(records, shapeRecord{
				geometry: lane.Shape(),
				properties: map[string]interface{}{
					"id": lane.ID, "type": "lane", "color": lane.Color(), "width": lane.Width, "zorder": 2,
				},
			})
			for i, marking := range lane.Markings(style) {
				records = append(records, shapeRecord{
					geometry: marking.Alignment,
					properties: map[string]interface{}{
						"id":     fmt.Sprintf("%s#%d", lane.ID, i),
						"type":   "marking_" + marking.Purpose.String(),
						"color":  marking.Color,
						"width":  marking.Width,
						"dashes": []float64{marking.Dashes.Dash, marking.Dashes.Gap},
						"zorder": 4,
					},
				})
			}
		}
	}

	for i, connection := range net.Connections() {
		if connection.ViaLane() == nil && connection.explicitShape == nil {
			continue
		}
		shape, err := connection.Shape()
		if err != nil {
			log.Warn("skipping connection shape", "err", err)
			continue
		}
		records = append(records, shapeRecord{
			geometry: shape,
			properties: map[string]interface{}{
				"id": fmt.Sprintf("connection_%d", i), "type": "connection", "color": junctionColor, "zorder": 3,
			},
		})
	}

	return records
}

func additionalsShapeRecords(additionals *Additionals, style *Style) []shapeRecord {
	var records []shapeRecord
	for _, poly := range additionals.SortedPolys() {
		records = append(records, shapeRecord{
			geometry: poly.Shape(),
			properties: map[string]interface{}{
				"id": poly.ID, "type": "poly", "color": poly.Color, "zorder": poly.Layer,
			},
		})
	}
	for _, poi := range additionals.POIs() {
		records = append(records, shapeRecord{
			geometry: poi.Point(),
			properties: map[string]interface{}{
				"id": poi.ID, "type": "poi", "color": poi.Color, "zorder": poi.Layer,
			},
		})
	}
	for _, busStop := range additionals.SortedBusStops() {
		area := busStop.Shape(style)
		if area == nil {
			continue
		}
		records = append(records, shapeRecord{
			geometry: area,
			properties: map[string]interface{}{
				"id": busStop.ID, "type": "bus_stop", "color": "#008855", "zorder": 5,
			},
		})
	}
	return records
}

func recordsToCollection(records []shapeRecord) *geojson.FeatureCollection {
	collection := geojson.NewFeatureCollection()
	for _, record := range records {
		var feature *geojson.Feature
		switch geometry := record.geometry.(type) {
		case orb.Polygon:
			feature = geojson.NewPolygonFeature(polygonCoordinates(geometry))
		case orb.LineString:
			feature = geojson.NewLineStringFeature(lineCoordinates(geometry))
		case orb.Point:
			feature = geojson.NewPointFeature([]float64{geometry.X(), geometry.Y()})
		default:
			continue
		}
		for key, value := range record.properties {
			feature.SetProperty(key, value)
		}
		collection.AddFeature(feature)
	}
	return collection
}

func recordsToText(records []shapeRecord, geomFormat string) (string, error) {
	format, ok := shapeGeometryFormats[geomFormat]
	if !ok {
		return "", errors.Errorf("unknown geometry format '%s'", geomFormat)
	}
	var b strings.Builder
	for _, record := range records {
		var geom string
		switch geometry := record.geometry.(type) {
		case orb.Polygon:
			geom = format.polygon(geometry)
		case orb.LineString:
			geom = format.line(geometry)
		case orb.Point:
			geom = format.point(geometry)
		default:
			continue
		}
		fmt.Fprintf(&b, "%v;%v;%s\n", record.properties["id"], record.properties["type"], geom)
	}
	return b.String(), nil
}
