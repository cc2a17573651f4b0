package sumonetvis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ParamOverrides selects generic <param> keys whose values override the
// material and extrusion height of individual objects. The transform turns
// the raw string value into a height; it defaults to float parsing.
type ParamOverrides struct {
	MaterialParam          string
	ExtrudeHeightParam     string
	ExtrudeHeightTransform func(string) (float64, error)
}

func (overrides ParamOverrides) material(params map[string]string, fallback string) string {
	if overrides.MaterialParam == "" {
		return fallback
	}
	if value, ok := params[overrides.MaterialParam]; ok {
		return value
	}
	return fallback
}

func (overrides ParamOverrides) extrudeHeight(params map[string]string, fallback float64) float64 {
	if overrides.ExtrudeHeightParam == "" {
		return fallback
	}
	value, ok := params[overrides.ExtrudeHeightParam]
	if !ok {
		return fallback
	}
	transform := overrides.ExtrudeHeightTransform
	if transform == nil {
		transform = func(raw string) (float64, error) {
			return strconv.ParseFloat(raw, 64)
		}
	}
	height, err := transform(value)
	if err != nil {
		log.Warn("can't transform extrude height param, using fallback", "value", value, "err", err)
		return fallback
	}
	return height
}

// GenerateObjText serializes meshes as Wavefront OBJ text with per-object
// o/usemtl/v/f/l records. Face and line indices are local to each object;
// the serializer adds the global vertex offset while concatenating. The axis
// configuration in the generated file is Y-Forward, Z-Up.
func GenerateObjText(objects []*Object3D) string {
	var builder strings.Builder
	builder.WriteString("# Generated by SumoNetVis\n")
	offset := 0
	for _, object := range objects {
		if object == nil || len(object.Vertices) == 0 {
			continue
		}
		fmt.Fprintf(&builder, "o %s\n", object.Name)
		if object.Material != "" {
			fmt.Fprintf(&builder, "usemtl %s\n", object.Material)
		}
		for _, vertex := range object.Vertices {
			fmt.Fprintf(&builder, "v %f %f %f\n", vertex[0], vertex[1], vertex[2])
		}
		for _, face := range object.Faces {
			builder.WriteString("f")
			for _, index := range face {
				fmt.Fprintf(&builder, " %d", index+offset)
			}
			builder.WriteString("\n")
		}
		for _, line := range object.Lines {
			builder.WriteString("l")
			for _, index := range line {
				fmt.Fprintf(&builder, " %d", index+offset)
			}
			builder.WriteString("\n")
		}
		offset += len(object.Vertices)
	}
	return builder.String()
}

// NetworkObjOptions configures 3D scene generation for a network.
type NetworkObjOptions struct {
	Style          *Style
	TerrainMargin  float64 // > 0 adds a triangulated terrain plane
	Overrides      ParamOverrides
	LaneHeight     float64 // extrusion height of lane prisms
	IncludeBottoms bool
}

// GenerateNetworkObjText builds the full 3D scene for a network — junctions,
// lane prisms, synthesized markings, connection areas and optional terrain —
// and serializes it as OBJ text. Connections whose lanes stayed unresolved
// are skipped.
func GenerateNetworkObjText(net *Net, options NetworkObjOptions) string {
	style := options.Style.orDefault()
	var objects []*Object3D

	if options.TerrainMargin > 0 {
		terrain, err := TriangulatedObject(TerrainShape(net, options.TerrainMargin), "terrain", "terrain", -0.002)
		if err != nil {
			log.Warn("can't triangulate terrain", "err", err)
		} else {
			objects = append(objects, terrain)
		}
	}

	for _, junction := range net.Junctions() {
		shape := junction.Shape()
		if shape == nil {
			continue
		}
		material := options.Overrides.material(junction.Params, "junction")
		height := options.Overrides.extrudeHeight(junction.Params, 0)
		object, err := ObjectFromShape(shape, "junction_"+junction.ID, material, -0.001, height, options.IncludeBottoms, true)
		if err != nil {
			log.Warn("can't mesh junction", "junction", junction.ID, "err", err)
			continue
		}
		objects = append(objects, object)
	}

	for _, edge := range net.Edges() {
		for _, lane := range edge.Lanes() {
			material := options.Overrides.material(lane.Params, lane.Type().String())
			height := options.Overrides.extrudeHeight(lane.Params, options.LaneHeight)
			object, err := ObjectFromShape(lane.Shape(), "lane_"+lane.ID, material, 0, height, options.IncludeBottoms, true)
			if err != nil {
				log.Warn("can't mesh lane", "lane", lane.ID, "err", err)
				continue
			}
			objects = append(objects, object)
			for i, marking := range lane.Markings(style) {
				name := fmt.Sprintf("marking_%s_%d", lane.ID, i)
				markingObject, err := marking.AsObject3D(name, 0.002, 0, false)
				if err != nil {
					log.Warn("can't mesh marking", "lane", lane.ID, "err", err)
					continue
				}
				objects = append(objects, markingObject)
			}
		}
	}

	for i, connection := range net.Connections() {
		if connection.ViaLane() == nil && connection.explicitShape == nil {
			continue
		}
		shape, err := connection.Shape()
		if err != nil {
			log.Warn("skipping connection geometry", "err", err)
			continue
		}
		name := fmt.Sprintf("connection_%d", i)
		object, err := ObjectFromShape(shape, name, "connection", 0.001, 0, false, true)
		if err != nil {
			log.Warn("can't mesh connection", "err", err)
			continue
		}
		objects = append(objects, object)
	}

	return GenerateObjText(objects)
}

// GenerateAdditionalsObjText meshes the polygons and bus stops of an
// additionals file.
func GenerateAdditionalsObjText(additionals *Additionals, style *Style, overrides ParamOverrides) string {
	style = style.orDefault()
	var objects []*Object3D
	for _, poly := range additionals.SortedPolys() {
		object, err := poly.AsObject3D(0, 0, false, overrides)
		if err != nil {
			log.Warn("can't mesh polygon", "poly", poly.ID, "err", err)
			continue
		}
		objects = append(objects, object)
	}
	for _, busStop := range additionals.SortedBusStops() {
		objects = append(objects, busStop.AsObjects3D(style)...)
	}
	return GenerateObjText(objects)
}
