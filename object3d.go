package sumonetvis

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// Object3D is an indexed mesh: a named, materialed list of 3D vertices with
// faces (1-based local vertex indices, consistent winding) and optional line
// records for non-filled linear geometry. Built once per export call.
type Object3D struct {
	Name     string
	Material string
	Vertices [][3]float64
	Faces    [][]int
	Lines    [][]int
}

// ObjectFromShape extrudes any 2D shape into a vertical prism (or flat
// plane) mesh. Polygons, multi-polygons, lines, multi-lines and collections
// are decomposed uniformly into closed rings and open polylines. Open
// geometry with zero height and no requested faces degrades to explicit line
// records.
func ObjectFromShape(geometry orb.Geometry, name, material string, z, extrudeHeight float64,
	includeBottomFace, includeTopFace bool) (*Object3D, error) {
	object := &Object3D{Name: name, Material: material}
	if err := object.addShape(geometry, z, extrudeHeight, includeBottomFace, includeTopFace); err != nil {
		return nil, err
	}
	return object, nil
}

func (object *Object3D) addShape(geometry orb.Geometry, z, height float64, includeBottom, includeTop bool) error {
	switch shape := geometry.(type) {
	case orb.Ring:
		object.addRing(shape, z, height, includeBottom, includeTop)
	case orb.Polygon:
		for _, ring := range shape {
			object.addRing(ring, z, height, includeBottom, includeTop)
		}
	case orb.MultiPolygon:
		for _, polygon := range shape {
			for _, ring := range polygon {
				object.addRing(ring, z, height, includeBottom, includeTop)
			}
		}
	case orb.LineString:
		object.addLine(shape, z, height)
	case orb.MultiLineString:
		for _, line := range shape {
			object.addLine(line, z, height)
		}
	case orb.Collection:
		for _, member := range shape {
			if err := object.addShape(member, z, height, includeBottom, includeTop); err != nil {
				return err
			}
		}
	default:
		return errors.Wrapf(ErrUnsupportedGeometry, "%s", geometry.GeoJSONType())
	}
	return nil
}

// addRing emits the prism for one closed ring: top perimeter at z+height,
// and for non-zero heights a bottom perimeter at z with outward-facing side
// quads. The ring is normalized to counter-clockwise so that the top face
// winds upward.
func (object *Object3D) addRing(ring orb.Ring, z, height float64, includeBottom, includeTop bool) {
	points := openRing(ring)
	if len(points) < 3 {
		return
	}
	if planar.Area(ring) < 0 {
		points = orb.LineString(reverseLine(points))
	}
	n := len(points)
	base := len(object.Vertices)
	for _, point := range points {
		object.Vertices = append(object.Vertices, [3]float64{point[0], point[1], z + height})
	}
	if height != 0 {
		for _, point := range points {
			object.Vertices = append(object.Vertices, [3]float64{point[0], point[1], z})
		}
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			object.Faces = append(object.Faces, []int{
				base + i + 1, base + n + i + 1, base + n + j + 1, base + j + 1,
			})
		}
	}
	if includeTop {
		face := make([]int, n)
		for i := range face {
			face[i] = base + i + 1
		}
		object.Faces = append(object.Faces, face)
	}
	if includeBottom {
		offset := 0
		if height != 0 {
			offset = n
		}
		face := make([]int, n)
		for i := range face {
			face[i] = base + offset + n - i
		}
		object.Faces = append(object.Faces, face)
	}
}

// addLine emits an open polyline: a vertical ribbon of quads for non-zero
// heights, otherwise an explicit line record.
func (object *Object3D) addLine(line orb.LineString, z, height float64) {
	if len(line) < 2 {
		return
	}
	n := len(line)
	base := len(object.Vertices)
	for _, point := range line {
		object.Vertices = append(object.Vertices, [3]float64{point[0], point[1], z + height})
	}
	if height == 0 {
		record := make([]int, n)
		for i := range record {
			record[i] = base + i + 1
		}
		object.Lines = append(object.Lines, record)
		return
	}
	for _, point := range line {
		object.Vertices = append(object.Vertices, [3]float64{point[0], point[1], z})
	}
	for i := 0; i < n-1; i++ {
		object.Faces = append(object.Faces, []int{
			base + i + 1, base + n + i + 1, base + n + i + 2, base + i + 2,
		})
	}
}

// openRing drops the closing duplicate point of a ring.
func openRing(ring orb.Ring) orb.LineString {
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		return orb.LineString(ring[:len(ring)-1])
	}
	return orb.LineString(ring)
}

// AsObject3D meshes the marking: dashed patterns are decomposed into
// disjoint buffered segments first, since a dashed line is not a single
// connected shape.
func (marking Marking) AsObject3D(name string, z, extrudeHeight float64, includeBottomFace bool) (*Object3D, error) {
	polygons := marking.dashPolygons()
	shape := make(orb.MultiPolygon, 0, len(polygons))
	for _, polygon := range polygons {
		shape = append(shape, polygon)
	}
	material := "marking_" + marking.Purpose.String()
	return ObjectFromShape(shape, name, material, z, extrudeHeight, includeBottomFace, true)
}
