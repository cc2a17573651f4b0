package sumonetvis

import (
	libtess2 "github.com/hajimehoshi/go-libtess2"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Triangulate triangulates a polygon (with holes) into a flat vertex/face
// mesh. The exterior ring and every hole ring become boundary constraint
// contours; with even-odd winding the hole contours are subtracted by
// parity, so no interior hole markers are needed. MultiPolygon and
// Collection inputs recurse, accumulating one combined vertex/face list with
// per-part index offsets. Faces index into the vertex list 0-based.
func Triangulate(geometry orb.Geometry) ([]orb.Point, [][3]int, error) {
	switch shape := geometry.(type) {
	case orb.Polygon:
		return triangulatePolygon(shape)
	case orb.MultiPolygon:
		var vertices []orb.Point
		var faces [][3]int
		for _, polygon := range shape {
			partVertices, partFaces, err := triangulatePolygon(polygon)
			if err != nil {
				return nil, nil, err
			}
			offset := len(vertices)
			vertices = append(vertices, partVertices...)
			for _, face := range partFaces {
				faces = append(faces, [3]int{face[0] + offset, face[1] + offset, face[2] + offset})
			}
		}
		return vertices, faces, nil
	case orb.Collection:
		var vertices []orb.Point
		var faces [][3]int
		for _, member := range shape {
			partVertices, partFaces, err := Triangulate(member)
			if err != nil {
				return nil, nil, err
			}
			offset := len(vertices)
			vertices = append(vertices, partVertices...)
			for _, face := range partFaces {
				faces = append(faces, [3]int{face[0] + offset, face[1] + offset, face[2] + offset})
			}
		}
		return vertices, faces, nil
	}
	return nil, nil, errors.Wrapf(ErrUnsupportedGeometry, "%s", geometry.GeoJSONType())
}

func triangulatePolygon(polygon orb.Polygon) ([]orb.Point, [][3]int, error) {
	contours := make([]libtess2.Contour, 0, len(polygon))
	for _, ring := range polygon {
		points := openRing(ring)
		if len(points) < 3 {
			return nil, nil, errors.Wrap(ErrMalformedGeometry, "ring has fewer than 3 points")
		}
		contour := make(libtess2.Contour, len(points))
		for i, point := range points {
			contour[i] = libtess2.Vertex{X: float32(point[0]), Y: float32(point[1])}
		}
		contours = append(contours, contour)
	}
	elements, tessVertices, err := libtess2.Tesselate(contours, libtess2.WindingRuleOdd)
	if err != nil {
		return nil, nil, errors.Wrap(err, "can't triangulate polygon")
	}
	vertices := make([]orb.Point, len(tessVertices))
	for i, vertex := range tessVertices {
		vertices[i] = orb.Point{float64(vertex.X), float64(vertex.Y)}
	}
	faces := make([][3]int, 0, len(elements)/3)
	for i := 0; i+2 < len(elements); i += 3 {
		faces = append(faces, [3]int{elements[i], elements[i+1], elements[i+2]})
	}
	return vertices, faces, nil
}

// TriangulatedObject meshes a polygonal shape as a flat triangulated plane
// at the given z, suitable for ground and terrain surfaces where a single
// n-gon face would be degenerate or concave.
func TriangulatedObject(geometry orb.Geometry, name, material string, z float64) (*Object3D, error) {
	vertices, faces, err := Triangulate(geometry)
	if err != nil {
		return nil, err
	}
	object := &Object3D{Name: name, Material: material}
	for _, vertex := range vertices {
		object.Vertices = append(object.Vertices, [3]float64{vertex[0], vertex[1], z})
	}
	for _, face := range faces {
		object.Faces = append(object.Faces, []int{face[0] + 1, face[1] + 1, face[2] + 1})
	}
	return object, nil
}

// TerrainShape builds the flat ground polygon for a network: its bounding
// box grown by the given margin, with the junction areas as holes. Junction
// polygons are disjoint in the source data, which keeps the even-odd
// subtraction sound; overlapping lane footprints would not be.
func TerrainShape(net *Net, margin float64) orb.Polygon {
	bound := net.Bounds()
	exterior := orb.Ring{
		{bound.Min[0] - margin, bound.Min[1] - margin},
		{bound.Max[0] + margin, bound.Min[1] - margin},
		{bound.Max[0] + margin, bound.Max[1] + margin},
		{bound.Min[0] - margin, bound.Max[1] + margin},
	}
	exterior = append(exterior, exterior[0])
	terrain := orb.Polygon{exterior}
	for _, junction := range net.Junctions() {
		if shape := junction.Shape(); shape != nil {
			terrain = append(terrain, shape)
		}
	}
	return terrain
}
