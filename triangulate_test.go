package sumonetvis

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

func triangleArea(a, b, c orb.Point) float64 {
	return math.Abs((b[0]-a[0])*(c[1]-a[1])-(c[0]-a[0])*(b[1]-a[1])) / 2
}

func TestTriangulateSquareWithHole(t *testing.T) {
	hole := orb.Ring{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}}
	polygon := orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		hole,
	}
	vertices, faces, err := Triangulate(polygon)
	if err != nil {
		t.Fatal(err)
	}
	if len(vertices) != 8 {
		t.Errorf("Square with square hole should keep its 8 boundary vertices, got %d", len(vertices))
	}
	if len(faces) != 8 {
		t.Errorf("Square with square hole should triangulate into 8 faces, got %d", len(faces))
	}

	totalArea := 0.0
	for _, face := range faces {
		a, b, c := vertices[face[0]], vertices[face[1]], vertices[face[2]]
		totalArea += triangleArea(a, b, c)
		centroid := orb.Point{(a[0] + b[0] + c[0]) / 3, (a[1] + b[1] + c[1]) / 3}
		if planar.RingContains(hole, centroid) {
			t.Errorf("Face centroid %v should not fall inside the hole", centroid)
		}
	}
	correctArea := 100.0 - 4.0
	if math.Abs(totalArea-correctArea) > 1e-3 {
		t.Errorf("Triangulated area should be %f, but got %f", correctArea, totalArea)
	}
}

func TestTriangulateMultiPolygonOffsets(t *testing.T) {
	shape := orb.MultiPolygon{
		{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}},
		{{{10, 0}, {12, 0}, {12, 2}, {10, 2}, {10, 0}}},
	}
	vertices, faces, err := Triangulate(shape)
	if err != nil {
		t.Fatal(err)
	}
	if len(vertices) != 8 {
		t.Errorf("Two squares should yield 8 vertices, got %d", len(vertices))
	}
	if len(faces) != 4 {
		t.Errorf("Two squares should yield 4 faces, got %d", len(faces))
	}
	// Faces of the second part must index past the first part's vertices
	for _, face := range faces {
		for _, index := range face {
			if index < 0 || index >= len(vertices) {
				t.Fatalf("Face index %d out of range", index)
			}
		}
	}
	secondPart := false
	for _, face := range faces {
		for _, index := range face {
			if index >= 4 {
				secondPart = true
			}
		}
	}
	if !secondPart {
		t.Error("Second part faces should reference offset vertex indices")
	}
}

func TestTriangulateUnsupported(t *testing.T) {
	if _, _, err := Triangulate(orb.LineString{{0, 0}, {1, 1}}); !errors.Is(err, ErrUnsupportedGeometry) {
		t.Errorf("Line input should yield ErrUnsupportedGeometry, got %v", err)
	}
}

func TestTriangulatedObject(t *testing.T) {
	polygon := orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}
	object, err := TriangulatedObject(polygon, "terrain", "grass", -0.5)
	if err != nil {
		t.Fatal(err)
	}
	if object.Name != "terrain" || object.Material != "grass" {
		t.Error("Name and material should carry through")
	}
	for _, vertex := range object.Vertices {
		if vertex[2] != -0.5 {
			t.Errorf("Terrain vertices should sit at the given z, got %v", vertex)
		}
	}
	for _, face := range object.Faces {
		if len(face) != 3 {
			t.Errorf("Triangulated faces should be triangles, got %v", face)
		}
		for _, index := range face {
			if index < 1 || index > len(object.Vertices) {
				t.Errorf("Face indices should be 1-based, got %d", index)
			}
		}
	}
}

func TestTerrainShape(t *testing.T) {
	net := buildLinkedNet(t)
	terrain := TerrainShape(net, 10)
	if len(terrain) != 2 {
		t.Fatalf("Terrain should have the boundary plus one junction hole, got %d rings", len(terrain))
	}
	bound := net.Bounds()
	exterior := terrain[0]
	if exterior[0] != (orb.Point{bound.Min[0] - 10, bound.Min[1] - 10}) {
		t.Errorf("Terrain boundary should extend the bounds by the margin, got %v", exterior[0])
	}
	if !exterior.Closed() {
		t.Error("Terrain boundary should be closed")
	}

	if _, _, err := Triangulate(terrain); err != nil {
		t.Errorf("Terrain shape should triangulate, got %v", err)
	}
}
