package sumonetvis

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func lineAsString(l orb.LineString) string {
	agg := []string{}
	for _, pt := range l {
		agg = append(agg, fmt.Sprintf("[%f, %f]", pt.X(), pt.Y()))
	}
	return "[" + strings.Join(agg, ",") + "]"
}

func TestOffset(t *testing.T) {
	line := orb.LineString{{10.0, 10.0}, {15.0, 10.0}, {18.0, 15.0}, {18.0, 20.0}, {15.0, 24.0}, {12.0, 24.0}, {10.0, 18.0}, {10.0, 15.0}, {13.0, 12.0}, {15.0, 16.0}}
	distance := 1.0

	left, err := offsetCurve(line, distance)
	if err != nil {
		t.Error(err)
		return
	}
	right, err := offsetCurve(line, -distance)
	if err != nil {
		t.Error(err)
		return
	}
	leftL := lineAsString(left)
	rightL := lineAsString(right)

	correctLeft := "[[10.000000, 11.000000],[14.433810, 11.000000],[17.000000, 15.276984],[17.000000, 19.666667],[14.500000, 23.000000],[12.720759, 23.000000],[11.000000, 17.837722],[11.000000, 15.414214],[12.726049, 13.688165],[14.105573, 16.447214]]"
	if leftL != correctLeft {
		t.Errorf("Left offset line should be '%s' but got '%s'", correctLeft, leftL)
	}
	correctRight := "[[10.000000, 9.000000],[15.566190, 9.000000],[19.000000, 14.723016],[19.000000, 20.333333],[15.500000, 25.000000],[11.279241, 25.000000],[9.000000, 18.162278],[9.000000, 14.585786],[13.273951, 10.311835],[15.894427, 15.552786]]"
	if rightL != correctRight {
		t.Errorf("Right offset line should be '%s' but got '%s'", correctRight, rightL)
	}
}

func TestOffsetDegenerate(t *testing.T) {
	if _, err := offsetCurve(orb.LineString{{0, 0}}, 1.0); err == nil {
		t.Error("Offset of a single point should fail")
	}
	if _, err := offsetCurve(orb.LineString{{3, 4}, {3, 4}}, 1.0); err == nil {
		t.Error("Offset of a zero-length line should fail")
	}
	// Zero-length segments inside an otherwise valid line are skipped
	offset, err := offsetCurve(orb.LineString{{0, 0}, {5, 0}, {5, 0}, {10, 0}}, 1.0)
	if err != nil {
		t.Error(err)
		return
	}
	correct := "[[0.000000, 1.000000],[5.000000, 1.000000],[10.000000, 1.000000]]"
	if got := lineAsString(offset); got != correct {
		t.Errorf("Offset line should be '%s' but got '%s'", correct, got)
	}
}

func TestLineLength(t *testing.T) {
	line := orb.LineString{{0, 0}, {3, 4}, {3, 10}}
	correct := 11.0
	if l := lineLength(line); l != correct {
		t.Errorf("Length should be %f, but got %f", correct, l)
	}
}

func TestPointAtDistance(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}, {10, 10}}
	cases := []struct {
		distance float64
		correct  orb.Point
	}{
		{-5, orb.Point{0, 0}},
		{0, orb.Point{0, 0}},
		{5, orb.Point{5, 0}},
		{10, orb.Point{10, 0}},
		{15, orb.Point{10, 5}},
		{100, orb.Point{10, 10}},
	}
	for _, c := range cases {
		pt := pointAtDistance(line, c.distance)
		if pt != c.correct {
			t.Errorf("Point at distance %f should be %v, but got %v", c.distance, c.correct, pt)
		}
	}
}

func TestLineSubstring(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}, {10, 10}}
	newline := substring(line, 5, 15)
	correct := "[[5.000000, 0.000000],[10.000000, 0.000000],[10.000000, 5.000000]]"
	if got := lineAsString(newline); got != correct {
		t.Errorf("Substring should be '%s', but got '%s'", correct, got)
	}

	clamped := substring(line, -3, 100)
	correctClamped := "[[0.000000, 0.000000],[10.000000, 0.000000],[10.000000, 10.000000]]"
	if got := lineAsString(clamped); got != correctClamped {
		t.Errorf("Clamped substring should be '%s', but got '%s'", correctClamped, got)
	}
}

func TestReverseLine(t *testing.T) {
	line := orb.LineString{{0, 0}, {1, 0}, {2, 5}}
	reversed := reverseLine(line)
	correct := "[[2.000000, 5.000000],[1.000000, 0.000000],[0.000000, 0.000000]]"
	if got := lineAsString(reversed); got != correct {
		t.Errorf("Reversed line should be '%s', but got '%s'", correct, got)
	}
	if line[0] != (orb.Point{0, 0}) {
		t.Error("Reversing should not modify the input line")
	}
}

func TestBufferLine(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}
	polygon, err := bufferLine(line, 2)
	if err != nil {
		t.Error(err)
		return
	}
	ring := polygon[0]
	correct := "[[0.000000, 1.000000],[10.000000, 1.000000],[10.000000, -1.000000],[0.000000, -1.000000],[0.000000, 1.000000]]"
	if got := lineAsString(orb.LineString(ring)); got != correct {
		t.Errorf("Buffered ring should be '%s', but got '%s'", correct, got)
	}
	if !ring.Closed() {
		t.Error("Buffered ring should be closed")
	}
	correctArea := 20.0
	if area := ringArea(ring); math.Abs(area-correctArea) > 1e-9 {
		t.Errorf("Buffered ring area should be %f, but got %f", correctArea, area)
	}
}

func TestSegmentIntersection(t *testing.T) {
	pt, ok := segmentIntersection(orb.Point{0, 0}, orb.Point{2, 2}, orb.Point{0, 2}, orb.Point{2, 0})
	if !ok {
		t.Error("Crossing segments should intersect")
		return
	}
	if pt != (orb.Point{1, 1}) {
		t.Errorf("Intersection should be [1, 1], but got %v", pt)
	}
	if _, ok := segmentIntersection(orb.Point{0, 0}, orb.Point{1, 1}, orb.Point{1, 1}, orb.Point{2, 0}); ok {
		t.Error("Segments touching at a shared endpoint should not count as intersecting")
	}
	if _, ok := segmentIntersection(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{0, 1}, orb.Point{1, 1}); ok {
		t.Error("Parallel segments should not intersect")
	}
}

func TestRingIsSimple(t *testing.T) {
	simple := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	if !ringIsSimple(simple) {
		t.Error("Square ring should be simple")
	}
	bowtie := orb.Ring{{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0}}
	if ringIsSimple(bowtie) {
		t.Error("Bowtie ring should not be simple")
	}
}

func TestRepairRing(t *testing.T) {
	// The last edge back to the start crosses the first edge, pinching off a loop
	ring := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {4, 10}, {4, -2}, {2, -2}, {2, 10}, {0, 10}, {0, 0}}
	if ringIsSimple(ring) {
		t.Error("Test ring should be non-simple before repair")
	}
	repaired := repairRing(ring)
	if !ringIsSimple(repaired) {
		t.Errorf("Repaired ring should be simple, got %s", lineAsString(orb.LineString(repaired)))
	}
	if len(repaired) >= len(ring) {
		t.Errorf("Repair should drop loop points, had %d points and still has %d", len(ring), len(repaired))
	}
}
