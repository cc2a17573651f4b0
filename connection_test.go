package sumonetvis

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

func buildConnectionFixture(t *testing.T, viaShape string) *Connection {
	t.Helper()
	from := NewEdge(map[string]string{"id": "E1"})
	fromLane := mustLane(t, map[string]string{"id": "E1_0", "index": "0", "shape": "0.00,0.00 10.00,0.00", "width": "2.0"})
	from.AppendLane(fromLane)

	to := NewEdge(map[string]string{"id": "E2"})
	toLane := mustLane(t, map[string]string{"id": "E2_0", "index": "0", "shape": "14.00,0.00 24.00,0.00", "width": "2.0"})
	to.AppendLane(toLane)

	via := NewEdge(map[string]string{"id": ":J_0", "function": "internal"})
	viaLane := mustLane(t, map[string]string{"id": ":J_0_0", "index": "0", "shape": viaShape, "width": "2.0"})
	via.AppendLane(viaLane)

	connection, err := NewConnection(map[string]string{"from": "E1", "to": "E2", "fromLane": "0", "toLane": "0", "via": ":J_0_0"})
	if err != nil {
		t.Fatal(err)
	}
	connection.fromLane = fromLane
	connection.toLane = toLane
	connection.viaLane = viaLane
	return connection
}

func TestConnectionShapeStitch(t *testing.T) {
	connection := buildConnectionFixture(t, "10.00,0.00 12.00,0.50 14.00,0.00")
	polygon, err := connection.Shape()
	if err != nil {
		t.Fatal(err)
	}
	ring := polygon[0]
	if !ring.Closed() {
		t.Error("Connection ring should be closed")
	}
	// Both via offset curves contribute one interior point each
	if len(ring) != 7 {
		t.Fatalf("Expected a 7 point ring (6 distinct), got %d: %s", len(ring), lineAsString(orb.LineString(ring)))
	}
	if ring[0] != (orb.Point{10, -1}) {
		t.Errorf("Ring should start at the from-lane exit right corner, got %v", ring[0])
	}
	if ring[2] != (orb.Point{14, -1}) {
		t.Errorf("Third point should be the to-lane entry right corner, got %v", ring[2])
	}
	if ring[3] != (orb.Point{14, 1}) {
		t.Errorf("Fourth point should be the to-lane entry left corner, got %v", ring[3])
	}
	if ring[5] != (orb.Point{10, 1}) {
		t.Errorf("Sixth point should be the from-lane exit left corner, got %v", ring[5])
	}
}

func TestConnectionShapeDegradesToQuad(t *testing.T) {
	// A straight two-point via lane has no interior offset points
	connection := buildConnectionFixture(t, "10.00,0.00 14.00,0.00")
	polygon, err := connection.Shape()
	if err != nil {
		t.Fatal(err)
	}
	ring := polygon[0]
	if len(ring) != 5 {
		t.Fatalf("Expected a quad ring, got %d points: %s", len(ring), lineAsString(orb.LineString(ring)))
	}
	correct := "[[10.000000, -1.000000],[14.000000, -1.000000],[14.000000, 1.000000],[10.000000, 1.000000],[10.000000, -1.000000]]"
	if got := lineAsString(orb.LineString(ring)); got != correct {
		t.Errorf("Quad ring should be '%s', but got '%s'", correct, got)
	}
}

func TestConnectionShapeUnresolved(t *testing.T) {
	connection, err := NewConnection(map[string]string{"from": "E1", "to": "E2", "fromLane": "0", "toLane": "0", "via": ":J_0_0"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := connection.Shape(); !errors.Is(err, ErrUnresolvedReference) {
		t.Errorf("Unresolved connection should yield ErrUnresolvedReference, got %v", err)
	}
}

func TestConnectionShapeExplicit(t *testing.T) {
	connection, err := NewConnection(map[string]string{
		"from": "E1", "to": "E2", "fromLane": "0", "toLane": "0",
		"shape": "10.00,0.00 14.00,0.00",
	})
	if err != nil {
		t.Fatal(err)
	}
	// An explicit shape needs no resolved lanes; width falls back to the default
	polygon, err := connection.Shape()
	if err != nil {
		t.Fatal(err)
	}
	ring := polygon[0]
	if ring[0] != (orb.Point{10, DefaultLaneWidth / 2}) {
		t.Errorf("Explicit shape should be buffered by the default lane width, got %v", ring[0])
	}
}

func TestConnectionParsing(t *testing.T) {
	connection, err := NewConnection(map[string]string{
		"from": "E1", "to": "E2", "fromLane": "1", "toLane": "2",
		"via": ":J_0_0", "dir": "l", "state": "o",
	})
	if err != nil {
		t.Fatal(err)
	}
	if connection.FromLaneIndex != 1 || connection.ToLaneIndex != 2 {
		t.Error("Lane indexes should be parsed")
	}
	if connection.Direction != "l" || connection.State != "o" {
		t.Error("Direction and state should be parsed")
	}
	if _, err := NewConnection(map[string]string{"from": "E1", "to": "E2", "fromLane": "x"}); err == nil {
		t.Error("Non-numeric lane indexes should be rejected")
	}
}
