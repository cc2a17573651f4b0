package sumonetvis

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func mustLane(t *testing.T, attrib map[string]string) *Lane {
	t.Helper()
	lane, err := NewLane(attrib)
	if err != nil {
		t.Fatal(err)
	}
	return lane
}

func TestLaneShapeStraight(t *testing.T) {
	lane := mustLane(t, map[string]string{
		"id":    "E1_0",
		"index": "0",
		"shape": "0.00,0.00 10.00,0.00",
		"width": "2.0",
	})
	ring := lane.Shape()[0]
	correct := "[[0.000000, 1.000000],[10.000000, 1.000000],[10.000000, -1.000000],[0.000000, -1.000000],[0.000000, 1.000000]]"
	if got := lineAsString(orb.LineString(ring)); got != correct {
		t.Errorf("Lane shape should be '%s', but got '%s'", correct, got)
	}
	if lane.Length() != 10 {
		t.Errorf("Lane length should be 10, but got %f", lane.Length())
	}
}

func TestLaneShapeRepairedOnSharpCurve(t *testing.T) {
	// The inner offset around the hairpin self-intersects for a wide lane
	lane := mustLane(t, map[string]string{
		"id":    "E2_0",
		"index": "0",
		"shape": "0.00,0.00 10.00,0.00 10.00,2.00 1.00,2.00",
		"width": "6.0",
	})
	raw, err := bufferLine(lane.Alignment(), lane.Width)
	if err != nil {
		t.Fatal(err)
	}
	if ringIsSimple(raw[0]) {
		t.Fatalf("Raw buffer should self-intersect, got %s", lineAsString(orb.LineString(raw[0])))
	}
	ring := lane.Shape()[0]
	if !ringIsSimple(ring) {
		t.Errorf("Lane shape should be repaired to a simple ring, got %s", lineAsString(orb.LineString(ring)))
	}
	if len(ring) >= len(raw[0]) {
		t.Error("Repair should drop the pinched-off loop points")
	}
}

func TestLaneDefaults(t *testing.T) {
	lane := mustLane(t, map[string]string{
		"id":    "E3_0",
		"index": "0",
		"shape": "0.00,0.00 5.00,0.00",
	})
	if lane.Width != DefaultLaneWidth {
		t.Errorf("Default lane width should be %f, but got %f", DefaultLaneWidth, lane.Width)
	}
	if !lane.Allow.AllowsAll() {
		t.Error("Default permission set should allow everything")
	}
}

func TestLaneMalformed(t *testing.T) {
	if _, err := NewLane(map[string]string{"id": "E4_0", "shape": "1.00,1.00"}); err == nil {
		t.Error("Single-point shape should be rejected")
	}
	if _, err := NewLane(map[string]string{"id": "E4_0", "shape": "0,0 5,0", "allow": "warpdrive"}); err == nil {
		t.Error("Unknown vehicle class should be rejected")
	}
}

func TestLaneType(t *testing.T) {
	cases := []struct {
		allow    string
		disallow string
		function string
		correct  LaneType
	}{
		{"pedestrian", "", "", LANE_PEDESTRIAN},
		{"pedestrian", "", "crossing", LANE_CROSSWALK},
		{"bicycle", "", "", LANE_BICYCLE},
		{"ship", "", "", LANE_SHIP},
		{"authority", "", "", LANE_AUTHORITY},
		{"", "all", "", LANE_NONE},
		{"", "passenger", "", LANE_NO_PASSENGER},
		{"", "", "", LANE_OTHER},
		{"passenger bus", "", "", LANE_OTHER},
	}
	for _, c := range cases {
		edge := NewEdge(map[string]string{"id": "E", "function": c.function})
		lane := mustLane(t, map[string]string{
			"id": "E_0", "index": "0", "shape": "0,0 5,0",
			"allow": c.allow, "disallow": c.disallow,
		})
		edge.AppendLane(lane)
		if got := lane.Type(); got != c.correct {
			t.Errorf("Lane with allow='%s' disallow='%s' function='%s' should be %s, but got %s",
				c.allow, c.disallow, c.function, c.correct, got)
		}
		if lane.Color() != laneColorScheme[c.correct] {
			t.Errorf("Lane color should follow the type %s", c.correct)
		}
	}
}

func TestInverseIndex(t *testing.T) {
	edge := NewEdge(map[string]string{"id": "E"})
	for i := 0; i < 3; i++ {
		edge.AppendLane(mustLane(t, map[string]string{
			"id": "E_" + string(rune('0'+i)), "index": string(rune('0' + i)), "shape": "0,0 5,0",
		}))
	}
	if edge.Lane(2).InverseIndex() != 0 {
		t.Error("Innermost lane should have inverse index 0")
	}
	if edge.Lane(0).InverseIndex() != 2 {
		t.Error("Curb lane should have inverse index LaneCount-1")
	}
	if edge.Lane(3) != nil || edge.Lane(-1) != nil {
		t.Error("Out-of-range lane lookups should yield nil")
	}
}

func TestLaneEdges(t *testing.T) {
	lane := mustLane(t, map[string]string{
		"id": "E5_0", "index": "0", "shape": "0,0 10,0", "width": "3.0",
	})
	left, err := lane.LeftEdge()
	if err != nil {
		t.Error(err)
		return
	}
	right, err := lane.RightEdge()
	if err != nil {
		t.Error(err)
		return
	}
	if math.Abs(left[0].Y()-1.5) > 1e-9 || math.Abs(right[0].Y()+1.5) > 1e-9 {
		t.Errorf("Lane edges should sit half a width off the centerline, got %v and %v", left[0], right[0])
	}
}

func TestRequiresStopLine(t *testing.T) {
	junction := func(jType string) *Junction {
		j, err := NewJunction(map[string]string{"id": "J", "type": jType})
		if err != nil {
			t.Fatal(err)
		}
		return j
	}
	buildLane := func(j *Junction, yields bool) *Lane {
		edge := NewEdge(map[string]string{"id": "E", "to": "J"})
		edge.toJunction = j
		lane := mustLane(t, map[string]string{"id": "E_0", "index": "0", "shape": "0,0 10,0"})
		edge.AppendLane(lane)
		response := "000"
		if yields {
			response = "010"
		}
		lane.requests = []*Request{{Index: 0, Response: response, Foes: "111"}}
		return lane
	}

	if buildLane(junction("allway_stop"), false).RequiresStopLine() != true {
		t.Error("All-way stop should always require a stop line")
	}
	if buildLane(junction("zipper"), true).RequiresStopLine() != false {
		t.Error("Zipper junctions should never require a stop line")
	}
	if buildLane(junction("internal"), true).RequiresStopLine() != false {
		t.Error("Internal junctions should never require a stop line")
	}
	if buildLane(junction("priority"), true).RequiresStopLine() != true {
		t.Error("A yielding movement should require a stop line")
	}
	if buildLane(junction("priority"), false).RequiresStopLine() != false {
		t.Error("A non-yielding movement should not require a stop line")
	}

	orphan := mustLane(t, map[string]string{"id": "E_0", "index": "0", "shape": "0,0 10,0"})
	if orphan.RequiresStopLine() {
		t.Error("A lane without a destination junction should not require a stop line")
	}
}

func TestStopLineLocations(t *testing.T) {
	edge := NewEdge(map[string]string{"id": "E"})
	lane := mustLane(t, map[string]string{"id": "E_0", "index": "0", "shape": "0,0 10,0"})
	edge.AppendLane(lane)

	// No explicit rules: one implicit full-coverage offset at the lane end
	locations := lane.stopLineLocations()
	if len(locations) != 1 || locations[0].Value != 0 {
		t.Errorf("Expected one implicit zero offset, got %v", locations)
	}

	// A partial rule keeps the implicit zero offset for the uncovered classes
	buses, _ := NewAllowance("bus", "")
	lane.AddStopOffset(StopOffset{Value: 3, Allowance: buses})
	locations = lane.stopLineLocations()
	if len(locations) != 2 {
		t.Errorf("Expected explicit and implicit offsets, got %v", locations)
	}

	// A full-coverage rule stands alone
	all, _ := NewAllowance("", "")
	lane2 := mustLane(t, map[string]string{"id": "E_1", "index": "1", "shape": "0,0 10,0"})
	edge.AppendLane(lane2)
	lane2.AddStopOffset(StopOffset{Value: 2, Allowance: all})
	locations = lane2.stopLineLocations()
	if len(locations) != 1 || locations[0].Value != 2 {
		t.Errorf("Expected only the explicit full-coverage offset, got %v", locations)
	}

	// Edge-level rules are inherited when the lane has none
	lane3 := mustLane(t, map[string]string{"id": "E_2", "index": "2", "shape": "0,0 10,0"})
	edge.AppendLane(lane3)
	edge.AddStopOffset(StopOffset{Value: 5, Allowance: all})
	locations = lane3.stopLineLocations()
	if len(locations) != 1 || locations[0].Value != 5 {
		t.Errorf("Expected the inherited edge offset, got %v", locations)
	}
}
