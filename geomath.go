package sumonetvis

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// Check if two segments intersects and returns intersections Point
// p1, p2 - first segment
// p3, p4 - second segment
// Note: Euclidean space
func intersect(p1, p2, p3, p4 orb.Point) (orb.Point, error) {
	// Calculate the coefficients of the linear equations
	a1 := p2[1] - p1[1]
	b1 := p1[0] - p2[0]
	c1 := a1*p1[0] + b1*p1[1]
	a2 := p4[1] - p3[1]
	b2 := p3[0] - p4[0]
	c2 := a2*p3[0] + b2*p3[1]

	// Calculate the determinant
	det := a1*b2 - a2*b1
	if det == 0 {
		return orb.Point{}, fmt.Errorf("The lines are parallel")
	}

	// Calculate the intersection point
	x := (b2*c1 - b1*c2) / det
	y := (a1*c2 - a2*c1) / det
	return orb.Point{x, y}, nil
}

// segmentIntersection returns the intersection point of two closed segments,
// if any. Touching at shared endpoints does not count.
func segmentIntersection(a1, a2, b1, b2 orb.Point) (orb.Point, bool) {
	d1 := orb.Point{a2[0] - a1[0], a2[1] - a1[1]}
	d2 := orb.Point{b2[0] - b1[0], b2[1] - b1[1]}
	det := d1[0]*d2[1] - d1[1]*d2[0]
	if det == 0 {
		return orb.Point{}, false
	}
	t := ((b1[0]-a1[0])*d2[1] - (b1[1]-a1[1])*d2[0]) / det
	u := ((b1[0]-a1[0])*d1[1] - (b1[1]-a1[1])*d1[0]) / det
	const eps = 1e-12
	if t < eps || t > 1-eps || u < eps || u > 1-eps {
		return orb.Point{}, false
	}
	return orb.Point{a1[0] + t*d1[0], a1[1] + t*d1[1]}, true
}

// offsetCurve produces a parallel polyline at the given signed distance.
// Positive distances offset to the left of the direction of travel, negative
// ones to the right.
func offsetCurve(line orb.LineString, distance float64) (orb.LineString, error) {
	if len(line) < 2 {
		return nil, errors.Wrap(ErrCurveOffset, "line needs at least 2 points")
	}

	// Iterate over line segments and calculate offset segments
	var segments [][2]orb.Point
	for i := 1; i < len(line); i++ {
		p1 := line[i-1]
		p2 := line[i]

		// Calculate the vector between the points
		vec := [2]float64{p2[0] - p1[0], p2[1] - p1[1]}
		vecLen := math.Sqrt(vec[0]*vec[0] + vec[1]*vec[1])
		if vecLen == 0 {
			// Zero-length segments carry no direction
			continue
		}
		vec = [2]float64{vec[0] / vecLen, vec[1] / vecLen}

		// Rotate the normalized vector by 90 degrees and scale it by the distance
		offset := [2]float64{-vec[1] * distance, vec[0] * distance}

		op1 := orb.Point{p1[0] + offset[0], p1[1] + offset[1]}
		op2 := orb.Point{p2[0] + offset[0], p2[1] + offset[1]}
		segments = append(segments, [2]orb.Point{op1, op2})
	}
	if len(segments) == 0 {
		return nil, errors.Wrap(ErrCurveOffset, "line is degenerate")
	}

	result := orb.LineString{segments[0][0]}
	// Iterate over the segments and calculate the intersections
	for i := 1; i < len(segments); i++ {
		seg1 := segments[i-1]
		seg2 := segments[i]
		intersection, err := intersect(seg1[0], seg1[1], seg2[0], seg2[1])
		if err != nil {
			// Collinear neighbors share the joint point
			result = append(result, seg1[1])
			continue
		}
		result = append(result, intersection)
	}
	result = append(result, segments[len(segments)-1][1])
	return result, nil
}

// lineLength returns Euclidean length of given line
func lineLength(line orb.LineString) float64 {
	return planar.Length(line)
}

// pointAtDistance returns the point at the given arc length along the line.
// Distances outside [0, length] clamp to the line ends.
func pointAtDistance(line orb.LineString, distance float64) orb.Point {
	if distance <= 0 {
		return line[0]
	}
	traveled := 0.0
	for i := 1; i < len(line); i++ {
		segment := planar.Distance(line[i-1], line[i])
		if segment > 0 && traveled+segment >= distance {
			fraction := (distance - traveled) / segment
			return orb.Point{
				(1-fraction)*line[i-1][0] + fraction*line[i][0],
				(1-fraction)*line[i-1][1] + fraction*line[i][1],
			}
		}
		traveled += segment
	}
	return line[len(line)-1]
}

// substring extracts the part of the line between the given start and end arc
// lengths. Bounds are clamped to the line length.
func substring(line orb.LineString, start, end float64) orb.LineString {
	total := lineLength(line)
	start = math.Max(0, start)
	end = math.Min(total, end)
	if end <= start {
		pt := pointAtDistance(line, start)
		return orb.LineString{pt, pt}
	}
	result := orb.LineString{pointAtDistance(line, start)}
	traveled := 0.0
	for i := 1; i < len(line)-1; i++ {
		traveled += planar.Distance(line[i-1], line[i])
		if traveled > start && traveled < end {
			result = append(result, line[i])
		}
	}
	result = append(result, pointAtDistance(line, end))
	return result
}

// reverseLine reverses order of points in given line. Returns new slice
func reverseLine(pts orb.LineString) orb.LineString {
	inputLen := len(pts)
	output := make(orb.LineString, inputLen)
	for i, n := range pts {
		j := inputLen - i - 1
		output[j] = n
	}
	return output
}

// bufferLine buffers a polyline symmetrically to a polygon with flat end
// caps: the left offset curve joined to the reversed right offset curve.
func bufferLine(line orb.LineString, width float64) (orb.Polygon, error) {
	half := width / 2.0
	left, err := offsetCurve(line, half)
	if err != nil {
		return nil, err
	}
	right, err := offsetCurve(line, -half)
	if err != nil {
		return nil, err
	}
	ring := make(orb.Ring, 0, len(left)+len(right)+1)
	ring = append(ring, left...)
	ring = append(ring, reverseLine(right)...)
	ring = append(ring, ring[0])
	return orb.Polygon{ring}, nil
}

// ringIsSimple reports whether no two non-adjacent ring segments intersect.
func ringIsSimple(ring orb.Ring) bool {
	n := len(ring) - 1 // closing point repeats the first one
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if _, ok := segmentIntersection(ring[i], ring[i+1], ring[j], ring[j+1]); ok {
				return false
			}
		}
	}
	return true
}

// repairRing removes self-intersection loops from a ring by cutting each
// crossing at its intersection point and dropping the enclosed loop.
func repairRing(ring orb.Ring) orb.Ring {
	const maxPasses = 16
	for pass := 0; pass < maxPasses; pass++ {
		n := len(ring) - 1
		crossed := false
		for i := 0; i < n && !crossed; i++ {
			for j := i + 2; j < n; j++ {
				if i == 0 && j == n-1 {
					continue
				}
				pt, ok := segmentIntersection(ring[i], ring[i+1], ring[j], ring[j+1])
				if !ok {
					continue
				}
				repaired := make(orb.Ring, 0, len(ring)-(j-i)+1)
				repaired = append(repaired, ring[:i+1]...)
				repaired = append(repaired, pt)
				repaired = append(repaired, ring[j+1:]...)
				ring = repaired
				crossed = true
				break
			}
		}
		if !crossed {
			return ring
		}
	}
	return ring
}

// ringArea returns the absolute planar area of the ring.
func ringArea(ring orb.Ring) float64 {
	return math.Abs(planar.Area(ring))
}
