package geom

// ConvexHull returns the convex hull of points in counter-clockwise order,
// starting at the leftmost point (lowest one on ties). It uses a gift-wrapping
// walk: from the current hull point the next one is the candidate that leaves
// every other point on its left, preferring the farthest among collinear
// candidates. It returns nil when fewer than 3 points are given or when the
// points do not span an area.
func ConvexHull(points []Point) []Point {
	if len(points) < 3 {
		return nil
	}

	start := 0
	for i, p := range points {
		l := points[start]
		if p.X < l.X || (p.X == l.X && p.Y < l.Y) {
			start = i
		}
	}

	hull := []Point{points[start]}
	current := points[start]
	for range points {
		next := current
		for _, p := range points {
			if p == current {
				continue
			}
			if next == current {
				next = p
				continue
			}
			turn := cross(current, next, p)
			if turn < 0 || (turn == 0 && dist2(current, p) > dist2(current, next)) {
				next = p
			}
		}
		if next == current || next == hull[0] {
			break
		}
		hull = append(hull, next)
		current = next
	}

	if len(hull) < 3 {
		return nil
	}
	return hull
}

// cross is the z component of (b-a)x(c-a): positive when c lies to the left
// of the directed line a->b.
func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func dist2(a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	return dx*dx + dy*dy
}
