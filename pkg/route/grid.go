package route

import (
	"container/heap"
	"math"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
)

// Move directions. dirNone marks the start state.
const (
	dirRight = iota
	dirDown
	dirLeft
	dirUp
	dirNone
)

var (
	stepX = [4]int{1, 0, -1, 0}
	stepY = [4]int{0, 1, 0, -1}
)

// grid is a uniform cell grid. Node (i, j) sits at the top-left corner of
// cell (i, j); a node is usable when its cell is free.
type grid struct {
	ox, oy     float64
	cell       float64
	cols, rows int
	blocked    []bool
}

func (g *grid) index(i, j int) int { return j*g.cols + i }

func (g *grid) inside(i, j int) bool {
	return i >= 0 && i < g.cols && j >= 0 && j < g.rows
}

// cellOf truncates p to a cell index.
func (g *grid) cellOf(p geom.Point) (int, int) {
	i := int((p.X - g.ox) / g.cell)
	j := int((p.Y - g.oy) / g.cell)
	return i, j
}

func (g *grid) node(i, j int) geom.Point {
	return geom.Point{X: g.ox + float64(i)*g.cell, Y: g.oy + float64(j)*g.cell}
}

func (g *grid) cellRect(i, j int) geom.Rect {
	p := g.node(i, j)
	return geom.Rect{Min: p, Max: geom.Point{X: p.X + g.cell, Y: p.Y + g.cell}}
}

// newGrid covers both endpoints and every obstacle with a margin of free
// cells. It returns nil when the grid would exceed MaxCells.
func (r *Router) newGrid(start, end geom.Point, obstacles, blocks []geom.Rect) *grid {
	region := geom.Bounds(start, end)
	for _, o := range obstacles {
		region = region.Union(o.Inflate(r.cfg.Padding))
	}

	cell := r.cfg.GridSize
	m := r.cfg.MarginCells
	g := &grid{
		ox:   (math.Floor(region.Min.X/cell) - float64(m)) * cell,
		oy:   (math.Floor(region.Min.Y/cell) - float64(m)) * cell,
		cell: cell,
	}
	g.cols = int(math.Ceil((region.Max.X-g.ox)/cell)) + m + 1
	g.rows = int(math.Ceil((region.Max.Y-g.oy)/cell)) + m + 1
	if g.cols*g.rows > r.cfg.MaxCells {
		return nil
	}

	g.blocked = make([]bool, g.cols*g.rows)
	for _, b := range blocks {
		i0, j0 := g.cellOf(b.Min)
		i1, j1 := g.cellOf(b.Max)
		for j := max(j0, 0); j <= min(j1, g.rows-1); j++ {
			for i := max(i0, 0); i <= min(i1, g.cols-1); i++ {
				if g.cellRect(i, j).Overlaps(b) {
					g.blocked[g.index(i, j)] = true
				}
			}
		}
	}
	return g
}

type state struct {
	cell int
	dir  int
}

type cost struct {
	length int
	bends  int
}

func (c cost) less(o cost) bool {
	if c.length != o.length {
		return c.length < o.length
	}
	return c.bends < o.bends
}

// search runs A* over the grid. States carry the incoming direction so the
// bend count can break ties between equal-length paths.
func (r *Router) search(start, end geom.Point, obstacles, blocks []geom.Rect) ([]geom.Point, bool) {
	g := r.newGrid(start, end, obstacles, blocks)
	if g == nil {
		return nil, false
	}

	si, sj := g.cellOf(start)
	ei, ej := g.cellOf(end)
	if !g.inside(si, sj) || !g.inside(ei, ej) {
		return nil, false
	}
	g.blocked[g.index(si, sj)] = false
	g.blocked[g.index(ei, ej)] = false

	goal := g.index(ei, ej)
	first := state{cell: g.index(si, sj), dir: dirNone}
	best := map[state]cost{first: {}}
	cameFrom := make(map[state]state)
	closed := make(map[state]bool)

	pq := &searchQueue{}
	heap.Init(pq)
	var seq int
	heap.Push(pq, &searchItem{st: first, f: manhattan(si, sj, ei, ej), seq: seq})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*searchItem)
		cur := item.st
		if closed[cur] {
			continue
		}
		closed[cur] = true

		if cur.cell == goal {
			return finish(start, end, reconstruct(g, cameFrom, cur), blocks), true
		}

		ci, cj := cur.cell%g.cols, cur.cell/g.cols
		cc := best[cur]
		for d := 0; d < 4; d++ {
			ni, nj := ci+stepX[d], cj+stepY[d]
			if !g.inside(ni, nj) || g.blocked[g.index(ni, nj)] {
				continue
			}
			next := state{cell: g.index(ni, nj), dir: d}
			if closed[next] {
				continue
			}
			nc := cost{length: cc.length + 1, bends: cc.bends}
			if cur.dir != dirNone && cur.dir != d {
				nc.bends++
			}
			if prev, ok := best[next]; ok && !nc.less(prev) {
				continue
			}
			best[next] = nc
			cameFrom[next] = cur
			seq++
			heap.Push(pq, &searchItem{
				st:    next,
				f:     nc.length + manhattan(ni, nj, ei, ej),
				bends: nc.bends,
				seq:   seq,
			})
		}
	}
	return nil, false
}

func reconstruct(g *grid, cameFrom map[state]state, last state) []geom.Point {
	var nodes []geom.Point
	st := last
	for {
		nodes = append(nodes, g.node(st.cell%g.cols, st.cell/g.cols))
		prev, ok := cameFrom[st]
		if !ok {
			break
		}
		st = prev
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return nodes
}

// finish attaches the grid nodes to the real endpoints. The first and last
// straight runs are moved onto the endpoint coordinates when that keeps the
// path clear; otherwise short jogs are inserted inside the endpoint cells.
func finish(start, end geom.Point, nodes []geom.Point, blocks []geom.Rect) []geom.Point {
	if path, ok := shiftRuns(start, end, nodes); ok && clear(path, blocks) {
		return turnsOf(path)
	}
	return turnsOf(insertCorners(start, end, nodes))
}

func shiftRuns(start, end geom.Point, nodes []geom.Point) ([]geom.Point, bool) {
	if len(nodes) < 2 {
		return nil, false
	}
	pts := append([]geom.Point(nil), nodes...)

	horizontal := func(a, b geom.Point) bool { return a.Y == b.Y }

	firstH := horizontal(pts[0], pts[1])
	firstEnd := 1
	for firstEnd+1 < len(pts) && horizontal(pts[firstEnd], pts[firstEnd+1]) == firstH {
		firstEnd++
	}
	n := len(pts)
	lastH := horizontal(pts[n-2], pts[n-1])
	lastStart := n - 2
	for lastStart > 0 && horizontal(pts[lastStart-1], pts[lastStart]) == lastH {
		lastStart--
	}

	if firstEnd == n-1 {
		// Single straight run: only usable if both endpoints share its line
		if (firstH && start.Y != end.Y) || (!firstH && start.X != end.X) {
			return nil, false
		}
	}

	for k := 0; k <= firstEnd; k++ {
		if firstH {
			pts[k].Y = start.Y
		} else {
			pts[k].X = start.X
		}
	}
	for k := lastStart; k < n; k++ {
		if lastH {
			pts[k].Y = end.Y
		} else {
			pts[k].X = end.X
		}
	}

	path := make([]geom.Point, 0, n+2)
	path = append(path, start)
	path = append(path, pts...)
	path = append(path, end)
	if !geom.IsOrthogonal(path) {
		return nil, false
	}
	return path, true
}

func insertCorners(start, end geom.Point, nodes []geom.Point) []geom.Point {
	path := []geom.Point{start}
	for _, p := range append(append([]geom.Point(nil), nodes...), end) {
		last := path[len(path)-1]
		if last.X != p.X && last.Y != p.Y {
			path = append(path, geom.Point{X: p.X, Y: last.Y})
		}
		path = append(path, p)
	}
	return path
}

func manhattan(i0, j0, i1, j1 int) int {
	return abs(i1-i0) + abs(j1-j0)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// searchItem is a node in the A* priority queue.
type searchItem struct {
	st    state
	f     int
	bends int
	seq   int
	index int
}

// searchQueue orders by estimated length, then bends, then insertion order.
type searchQueue []*searchItem

func (q searchQueue) Len() int { return len(q) }

func (q searchQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].bends != q[j].bends {
		return q[i].bends < q[j].bends
	}
	return q[i].seq < q[j].seq
}

func (q searchQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *searchQueue) Push(x any) {
	item := x.(*searchItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *searchQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}
