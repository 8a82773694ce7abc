package search

import "container/heap"

// weightedGraph is a directed graph with float weights whose vertex and edge
// order is the insertion order, so shortest paths are reproducible.
type weightedGraph struct {
	index map[string]int
	names []string
	adj   [][]weightedEdge
}

type weightedEdge struct {
	to     int
	weight float64
}

func newWeightedGraph() *weightedGraph {
	return &weightedGraph{index: make(map[string]int)}
}

func (g *weightedGraph) vertex(name string) int {
	if i, ok := g.index[name]; ok {
		return i
	}
	i := len(g.names)
	g.index[name] = i
	g.names = append(g.names, name)
	g.adj = append(g.adj, nil)
	return i
}

func (g *weightedGraph) setEdge(from, to string, weight float64) {
	f, t := g.vertex(from), g.vertex(to)
	for i := range g.adj[f] {
		if g.adj[f][i].to == t {
			g.adj[f][i].weight = weight
			return
		}
	}
	g.adj[f] = append(g.adj[f], weightedEdge{to: t, weight: weight})
}

func (g *weightedGraph) addWeight(from, to string, delta float64) {
	f, ok := g.index[from]
	if !ok {
		return
	}
	t := g.index[to]
	for i := range g.adj[f] {
		if g.adj[f][i].to == t {
			g.adj[f][i].weight += delta
			return
		}
	}
}

func (g *weightedGraph) removeEdge(from, to string) {
	f, ok := g.index[from]
	if !ok {
		return
	}
	t := g.index[to]
	edges := g.adj[f]
	for i := range edges {
		if edges[i].to == t {
			g.adj[f] = append(edges[:i:i], edges[i+1:]...)
			return
		}
	}
}

// shortestPath runs Dijkstra from one vertex to another and returns the vertex
// names along the path, or nil when to is unreachable. Equal distances are
// settled in the order they were queued.
func (g *weightedGraph) shortestPath(from, to string) []string {
	src, ok := g.index[from]
	if !ok {
		return nil
	}
	dst, ok := g.index[to]
	if !ok {
		return nil
	}
	if src == dst {
		return []string{from}
	}

	n := len(g.names)
	dist := make([]float64, n)
	prev := make([]int, n)
	seen := make([]bool, n)
	settled := make([]bool, n)
	for i := range prev {
		prev[i] = -1
	}

	pq := &queue{}
	seq := 0
	seen[src] = true
	heap.Push(pq, item{vertex: src, seq: seq})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(item)
		if settled[cur.vertex] {
			continue
		}
		settled[cur.vertex] = true
		if cur.vertex == dst {
			break
		}
		for _, e := range g.adj[cur.vertex] {
			if settled[e.to] {
				continue
			}
			d := dist[cur.vertex] + e.weight
			if !seen[e.to] || d < dist[e.to] {
				seen[e.to] = true
				dist[e.to] = d
				prev[e.to] = cur.vertex
				seq++
				heap.Push(pq, item{vertex: e.to, dist: d, seq: seq})
			}
		}
	}

	if !settled[dst] {
		return nil
	}
	var rev []string
	for v := dst; v != -1; v = prev[v] {
		rev = append(rev, g.names[v])
	}
	path := make([]string, len(rev))
	for i, name := range rev {
		path[len(rev)-1-i] = name
	}
	return path
}

type item struct {
	vertex int
	dist   float64
	seq    int
}

type queue []item

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}
func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x any)   { *q = append(*q, x.(item)) }
func (q *queue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}
