package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/routegen/internal/ir"
)

// DeprecationWarning describes a questionable deprecation chain.
//
// Warnings do not block generation: the emitted code only logs the
// replacement name, so a bad chain misleads callers but still compiles.
type DeprecationWarning struct {
	Path    []string `json:"path"`    // route keys, e.g. ["files/copy", "files/copy:2"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeDeprecations reports deprecation chains that never settle on a
// live route.
//
// Each deprecated route with a known replacement is an edge
// route → replacement. The analysis:
//  1. Builds that graph over every route of the API
//  2. Uses Tarjan's algorithm to find strongly connected components
//  3. Reports each component with size > 1, or a self-loop, as a cycle
//     ("warning")
//  4. Reports each route whose replacement is itself deprecated as
//     "info", naming the end of the chain
//
// Results are sorted by path so repeated runs print the same report.
func AnalyzeDeprecations(api *ir.API) []DeprecationWarning {
	graph := buildDeprecationGraph(api)
	if len(graph) == 0 {
		return []DeprecationWarning{}
	}

	warnings := []DeprecationWarning{}
	inCycle := make(map[string]bool)
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			for _, node := range scc {
				inCycle[node] = true
			}
			warnings = append(warnings, cycleToWarning(scc, graph))
		}
	}

	for _, node := range sortedNodes(graph) {
		next := graph[node]
		if len(next) == 0 || inCycle[node] {
			continue
		}
		if len(graph[next[0]]) == 0 {
			continue // replacement is live
		}
		path := []string{node}
		for cur := next[0]; ; cur = graph[cur][0] {
			path = append(path, cur)
			if len(graph[cur]) == 0 || inCycle[cur] {
				break
			}
		}
		warnings = append(warnings, DeprecationWarning{
			Path:    path,
			Message: fmt.Sprintf("Replacement of %s is itself deprecated: %s", node, strings.Join(path, " → ")),
			Level:   "info",
		})
	}

	sort.SliceStable(warnings, func(i, j int) bool {
		return strings.Join(warnings[i].Path, " ") < strings.Join(warnings[j].Path, " ")
	})
	return warnings
}

// RouteKey identifies a route as "namespace/name", with ":<version>"
// appended for versions other than 1.
func RouteKey(ns, name string, version int) string {
	if version == 1 {
		return ns + "/" + name
	}
	return fmt.Sprintf("%s/%s:%d", ns, name, version)
}

// dependencyGraph maps route key → replacement route key (at most one).
type dependencyGraph map[string][]string

// buildDeprecationGraph contains a node for every route. Only deprecated
// routes whose replacement exists have an edge.
func buildDeprecationGraph(api *ir.API) dependencyGraph {
	graph := make(dependencyGraph)
	for _, ns := range api.Namespaces {
		for _, r := range ns.Routes {
			key := RouteKey(ns.Name, r.Name, r.EffectiveVersion())
			if graph[key] == nil {
				graph[key] = []string{}
			}
			if r.Deprecated == nil || r.Deprecated.By == nil {
				continue
			}
			by := *r.Deprecated.By
			if _, ok := api.LookupRoute(by); !ok {
				continue // reported by Validate as E107
			}
			graph[key] = append(graph[key], RouteKey(by.Namespace, by.Name, by.EffectiveVersion()))
		}
	}
	return graph
}

func sortedNodes(graph dependencyGraph) []string {
	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order.
func tarjanSCC(graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack into an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range sortedNodes(graph) {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// cycleToWarning converts an SCC into a warning whose path starts at the
// smallest key and follows replacement edges back to it.
func cycleToWarning(scc []string, graph dependencyGraph) DeprecationWarning {
	sort.Strings(scc)
	start := scc[0]
	path := []string{start}
	for cur := graph[start][0]; ; cur = graph[cur][0] {
		path = append(path, cur)
		if cur == start {
			break
		}
	}

	if len(scc) == 1 {
		return DeprecationWarning{
			Path:    path,
			Message: fmt.Sprintf("Route deprecated in favour of itself: %s", start),
			Level:   "warning",
		}
	}
	return DeprecationWarning{
		Path:    path,
		Message: fmt.Sprintf("Deprecation cycle detected: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}
