package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/semsearch/model"
)

// TripleSeparator separates the triples of a query string.
const TripleSeparator = ";"

// parsedTriple is "source relation dest..." with the destinations split
// into variables and words.
type parsedTriple struct {
	source   string
	relation string
	vars     []string
	words    []string
}

func isVariable(token string) bool {
	return token != "" && token[0] == model.VariableStart
}

func parseTriple(s string) (parsedTriple, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return parsedTriple{}, badQuery("triple %q needs a subject, a relation and an object", s)
	}
	t := parsedTriple{source: fields[0], relation: fields[1]}
	if !isVariable(t.source) {
		return parsedTriple{}, badQuery("subject %q of triple %q is not a variable", t.source, s)
	}
	for _, tok := range fields[2:] {
		if isVariable(tok) {
			if tok == t.source {
				return parsedTriple{}, fmt.Errorf("%w: triple %q relates %s to itself", ErrCyclicQuery, s, tok)
			}
			t.vars = append(t.vars, tok)
		} else {
			t.words = append(t.words, tok)
		}
	}

	switch t.relation {
	case model.IsARelation, model.EqualsRelation:
		if len(t.words) != 1 || len(t.vars) != 0 {
			return parsedTriple{}, badQuery("%s in %q needs exactly one ontology word", t.relation, s)
		}
	case model.OccursWithRelation:
	default:
		if len(t.words) != 0 || len(t.vars) != 1 {
			return parsedTriple{}, badQuery("%s in %q needs exactly one variable", t.relation, s)
		}
	}
	return t, nil
}

// reversed returns the copies of t seen from each destination variable.
func (t parsedTriple) reversed() []parsedTriple {
	out := make([]parsedTriple, 0, len(t.vars))
	for i, v := range t.vars {
		vars := slices.Clone(t.vars)
		vars[i] = t.source
		rel := t.relation
		if rel != model.OccursWithRelation {
			rel = model.ReverseRelation(rel)
		}
		out = append(out, parsedTriple{source: v, relation: rel, vars: vars, words: t.words})
	}
	return out
}

// ConstructFromTriples builds the query tree rooted at the variable root
// from a string of triples "$x relation object" separated by
// TripleSeparator.
//
// Objects of is-a and equals are a single ontology word; occurs-with takes
// any mix of words and variables; every other relation takes a single
// variable. The variables must form a tree: a cycle fails with
// ErrCyclicQuery, as does a variable that is unreachable from root with
// ErrBadQuery.
func ConstructFromTriples(triples, root string) (*Node, error) {
	n, err := constructFromTriples(triples, root)
	if err != nil {
		return nil, &QueryError{Triples: triples, Root: root, cause: err}
	}
	return n, nil
}

func constructFromTriples(triples, root string) (*Node, error) {
	if !isVariable(root) {
		return nil, badQuery("root %q is not a variable", root)
	}

	var (
		byVar     = make(map[string][]parsedTriple)
		neighbors = make(map[string][]string)
	)
	for _, s := range strings.Split(triples, TripleSeparator) {
		if strings.TrimSpace(s) == "" {
			return nil, badQuery("found empty triple")
		}
		t, err := parseTriple(s)
		if err != nil {
			return nil, err
		}
		byVar[t.source] = append(byVar[t.source], t)
		if _, ok := neighbors[t.source]; !ok {
			neighbors[t.source] = nil
		}
		for _, r := range t.reversed() {
			byVar[r.source] = append(byVar[r.source], r)
		}
		for _, v := range t.vars {
			neighbors[t.source] = appendUnique(neighbors[t.source], v)
			neighbors[v] = appendUnique(neighbors[v], t.source)
		}
	}
	if _, ok := neighbors[root]; !ok {
		return nil, badQuery("root %s does not occur in the query", root)
	}

	order, err := bfs(root, neighbors)
	if err != nil {
		return nil, err
	}
	if len(order) != len(neighbors) {
		for v := range neighbors {
			if !slices.Contains(order, v) {
				return nil, badQuery("variable %s is not connected to %s", v, root)
			}
		}
	}

	built := make(map[string]*Node, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		v := order[i]
		var ts []Triple
		for _, t := range byVar[v] {
			if tr := buildTriple(t, built); tr != nil {
				ts = append(ts, tr)
			}
		}
		if len(ts) == 0 {
			return nil, badQuery("variable %s is unconstrained", v)
		}
		built[v] = NewNode(NewDisjunct(ts...))
	}
	return built[root], nil
}

// buildTriple returns nil if t refers to a variable that is not built yet,
// i.e. a variable closer to the root.
func buildTriple(t parsedTriple, built map[string]*Node) Triple {
	switch t.relation {
	case model.IsARelation:
		return NewIsATriple(t.words[0])
	case model.EqualsRelation:
		return NewEqualsTriple(t.words[0])
	case model.OccursWithRelation:
		subtrees := make([]*Node, 0, len(t.vars))
		for _, v := range t.vars {
			n, ok := built[v]
			if !ok {
				return nil
			}
			subtrees = append(subtrees, n)
		}
		return NewOccursWithTriple(t.words, subtrees...)
	default:
		n, ok := built[t.vars[0]]
		if !ok {
			return nil
		}
		return NewRelationTriple(t.relation, n)
	}
}

// bfs returns the variables reachable from root in breadth-first order.
// Reaching a variable twice means the query graph has a cycle.
func bfs(root string, neighbors map[string][]string) ([]string, error) {
	parent := map[string]string{root: ""}
	order := []string{root}
	for i := 0; i < len(order); i++ {
		v := order[i]
		for _, w := range neighbors[v] {
			if w == parent[v] {
				continue
			}
			if _, seen := parent[w]; seen {
				return nil, fmt.Errorf("%w: %s is reachable from %s on two paths", ErrCyclicQuery, w, root)
			}
			parent[w] = v
			order = append(order, w)
		}
	}
	return order, nil
}

func appendUnique(s []string, v string) []string {
	if slices.Contains(s, v) {
		return s
	}
	return append(s, v)
}
