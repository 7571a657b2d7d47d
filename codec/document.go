package codec

import (
	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/query"
)

// Document is the wire form of a query result.
type Document struct {
	Query     string        `json:"query,omitempty"`
	Words     Box[Item]     `json:"words"`
	Classes   Box[Item]     `json:"classes"`
	Instances Box[Item]     `json:"instances"`
	Relations Box[Relation] `json:"relations"`
	HitGroups Box[HitGroup] `json:"hitGroups"`
}

// Box is one paginated section.
type Box[T any] struct {
	Total int `json:"total"`
	First int `json:"first"`
	Items []T `json:"items"`
}

// Item is a named, scored entry.
type Item struct {
	Name  string `json:"name"`
	Score uint32 `json:"score"`
}

// Relation is an entry of the relations box.
type Relation struct {
	Name     string `json:"name"`
	LhsType  string `json:"lhsType,omitempty"`
	RhsType  string `json:"rhsType,omitempty"`
	Reversed bool   `json:"reversed,omitempty"`
	Score    uint32 `json:"score"`
}

// HitGroup is an entity with its evidence.
type HitGroup struct {
	Entity string `json:"entity"`
	Score  uint32 `json:"score"`
	Hits   []Hit  `json:"hits"`
}

// Hit is one piece of evidence. Ontology hits have no context id.
type Hit struct {
	ContextId string `json:"contextId"`
	URL       string `json:"url,omitempty"`
	Title     string `json:"title,omitempty"`
	Excerpt   string `json:"excerpt"`
	Score     uint32 `json:"score"`
}

// NewDocument converts a query result. q may be nil.
func NewDocument(q *query.Query, r *query.QueryResult) Document {
	d := Document{
		Words:     items(r.Words),
		Classes:   items(r.Classes),
		Instances: items(r.Instances),
		Relations: Box[Relation]{Total: r.Relations.Total, First: r.Relations.First, Items: make([]Relation, 0, len(r.Relations.Items))},
		HitGroups: Box[HitGroup]{Total: r.HitGroups.Total, First: r.HitGroups.First, Items: make([]HitGroup, 0, len(r.HitGroups.Items))},
	}
	if q != nil {
		d.Query = q.String()
	}
	for _, e := range r.Relations.Items {
		d.Relations.Items = append(d.Relations.Items, Relation{
			Name:     e.Relation,
			LhsType:  e.LhsType,
			RhsType:  e.RhsType,
			Reversed: e.Reversed,
			Score:    uint32(e.Score),
		})
	}
	for _, g := range r.HitGroups.Items {
		hg := HitGroup{Entity: g.Entity, Score: uint32(g.Score), Hits: make([]Hit, 0, len(g.Hits))}
		for i := range g.Hits {
			hg.Hits = append(hg.Hits, hit(&g.Hits[i]))
		}
		d.HitGroups.Items = append(d.HitGroups.Items, hg)
	}
	return d
}

func items(b query.Box[query.ItemWithScore]) Box[Item] {
	out := Box[Item]{Total: b.Total, First: b.First, Items: make([]Item, 0, len(b.Items))}
	for _, it := range b.Items {
		out.Items = append(out.Items, Item{Name: it.Item, Score: uint32(it.Score)})
	}
	return out
}

func hit(h *excerpt.Hit) Hit {
	out := Hit{Excerpt: h.Text(), Score: uint32(h.Score)}
	if h.Excerpt != nil {
		out.ContextId = h.Excerpt.ContextId
		out.URL = h.Excerpt.URL
		out.Title = h.Excerpt.Title
	}
	return out
}

// EncodeResult renders a query result with c, or Default if c is nil.
func EncodeResult(c Codec, q *query.Query, r *query.QueryResult) ([]byte, error) {
	if c == nil {
		c = Default
	}
	return c.Encode(NewDocument(q, r))
}
