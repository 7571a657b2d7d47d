package excerpt

import (
	"fmt"

	"github.com/hupe1980/semsearch/model"
)

// Hit is a single piece of evidence for a result entity, either a context
// of the fulltext or an ontology fact.
type Hit struct {
	ContextId       model.Id
	Excerpt         *Excerpt
	Score           model.AggregatedScore
	MatchedEntities []model.Id
}

// NewOntologyHit creates a hit for the ontology fact "lhs rel rhs.".
func NewOntologyHit(lhs, relation, rhs string, score model.AggregatedScore) Hit {
	return Hit{
		ContextId: model.OntologyContextId,
		Excerpt:   NewOntology(lhs, relation, rhs),
		Score:     score,
	}
}

// Text returns the highlighted excerpt, or "" if none is attached.
func (h *Hit) Text() string {
	if h.Excerpt == nil {
		return ""
	}
	return h.Excerpt.Text()
}

func (h Hit) String() string {
	return fmt.Sprintf("(ContextId: %d, Score: %d)", h.ContextId, h.Score)
}

// FullString includes the excerpt fields.
func (h *Hit) FullString() string {
	if h.Excerpt == nil {
		return h.String()
	}
	return fmt.Sprintf("(ContextId:%s, URL:%s, Title:%s, Excerpt:%s, Score: %d)",
		h.Excerpt.ContextId, h.Excerpt.URL, h.Excerpt.Title, h.Excerpt.Text(), h.Score)
}
