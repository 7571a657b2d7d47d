package engine

import (
	"github.com/hupe1980/semsearch/model"
)

// FilterByWordId keeps the postings of wordId and, within each context,
// the entity postings that follow a kept word posting.
func FilterByWordId(list model.PostingList, wordId model.Id) model.PostingList {
	return filterByWord(list, func(id model.Id) bool { return id == wordId })
}

// FilterByWordRange is FilterByWordId for all word ids in [lo, hi].
func FilterByWordRange(list model.PostingList, lo, hi model.Id) model.PostingList {
	if lo == hi {
		return FilterByWordId(list, lo)
	}
	if lo > hi {
		return model.PostingList{}
	}
	return filterByWord(list, func(id model.Id) bool { return id >= lo && id <= hi })
}

func filterByWord(list model.PostingList, match func(model.Id) bool) model.PostingList {
	out := model.PostingList{}
	if len(list) == 0 {
		return out
	}

	ctx := list[0].ContextId
	keepEntities := false
	for _, p := range list {
		if p.ContextId != ctx {
			ctx = p.ContextId
			keepEntities = false
		}
		if match(p.Id) {
			keepEntities = true
			out = append(out, p)
			continue
		}
		if keepEntities && model.IsOntology(p.Id) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByEntitySet keeps the postings whose id is one of the entities.
func FilterByEntitySet(list model.PostingList, entities model.EntityList) model.PostingList {
	set := NewEntitySet(entities)
	out := model.PostingList{}
	for _, p := range list {
		if set.Contains(p.Id) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByEntitySetKeepWordPostings keeps the postings of the entities
// together with all word postings of the contexts they occur in.
func FilterByEntitySetKeepWordPostings(list model.PostingList, entities model.EntityList) model.PostingList {
	set := NewEntitySet(entities)
	return filterContexts(list, set.Contains, nil)
}

// FilterContextsByEntitySet keeps all postings of the contexts that
// contain at least one of the entities.
func FilterContextsByEntitySet(list model.PostingList, entities model.EntityList) model.PostingList {
	set := NewEntitySet(entities)
	return filterContexts(list, set.Contains, func(model.Id) bool { return true })
}

// FilterByEntityId keeps the postings of one entity together with all word
// postings of the contexts it occurs in.
func FilterByEntityId(list model.PostingList, entityId model.Id) model.PostingList {
	return filterContexts(list, func(id model.Id) bool { return id == entityId }, nil)
}

// FilterByEntityIdWithExtra is FilterByEntityId that also keeps the postings
// of extra entities in the contexts of entityId, wherever they occur in
// the context relative to the anchor.
func FilterByEntityIdWithExtra(list model.PostingList, entityId model.Id, extra *EntitySet) model.PostingList {
	return filterContexts(list, func(id model.Id) bool { return id == entityId }, extra.Contains)
}

// filterContexts keeps, for every context with at least one anchor posting,
// the word postings, the anchor postings and the postings of extra
// entities, in input order. Other contexts are dropped.
func filterContexts(list model.PostingList, anchor, extra func(model.Id) bool) model.PostingList {
	out := model.PostingList{}
	for start := 0; start < len(list); {
		end := start + 1
		for end < len(list) && list[end].ContextId == list[start].ContextId {
			end++
		}

		anchored := false
		for _, p := range list[start:end] {
			if model.IsOntology(p.Id) && anchor(p.Id) {
				anchored = true
				break
			}
		}
		if anchored {
			for _, p := range list[start:end] {
				switch {
				case !model.IsOntology(p.Id), anchor(p.Id):
					out = append(out, p)
				case extra != nil && extra(p.Id):
					out = append(out, p)
				}
			}
		}
		start = end
	}
	return out
}
