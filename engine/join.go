package engine

import (
	"github.com/hupe1980/semsearch/model"
)

// JoinOnContext intersects two posting lists sorted by context id. For every
// context present in both, all postings of that context from both sides are
// emitted, merged by ascending id.
func JoinOnContext(a, b model.PostingList) model.PostingList {
	out := model.PostingList{}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i].ContextId, b[j].ContextId
		switch {
		case ca < cb:
			i++
		case cb < ca:
			j++
		default:
			ei := contextEnd(a, i)
			ej := contextEnd(b, j)
			out = mergeById(out, a[i:ei], b[j:ej])
			i, j = ei, ej
		}
	}
	return out
}

// contextEnd returns the end of the context run starting at i.
func contextEnd(list model.PostingList, i int) int {
	ctx := list[i].ContextId
	for i < len(list) && list[i].ContextId == ctx {
		i++
	}
	return i
}

func mergeById(out, a, b model.PostingList) model.PostingList {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].Id <= b[j].Id {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
