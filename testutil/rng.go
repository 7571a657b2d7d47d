package testutil

import (
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/hupe1980/semsearch/model"
)

// RNG is a seeded random source for property tests. It is safe for
// concurrent use.
type RNG struct {
	mu   sync.Mutex
	rand *rand.Rand
	seed uint64
}

// NewRNG creates an RNG with the given seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), seed: seed}
}

// Reset restarts the sequence from the seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewPCG(r.seed, r.seed^0x9e3779b97f4a7c15))
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// IntN returns a number in [0, n).
func (r *RNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Shuffle randomizes the order of n elements.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(n, swap)
}

// Postings returns n postings over 20 word and 20 entity ids and about n/3
// contexts, sorted by context, then id, the order of index blocks.
func (r *RNG) Postings(n int) model.PostingList {
	r.mu.Lock()
	defer r.mu.Unlock()

	e0 := model.FirstId(model.KindOntology)
	list := make(model.PostingList, n)
	for i := range list {
		id := model.Id(r.rand.IntN(20))
		if r.rand.IntN(2) == 0 {
			id += e0
		}
		list[i] = model.Posting{
			Id:        id,
			ContextId: model.Id(r.rand.IntN(n/3 + 1)),
			Score:     model.Score(r.rand.IntN(5)),
			Position:  model.Position(r.rand.IntN(30)),
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].ContextId != list[j].ContextId {
			return list[i].ContextId < list[j].ContextId
		}
		return list[i].Id < list[j].Id
	})
	return list
}

// EntityList returns a well-formed list of at most n entities drawn from
// 3n+1 ids.
func (r *RNG) EntityList(n int) model.EntityList {
	r.mu.Lock()
	defer r.mu.Unlock()

	e0 := model.FirstId(model.KindOntology)
	seen := make(map[model.Id]bool, n)
	l := make(model.EntityList, 0, n)
	for range n {
		id := e0 + model.Id(r.rand.IntN(3*n+1))
		if seen[id] {
			continue
		}
		seen[id] = true
		l = append(l, model.EntityWithScore{Id: id, Score: model.AggregatedScore(r.rand.IntN(10))})
	}
	sort.Slice(l, func(i, j int) bool { return l[i].Id < l[j].Id })
	return l
}
