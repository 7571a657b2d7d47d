package indexbuilder

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/index"
	"github.com/hupe1980/semsearch/internal/indexfile"
	"github.com/hupe1980/semsearch/model"
	"github.com/hupe1980/semsearch/vocabulary"
)

// Posting is one occurrence of a word or entity in a context. Entities are
// ontology words with the entity prefix.
type Posting struct {
	Word      string
	ContextId model.Id
	Score     model.Score
	Position  model.Position
}

// IsEntity reports whether the posting refers to an ontology entity.
func (p Posting) IsEntity() bool {
	return strings.HasPrefix(p.Word, model.EntityPrefix)
}

// FulltextBuilder collects postings and writes a fulltext index with its
// vocabulary.
//
// Words are partitioned into blocks of Options.BlockWords consecutive
// word ids. A block holds the postings of its words and the entity
// postings of every context in which one of its words occurs.
type FulltextBuilder struct {
	opts     Options
	postings []Posting
}

// NewFulltext creates an empty fulltext builder.
func NewFulltext(optFns ...func(o *Options)) *FulltextBuilder {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BlockWords <= 0 {
		opts.BlockWords = DefaultOptions.BlockWords
	}
	return &FulltextBuilder{opts: opts}
}

// Add adds a posting.
func (b *FulltextBuilder) Add(p Posting) error {
	if p.Word == "" {
		return fmt.Errorf("%w: empty word in context %d", ErrInvalidFact, p.ContextId)
	}
	b.postings = append(b.postings, p)
	return nil
}

// Len returns the number of postings added.
func (b *FulltextBuilder) Len() int { return len(b.postings) }

// FulltextStats summarizes a written fulltext index.
type FulltextStats struct {
	Words    int
	Blocks   int
	Postings int
	// UnknownEntities counts entity postings dropped because the
	// ontology does not know the entity.
	UnknownEntities int
}

// Build writes baseName.index and the vocabulary of baseName to store.
// Entity postings are resolved against the ontology vocabulary.
func (b *FulltextBuilder) Build(ctx context.Context, store blobstore.BlobStore, baseName string, ontology *vocabulary.Vocabulary) (*vocabulary.Vocabulary, FulltextStats, error) {
	var words []string
	for _, p := range b.postings {
		if !p.IsEntity() {
			words = append(words, p.Word)
		}
	}
	slices.Sort(words)
	vocab, err := vocabulary.New(model.KindWord, slices.Compact(words))
	if err != nil {
		return nil, FulltextStats{}, err
	}
	stats := FulltextStats{Words: vocab.Len()}

	var (
		wordPostings   = make(model.PostingList, 0, len(b.postings))
		entityPostings = make(map[model.Id]model.PostingList)
	)
	for _, p := range b.postings {
		mp := model.Posting{ContextId: p.ContextId, Score: p.Score, Position: p.Position}
		if p.IsEntity() {
			id, ok := ontology.Id(p.Word)
			if !ok {
				stats.UnknownEntities++
				continue
			}
			mp.Id = id
			entityPostings[p.ContextId] = append(entityPostings[p.ContextId], mp)
			continue
		}
		mp.Id, _ = vocab.Id(p.Word)
		wordPostings = append(wordPostings, mp)
	}
	slices.SortFunc(wordPostings, func(a, b model.Posting) int { return cmp.Compare(a.Id, b.Id) })

	w := indexfile.NewFulltextWriter()
	first := model.FirstId(model.KindWord)
	for lo := 0; lo < len(wordPostings); {
		block := model.Id(model.PureValue(wordPostings[lo].Id)-model.PureValue(first)) / model.Id(b.opts.BlockWords)
		hi := lo + 1
		for hi < len(wordPostings) &&
			model.Id(model.PureValue(wordPostings[hi].Id)-model.PureValue(first))/model.Id(b.opts.BlockWords) == block {
			hi++
		}

		postings := slices.Clone(wordPostings[lo:hi])
		seen := make(map[model.Id]bool)
		for _, p := range wordPostings[lo:hi] {
			if !seen[p.ContextId] {
				seen[p.ContextId] = true
				postings = append(postings, entityPostings[p.ContextId]...)
			}
		}
		slices.SortFunc(postings, comparePostings)

		if _, err := w.WriteBlock(postings); err != nil {
			return nil, stats, err
		}
		stats.Blocks++
		stats.Postings += len(postings)
		lo = hi
	}

	if err := store.Put(ctx, baseName+index.Extension, w.Finish()); err != nil {
		return nil, stats, err
	}
	if err := vocabulary.Save(ctx, store, baseName, vocab, b.opts.Compress); err != nil {
		return nil, stats, err
	}
	if b.opts.Logger != nil {
		b.opts.Logger.Info("wrote fulltext index", "base", baseName,
			"words", stats.Words, "blocks", stats.Blocks, "postings", stats.Postings)
		if stats.UnknownEntities > 0 {
			b.opts.Logger.Warn("dropped postings of unknown entities", "count", stats.UnknownEntities)
		}
	}
	return vocab, stats, nil
}

// comparePostings orders by context, then id, then position, so that
// entity postings follow the word postings of their context.
func comparePostings(a, b model.Posting) int {
	if c := cmp.Compare(a.ContextId, b.ContextId); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Id, b.Id); c != 0 {
		return c
	}
	return cmp.Compare(a.Position, b.Position)
}
