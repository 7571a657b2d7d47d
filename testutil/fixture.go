package testutil

import (
	"context"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/index"
	"github.com/hupe1980/semsearch/indexbuilder"
	"github.com/hupe1980/semsearch/model"
)

// Base names of the fixture files.
const (
	WikiFulltext = "wiki.fulltext"
	WikiOntology = "wiki.ontology"
	WikiDocs     = "wiki"
)

// Sentence is a fixture context. Word positions start at 1, the position
// of the first excerpt delimiter.
type Sentence struct {
	ContextId model.Id
	Title     string
	Text      string
	// Mentions maps token indexes to the entities they refer to.
	Mentions map[int]string
}

// Tokens splits the text into its tokens.
func (s Sentence) Tokens() []string {
	return strings.Fields(s.Text)
}

// Document returns the excerpt document of the sentence.
func (s Sentence) Document() excerpt.Document {
	var sb strings.Builder
	for i, tok := range s.Tokens() {
		sb.WriteString(excerpt.PositionDelimiter)
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok)
	}
	return excerpt.Document{
		ContextId: s.ContextId,
		URL:       "http://en.wikipedia.org/wiki/" + strings.ReplaceAll(s.Title, " ", "_"),
		Title:     s.Title,
		Text:      sb.String(),
	}
}

// Postings returns the word postings of the sentence and an entity
// posting for every mention.
func (s Sentence) Postings() []indexbuilder.Posting {
	var out []indexbuilder.Posting
	for i, tok := range s.Tokens() {
		pos := model.Position(i + 1) //nolint:gosec
		out = append(out, indexbuilder.Posting{Word: NormalizeWord(tok), ContextId: s.ContextId, Score: 1, Position: pos})
		if e, ok := s.Mentions[i]; ok {
			out = append(out, indexbuilder.Posting{Word: e, ContextId: s.ContextId, Score: 1, Position: pos})
		}
	}
	return out
}

// NormalizeWord lowercases a token and strips punctuation.
func NormalizeWord(tok string) string {
	return strings.ToLower(strings.TrimFunc(tok, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
}

// Ontology entities of the fixture.
const (
	Einstein  = ":e:albert-einstein"
	Curie     = ":e:marie-curie"
	Maric     = ":e:mileva-maric"
	Ulm       = ":e:ulm"
	Warsaw    = ":e:warsaw"
	Paris     = ":e:paris"
	Scientist = ":e:scientist:Scientist"
	Person    = ":e:person:Person"
	City      = ":e:city:City"

	BornIn    = ":r:born-in"
	MarriedTo = ":r:married-to"
)

// WikiFacts are the ontology facts of the fixture.
var WikiFacts = []indexbuilder.Fact{
	{Relation: model.IsARelation, Lhs: Einstein, Rhs: Scientist},
	{Relation: model.IsARelation, Lhs: Curie, Rhs: Scientist},
	{Relation: model.IsARelation, Lhs: Einstein, Rhs: Person},
	{Relation: model.IsARelation, Lhs: Curie, Rhs: Person},
	{Relation: model.IsARelation, Lhs: Maric, Rhs: Person},
	{Relation: model.IsARelation, Lhs: Ulm, Rhs: City},
	{Relation: model.IsARelation, Lhs: Warsaw, Rhs: City},
	{Relation: model.IsARelation, Lhs: Paris, Rhs: City},
	{Relation: BornIn, Lhs: Einstein, Rhs: Ulm},
	{Relation: BornIn, Lhs: Curie, Rhs: Warsaw},
	{Relation: MarriedTo, Lhs: Einstein, Rhs: Maric},
}

// WikiSentences are the fulltext contexts of the fixture.
var WikiSentences = []Sentence{
	{ContextId: 1, Title: "Albert Einstein", Text: "Albert Einstein developed the theory of relativity.",
		Mentions: map[int]string{1: Einstein}},
	{ContextId: 2, Title: "Marie Curie", Text: "Marie Curie discovered radium.",
		Mentions: map[int]string{1: Curie}},
	{ContextId: 3, Title: "Albert Einstein", Text: "Einstein was born in Ulm.",
		Mentions: map[int]string{0: Einstein, 4: Ulm}},
	{ContextId: 4, Title: "Marie Curie", Text: "Curie was born in Warsaw.",
		Mentions: map[int]string{0: Curie, 4: Warsaw}},
	{ContextId: 5, Title: "Solvay Conference", Text: "Einstein and Curie met at physics conferences.",
		Mentions: map[int]string{0: Einstein, 2: Curie}},
	{ContextId: 6, Title: "Mileva Maric", Text: "Einstein married Mileva Maric.",
		Mentions: map[int]string{0: Einstein, 3: Maric}},
}

// BuildWiki writes the fixture indexes, vocabularies and docs file to store.
func BuildWiki(ctx context.Context, store blobstore.BlobStore, optFns ...func(o *indexbuilder.Options)) error {
	ob := indexbuilder.NewOntology(optFns...)
	ob.SetTypes(BornIn, Person, City)
	ob.SetTypes(MarriedTo, Person, Person)
	for _, f := range WikiFacts {
		if err := ob.Add(f.Relation, f.Lhs, f.Rhs); err != nil {
			return err
		}
	}
	ontology, _, err := ob.Build(ctx, store, WikiOntology)
	if err != nil {
		return err
	}

	fb := indexbuilder.NewFulltext(optFns...)
	docs := make([]excerpt.Document, 0, len(WikiSentences))
	for _, s := range WikiSentences {
		for _, p := range s.Postings() {
			if err := fb.Add(p); err != nil {
				return err
			}
		}
		docs = append(docs, s.Document())
	}
	if _, _, err := fb.Build(ctx, store, WikiFulltext, ontology); err != nil {
		return err
	}
	return excerpt.WriteDocsFile(ctx, store, WikiDocs, docs)
}

// NewWikiStore returns a memory store holding the fixture.
func NewWikiStore(tb testing.TB, optFns ...func(o *indexbuilder.Options)) *blobstore.MemoryStore {
	tb.Helper()
	store := blobstore.NewMemoryStore()
	require.NoError(tb, BuildWiki(context.Background(), store, optFns...))
	return store
}

// NewWiki opens the fixture with its excerpts and resident relations. The
// index is closed when the test ends.
func NewWiki(tb testing.TB, optFns ...index.Option) *index.Ready {
	tb.Helper()
	ctx := context.Background()

	idx := index.New(NewWikiStore(tb), optFns...)
	require.NoError(tb, idx.RegisterFulltext(ctx, WikiFulltext))
	require.NoError(tb, idx.RegisterOntology(ctx, WikiOntology))
	require.NoError(tb, idx.RegisterDocs(ctx, WikiDocs))

	ready, err := idx.LoadResidentRelations(ctx)
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = ready.Close() })
	return ready
}
