package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/excerpt"
	"github.com/hupe1980/semsearch/internal/indexfile"
	"github.com/hupe1980/semsearch/model"
	"github.com/hupe1980/semsearch/vocabulary"
)

// Extension is appended to the base name of fulltext and ontology index files.
const Extension = ".index"

// BlockMeta, RelationMeta and RelationBlockMeta are the decoded metadata
// records of the index files.
type (
	BlockMeta         = indexfile.BlockMeta
	RelationMeta      = indexfile.RelationMeta
	RelationBlockMeta = indexfile.RelationBlockMeta
)

type fulltextFile struct {
	name  string
	blob  blobstore.Blob
	vocab *vocabulary.Vocabulary
	meta  *indexfile.FulltextMeta
}

type ontologyFile struct {
	name  string
	blob  blobstore.Blob
	vocab *vocabulary.Vocabulary
	meta  *indexfile.OntologyMeta
}

// Index is an index in its registration phase.
//
// Fulltext and ontology indexes are registered first. LoadResidentRelations
// then finishes loading and returns the Ready view that queries run on.
// Registration is safe for concurrent use.
type Index struct {
	store    blobstore.BlobStore
	logger   *slog.Logger
	metrics  MetricsObserver
	excerpts excerpt.Store

	mu       sync.Mutex
	fulltext *fulltextFile
	ontology *ontologyFile
	ready    *Ready
	closed   bool
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(i *Index) {
		i.logger = l
	}
}

// WithMetricsObserver sets the observer for block reads.
func WithMetricsObserver(m MetricsObserver) Option {
	return func(i *Index) {
		if m != nil {
			i.metrics = m
		}
	}
}

// WithExcerptStore sets the store RawExcerpt reads from. The index takes
// ownership and closes it on Close.
func WithExcerptStore(s excerpt.Store) Option {
	return func(i *Index) {
		i.excerpts = s
	}
}

// New creates an empty index reading its files from store.
func New(store blobstore.BlobStore, optFns ...Option) *Index {
	i := &Index{
		store:   store,
		metrics: NoopMetricsObserver{},
	}
	for _, fn := range optFns {
		fn(i)
	}
	return i
}

// RegisterFulltext opens "<baseName>.index" and its vocabulary and parses
// the block metadata.
func (i *Index) RegisterFulltext(ctx context.Context, baseName string) error {
	if err := i.checkRegistering(func() bool { return i.fulltext != nil }); err != nil {
		return fmt.Errorf("fulltext %s: %w", baseName, err)
	}

	name := baseName + Extension
	vocab, err := vocabulary.Load(ctx, i.store, baseName, model.KindWord)
	if err != nil {
		return fmt.Errorf("load fulltext vocabulary %s: %w", baseName, err)
	}
	blob, err := i.store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("open fulltext index %s: %w", name, err)
	}
	meta, err := indexfile.ReadFulltextMeta(ctx, blob)
	if err != nil {
		_ = blob.Close()
		return classify(name, err)
	}

	f := &fulltextFile{name: name, blob: blob, vocab: vocab, meta: meta}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.fulltext != nil || i.closed || i.ready != nil {
		_ = blob.Close()
		return fmt.Errorf("fulltext %s: %w", baseName, ErrAlreadyRegistered)
	}
	i.fulltext = f

	if i.logger != nil {
		i.logger.Info("registered fulltext index",
			"name", name,
			"blocks", len(meta.Blocks),
			"postings", meta.TotalPostings(),
			"words", vocab.Len())
	}
	return nil
}

// RegisterOntology opens "<baseName>.index" and its vocabulary and parses
// the relation metadata.
func (i *Index) RegisterOntology(ctx context.Context, baseName string) error {
	if err := i.checkRegistering(func() bool { return i.ontology != nil }); err != nil {
		return fmt.Errorf("ontology %s: %w", baseName, err)
	}

	name := baseName + Extension
	vocab, err := vocabulary.Load(ctx, i.store, baseName, model.KindOntology)
	if err != nil {
		return fmt.Errorf("load ontology vocabulary %s: %w", baseName, err)
	}
	blob, err := i.store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("open ontology index %s: %w", name, err)
	}
	meta, err := indexfile.ReadOntologyMeta(ctx, blob)
	if err != nil {
		_ = blob.Close()
		return classify(name, err)
	}

	f := &ontologyFile{name: name, blob: blob, vocab: vocab, meta: meta}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ontology != nil || i.closed || i.ready != nil {
		_ = blob.Close()
		return fmt.Errorf("ontology %s: %w", baseName, ErrAlreadyRegistered)
	}
	i.ontology = f

	if i.logger != nil {
		i.logger.Info("registered ontology index",
			"name", name,
			"relations", len(meta.Relations),
			"words", vocab.Len())
	}
	return nil
}

// RegisterDocs opens the "<baseName>.docs" excerpt file pair as the
// excerpt store, unless one was set with WithExcerptStore.
func (i *Index) RegisterDocs(ctx context.Context, baseName string) error {
	if err := i.checkRegistering(func() bool { return i.excerpts != nil }); err != nil {
		return fmt.Errorf("docs %s: %w", baseName, err)
	}
	docs, err := excerpt.OpenDocsFile(ctx, i.store, baseName)
	if err != nil {
		return fmt.Errorf("open docs %s: %w", baseName, err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.excerpts != nil || i.closed || i.ready != nil {
		_ = docs.Close()
		return fmt.Errorf("docs %s: %w", baseName, ErrAlreadyRegistered)
	}
	i.excerpts = docs

	if i.logger != nil {
		i.logger.Info("registered docs", "name", baseName, "contexts", docs.Len())
	}
	return nil
}

func (i *Index) checkRegistering(taken func() bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	switch {
	case i.closed:
		return ErrClosed
	case i.ready != nil:
		return ErrAlreadyLoaded
	case taken():
		return ErrAlreadyRegistered
	}
	return nil
}

// LoadResidentRelations reads the has-relations relation and the available
// classes into memory and returns the read-only view for querying.
// It requires a registered ontology and may only be called once.
func (i *Index) LoadResidentRelations(ctx context.Context) (*Ready, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch {
	case i.closed:
		return nil, ErrClosed
	case i.ready != nil:
		return nil, ErrAlreadyLoaded
	case i.ontology == nil:
		return nil, fmt.Errorf("ontology: %w", ErrNotRegistered)
	}

	r := &Ready{
		idx:      i,
		fulltext: i.fulltext,
		ontology: i.ontology,
		excerpts: i.excerpts,
		logger:   i.logger,
		metrics:  i.metrics,
	}

	hasRelations, err := r.loadHasRelations(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := r.loadAvailableClasses(ctx)
	if err != nil {
		return nil, err
	}
	r.hasRelations = hasRelations
	r.classes = classes
	i.ready = r

	if i.logger != nil {
		i.logger.Info("loaded resident relations",
			"hasRelations", len(hasRelations),
			"classes", len(classes))
	}
	return r, nil
}

// Close releases all files and the excerpt store.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil
	}
	i.closed = true

	var errs []error
	if i.fulltext != nil {
		errs = append(errs, i.fulltext.blob.Close())
	}
	if i.ontology != nil {
		errs = append(errs, i.ontology.blob.Close())
	}
	if i.excerpts != nil {
		errs = append(errs, i.excerpts.Close())
	}
	return errors.Join(errs...)
}
