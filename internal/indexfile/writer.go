package indexfile

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/semsearch/model"
)

// ErrEmptyBlock is returned when a block without postings is written.
var ErrEmptyBlock = errors.New("indexfile: empty block")

// FulltextWriter assembles a fulltext index file in memory.
//
// Blocks must be written in ascending order of their max id.
type FulltextWriter struct {
	buf    []byte
	blocks []BlockMeta
}

// NewFulltextWriter creates an empty writer.
func NewFulltextWriter() *FulltextWriter {
	return &FulltextWriter{}
}

// WriteBlock appends one block. Postings are stored in the given order,
// which should be by context id, then id, so that the entity postings of a
// context follow its word postings. The max id of the block is its largest
// word id.
func (w *FulltextWriter) WriteBlock(postings model.PostingList) (BlockMeta, error) {
	if len(postings) == 0 {
		return BlockMeta{}, ErrEmptyBlock
	}

	var (
		maxId    model.Id
		hasWords bool
	)
	for _, p := range postings {
		if !model.IsOntology(p.Id) {
			maxId = max(maxId, p.Id)
			hasWords = true
		}
	}
	if !hasWords {
		return BlockMeta{}, fmt.Errorf("%w: no word postings", ErrEmptyBlock)
	}
	if n := len(w.blocks); n > 0 && w.blocks[n-1].MaxId >= maxId {
		return BlockMeta{}, fmt.Errorf("indexfile: block max id %d not above previous %d", maxId, w.blocks[n-1].MaxId)
	}

	m := BlockMeta{MaxId: maxId, Count: uint64(len(postings))}

	m.WordsOffset = int64(len(w.buf))
	for _, p := range postings {
		w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(p.Id))
	}
	m.ContextsOffset = int64(len(w.buf))
	for _, p := range postings {
		w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(p.ContextId))
	}
	m.ScoresOffset = int64(len(w.buf))
	for _, p := range postings {
		w.buf = append(w.buf, byte(p.Score))
	}
	m.PositionsOffset = int64(len(w.buf))
	for _, p := range postings {
		w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(p.Position))
	}
	m.LastPositionOffset = int64(len(w.buf)) - PositionSize

	w.blocks = append(w.blocks, m)
	return m, nil
}

// Blocks returns the metadata written so far.
func (w *FulltextWriter) Blocks() []BlockMeta {
	return w.blocks
}

// Finish appends the metadata records and the trailing offset and
// returns the file content.
func (w *FulltextWriter) Finish() []byte {
	metaFrom := int64(len(w.buf))
	out := w.buf
	for _, b := range w.blocks {
		out = b.AppendBinary(out)
	}
	out = binary.LittleEndian.AppendUint64(out, uint64(metaFrom))
	w.buf, w.blocks = nil, nil
	return out
}

// OntologyWriter assembles an ontology index file in memory.
type OntologyWriter struct {
	buf       []byte
	relations []*RelationMeta
	seen      map[model.Id]bool
}

// NewOntologyWriter creates an empty writer.
func NewOntologyWriter() *OntologyWriter {
	return &OntologyWriter{seen: make(map[model.Id]bool)}
}

// WriteRelation appends a relation. Rows must be sorted by lhs, then rhs.
// With splitByLhs every distinct lhs gets its own block, which allows
// reading the rows of a single lhs; otherwise the relation is one block.
func (w *OntologyWriter) WriteRelation(relId, lhsType, rhsType model.Id, rows model.Relation, splitByLhs bool) (*RelationMeta, error) {
	if w.seen[relId] {
		return nil, fmt.Errorf("indexfile: relation %d written twice", relId)
	}
	for i := 1; i < len(rows); i++ {
		a, b := rows[i-1], rows[i]
		if a.Lhs > b.Lhs || (a.Lhs == b.Lhs && a.Rhs > b.Rhs) {
			return nil, fmt.Errorf("indexfile: relation %d rows not sorted at %d", relId, i)
		}
	}
	w.seen[relId] = true

	meta := &RelationMeta{RelationId: relId, LhsType: lhsType, RhsType: rhsType}
	for start := 0; start < len(rows); {
		end := len(rows)
		if splitByLhs {
			end = start + 1
			for end < len(rows) && rows[end].Lhs == rows[start].Lhs {
				end++
			}
		}
		meta.Blocks = append(meta.Blocks, w.writeBlock(rows[start:end]))
		start = end
	}

	w.relations = append(w.relations, meta)
	return meta, nil
}

func (w *OntologyWriter) writeBlock(rows model.Relation) RelationBlockMeta {
	m := RelationBlockMeta{
		MaxLhs: rows[len(rows)-1].Lhs,
		Count:  uint64(len(rows)),
	}
	m.LhsOffset = int64(len(w.buf))
	for _, r := range rows {
		w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(r.Lhs))
	}
	m.RhsOffset = int64(len(w.buf))
	for _, r := range rows {
		w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(r.Rhs))
	}
	m.LastRhsOffset = int64(len(w.buf)) - IdSize
	return m
}

// Finish appends the chain of relation records and the trailing offset
// and returns the file content.
func (w *OntologyWriter) Finish() []byte {
	metaFrom := int64(len(w.buf))
	out := w.buf
	cur := metaFrom
	for _, rel := range w.relations {
		next := cur + rel.encodedSize()
		out = binary.LittleEndian.AppendUint64(out, uint64(next))
		out = binary.LittleEndian.AppendUint64(out, uint64(rel.RelationId))
		out = binary.LittleEndian.AppendUint64(out, uint64(rel.LhsType))
		out = binary.LittleEndian.AppendUint64(out, uint64(rel.RhsType))
		for _, b := range rel.Blocks {
			out = b.AppendBinary(out)
		}
		cur = next
	}
	out = binary.LittleEndian.AppendUint64(out, uint64(metaFrom))
	w.buf, w.relations, w.seen = nil, nil, nil
	return out
}
