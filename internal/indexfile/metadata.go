package indexfile

import (
	"context"
	"encoding/binary"
	"sort"

	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/model"
)

// FulltextMeta is the decoded metadata region of a fulltext index.
type FulltextMeta struct {
	Blocks []BlockMeta
	// DataEnd is the offset of the first metadata record.
	DataEnd int64
}

// BlockByRange returns the block holding the whole id range r.
// It is the first block whose max id is >= r.First.
func (m *FulltextMeta) BlockByRange(r model.IdRange) (BlockMeta, error) {
	i := sort.Search(len(m.Blocks), func(i int) bool {
		return m.Blocks[i].MaxId >= r.First
	})
	if i == len(m.Blocks) {
		return BlockMeta{}, ErrBlockNotFound
	}
	if r.Last > m.Blocks[i].MaxId {
		return BlockMeta{}, ErrRangeSpansBlocks
	}
	return m.Blocks[i], nil
}

// TotalPostings sums the posting counts of all blocks.
func (m *FulltextMeta) TotalPostings() uint64 {
	var n uint64
	for _, b := range m.Blocks {
		n += b.Count
	}
	return n
}

// OntologyMeta is the decoded metadata region of an ontology index.
type OntologyMeta struct {
	Relations map[model.Id]*RelationMeta
	DataEnd   int64
}

// Relation returns the metadata of a relation.
func (m *OntologyMeta) Relation(id model.Id) (*RelationMeta, bool) {
	r, ok := m.Relations[id]
	return r, ok
}

// RelationIds returns the ids of all relations in ascending order.
func (m *OntologyMeta) RelationIds() []model.Id {
	ids := make([]model.Id, 0, len(m.Relations))
	for id := range m.Relations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// readMetaRegion returns the bytes between the trailing offset's target
// and the trailing offset itself.
func readMetaRegion(ctx context.Context, blob blobstore.Blob) ([]byte, int64, error) {
	size := blob.Size()
	if size < OffsetSize {
		return nil, 0, malformed(0, "file of %d bytes has no trailing offset", size)
	}
	metaTo := size - OffsetSize

	var tail [OffsetSize]byte
	if err := blobstore.ReadFull(ctx, blob, tail[:], metaTo); err != nil {
		return nil, 0, err
	}
	metaFrom := int64(binary.LittleEndian.Uint64(tail[:]))
	if metaFrom < 0 || metaFrom > metaTo {
		return nil, 0, malformed(metaTo, "metadata offset %d outside file", metaFrom)
	}

	region := make([]byte, metaTo-metaFrom)
	if len(region) > 0 {
		if err := blobstore.ReadFull(ctx, blob, region, metaFrom); err != nil {
			return nil, 0, err
		}
	}
	return region, metaFrom, nil
}

// ReadFulltextMeta parses the trailing metadata of a fulltext index.
func ReadFulltextMeta(ctx context.Context, blob blobstore.Blob) (*FulltextMeta, error) {
	region, metaFrom, err := readMetaRegion(ctx, blob)
	if err != nil {
		return nil, err
	}
	if len(region)%BlockMetaSize != 0 {
		return nil, malformed(metaFrom, "metadata region of %d bytes is not a multiple of %d", len(region), BlockMetaSize)
	}

	meta := &FulltextMeta{
		Blocks:  make([]BlockMeta, 0, len(region)/BlockMetaSize),
		DataEnd: metaFrom,
	}
	for off := 0; off < len(region); off += BlockMetaSize {
		at := metaFrom + int64(off)
		b := DecodeBlockMeta(region[off:])
		if err := b.validate(at, metaFrom); err != nil {
			return nil, err
		}
		if n := len(meta.Blocks); n > 0 && meta.Blocks[n-1].MaxId >= b.MaxId {
			return nil, malformed(at, "block max id %d not above %d", b.MaxId, meta.Blocks[n-1].MaxId)
		}
		meta.Blocks = append(meta.Blocks, b)
	}
	return meta, nil
}

// ReadOntologyMeta parses the chain of relation records of an ontology index.
func ReadOntologyMeta(ctx context.Context, blob blobstore.Blob) (*OntologyMeta, error) {
	region, metaFrom, err := readMetaRegion(ctx, blob)
	if err != nil {
		return nil, err
	}
	metaTo := metaFrom + int64(len(region))

	meta := &OntologyMeta{
		Relations: make(map[model.Id]*RelationMeta),
		DataEnd:   metaFrom,
	}

	cur := metaFrom
	for cur < metaTo {
		if cur+RelationHeaderSize > metaTo {
			return nil, malformed(cur, "truncated relation header")
		}
		hdr := region[cur-metaFrom:]
		next := int64(binary.LittleEndian.Uint64(hdr[0:8]))
		rel := &RelationMeta{
			RelationId: model.Id(binary.LittleEndian.Uint64(hdr[8:16])),
			LhsType:    model.Id(binary.LittleEndian.Uint64(hdr[16:24])),
			RhsType:    model.Id(binary.LittleEndian.Uint64(hdr[24:32])),
		}
		if next <= cur || next > metaTo {
			return nil, malformed(cur, "next metadata offset %d out of order", next)
		}
		if (next-cur-RelationHeaderSize)%RelationBlockMetaSize != 0 {
			return nil, malformed(cur, "block descriptors overrun next metadata offset %d", next)
		}

		for off := cur + RelationHeaderSize; off < next; off += RelationBlockMetaSize {
			b := DecodeRelationBlockMeta(region[off-metaFrom:])
			if err := b.validate(off, metaFrom); err != nil {
				return nil, err
			}
			if n := len(rel.Blocks); n > 0 && rel.Blocks[n-1].MaxLhs > b.MaxLhs {
				return nil, malformed(off, "relation block max lhs %d below %d", b.MaxLhs, rel.Blocks[n-1].MaxLhs)
			}
			rel.Blocks = append(rel.Blocks, b)
		}

		if _, dup := meta.Relations[rel.RelationId]; dup {
			return nil, malformed(cur, "duplicate relation id %d", rel.RelationId)
		}
		meta.Relations[rel.RelationId] = rel
		cur = next
	}
	return meta, nil
}
