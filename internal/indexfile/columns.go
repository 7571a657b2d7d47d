package indexfile

import (
	"context"
	"encoding/binary"
	"errors"
	"io"

	"github.com/hupe1980/semsearch/blobstore"
	"github.com/hupe1980/semsearch/model"
)

func readColumn(ctx context.Context, blob blobstore.Blob, off, n int64) ([]byte, error) {
	if n < 0 || off < 0 || off > blob.Size()-n {
		return nil, malformed(off, "column of %d bytes exceeds file", n)
	}
	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		if off < 0 || off+n > int64(len(data)) {
			return nil, malformed(off, "column of %d bytes exceeds file", n)
		}
		return data[off : off+n], nil
	}
	buf := make([]byte, n)
	if err := blobstore.ReadFull(ctx, blob, buf, off); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, malformed(off, "short column read: %v", err)
		}
		return nil, err
	}
	return buf, nil
}

// entryCount converts a block count to int64 if count rows of rowSize
// bytes fit in the blob.
func entryCount(blob blobstore.Blob, count uint64, rowSize int64) (int64, error) {
	if count > uint64(max(0, blob.Size()))/uint64(rowSize) {
		return 0, malformed(0, "block of %d entries exceeds file of %d bytes", count, blob.Size())
	}
	return int64(count), nil //nolint:gosec
}

// ReadPostings reads the four columns of a block and zips them in their
// stored order.
func ReadPostings(ctx context.Context, blob blobstore.Blob, m BlockMeta) (model.PostingList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := entryCount(blob, m.Count, IdSize)
	if err != nil {
		return nil, err
	}

	words, err := readColumn(ctx, blob, m.WordsOffset, n*IdSize)
	if err != nil {
		return nil, err
	}
	contexts, err := readColumn(ctx, blob, m.ContextsOffset, n*IdSize)
	if err != nil {
		return nil, err
	}
	scores, err := readColumn(ctx, blob, m.ScoresOffset, n*ScoreSize)
	if err != nil {
		return nil, err
	}
	positions, err := readColumn(ctx, blob, m.PositionsOffset, n*PositionSize)
	if err != nil {
		return nil, err
	}

	out := make(model.PostingList, n)
	for i := range out {
		out[i] = model.Posting{
			Id:        model.Id(binary.LittleEndian.Uint64(words[i*IdSize:])),
			ContextId: model.Id(binary.LittleEndian.Uint64(contexts[i*IdSize:])),
			Score:     model.Score(scores[i]),
			Position:  model.Position(binary.LittleEndian.Uint32(positions[i*PositionSize:])),
		}
	}
	return out, nil
}

// ReadRelationBlock reads the lhs column and the rhs column that follows it.
func ReadRelationBlock(ctx context.Context, blob blobstore.Blob, m RelationBlockMeta) (model.Relation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := entryCount(blob, m.Count, 2*IdSize)
	if err != nil {
		return nil, err
	}

	// lhs and rhs are contiguous, one read covers both.
	data, err := readColumn(ctx, blob, m.LhsOffset, 2*n*IdSize)
	if err != nil {
		return nil, err
	}
	lhs, rhs := data[:n*IdSize], data[n*IdSize:]

	out := make(model.Relation, n)
	for i := range out {
		out[i] = model.RelationEntry{
			Lhs: model.Id(binary.LittleEndian.Uint64(lhs[i*IdSize:])),
			Rhs: model.Id(binary.LittleEndian.Uint64(rhs[i*IdSize:])),
		}
	}
	return out, nil
}

// ReadRelation reads all blocks of a relation in metadata order.
func ReadRelation(ctx context.Context, blob blobstore.Blob, m *RelationMeta) (model.Relation, error) {
	out := make(model.Relation, 0, m.Count())
	for _, b := range m.Blocks {
		rows, err := ReadRelationBlock(ctx, blob, b)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}
