package indexfile

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/semsearch/model"
)

const (
	// OffsetSize is the size of the trailing offset that points at the
	// first metadata record.
	OffsetSize = 8

	// BlockMetaSize is the size of one fulltext block record:
	// maxId, count, words, contexts, scores, positions, lastPosition.
	BlockMetaSize = 56

	// RelationHeaderSize is the size of the fixed part of a relation record:
	// nextMeta, relationId, lhsType, rhsType.
	RelationHeaderSize = 32

	// RelationBlockMetaSize is the size of one relation block descriptor:
	// maxLhs, count, lhs, rhs, lastRhs.
	RelationBlockMetaSize = 40

	IdSize       = 8
	ScoreSize    = 1
	PositionSize = 4
)

var (
	// ErrMalformed is wrapped by every FormatError.
	ErrMalformed = errors.New("indexfile: malformed index file")

	// ErrBlockNotFound is returned when no block can hold an id range.
	ErrBlockNotFound = errors.New("indexfile: no block for id range")

	// ErrRangeSpansBlocks is returned when an id range crosses a block boundary.
	ErrRangeSpansBlocks = errors.New("indexfile: id range spans several blocks")
)

// FormatError describes an inconsistency found while decoding an index file.
type FormatError struct {
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("indexfile: malformed index file at offset %d: %s", e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrMalformed }

func malformed(off int64, format string, args ...any) error {
	return &FormatError{Offset: off, Reason: fmt.Sprintf(format, args...)}
}

// BlockMeta locates the four columns of a fulltext block.
//
// All multi-byte fields are little-endian.
type BlockMeta struct {
	MaxId              model.Id
	Count              uint64
	WordsOffset        int64
	ContextsOffset     int64
	ScoresOffset       int64
	PositionsOffset    int64
	LastPositionOffset int64
}

// AppendBinary appends the 56-byte record to buf.
func (m BlockMeta) AppendBinary(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(m.MaxId))
	buf = binary.LittleEndian.AppendUint64(buf, m.Count)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(m.WordsOffset))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(m.ContextsOffset))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(m.ScoresOffset))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(m.PositionsOffset))
	return binary.LittleEndian.AppendUint64(buf, uint64(m.LastPositionOffset))
}

// DecodeBlockMeta decodes a record written by AppendBinary.
func DecodeBlockMeta(buf []byte) BlockMeta {
	_ = buf[BlockMetaSize-1]
	return BlockMeta{
		MaxId:              model.Id(binary.LittleEndian.Uint64(buf[0:8])),
		Count:              binary.LittleEndian.Uint64(buf[8:16]),
		WordsOffset:        int64(binary.LittleEndian.Uint64(buf[16:24])),
		ContextsOffset:     int64(binary.LittleEndian.Uint64(buf[24:32])),
		ScoresOffset:       int64(binary.LittleEndian.Uint64(buf[32:40])),
		PositionsOffset:    int64(binary.LittleEndian.Uint64(buf[40:48])),
		LastPositionOffset: int64(binary.LittleEndian.Uint64(buf[48:56])),
	}
}

// columnEnd returns the end of a column of count entries of width bytes
// starting at off, or false if it does not fit in [0, dataEnd).
func columnEnd(off int64, count uint64, width, dataEnd int64) (int64, bool) {
	if off < 0 || off > dataEnd || count > uint64(dataEnd-off)/uint64(width) {
		return 0, false
	}
	return off + int64(count)*width, true //nolint:gosec
}

// validate checks that all columns lie in the data region [0, dataEnd).
func (m BlockMeta) validate(at, dataEnd int64) error {
	if m.Count == 0 {
		return malformed(at, "empty block")
	}
	cols := []struct {
		name  string
		off   int64
		width int64
	}{
		{"words", m.WordsOffset, IdSize},
		{"contexts", m.ContextsOffset, IdSize},
		{"scores", m.ScoresOffset, ScoreSize},
		{"positions", m.PositionsOffset, PositionSize},
	}
	for _, c := range cols {
		if _, ok := columnEnd(c.off, m.Count, c.width, dataEnd); !ok {
			return malformed(at, "%s column of %d entries at %d outside data region", c.name, m.Count, c.off)
		}
	}
	n := int64(m.Count) //nolint:gosec
	if want := m.PositionsOffset + (n-1)*PositionSize; m.LastPositionOffset != want {
		return malformed(at, "last position offset %d, expected %d", m.LastPositionOffset, want)
	}
	return nil
}

// RelationBlockMeta locates the lhs and rhs columns of a relation block.
type RelationBlockMeta struct {
	MaxLhs        model.Id
	Count         uint64
	LhsOffset     int64
	RhsOffset     int64
	LastRhsOffset int64
}

// AppendBinary appends the 40-byte descriptor to buf.
func (m RelationBlockMeta) AppendBinary(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(m.MaxLhs))
	buf = binary.LittleEndian.AppendUint64(buf, m.Count)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(m.LhsOffset))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(m.RhsOffset))
	return binary.LittleEndian.AppendUint64(buf, uint64(m.LastRhsOffset))
}

// DecodeRelationBlockMeta decodes a descriptor written by AppendBinary.
func DecodeRelationBlockMeta(buf []byte) RelationBlockMeta {
	_ = buf[RelationBlockMetaSize-1]
	return RelationBlockMeta{
		MaxLhs:        model.Id(binary.LittleEndian.Uint64(buf[0:8])),
		Count:         binary.LittleEndian.Uint64(buf[8:16]),
		LhsOffset:     int64(binary.LittleEndian.Uint64(buf[16:24])),
		RhsOffset:     int64(binary.LittleEndian.Uint64(buf[24:32])),
		LastRhsOffset: int64(binary.LittleEndian.Uint64(buf[32:40])),
	}
}

func (m RelationBlockMeta) validate(at, dataEnd int64) error {
	if m.Count == 0 {
		return malformed(at, "empty relation block")
	}
	lhsEnd, ok := columnEnd(m.LhsOffset, m.Count, IdSize, dataEnd)
	if !ok {
		return malformed(at, "lhs column of %d entries outside data region", m.Count)
	}
	if m.RhsOffset != lhsEnd {
		return malformed(at, "rhs column at %d does not follow lhs column", m.RhsOffset)
	}
	if _, ok := columnEnd(m.RhsOffset, m.Count, IdSize, dataEnd); !ok {
		return malformed(at, "rhs column outside data region")
	}
	n := int64(m.Count) //nolint:gosec
	if want := m.RhsOffset + (n-1)*IdSize; m.LastRhsOffset != want {
		return malformed(at, "last rhs offset %d, expected %d", m.LastRhsOffset, want)
	}
	return nil
}

// RelationMeta describes one relation of an ontology index.
type RelationMeta struct {
	RelationId model.Id
	LhsType    model.Id
	RhsType    model.Id
	Blocks     []RelationBlockMeta
}

// Count returns the number of rows over all blocks.
func (m *RelationMeta) Count() uint64 {
	var n uint64
	for _, b := range m.Blocks {
		n += b.Count
	}
	return n
}

// BlockInfo returns the block that may hold rows with the given lhs.
//
// Blocks are searched by their max lhs. If the first block with
// MaxLhs >= lhs does not end with lhs, the preceding block is returned.
// Relations that are split into blocks hold a single lhs per block, so a
// missing lhs yields a block that simply does not contain it. ok is false
// if no block precedes lhs.
func (m *RelationMeta) BlockInfo(lhs model.Id) (RelationBlockMeta, bool) {
	lo, hi := 0, len(m.Blocks)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if m.Blocks[mid].MaxLhs < lhs {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(m.Blocks) || m.Blocks[lo].MaxLhs != lhs {
		lo--
	}
	if lo < 0 {
		return RelationBlockMeta{}, false
	}
	return m.Blocks[lo], true
}

func (m *RelationMeta) encodedSize() int64 {
	return RelationHeaderSize + int64(len(m.Blocks))*RelationBlockMetaSize
}
