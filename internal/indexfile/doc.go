// Package indexfile implements the binary layout of fulltext and ontology
// index files.
//
// # Fulltext Layout
//
//	<block0><block1>...<blockN><meta0><meta1>...<metaN><offsetOfMeta0>
//
// A block holds four parallel columns: word ids (u64), context ids (u64),
// scores (u8) and positions (u32). Each meta record is 56 bytes:
// maxId, count, wordsOffset, contextsOffset, scoresOffset,
// positionsOffset, lastPositionOffset.
//
// # Ontology Layout
//
//	<rel0_block0><rel0_block1><rel1_block0>...<relMeta0>...<relMetaN><offsetOfRelMeta0>
//
// A relation block holds an lhs column directly followed by an rhs column.
// A relation record is nextMeta, relationId, lhsType, rhsType followed by
// 40-byte block descriptors (maxLhs, count, lhsOffset, rhsOffset,
// lastRhsOffset) up to nextMeta. The chain ends at the trailing offset.
//
// All integers are little-endian. Inconsistent metadata is reported as a
// *FormatError wrapping ErrMalformed.
package indexfile
