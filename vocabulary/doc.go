// Package vocabulary provides sorted word lists with exact and prefix
// lookup.
//
// A vocabulary file holds one word per line in ascending order; the id of a
// word is its line number, offset into the id space of its kind. Files are
// stored as "<base>.vocabulary" or zstd-compressed as
// "<base>.vocabulary.zst".
package vocabulary
