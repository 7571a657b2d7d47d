// Package mmap provides read-only memory-mapped file access.
//
// LocalStore serves index, vocabulary and docs files through a Mapping, so
// block reads are plain slice copies and vocabularies parse without an
// intermediate buffer.
//
// # Usage
//
//	m, err := mmap.Open("wiki.index")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessRandom)
//	data := m.Bytes()
//
// On platforms without mmap(2) the file is read into memory instead.
package mmap
