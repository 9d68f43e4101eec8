// Package memory provides aligned byte buffers and a bump allocator used as
// the storage layer for matrices.
//
// A Buffer exclusively owns one aligned allocation. Ownership is transferred
// with Move; copying a Buffer value is rejected by go vet (copylocks).
//
// An Arena carves sequential, aligned regions out of a single Buffer and
// reclaims all of them at once with Reset. It never frees individual regions.
//
// Regions handed out by Arena and views returned by Buffer are only safe for
// pointer-free element types (see Element): the garbage collector does not
// scan the underlying []byte for pointers.
package memory
