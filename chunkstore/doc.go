/*
Package chunkstore implements access to stores of chunks, i.e. unit-stride
rectangular sub-regions of named N-dimensional arrays.

A chunk store contains multiple arrays addressed by a path-like string name.
The list of available arrays and all array metadata (shape, chunking scheme
and dtype) are stored elsewhere; the store itself only retrieves and stores
chunk data, identified by the array name and the per-dimension index ranges
that locate the chunk within its parent array. Each array can only be stored
with a single chunking scheme.

The type Dict is the reference in-memory implementation and the conformance
baseline for the other backends: File stores one encoded chunk file per chunk
name under a directory, Object stores one object per chunk name in an
object-store bucket and Badger stores one key per chunk name in a local
key-value database.

Array and chunk names are treated like paths with components separated by a
single reserved separator. Each backend has its own restrictions on valid
characters in names; a safe choice for name components is the set of valid
characters for S3 buckets, [a-zA-Z0-9.-_] with length 1 to 255. This is a
documented constraint on callers rather than one enforced by the store. It is
also discouraged to have an array name that is a prefix of another array
name, since chunk names extend array names.
*/
package chunkstore
