// Package storage implements the content-addressed storage client.
//
// Blocks are kept in a local badger repository keyed by their content hash.
// The hash of a block is the base58 encoding of its sha2-256 multihash, so
// identical content always yields the identical hash.
//
// Each client serves its blocks to peers over HTTP on the swarm listener:
//
//	GET /blocks/{hash}   fetch a block
//	PUT /blocks/{hash}   store a block (rejected if the hash does not match)
//
// Add replicates new blocks to the configured peers and optionally announces
// the hash on a NATS subject. Get falls back to peers for blocks that are not
// held locally.
package storage
