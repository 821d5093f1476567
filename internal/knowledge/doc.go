// Package knowledge implements the retrieval-augmented knowledge base:
// an offline indexer that normalizes collaborator documents into
// chunks and embeds them into a persisted store, and an online
// retriever that answers queries with the nearest chunks' content.
//
// The store is an ordered sequence of (vector, chunk) pairs persisted
// as two positionally-aligned artifacts. chunks[i] corresponds exactly
// to vectors[i]; the pair is written and loaded as a single unit and
// never mutated in place. Rebuilding means a full re-index.
//
// The retriever is deliberately forgiving: a missing or misaligned
// store, or an embedding service failure, degrades every query to a
// fixed sentinel instead of an error. Callers treat the sentinel as
// valid, empty context.
package knowledge
