// Package embeddings provides text embedding generation for the
// knowledge base via an external TEI-compatible HTTP service.
//
// The embedding model is fixed per knowledge base: the store must be
// queried with the same model it was built with. That is a correctness
// requirement on the operator, not something this package can enforce.
package embeddings
