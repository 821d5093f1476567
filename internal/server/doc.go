// Package server exposes the safety engine and knowledge retriever
// over HTTP. The API is deliberately small: one endpoint runs the full
// rule pass, one queries the knowledge base, and /health reports which
// reference sources are degraded so operators can tell "no risk found"
// apart from "could not check".
package server
