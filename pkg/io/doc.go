// Package io reads raw graph input and writes finished element documents.
//
// The input format is a single JSON object with "nodes" and "edges" arrays.
// Decoding is the only place the engine fails hard on input: a payload that
// is not the expected shape (missing arrays, wrong types, truncated JSON)
// returns an error, while individually malformed nodes and edges survive
// decoding and are filtered later during graph construction.
package io
