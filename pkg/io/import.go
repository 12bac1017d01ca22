package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	kerrors "github.com/knotmap/knotmap/pkg/errors"
	"github.com/knotmap/knotmap/pkg/graph"
)

// Input is the raw decoded payload before any filtering.
type Input struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

// ReadJSON decodes a raw graph payload from r.
//
// The input must be a JSON object with "nodes" and "edges" arrays:
//
//	{
//	  "nodes": [{"id": "a", "name": "A", "level": 0}],
//	  "edges": [{"from": "a", "to": "b", "type": "related"}]
//	}
//
// ReadJSON validates shape only: malformed JSON or arrays of the wrong
// type fail, but nodes with empty IDs or edges pointing at unknown nodes
// pass through untouched. Semantic filtering is the graph builder's job,
// which reports what it dropped instead of failing.
//
// Numeric edge weights follow a zero-means-absent convention: an edge
// with "confidence": 0 (or the field omitted, JSON cannot tell the two
// apart here) receives the builder's default confidence, and a zero
// strength falls back to the edge's confidence. Exports wanting the
// builder's confidence floor to apply must encode a small positive value
// rather than zero.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (Input, error) {
	var in Input
	dec := json.NewDecoder(r)
	if err := dec.Decode(&in); err != nil {
		return Input{}, fmt.Errorf("decode graph input: %w", err)
	}
	return in, nil
}

// ImportJSON reads a JSON file at path and returns the decoded payload.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. Errors wrap the underlying cause with the file path for context.
// Paths are validated first: traversal sequences, control characters and
// backslashes are rejected before the filesystem is touched.
func ImportJSON(path string) (Input, error) {
	if err := kerrors.ValidatePath(path); err != nil {
		return Input{}, fmt.Errorf("import %s: %w", path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return Input{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	in, err := ReadJSON(f)
	if err != nil {
		return Input{}, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}
