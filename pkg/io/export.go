package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/knotmap/knotmap/pkg/elements"
	kerrors "github.com/knotmap/knotmap/pkg/errors"
)

// WriteElements encodes an element document as indented JSON and writes it
// to w. The output is the engine's final render contract and can be fed
// directly to a frontend.
func WriteElements(doc elements.Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode elements: %w", err)
	}
	return nil
}

// ExportElements writes an element document to the file at path, creating
// or truncating it. The path is validated before the file is created, the
// same rules [ImportJSON] applies on the way in.
func ExportElements(doc elements.Document, path string) error {
	if err := kerrors.ValidatePath(path); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := WriteElements(doc, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// ReadElements decodes an element document from r, the inverse of
// [WriteElements]. Used by tooling that post-processes exports.
func ReadElements(r io.Reader) (elements.Document, error) {
	var doc elements.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return elements.Document{}, fmt.Errorf("decode elements: %w", err)
	}
	return doc, nil
}
