package binaryfmt

import (
	"encoding/json"

	"github.com/wyd-tools/gamevault/internal/errs"
)

// DocumentToJSON serializes doc using its documented field names.
func DocumentToJSON(doc Document) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.CodeWriteFailure, err)
	}
	return raw, nil
}

// DocumentFromJSON is the inverse of DocumentToJSON, used by
// compile_json_to_binary to read back a (possibly hand-edited) document.
func DocumentFromJSON(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, errs.New(errs.CodeUnsupportedCompilation, "binaryfmt: malformed document JSON: %v", err)
	}
	return doc, nil
}
