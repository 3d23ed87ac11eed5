package league

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// codec sorts map keys so league ids keep a stable order across commits.
var codec = sonic.Config{
	SortMapKeys:      true,
	EscapeHTML:       false,
	CompactMarshaler: true,
	ValidateString:   true,
}.Froze()

// Decode parses a stored document, applies load-time defaults and rejects
// leagues that break the rules in League.Validate.
func Decode(raw []byte) (Document, error) {
	var doc Document
	if err := codec.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("decode league document: %w", err)
	}
	ApplyDefaults(&doc)
	for _, id := range doc.IDs() {
		if err := doc.Leagues[id].Validate(); err != nil {
			return Document{}, fmt.Errorf("league %q: %w", id, err)
		}
	}
	return doc, nil
}

// Encode renders the document as indented JSON with a trailing newline.
func Encode(doc Document) ([]byte, error) {
	raw, err := codec.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode league document: %w", err)
	}
	return append(raw, '\n'), nil
}

// Clone returns a deep copy by round-tripping through the codec.
func Clone(doc Document) (Document, error) {
	raw, err := codec.Marshal(doc)
	if err != nil {
		return Document{}, fmt.Errorf("clone league document: %w", err)
	}
	var out Document
	if err := codec.Unmarshal(raw, &out); err != nil {
		return Document{}, fmt.Errorf("clone league document: %w", err)
	}
	ApplyDefaults(&out)
	return out, nil
}
