package domain

import "encoding/json"

// Document wraps a JSON value of caller-chosen schema, used for metadata
// records and token extensions. The bytes are cloned on construction and on
// read so shared state cannot be mutated through a retained slice. Documents
// are replaced wholesale, never patched.
type Document struct {
	defined bool
	raw     json.RawMessage
}

// NewDocument builds a document from raw JSON. A nil slice yields a defined
// but empty document; use UndefinedDocument for "not set".
func NewDocument(raw json.RawMessage) Document {
	doc := Document{defined: true}
	if raw != nil {
		doc.raw = cloneRawMessage(raw)
	}
	return doc
}

// NewDocumentFromValue marshals a typed value into a Document.
func NewDocumentFromValue[T any](value T) (Document, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return Document{}, err
	}
	return NewDocument(raw), nil
}

// UndefinedDocument returns an uninitialized document wrapper.
func UndefinedDocument() Document {
	return Document{}
}

// Defined reports whether the document has been initialized.
func (d Document) Defined() bool { return d.defined }

// IsEmpty reports whether the document holds no bytes.
func (d Document) IsEmpty() bool {
	return !d.defined || len(d.raw) == 0
}

// Raw returns a cloned copy of the underlying JSON. Nil when undefined or
// empty.
func (d Document) Raw() json.RawMessage {
	if !d.defined || len(d.raw) == 0 {
		return nil
	}
	return cloneRawMessage(d.raw)
}

// Decode unmarshals the document into the supplied value.
func (d Document) Decode(into any) error {
	if d.IsEmpty() {
		return NotFoundError{Entity: "document"}
	}
	return json.Unmarshal(d.raw, into)
}

// MarshalJSON encodes the wrapped bytes; undefined documents encode as null.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.IsEmpty() {
		return []byte("null"), nil
	}
	return cloneRawMessage(d.raw), nil
}

// UnmarshalJSON captures the raw bytes; a JSON null leaves the document
// undefined.
func (d *Document) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Document{}
		return nil
	}
	*d = NewDocument(data)
	return nil
}

func cloneRawMessage(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
