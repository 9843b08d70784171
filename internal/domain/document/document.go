package document

// Document is a normalized, searchable city record (immutable value object
// except for the vector, which is attached at vectorization time).
type Document struct {
	id     string
	text   string
	meta   Metadata
	vector []float32
}

// New creates a document. The id is a deterministic function of
// (source batch, row position), so re-ingestion overwrites in place.
func New(id, text string, meta Metadata) Document {
	return Document{id: id, text: text, meta: meta}
}

// Reconstruct creates a document from storage fields without validation.
func Reconstruct(id, text string, meta Metadata, vector []float32) Document {
	return Document{id: id, text: text, meta: meta, vector: vector}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Text returns the embedding input text.
func (d *Document) Text() string { return d.text }

// Meta returns the structured metadata.
func (d Document) Meta() Metadata { return d.meta }

// Vector returns the embedding vector, nil before vectorization.
func (d *Document) Vector() []float32 { return d.vector }

// SetVector attaches the embedding vector in place.
func (d *Document) SetVector(v []float32) { d.vector = v }
