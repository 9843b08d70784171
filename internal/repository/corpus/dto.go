package corpus

import (
	"encoding/binary"
	"math"

	"github.com/nomadmatch/nomadmatch/internal/domain/document"
)

// buildHashFields converts a domain Document into a flat map for HSET.
// Internal fields use a double-underscore prefix so metadata parsing can
// skip them.
func buildHashFields(doc *document.Document) map[string]string {
	meta := doc.Meta().Fields()
	m := make(map[string]string, 2+len(meta))
	m["__text"] = doc.Text()
	m["__vector"] = vectorToBytes(doc.Vector())
	for k, v := range meta {
		m[k] = v
	}
	return m
}

// parseHashFields converts flat hash fields back into text + metadata.
func parseHashFields(fields map[string]string) (string, document.Metadata) {
	return fields["__text"], document.FromFields(fields)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per
// float, little-endian), the layout FT.SEARCH expects for KNN blobs.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
