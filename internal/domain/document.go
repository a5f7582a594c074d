package domain

// Document is a schema-flexible record as stored in a collection.
type Document map[string]any

// Clone returns a shallow copy.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// ID returns the stored identifier, if any.
func (d Document) ID() string {
	return idString(d[FieldID])
}

// Without returns a copy with the given keys removed.
func (d Document) Without(keys ...string) Document {
	out := d.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// WriteResult mirrors the acknowledgement a document store returns for a write.
type WriteResult struct {
	Acknowledged  bool   `json:"acknowledged"`
	InsertedID    string `json:"insertedId,omitempty"`
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	UpsertedCount int64  `json:"upsertedCount"`
	UpsertedID    string `json:"upsertedId,omitempty"`
}

// Page selects a window of a listing. A zero Limit means no paging.
type Page struct {
	Skip  int64
	Limit int64
}
