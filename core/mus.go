package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types the entry store persists. The format set here
// is small and fixed, so the serializers are written directly against mus-go
// primitives rather than generated.

var (
	// IDMUS serializes ID values.
	IDMUS = idMUS{}

	// KeyMUS serializes RecordKey values.
	KeyMUS = keyMUS{}

	// IndexEntryMUS serializes IndexEntry values.
	IndexEntryMUS = indexEntryMUS{}

	// Embeddings are fixed-width float32 slices.
	embeddingMUS = ord.NewSliceSer[float32](raw.Float32)
)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

type keyMUS struct{}

func (keyMUS) Marshal(key RecordKey, bs []byte) (n int) {
	n = ord.String.Marshal(key.DataSource, bs)
	n += ord.String.Marshal(key.RecordID, bs[n:])
	return n
}

func (keyMUS) Unmarshal(bs []byte) (key RecordKey, n int, err error) {
	key.DataSource, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	key.RecordID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (keyMUS) Size(key RecordKey) int {
	return ord.String.Size(key.DataSource) + ord.String.Size(key.RecordID)
}

type indexEntryMUS struct{}

func (indexEntryMUS) Marshal(entry IndexEntry, bs []byte) (n int) {
	n = KeyMUS.Marshal(entry.Key, bs)
	n += ord.String.Marshal(entry.Label, bs[n:])
	n += embeddingMUS.Marshal(entry.Embedding, bs[n:])
	n += varint.Int64.Marshal(entry.InsertedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(entry.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func (indexEntryMUS) Unmarshal(bs []byte) (entry IndexEntry, n int, err error) {
	var n1 int
	entry.Key, n, err = KeyMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	entry.Label, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	entry.Embedding, n1, err = embeddingMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	entry.InsertedAt = time.UnixMicro(micros).UTC()
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	entry.UpdatedAt = time.UnixMicro(micros).UTC()
	return
}

func (indexEntryMUS) Size(entry IndexEntry) int {
	return KeyMUS.Size(entry.Key) +
		ord.String.Size(entry.Label) +
		embeddingMUS.Size(entry.Embedding) +
		varint.Int64.Size(entry.InsertedAt.UnixMicro()) +
		varint.Int64.Size(entry.UpdatedAt.UnixMicro())
}
