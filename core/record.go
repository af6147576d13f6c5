package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the variants of a record value tree.
type ValueKind int

const (
	// KindString is a string scalar.
	KindString ValueKind = iota + 1
	// KindNumber is a numeric scalar.
	KindNumber
	// KindBool is a boolean scalar.
	KindBool
	// KindNull is an explicit null.
	KindNull
	// KindMapping is a nested mapping with ordered fields.
	KindMapping
	// KindSequence is an ordered list of values.
	KindSequence
)

// Value is one node of a record's field tree. Mappings keep their fields in
// declaration order so that name extraction is deterministic regardless of the
// host map implementation.
type Value struct {
	Kind   ValueKind
	Str    string
	Num    float64
	Bool   bool
	Fields []Field  // Kind == KindMapping
	Items  []*Value // Kind == KindSequence
}

// Field is a named member of a mapping.
type Field struct {
	Name  string
	Value *Value
}

// StringValue builds a string scalar.
func StringValue(s string) *Value {
	return &Value{Kind: KindString, Str: s}
}

// NumberValue builds a numeric scalar.
func NumberValue(n float64) *Value {
	return &Value{Kind: KindNumber, Num: n}
}

// Mapping builds a mapping value from fields, preserving their order.
func Mapping(fields ...Field) *Value {
	return &Value{Kind: KindMapping, Fields: fields}
}

// FieldNamed returns the first field with the given name, compared
// case-insensitively, or nil.
func (v *Value) FieldNamed(name string) *Value {
	if v == nil || v.Kind != KindMapping {
		return nil
	}
	for _, f := range v.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return nil
}

// Record is an immutable source record: a caller-assigned composite key plus
// an arbitrarily nested field tree. Re-submitting a record with the same key
// replaces the prior state (upsert).
type Record struct {
	Key  RecordKey
	Root *Value
}

// Field names carrying the record identity in the wire format.
const (
	dataSourceField = "DATA_SOURCE"
	recordIDField   = "RECORD_ID"
)

// DecodeRecord parses one JSON record, preserving field declaration order.
// The top level must be a mapping containing DATA_SOURCE and RECORD_ID.
func DecodeRecord(data []byte) (*Record, error) {
	root, err := DecodeValue(data)
	if err != nil {
		return nil, err
	}
	if root.Kind != KindMapping {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrInvalidRecord)
	}

	rec := &Record{Root: root}
	if v := root.FieldNamed(dataSourceField); v != nil && v.Kind == KindString {
		rec.Key.DataSource = v.Str
	}
	if v := root.FieldNamed(recordIDField); v != nil {
		switch v.Kind {
		case KindString:
			rec.Key.RecordID = v.Str
		case KindNumber:
			// Some sources emit numeric record ids.
			rec.Key.RecordID = strconv.FormatFloat(v.Num, 'f', -1, 64)
		}
	}

	if err := ValidateRecord(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DecodeValue parses a JSON document into a Value tree, preserving field
// declaration order inside mappings.
func DecodeValue(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := &Value{Kind: KindMapping}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				name, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected mapping key %v", keyTok)
				}
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				v.Fields = append(v.Fields, Field{Name: name, Value: child})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return v, nil
		case '[':
			v := &Value{Kind: KindSequence}
			for dec.More() {
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				v.Items = append(v.Items, child)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return v, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case string:
		return &Value{Kind: KindString, Str: t}, nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindNumber, Num: n}, nil
	case bool:
		return &Value{Kind: KindBool, Bool: t}, nil
	case nil:
		return &Value{Kind: KindNull}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}
