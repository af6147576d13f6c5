package core

import (
	"testing"
)

func TestDecodeRecord(t *testing.T) {
	data := []byte(`{"DATA_SOURCE":"CUSTOMERS","RECORD_ID":"1001","PRIMARY_NAME_FULL":"Robert Johnson","PHONE_NUMBER":"555-1234"}`)

	rec, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("DecodeRecord() error = %v", err)
	}

	if rec.Key.DataSource != "CUSTOMERS" || rec.Key.RecordID != "1001" {
		t.Errorf("DecodeRecord() key = %v", rec.Key)
	}

	if len(rec.Root.Fields) != 4 {
		t.Fatalf("DecodeRecord() fields = %d, want 4", len(rec.Root.Fields))
	}

	// Field order must match declaration order.
	wantOrder := []string{"DATA_SOURCE", "RECORD_ID", "PRIMARY_NAME_FULL", "PHONE_NUMBER"}
	for i, name := range wantOrder {
		if rec.Root.Fields[i].Name != name {
			t.Errorf("field[%d] = %q, want %q", i, rec.Root.Fields[i].Name, name)
		}
	}
}

func TestDecodeRecord_Nested(t *testing.T) {
	data := []byte(`{"DATA_SOURCE":"CUSTOMERS","RECORD_ID":"7","IDENTITY":{"NAME_FIRST":"Alice","NAME_LAST":"Wong"},"ADDRESSES":[{"ADDR_LINE1":"1 Main St"}]}`)

	rec, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("DecodeRecord() error = %v", err)
	}

	identity := rec.Root.FieldNamed("IDENTITY")
	if identity == nil || identity.Kind != KindMapping {
		t.Fatalf("IDENTITY not decoded as mapping")
	}
	if got := identity.FieldNamed("NAME_FIRST"); got == nil || got.Str != "Alice" {
		t.Errorf("NAME_FIRST = %v", got)
	}

	addrs := rec.Root.FieldNamed("ADDRESSES")
	if addrs == nil || addrs.Kind != KindSequence || len(addrs.Items) != 1 {
		t.Fatalf("ADDRESSES not decoded as sequence")
	}
}

func TestDecodeRecord_NumericRecordID(t *testing.T) {
	data := []byte(`{"DATA_SOURCE":"CUSTOMERS","RECORD_ID":1001}`)

	rec, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("DecodeRecord() error = %v", err)
	}
	if rec.Key.RecordID != "1001" {
		t.Errorf("RecordID = %q, want %q", rec.Key.RecordID, "1001")
	}
}

func TestDecodeRecord_MissingKey(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing data source", `{"RECORD_ID":"1"}`},
		{"missing record id", `{"DATA_SOURCE":"CUSTOMERS"}`},
		{"not a mapping", `["DATA_SOURCE"]`},
		{"malformed", `{"DATA_SOURCE":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeRecord([]byte(tt.data)); err == nil {
				t.Errorf("DecodeRecord() expected error")
			}
		})
	}
}

func TestFieldNamed_CaseInsensitive(t *testing.T) {
	v := Mapping(
		Field{Name: "Name_Full", Value: StringValue("Bob Johnson")},
	)

	if got := v.FieldNamed("NAME_FULL"); got == nil || got.Str != "Bob Johnson" {
		t.Errorf("FieldNamed() case-insensitive lookup failed: %v", got)
	}
}

func TestDecodeValue_Scalars(t *testing.T) {
	v, err := DecodeValue([]byte(`{"S":"x","N":1.5,"B":true,"Z":null}`))
	if err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}

	if got := v.FieldNamed("S"); got.Kind != KindString || got.Str != "x" {
		t.Errorf("string scalar = %v", got)
	}
	if got := v.FieldNamed("N"); got.Kind != KindNumber || got.Num != 1.5 {
		t.Errorf("number scalar = %v", got)
	}
	if got := v.FieldNamed("B"); got.Kind != KindBool || !got.Bool {
		t.Errorf("bool scalar = %v", got)
	}
	if got := v.FieldNamed("Z"); got.Kind != KindNull {
		t.Errorf("null scalar = %v", got)
	}
}
