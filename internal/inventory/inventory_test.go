package inventory

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
)

func TestParseEntries(t *testing.T) {
	result := ParseEntries("a:b:c\nbad\nA:B:C\na:b:c")

	if !reflect.DeepEqual(result.Valid, []string{"a:b:c", "A:B:C", "a:b:c"}) {
		t.Fatalf("valid = %v", result.Valid)
	}
	if !reflect.DeepEqual(result.Invalid, []string{"bad"}) {
		t.Fatalf("invalid = %v", result.Invalid)
	}
	// Case-insensitive dedup collapses all three to the first occurrence.
	if !reflect.DeepEqual(result.Deduped, []string{"a:b:c"}) {
		t.Fatalf("deduped = %v", result.Deduped)
	}
}

func TestParseEntriesRejectsEmptyFields(t *testing.T) {
	result := ParseEntries("user::email\nuser:pass:email:extra\n\n  \n")

	if !reflect.DeepEqual(result.Invalid, []string{"user::email"}) {
		t.Fatalf("invalid = %v", result.Invalid)
	}
	if !reflect.DeepEqual(result.Valid, []string{"user:pass:email:extra"}) {
		t.Fatalf("valid = %v", result.Valid)
	}
}

func TestParseEntriesEmptyBlob(t *testing.T) {
	result := ParseEntries("")
	if len(result.Valid)+len(result.Invalid)+len(result.Deduped) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	products := []backend.Product{
		{
			ID: "p-1", Name: "Aged Instagram", Price: 12000, Stock: 25,
			Category: "Instagram", Description: "Created 2018, higher trust score",
			Features: []string{"Region: US", "Phone Verified"},
		},
		{ID: "p-2", Name: "VPN Key", Price: 900, Stock: 100, Category: "VPN"},
	}

	var buf bytes.Buffer
	if err := ExportProducts(&buf, products); err != nil {
		t.Fatalf("export: %v", err)
	}

	inputs, err := ImportProducts(&buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(inputs))
	}
	if inputs[0].Name != "Aged Instagram" || inputs[0].Price != 12000 || inputs[0].Stock != 25 {
		t.Fatalf("unexpected first row: %+v", inputs[0])
	}
	if !reflect.DeepEqual(inputs[0].Features, []string{"Region: US", "Phone Verified"}) {
		t.Fatalf("features = %v", inputs[0].Features)
	}
	if inputs[1].Features != nil {
		t.Fatalf("expected nil features for empty column, got %v", inputs[1].Features)
	}
}

func TestImportProductsBadRows(t *testing.T) {
	header := "id,name,price,stock,category,description,features,image\n"

	if _, err := ImportProducts(bytes.NewBufferString(header + "x,Name,abc,5,Cat,,,\n")); err == nil {
		t.Fatal("expected error for invalid price")
	}
	if _, err := ImportProducts(bytes.NewBufferString(header + "x,Name,100,many,Cat,,,\n")); err == nil {
		t.Fatal("expected error for invalid stock")
	}
	if _, err := ImportProducts(bytes.NewBufferString("only,three,columns\n")); err == nil {
		t.Fatal("expected error for short header")
	}
}
