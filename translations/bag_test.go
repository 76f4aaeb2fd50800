package translations

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBagScanPopulatesValues(t *testing.T) {
	var bag Bag
	if err := bag.Scan([]byte(`{"title_nl":"Valk","title_de":"Falke"}`)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !bag.Loaded() {
		t.Fatalf("expected bag to be loaded after scan")
	}
	value, ok := bag.Get("title_nl")
	if !ok || value != "Valk" {
		t.Fatalf("expected title_nl=Valk, got %q (ok=%v)", value, ok)
	}
	if bag.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", bag.Len())
	}
}

func TestBagScanNullColumn(t *testing.T) {
	var bag Bag
	if err := bag.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if !bag.Loaded() {
		t.Fatalf("NULL column should scan as a loaded empty bag")
	}
	if bag.Len() != 0 {
		t.Fatalf("expected empty bag, got %d entries", bag.Len())
	}
}

func TestBagValueRoundTrip(t *testing.T) {
	bag := BagOf(map[string]string{"title_fr": "Faucon"})
	raw, err := bag.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(raw.(string)), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["title_fr"] != "Faucon" {
		t.Fatalf("unexpected payload: %v", decoded)
	}
}

func TestBagValueEmptyIsNull(t *testing.T) {
	var bag Bag
	raw, err := bag.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if raw != nil {
		t.Fatalf("expected NULL for empty bag, got %v", raw)
	}
}

func TestBagValueDeferredFails(t *testing.T) {
	var bag Bag
	bag.MarkDeferred()
	if _, err := bag.Value(); !errors.Is(err, ErrTranslationsDeferred) {
		t.Fatalf("expected ErrTranslationsDeferred, got %v", err)
	}
}

func TestBagDeleteRemovesKey(t *testing.T) {
	bag := BagOf(map[string]string{"title_nl": "Valk", "body_nl": "tekst"})
	bag.Delete("title_nl")
	if _, ok := bag.Get("title_nl"); ok {
		t.Fatalf("expected title_nl to be gone")
	}
	if bag.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", bag.Len())
	}
}
