package domain

import (
	"encoding/json"
	"testing"
)

func TestListingDecodesNumericStrings(t *testing.T) {
	var l Listing
	raw := `{"id":"7","user_id":3,"title":"Satılık Daire","price":"2500000.50","currency":"TRY","location":"Kadıköy","category":"Emlak","image_url":"/uploads/7.jpg","created_at":"2024-01-01"}`
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if l.ID != 7 || l.UserID != 3 || l.Price != 2500000.5 {
		t.Fatalf("numeric fields = %+v", l)
	}
	if l.Title != "Satılık Daire" || l.Category != "Emlak" || l.ImageURL != "/uploads/7.jpg" {
		t.Fatalf("string fields = %+v", l)
	}
}

func TestListingMistypedFieldsDecodeToZero(t *testing.T) {
	var items []Listing
	raw := `[{"id":1,"price":{"amount":5},"title":["x"]},null,{"id":2,"price":50}]`
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if items[0].ID != 1 || items[0].Price != 0 || items[0].Title != "" {
		t.Fatalf("first = %+v", items[0])
	}
	if items[2].ID != 2 || items[2].Price != 50 {
		t.Fatalf("third = %+v", items[2])
	}
}

func TestListingRejectsNonObjectElement(t *testing.T) {
	var l Listing
	if err := json.Unmarshal([]byte(`"listing"`), &l); err == nil {
		t.Fatal("expected error for non-object listing")
	}
}

func TestListingRoundTripKeepsTags(t *testing.T) {
	in := Listing{ID: 4, Title: "Bisiklet", Price: 50, Currency: ListingCurrency}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Listing
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}
}
