package models

import "testing"

func TestVariationFinalPrice(t *testing.T) {
	v := Variation{Price: 200000, Discount: 50000}
	if got := v.FinalPrice(); got != 150000 {
		t.Errorf("FinalPrice() = %f, want 150000", got)
	}

	v = Variation{Price: 200000}
	if got := v.FinalPrice(); got != 200000 {
		t.Errorf("FinalPrice() without discount = %f, want 200000", got)
	}
}

func TestVariationValidate(t *testing.T) {
	valid := Variation{Price: 100000, Stock: 5, Images: []string{"a.jpg"}}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid variation: %v", err)
	}

	tests := []struct {
		name string
		v    Variation
	}{
		{"zero price", Variation{Stock: 1, Images: []string{"a.jpg"}}},
		{"negative discount", Variation{Price: 100, Discount: -1, Images: []string{"a.jpg"}}},
		{"discount equals price", Variation{Price: 100, Discount: 100, Images: []string{"a.jpg"}}},
		{"negative stock", Variation{Price: 100, Stock: -1, Images: []string{"a.jpg"}}},
		{"no images", Variation{Price: 100, Stock: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.v.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestProductVariationAt(t *testing.T) {
	p := Product{Variations: []Variation{{Color: "red"}, {Color: "blue"}}}

	if v := p.VariationAt(1); v == nil || v.Color != "blue" {
		t.Errorf("VariationAt(1) = %v, want blue", v)
	}
	if v := p.VariationAt(2); v != nil {
		t.Errorf("VariationAt(2) = %v, want nil", v)
	}
	if v := p.VariationAt(-1); v != nil {
		t.Errorf("VariationAt(-1) = %v, want nil", v)
	}
}

func TestValidateVariations(t *testing.T) {
	if err := ValidateVariations(nil); err == nil {
		t.Error("ValidateVariations(nil) = nil, want error")
	}
	ok := []Variation{{Price: 100, Stock: 1, Images: []string{"a.jpg"}}}
	if err := ValidateVariations(ok); err != nil {
		t.Errorf("ValidateVariations(valid) = %v", err)
	}
	bad := append(ok, Variation{Price: 0})
	if err := ValidateVariations(bad); err == nil {
		t.Error("ValidateVariations(one invalid) = nil, want error")
	}
}
