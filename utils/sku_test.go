package utils

import "testing"

func TestGenerateSKU(t *testing.T) {
	tests := []struct {
		name  string
		brand string
		want  string
	}{
		{"Dog Food", "Acme", "Dog-Food-Acme"},
		{"Dog Food", "", "Dog-Food"},
		{"  Cat  Toy  ", "", "Cat-Toy"},
		{"غذای سگ", "میروپت", "غذای-سگ-میروپت"},
		{"Toy! (new)", "", "Toy-new"},
	}
	for _, tt := range tests {
		if got := GenerateSKU(tt.name, tt.brand); got != tt.want {
			t.Errorf("GenerateSKU(%q, %q) = %q, want %q", tt.name, tt.brand, got, tt.want)
		}
	}
}

func TestGenerateUniqueSKU(t *testing.T) {
	existing := []string{"Dog-Food-Acme", "Dog-Food-Acme-1"}
	if got := GenerateUniqueSKU("Dog Food", "Acme", existing); got != "Dog-Food-Acme-2" {
		t.Errorf("GenerateUniqueSKU() = %q, want Dog-Food-Acme-2", got)
	}

	if got := GenerateUniqueSKU("Dog Food", "Acme", nil); got != "Dog-Food-Acme" {
		t.Errorf("GenerateUniqueSKU(no conflicts) = %q, want Dog-Food-Acme", got)
	}
}
