package listing

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
		ok    bool
	}{
		{"plain number", "25000000", 25000000, true},
		{"currency suffix", "25,000,000 AED", 25000000, true},
		{"lowercase currency", "1,500,000 aed", 1500000, true},
		{"symbol prefix", "$2,000,000", 2000000, true},
		{"euro symbol", "€950000", 950000, true},
		{"decimal rounds", "1000000.5", 1000001, true},
		{"non-numeric", "invalid-price", 0, false},
		{"empty", "", 0, false},
		{"zero below minimum", "0", 0, false},
		{"negative", "-5000", 0, false},
		{"above maximum", "1,000,000,001", 0, false},
		{"exactly maximum", "1,000,000,000", 1_000_000_000, true},
		{"exactly minimum", "1", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParsePrice(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParsePrice(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		field   string
		want    int
		wantErr bool
	}{
		{"plain", "3", "bedrooms", 3, false},
		{"maid qualifier", "4 + Maid", "bedrooms", 4, false},
		{"studio bedrooms", "Studio", "bedrooms", 0, false},
		{"studio case insensitive", "STUDIO", "bedrooms", 0, false},
		{"studio bathrooms rejected", "Studio", "bathrooms", 0, true},
		{"non-numeric", "many", "bedrooms", 0, true},
		{"above max", "21", "bedrooms", 0, true},
		{"below min", "-1", "bathrooms", 0, true},
		{"boundary max", "20", "bathrooms", 20, false},
		{"boundary min", "0", "bathrooms", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCount(tt.input, tt.field, MinRooms, MaxRooms)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCount(%q, %q) error = %v, wantErr %v", tt.input, tt.field, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseCount(%q, %q) = %d, want %d", tt.input, tt.field, got, tt.want)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"sqft converted", "1,000 sqft", 9290}, // round(1000 × 0.092903 × 100)
		{"sqft with space", "500 sq ft", 4645},
		{"sqm exact", "100 sqm", 10000},
		{"bare number assumed sqm", "85.5", 8550},
		{"number in text", "approx 120 total", 12000},
		{"empty", "", 0},
		{"no number", "spacious", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSize(tt.input); got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractReference(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare reference", "12345", "PF-12345", false},
		{"already prefixed", "PF-12345", "PF-12345", false},
		{"surrounding whitespace", "  AB-99  ", "PF-AB-99", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractReference(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractReference(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ExtractReference(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsLuxuryBoundary(t *testing.T) {
	if IsLuxury(20_000_000) {
		t.Error("IsLuxury(20000000) = true, want false (strict greater-than)")
	}
	if !IsLuxury(20_000_001) {
		t.Error("IsLuxury(20000001) = false, want true")
	}
}
