package encoder

import (
	"errors"
	"math"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		input    uint64
		expected string
	}{
		{"zero", 0, "0"},
		{"single digit", 5, "5"},
		{"nine", 9, "9"},
		{"ten becomes 'A'", 10, "A"},
		{"thirty-five becomes 'Z'", 35, "Z"},
		{"thirty-six becomes 'a'", 36, "a"},
		{"sixty-one becomes 'z'", 61, "z"},
		{"sixty-two becomes '10'", 62, "10"},
		{"large number", 12345, "3D7"},
		{"million", 1000000, "4C92"},
		{"realistic ID", 123456789, "8M0kX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Encode(tt.input)
			if result != tt.expected {
				t.Errorf("Encode(%d) = %s; want %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected uint64
	}{
		{"zero", "0", 0},
		{"single digit", "5", 5},
		{"letter 'A' is 10", "A", 10},
		{"letter 'Z' is 35", "Z", 35},
		{"letter 'a' is 36", "a", 36},
		{"letter 'z' is 61", "z", 61},
		{"'10' is 62", "10", 62},
		{"large number", "3D7", 12345},
		{"million", "4C92", 1000000},
		{"realistic ID", "8M0kX", 123456789},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode(tt.input)
			if err != nil {
				t.Fatalf("Decode(%s) returned error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("Decode(%s) = %d; want %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrEmptyCode},
		{"dash", "ab-c", ErrInvalidChar},
		{"space", "a b", ErrInvalidChar},
		{"too long", "zzzzzzzzzzzz", ErrCodeOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode(%q) error = %v; want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	testNumbers := []uint64{0, 1, 10, 61, 62, 100, 1000, 12345, 999999, 123456789, math.MaxUint64}

	for _, num := range testNumbers {
		encoded := Encode(num)
		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(%s) returned error: %v", encoded, err)
		}
		if decoded != num {
			t.Errorf("Round trip failed: %d -> %s -> %d", num, encoded, decoded)
		}
	}
}

func TestEncodeIsInjective(t *testing.T) {
	seen := make(map[string]uint64)
	for id := uint64(1); id <= 250000; id++ {
		code := Encode(id)
		if prev, ok := seen[code]; ok {
			t.Fatalf("Encode(%d) = %s collides with Encode(%d)", id, code, prev)
		}
		seen[code] = id
	}
}

func TestEncodedLength(t *testing.T) {
	tests := []struct {
		input       uint64
		maxLength   int
		description string
	}{
		{61, 1, "max 1-char"},
		{62*62 - 1, 2, "max 2-char"},
		{62*62*62 - 1, 3, "max 3-char"},
		{62*62*62*62 - 1, 4, "max 4-char"},
		{1000000, 4, "1 million fits in 4"},
		{56800235583, 6, "max 6-char capacity"}, // 62^6 - 1
		{math.MaxUint64, 11, "uint64 max"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			encoded := Encode(tt.input)
			if len(encoded) > tt.maxLength {
				t.Errorf("Encode(%d) = %s (len=%d); want max length %d",
					tt.input, encoded, len(encoded), tt.maxLength)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"1", true},
		{"aZ09", true},
		{"", false},
		{"a-b", false},
		{"é", false},
	}

	for _, tt := range tests {
		if got := IsValid(tt.code); got != tt.want {
			t.Errorf("IsValid(%q) = %v; want %v", tt.code, got, tt.want)
		}
	}
}
