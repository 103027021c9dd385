package types

import (
	"encoding/json"
	"testing"
)

func TestQuantityDisplay(t *testing.T) {
	tests := []struct {
		name string
		q    Quantity
		want string
	}{
		{"whole number", NewQuantityFromInt(5), "5"},
		{"one decimal", NewQuantityFromFloat64(1.5), "1.5"},
		{"full precision", NewQuantityFromFloat64(0.1234), "0.1234"},
		{"zero", 0, "0"},
		{"negative", NewQuantityFromFloat64(-2.25), "-2.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Display(); got != tt.want {
				t.Errorf("Display mismatch\nwant: %s\ngot:  %s", tt.want, got)
			}
		})
	}
}

func TestQuantityString(t *testing.T) {
	if got := NewQuantityFromInt(5).String(); got != "5.0000" {
		t.Errorf("want 5.0000, got %s", got)
	}
	if got := NewQuantityFromFloat64(-1.5).String(); got != "-1.5000" {
		t.Errorf("want -1.5000, got %s", got)
	}
}

func TestQuantityJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Quantity
	}{
		{"number", `2.5`, NewQuantityFromFloat64(2.5)},
		{"string", `"2.5"`, NewQuantityFromFloat64(2.5)},
		{"integer", `3`, NewQuantityFromInt(3)},
		{"null", `null`, 0},
		{"extra digits truncated", `1.23456`, NewQuantityFromInt64Scaled(12345)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			if err := json.Unmarshal([]byte(tt.input), &q); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if q != tt.want {
				t.Errorf("want %d, got %d", tt.want, q)
			}
		})
	}
}

func TestQuantityRoundTrip(t *testing.T) {
	q := NewQuantityFromFloat64(1.5)
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "1.5000" {
		t.Errorf("want 1.5000, got %s", data)
	}

	var back Quantity
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back != q {
		t.Errorf("round trip mismatch: %d != %d", back, q)
	}
}

// Money arithmetic on the quantity decimal path must be exact:
// 0.1 + 0.2 style drift would corrupt refund totals.
func TestQuantityDecimalExact(t *testing.T) {
	a := NewQuantityFromFloat64(0.1)
	b := NewQuantityFromFloat64(0.2)
	sum := a + b
	if sum.Decimal().String() != "0.3" {
		t.Errorf("want 0.3, got %s", sum.Decimal().String())
	}
}
