package score

import "testing"

func TestConvertRawToTOEFL(t *testing.T) {
	tests := []struct {
		name   string
		raw    float64
		want   float64
		wantOK bool
	}{
		{"zero", 0, 0, true},
		{"mid table", 6, 11, true},
		{"top of table", 16, 30, true},
		{"half step interpolates", 6.5, 12, true},
		{"half step near bottom", 0.5, 1, true},
		{"half step near top", 15.5, 29, true},
		{"above table", 17, 0, false},
		{"fraction above table", 16.5, 0, false},
		{"negative", -1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ConvertRawToTOEFL(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ConvertRawToTOEFL(%v) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ConvertRawToTOEFL(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsHalfStep(t *testing.T) {
	tests := []struct {
		raw  float64
		want bool
	}{
		{5, true},
		{5.5, true},
		{0, true},
		{5.25, false},
		{3.1, false},
	}
	for _, tt := range tests {
		if got := IsHalfStep(tt.raw); got != tt.want {
			t.Errorf("IsHalfStep(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestAggregate(t *testing.T) {
	perTask := map[int]map[string]float64{
		1: {"alice": 3.0, "bob": 2.0},
		2: {"alice": 2.5},
	}

	totals := Aggregate(perTask)
	if len(totals) != 2 {
		t.Fatalf("len(totals) = %d, want 2", len(totals))
	}

	// Sorted by student id.
	alice, bob := totals[0], totals[1]
	if alice.StudentID != "alice" || bob.StudentID != "bob" {
		t.Fatalf("order = %s, %s, want alice, bob", alice.StudentID, bob.StudentID)
	}

	if alice.RawTotal != 5.5 {
		t.Errorf("alice RawTotal = %v, want 5.5", alice.RawTotal)
	}
	if alice.ScaledScore == nil || *alice.ScaledScore != 10 {
		t.Errorf("alice ScaledScore = %v, want 10", alice.ScaledScore)
	}

	// Bob is absent from task 2 and simply contributes nothing for it.
	if bob.RawTotal != 2.0 {
		t.Errorf("bob RawTotal = %v, want 2", bob.RawTotal)
	}
	if bob.ScaledScore == nil || *bob.ScaledScore != 4 {
		t.Errorf("bob ScaledScore = %v, want 4", bob.ScaledScore)
	}
}

func TestAggregateOutsideDomain(t *testing.T) {
	totals := Aggregate(map[int]map[string]float64{1: {"carol": 17}})
	if len(totals) != 1 {
		t.Fatalf("len(totals) = %d, want 1", len(totals))
	}
	if totals[0].ScaledScore != nil {
		t.Errorf("ScaledScore = %v, want nil for out-of-domain total", *totals[0].ScaledScore)
	}
}
