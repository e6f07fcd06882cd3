package validation

import (
	"strings"
	"testing"
)

type inner struct {
	Rate float64 `toml:"learning_rate" validate:"gt=0,lte=1"`
}

type sample struct {
	Name   string `json:"name" validate:"required"`
	Mode   string `toml:"mode" validate:"oneof=a b"`
	Limit  int    `json:"limit" validate:"gte=1,lte=10"`
	Nested inner  `toml:"training"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name     string
		in       sample
		wantErrs []string
	}{
		{"valid", sample{Name: "x", Mode: "a", Limit: 5, Nested: inner{Rate: 0.1}}, nil},
		{"missing name", sample{Mode: "b", Limit: 1, Nested: inner{Rate: 1}}, []string{"name is required"}},
		{"several", sample{Name: "x", Mode: "c", Limit: 11, Nested: inner{Rate: 0}}, []string{
			"mode must be one of: a b",
			"limit must be <= 10",
			"training.learning_rate must be > 0",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.in)
			if len(tt.wantErrs) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			for _, want := range tt.wantErrs {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}
