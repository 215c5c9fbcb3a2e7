package crew_test

import (
	"testing"

	"github.com/felixgeelhaar/atelier/pkg/domain/crew"
)

func TestCompensationMode(t *testing.T) {
	tests := []struct {
		name     string
		member   crew.Member
		want     crew.CompensationMode
		wantPay  float64
	}{
		{"fixed salary", crew.Member{FixedSalary: 15000}, crew.CompensationFixed, 15000},
		{"variable salary", crew.Member{VariableSalary: 800}, crew.CompensationVariable, 800},
		{"fixed wins over variable", crew.Member{FixedSalary: 15000, VariableSalary: 800}, crew.CompensationFixed, 15000},
		{"no salary", crew.Member{}, crew.CompensationNone, 0},
		{"zero figures", crew.Member{FixedSalary: 0, VariableSalary: 0}, crew.CompensationNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.member.CompensationMode(); got != tt.want {
				t.Errorf("CompensationMode() = %v, want %v", got, tt.want)
			}
			if got := tt.member.PayAmount(); got != tt.wantPay {
				t.Errorf("PayAmount() = %v, want %v", got, tt.wantPay)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	m := crew.Member{ID: "c1", Name: "Ana", Type: "photographer", FixedSalary: 12000}
	s := m.Summary()
	if s.ID != "c1" || s.Name != "Ana" || s.Type != "photographer" {
		t.Errorf("unexpected summary: %+v", s)
	}
}
