package till

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name       string
		total      string
		tendered   string
		float      string
		wantChange string
		wantErr    error
	}{
		{name: "exact cash", total: "270.00", tendered: "270.00", float: "0", wantChange: "0"},
		{name: "change within float", total: "270.00", tendered: "300.00", float: "500.00", wantChange: "30.00"},
		{name: "short cash", total: "270.00", tendered: "200.00", float: "500.00", wantErr: ErrInsufficientCash},
		{name: "one centavo short", total: "100.00", tendered: "99.99", float: "500.00", wantErr: ErrInsufficientCash},
		{name: "change exceeds float", total: "10.00", tendered: "1000.00", float: "500.00", wantErr: ErrInsufficientFloat},
		{name: "change equals float", total: "500.00", tendered: "1000.00", float: "500.00", wantChange: "500.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, err := Settle(dec(tt.total), dec(tt.tendered), dec(tt.float))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err: got %v, want %v", err, tt.wantErr)
				}
				if !change.IsZero() {
					t.Errorf("change on failure: got %s, want 0", change)
				}
				return
			}
			if err != nil {
				t.Fatalf("Settle: %v", err)
			}
			if !change.Equal(dec(tt.wantChange)) {
				t.Errorf("change: got %s, want %s", change, tt.wantChange)
			}
		})
	}
}

// Documents the float formula exactly: float' = float + tendered - change,
// which equals float + total (500 + 300 - 30 = 770, not 530).
func TestSettle_FloatFormula(t *testing.T) {
	float := dec("500.00")
	total := dec("270.00")
	tendered := dec("300.00")

	change, err := Settle(total, tendered, float)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}

	after := float.Add(tendered).Sub(change)
	if !after.Equal(dec("770.00")) {
		t.Errorf("float after: got %s, want 770.00", after)
	}
	if !after.Equal(float.Add(total)) {
		t.Errorf("float formula must reduce to float + total")
	}
}
