package billing

import "testing"

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if p.AllowSplit {
		t.Error("split payments must default to disabled")
	}
	for cur, want := range map[string]int64{"EUR": 9000, "XOF": 60000, "GNF": 900000} {
		got, err := p.PriceFor(cur)
		if err != nil {
			t.Fatalf("PriceFor(%s): %v", cur, err)
		}
		if got != want {
			t.Errorf("PriceFor(%s) = %d, want %d", cur, got, want)
		}
	}
}

func TestPriceFor_UnsupportedCurrency(t *testing.T) {
	p := DefaultPolicy()
	if _, err := p.PriceFor("USD"); err == nil {
		t.Error("expected error for a currency with no price point")
	}
}

func TestCanSplit(t *testing.T) {
	cases := []struct {
		name        string
		allowSplit  bool
		userEnabled bool
		want        bool
	}{
		{"both off", false, false, false},
		{"global off, user on", false, true, false},
		{"global on, user off", true, false, false},
		{"both on", true, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := PricingPolicy{AllowSplit: tc.allowSplit}
			if got := p.CanSplit(tc.userEnabled); got != tc.want {
				t.Errorf("CanSplit(%v) with global=%v = %v, want %v", tc.userEnabled, tc.allowSplit, got, tc.want)
			}
		})
	}
}
