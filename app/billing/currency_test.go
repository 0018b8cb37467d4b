package billing

import (
	"testing"

	"github.com/MouctarBahLk/soorocampus-sub001/app/models"
)

func TestResolveCountry(t *testing.T) {
	cases := []struct {
		country      string
		wantCurrency string
		wantMethods  []models.PaymentMethod
	}{
		{"FR", "EUR", []models.PaymentMethod{models.MethodCard}},
		{"BE", "EUR", []models.PaymentMethod{models.MethodCard}},
		{"SN", "XOF", []models.PaymentMethod{models.MethodMobileMoney, models.MethodCard}},
		{"CI", "XOF", []models.PaymentMethod{models.MethodMobileMoney, models.MethodCard}},
		{"GN", "GNF", []models.PaymentMethod{models.MethodMobileMoney}},
		// Unknown codes fall back to EUR by card, never an error.
		{"US", "EUR", []models.PaymentMethod{models.MethodCard}},
		{"", "EUR", []models.PaymentMethod{models.MethodCard}},
		{"XX", "EUR", []models.PaymentMethod{models.MethodCard}},
	}

	for _, tc := range cases {
		t.Run(tc.country, func(t *testing.T) {
			cb := ResolveCountry(tc.country)
			if cb.Currency != tc.wantCurrency {
				t.Errorf("currency = %s, want %s", cb.Currency, tc.wantCurrency)
			}
			if len(cb.Methods) != len(tc.wantMethods) {
				t.Fatalf("methods = %v, want %v", cb.Methods, tc.wantMethods)
			}
			for i, m := range tc.wantMethods {
				if cb.Methods[i] != m {
					t.Errorf("methods[%d] = %s, want %s", i, cb.Methods[i], m)
				}
			}
		})
	}
}

func TestSupportedCurrency(t *testing.T) {
	for _, cur := range []string{"EUR", "XOF", "GNF"} {
		if !SupportedCurrency(cur) {
			t.Errorf("%s should be supported", cur)
		}
	}
	for _, cur := range []string{"USD", "eur", ""} {
		if SupportedCurrency(cur) {
			t.Errorf("%s should not be supported", cur)
		}
	}
}

func TestMethodAllowed(t *testing.T) {
	if !MethodAllowed("FR", models.MethodCard) {
		t.Error("card must be allowed in FR")
	}
	if MethodAllowed("FR", models.MethodMobileMoney) {
		t.Error("mobile money must not be allowed in FR")
	}
	if !MethodAllowed("SN", models.MethodMobileMoney) {
		t.Error("mobile money must be allowed in SN")
	}
	if !MethodAllowed("SN", models.MethodCard) {
		t.Error("card must be allowed in SN")
	}
	if MethodAllowed("GN", models.MethodCard) {
		t.Error("card must not be allowed in GN")
	}
	if MethodAllowed("ZZ", models.MethodMobileMoney) {
		t.Error("fallback countries are card only")
	}
}

func TestProviderForMethod(t *testing.T) {
	if got := ProviderForMethod(models.MethodCard); got != ProviderStripe {
		t.Errorf("card provider = %s, want %s", got, ProviderStripe)
	}
	if got := ProviderForMethod(models.MethodMobileMoney); got != ProviderCinetPay {
		t.Errorf("mobile money provider = %s, want %s", got, ProviderCinetPay)
	}
}
