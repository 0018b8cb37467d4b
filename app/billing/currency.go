package billing

import "github.com/MouctarBahLk/soorocampus-sub001/app/models"

// Provider tags for payment routing.
const (
	ProviderStripe   = "stripe"
	ProviderCinetPay = "cinetpay"
)

// CountryBilling describes how students from one country pay: their
// currency and which payment methods are open to them.
type CountryBilling struct {
	Currency string
	Methods  []models.PaymentMethod
}

// countryTable maps ISO 3166-1 alpha-2 country codes to billing rules. The
// lookup is total: any code not listed falls back to EUR by card.
var countryTable = map[string]CountryBilling{
	// Euro zone, card only
	"FR": {Currency: "EUR", Methods: []models.PaymentMethod{models.MethodCard}},
	"BE": {Currency: "EUR", Methods: []models.PaymentMethod{models.MethodCard}},
	"DE": {Currency: "EUR", Methods: []models.PaymentMethod{models.MethodCard}},
	"IT": {Currency: "EUR", Methods: []models.PaymentMethod{models.MethodCard}},
	"ES": {Currency: "EUR", Methods: []models.PaymentMethod{models.MethodCard}},
	"PT": {Currency: "EUR", Methods: []models.PaymentMethod{models.MethodCard}},
	"NL": {Currency: "EUR", Methods: []models.PaymentMethod{models.MethodCard}},
	"LU": {Currency: "EUR", Methods: []models.PaymentMethod{models.MethodCard}},

	// West African CFA franc zone, mobile money first, card accepted
	"SN": {Currency: "XOF", Methods: []models.PaymentMethod{models.MethodMobileMoney, models.MethodCard}},
	"CI": {Currency: "XOF", Methods: []models.PaymentMethod{models.MethodMobileMoney, models.MethodCard}},
	"BJ": {Currency: "XOF", Methods: []models.PaymentMethod{models.MethodMobileMoney, models.MethodCard}},
	"TG": {Currency: "XOF", Methods: []models.PaymentMethod{models.MethodMobileMoney, models.MethodCard}},
	"BF": {Currency: "XOF", Methods: []models.PaymentMethod{models.MethodMobileMoney, models.MethodCard}},
	"ML": {Currency: "XOF", Methods: []models.PaymentMethod{models.MethodMobileMoney, models.MethodCard}},
	"NE": {Currency: "XOF", Methods: []models.PaymentMethod{models.MethodMobileMoney, models.MethodCard}},

	// Guinea, mobile money only
	"GN": {Currency: "GNF", Methods: []models.PaymentMethod{models.MethodMobileMoney}},
}

var fallbackBilling = CountryBilling{
	Currency: "EUR",
	Methods:  []models.PaymentMethod{models.MethodCard},
}

// ResolveCountry returns the billing rules for a country code, falling back
// to EUR/card for any unknown code.
func ResolveCountry(countryCode string) CountryBilling {
	if cb, ok := countryTable[countryCode]; ok {
		return cb
	}
	return fallbackBilling
}

// SupportedCurrency reports whether the given code is one the platform bills in.
func SupportedCurrency(currency string) bool {
	switch currency {
	case "EUR", "XOF", "GNF":
		return true
	}
	return false
}

// MethodAllowed reports whether the country's rules permit the method.
func MethodAllowed(countryCode string, method models.PaymentMethod) bool {
	for _, m := range ResolveCountry(countryCode).Methods {
		if m == method {
			return true
		}
	}
	return false
}

// ProviderForMethod selects which processor handles a payment method.
// Cards go through the card-network processor, mobile money through the
// aggregator.
func ProviderForMethod(method models.PaymentMethod) string {
	if method == models.MethodMobileMoney {
		return ProviderCinetPay
	}
	return ProviderStripe
}
