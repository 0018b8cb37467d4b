package payments

import (
	"github.com/MouctarBahLk/soorocampus-sub001/app/billing"
	"github.com/MouctarBahLk/soorocampus-sub001/app/config"
	"github.com/MouctarBahLk/soorocampus-sub001/app/logger"
	"github.com/MouctarBahLk/soorocampus-sub001/app/routes/auth"

	"github.com/gofiber/fiber/v2"
)

var (
	stripeClient   *StripeClient
	cinetpayClient *CinetPayClient
	providers      map[string]Provider
	reconciler     *Reconciler
)

func SetupPaymentsRoutes(app *fiber.App) {
	cfg := config.Get()

	stripeClient = NewStripeClient(cfg.Payments.Stripe)
	cinetpayClient = NewCinetPayClient(cfg.Payments.CinetPay)
	providers = map[string]Provider{
		billing.ProviderStripe:   stripeClient,
		billing.ProviderCinetPay: cinetpayClient,
	}

	reconciler = &Reconciler{
		Store: NewDBPaymentStore(config.GetDB()),
		Verifiers: map[string]Verifier{
			billing.ProviderStripe:   stripeClient,
			billing.ProviderCinetPay: cinetpayClient,
		},
		Log:    logger.Get(),
		Notify: notifyPaymentReceived,
	}

	api := app.Group("/api/payments")

	// Provider callbacks are unauthenticated by nature.
	api.Post("/webhook/stripe", StripeWebhookAPI)
	api.Post("/webhook/cinetpay", CinetPayWebhookAPI)

	api.Post("/intent", auth.AuthMiddleware, CreateIntentAPI)
	api.Get("/split-eligibility", auth.AuthMiddleware, SplitEligibilityAPI)
	api.Get("/mine", auth.AuthMiddleware, MyPaymentsAPI)

	admin := app.Group("/api/admin/payments", auth.AuthMiddleware, auth.RequireRole(auth.RoleAdmin))
	admin.Get("/", AdminListPaymentsAPI)
	admin.Get("/export", ExportPaymentsAPI)
	admin.Post("/validate/:studentId", AdminValidatePaymentAPI)
	admin.Post("/split/:studentId", AdminSetSplitAPI)
	admin.Get("/pricing", GetPricingAPI)
	admin.Put("/pricing", UpdatePricingAPI)
}

// GetReconciler exposes the reconciler for the background sweep.
func GetReconciler() *Reconciler {
	return reconciler
}
