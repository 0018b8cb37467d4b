package payments

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/MouctarBahLk/soorocampus-sub001/app/billing"
	"github.com/MouctarBahLk/soorocampus-sub001/app/config"
	"github.com/MouctarBahLk/soorocampus-sub001/app/database"
	"github.com/MouctarBahLk/soorocampus-sub001/app/logger"
	"github.com/MouctarBahLk/soorocampus-sub001/app/mailer"
	"github.com/MouctarBahLk/soorocampus-sub001/app/models"
	"github.com/MouctarBahLk/soorocampus-sub001/app/routes/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// CreateIntentAPI opens a payment attempt. Currency defaults from the
// student's country; the amount always comes from the pricing policy server
// side, never from the request.
func CreateIntentAPI(c *fiber.Ctx) error {
	type intentRequest struct {
		Currency string `json:"currency"`
		Method   string `json:"method"`
		Split    bool   `json:"split"`
	}
	var req intentRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request", "code": "validation_error"})
	}

	sessionUser, _ := auth.CurrentUser(c)
	user, err := database.GetUserByID(config.GetDB(), sessionUser.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error", "code": "external_service_failure"})
	}

	rules := billing.ResolveCountry(user.CountryCode)

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = rules.Currency
	}
	if !billing.SupportedCurrency(currency) {
		return c.Status(400).JSON(fiber.Map{"error": "Unsupported currency", "code": "validation_error"})
	}

	method := models.PaymentMethod(req.Method)
	if method == "" {
		method = rules.Methods[0]
	}
	if method != models.MethodCard && method != models.MethodMobileMoney {
		return c.Status(400).JSON(fiber.Map{"error": "Unsupported payment method", "code": "validation_error"})
	}
	if !billing.MethodAllowed(user.CountryCode, method) {
		return c.Status(400).JSON(fiber.Map{"error": "This payment method is not available in your country", "code": "validation_error"})
	}

	policy := billing.LoadPolicy(config.GetDB())
	amount, err := policy.PriceFor(currency)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No price configured for this currency", "code": "validation_error"})
	}
	if req.Split {
		if !policy.CanSplit(user.SplitPaymentEnabled) {
			return c.Status(403).JSON(fiber.Map{"error": "Split payment is not enabled for your account", "code": "forbidden"})
		}
		amount = amount / 2
	}

	provider, ok := providers[billing.ProviderForMethod(method)]
	if !ok {
		return c.Status(502).JSON(fiber.Map{"error": "Payment provider unavailable", "code": "external_service_failure"})
	}

	intent, err := provider.CreateIntent(c.Context(), amount, currency, map[string]string{"user_id": user.ID})
	if err != nil {
		zl := logger.Get()
		zl.Error().Err(err).Str("provider", provider.Name()).Msg("Failed to create payment intent")
		return c.Status(502).JSON(fiber.Map{"error": "Payment provider unavailable, try again", "code": "external_service_failure"})
	}

	attempt := &models.PaymentAttempt{
		ID:       intent.TransactionID,
		UserID:   user.ID,
		Amount:   amount,
		Currency: currency,
		Status:   models.PaymentPending,
		Method:   method,
		Provider: provider.Name(),
	}
	if err := database.InsertPaymentAttempt(config.GetDB(), attempt); err != nil {
		zl := logger.Get()
		zl.Error().Err(err).Str("transaction_id", attempt.ID).Msg("Failed to persist payment attempt")
		return c.Status(500).JSON(fiber.Map{"error": "Failed to record payment", "code": "external_service_failure"})
	}

	resp := fiber.Map{
		"success":        true,
		"transaction_id": intent.TransactionID,
		"amount":         amount,
		"currency":       currency,
	}
	if intent.ClientSecret != "" {
		resp["client_secret"] = intent.ClientSecret
	}
	if intent.RedirectURL != "" {
		resp["redirect_url"] = intent.RedirectURL
	}
	return c.JSON(resp)
}

// StripeWebhookAPI receives card-processor events. The response is always a
// 2xx ack: the processor retries anything else indefinitely, and internal
// failures are not an unauthenticated caller's business.
func StripeWebhookAPI(c *fiber.Ctx) error {
	body := c.Body()

	if !stripeClient.VerifySignature(body, c.Get("Stripe-Signature")) {
		zl := logger.Get()
		zl.Warn().Msg("Stripe webhook with invalid signature dropped")
		return c.JSON(fiber.Map{"received": true})
	}

	ev, err := ParseWebhookPayload(body)
	if err != nil {
		zl := logger.Get()
		zl.Warn().Err(err).Msg("Unparseable Stripe webhook payload")
		return c.JSON(fiber.Map{"received": true})
	}

	if err := reconciler.Apply(c.Context(), ev); err != nil {
		zl := logger.Get()
		zl.Error().Err(err).Str("transaction_id", ev.TransactionID).Msg("Webhook reconciliation failed")
	}
	return c.JSON(fiber.Map{"received": true})
}

// CinetPayWebhookAPI receives aggregator notifications (JSON or
// form-encoded). Same always-ack contract as the card processor.
func CinetPayWebhookAPI(c *fiber.Ctx) error {
	ev, err := ParseWebhookPayload(c.Body())
	if err != nil {
		zl := logger.Get()
		zl.Warn().Err(err).Msg("Unparseable CinetPay webhook payload")
		return c.JSON(fiber.Map{"received": true})
	}

	if err := reconciler.Apply(c.Context(), ev); err != nil {
		zl := logger.Get()
		zl.Error().Err(err).Str("transaction_id", ev.TransactionID).Msg("Webhook reconciliation failed")
	}
	return c.JSON(fiber.Map{"received": true})
}

// SplitEligibilityAPI reports whether the caller may pay in two
// installments. Any failure resolving the flags yields false, never an
// unearned entitlement.
func SplitEligibilityAPI(c *fiber.Ctx) error {
	sessionUser, _ := auth.CurrentUser(c)

	user, err := database.GetUserByID(config.GetDB(), sessionUser.ID)
	if err != nil {
		return c.JSON(fiber.Map{"success": true, "can_split": false})
	}

	policy := billing.LoadPolicy(config.GetDB())
	return c.JSON(fiber.Map{"success": true, "can_split": policy.CanSplit(user.SplitPaymentEnabled)})
}

func MyPaymentsAPI(c *fiber.Ctx) error {
	user, _ := auth.CurrentUser(c)
	attempts, err := database.GetPaymentsByUserID(config.GetDB(), user.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error", "code": "external_service_failure"})
	}
	return c.JSON(fiber.Map{"success": true, "data": attempts})
}

// AdminValidatePaymentAPI is the manual override: it writes the student's
// payment flag directly, bypassing provider verification. Mobile-money
// transfers confirmed over a side channel have to be representable in the
// same ledger, so partial/full also append an audit row tagged
// manual_validation carrying the admin id.
func AdminValidatePaymentAPI(c *fiber.Ctx) error {
	admin, _ := auth.CurrentUser(c)
	studentID := c.Params("studentId")

	type validateRequest struct {
		Status string `json:"status"`
	}
	var req validateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request", "code": "validation_error"})
	}

	status := models.PaidStatus(req.Status)
	if status != models.PaidNone && status != models.PaidPartial && status != models.PaidFull {
		return c.Status(400).JSON(fiber.Map{"error": "Status must be none, partial or full", "code": "validation_error"})
	}

	student, err := database.GetUserByID(config.GetDB(), studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(404).JSON(fiber.Map{"error": "Student not found", "code": "not_found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Database error", "code": "external_service_failure"})
	}

	if err := database.SetUserPaymentStatus(config.GetDB(), student.ID, status); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update payment status", "code": "external_service_failure"})
	}

	if status == models.PaidNone {
		zl := logger.Get()
		zl.Warn().
			Str("admin_id", admin.ID).
			Str("student_id", student.ID).
			Msg("Manual validation cleared a student's payment flag")
		return c.JSON(fiber.Map{"success": true, "status": status})
	}

	adminID := admin.ID
	audit := &models.PaymentAttempt{
		ID:          "manual_" + uuid.NewString(),
		UserID:      student.ID,
		Amount:      0,
		Currency:    billing.ResolveCountry(student.CountryCode).Currency,
		Status:      models.PaymentSucceeded,
		Method:      models.MethodManualValidation,
		Provider:    "manual",
		ValidatedBy: &adminID,
	}
	if err := database.InsertPaymentAttempt(config.GetDB(), audit); err != nil {
		zl := logger.Get()
		zl.Error().Err(err).Str("student_id", student.ID).Msg("Failed to record manual validation audit row")
	}

	zl := logger.Get()
	zl.Info().
		Str("admin_id", admin.ID).
		Str("student_id", student.ID).
		Str("status", string(status)).
		Msg("Payment manually validated")

	return c.JSON(fiber.Map{"success": true, "status": status})
}

// AdminSetSplitAPI toggles the per-user installment flag.
func AdminSetSplitAPI(c *fiber.Ctx) error {
	studentID := c.Params("studentId")

	type splitRequest struct {
		Enabled bool `json:"enabled"`
	}
	var req splitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request", "code": "validation_error"})
	}

	if err := database.SetSplitPaymentEnabled(config.GetDB(), studentID, req.Enabled); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update split flag", "code": "external_service_failure"})
	}
	return c.JSON(fiber.Map{"success": true, "enabled": req.Enabled})
}

func AdminListPaymentsAPI(c *fiber.Ctx) error {
	status := c.Query("status")
	if status != "" {
		switch models.PaymentStatus(status) {
		case models.PaymentPending, models.PaymentSucceeded, models.PaymentFailed:
		default:
			return c.Status(400).JSON(fiber.Map{"error": "Unknown status filter", "code": "validation_error"})
		}
	}

	attempts, err := database.ListPayments(config.GetDB(), status)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error", "code": "external_service_failure"})
	}
	return c.JSON(fiber.Map{"success": true, "data": attempts})
}

// ExportPaymentsAPI streams the payment ledger as an .xlsx workbook.
func ExportPaymentsAPI(c *fiber.Ctx) error {
	attempts, err := database.ListPayments(config.GetDB(), c.Query("status"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error", "code": "external_service_failure"})
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Payments"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Transaction ID", "User ID", "Amount", "Currency", "Status", "Method", "Provider", "Validated By", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, p := range attempts {
		validatedBy := ""
		if p.ValidatedBy != nil {
			validatedBy = *p.ValidatedBy
		}
		values := []interface{}{
			p.ID, p.UserID, p.Amount, p.Currency, string(p.Status),
			string(p.Method), p.Provider, validatedBy, p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to build export", "code": "external_service_failure"})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="payments.xlsx"`)
	return c.Send(buf.Bytes())
}

// GetPricingAPI returns the effective pricing policy (stored values merged
// over defaults).
func GetPricingAPI(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": billing.LoadPolicy(config.GetDB())})
}

// UpdatePricingAPI replaces the pricing policy.
func UpdatePricingAPI(c *fiber.Ctx) error {
	var policy billing.PricingPolicy
	if err := c.BodyParser(&policy); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request", "code": "validation_error"})
	}
	for cur, amount := range policy.Prices {
		if !billing.SupportedCurrency(cur) {
			return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("Unsupported currency %q", cur), "code": "validation_error"})
		}
		if amount <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "Prices must be positive", "code": "validation_error"})
		}
	}
	if err := billing.SavePolicy(config.GetDB(), policy); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save pricing", "code": "external_service_failure"})
	}
	return c.JSON(fiber.Map{"success": true, "data": policy})
}

// notifyPaymentReceived emails the student after a settlement. Lookup or
// delivery failures are logged and swallowed.
func notifyPaymentReceived(p *models.PaymentAttempt) {
	user, err := database.GetUserByID(config.GetDB(), p.UserID)
	if err != nil {
		zl := logger.Get()
		zl.Warn().Err(err).Str("user_id", p.UserID).Msg("Could not load user for payment email")
		return
	}
	mailer.SendAsync(user.Email, mailer.TemplatePaymentReceived, map[string]string{
		"first_name": user.FirstName,
		"amount":     strconv.FormatInt(p.Amount, 10),
		"currency":   p.Currency,
	})
}
