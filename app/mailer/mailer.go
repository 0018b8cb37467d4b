package mailer

import (
	"fmt"

	"github.com/MouctarBahLk/soorocampus-sub001/app/config"
	"github.com/MouctarBahLk/soorocampus-sub001/app/logger"

	"gopkg.in/gomail.v2"
)

// TemplateKind selects one of the transactional email templates.
type TemplateKind string

const (
	TemplateDossierSubmitted TemplateKind = "dossier_submitted"
	TemplateDossierAccepted  TemplateKind = "dossier_accepted"
	TemplateDossierRejected  TemplateKind = "dossier_rejected"
	TemplatePaymentReceived  TemplateKind = "payment_received"
)

// Send delivers one transactional email synchronously.
func Send(to string, kind TemplateKind, params map[string]string) error {
	cfg := config.Get().SMTP
	if cfg.Host == "" {
		return fmt.Errorf("smtp not configured")
	}

	subject, body := render(kind, params)

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return d.DialAndSend(m)
}

// SendAsync fires the email in the background. Delivery failures are logged
// and never block or fail the triggering workflow.
func SendAsync(to string, kind TemplateKind, params map[string]string) {
	go func() {
		if err := Send(to, kind, params); err != nil {
			log := logger.Get()
			log.Warn().Err(err).Str("template", string(kind)).Str("to", to).
				Msg("Failed to send email")
		}
	}()
}

func render(kind TemplateKind, params map[string]string) (subject, body string) {
	name := params["first_name"]
	switch kind {
	case TemplateDossierSubmitted:
		return "Votre dossier a bien été soumis",
			fmt.Sprintf("Bonjour %s,\n\nVotre dossier de candidature a bien été soumis. Notre équipe va l'examiner et vous tiendra informé.\n\nL'équipe Sooro Campus", name)
	case TemplateDossierAccepted:
		return "Votre dossier a été accepté",
			fmt.Sprintf("Bonjour %s,\n\nFélicitations ! Votre dossier de candidature a été accepté.\n\nL'équipe Sooro Campus", name)
	case TemplateDossierRejected:
		return "Votre dossier n'a pas été retenu",
			fmt.Sprintf("Bonjour %s,\n\nAprès examen, votre dossier n'a pas pu être retenu. Contactez-nous pour en savoir plus.\n\nL'équipe Sooro Campus", name)
	case TemplatePaymentReceived:
		return "Paiement reçu",
			fmt.Sprintf("Bonjour %s,\n\nNous avons bien reçu votre paiement de %s %s. Merci !\n\nL'équipe Sooro Campus", name, params["amount"], params["currency"])
	}
	return "Sooro Campus", "Bonjour,\n\nVous avez une nouvelle notification sur Sooro Campus."
}
