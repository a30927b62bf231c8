package utils

import (
	"net/smtp"
	"os"
)

// SendMail envoie un email en best-effort: un échec est loggé mais ne doit
// jamais faire échouer l'opération appelante.
func SendMail(email string, message []byte) {
	from := os.Getenv("SMTP_FROM")
	password := os.Getenv("GOOGLE_SMTP_MDP")

	smtpHost := "smtp.gmail.com"
	smtpPort := "587"
	auth := smtp.PlainAuth("", from, password, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{email}, message); err != nil {
		LogError(err, "Erreur lors de l'envoi de l'email")
		return
	}

	LogSuccess("Email envoyé avec succès")
}
