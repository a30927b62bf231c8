package mailsmodels

import (
	"fmt"
	"time"

	"github.com/rene1001/Cahier-de-charges/utils"
)

// ConfirmationPaiement envoie l'email de confirmation après règlement d'un
// abonnement.
func ConfirmationPaiement(email, planLibelle string, montant float64, devise string, dateFin time.Time) {
	subject := "Subject: Confirmation de votre abonnement\n"
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	body := fmt.Sprintf(`
	<html>
	<body>
		<h2>Merci pour votre confiance !</h2>
		<p>Votre paiement de <strong>%.0f %s</strong> a bien été reçu.</p>
		<p>Votre abonnement <strong>%s</strong> est actif jusqu'au <strong>%s</strong>.</p>
		<p>L'équipe Cahier de Charges</p>
	</body>
	</html>`, montant, devise, planLibelle, dateFin.Format("02/01/2006"))

	message := []byte(subject + mime + body)
	utils.SendMail(email, message)
}
