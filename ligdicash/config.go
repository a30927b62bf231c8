package ligdicash

import (
	"os"
)

// Config porte les identifiants et URLs LigdiCash. Elle est construite une
// fois au démarrage et injectée dans le client: la logique métier ne lit
// jamais l'environnement directement.
// Documentation: https://developers.ligdicash.com/
type Config struct {
	APIKey        string
	AuthToken     string
	WebhookSecret string

	APIURL    string
	VerifyURL string
	NotifyURL string
	ReturnURL string
	CancelURL string

	Currency  string
	StoreName string
	TestMode  bool
}

const (
	defaultAPIURL    = "https://app.ligdicash.com/pay/v01/straight/sdk/"
	defaultVerifyURL = "https://app.ligdicash.com/pay/v01/straight/check_payment/"
)

// LoadConfig construit la configuration depuis les variables d'environnement.
func LoadConfig() Config {
	domain := os.Getenv("DOMAIN")
	if domain == "" {
		domain = "http://localhost:8080"
	}

	return Config{
		APIKey:        os.Getenv("LIGDICASH_API_KEY"),
		AuthToken:     os.Getenv("LIGDICASH_AUTH_TOKEN"),
		WebhookSecret: os.Getenv("LIGDICASH_WEBHOOK_SECRET"),
		APIURL:        defaultAPIURL,
		VerifyURL:     defaultVerifyURL,
		NotifyURL:     domain + "/paiement/ligdicash/notify",
		ReturnURL:     domain + "/paiement/ligdicash/retour",
		CancelURL:     domain + "/paiement/ligdicash/annulation",
		Currency:      "XOF",
		StoreName:     "Cahier de Charges App",
		TestMode:      os.Getenv("LIGDICASH_TEST_MODE") == "true",
	}
}
