package ligdicash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/rene1001/Cahier-de-charges/utils"
)

// VerifySignature contrôle la signature HMAC-SHA256 (hex) d'un webhook,
// calculée sur le corps brut de la requête. La comparaison est en temps
// constant.
//
// Unique dérogation: en mode test et sans secret configuré, la vérification
// est court-circuitée, avec un avertissement loggé à chaque fois. Jamais en
// production.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	if c.cfg.WebhookSecret == "" {
		if c.cfg.TestMode {
			utils.LogError(nil, "LIGDICASH_WEBHOOK_SECRET absent: signature de webhook ignorée (mode test)")
			return true
		}
		utils.LogError(nil, "LIGDICASH_WEBHOOK_SECRET absent: webhook rejeté")
		return false
	}
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
