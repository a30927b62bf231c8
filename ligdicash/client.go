package ligdicash

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Statuts retournés par VerifyPayment. Les trois premiers viennent du code de
// réponse LigdiCash (00/01/02), les autres qualifient l'échec de l'appel
// lui-même: ils ne sont jamais confondus.
const (
	StatusSuccess         = "SUCCESS"
	StatusPending         = "PENDING"
	StatusFailed          = "FAILED"
	StatusUnknown         = "UNKNOWN"
	StatusHTTPError       = "HTTP_ERROR"
	StatusConnectionError = "CONNECTION_ERROR"
)

// Client parle à l'API LigdiCash. Les timeouts sont portés par les clients
// HTTP: un paiement qui n'aboutit pas retourne une erreur typée, il ne bloque
// jamais la requête indéfiniment.
type Client struct {
	cfg         Config
	payClient   *http.Client
	checkClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:         cfg,
		payClient:   &http.Client{Timeout: 30 * time.Second},
		checkClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Customer décrit le payeur transmis à LigdiCash.
type Customer struct {
	Name  string
	Email string
	Phone string
}

// InitiationResult est le résultat d'une initialisation de paiement.
type InitiationResult struct {
	Success      bool
	PaymentToken string
	PaymentURL   string
	Message      string
}

// VerificationResult est le résultat d'une vérification de paiement.
type VerificationResult struct {
	Success bool
	Status  string
	Message string
}

type invoiceItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int    `json:"unit_price"`
	TotalPrice  int    `json:"total_price"`
}

type invoice struct {
	Items               []invoiceItem `json:"items"`
	TotalAmount         int           `json:"total_amount"`
	Devise              string        `json:"devise"`
	Description         string        `json:"description"`
	Customer            string        `json:"customer"`
	CustomerEmail       string        `json:"customer_email"`
	CustomerPhoneNumber string        `json:"customer_phone_number"`
	ExternalID          string        `json:"external_id"`
	OTP                 string        `json:"otp"`
}

type store struct {
	Name       string `json:"name"`
	WebsiteURL string `json:"website_url"`
}

type actions struct {
	CancelURL   string `json:"cancel_url"`
	ReturnURL   string `json:"return_url"`
	CallbackURL string `json:"callback_url"`
}

type commande struct {
	Invoice invoice `json:"invoice"`
	Store   store   `json:"store"`
	Actions actions `json:"actions"`
}

type paymentRequest struct {
	Commande commande `json:"commande"`
}

type apiResponse struct {
	ResponseCode string `json:"response_code"`
	ResponseText string `json:"response_text"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	Token        string `json:"token"`
	PaymentToken string `json:"payment_token"`
	PaymentURL   string `json:"payment_url"`
}

// InitiatePayment crée une facture LigdiCash et retourne le token et l'URL de
// paiement. Montant en XOF entiers. Timeout, statut HTTP non-2xx, réponse
// illisible et refus applicatif sont des échecs distincts, jamais fusionnés.
func (c *Client) InitiatePayment(montant int, transactionID, description string, customer Customer) InitiationResult {
	otp := transactionID
	if len(otp) >= 6 {
		otp = otp[:6]
	} else {
		otp = strings.Repeat("0", 6-len(otp)) + otp
	}

	payload := paymentRequest{
		Commande: commande{
			Invoice: invoice{
				Items: []invoiceItem{{
					Name:        description,
					Description: description,
					Quantity:    1,
					UnitPrice:   montant,
					TotalPrice:  montant,
				}},
				TotalAmount:         montant,
				Devise:              c.cfg.Currency,
				Description:         description,
				Customer:            customer.Name,
				CustomerEmail:       customer.Email,
				CustomerPhoneNumber: customer.Phone,
				ExternalID:          transactionID,
				OTP:                 otp,
			},
			Store: store{
				Name:       c.cfg.StoreName,
				WebsiteURL: c.cfg.ReturnURL,
			},
			Actions: actions{
				CancelURL:   c.cfg.CancelURL,
				ReturnURL:   c.cfg.ReturnURL,
				CallbackURL: c.cfg.NotifyURL,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return InitiationResult{Message: "Erreur de préparation de la requête: " + err.Error()}
	}

	req, err := http.NewRequest(http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return InitiationResult{Message: "Erreur de préparation de la requête: " + err.Error()}
	}
	c.setHeaders(req)

	resp, err := c.payClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return InitiationResult{Message: "Timeout de la connexion à LigdiCash (30 secondes)"}
		}
		return InitiationResult{Message: "Erreur de connexion à LigdiCash: " + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return InitiationResult{Message: fmt.Sprintf("Erreur HTTP %d", resp.StatusCode)}
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return InitiationResult{Message: "Erreur de format de réponse: " + err.Error()}
	}

	if result.ResponseCode == "00" || result.Status == "success" {
		token := result.Token
		if token == "" {
			token = result.PaymentToken
		}
		url := result.ResponseText
		if result.PaymentURL != "" {
			url = result.PaymentURL
		}
		if token != "" && url != "" {
			return InitiationResult{
				Success:      true,
				PaymentToken: token,
				PaymentURL:   url,
				Message:      "Paiement initialisé avec succès",
			}
		}
	}

	msg := result.ResponseText
	if msg == "" {
		msg = result.Message
	}
	if msg == "" {
		msg = "Erreur inconnue"
	}
	return InitiationResult{Message: "Erreur LigdiCash: " + msg}
}

// VerifyPayment interroge LigdiCash sur l'état réel d'un paiement. C'est cette
// réponse, jamais le contenu du webhook, qui fait foi avant de régler une
// transaction.
func (c *Client) VerifyPayment(paymentToken string) VerificationResult {
	body, err := json.Marshal(map[string]string{"token": paymentToken})
	if err != nil {
		return VerificationResult{Status: StatusConnectionError, Message: err.Error()}
	}

	req, err := http.NewRequest(http.MethodPost, c.cfg.VerifyURL, bytes.NewReader(body))
	if err != nil {
		return VerificationResult{Status: StatusConnectionError, Message: err.Error()}
	}
	c.setHeaders(req)

	resp, err := c.checkClient.Do(req)
	if err != nil {
		return VerificationResult{Status: StatusConnectionError, Message: "Erreur de connexion: " + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return VerificationResult{
			Status:  StatusHTTPError,
			Message: fmt.Sprintf("Erreur HTTP %d: %s", resp.StatusCode, string(raw)),
		}
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return VerificationResult{Status: StatusHTTPError, Message: "Réponse illisible: " + err.Error()}
	}

	switch result.ResponseCode {
	case "00":
		return VerificationResult{Success: true, Status: StatusSuccess, Message: "Paiement confirmé avec succès"}
	case "01":
		return VerificationResult{Status: StatusPending, Message: "Paiement en attente"}
	case "02":
		return VerificationResult{Status: StatusFailed, Message: "Paiement échoué"}
	default:
		msg := result.ResponseText
		if msg == "" {
			msg = "Statut inconnu"
		}
		return VerificationResult{Status: StatusUnknown, Message: msg}
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Apikey", c.cfg.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	req.Header.Set("User-Agent", "CahierDeCharges/1.0")
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
