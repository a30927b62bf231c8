package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionStatus string

// Cycle de vie d'une transaction. Les transitions ne reviennent jamais en
// arrière: une transaction quittant 'pending' ne peut plus y retourner.
const (
	TransactionPending    TransactionStatus = "pending"
	TransactionSuccessful TransactionStatus = "successful"
	TransactionFailed     TransactionStatus = "failed"
	TransactionExpired    TransactionStatus = "expired"
	TransactionCanceled   TransactionStatus = "canceled"
)

// TransactionLigdiCash est une tentative de paiement d'un forfait. Les
// transactions ne sont jamais supprimées (piste d'audit). PaymentToken est
// immuable une fois attribué par LigdiCash.
type TransactionLigdiCash struct {
	TransactionID string  `json:"transactionId" gorm:"primaryKey;type:uuid"`
	PaymentToken  *string `json:"paymentToken" gorm:"uniqueIndex"`

	UserID       string  `json:"userId" gorm:"type:uuid;not null;index:idx_transaction_user_statut"`
	PlanID       *string `json:"planId" gorm:"type:uuid"`
	Plan         *Plan   `json:"plan,omitempty"`
	AbonnementID *string `json:"abonnementId" gorm:"type:uuid"`

	Montant float64           `json:"montant"`
	Devise  string            `json:"devise" gorm:"type:varchar(3);default:'XOF'"`
	Statut  TransactionStatus `json:"statut" gorm:"type:varchar(20);default:'pending';index:idx_transaction_user_statut"`

	CodePaiement string                 `json:"codePaiement"`
	Message      string                 `json:"message"`
	Metadata     map[string]interface{} `json:"metadata" gorm:"serializer:json"`

	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DatePaiement *time.Time `json:"datePaiement"`
}

func (TransactionLigdiCash) TableName() string {
	return "transactions_ligdicash"
}

// CreatePendingTransaction enregistre une tentative de paiement avant l'appel
// à LigdiCash. L'identifiant généré sert de référence externe (external_id).
func CreatePendingTransaction(tx *gorm.DB, userID string, plan *Plan, montant float64, devise string, metadata map[string]interface{}) (*TransactionLigdiCash, error) {
	transaction := TransactionLigdiCash{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		PlanID:        &plan.ID,
		Montant:       montant,
		Devise:        devise,
		Statut:        TransactionPending,
		Metadata:      metadata,
	}
	if err := tx.Create(&transaction).Error; err != nil {
		return nil, err
	}
	transaction.Plan = plan
	return &transaction, nil
}

// SetPaymentToken attache le token retourné par LigdiCash. Refusé si un token
// est déjà présent.
func (t *TransactionLigdiCash) SetPaymentToken(tx *gorm.DB, token string) error {
	if t.PaymentToken != nil {
		return gorm.ErrInvalidData
	}
	if err := tx.Model(t).Update("payment_token", token).Error; err != nil {
		return err
	}
	t.PaymentToken = &token
	return nil
}

// MarkSuccessful confirme le paiement et applique le règlement à l'abonnement.
// La transition pending→successful est un compare-and-set SQL: si une autre
// requête (webhook et retour navigateur arrivent souvent tous les deux) a déjà
// réglé la transaction, aucune ligne n'est affectée et on ne crédite pas une
// deuxième fois. Retourne true si le règlement a été appliqué par cet appel.
func (t *TransactionLigdiCash) MarkSuccessful(tx *gorm.DB, codePaiement, message string) (bool, error) {
	datePaiement := time.Now().UTC()
	result := tx.Model(&TransactionLigdiCash{}).
		Where("transaction_id = ? AND statut = ?", t.TransactionID, TransactionPending).
		Updates(map[string]interface{}{
			"statut":        TransactionSuccessful,
			"code_paiement": codePaiement,
			"message":       message,
			"date_paiement": datePaiement,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		// Déjà réglée (ou échouée/annulée entre temps): ne rien re-créditer
		return false, nil
	}

	t.Statut = TransactionSuccessful
	t.CodePaiement = codePaiement
	t.Message = message
	t.DatePaiement = &datePaiement

	if t.PlanID == nil {
		return true, nil
	}
	plan := t.Plan
	if plan == nil {
		plan = &Plan{}
		if err := tx.First(plan, "id = ?", *t.PlanID).Error; err != nil {
			return true, err
		}
		t.Plan = plan
	}

	sub, err := ApplySettlement(tx, t.UserID, plan, datePaiement)
	if err != nil {
		return true, err
	}
	if err := tx.Model(t).Update("abonnement_id", sub.ID).Error; err != nil {
		return true, err
	}
	t.AbonnementID = &sub.ID
	return true, nil
}

// MarkFailed consigne un échec de paiement. Comme pour MarkSuccessful, seule
// une transaction encore pending peut être marquée.
func (t *TransactionLigdiCash) MarkFailed(tx *gorm.DB, message string) error {
	return t.finalize(tx, TransactionFailed, message)
}

// MarkCanceled consigne une annulation par l'utilisateur.
func (t *TransactionLigdiCash) MarkCanceled(tx *gorm.DB, message string) error {
	return t.finalize(tx, TransactionCanceled, message)
}

func (t *TransactionLigdiCash) finalize(tx *gorm.DB, statut TransactionStatus, message string) error {
	result := tx.Model(&TransactionLigdiCash{}).
		Where("transaction_id = ? AND statut = ?", t.TransactionID, TransactionPending).
		Updates(map[string]interface{}{
			"statut":  statut,
			"message": message,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		t.Statut = statut
		t.Message = message
	}
	return nil
}

// FindTransactionByToken retrouve la transaction visée par une notification.
func FindTransactionByToken(tx *gorm.DB, token string) (*TransactionLigdiCash, error) {
	var transaction TransactionLigdiCash
	err := tx.Preload("Plan").First(&transaction, "payment_token = ?", token).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}
