package models

import (
	"time"

	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "actif"
	SubscriptionPending  SubscriptionStatus = "en_attente"
	SubscriptionExpired  SubscriptionStatus = "expire"
	SubscriptionCanceled SubscriptionStatus = "annule"
)

// DureeEssaiGratuitJours durée de la fenêtre d'abonnement gratuit attribuée
// à l'inscription.
const DureeEssaiGratuitJours = 30

// Subscription est l'abonnement d'un utilisateur. Un seul enregistrement par
// utilisateur: les changements de forfait mettent à jour la même ligne, jamais
// de suppression physique.
type Subscription struct {
	ID                 string             `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID             string             `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	PlanID             *string            `json:"planId" gorm:"type:uuid"`
	Plan               *Plan              `json:"plan,omitempty"`
	DateDebut          time.Time          `json:"dateDebut"`
	DateFin            *time.Time         `json:"dateFin"`
	Statut             SubscriptionStatus `json:"statut" gorm:"type:varchar(20);default:'actif'"`
	PaiementRecurrent  bool               `json:"paiementRecurrent" gorm:"default:false"`
	DerniereFacture    *time.Time         `json:"derniereFacture"`
	ProchaineFacture   *time.Time         `json:"prochaineFacture"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// Today normalise une date à minuit UTC. Les fenêtres d'abonnement sont
// comparées au jour près, pas à l'heure près.
func Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EstActif indique si l'abonnement ouvre des droits aujourd'hui. Un abonnement
// actif dont la date de fin est dépassée est basculé en 'expire' et persisté
// immédiatement (auto-réparation à la lecture).
func (s *Subscription) EstActif(tx *gorm.DB) bool {
	if s.Statut != SubscriptionActive {
		return false
	}
	if s.DateFin != nil && s.DateFin.Before(Today()) {
		s.Statut = SubscriptionExpired
		if err := tx.Model(s).Update("statut", SubscriptionExpired).Error; err != nil {
			// La lecture reste cohérente même si la persistance échoue
			return false
		}
		return false
	}
	return true
}

// GetActiveSubscription retourne l'abonnement de l'utilisateur s'il est actif
// et non expiré, après auto-réparation éventuelle du statut.
func GetActiveSubscription(tx *gorm.DB, userID string) (*Subscription, error) {
	var sub Subscription
	err := tx.Preload("Plan").First(&sub, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	if !sub.EstActif(tx) {
		return nil, gorm.ErrRecordNotFound
	}
	return &sub, nil
}

// ProvisionDefaultSubscription attribue le forfait gratuit à un nouvel
// utilisateur. Appelé explicitement par le flux d'inscription.
func ProvisionDefaultSubscription(tx *gorm.DB, userID string) (*Subscription, error) {
	var planGratuit Plan
	if err := tx.First(&planGratuit, "nom = ?", PlanGratuit).Error; err != nil {
		return nil, err
	}

	debut := Today()
	fin := debut.AddDate(0, 0, DureeEssaiGratuitJours)
	sub := Subscription{
		UserID:            userID,
		PlanID:            &planGratuit.ID,
		DateDebut:         debut,
		DateFin:           &fin,
		Statut:            SubscriptionActive,
		PaiementRecurrent: false,
	}
	if err := tx.Create(&sub).Error; err != nil {
		return nil, err
	}
	sub.Plan = &planGratuit
	return &sub, nil
}

// ChangerPlan bascule l'utilisateur sur un autre forfait (cas des forfaits
// gratuits, sans passage par LigdiCash). Si le forfait demandé est déjà actif
// c'est un non-événement. Sinon la ligne unique de l'utilisateur est réécrite:
// l'ancien droit se termine aujourd'hui et la nouvelle fenêtre démarre.
// Retourne (abonnement, déjàAbonné, erreur).
func ChangerPlan(tx *gorm.DB, userID string, plan *Plan) (*Subscription, bool, error) {
	aujourdhui := Today()
	fin := aujourdhui.AddDate(0, 0, DureeEssaiGratuitJours)
	if plan.Nom == PlanProAnnuel {
		fin = aujourdhui.AddDate(1, 0, 0)
	}

	var sub Subscription
	err := tx.First(&sub, "user_id = ?", userID).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, false, err
		}
		sub = Subscription{
			UserID:            userID,
			PlanID:            &plan.ID,
			DateDebut:         aujourdhui,
			DateFin:           &fin,
			Statut:            SubscriptionActive,
			PaiementRecurrent: !plan.EstGratuit(),
		}
		if err := tx.Create(&sub).Error; err != nil {
			return nil, false, err
		}
		sub.Plan = plan
		return &sub, false, nil
	}

	if sub.EstActif(tx) && sub.PlanID != nil && *sub.PlanID == plan.ID {
		sub.Plan = plan
		return &sub, true, nil
	}

	err = tx.Model(&sub).Updates(map[string]interface{}{
		"plan_id":            plan.ID,
		"date_debut":         aujourdhui,
		"date_fin":           fin,
		"statut":             SubscriptionActive,
		"paiement_recurrent": !plan.EstGratuit(),
	}).Error
	if err != nil {
		return nil, false, err
	}
	sub.PlanID = &plan.ID
	sub.Plan = plan
	sub.DateDebut = aujourdhui
	sub.DateFin = &fin
	sub.Statut = SubscriptionActive
	sub.PaiementRecurrent = !plan.EstGratuit()
	return &sub, false, nil
}

// AnnulerRenouvellement désactive le paiement récurrent. La fenêtre en cours
// reste acquise jusqu'à sa date de fin.
func AnnulerRenouvellement(tx *gorm.DB, userID string) (*Subscription, error) {
	var sub Subscription
	if err := tx.Preload("Plan").First(&sub, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	if sub.PaiementRecurrent {
		if err := tx.Model(&sub).Update("paiement_recurrent", false).Error; err != nil {
			return nil, err
		}
		sub.PaiementRecurrent = false
	}
	return &sub, nil
}

// ApplySettlement applique un paiement confirmé: prolonge l'abonnement actif
// depuis sa date de fin courante (le renouvellement anticipé n'est pas
// pénalisé), ou repart d'aujourd'hui si l'abonnement est expiré ou absent. Le
// forfait de l'abonnement devient celui qui vient d'être payé.
func ApplySettlement(tx *gorm.DB, userID string, plan *Plan, datePaiement time.Time) (*Subscription, error) {
	dureeMois := plan.DureeMois()
	aujourdhui := Today()
	prochaine := aujourdhui.AddDate(0, dureeMois, 0)

	var sub Subscription
	err := tx.First(&sub, "user_id = ?", userID).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		fin := aujourdhui.AddDate(0, dureeMois, 0)
		sub = Subscription{
			UserID:            userID,
			PlanID:            &plan.ID,
			DateDebut:         aujourdhui,
			DateFin:           &fin,
			Statut:            SubscriptionActive,
			PaiementRecurrent: false,
			DerniereFacture:   &datePaiement,
			ProchaineFacture:  &prochaine,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return nil, err
		}
		sub.Plan = plan
		return &sub, nil
	}

	var nouvelleFin time.Time
	if sub.Statut == SubscriptionActive && sub.DateFin != nil && !sub.DateFin.Before(aujourdhui) {
		// Abonnement encore en cours: on ajoute la durée achetée à la fin
		nouvelleFin = sub.DateFin.AddDate(0, dureeMois, 0)
	} else {
		nouvelleFin = aujourdhui.AddDate(0, dureeMois, 0)
	}

	err = tx.Model(&sub).Updates(map[string]interface{}{
		"plan_id":           plan.ID,
		"date_fin":          nouvelleFin,
		"statut":            SubscriptionActive,
		"derniere_facture":  datePaiement,
		"prochaine_facture": prochaine,
	}).Error
	if err != nil {
		return nil, err
	}
	sub.PlanID = &plan.ID
	sub.Plan = plan
	sub.DateFin = &nouvelleFin
	sub.Statut = SubscriptionActive
	sub.DerniereFacture = &datePaiement
	sub.ProchaineFacture = &prochaine
	return &sub, nil
}
