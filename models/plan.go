package models

import (
	"math"
	"time"
)

type PlanNom string

// Les quatre forfaits proposés. Le nom est unique en base.
const (
	PlanGratuit    PlanNom = "gratuit"
	PlanEssentiel  PlanNom = "essentiel"
	PlanProMensuel PlanNom = "pro_mensuel"
	PlanProAnnuel  PlanNom = "pro_annuel"
)

// TauxUSDXOF taux de conversion approximatif: 1 USD ≈ 600 FCFA
const TauxUSDXOF = 600

// Valeurs sentinelles des quotas:
// 0 = illimité, -1 (PDF uniquement) = prévisualisation seule, pas d'export.
type Plan struct {
	ID          string  `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Nom         PlanNom `json:"nom" gorm:"type:varchar(50);uniqueIndex;not null"`
	Description string  `json:"description"`

	// Prix en USD
	PrixMensuelUSD float64 `json:"prixMensuelUsd" gorm:"default:0"`
	PrixAnnuelUSD  float64 `json:"prixAnnuelUsd" gorm:"default:0"`

	// Limites d'utilisation mensuelles
	MaxCahiers        int `json:"maxCahiers" gorm:"default:3"`
	TelechargementPDF int `json:"telechargementPdf" gorm:"default:1"`

	// Fonctionnalités
	PartagePDF         bool `json:"partagePdf" gorm:"default:false"`
	Collaboration      bool `json:"collaboration" gorm:"default:false"`
	HistoriqueVersions bool `json:"historiqueVersions" gorm:"default:false"`
	ModelesAvances     bool `json:"modelesAvances" gorm:"default:false"`

	// Support
	SupportBasique     bool `json:"supportBasique" gorm:"default:true"`
	SupportPrioritaire bool `json:"supportPrioritaire" gorm:"default:false"`
	SupportPremium     bool `json:"supportPremium" gorm:"default:false"`

	OrdreAffichage int       `json:"ordreAffichage" gorm:"default:0"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Plan) TableName() string {
	return "plans"
}

// USDToXOF convertit un montant USD en FCFA (arrondi au franc entier,
// LigdiCash n'accepte que des montants entiers).
func USDToXOF(montantUSD float64) int {
	return int(math.Round(montantUSD * TauxUSDXOF))
}

// PrixUSD retourne le prix facturé selon la périodicité du plan.
func (p *Plan) PrixUSD() float64 {
	if p.Nom == PlanProAnnuel {
		return p.PrixAnnuelUSD
	}
	return p.PrixMensuelUSD
}

// PrixXOF retourne le montant à encaisser par LigdiCash.
func (p *Plan) PrixXOF() int {
	return USDToXOF(p.PrixUSD())
}

// DureeMois retourne la durée d'abonnement achetée: 12 mois pour le plan
// annuel, 1 mois pour tous les autres.
func (p *Plan) DureeMois() int {
	if p.Nom == PlanProAnnuel {
		return 12
	}
	return 1
}

// EstGratuit indique si le plan ne nécessite aucun paiement.
func (p *Plan) EstGratuit() bool {
	return p.PrixUSD() == 0
}
