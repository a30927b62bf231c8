package models

import (
	"time"
)

type TypeProjet string

const (
	TypeSiteWeb      TypeProjet = "site_web"
	TypeAppMobile    TypeProjet = "app_mobile"
	TypeIA           TypeProjet = "ia"
	TypeMariage      TypeProjet = "mariage"
	TypeConstruction TypeProjet = "construction"
)

// TypesProjetValides liste les types acceptés, dans l'ordre d'affichage.
var TypesProjetValides = []TypeProjet{
	TypeSiteWeb,
	TypeAppMobile,
	TypeIA,
	TypeMariage,
	TypeConstruction,
}

func (t TypeProjet) EstValide() bool {
	for _, v := range TypesProjetValides {
		if t == v {
			return true
		}
	}
	return false
}

func (t TypeProjet) Libelle() string {
	switch t {
	case TypeSiteWeb:
		return "Site Web"
	case TypeAppMobile:
		return "Application Mobile"
	case TypeIA:
		return "Intelligence Artificielle"
	case TypeMariage:
		return "Cahier de charges Mariage"
	case TypeConstruction:
		return "Chantier de Construction"
	}
	return string(t)
}

// CahierCharges est un cahier des charges généré. Les groupes de champs
// dépendent du type de projet, les champs des autres types restent vides.
type CahierCharges struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID      string     `json:"userId" gorm:"type:uuid;index"`
	TypeProjet  TypeProjet `json:"typeProjet" gorm:"type:varchar(20);not null"`
	NomProjet   string     `json:"nomProjet" binding:"required"`
	Description string     `json:"description"`

	// Site Web / Application Mobile
	Fonctionnalites       string   `json:"fonctionnalites"`
	Technologies          string   `json:"technologies"`
	Budget                *float64 `json:"budget"`
	Delai                 string   `json:"delai"`
	PublicCible           string   `json:"publicCible"`
	ContraintesTechniques string   `json:"contraintesTechniques"`

	// Intelligence Artificielle
	TypeIA              string `json:"typeIa"`
	DonneesRequises     string `json:"donneesRequises"`
	PerformanceAttendue string `json:"performanceAttendue"`

	// Mariage
	DateMariage    *time.Time `json:"dateMariage"`
	LieuMariage    string     `json:"lieuMariage"`
	NombreInvites  *int       `json:"nombreInvites"`
	StyleMariage   string     `json:"styleMariage"`
	ServicesRequis string     `json:"servicesRequis"`

	// Construction
	TypeConstruction string `json:"typeConstruction"`
	Surface          string `json:"surface"`
	Localisation     string `json:"localisation"`
	Materiaux        string `json:"materiaux"`
	Normes           string `json:"normes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (CahierCharges) TableName() string {
	return "cahiers_charges"
}
