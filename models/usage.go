package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageRecord suit la consommation mensuelle d'un utilisateur: cahiers créés
// et PDF générés. Une seule ligne par (utilisateur, mois), le mois étant
// normalisé au premier jour.
type UsageRecord struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID         string    `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_usage_user_mois"`
	Mois           time.Time `json:"mois" gorm:"not null;uniqueIndex:idx_usage_user_mois"`
	NbCahiersCrees int       `json:"nbCahiersCrees" gorm:"default:0"`
	NbPdfGeneres   int       `json:"nbPdfGeneres" gorm:"default:0"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (UsageRecord) TableName() string {
	return "cahier_utilisations"
}

// MoisCourant retourne le premier jour du mois courant (UTC).
func MoisCourant() time.Time {
	return MoisDe(time.Now().UTC())
}

// MoisDe normalise une date au premier jour de son mois.
func MoisDe(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// GetOrCreateUsage retourne la ligne d'utilisation du mois, en la créant à
// zéro si besoin. L'insertion passe par ON CONFLICT DO NOTHING: deux requêtes
// concurrentes sur un même premier accès du mois ne créent qu'une ligne.
func GetOrCreateUsage(tx *gorm.DB, userID string, mois time.Time) (*UsageRecord, error) {
	usage := UsageRecord{UserID: userID, Mois: mois}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "mois"}},
		DoNothing: true,
	}).Create(&usage).Error
	if err != nil {
		return nil, err
	}
	if err := tx.First(&usage, "user_id = ? AND mois = ?", userID, mois).Error; err != nil {
		return nil, err
	}
	return &usage, nil
}

// GetOrCreateUsageForUpdate fait la même chose mais verrouille la ligne
// (SELECT ... FOR UPDATE) pour sérialiser la séquence contrôle-de-quota puis
// incrément au sein d'une transaction.
func GetOrCreateUsageForUpdate(tx *gorm.DB, userID string, mois time.Time) (*UsageRecord, error) {
	usage := UsageRecord{UserID: userID, Mois: mois}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "mois"}},
		DoNothing: true,
	}).Create(&usage).Error
	if err != nil {
		return nil, err
	}
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&usage, "user_id = ? AND mois = ?", userID, mois).Error
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

// IncrementCreations incrémente de un le compteur de cahiers du mois.
func IncrementCreations(tx *gorm.DB, userID string, mois time.Time) error {
	return tx.Model(&UsageRecord{}).
		Where("user_id = ? AND mois = ?", userID, mois).
		Update("nb_cahiers_crees", gorm.Expr("nb_cahiers_crees + 1")).Error
}

// IncrementExports incrémente de un le compteur de PDF générés du mois.
func IncrementExports(tx *gorm.DB, userID string, mois time.Time) error {
	return tx.Model(&UsageRecord{}).
		Where("user_id = ? AND mois = ?", userID, mois).
		Update("nb_pdf_generes", gorm.Expr("nb_pdf_generes + 1")).Error
}

// DecrementCreations rend son quota à un cahier supprimé, sur le mois de sa
// création (pas le mois courant). Le compteur ne descend jamais sous zéro.
func DecrementCreations(tx *gorm.DB, userID string, mois time.Time) error {
	return tx.Model(&UsageRecord{}).
		Where("user_id = ? AND mois = ? AND nb_cahiers_crees > 0", userID, mois).
		Update("nb_cahiers_crees", gorm.Expr("nb_cahiers_crees - 1")).Error
}
