package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rene1001/Cahier-de-charges/models"
)

// SeedDefaultPlans insère ou met à jour les quatre forfaits de référence.
// Idempotent: relancer l'application ne duplique rien et réapplique les
// valeurs administrées.
func SeedDefaultPlans(tx *gorm.DB) error {
	plans := []models.Plan{
		{
			Nom:               models.PlanGratuit,
			Description:       "Accès aux fonctionnalités de base avec des limites",
			PrixMensuelUSD:    0,
			PrixAnnuelUSD:     0,
			MaxCahiers:        3,
			TelechargementPDF: 1,
			SupportBasique:    true,
			OrdreAffichage:    1,
		},
		{
			Nom:                models.PlanEssentiel,
			Description:        "Idéal pour les professionnels indépendants",
			PrixMensuelUSD:     10,
			PrixAnnuelUSD:      100,
			MaxCahiers:         10,
			TelechargementPDF:  10,
			PartagePDF:         true,
			SupportPrioritaire: true,
			OrdreAffichage:     2,
		},
		{
			Nom:                models.PlanProMensuel,
			Description:        "Solution complète pour les professionnels exigeants",
			PrixMensuelUSD:     20,
			PrixAnnuelUSD:      200,
			MaxCahiers:         0,
			TelechargementPDF:  0,
			PartagePDF:         true,
			Collaboration:      true,
			HistoriqueVersions: true,
			ModelesAvances:     true,
			SupportPremium:     true,
			OrdreAffichage:     3,
		},
		{
			Nom:                models.PlanProAnnuel,
			Description:        "Solution complète avec économie annuelle",
			PrixMensuelUSD:     20,
			PrixAnnuelUSD:      100,
			MaxCahiers:         0,
			TelechargementPDF:  0,
			PartagePDF:         true,
			Collaboration:      true,
			HistoriqueVersions: true,
			ModelesAvances:     true,
			SupportPremium:     true,
			OrdreAffichage:     4,
		},
	}

	for i := range plans {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "nom"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"description", "prix_mensuel_usd", "prix_annuel_usd",
				"max_cahiers", "telechargement_pdf",
				"partage_pdf", "collaboration", "historique_versions", "modeles_avances",
				"support_basique", "support_prioritaire", "support_premium",
				"ordre_affichage",
			}),
		}).Create(&plans[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}
