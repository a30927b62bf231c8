package utils

import (
	"fmt"
	"strings"

	"github.com/rene1001/Cahier-de-charges/models"
)

// GenerateDocument produit le cahier des charges au format Markdown, prêt à
// être téléchargé. Seuls les champs renseignés du type de projet apparaissent.
func GenerateDocument(cahier *models.CahierCharges) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Cahier des charges - %s\n\n", cahier.NomProjet)
	fmt.Fprintf(&b, "**Type de projet :** %s\n\n", cahier.TypeProjet.Libelle())
	fmt.Fprintf(&b, "*Créé le %s*\n\n", cahier.CreatedAt.Format("02/01/2006"))

	if cahier.Description != "" {
		b.WriteString("## Description du projet\n\n")
		b.WriteString(cahier.Description + "\n\n")
	}

	switch cahier.TypeProjet {
	case models.TypeSiteWeb, models.TypeAppMobile:
		writeSection(&b, "Fonctionnalités attendues", cahier.Fonctionnalites)
		writeSection(&b, "Technologies souhaitées", cahier.Technologies)
		if cahier.Budget != nil {
			fmt.Fprintf(&b, "## Budget\n\n%.2f €\n\n", *cahier.Budget)
		}
		writeSection(&b, "Délai", cahier.Delai)
		writeSection(&b, "Public cible", cahier.PublicCible)
		writeSection(&b, "Contraintes techniques", cahier.ContraintesTechniques)

	case models.TypeIA:
		writeSection(&b, "Type d'intelligence artificielle", cahier.TypeIA)
		writeSection(&b, "Données requises", cahier.DonneesRequises)
		writeSection(&b, "Performance attendue", cahier.PerformanceAttendue)

	case models.TypeMariage:
		if cahier.DateMariage != nil {
			fmt.Fprintf(&b, "## Date du mariage\n\n%s\n\n", cahier.DateMariage.Format("02/01/2006"))
		}
		writeSection(&b, "Lieu", cahier.LieuMariage)
		if cahier.NombreInvites != nil {
			fmt.Fprintf(&b, "## Nombre d'invités\n\n%d\n\n", *cahier.NombreInvites)
		}
		writeSection(&b, "Style", cahier.StyleMariage)
		writeSection(&b, "Services requis", cahier.ServicesRequis)

	case models.TypeConstruction:
		writeSection(&b, "Type de construction", cahier.TypeConstruction)
		writeSection(&b, "Surface", cahier.Surface)
		writeSection(&b, "Localisation", cahier.Localisation)
		writeSection(&b, "Matériaux", cahier.Materiaux)
		writeSection(&b, "Normes à respecter", cahier.Normes)
	}

	b.WriteString("---\n\nDocument généré par Cahier de Charges App\n")

	return []byte(b.String())
}

func writeSection(b *strings.Builder, titre, contenu string) {
	if contenu == "" {
		return
	}
	fmt.Fprintf(b, "## %s\n\n%s\n\n", titre, contenu)
}
