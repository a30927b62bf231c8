package models

// Action est une opération soumise à quota.
type Action string

const (
	ActionCreerCahier Action = "creer_cahier"
	ActionGenererPDF  Action = "generer_pdf"
)

// Limites du forfait gratuit, appliquées aussi quand l'utilisateur n'a aucun
// abonnement ou que le plan a disparu de la base.
const (
	FreeMaxCahiers = 3
	FreeMaxPDF     = 1
)

// QuotaIllimite est la valeur de Remaining quand aucune limite ne s'applique.
const QuotaIllimite = -1

// Decision est le résultat du contrôle de droits.
type Decision struct {
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"` // -1 = illimité
	Reason    string `json:"reason,omitempty"`
}

// CanPerform décide si une action est autorisée. Fonction pure: même entrée,
// même décision, quel que soit l'appelant (pré-vérification, création,
// export). C'est l'unique source de vérité sur les quotas.
//
// Règles, dans l'ordre:
//  1. administrateur: toujours autorisé, illimité;
//  2. pas d'abonnement actif ou pas de plan: limites du forfait gratuit;
//  3. quota 0: illimité;
//  4. quota négatif (export): interdit quelle que soit la consommation;
//  5. sinon autorisé tant que consommé < quota.
func CanPerform(action Action, sub *Subscription, usage *UsageRecord, isAdmin bool) Decision {
	if isAdmin {
		return Decision{Allowed: true, Remaining: QuotaIllimite}
	}

	quota := freeQuota(action)
	if sub != nil && sub.Plan != nil {
		switch action {
		case ActionCreerCahier:
			quota = sub.Plan.MaxCahiers
		case ActionGenererPDF:
			quota = sub.Plan.TelechargementPDF
		}
	}

	if quota == 0 {
		return Decision{Allowed: true, Remaining: QuotaIllimite}
	}
	if quota < 0 {
		return Decision{
			Allowed:   false,
			Remaining: 0,
			Reason:    "Votre forfait ne permet que la prévisualisation, pas le téléchargement",
		}
	}

	used := 0
	if usage != nil {
		switch action {
		case ActionCreerCahier:
			used = usage.NbCahiersCrees
		case ActionGenererPDF:
			used = usage.NbPdfGeneres
		}
	}

	remaining := quota - used
	if remaining < 0 {
		remaining = 0
	}
	if used >= quota {
		return Decision{
			Allowed:   false,
			Remaining: 0,
			Reason:    "Limite mensuelle atteinte pour votre forfait",
		}
	}
	return Decision{Allowed: true, Remaining: remaining}
}

func freeQuota(action Action) int {
	if action == ActionGenererPDF {
		return FreeMaxPDF
	}
	return FreeMaxCahiers
}
