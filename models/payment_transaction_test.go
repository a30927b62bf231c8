package models_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/rene1001/Cahier-de-charges/models"
	"github.com/rene1001/Cahier-de-charges/testutils"
)

func TestMarkSuccessful_AppliqueLeReglement(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	planID := "plan-pro"
	transaction := &models.TransactionLigdiCash{
		TransactionID: "tx-1",
		UserID:        "user-1",
		PlanID:        &planID,
		Plan:          &models.Plan{ID: planID, Nom: models.PlanProMensuel},
		Statut:        models.TransactionPending,
	}

	finCourante := models.Today().AddDate(0, 0, 20)

	// CAS pending -> successful
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "transactions_ligdicash" SET .* WHERE transaction_id = \$\d+ AND statut = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// Règlement sur l'abonnement
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE user_id = \$1`).
		WithArgs("user-1", 1).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns()).
			AddRow("sub-1", "user-1", planID, models.Today().AddDate(0, -1, 0), finCourante,
				string(models.SubscriptionActive), true, nil, nil, time.Now(), time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// Rattachement de l'abonnement à la transaction
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "transactions_ligdicash" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := transaction.MarkSuccessful(gormDB, "00", "paiement confirmé")

	assert.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.TransactionSuccessful, transaction.Statut)
	assert.Equal(t, "00", transaction.CodePaiement)
	assert.NotNil(t, transaction.DatePaiement)
	assert.Equal(t, "sub-1", *transaction.AbonnementID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSuccessful_DejaReglee_NeRecreditePas(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	planID := "plan-pro"
	transaction := &models.TransactionLigdiCash{
		TransactionID: "tx-1",
		UserID:        "user-1",
		PlanID:        &planID,
		Statut:        models.TransactionSuccessful,
	}

	// Aucune ligne pending: le CAS ne touche rien et on s'arrête là
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "transactions_ligdicash" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err := transaction.MarkSuccessful(gormDB, "00", "relivraison webhook")

	assert.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFailed_PuisSuccessful_ResteFailed(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	transaction := &models.TransactionLigdiCash{
		TransactionID: "tx-1",
		UserID:        "user-1",
		Statut:        models.TransactionPending,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "transactions_ligdicash" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, transaction.MarkFailed(gormDB, "refus émetteur"))
	assert.Equal(t, models.TransactionFailed, transaction.Statut)

	// Une confirmation tardive ne ressuscite pas la transaction
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "transactions_ligdicash" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err := transaction.MarkSuccessful(gormDB, "00", "confirmation tardive")

	assert.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, models.TransactionFailed, transaction.Statut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPaymentToken_RefuseLaReecriture(t *testing.T) {
	gormDB, _, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	token := "jeton-initial"
	transaction := &models.TransactionLigdiCash{TransactionID: "tx-1", PaymentToken: &token}

	err := transaction.SetPaymentToken(gormDB, "autre-jeton")

	assert.Error(t, err)
	assert.Equal(t, "jeton-initial", *transaction.PaymentToken)
}

func TestCreatePendingTransaction(t *testing.T) {
	gormDB, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "transactions_ligdicash"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	plan := &models.Plan{ID: "plan-essentiel", Nom: models.PlanEssentiel, PrixMensuelUSD: 10}
	transaction, err := models.CreatePendingTransaction(gormDB, "user-1", plan, 6000, "XOF",
		map[string]interface{}{"periode": "mensuel"})

	assert.NoError(t, err)
	assert.NotEmpty(t, transaction.TransactionID)
	assert.Equal(t, models.TransactionPending, transaction.Statut)
	assert.Equal(t, float64(6000), transaction.Montant)
	assert.NoError(t, mock.ExpectationsWereMet())
}
