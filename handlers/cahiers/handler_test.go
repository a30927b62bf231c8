package cahiers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/rene1001/Cahier-de-charges/models"
	"github.com/rene1001/Cahier-de-charges/testutils"
	"github.com/rene1001/Cahier-de-charges/utils"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()
	log.SetOutput(io.Discard)
	utils.Logger.SetOutput(io.Discard)
	m.Run()
}

func cahierRouter(role models.Role) *gin.Engine {
	r := testutils.SetupTestRouter()
	auth := func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("role", string(role))
	}
	g := r.Group("/cahiers", auth)
	g.POST("", CreateCahier)
	g.GET("", GetMyCahiers)
	g.GET("/verifier-limite", VerifierLimite)
	g.GET("/:id", GetCahier)
	g.DELETE("/:id", DeleteCahier)
	g.GET("/:id/document", ExportCahier)
	return r
}

func cahierColumns() []string {
	return []string{"id", "user_id", "type_projet", "nom_projet", "description", "created_at", "updated_at"}
}

func usageColumns() []string {
	return []string{"id", "user_id", "mois", "nb_cahiers_crees", "nb_pdf_generes", "created_at", "updated_at"}
}

func subscriptionColumns() []string {
	return []string{
		"id", "user_id", "plan_id", "date_debut", "date_fin", "statut",
		"paiement_recurrent", "derniere_facture", "prochaine_facture",
		"created_at", "updated_at",
	}
}

func planColumns() []string {
	return []string{"id", "nom", "prix_mensuel_usd", "prix_annuel_usd", "max_cahiers", "telechargement_pdf"}
}

func corpsCahier() []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"typeProjet":  "site_web",
		"nomProjet":   "Site vitrine",
		"description": "Un site vitrine avec formulaire de contact",
	})
	return body
}

func TestCreateCahier_Succes(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mois := models.MoisCourant()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE user_id = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery(`INSERT INTO "cahier_utilisations" .* ON CONFLICT .* DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "cahier_utilisations" WHERE user_id = \$1 AND mois = \$2 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(usageColumns()).
			AddRow("usage-1", "user-1", mois, 0, 0, time.Now(), time.Now()))
	mock.ExpectQuery(`INSERT INTO "cahiers_charges"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cahier-1"))
	mock.ExpectExec(`UPDATE "cahier_utilisations" SET .*nb_cahiers_crees \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req, _ := http.NewRequest(http.MethodPost, "/cahiers", bytes.NewReader(corpsCahier()))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	cahierRouter(models.UserRole).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)
	var cahier models.CahierCharges
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cahier))
	assert.Equal(t, "user-1", cahier.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCahier_QuotaGratuitAtteint(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mois := models.MoisCourant()

	// Trois cahiers déjà créés ce mois sans abonnement: le quatrième est refusé
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE user_id = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery(`INSERT INTO "cahier_utilisations" .* ON CONFLICT .* DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "cahier_utilisations" WHERE user_id = \$1 AND mois = \$2 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(usageColumns()).
			AddRow("usage-1", "user-1", mois, 3, 0, time.Now(), time.Now()))
	mock.ExpectRollback()

	req, _ := http.NewRequest(http.MethodPost, "/cahiers", bytes.NewReader(corpsCahier()))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	cahierRouter(models.UserRole).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	var reponse map[string]interface{}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &reponse))
	assert.Equal(t, float64(0), reponse["remaining"])
	assert.NotEmpty(t, reponse["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCahier_AdminSansLimite(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mois := models.MoisCourant()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE user_id = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery(`INSERT INTO "cahier_utilisations" .* ON CONFLICT .* DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "cahier_utilisations" WHERE user_id = \$1 AND mois = \$2 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(usageColumns()).
			AddRow("usage-1", "user-1", mois, 250, 0, time.Now(), time.Now()))
	mock.ExpectQuery(`INSERT INTO "cahiers_charges"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cahier-1"))
	mock.ExpectExec(`UPDATE "cahier_utilisations" SET .*nb_cahiers_crees \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req, _ := http.NewRequest(http.MethodPost, "/cahiers", bytes.NewReader(corpsCahier()))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	cahierRouter(models.AdminRole).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCahier_TypeProjetInvalide(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	body, _ := json.Marshal(map[string]interface{}{
		"typeProjet": "jardinage",
		"nomProjet":  "Potager",
	})
	req, _ := http.NewRequest(http.MethodPost, "/cahiers", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	cahierRouter(models.UserRole).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMyCahiers(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "cahiers_charges" WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(cahierColumns()).
			AddRow("cahier-1", "user-1", "site_web", "Site vitrine", "", time.Now(), time.Now()).
			AddRow("cahier-2", "user-1", "mariage", "Mariage de juin", "", time.Now(), time.Now()))

	req, _ := http.NewRequest(http.MethodGet, "/cahiers", nil)
	resp := httptest.NewRecorder()
	cahierRouter(models.UserRole).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	var cahiers []models.CahierCharges
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cahiers))
	assert.Len(t, cahiers, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCahier_Introuvable(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "cahiers_charges" WHERE id = \$1 AND user_id = \$2`).
		WillReturnError(gorm.ErrRecordNotFound)

	req, _ := http.NewRequest(http.MethodGet, "/cahiers/inexistant", nil)
	resp := httptest.NewRecorder()
	cahierRouter(models.UserRole).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCahier_RendLeQuotaDuMoisDeCreation(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	// Cahier créé deux mois plus tôt: le décrément vise ce mois-là
	creation := models.Today().AddDate(0, -2, 0)

	mock.ExpectQuery(`SELECT \* FROM "cahiers_charges" WHERE id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows(cahierColumns()).
			AddRow("cahier-1", "user-1", "site_web", "Site vitrine", "", creation, creation))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "cahiers_charges"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "cahier_utilisations" SET .*nb_cahiers_crees - 1.*`).
		WithArgs("user-1", models.MoisDe(creation)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req, _ := http.NewRequest(http.MethodDelete, "/cahiers/cahier-1", nil)
	resp := httptest.NewRecorder()
	cahierRouter(models.UserRole).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifierLimite(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mois := models.MoisCourant()

	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE user_id = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "cahier_utilisations" .* ON CONFLICT .* DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "cahier_utilisations" WHERE user_id = \$1 AND mois = \$2`).
		WillReturnRows(sqlmock.NewRows(usageColumns()).
			AddRow("usage-1", "user-1", mois, 1, 0, time.Now(), time.Now()))

	req, _ := http.NewRequest(http.MethodGet, "/cahiers/verifier-limite", nil)
	resp := httptest.NewRecorder()
	cahierRouter(models.UserRole).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	var decision models.Decision
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &decision))
	assert.True(t, decision.Allowed)
	assert.Equal(t, 2, decision.Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportCahier_Succes(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mois := models.MoisCourant()
	fin := models.Today().AddDate(0, 0, 20)

	mock.ExpectQuery(`SELECT \* FROM "cahiers_charges" WHERE id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows(cahierColumns()).
			AddRow("cahier-1", "user-1", "site_web", "Site vitrine", "Un site vitrine", time.Now(), time.Now()))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns()).
			AddRow("sub-1", "user-1", "plan-essentiel", models.Today().AddDate(0, 0, -10), fin,
				string(models.SubscriptionActive), true, nil, nil, time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT \* FROM "plans" WHERE "plans"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows(planColumns()).
			AddRow("plan-essentiel", string(models.PlanEssentiel), 10.0, 100.0, 10, 10))
	mock.ExpectQuery(`INSERT INTO "cahier_utilisations" .* ON CONFLICT .* DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "cahier_utilisations" WHERE user_id = \$1 AND mois = \$2 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(usageColumns()).
			AddRow("usage-1", "user-1", mois, 5, 2, time.Now(), time.Now()))
	mock.ExpectExec(`UPDATE "cahier_utilisations" SET .*nb_pdf_generes \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req, _ := http.NewRequest(http.MethodGet, "/cahiers/cahier-1/document", nil)
	resp := httptest.NewRecorder()
	cahierRouter(models.UserRole).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "cahier_charges_Site vitrine.md")
	assert.Contains(t, resp.Body.String(), "Site vitrine")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportCahier_PrevisualisationSeule(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mois := models.MoisCourant()
	fin := models.Today().AddDate(0, 0, 20)

	// Quota d'export négatif: prévisualisation seule, refus même sans
	// consommation ce mois
	mock.ExpectQuery(`SELECT \* FROM "cahiers_charges" WHERE id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows(cahierColumns()).
			AddRow("cahier-1", "user-1", "site_web", "Site vitrine", "", time.Now(), time.Now()))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns()).
			AddRow("sub-1", "user-1", "plan-decouverte", models.Today().AddDate(0, 0, -10), fin,
				string(models.SubscriptionActive), false, nil, nil, time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT \* FROM "plans" WHERE "plans"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows(planColumns()).
			AddRow("plan-decouverte", string(models.PlanEssentiel), 5.0, 50.0, 5, -1))
	mock.ExpectQuery(`INSERT INTO "cahier_utilisations" .* ON CONFLICT .* DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "cahier_utilisations" WHERE user_id = \$1 AND mois = \$2 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(usageColumns()).
			AddRow("usage-1", "user-1", mois, 0, 0, time.Now(), time.Now()))
	mock.ExpectRollback()

	req, _ := http.NewRequest(http.MethodGet, "/cahiers/cahier-1/document", nil)
	resp := httptest.NewRecorder()
	cahierRouter(models.UserRole).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
