package routes

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rene1001/Cahier-de-charges/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	log.SetOutput(io.Discard)
	utils.Logger.SetOutput(io.Discard)
	m.Run()
}

func TestSetupRouter_RoutesEnregistrees(t *testing.T) {
	r := SetupRouter()

	attendues := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health"},
		{http.MethodPost, "/register"},
		{http.MethodPost, "/login"},
		{http.MethodGet, "/plans"},
		{http.MethodGet, "/plans/:id"},
		{http.MethodPost, "/cahiers"},
		{http.MethodGet, "/cahiers"},
		{http.MethodGet, "/cahiers/verifier-limite"},
		{http.MethodGet, "/cahiers/:id"},
		{http.MethodDelete, "/cahiers/:id"},
		{http.MethodGet, "/cahiers/:id/document"},
		{http.MethodGet, "/abonnement"},
		{http.MethodPost, "/abonnement/changer"},
		{http.MethodPost, "/abonnement/annuler"},
		{http.MethodGet, "/tableau-de-bord"},
		{http.MethodPost, "/paiement/ligdicash/initier/:planId"},
		{http.MethodPost, "/paiement/ligdicash/notify"},
		{http.MethodGet, "/paiement/ligdicash/retour"},
		{http.MethodGet, "/paiement/ligdicash/annulation"},
	}

	routes := r.Routes()
	trouve := func(method, path string) bool {
		for _, route := range routes {
			if route.Method == method && route.Path == path {
				return true
			}
		}
		return false
	}

	for _, e := range attendues {
		assert.True(t, trouve(e.method, e.path), "%s %s absente", e.method, e.path)
	}
}

func TestRouteInconnue_RepondJSON(t *testing.T) {
	r := SetupRouter()

	req, _ := http.NewRequest(http.MethodGet, "/inexistante", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)

	var reponse utils.Response
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &reponse))
	assert.False(t, reponse.Success)
	assert.Equal(t, "Route inconnue", reponse.Error)
}

func TestWebhook_MethodeNonAutorisee(t *testing.T) {
	r := SetupRouter()

	req, _ := http.NewRequest(http.MethodGet, "/paiement/ligdicash/notify", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}

func TestRoutesProtegees_SansToken(t *testing.T) {
	r := SetupRouter()

	proteges := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/cahiers"},
		{http.MethodGet, "/abonnement"},
		{http.MethodGet, "/tableau-de-bord"},
		{http.MethodPost, "/paiement/ligdicash/initier/plan-1"},
	}

	for _, e := range proteges {
		req, _ := http.NewRequest(e.method, e.path, nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, "%s %s devrait exiger un token", e.method, e.path)
	}
}
