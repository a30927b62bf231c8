package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/rene1001/Cahier-de-charges/db"
	"github.com/rene1001/Cahier-de-charges/handlers/payments"
	"github.com/rene1001/Cahier-de-charges/ligdicash"
	"github.com/rene1001/Cahier-de-charges/routes"
)

// @title API Cahier de Charges
// @version 1.0
// @description API pour la génération de cahiers des charges avec abonnements
// @host localhost:8080
// @BasePath /
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Entrez le JWT avec le préfixe Bearer: Bearer <JWT>
func main() {

	gin.SetMode(gin.ReleaseMode)

	// Initialiser la base de données (et les forfaits de référence)
	db.InitDB()

	// Construire le client LigdiCash une fois, avec sa configuration explicite
	payments.Init(ligdicash.NewClient(ligdicash.LoadConfig()))

	r := routes.SetupRouter()

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Erreur lors du démarrage du serveur:", err)
	}
}
