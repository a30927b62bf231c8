package db

import (
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rene1001/Cahier-de-charges/models"
	"github.com/rene1001/Cahier-de-charges/utils"
)

var DB *gorm.DB

func InitDB() {
	if err := godotenv.Load(); err != nil {
		utils.LogError(err, "Warning: Impossible to load the .env file")
		utils.LogInfo("The environment variable DB_URL must be defined in the system environment")
	}

	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		utils.LogError(nil, "Variable DB_URL non définie")
		panic("URL de base de données non configurée")
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: utils.GetGormLogger(),
	})
	if err != nil {
		utils.LogError(err, "Error connecting to the database")
		panic("Could not connect to the database")
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Plan{},
		&models.Subscription{},
		&models.UsageRecord{},
		&models.CahierCharges{},
		&models.TransactionLigdiCash{},
	)
	if err != nil {
		utils.LogError(err, "Error migrating database")
		panic("Could not migrate database")
	}

	if err := SeedDefaultPlans(DB); err != nil {
		utils.LogError(err, "Error seeding subscription plans")
		panic("Could not seed subscription plans")
	}

	utils.LogSuccess("Database connection successful")
}
