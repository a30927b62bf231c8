package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rene1001/Cahier-de-charges/db"
	"github.com/rene1001/Cahier-de-charges/models"
	"github.com/rene1001/Cahier-de-charges/utils"
)

// @Summary Create a new user
// @Description Register a new user. A free subscription is provisioned immediately.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body models.UserCreate true "User information"
// @Success 201 {object} map[string]interface{} "message: User created successfully, email: user email"
// @Failure 400 {object} map[string]interface{} "error: Invalid input"
// @Failure 409 {object} map[string]interface{} "error: Email already exists"
// @Failure 500 {object} map[string]interface{} "error: Error message"
// @Router /register [post]
func Register(c *gin.Context) {
	var input models.UserCreate

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input: " + err.Error(),
		})
		return
	}

	if !utils.ValidateEmail(input.Email) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid email format",
		})
		return
	}

	if len(input.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "The password must contain at least 6 characters",
		})
		return
	}

	hasLower := strings.ContainsAny(input.Password, "abcdefghijklmnopqrstuvwxyz")
	hasUpper := strings.ContainsAny(input.Password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	hasDigit := strings.ContainsAny(input.Password, "0123456789")

	if !hasLower || !hasUpper || !hasDigit {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "The password must contain at least one lowercase, one uppercase and one digit",
		})
		return
	}

	var existingUser models.User
	if err := db.DB.Where("email = ?", input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error": "This email is already used",
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error when checking the email existence",
		})
		return
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Erreur lors du hash du mot de passe"})
		return
	}

	user := models.User{
		Email:    input.Email,
		Password: passwordHash,
		UserName: input.UserName,
		Role:     models.UserRole,
		Enable:   true,
	}

	// L'attribution du forfait gratuit fait partie de l'inscription: si elle
	// échoue, l'utilisateur n'est pas créé non plus.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if _, err := models.ProvisionDefaultSubscription(tx, user.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		utils.LogError(err, "Erreur lors de la création de l'utilisateur dans Register")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating user: " + err.Error(),
		})
		return
	}

	utils.LogSuccessWithUser(user.ID, "Utilisateur créé avec abonnement gratuit dans Register")
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"email":   user.Email,
	})
}

// @Summary Login
// @Description Authenticate a user and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.UserLogin true "Credentials"
// @Success 200 {object} map[string]string "token: JWT"
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Invalid credentials"
// @Router /login [post]
func Login(c *gin.Context) {
	var input models.UserLogin

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input: " + err.Error(),
		})
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.Enable {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account disabled"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateJWT(user, 72)
	if err != nil {
		utils.LogErrorWithUser(user.ID, err, "Erreur lors de la génération du JWT dans Login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating token"})
		return
	}

	utils.LogSuccessWithUser(user.ID, "Connexion réussie dans Login")
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}
