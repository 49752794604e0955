package stubapi

import (
	"errors"
	"strings"
	"time"

	"devmatch/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Signup handles POST /signup: validate, persist, and log the new member
// in immediately.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.EmailID = strings.ToLower(strings.TrimSpace(req.EmailID))
	if err := req.Validate(); err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error())
	}

	var existing Account
	err := s.db.WithContext(c.Context()).Where("email_id = ?", req.EmailID).First(&existing).Error
	if err == nil {
		return respondError(c, fiber.StatusConflict, "User already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	account := Account{
		ID:           uuid.New().String(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmailID:      req.EmailID,
		PasswordHash: string(hash),
		Age:          req.Age,
		Gender:       string(req.Gender),
		About:        req.About,
		Skills:       joinSkills(req.Skills),
	}
	if err := s.db.WithContext(c.Context()).Create(&account).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	if err := s.issueToken(c, account.ID); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": account.User()})
}

// Login handles POST /login. The login form posts "email"; "emailId",
// the profile serialization of the same field, is accepted as an alias.
// Unknown email and wrong password produce the same response.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		EmailID  string `json:"emailId"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	email := req.Email
	if email == "" {
		email = req.EmailID
	}
	email = strings.ToLower(strings.TrimSpace(email))

	var account Account
	err := s.db.WithContext(c.Context()).Where("email_id = ?", email).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		return respondError(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	if err := s.issueToken(c, account.ID); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"data": account.User()})
}

// Logout handles POST /logout: revoke the session behind the cookie, then
// expire the cookie itself. A request with no valid cookie still succeeds.
func (s *Server) Logout(c *fiber.Ctx) error {
	if tokenString := c.Cookies(tokenCookieName); tokenString != "" {
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(s.cfg.JWTSecret), nil
		})
		if err == nil && token.Valid {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if jti, _ := claims["jti"].(string); jti != "" {
					_ = s.sessions.Revoke(c.Context(), jti)
				}
			}
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
