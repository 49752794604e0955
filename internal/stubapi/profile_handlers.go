package stubapi

import (
	"errors"

	"devmatch/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProfileView handles GET /profile/view, returning the viewer's own
// profile as a bare object (no envelope).
func (s *Server) ProfileView(c *fiber.Ctx) error {
	var account Account
	err := s.db.WithContext(c.Context()).First(&account, "id = ?", accountID(c)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, fiber.StatusUnauthorized, "Account no longer exists")
	}
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(account.User())
}

// ProfileEdit handles PATCH /profile/edit. Absent fields are left
// untouched; the merged profile is validated before persisting and is
// returned as a bare object.
func (s *Server) ProfileEdit(c *fiber.Ctx) error {
	var patch models.ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	var account Account
	err := s.db.WithContext(c.Context()).First(&account, "id = ?", accountID(c)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, fiber.StatusUnauthorized, "Account no longer exists")
	}
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	if patch.FirstName != nil {
		account.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		account.LastName = *patch.LastName
	}
	if patch.Age != nil {
		account.Age = *patch.Age
	}
	if patch.Gender != nil {
		account.Gender = string(*patch.Gender)
	}
	if patch.PhotoURL != nil {
		account.PhotoURL = *patch.PhotoURL
	}
	if patch.About != nil {
		account.About = *patch.About
	}
	if patch.Skills != nil {
		account.Skills = joinSkills(*patch.Skills)
	}

	merged := account.User()
	if err := merged.Validate(); err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := s.db.WithContext(c.Context()).Save(&account).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(account.User())
}
