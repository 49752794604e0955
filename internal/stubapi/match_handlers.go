package stubapi

import (
	"errors"

	"devmatch/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// feedLimit caps a single feed page.
const feedLimit = 50

// GetFeed handles GET /user/feed: members the viewer has no edge with, in
// either direction, excluding the viewer.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	me := accountID(c)
	db := s.db.WithContext(c.Context())

	sentTo := db.Model(&Edge{}).Select("to_id").Where("from_id = ?", me)
	receivedFrom := db.Model(&Edge{}).Select("from_id").Where("to_id = ?", me)

	var accounts []Account
	err := db.
		Where("id <> ?", me).
		Where("id NOT IN (?)", sentTo).
		Where("id NOT IN (?)", receivedFrom).
		Order("created_at").
		Limit(feedLimit).
		Find(&accounts).Error
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	users := make([]models.User, 0, len(accounts))
	for i := range accounts {
		users = append(users, accounts[i].PublicUser())
	}
	return c.JSON(fiber.Map{"data": users})
}

// GetConnections handles GET /user/connections: the other party of every
// accepted edge involving the viewer.
func (s *Server) GetConnections(c *fiber.Ctx) error {
	me := accountID(c)
	db := s.db.WithContext(c.Context())

	var edges []Edge
	err := db.
		Where("status = ?", EdgeAccepted).
		Where("from_id = ? OR to_id = ?", me, me).
		Order("updated_at").
		Find(&edges).Error
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	otherIDs := make([]string, 0, len(edges))
	for _, e := range edges {
		if e.FromID == me {
			otherIDs = append(otherIDs, e.ToID)
		} else {
			otherIDs = append(otherIDs, e.FromID)
		}
	}

	users := make([]models.User, 0, len(otherIDs))
	if len(otherIDs) > 0 {
		var accounts []Account
		if err := db.Where("id IN ?", otherIDs).Find(&accounts).Error; err != nil {
			return respondError(c, fiber.StatusInternalServerError, "Internal server error")
		}
		byID := make(map[string]Account, len(accounts))
		for _, a := range accounts {
			byID[a.ID] = a
		}
		// Preserve edge order, oldest connection first.
		for _, id := range otherIDs {
			if a, ok := byID[id]; ok {
				users = append(users, a.PublicUser())
			}
		}
	}
	return c.JSON(fiber.Map{"data": users})
}

// GetRequests handles GET /user/requests: interested edges pointed at the
// viewer, each carrying its sender's profile.
func (s *Server) GetRequests(c *fiber.Ctx) error {
	me := accountID(c)
	db := s.db.WithContext(c.Context())

	var edges []Edge
	err := db.
		Where("to_id = ? AND status = ?", me, EdgeInterested).
		Order("created_at").
		Find(&edges).Error
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	requests := make([]models.ConnectionRequest, 0, len(edges))
	for _, e := range edges {
		var sender Account
		if err := db.First(&sender, "id = ?", e.FromID).Error; err != nil {
			continue
		}
		requests = append(requests, models.ConnectionRequest{
			ID:       e.ID,
			FromUser: sender.PublicUser(),
		})
	}
	return c.JSON(fiber.Map{"data": requests})
}

// SendRequest handles POST /request/send/:status/:id, the swipe actions.
// Only interested and ignored are valid send statuses, and at most one
// edge may exist per pair.
func (s *Server) SendRequest(c *fiber.Ctx) error {
	status := c.Params("status")
	if status != EdgeInterested && status != EdgeIgnored {
		return respondError(c, fiber.StatusBadRequest, "Invalid status")
	}

	me := accountID(c)
	targetID := c.Params("id")
	if targetID == me {
		return respondError(c, fiber.StatusBadRequest, "Cannot send a request to yourself")
	}

	db := s.db.WithContext(c.Context())
	var target Account
	err := db.First(&target, "id = ?", targetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	var count int64
	err = db.Model(&Edge{}).
		Where("(from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)", me, targetID, targetID, me).
		Count(&count).Error
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	if count > 0 {
		return respondError(c, fiber.StatusConflict, "Connection request already exists")
	}

	edge := Edge{
		ID:     uuid.New().String(),
		FromID: me,
		ToID:   targetID,
		Status: status,
	}
	if err := db.Create(&edge).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"message": "Request " + status})
}

// AcceptRequest handles POST /request/review/accepted/:id.
func (s *Server) AcceptRequest(c *fiber.Ctx) error {
	return s.review(c, EdgeAccepted)
}

// RejectRequest handles POST /user/requests/:id/reject. The path differs
// from accept's; both review the same kind of edge.
func (s *Server) RejectRequest(c *fiber.Ctx) error {
	return s.review(c, EdgeRejected)
}

// review settles an interested edge addressed to the viewer. Only the
// recipient may review, and only a still-pending edge can be settled.
func (s *Server) review(c *fiber.Ctx, verdict string) error {
	me := accountID(c)
	db := s.db.WithContext(c.Context())

	var edge Edge
	err := db.First(&edge, "id = ?", c.Params("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, fiber.StatusNotFound, "Request not found")
	}
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	if edge.ToID != me {
		return respondError(c, fiber.StatusForbidden, "Request is not addressed to you")
	}
	if edge.Status != EdgeInterested {
		return respondError(c, fiber.StatusConflict, "Request already reviewed")
	}

	edge.Status = verdict
	if err := db.Save(&edge).Error; err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(fiber.Map{"message": "Request " + verdict})
}
