// Package stubapi is a self-contained rendition of the matching API the
// client talks to. It backs local development and the end-to-end tests
// with real persistence and real cookie auth behind the same wire
// contract.
package stubapi

import (
	"errors"
	"fmt"
	"time"

	"devmatch/internal/config"
	"devmatch/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// tokenCookieName matches the cookie the client captures and replays.
const tokenCookieName = "token"

// tokenTTL bounds both the JWT and its server-side session.
const tokenTTL = 7 * 24 * time.Hour

// Server holds the stub's dependencies and provides its handlers.
type Server struct {
	cfg      *config.Config
	db       *gorm.DB
	sessions *Sessions
	log      *observability.Logger
	prom     *fiberprometheus.FiberPrometheus
}

// NewServer creates a Server, establishing its own database and Redis
// connections from the configuration.
func NewServer(cfg *config.Config, log *observability.Logger) (*Server, error) {
	db, err := Connect(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	}

	srv := newServer(cfg, db, redisClient, log)
	srv.prom = fiberprometheus.New("devmatch-stub")
	return srv, nil
}

// NewServerWithDeps creates a Server over already-initialized dependencies.
// Tests use this with an in-memory database and miniredis; no metrics
// collectors are registered so instances can be created repeatedly.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *observability.Logger) *Server {
	return newServer(cfg, db, redisClient, log)
}

func newServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *observability.Logger) *Server {
	if log == nil {
		log = observability.GlobalLogger
	}
	return &Server{
		cfg:      cfg,
		db:       db,
		sessions: NewSessions(redisClient),
		log:      log,
	}
}

// App builds the Fiber application with middleware and routes applied.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	if s.prom != nil {
		s.prom.RegisterAt(app, "/metrics")
		app.Use(s.prom.Middleware)
	}
}

// SetupRoutes configures all routes. Paths and response shapes mirror the
// contract the client adapter is written against.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)

	app.Post("/signup", s.Signup)
	app.Post("/login", s.Login)
	app.Post("/logout", s.Logout)

	protected := app.Group("", s.AuthRequired())
	protected.Get("/profile/view", s.ProfileView)
	protected.Patch("/profile/edit", s.ProfileEdit)

	protected.Get("/user/feed", s.GetFeed)
	protected.Get("/user/connections", s.GetConnections)
	protected.Get("/user/requests", s.GetRequests)
	protected.Post("/user/requests/:id/reject", s.RejectRequest)

	protected.Post("/request/send/:status/:id", s.SendRequest)
	protected.Post("/request/review/accepted/:id", s.AcceptRequest)
}

// HealthCheck reports liveness and database reachability.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Context()) != nil {
		status = "degraded"
	}
	return c.JSON(fiber.Map{"status": status})
}

// AuthRequired gates a route on a valid token cookie backed by a live
// session. Every failure mode is a plain 401; the client treats them
// uniformly.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(tokenCookieName)
		if tokenString == "" {
			return respondError(c, fiber.StatusUnauthorized, "Authentication required")
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return respondError(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return respondError(c, fiber.StatusUnauthorized, "Invalid token claims")
		}
		sub, _ := claims["sub"].(string)
		jti, _ := claims["jti"].(string)
		if sub == "" || jti == "" {
			return respondError(c, fiber.StatusUnauthorized, "Invalid token claims")
		}

		// Logout revokes the session; the token alone is not enough.
		accountID, err := s.sessions.Get(c.Context(), jti)
		if err != nil {
			return respondError(c, fiber.StatusUnauthorized, "Session expired, please log in again")
		}
		if accountID == "" {
			accountID = sub
		}
		if accountID != sub {
			return respondError(c, fiber.StatusUnauthorized, "Session mismatch")
		}

		c.Locals("accountID", accountID)
		return c.Next()
	}
}

// issueToken mints a signed token for the account, records its session,
// and sets the HTTP-only cookie the client replays.
func (s *Server) issueToken(c *fiber.Ctx, accountID string) error {
	now := time.Now()
	jti := uuid.New().String()
	claims := jwt.MapClaims{
		"sub": accountID,
		"iss": "devmatch-stub",
		"exp": now.Add(tokenTTL).Unix(),
		"iat": now.Unix(),
		"jti": jti,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return err
	}
	if err := s.sessions.Put(c.Context(), jti, accountID, tokenTTL); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     tokenCookieName,
		Value:    signed,
		Expires:  now.Add(tokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return nil
}

// accountID returns the authenticated account ID set by AuthRequired.
func accountID(c *fiber.Ctx) string {
	id, _ := c.Locals("accountID").(string)
	return id
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
