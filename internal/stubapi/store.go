package stubapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"devmatch/internal/config"
	"devmatch/internal/models"
	"devmatch/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Account is the persisted profile row. Skills are stored comma-joined so
// the same column works on sqlite and postgres.
type Account struct {
	ID           string `gorm:"primaryKey"`
	FirstName    string
	LastName     string
	EmailID      string `gorm:"uniqueIndex"`
	PasswordHash string
	Age          int
	Gender       string
	PhotoURL     string
	About        string
	Skills       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Edge statuses. An edge starts as interested or ignored; only an
// interested edge can be reviewed into accepted or rejected.
const (
	EdgeInterested = "interested"
	EdgeIgnored    = "ignored"
	EdgeAccepted   = "accepted"
	EdgeRejected   = "rejected"
)

// Edge is a directed relationship between two accounts. At most one edge
// exists per unordered pair.
type Edge struct {
	ID        string `gorm:"primaryKey"`
	FromID    string `gorm:"index"`
	ToID      string `gorm:"index"`
	Status    string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User converts the row to its wire shape. The email is included; the
// serializer drops it where a handler strips it first.
func (a *Account) User() models.User {
	var skills []string
	if a.Skills != "" {
		skills = strings.Split(a.Skills, ",")
	}
	return models.User{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		EmailID:   a.EmailID,
		Age:       a.Age,
		Gender:    models.Gender(a.Gender),
		PhotoURL:  a.PhotoURL,
		About:     a.About,
		Skills:    skills,
	}
}

// PublicUser is the wire shape shown to other members, without the email.
func (a *Account) PublicUser() models.User {
	u := a.User()
	u.EmailID = ""
	return u
}

func joinSkills(skills []string) string {
	return strings.Join(skills, ",")
}

// gormSlogLogger adapts GORM's logger interface onto slog.
type gormSlogLogger struct {
	logger *observability.Logger
	level  logger.LogLevel
}

func (l *gormSlogLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormSlogLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormSlogLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormSlogLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *gormSlogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	if err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound) {
		sql, rows := fc()
		l.logger.ErrorContext(ctx, "query error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", time.Since(begin)),
			slog.String("error", err.Error()),
		)
	}
}

// Connect opens the store selected by DB_DRIVER and migrates the schema.
func Connect(cfg *config.Config, log *observability.Logger) (*gorm.DB, error) {
	if log == nil {
		log = observability.GlobalLogger
	}
	gormCfg := &gorm.Config{
		Logger: &gormSlogLogger{logger: log, level: logger.Warn},
	}

	var db *gorm.DB
	var err error
	switch cfg.DBDriver {
	case "postgres":
		sslMode := cfg.DBSSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, sslMode,
		)
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	case "sqlite":
		name := cfg.DBName
		if name != ":memory:" && !strings.HasSuffix(name, ".db") {
			name += ".db"
		}
		db, err = gorm.Open(sqlite.Open(name), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Account{}, &Edge{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if sqlDB, dbErr := db.DB(); dbErr == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	log.Info("stub database connected", slog.String("driver", cfg.DBDriver))
	return db, nil
}
