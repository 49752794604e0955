package stubapi

import (
	"fmt"
	"log/slog"
	"strings"

	"devmatch/internal/models"
	"devmatch/internal/observability"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the known password every seeded account gets, so a
// developer can log in as any of them.
const SeedPassword = "Password123!"

var seedSkillPool = []string{
	"go", "javascript", "typescript", "python", "rust", "react",
	"postgres", "redis", "docker", "kubernetes", "terraform", "graphql",
}

// Seed creates n fake candidate accounts. Existing accounts are left in
// place; seeding is additive and safe to repeat.
func Seed(db *gorm.DB, n int, log *observability.Logger) error {
	if log == nil {
		log = observability.GlobalLogger
	}
	gofakeit.Seed(0)

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	genders := []models.Gender{models.GenderMale, models.GenderFemale, models.GenderOther}
	accounts := make([]Account, 0, n)
	for i := 0; i < n; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()

		skillCount := gofakeit.Number(1, 5)
		skills := make([]string, 0, skillCount)
		for len(skills) < skillCount {
			skill := seedSkillPool[gofakeit.Number(0, len(seedSkillPool)-1)]
			if !contains(skills, skill) {
				skills = append(skills, skill)
			}
		}

		accounts = append(accounts, Account{
			ID:           uuid.New().String(),
			FirstName:    first,
			LastName:     last,
			EmailID:      fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			PasswordHash: string(hash),
			Age:          gofakeit.Number(models.MinAge, 45),
			Gender:       string(genders[gofakeit.Number(0, len(genders)-1)]),
			PhotoURL:     fmt.Sprintf("https://picsum.photos/seed/%s/400/400", uuid.New().String()[:8]),
			About:        gofakeit.Sentence(12),
			Skills:       joinSkills(skills),
		})
	}

	if len(accounts) > 0 {
		if err := db.Create(&accounts).Error; err != nil {
			return fmt.Errorf("seed accounts: %w", err)
		}
	}

	log.Info("seeded candidate accounts", slog.Int("count", len(accounts)))
	return nil
}

// SeedCandidates populates the server's store with n fake candidates,
// skipping when accounts already exist so restarts do not pile up data.
func (s *Server) SeedCandidates(n int) error {
	var count int64
	if err := s.db.Model(&Account{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	if count > 0 {
		s.log.Info("seed skipped, accounts already present", slog.Int64("count", count))
		return nil
	}
	return Seed(s.db, n, s.log)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
