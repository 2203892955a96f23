package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"premier-open-group/pkg/cache"
	"premier-open-group/pkg/config"
	"premier-open-group/pkg/database"
	"premier-open-group/pkg/logger"
	"premier-open-group/pkg/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	var (
		adminEmail    string
		adminPassword string
		adminName     string
		skipContent   bool
	)
	flag.StringVar(&adminEmail, "admin-email", getEnv("SEED_ADMIN_EMAIL", "admin@premieropengroup.org"), "email of the administrator account")
	flag.StringVar(&adminPassword, "admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "password of the administrator account")
	flag.StringVar(&adminName, "admin-name", "Group Administrator", "display name of the administrator account")
	flag.BoolVar(&skipContent, "skip-content", false, "only create the administrator account")
	flag.Parse()

	if len(adminPassword) < 8 {
		fmt.Fprintln(os.Stderr, "an administrator password of at least 8 characters is required (-admin-password or SEED_ADMIN_PASSWORD)")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Redis unavailable, cached content will expire on its own: %v", err)
		redisClient = nil
	}

	ctx := context.Background()

	adminID, err := seedAdmin(ctx, db, adminEmail, adminPassword, adminName, log)
	if err != nil {
		log.Error("Failed to seed administrator: %v", err)
		panic(err)
	}

	if !skipContent {
		seeded, err := seedContent(ctx, db, adminID, log)
		if err != nil {
			log.Error("Failed to seed content: %v", err)
			panic(err)
		}
		bumpCacheVersions(ctx, redisClient, seeded, log)
	}

	log.Info("Database seeded successfully!")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// seedAdmin creates the administrator identity and its approved profile, or
// promotes the existing account with that email.
func seedAdmin(ctx context.Context, db *gorm.DB, email, password, fullName string, log *logger.Logger) (string, error) {
	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		log.Info("User %s already exists, ensuring administrator profile", email)
		return existing.ID, ensureAdminProfile(ctx, db, existing.ID, existing.FullName)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: email, Password: string(hashed), FullName: fullName}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Profile{
			ID:       user.ID,
			FullName: fullName,
			Role:     models.RoleAdmin,
			Status:   models.StatusApproved,
		}).Error
	})
	if err != nil {
		return "", err
	}

	log.Info("Created administrator: %s", email)
	return user.ID, nil
}

func ensureAdminProfile(ctx context.Context, db *gorm.DB, userID, fullName string) error {
	profile := models.Profile{ID: userID, FullName: fullName, Role: models.RoleAdmin, Status: models.StatusApproved}
	return db.WithContext(ctx).
		Where(models.Profile{ID: userID}).
		Assign(map[string]interface{}{"role": models.RoleAdmin, "status": models.StatusApproved, "updated_at": time.Now().UTC()}).
		FirstOrCreate(&profile).Error
}

// seedContent fills every empty content table and returns the tables it wrote.
func seedContent(ctx context.Context, db *gorm.DB, authorID string, log *logger.Logger) ([]string, error) {
	var seeded []string
	now := time.Now().UTC()

	for _, batch := range sampleContent(authorID) {
		var count int64
		if err := db.WithContext(ctx).Table(batch.table).Count(&count).Error; err != nil {
			return seeded, fmt.Errorf("failed to count %s: %w", batch.table, err)
		}
		if count > 0 {
			log.Info("Table %s already has %d rows, skipping", batch.table, count)
			continue
		}

		rows := make([]map[string]interface{}, len(batch.rows))
		for i, row := range batch.rows {
			row["id"] = uuid.New().String()
			row["created_at"] = now
			row["updated_at"] = now
			rows[i] = row
		}
		if err := db.WithContext(ctx).Table(batch.table).Create(rows).Error; err != nil {
			return seeded, fmt.Errorf("failed to seed %s: %w", batch.table, err)
		}

		log.Info("Seeded %d rows into %s", len(rows), batch.table)
		seeded = append(seeded, batch.table)
	}
	return seeded, nil
}

// bumpCacheVersions retires the portal's cached lists for the seeded tables.
func bumpCacheVersions(ctx context.Context, client *redis.Client, tables []string, log *logger.Logger) {
	if client == nil {
		return
	}
	for _, table := range tables {
		if err := client.Incr(ctx, "content:"+table+":version").Err(); err != nil {
			log.Warn("Failed to invalidate cached %s: %v", table, err)
		}
	}
}

type contentBatch struct {
	table string
	rows  []map[string]interface{}
}

func post(title, category, body, authorID string) map[string]interface{} {
	return map[string]interface{}{
		"title":     title,
		"slug":      slug.Make(title),
		"category":  category,
		"content":   body,
		"published": true,
		"author_id": authorID,
	}
}

func sampleContent(authorID string) []contentBatch {
	return []contentBatch{
		{table: "posts", rows: []map[string]interface{}{
			post("Annual Camp at Kodaikanal", "camps", "Forty scouts and guides spent four days hiking, pitching tents and cooking over open fires.", authorID),
			post("Tree Plantation Drive", "community", "Our rovers and rangers planted two hundred saplings along the lake road.", authorID),
			post("Rajya Puraskar Results", "awards", "Six of our members earned the Rajya Puraskar this year. Congratulations to all of them.", authorID),
		}},
		{table: "programs", rows: []map[string]interface{}{
			{"title": "Cubs and Bulbuls", "description": "Play-way activities that build curiosity, teamwork and self reliance.", "age_group": "5 to 10 years", "duration": "Weekly meetings", "published": true},
			{"title": "Scouts and Guides", "description": "Camping, first aid, pioneering and community service projects.", "age_group": "10 to 17 years", "duration": "Weekly meetings and camps", "published": true},
			{"title": "Rovers and Rangers", "description": "Leadership training and service to the community.", "age_group": "16 to 25 years", "duration": "Fortnightly meetings", "published": true},
		}},
		{table: "awards", rows: []map[string]interface{}{
			{"title": "Rajya Puraskar", "description": "The state level award for scouts and guides.", "requirements": "Complete the Tritiya Sopan and the state testing camp.", "published": true},
			{"title": "Rashtrapati Award", "description": "The highest award in scouting and guiding, presented by the President.", "requirements": "Hold the Rajya Puraskar and pass the national testing camp.", "published": true},
		}},
		{table: "notifications", rows: []map[string]interface{}{
			{"title": "Registrations open", "content": "Registrations for the new scouting year are now open.", "published": true},
		}},
		{table: "member_profiles", rows: []map[string]interface{}{
			{"name": "Founding Leader", "category": "founding_members", "role": "Founder", "display_order": 0, "published": true},
			{"name": "Group Scout Master", "category": "leadership", "role": "Scout Master", "display_order": 0, "published": true},
		}},
	}
}
