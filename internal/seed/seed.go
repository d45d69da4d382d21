package seed

import (
	"fmt"
	"log"

	"quill/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// builtinGroups are the curated topics every environment starts with.
// Seeding them is idempotent: existing slugs are left untouched.
var builtinGroups = []models.Group{
	{Slug: "golang", Title: "Go", Description: "Posts about the Go programming language."},
	{Slug: "travel", Title: "Travel notes", Description: "Trip reports and route ideas."},
	{Slug: "cooking", Title: "Cooking", Description: "Recipes and kitchen experiments."},
	{Slug: "music", Title: "Music", Description: "What everyone is listening to."},
	{Slug: "books", Title: "Book club", Description: "Reading recommendations and reviews."},
}

// Groups seeds the curated built-in groups. Safe to call repeatedly.
func Groups(db *gorm.DB) error {
	for _, group := range builtinGroups {
		group := group
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&group).Error; err != nil {
			return fmt.Errorf("seed group %q: %w", group.Slug, err)
		}
	}
	log.Printf("Seeded %d built-in groups", len(builtinGroups))
	return nil
}

// Seeder orchestrates demo-data generation on top of the Factory.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder with default options.
func NewSeeder(db *gorm.DB) *Seeder {
	return NewSeederWithOptions(db, SeedOptions{})
}

// NewSeederWithOptions creates a Seeder with explicit options.
func NewSeederWithOptions(db *gorm.DB, opts SeedOptions) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll removes all seeded rows. Posts go first to satisfy FK ordering.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, model := range []any{
		&models.Post{},
		&models.Group{},
		&models.User{},
	} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedUsers creates n fake users and returns them.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, user)
	}
	log.Printf("Seeded %d users", len(users))
	return users, nil
}

// SeedTimeline spreads numPosts across the given users and the existing
// groups. Roughly a quarter of the posts stay ungrouped, matching a feed
// where not every entry belongs to a topic.
func (s *Seeder) SeedTimeline(users []*models.User, numPosts int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to author posts")
	}

	var groups []models.Group
	if !s.factory.opts.DryRun {
		if err := s.db.Order("title ASC").Find(&groups).Error; err != nil {
			return nil, fmt.Errorf("load groups: %w", err)
		}
	}

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.factory.rng.Intn(len(users))]

		var group *models.Group
		if len(groups) > 0 && s.factory.rng.Intn(4) != 0 {
			group = &groups[s.factory.rng.Intn(len(groups))]
		}

		posts = append(posts, s.factory.BuildPost(author, group))
	}

	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("batch create posts: %w", err)
	}

	log.Printf("Seeded %d posts", len(posts))
	return posts, nil
}
