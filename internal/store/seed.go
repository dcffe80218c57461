package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kanistone/stonecms/internal/auth"
	"github.com/kanistone/stonecms/internal/model"
)

// Default admin credentials
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "changeme"
)

// defaultSection is one seeded storefront section.
type defaultSection struct {
	page, section, language, content, title string
}

// defaultSections is the storefront copy shipped on first boot, one row per
// language so editors have something to override in both directions.
var defaultSections = []defaultSection{
	{"home", "hero_title", "en", "Premium Natural Stone Cladding", ""},
	{"home", "hero_title", "fa", "سنگ نمای طبیعی ممتاز", ""},
	{"home", "hero_subtitle", "en", "Quarried, cut and finished by our own masters", ""},
	{"home", "hero_subtitle", "fa", "استخراج، برش و پرداخت توسط استادکاران ما", ""},
	{"about", "intro", "en", "Three generations of stonework from the quarries of Lorestan.", "About Us"},
	{"about", "intro", "fa", "سه نسل سنگ‌کاری از معادن لرستان.", "درباره ما"},
	{"contact", "address", "en", "Stone Industrial Zone, Unit 14", "Visit Us"},
	{"contact", "address", "fa", "شهرک صنعتی سنگ، واحد ۱۴", "بازدید"},
}

// Seed creates initial data: the default admin user and, when force is set
// or the content table is empty, the default bilingual storefront sections.
func Seed(ctx context.Context, db *sql.DB, force bool) error {
	queries := New(db)

	if err := seedAdmin(ctx, queries); err != nil {
		return err
	}
	return seedContent(ctx, queries, force)
}

func seedAdmin(ctx context.Context, queries *Queries) error {
	_, err := queries.GetUserByUsername(ctx, DefaultAdminUsername)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     DefaultAdminUsername,
		PasswordHash: passwordHash,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"username", user.Username,
		"password", DefaultAdminPassword,
	)
	return nil
}

func seedContent(ctx context.Context, queries *Queries, force bool) error {
	existing, err := queries.ListContentSections(ctx)
	if err != nil {
		return fmt.Errorf("listing content sections: %w", err)
	}
	if len(existing) > 0 && !force {
		return nil
	}

	now := time.Now()
	created := 0
	for _, s := range defaultSections {
		key := model.NewContentKey(s.page, s.section, s.language)
		if n, err := queries.CountContentSectionsByKey(ctx, key); err != nil {
			return fmt.Errorf("checking section %s/%s: %w", s.page, s.section, err)
		} else if n > 0 {
			continue
		}
		if _, err := queries.CreateContentSection(ctx, CreateContentSectionParams{
			PageName:    s.page,
			SectionKey:  s.section,
			Language:    s.language,
			Content:     s.content,
			Title:       s.title,
			SectionType: model.SectionTypeText,
			IsPublished: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return fmt.Errorf("seeding section %s/%s/%s: %w", s.page, s.section, s.language, err)
		}
		created++
	}

	if created > 0 {
		slog.Info("seeded default storefront sections", "count", created)
	}
	return nil
}
