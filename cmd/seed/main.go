package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"fieldguide/internal/config"
	"fieldguide/internal/domain/models"
	"fieldguide/internal/repository/postgres"
	"fieldguide/internal/service"
)

// seedFile is the YAML shape consumed by --file.
type seedFile struct {
	Admins []seedAdmin `yaml:"admins"`
	Issues []seedIssue `yaml:"issues"`
}

type seedAdmin struct {
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	DisplayName string `yaml:"display_name"`
}

type seedIssue struct {
	Slug     string        `yaml:"slug"`
	Title    string        `yaml:"title"`
	Subtitle string        `yaml:"subtitle"`
	Version  string        `yaml:"version"`
	Tagline  string        `yaml:"tagline"`
	Intro    string        `yaml:"intro"`
	Sections []seedSection `yaml:"sections"`
}

type seedSection struct {
	ID      string      `yaml:"id"`
	Title   string      `yaml:"title"`
	Icon    string      `yaml:"icon"`
	Color   string      `yaml:"color"`
	Entries []seedEntry `yaml:"entries"`
}

type seedEntry struct {
	Pattern     string   `yaml:"pattern"`
	Description string   `yaml:"description"`
	Signals     []string `yaml:"signals"`
	Protocol    string   `yaml:"protocol"`
}

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	file := flag.String("file", "seed.yaml", "YAML seed file with admins and issues")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	log.Println("Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		log.Fatalf("Failed to parse seed file: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	adminRepo := postgres.NewAdminUserRepository(repoConfig)
	issueRepo := postgres.NewIssueRepository(repoConfig)
	searchRepo := postgres.NewSearchRepository(repoConfig)
	searchService := service.NewSearchService(searchRepo, logger)

	for _, a := range seed.Admins {
		hash, err := service.HashPassword(a.Password)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", a.Email, err)
		}
		err = adminRepo.Create(ctx, &models.AdminUser{
			Email:        a.Email,
			PasswordHash: hash,
			DisplayName:  a.DisplayName,
		})
		if err != nil {
			log.Printf("Skipping admin %s: %v", a.Email, err)
			continue
		}
		log.Printf("Seeded admin %s", a.Email)
	}

	for _, si := range seed.Issues {
		issue := &models.Issue{
			Slug:     si.Slug,
			Title:    si.Title,
			Subtitle: si.Subtitle,
			Version:  si.Version,
			Tagline:  si.Tagline,
			Intro:    si.Intro,
			Sections: convertSections(si.Sections),
		}
		if err := issueRepo.Create(ctx, issue); err != nil {
			log.Printf("Skipping issue %s: %v", si.Slug, err)
			continue
		}
		if err := searchService.ReindexIssue(ctx, issue); err != nil {
			log.Printf("Failed to index issue %s: %v", si.Slug, err)
		}
		log.Printf("Seeded issue %s (%d sections)", si.Slug, len(issue.Sections))
	}

	log.Println("Seeding complete")
}

func convertSections(in []seedSection) []models.Section {
	out := make([]models.Section, 0, len(in))
	for _, s := range in {
		section := models.Section{
			ID:    s.ID,
			Title: s.Title,
			Icon:  s.Icon,
			Color: s.Color,
		}
		for _, e := range s.Entries {
			section.Entries = append(section.Entries, models.Entry{
				Pattern:     e.Pattern,
				Description: e.Description,
				Signals:     e.Signals,
				Protocol:    e.Protocol,
			})
		}
		out = append(out, section)
	}
	return out
}

func dropAllTables(ctx context.Context, pool *pgxpool.Pool, t *postgres.TableNames) error {
	// Children first so foreign keys never block the drop.
	tables := []string{
		t.Bookmarks, t.SearchIndex, t.Resources, t.Activities,
		t.Suggestions, t.Messages, t.Revisions, t.Drafts,
		t.Workspaces, t.Imports, t.AdminUsers, t.Issues,
	}
	for _, table := range tables {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
