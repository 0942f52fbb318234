// Package seed loads managers and the product catalog at startup.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/storebot/core/bootstrap"
	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/internal/config"
	"github.com/m3rciful/storebot/internal/domain"
	"github.com/m3rciful/storebot/internal/shop"
	"github.com/m3rciful/storebot/internal/storage"
)

// Catalog is the YAML document describing categories and their products.
type Catalog struct {
	Categories []CategorySeed `yaml:"categories"`
}

// CategorySeed is one category with its products.
type CategorySeed struct {
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Products    []ProductSeed `yaml:"products"`
}

// ProductSeed is one catalog product. Price is kept as text so it never passes through float.
type ProductSeed struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Image       string `yaml:"image"`
	Stock       int    `yaml:"stock"`
}

// LoadCatalog parses the catalog file at path.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(data []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	for i, c := range cat.Categories {
		if strings.TrimSpace(c.Title) == "" {
			return Catalog{}, fmt.Errorf("categories[%d]: title is required", i)
		}
		for j, p := range c.Products {
			if strings.TrimSpace(p.Title) == "" {
				return Catalog{}, fmt.Errorf("categories[%d].products[%d]: title is required", i, j)
			}
			if _, err := p.price(); err != nil {
				return Catalog{}, fmt.Errorf("categories[%d].products[%d]: %w", i, j, err)
			}
			if p.Stock < 0 {
				return Catalog{}, fmt.Errorf("categories[%d].products[%d]: stock must not be negative", i, j)
			}
		}
	}
	return cat, nil
}

func (p ProductSeed) price() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(p.Price))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q", p.Price)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("price must not be negative")
	}
	return d, nil
}

// CatalogSeeder upserts every category and product from the file at path.
// An empty path yields a no-op seeder.
func CatalogSeeder(store storage.CatalogRepository, path string) bootstrap.Seeder {
	return bootstrap.SeederFunc("catalog", func(ctx context.Context) error {
		if strings.TrimSpace(path) == "" {
			return nil
		}
		cat, err := LoadCatalog(path)
		if err != nil {
			return err
		}
		return ApplyCatalog(ctx, store, cat)
	})
}

// ApplyCatalog writes cat through store. Rerunning it updates rows in place.
func ApplyCatalog(ctx context.Context, store storage.CatalogRepository, cat Catalog) error {
	products := 0
	for _, cs := range cat.Categories {
		c, err := store.UpsertCategory(ctx, domain.Category{
			Title:       strings.TrimSpace(cs.Title),
			Description: strings.TrimSpace(cs.Description),
		})
		if err != nil {
			return fmt.Errorf("upsert category %q: %w", cs.Title, err)
		}
		for _, ps := range cs.Products {
			price, err := ps.price()
			if err != nil {
				return fmt.Errorf("product %q: %w", ps.Title, err)
			}
			p := domain.Product{
				Title:      strings.TrimSpace(ps.Title),
				Price:      price,
				CategoryID: c.ID,
				ImageRef:   strings.TrimSpace(ps.Image),
				Stock:      ps.Stock,
			}
			if d := strings.TrimSpace(ps.Description); d != "" {
				p.Description = &d
			}
			if _, err := store.UpsertProduct(ctx, p); err != nil {
				return fmt.Errorf("upsert product %q: %w", ps.Title, err)
			}
			products++
		}
	}
	logger.Info(ctx, logger.CompSeed, "catalog",
		slog.Int("categories", len(cat.Categories)),
		slog.Int("products", products),
	)
	return nil
}

// ManagersSeeder upserts the configured staff members keyed by telegram id.
func ManagersSeeder(store storage.ManagerRepository, managers []config.ManagerSeed) bootstrap.Seeder {
	return bootstrap.SeederFunc("managers", func(ctx context.Context) error {
		for _, m := range managers {
			phone, err := shop.NormalizePhone(m.Phone)
			if err != nil {
				return fmt.Errorf("manager %d: %w", m.TelegramID, err)
			}
			if _, err := store.UpsertManager(ctx, domain.Manager{
				FirstName:  strings.TrimSpace(m.FirstName),
				LastName:   strings.TrimSpace(m.LastName),
				Phone:      phone,
				IsStaff:    m.IsStaff(),
				TelegramID: m.TelegramID,
			}); err != nil {
				return fmt.Errorf("upsert manager %d: %w", m.TelegramID, err)
			}
		}
		logger.Info(ctx, logger.CompSeed, "managers", slog.Int("count", len(managers)))
		return nil
	})
}
