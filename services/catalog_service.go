package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/esquivelfacundo/gastrodash/models"
)

// CatalogService provides read access to the orderable menu
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a catalog backed by db
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListAvailable returns all available products in catalog order
func (s *CatalogService) ListAvailable() ([]models.Product, error) {
	var products []models.Product
	err := s.db.
		Where("available = ?", true).
		Order("category, name").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Resolve matches a free-text item name against the available menu and
// returns the matched product, or nil when nothing matches.
func (s *CatalogService) Resolve(nameText string) (*models.Product, error) {
	products, err := s.ListAvailable()
	if err != nil {
		return nil, err
	}
	return MatchProduct(products, nameText), nil
}

// MatchProduct resolves a free-text item name against a product snapshot
// using case-insensitive substring containment. The first match in catalog
// order wins; there is no fuzzy matching, so an unmatched name means "not on
// the menu".
func MatchProduct(products []models.Product, nameText string) *models.Product {
	needle := strings.ToLower(strings.TrimSpace(nameText))
	if needle == "" {
		return nil
	}
	for i := range products {
		if strings.Contains(strings.ToLower(products[i].Name), needle) {
			return &products[i]
		}
	}
	return nil
}
