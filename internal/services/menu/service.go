package menu

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"winter-feast/internal/logger"
	"winter-feast/internal/models"
)

// Repository is the menu storage needed by the service.
type Repository interface {
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	ListActive(ctx context.Context) ([]models.MenuItem, error)
	ListAll(ctx context.Context) ([]models.MenuItem, error)
	ListHighlights(ctx context.Context, limit int) ([]models.MenuItem, error)
	GetActiveByName(ctx context.Context, name string) (*models.MenuItem, error)
	GetByID(ctx context.Context, id int) (*models.MenuItem, error)
	GetPricesByNames(ctx context.Context, names []string) (map[string]decimal.Decimal, error)
	ToggleActive(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}

// Service manages the menu: listing for guests, administration, image
// uploads and the initial seasonal seed.
type Service struct {
	repo      Repository
	uploadDir string
	log       *logger.Logger
}

func NewService(repo Repository, uploadDir string, log *logger.Logger) *Service {
	return &Service{repo: repo, uploadDir: uploadDir, log: log}
}

// NormalizePrice parses raw form input into a non-negative price quantized
// to exactly two fractional digits.
func NormalizePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || price.IsNegative() {
		return decimal.Zero, models.ErrInvalidPrice
	}
	return price.Round(2), nil
}

// CreateItemRequest carries the admin "add position" form fields.
type CreateItemRequest struct {
	Name        string
	Weight      string
	Ingredients string
	Description string
	PriceRaw    string
}

// CreateItem adds a menu position with its uploaded image. The image is
// stored under a randomized-prefix filename to avoid collisions. A
// duplicate name leaves no file behind.
func (s *Service) CreateItem(ctx context.Context, req CreateItemRequest, image io.Reader, imageName string) (*models.MenuItem, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Weight = strings.TrimSpace(req.Weight)
	req.Ingredients = strings.TrimSpace(req.Ingredients)
	req.Description = strings.TrimSpace(req.Description)

	if req.Name == "" || req.Weight == "" || req.Ingredients == "" || req.Description == "" || image == nil {
		return nil, models.ErrMissingFields
	}

	price, err := NormalizePrice(req.PriceRaw)
	if err != nil {
		return nil, err
	}

	fileName, err := s.saveImage(image, imageName)
	if err != nil {
		return nil, err
	}

	item := &models.MenuItem{
		Name:        req.Name,
		Weight:      req.Weight,
		Ingredients: req.Ingredients,
		Description: req.Description,
		Price:       price,
		Active:      true,
		FileName:    &fileName,
	}
	if err := s.repo.CreateMenuItem(ctx, item); err != nil {
		s.removeImage(fileName)
		return nil, err
	}

	s.log.Info("menu_item_added", "Menu position created", "", map[string]interface{}{
		"name":  item.Name,
		"price": item.Price.StringFixed(2),
	})
	return item, nil
}

func (s *Service) saveImage(image io.Reader, imageName string) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	fileName := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(imageName))
	f, err := os.Create(filepath.Join(s.uploadDir, fileName))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, image); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return fileName, nil
}

func (s *Service) removeImage(fileName string) {
	// A missing file is not an error.
	if err := os.Remove(filepath.Join(s.uploadDir, fileName)); err != nil && !os.IsNotExist(err) {
		s.log.Error("image_remove_failed", "Failed to remove menu image", "", err, map[string]interface{}{
			"file_name": fileName,
		})
	}
}

// ListActive returns orderable menu positions.
func (s *Service) ListActive(ctx context.Context) ([]models.MenuItem, error) {
	return s.repo.ListActive(ctx)
}

// ListAll returns every position including deactivated ones, for the
// administrator view.
func (s *Service) ListAll(ctx context.Context) ([]models.MenuItem, error) {
	return s.repo.ListAll(ctx)
}

// Highlights returns the three cheapest active positions for the home page.
func (s *Service) Highlights(ctx context.Context) ([]models.MenuItem, error) {
	return s.repo.ListHighlights(ctx, 3)
}

// GetActiveByName returns an orderable position by its unique name.
func (s *Service) GetActiveByName(ctx context.Context, name string) (*models.MenuItem, error) {
	return s.repo.GetActiveByName(ctx, name)
}

// GetPricesByNames resolves current prices for the given item names.
// Names without a menu row are simply absent from the result.
func (s *Service) GetPricesByNames(ctx context.Context, names []string) (map[string]decimal.Decimal, error) {
	if len(names) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	return s.repo.GetPricesByNames(ctx, names)
}

// ToggleActive flips the soft-delete flag on a position.
func (s *Service) ToggleActive(ctx context.Context, id int) error {
	return s.repo.ToggleActive(ctx, id)
}

// DeleteItem removes a position and its image file, if any.
func (s *Service) DeleteItem(ctx context.Context, id int) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if item.FileName != nil {
		s.removeImage(*item.FileName)
	}
	return nil
}

// Seed inserts the seasonal starter menu for positions that are absent.
func (s *Service) Seed(ctx context.Context) error {
	seasonal := []models.MenuItem{
		{
			Name:        "Pumpkin Elixir",
			Weight:      "250",
			Ingredients: "pumpkin puree, cream, cinnamon, a drop of charm",
			Description: "A warming drink with sparks of magical frost.",
			Price:       decimal.RequireFromString("89.00"),
			Active:      true,
		},
		{
			Name:        "Snowy Owl Pie",
			Weight:      "140",
			Ingredients: "puff pastry, cranberries, butter cream, ice pearls",
			Description: "A crisp pie with a sweet-and-sour heart, inspired by night owl flights.",
			Price:       decimal.RequireFromString("74.00"),
			Active:      true,
		},
		{
			Name:        "Gryffindor Ice Roast",
			Weight:      "320",
			Ingredients: "marbled beef, juniper marinade, caramelized onion",
			Description: "A hearty dish for the brave: warm core under a cold aromatic glaze.",
			Price:       decimal.RequireFromString("189.00"),
			Active:      true,
		},
	}

	for i := range seasonal {
		item := seasonal[i]
		if err := s.repo.CreateMenuItem(ctx, &item); err != nil {
			if err == models.ErrDuplicateMenuItem {
				continue
			}
			return fmt.Errorf("failed to seed menu item %q: %w", item.Name, err)
		}
	}
	return nil
}
