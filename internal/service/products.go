package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
)

// ProductService validates product writes and runs the image lifecycle:
// superseded and orphaned images are queued inside the write transaction
// and destroyed right after commit on a best-effort basis.
type ProductService struct {
	Catalog      *repository.CatalogProductRepo
	Customizable *repository.CustomizableProductRepo
	Images       *ImageService
	Log          *zap.Logger
}

func NewProductService(catalog *repository.CatalogProductRepo, custom *repository.CustomizableProductRepo, images *ImageService, log *zap.Logger) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{Catalog: catalog, Customizable: custom, Images: images, Log: log}
}

func (s *ProductService) CreateCatalog(ctx context.Context, p *model.CatalogProduct) error {
	if err := validateCatalog(p); err != nil {
		return err
	}
	return s.Catalog.Create(ctx, p)
}

// UpdateCatalog overwrites p.  A nil images slice leaves the image set
// untouched; an empty one removes every image.
func (s *ProductService) UpdateCatalog(ctx context.Context, p *model.CatalogProduct, images []model.CatalogProductImage) error {
	if err := validateCatalog(p); err != nil {
		return err
	}
	queued, err := s.Catalog.Update(ctx, p, images)
	if err != nil {
		return err
	}
	s.cleanup(ctx, queued)
	return nil
}

func (s *ProductService) DeleteCatalog(ctx context.Context, id uint64) error {
	queued, err := s.Catalog.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.cleanup(ctx, queued)
	return nil
}

func (s *ProductService) CreateCustomizable(ctx context.Context, p *model.CustomizableProduct) error {
	if err := validateCustomizable(p); err != nil {
		return err
	}
	return s.Customizable.Create(ctx, p)
}

func (s *ProductService) UpdateCustomizable(ctx context.Context, p *model.CustomizableProduct, images []model.CustomizableProductImage) error {
	if err := validateCustomizable(p); err != nil {
		return err
	}
	queued, err := s.Customizable.Update(ctx, p, images)
	if err != nil {
		return err
	}
	s.cleanup(ctx, queued)
	return nil
}

func (s *ProductService) DeleteCustomizable(ctx context.Context, id uint64) error {
	queued, err := s.Customizable.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.cleanup(ctx, queued)
	return nil
}

// Price loads a customizable product and prices one unit of it.
func (s *ProductService) Price(ctx context.Context, id uint64, size string, sides int) (decimal.Decimal, error) {
	p, err := s.Customizable.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return UnitPrice(p, size, sides)
}

func (s *ProductService) cleanup(ctx context.Context, rows []model.ImageDeletion) {
	if len(rows) == 0 {
		return
	}
	s.Log.Debug("image deletions queued", zap.Int("count", len(rows)))
	if s.Images != nil {
		s.Images.Cleanup(ctx, rows)
	}
}

// UnitPrice is the size price when the product lists one for size, else
// the retail price, plus the print cost for every side beyond the first.
func UnitPrice(p *model.CustomizableProduct, size string, sides int) (decimal.Decimal, error) {
	if sides == 0 {
		sides = 1
	}
	if sides < 1 || sides > 2 {
		return decimal.Zero, invalid("sides must be 1 or 2")
	}
	price := p.RetailPrice
	if size != "" && len(p.SizePrices) > 0 {
		var prices map[string]decimal.Decimal
		if err := json.Unmarshal(p.SizePrices, &prices); err != nil {
			return decimal.Zero, invalid("size_prices is malformed")
		}
		if sp, ok := prices[size]; ok {
			price = sp
		}
	}
	return price.Add(p.PrintCostPerSide.Mul(decimal.NewFromInt(int64(sides - 1)))), nil
}

// SidesFor maps a print option to the number of printed sides.
func SidesFor(printOption string) int {
	if printOption == model.PrintFrontAndBack {
		return 2
	}
	return 1
}

func validateCatalog(p *model.CatalogProduct) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Name == "" || p.Slug == "" {
		return invalid("name and slug are required")
	}
	if p.Price.IsNegative() {
		return invalid("price must not be negative")
	}
	if !isObjectOrNull(p.Sizes) {
		return invalid("sizes must be a JSON object")
	}
	if !isArrayOrNull(p.Colors) {
		return invalid("colors must be a JSON array")
	}
	return nil
}

func validateCustomizable(p *model.CustomizableProduct) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Name == "" || p.Slug == "" {
		return invalid("name and slug are required")
	}
	if p.DifferentiationType == "" {
		p.DifferentiationType = model.DifferentiationNone
	}
	if !model.ValidDifferentiation(p.DifferentiationType) {
		return invalid("differentiation_type must be none, color or variant")
	}
	if p.BaseCost.IsNegative() || p.RetailPrice.IsNegative() || p.PrintCostPerSide.IsNegative() {
		return invalid("prices must not be negative")
	}
	if !isObjectOrNull(p.SizePrices) || !isObjectOrNull(p.SizeAvailability) {
		return invalid("size_prices and size_availability must be JSON objects")
	}
	if len(p.SizePrices) > 0 && !isNull(p.SizePrices) {
		var prices map[string]decimal.Decimal
		if err := json.Unmarshal(p.SizePrices, &prices); err != nil {
			return invalid("size_prices values must be numbers")
		}
		for size, v := range prices {
			if v.IsNegative() {
				return invalid("price for size %s must not be negative", size)
			}
		}
	}
	return nil
}

func isNull(raw datatypes.JSON) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

// isObjectOrNull accepts an absent value, JSON null or a JSON object.
func isObjectOrNull(raw datatypes.JSON) bool {
	if len(raw) == 0 || isNull(raw) {
		return true
	}
	var m map[string]json.RawMessage
	return json.Unmarshal(raw, &m) == nil
}

func isArrayOrNull(raw datatypes.JSON) bool {
	if len(raw) == 0 || isNull(raw) {
		return true
	}
	var a []json.RawMessage
	return json.Unmarshal(raw, &a) == nil
}

// sizeKeys returns the keys of a size-keyed JSON object.
func sizeKeys(raws ...datatypes.JSON) map[string]bool {
	keys := map[string]bool{}
	for _, raw := range raws {
		if len(raw) == 0 || isNull(raw) {
			continue
		}
		var m map[string]json.RawMessage
		if json.Unmarshal(raw, &m) != nil {
			continue
		}
		for k := range m {
			keys[k] = true
		}
	}
	return keys
}
