package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
)

// Snapshot is the product data copied onto cart lines, favorites and
// order items.
type Snapshot struct {
	Name      string
	ImageURL  string
	UnitPrice decimal.Decimal
}

// ProductLookup resolves a (product_type, product_id) reference.
type ProductLookup struct {
	Catalog      *repository.CatalogProductRepo
	Customizable *repository.CustomizableProductRepo
	Designs      *repository.DesignRepo
}

func NewProductLookup(catalog *repository.CatalogProductRepo, custom *repository.CustomizableProductRepo, designs *repository.DesignRepo) *ProductLookup {
	return &ProductLookup{Catalog: catalog, Customizable: custom, Designs: designs}
}

// LineRef identifies what a customer wants to buy.
type LineRef struct {
	ProductType   string  `json:"product_type"`
	ProductID     uint64  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	Size          string  `json:"size"`
	Color         string  `json:"color"`
	SavedDesignID *uint64 `json:"saved_design_id,omitempty"`
}

// Resolve validates ref for userID and prices one unit.  A saved design
// must belong to userID and to the referenced customizable product; its
// print option decides how many sides are charged.
func (l *ProductLookup) Resolve(ctx context.Context, userID uint64, ref LineRef) (Snapshot, error) {
	if ref.ProductID == 0 || !model.ValidProductType(ref.ProductType) {
		return Snapshot{}, invalid("product_type must be catalog or customizable and product_id is required")
	}
	switch ref.ProductType {
	case model.ProductTypeCatalog:
		if ref.SavedDesignID != nil {
			return Snapshot{}, invalid("catalog products cannot carry a design")
		}
		p, err := l.Catalog.GetByID(ctx, ref.ProductID)
		if err != nil {
			return Snapshot{}, err
		}
		if !p.IsActive {
			return Snapshot{}, invalid("product %d is not available", p.ID)
		}
		if ref.Size != "" {
			if sizes := sizeKeys(p.Sizes); len(sizes) > 0 && !sizes[ref.Size] {
				return Snapshot{}, invalid("size %s is not offered for this product", ref.Size)
			}
		}
		snap := Snapshot{Name: p.Name, UnitPrice: p.Price}
		if len(p.Images) > 0 {
			snap.ImageURL = p.Images[0].URL
		}
		return snap, nil

	default:
		p, err := l.Customizable.GetByID(ctx, ref.ProductID)
		if err != nil {
			return Snapshot{}, err
		}
		if !p.IsActive {
			return Snapshot{}, invalid("product %d is not available", p.ID)
		}
		if ref.Size != "" {
			if sizes := sizeKeys(p.SizePrices, p.SizeAvailability); len(sizes) > 0 && !sizes[ref.Size] {
				return Snapshot{}, invalid("size %s is not offered for this product", ref.Size)
			}
		}
		sides := 1
		snap := Snapshot{Name: p.Name}
		if len(p.Images) > 0 {
			snap.ImageURL = p.Images[0].URL
		}
		if ref.SavedDesignID != nil {
			d, err := l.Designs.GetSaved(ctx, *ref.SavedDesignID, userID)
			if err != nil {
				return Snapshot{}, err
			}
			if d.ProductID != p.ID {
				return Snapshot{}, invalid("design %d was made for another product", d.ID)
			}
			sides = SidesFor(d.PrintOption)
			if d.FrontThumbnailURL != "" {
				snap.ImageURL = d.FrontThumbnailURL
			}
		}
		price, err := UnitPrice(p, ref.Size, sides)
		if err != nil {
			return Snapshot{}, err
		}
		snap.UnitPrice = price
		return snap, nil
	}
}

// Describe returns display data without availability or ownership checks.
func (l *ProductLookup) Describe(ctx context.Context, productType string, productID uint64) (Snapshot, error) {
	switch productType {
	case model.ProductTypeCatalog:
		p, err := l.Catalog.GetByID(ctx, productID)
		if err != nil {
			return Snapshot{}, err
		}
		snap := Snapshot{Name: p.Name, UnitPrice: p.Price}
		if len(p.Images) > 0 {
			snap.ImageURL = p.Images[0].URL
		}
		return snap, nil
	case model.ProductTypeCustomizable:
		p, err := l.Customizable.GetByID(ctx, productID)
		if err != nil {
			return Snapshot{}, err
		}
		snap := Snapshot{Name: p.Name, UnitPrice: p.RetailPrice}
		if len(p.Images) > 0 {
			snap.ImageURL = p.Images[0].URL
		}
		return snap, nil
	}
	return Snapshot{}, invalid("product_type must be catalog or customizable")
}
