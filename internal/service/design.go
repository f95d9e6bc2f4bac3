package service

import (
	"context"
	"strings"

	"gorm.io/datatypes"

	"github.com/iliyamo/apparel-studio/internal/metrics"
	"github.com/iliyamo/apparel-studio/internal/model"
	"github.com/iliyamo/apparel-studio/internal/repository"
)

// DesignInput is the canvas state posted by the design tool.
type DesignInput struct {
	ProductID         uint64         `json:"product_id"`
	Name              string         `json:"name"`
	FrontCanvas       datatypes.JSON `json:"front_canvas"`
	BackCanvas        datatypes.JSON `json:"back_canvas"`
	SelectedSize      string         `json:"selected_size"`
	PrintOption       string         `json:"print_option"`
	SelectedColor     string         `json:"selected_color"`
	FrontThumbnailURL string         `json:"front_thumbnail_url"`
	BackThumbnailURL  string         `json:"back_thumbnail_url"`
}

type DesignService struct {
	Designs  *repository.DesignRepo
	Products *repository.CustomizableProductRepo
}

func NewDesignService(designs *repository.DesignRepo, products *repository.CustomizableProductRepo) *DesignService {
	return &DesignService{Designs: designs, Products: products}
}

// SaveCurrent upserts the caller's draft for in.ProductID.
func (s *DesignService) SaveCurrent(ctx context.Context, userID uint64, in DesignInput) (*model.CurrentDesign, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	d := &model.CurrentDesign{
		UserID:            userID,
		ProductID:         in.ProductID,
		FrontCanvas:       in.FrontCanvas,
		BackCanvas:        in.BackCanvas,
		SelectedSize:      in.SelectedSize,
		PrintOption:       in.PrintOption,
		SelectedColor:     in.SelectedColor,
		FrontThumbnailURL: in.FrontThumbnailURL,
		BackThumbnailURL:  in.BackThumbnailURL,
	}
	if err := s.Designs.UpsertCurrent(ctx, d); err != nil {
		return nil, err
	}
	metrics.RecordDesignSave("draft")
	return d, nil
}

// SaveToLibrary always inserts a new named snapshot.
func (s *DesignService) SaveToLibrary(ctx context.Context, userID uint64, in DesignInput) (*model.SavedDesign, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, invalid("name is required")
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	d := &model.SavedDesign{
		UserID:            userID,
		ProductID:         in.ProductID,
		Name:              in.Name,
		FrontCanvas:       in.FrontCanvas,
		BackCanvas:        in.BackCanvas,
		SelectedSize:      in.SelectedSize,
		PrintOption:       in.PrintOption,
		SelectedColor:     in.SelectedColor,
		FrontThumbnailURL: in.FrontThumbnailURL,
		BackThumbnailURL:  in.BackThumbnailURL,
	}
	if err := s.Designs.CreateSaved(ctx, d); err != nil {
		return nil, err
	}
	metrics.RecordDesignSave("library")
	return d, nil
}

// Rename changes a library design's name.
func (s *DesignService) Rename(ctx context.Context, id, userID uint64, name string) (*model.SavedDesign, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	return s.Designs.RenameSaved(ctx, id, userID, name)
}

func (s *DesignService) validate(ctx context.Context, in DesignInput) error {
	if in.ProductID == 0 {
		return invalid("product_id is required")
	}
	if !isObjectOrNull(in.FrontCanvas) || !isObjectOrNull(in.BackCanvas) {
		return invalid("canvas state must be a JSON object")
	}
	if !model.ValidPrintOption(in.PrintOption) {
		return invalid("print_option must be front, back or front_and_back")
	}
	p, err := s.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return err
	}
	if in.SelectedSize != "" {
		sizes := sizeKeys(p.SizePrices, p.SizeAvailability)
		if len(sizes) > 0 && !sizes[in.SelectedSize] {
			return invalid("size %s is not offered for this product", in.SelectedSize)
		}
	}
	return nil
}
