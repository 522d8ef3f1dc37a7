package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Vistiqx/shopify-automation/internal/dto"
	"github.com/Vistiqx/shopify-automation/internal/models"
	"github.com/Vistiqx/shopify-automation/internal/repository"
	"github.com/Vistiqx/shopify-automation/internal/slug"
	"github.com/Vistiqx/shopify-automation/internal/tenant"
)

// CollectionService handles operator-created collections.
type CollectionService struct {
	collections *repository.CollectionRepository
	products    *repository.ProductRepository
	tags        *repository.TagRepository
}

func NewCollectionService(collections *repository.CollectionRepository, products *repository.ProductRepository, tags *repository.TagRepository) *CollectionService {
	return &CollectionService{collections: collections, products: products, tags: tags}
}

// Create adds a collection in scope. With a tag it is smart and product_ids
// are ignored; without one the listed products become its members.
func (s *CollectionService) Create(ctx context.Context, scope tenant.Scope, req *dto.CollectionRequest) (*models.Collection, error) {
	c := &models.Collection{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		MetaDescription: req.MetaDescription,
		StoreID:         scope.StoreIDPtr(),
	}
	if err := s.bindTag(ctx, c, req.TagID); err != nil {
		return nil, err
	}
	if err := s.collections.Create(ctx, c, slug.Base(c.Name)); err != nil {
		return nil, err
	}
	if !c.IsSmart() && len(req.ProductIDs) > 0 {
		if err := s.setMembers(ctx, scope, c, req.ProductIDs); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Update edits a collection. The slug is regenerated only when the name
// changes. A smart collection stays smart: an omitted tag keeps the current
// binding and a different tag rebinds it. Static collections stay static.
func (s *CollectionService) Update(ctx context.Context, scope tenant.Scope, id uint, req *dto.CollectionRequest) (*models.Collection, error) {
	c, err := s.collections.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	renamed := name != c.Name
	c.Name = name
	c.Description = req.Description
	c.MetaDescription = req.MetaDescription
	if c.IsSmart() && req.TagID != nil && *req.TagID != 0 && *req.TagID != *c.TagID {
		if err := s.bindTag(ctx, c, req.TagID); err != nil {
			return nil, err
		}
	}

	if renamed {
		err = s.collections.Rename(ctx, c, slug.Base(name))
	} else {
		err = s.collections.Update(ctx, c)
	}
	if err != nil {
		return nil, err
	}

	if !c.IsSmart() && req.ProductIDs != nil {
		if err := s.setMembers(ctx, scope, c, req.ProductIDs); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *CollectionService) bindTag(ctx context.Context, c *models.Collection, tagID *uint) error {
	if tagID == nil || *tagID == 0 {
		c.TagID = nil
		c.Tag = nil
		return nil
	}
	tag, err := s.tags.Get(ctx, *tagID)
	if err != nil {
		return err
	}
	c.TagID = &tag.ID
	c.Tag = tag
	return nil
}

func (s *CollectionService) setMembers(ctx context.Context, scope tenant.Scope, c *models.Collection, ids []uint) error {
	members, err := s.products.FindByIDs(ctx, scope, ids)
	if err != nil {
		return err
	}
	if err := s.collections.SetStaticProducts(ctx, c, members); err != nil {
		return fmt.Errorf("failed to set collection products: %w", err)
	}
	return nil
}
