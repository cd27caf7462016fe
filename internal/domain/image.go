package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxImageURLLength     = 1000
	maxImageAltTextLength = 300
)

// PropertyImage is an image attached to a property.
type PropertyImage struct {
	ID              uuid.UUID
	PropertyID      uuid.UUID
	URL             string
	StorageProvider StorageProvider
	AltText         *string
	IsPrimary       bool
	SortOrder       int
	Enabled         bool
	Version         int64
	CreatedAt       time.Time
	DeletedAt       *time.Time
}

// IsDeleted returns true if the image has been soft-deleted.
func (i *PropertyImage) IsDeleted() bool {
	return i.DeletedAt != nil
}

// visible reports whether the image takes part in the primary-image invariant.
func (i *PropertyImage) visible() bool {
	return i.Enabled && i.DeletedAt == nil
}

// NewImageParams holds caller-supplied values for a new image.
type NewImageParams struct {
	URL             string
	StorageProvider StorageProvider
	AltText         *string
	IsPrimary       bool
	SortOrder       int
}

func (p NewImageParams) validate() error {
	var errs []FieldError

	url := strings.TrimSpace(p.URL)
	if url == "" {
		errs = append(errs, FieldError{Field: "url", Message: "required"})
	} else if len(url) > maxImageURLLength {
		errs = append(errs, FieldError{Field: "url", Message: fmt.Sprintf("max %d characters", maxImageURLLength)})
	}
	if !p.StorageProvider.IsValid() {
		errs = append(errs, FieldError{Field: "storage_provider", Message: "invalid value"})
	}
	if p.AltText != nil && len(*p.AltText) > maxImageAltTextLength {
		errs = append(errs, FieldError{Field: "alt_text", Message: fmt.Sprintf("max %d characters", maxImageAltTextLength)})
	}
	if p.SortOrder < 0 {
		errs = append(errs, FieldError{Field: "sort_order", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// ImageCollection is the image set of one property. It keeps at most one
// visible image flagged primary, and exactly one while any visible image exists.
type ImageCollection struct {
	images []PropertyImage
}

// NewImageCollection wraps persisted images. Soft-deleted images are dropped.
func NewImageCollection(images []PropertyImage) ImageCollection {
	c := ImageCollection{images: make([]PropertyImage, 0, len(images))}
	for _, img := range images {
		if img.DeletedAt == nil {
			c.images = append(c.images, img)
		}
	}
	return c
}

// Len returns the number of images, enabled or not.
func (c *ImageCollection) Len() int { return len(c.images) }

// Add appends a new image. When no visible image exists the new one becomes
// primary regardless of its flag; when it is flagged primary every other
// primary is cleared first. It returns the stored image and the ids of
// images that lost the primary flag.
func (c *ImageCollection) Add(propertyID uuid.UUID, p NewImageParams, now time.Time) (PropertyImage, []uuid.UUID, error) {
	if err := p.validate(); err != nil {
		return PropertyImage{}, nil, err
	}

	img := PropertyImage{
		ID:              uuid.New(),
		PropertyID:      propertyID,
		URL:             strings.TrimSpace(p.URL),
		StorageProvider: p.StorageProvider,
		AltText:         p.AltText,
		IsPrimary:       p.IsPrimary,
		SortOrder:       p.SortOrder,
		Enabled:         true,
		Version:         1,
		CreatedAt:       now,
	}

	var demoted []uuid.UUID
	if !c.hasVisible() {
		img.IsPrimary = true
	} else if img.IsPrimary {
		demoted = c.clearPrimary()
	}

	c.images = append(c.images, img)
	return img, demoted, nil
}

// Remove soft-deletes the image with the given id. If it was primary, the
// first remaining visible image in display order is promoted and its id returned.
func (c *ImageCollection) Remove(id uuid.UUID, now time.Time) (PropertyImage, *uuid.UUID, error) {
	idx := c.indexOf(id)
	if idx < 0 {
		return PropertyImage{}, nil, fmt.Errorf("property_image %s: %w", id, ErrNotFound)
	}

	removed := c.images[idx]
	removed.DeletedAt = &now
	wasPrimary := removed.IsPrimary && removed.Enabled
	removed.IsPrimary = false
	c.images = append(c.images[:idx], c.images[idx+1:]...)

	if !wasPrimary {
		return removed, nil, nil
	}

	ordered := c.Ordered()
	for _, img := range ordered {
		if img.visible() {
			c.setPrimary(img.ID)
			promoted := img.ID
			return removed, &promoted, nil
		}
	}
	return removed, nil, nil
}

// Primary returns the primary image, if any.
func (c *ImageCollection) Primary() (PropertyImage, bool) {
	for _, img := range c.images {
		if img.IsPrimary && img.visible() {
			return img, true
		}
	}
	return PropertyImage{}, false
}

// Ordered returns the images in display order: primary first, then ascending
// sort order, then creation time, then id.
func (c *ImageCollection) Ordered() []PropertyImage {
	out := make([]PropertyImage, len(c.images))
	copy(out, c.images)
	SortImages(out)
	return out
}

// SortImages sorts images in display order in place.
func SortImages(images []PropertyImage) {
	sort.SliceStable(images, func(i, j int) bool {
		a, b := images[i], images[j]
		if a.IsPrimary != b.IsPrimary {
			return a.IsPrimary
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

func (c *ImageCollection) hasVisible() bool {
	for i := range c.images {
		if c.images[i].visible() {
			return true
		}
	}
	return false
}

func (c *ImageCollection) clearPrimary() []uuid.UUID {
	var ids []uuid.UUID
	for i := range c.images {
		if c.images[i].IsPrimary {
			c.images[i].IsPrimary = false
			ids = append(ids, c.images[i].ID)
		}
	}
	return ids
}

func (c *ImageCollection) setPrimary(id uuid.UUID) {
	for i := range c.images {
		c.images[i].IsPrimary = c.images[i].ID == id
	}
}

func (c *ImageCollection) indexOf(id uuid.UUID) int {
	for i := range c.images {
		if c.images[i].ID == id {
			return i
		}
	}
	return -1
}
