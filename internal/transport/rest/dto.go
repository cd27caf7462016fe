package rest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/realestate-backend/internal/domain"
	"github.com/heartmarshall/realestate-backend/internal/service/property"
)

const dateLayout = "2006-01-02"

// Date is a calendar date encoded as YYYY-MM-DD. RFC 3339 timestamps are
// accepted on input and truncated to their UTC date.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return fmt.Errorf("date %q: want YYYY-MM-DD", s)
		}
	}
	d.Time = domain.DateOf(t)
	return nil
}

func datePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{Time: *t}
}

func timeOf(d *Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// ---------------------------------------------------------------------------
// Property requests
// ---------------------------------------------------------------------------

type addressRequest struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
}

type createPropertyRequest struct {
	OwnerID       uuid.UUID        `json:"ownerId"`
	CodeInternal  string           `json:"codeInternal"`
	Name          string           `json:"name"`
	Description   *string          `json:"description"`
	PropertyType  string           `json:"propertyType"`
	YearBuilt     *int             `json:"yearBuilt"`
	Bedrooms      int              `json:"bedrooms"`
	Bathrooms     decimal.Decimal  `json:"bathrooms"`
	ParkingSpaces int              `json:"parkingSpaces"`
	AreaSqft      *int             `json:"areaSqft"`
	LotSizeSqft   *int             `json:"lotSizeSqft"`
	BasePrice     decimal.Decimal  `json:"basePrice"`
	TaxAmount     decimal.Decimal  `json:"taxAmount"`
	Currency      string           `json:"currency"`
	HOAFee        *decimal.Decimal `json:"hoaFee"`
	Address       addressRequest   `json:"address"`
	Lat           *float64         `json:"lat"`
	Lng           *float64         `json:"lng"`
	ListingStatus string           `json:"listingStatus"`
	ListingDate   *Date            `json:"listingDate"`
	LastSoldPrice *decimal.Decimal `json:"lastSoldPrice"`
	IsFeatured    bool             `json:"isFeatured"`
	IsPublished   *bool            `json:"isPublished"`
	ActorName     *string          `json:"actorName"`
}

func (req createPropertyRequest) toInput() property.CreatePropertyInput {
	return property.CreatePropertyInput{NewPropertyParams: domain.NewPropertyParams{
		OwnerID:       req.OwnerID,
		CodeInternal:  req.CodeInternal,
		Name:          req.Name,
		Description:   req.Description,
		Type:          domain.PropertyType(req.PropertyType),
		YearBuilt:     req.YearBuilt,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		ParkingSpaces: req.ParkingSpaces,
		AreaSqft:      req.AreaSqft,
		LotSizeSqft:   req.LotSizeSqft,
		BasePrice:     req.BasePrice,
		TaxAmount:     req.TaxAmount,
		Currency:      req.Currency,
		HOAFee:        req.HOAFee,
		Address: domain.Address{
			Line1:      req.Address.Line1,
			Line2:      req.Address.Line2,
			City:       req.Address.City,
			State:      req.Address.State,
			PostalCode: req.Address.PostalCode,
			Country:    req.Address.Country,
		},
		Lat:           req.Lat,
		Lng:           req.Lng,
		ListingStatus: domain.ListingStatus(req.ListingStatus),
		ListingDate:   timeOf(req.ListingDate),
		LastSoldPrice: req.LastSoldPrice,
		IsFeatured:    req.IsFeatured,
		IsPublished:   req.IsPublished,
		ActorName:     req.ActorName,
	}}
}

// updatePropertyRequest is a partial update: absent fields keep their value.
type updatePropertyRequest struct {
	Version       int64            `json:"version"`
	OwnerID       *uuid.UUID       `json:"ownerId"`
	CodeInternal  *string          `json:"codeInternal"`
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	PropertyType  *string          `json:"propertyType"`
	YearBuilt     *int             `json:"yearBuilt"`
	Bedrooms      *int             `json:"bedrooms"`
	Bathrooms     *decimal.Decimal `json:"bathrooms"`
	ParkingSpaces *int             `json:"parkingSpaces"`
	AreaSqft      *int             `json:"areaSqft"`
	LotSizeSqft   *int             `json:"lotSizeSqft"`
	BasePrice     *decimal.Decimal `json:"basePrice"`
	TaxAmount     *decimal.Decimal `json:"taxAmount"`
	Currency      *string          `json:"currency"`
	HOAFee        *decimal.Decimal `json:"hoaFee"`
	AddressLine1  *string          `json:"addressLine1"`
	AddressLine2  *string          `json:"addressLine2"`
	City          *string          `json:"city"`
	State         *string          `json:"state"`
	PostalCode    *string          `json:"postalCode"`
	Country       *string          `json:"country"`
	Lat           *float64         `json:"lat"`
	Lng           *float64         `json:"lng"`
	ListingStatus *string          `json:"listingStatus"`
	ListingDate   *Date            `json:"listingDate"`
	LastSoldPrice *decimal.Decimal `json:"lastSoldPrice"`
	IsFeatured    *bool            `json:"isFeatured"`
	IsPublished   *bool            `json:"isPublished"`
	ActorName     *string          `json:"actorName"`
}

func (req updatePropertyRequest) toInput(id uuid.UUID) property.UpdatePropertyInput {
	patch := domain.PropertyPatch{
		OwnerID:       req.OwnerID,
		CodeInternal:  req.CodeInternal,
		Name:          req.Name,
		Description:   req.Description,
		YearBuilt:     req.YearBuilt,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		ParkingSpaces: req.ParkingSpaces,
		AreaSqft:      req.AreaSqft,
		LotSizeSqft:   req.LotSizeSqft,
		Currency:      req.Currency,
		HOAFee:        req.HOAFee,
		AddressLine1:  req.AddressLine1,
		AddressLine2:  req.AddressLine2,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		Lat:           req.Lat,
		Lng:           req.Lng,
		ListingDate:   timeOf(req.ListingDate),
		LastSoldPrice: req.LastSoldPrice,
		IsFeatured:    req.IsFeatured,
		IsPublished:   req.IsPublished,
	}
	if req.PropertyType != nil {
		t := domain.PropertyType(*req.PropertyType)
		patch.Type = &t
	}
	if req.ListingStatus != nil {
		s := domain.ListingStatus(*req.ListingStatus)
		patch.ListingStatus = &s
	}

	return property.UpdatePropertyInput{
		PropertyID:      id,
		Patch:           patch,
		BasePrice:       req.BasePrice,
		TaxAmount:       req.TaxAmount,
		ActorName:       req.ActorName,
		ExpectedVersion: req.Version,
	}
}

type changePriceRequest struct {
	Version   int64           `json:"version"`
	BasePrice decimal.Decimal `json:"basePrice"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
	ActorName *string         `json:"actorName"`
}

type addImageRequest struct {
	Version         *int64  `json:"version"`
	URL             string  `json:"url"`
	StorageProvider string  `json:"storageProvider"`
	AltText         *string `json:"altText"`
	IsPrimary       bool    `json:"isPrimary"`
	SortOrder       int     `json:"sortOrder"`
	ActorName       *string `json:"actorName"`
}

// ---------------------------------------------------------------------------
// Property responses
// ---------------------------------------------------------------------------

type addressResponse struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
}

type propertyResponse struct {
	ID            uuid.UUID        `json:"id"`
	OwnerID       uuid.UUID        `json:"ownerId"`
	CodeInternal  string           `json:"codeInternal"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	PropertyType  string           `json:"propertyType"`
	YearBuilt     *int             `json:"yearBuilt,omitempty"`
	Bedrooms      int              `json:"bedrooms"`
	Bathrooms     decimal.Decimal  `json:"bathrooms"`
	ParkingSpaces int              `json:"parkingSpaces"`
	AreaSqft      *int             `json:"areaSqft,omitempty"`
	LotSizeSqft   *int             `json:"lotSizeSqft,omitempty"`
	BasePrice     decimal.Decimal  `json:"basePrice"`
	TaxAmount     decimal.Decimal  `json:"taxAmount"`
	Price         decimal.Decimal  `json:"price"`
	Currency      string           `json:"currency"`
	HOAFee        *decimal.Decimal `json:"hoaFee,omitempty"`
	Address       addressResponse  `json:"address"`
	Lat           *float64         `json:"lat,omitempty"`
	Lng           *float64         `json:"lng,omitempty"`
	ListingStatus string           `json:"listingStatus"`
	ListingDate   Date             `json:"listingDate"`
	LastSoldPrice *decimal.Decimal `json:"lastSoldPrice,omitempty"`
	IsFeatured    bool             `json:"isFeatured"`
	IsPublished   bool             `json:"isPublished"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	Version       int64            `json:"version"`
}

func toPropertyResponse(r domain.PropertyRecord) propertyResponse {
	return propertyResponse{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		CodeInternal:  r.CodeInternal,
		Name:          r.Name,
		Description:   r.Description,
		PropertyType:  r.Type.String(),
		YearBuilt:     r.YearBuilt,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		ParkingSpaces: r.ParkingSpaces,
		AreaSqft:      r.AreaSqft,
		LotSizeSqft:   r.LotSizeSqft,
		BasePrice:     r.BasePrice,
		TaxAmount:     r.TaxAmount,
		Price:         r.Price,
		Currency:      r.Currency,
		HOAFee:        r.HOAFee,
		Address: addressResponse{
			Line1:      r.Address.Line1,
			Line2:      r.Address.Line2,
			City:       r.Address.City,
			State:      r.Address.State,
			PostalCode: r.Address.PostalCode,
			Country:    r.Address.Country,
		},
		Lat:           r.Lat,
		Lng:           r.Lng,
		ListingStatus: r.ListingStatus.String(),
		ListingDate:   Date{Time: r.ListingDate},
		LastSoldPrice: r.LastSoldPrice,
		IsFeatured:    r.IsFeatured,
		IsPublished:   r.IsPublished,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Version:       r.Version,
	}
}

type imageResponse struct {
	ID              uuid.UUID `json:"id"`
	PropertyID      uuid.UUID `json:"propertyId"`
	URL             string    `json:"url"`
	StorageProvider string    `json:"storageProvider"`
	AltText         *string   `json:"altText,omitempty"`
	IsPrimary       bool      `json:"isPrimary"`
	SortOrder       int       `json:"sortOrder"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toImageResponse(img domain.PropertyImage) imageResponse {
	return imageResponse{
		ID:              img.ID,
		PropertyID:      img.PropertyID,
		URL:             img.URL,
		StorageProvider: img.StorageProvider.String(),
		AltText:         img.AltText,
		IsPrimary:       img.IsPrimary,
		SortOrder:       img.SortOrder,
		CreatedAt:       img.CreatedAt,
	}
}

func toImageResponses(images []domain.PropertyImage) []imageResponse {
	out := make([]imageResponse, len(images))
	for i, img := range images {
		out[i] = toImageResponse(img)
	}
	return out
}

type traceResponse struct {
	ID         uuid.UUID        `json:"id"`
	PropertyID uuid.UUID        `json:"propertyId"`
	EventType  string           `json:"eventType"`
	EventDate  time.Time        `json:"eventDate"`
	ActorName  *string          `json:"actorName,omitempty"`
	OldTotal   *decimal.Decimal `json:"oldTotal,omitempty"`
	OldBase    *decimal.Decimal `json:"oldBase,omitempty"`
	OldTax     *decimal.Decimal `json:"oldTax,omitempty"`
	NewTotal   *decimal.Decimal `json:"newTotal,omitempty"`
	NewBase    *decimal.Decimal `json:"newBase,omitempty"`
	NewTax     *decimal.Decimal `json:"newTax,omitempty"`
	Notes      string           `json:"notes"`
}

func toTraceResponse(t domain.PropertyTrace) traceResponse {
	return traceResponse{
		ID:         t.ID,
		PropertyID: t.PropertyID,
		EventType:  t.EventType.String(),
		EventDate:  t.EventDate,
		ActorName:  t.ActorName,
		OldTotal:   t.OldTotal,
		OldBase:    t.OldBase,
		OldTax:     t.OldTax,
		NewTotal:   t.NewTotal,
		NewBase:    t.NewBase,
		NewTax:     t.NewTax,
		Notes:      t.Notes,
	}
}

type priceChangeSummary struct {
	EventDate time.Time        `json:"eventDate"`
	OldTotal  *decimal.Decimal `json:"oldTotal,omitempty"`
	NewTotal  *decimal.Decimal `json:"newTotal,omitempty"`
	NewBase   *decimal.Decimal `json:"newBase,omitempty"`
	NewTax    *decimal.Decimal `json:"newTax,omitempty"`
	ActorName *string          `json:"actorName,omitempty"`
}

type propertyDetailResponse struct {
	Property        propertyResponse    `json:"property"`
	OwnerFullName   string              `json:"ownerFullName,omitempty"`
	Images          []imageResponse     `json:"images"`
	LastPriceChange *priceChangeSummary `json:"lastPriceChange,omitempty"`
	TraceCount      int                 `json:"traceCount"`
}

func toDetailResponse(d *property.PropertyDetail) propertyDetailResponse {
	resp := propertyDetailResponse{
		Property:      toPropertyResponse(d.Property),
		OwnerFullName: d.OwnerFullName,
		Images:        toImageResponses(d.Images),
		TraceCount:    d.TraceCount,
	}
	if pc := d.LastPriceChange; pc != nil {
		resp.LastPriceChange = &priceChangeSummary{
			EventDate: pc.EventDate,
			OldTotal:  pc.OldTotal,
			NewTotal:  pc.NewTotal,
			NewBase:   pc.NewBase,
			NewTax:    pc.NewTax,
			ActorName: pc.ActorName,
		}
	}
	return resp
}

type priceChangeResponse struct {
	Property propertyResponse `json:"property"`
	OldPrice decimal.Decimal  `json:"oldPrice"`
	NewPrice decimal.Decimal  `json:"newPrice"`
	Trace    traceResponse    `json:"trace"`
}

type propertySummaryResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	CodeInternal    string          `json:"codeInternal"`
	City            string          `json:"city"`
	State           string          `json:"state"`
	PostalCode      string          `json:"postalCode"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	PropertyType    string          `json:"propertyType"`
	YearBuilt       *int            `json:"yearBuilt,omitempty"`
	Bedrooms        int             `json:"bedrooms"`
	Bathrooms       decimal.Decimal `json:"bathrooms"`
	AreaSqft        *int            `json:"areaSqft,omitempty"`
	ListingStatus   string          `json:"listingStatus"`
	ListingDate     Date            `json:"listingDate"`
	PrimaryImageURL *string         `json:"primaryImageUrl,omitempty"`
	OwnerFullName   string          `json:"ownerFullName"`
	IsFeatured      bool            `json:"isFeatured"`
	IsPublished     bool            `json:"isPublished"`
	Version         int64           `json:"version"`
}

func toSummaryResponse(s domain.PropertySummary) propertySummaryResponse {
	return propertySummaryResponse{
		ID:              s.ID,
		Name:            s.Name,
		CodeInternal:    s.CodeInternal,
		City:            s.City,
		State:           s.State,
		PostalCode:      s.PostalCode,
		Price:           s.Price,
		Currency:        s.Currency,
		PropertyType:    s.Type.String(),
		YearBuilt:       s.YearBuilt,
		Bedrooms:        s.Bedrooms,
		Bathrooms:       s.Bathrooms,
		AreaSqft:        s.AreaSqft,
		ListingStatus:   s.ListingStatus.String(),
		ListingDate:     Date{Time: s.ListingDate},
		PrimaryImageURL: s.PrimaryImageURL,
		OwnerFullName:   s.OwnerFullName,
		IsFeatured:      s.IsFeatured,
		IsPublished:     s.IsPublished,
		Version:         s.Version,
	}
}

// pageResponse is the JSON envelope of a list window.
type pageResponse[T any] struct {
	Items           []T  `json:"items"`
	TotalCount      int  `json:"totalCount"`
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

func toPageResponse[S, T any](p *domain.Page[S], conv func(S) T) pageResponse[T] {
	items := make([]T, len(p.Items))
	for i, it := range p.Items {
		items[i] = conv(it)
	}
	return pageResponse[T]{
		Items:           items,
		TotalCount:      p.TotalCount,
		Page:            p.Page,
		PageSize:        p.PageSize,
		TotalPages:      p.TotalPages,
		HasNextPage:     p.HasNextPage,
		HasPreviousPage: p.HasPreviousPage,
	}
}

// ---------------------------------------------------------------------------
// Owners
// ---------------------------------------------------------------------------

type ownerRequest struct {
	ExternalCode *string `json:"externalCode"`
	FullName     string  `json:"fullName"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	PhotoURL     *string `json:"photoUrl"`
	BirthDate    *Date   `json:"birthDate"`
	AddressLine  *string `json:"addressLine"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postalCode"`
	Country      string  `json:"country"`
	IsActive     *bool   `json:"isActive"`
}

func (req ownerRequest) toParams() domain.NewOwnerParams {
	return domain.NewOwnerParams{
		ExternalCode: req.ExternalCode,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		PhotoURL:     req.PhotoURL,
		BirthDate:    timeOf(req.BirthDate),
		AddressLine:  req.AddressLine,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		IsActive:     req.IsActive,
	}
}

type updateOwnerRequest struct {
	Version      int64   `json:"version"`
	ExternalCode *string `json:"externalCode"`
	FullName     *string `json:"fullName"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	PhotoURL     *string `json:"photoUrl"`
	BirthDate    *Date   `json:"birthDate"`
	AddressLine  *string `json:"addressLine"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postalCode"`
	Country      *string `json:"country"`
	IsActive     *bool   `json:"isActive"`
}

func (req updateOwnerRequest) toPatch() domain.OwnerPatch {
	return domain.OwnerPatch{
		ExternalCode: req.ExternalCode,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		PhotoURL:     req.PhotoURL,
		BirthDate:    timeOf(req.BirthDate),
		AddressLine:  req.AddressLine,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		IsActive:     req.IsActive,
	}
}

type ownerResponse struct {
	ID           uuid.UUID `json:"id"`
	ExternalCode *string   `json:"externalCode,omitempty"`
	FullName     string    `json:"fullName"`
	Email        *string   `json:"email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	PhotoURL     *string   `json:"photoUrl,omitempty"`
	BirthDate    *Date     `json:"birthDate,omitempty"`
	AddressLine  *string   `json:"addressLine,omitempty"`
	City         *string   `json:"city,omitempty"`
	State        *string   `json:"state,omitempty"`
	PostalCode   *string   `json:"postalCode,omitempty"`
	Country      string    `json:"country"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Version      int64     `json:"version"`
}

func toOwnerResponse(o *domain.Owner) ownerResponse {
	return ownerResponse{
		ID:           o.ID,
		ExternalCode: o.ExternalCode,
		FullName:     o.FullName,
		Email:        o.Email,
		Phone:        o.Phone,
		PhotoURL:     o.PhotoURL,
		BirthDate:    datePtr(o.BirthDate),
		AddressLine:  o.AddressLine,
		City:         o.City,
		State:        o.State,
		PostalCode:   o.PostalCode,
		Country:      o.Country,
		IsActive:     o.IsActive,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		Version:      o.Version,
	}
}

type ownerDetailResponse struct {
	ownerResponse
	PropertyCount int `json:"propertyCount"`
}

func toOwnerDetailResponse(d *domain.OwnerDetail) ownerDetailResponse {
	return ownerDetailResponse{
		ownerResponse: toOwnerResponse(d.Owner),
		PropertyCount: d.PropertyCount,
	}
}

type ownerSummaryResponse struct {
	ID            uuid.UUID `json:"id"`
	FullName      string    `json:"fullName"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	City          *string   `json:"city,omitempty"`
	State         *string   `json:"state,omitempty"`
	IsActive      bool      `json:"isActive"`
	PropertyCount int       `json:"propertyCount"`
	CreatedAt     time.Time `json:"createdAt"`
	Version       int64     `json:"version"`
}

func toOwnerSummaryResponse(s domain.OwnerSummary) ownerSummaryResponse {
	return ownerSummaryResponse{
		ID:            s.ID,
		FullName:      s.FullName,
		Email:         s.Email,
		Phone:         s.Phone,
		City:          s.City,
		State:         s.State,
		IsActive:      s.IsActive,
		PropertyCount: s.PropertyCount,
		CreatedAt:     s.CreatedAt,
		Version:       s.Version,
	}
}
