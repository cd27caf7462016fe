package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/realestate-backend/internal/domain"
	"github.com/heartmarshall/realestate-backend/internal/service/property"
)

// propertyService defines the operations needed by PropertyHandler.
type propertyService interface {
	CreateProperty(ctx context.Context, input property.CreatePropertyInput) (*domain.Property, error)
	GetPropertyDetail(ctx context.Context, id uuid.UUID) (*property.PropertyDetail, error)
	UpdateProperty(ctx context.Context, input property.UpdatePropertyInput) (*property.PropertyDetail, error)
	ChangePrice(ctx context.Context, input property.ChangePriceInput) (*property.PriceChangeResult, error)
	DeleteProperty(ctx context.Context, input property.DeletePropertyInput) error
	AddImage(ctx context.Context, input property.AddImageInput) (*domain.PropertyImage, error)
	RemoveImage(ctx context.Context, input property.RemoveImageInput) error
	ListProperties(ctx context.Context, input property.ListPropertiesInput) (*domain.Page[domain.PropertySummary], error)
	ListTraces(ctx context.Context, id uuid.UUID) ([]domain.PropertyTrace, error)
}

// PropertyHandler serves the property REST endpoints.
type PropertyHandler struct {
	svc propertyService
	log *slog.Logger
}

// NewPropertyHandler creates a PropertyHandler.
func NewPropertyHandler(svc propertyService, logger *slog.Logger) *PropertyHandler {
	return &PropertyHandler{svc: svc, log: logger.With("handler", "property")}
}

// List handles GET /properties.
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	input := property.ListPropertiesInput{
		Q:               q.str("q"),
		OwnerID:         q.uuidPtr("ownerId"),
		MinPrice:        q.decimalPtr("minPrice"),
		MaxPrice:        q.decimalPtr("maxPrice"),
		MinYear:         q.intPtr("minYear"),
		MaxYear:         q.intPtr("maxYear"),
		MinBedrooms:     q.intPtr("minBedrooms"),
		MaxBedrooms:     q.intPtr("maxBedrooms"),
		MinBathrooms:    q.decimalPtr("minBathrooms"),
		MaxBathrooms:    q.decimalPtr("maxBathrooms"),
		MinArea:         q.intPtr("minArea"),
		MaxArea:         q.intPtr("maxArea"),
		PropertyTypes:   q.list("propertyType"),
		ListingStatuses: q.list("listingStatus"),
		IsFeatured:      q.boolPtr("isFeatured"),
		IsPublished:     q.boolPtr("isPublished"),
		State:           q.str("state"),
		City:            q.str("city"),
		PostalCode:      q.str("postalCode"),
		LatMin:          q.floatPtr("latMin"),
		LatMax:          q.floatPtr("latMax"),
		LngMin:          q.floatPtr("lngMin"),
		LngMax:          q.floatPtr("lngMax"),
		GeohashPrefix:   q.str("geohash"),
		SortBy:          r.URL.Query().Get("sortBy"),
		SortDir:         r.URL.Query().Get("sortDir"),
		Page:            q.intPtr("page"),
		PageSize:        q.intPtr("pageSize"),
	}
	if err := q.err(); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	page, err := h.svc.ListProperties(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(page, toSummaryResponse))
}

// Create handles POST /properties.
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPropertyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.CreateProperty(r.Context(), req.toInput())
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	rec := p.Record()
	w.Header().Set("Location", "/api/v1/properties/"+rec.ID.String())
	w.Header().Set("ETag", etag(rec.Version))
	writeJSON(w, http.StatusCreated, propertyDetailResponse{
		Property:   toPropertyResponse(rec),
		Images:     toImageResponses(p.Images()),
		TraceCount: len(p.PendingTraces()),
	})
}

// Get handles GET /properties/{id}.
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	detail, err := h.svc.GetPropertyDetail(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	w.Header().Set("ETag", etag(detail.Property.Version))
	writeJSON(w, http.StatusOK, toDetailResponse(detail))
}

// Update handles PATCH /properties/{id}.
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	var req updatePropertyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	detail, err := h.svc.UpdateProperty(r.Context(), req.toInput(id))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	w.Header().Set("ETag", etag(detail.Property.Version))
	writeJSON(w, http.StatusOK, toDetailResponse(detail))
}

// ChangePrice handles PUT /properties/{id}/price.
func (h *PropertyHandler) ChangePrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	var req changePriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.ChangePrice(r.Context(), property.ChangePriceInput{
		PropertyID:      id,
		BasePrice:       req.BasePrice,
		TaxAmount:       req.TaxAmount,
		ActorName:       req.ActorName,
		ExpectedVersion: req.Version,
	})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	w.Header().Set("ETag", etag(result.Property.Version))
	writeJSON(w, http.StatusOK, priceChangeResponse{
		Property: toPropertyResponse(result.Property),
		OldPrice: result.OldPrice,
		NewPrice: result.NewPrice,
		Trace:    toTraceResponse(result.Trace),
	})
}

// Delete handles DELETE /properties/{id}.
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	version, err := expectedVersion(r)
	if err != nil {
		writeBadRequest(w, r, "version", err.Error())
		return
	}

	if err := h.svc.DeleteProperty(r.Context(), property.DeletePropertyInput{
		PropertyID:      id,
		ExpectedVersion: version,
	}); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddImage handles POST /properties/{id}/images.
func (h *PropertyHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	var req addImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	img, err := h.svc.AddImage(r.Context(), property.AddImageInput{
		PropertyID: id,
		Image: domain.NewImageParams{
			URL:             req.URL,
			StorageProvider: domain.StorageProvider(req.StorageProvider),
			AltText:         req.AltText,
			IsPrimary:       req.IsPrimary,
			SortOrder:       req.SortOrder,
		},
		ActorName:       req.ActorName,
		ExpectedVersion: req.Version,
	})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toImageResponse(*img))
}

// RemoveImage handles DELETE /properties/{id}/images/{imageId}.
func (h *PropertyHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	imageID, err := pathUUID(r, "imageId")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	version, err := expectedVersion(r)
	if err != nil {
		writeBadRequest(w, r, "version", err.Error())
		return
	}

	if err := h.svc.RemoveImage(r.Context(), property.RemoveImageInput{
		PropertyID:      id,
		ImageID:         imageID,
		ExpectedVersion: version,
	}); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Traces handles GET /properties/{id}/traces.
func (h *PropertyHandler) Traces(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	traces, err := h.svc.ListTraces(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	items := make([]traceResponse, len(traces))
	for i, t := range traces {
		items[i] = toTraceResponse(t)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
