package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/realestate-backend/internal/domain"
	"github.com/heartmarshall/realestate-backend/internal/service/owner"
)

type ownerService interface {
	CreateOwner(ctx context.Context, input owner.CreateOwnerInput) (*domain.Owner, error)
	GetOwner(ctx context.Context, id uuid.UUID) (*domain.OwnerDetail, error)
	ListOwners(ctx context.Context, input owner.ListOwnersInput) (*domain.Page[domain.OwnerSummary], error)
	UpdateOwner(ctx context.Context, input owner.UpdateOwnerInput) (*domain.Owner, error)
	DeleteOwner(ctx context.Context, input owner.DeleteOwnerInput) error
}

// OwnerHandler serves the owner REST endpoints.
type OwnerHandler struct {
	svc ownerService
	log *slog.Logger
}

// NewOwnerHandler creates an OwnerHandler.
func NewOwnerHandler(svc ownerService, logger *slog.Logger) *OwnerHandler {
	return &OwnerHandler{svc: svc, log: logger.With("handler", "owner")}
}

// List handles GET /owners.
func (h *OwnerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	input := owner.ListOwnersInput{
		Q:        q.str("q"),
		IsActive: q.boolPtr("isActive"),
		Page:     q.intPtr("page"),
		PageSize: q.intPtr("pageSize"),
	}
	if err := q.err(); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	page, err := h.svc.ListOwners(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(page, toOwnerSummaryResponse))
}

// Create handles POST /owners.
func (h *OwnerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ownerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.svc.CreateOwner(r.Context(), owner.CreateOwnerInput{NewOwnerParams: req.toParams()})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	w.Header().Set("Location", "/api/v1/owners/"+o.ID.String())
	w.Header().Set("ETag", etag(o.Version))
	writeJSON(w, http.StatusCreated, toOwnerResponse(o))
}

// Get handles GET /owners/{id}.
func (h *OwnerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	d, err := h.svc.GetOwner(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	w.Header().Set("ETag", etag(d.Owner.Version))
	writeJSON(w, http.StatusOK, toOwnerDetailResponse(d))
}

// Update handles PATCH /owners/{id}.
func (h *OwnerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	var req updateOwnerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.svc.UpdateOwner(r.Context(), owner.UpdateOwnerInput{
		OwnerID:         id,
		Patch:           req.toPatch(),
		ExpectedVersion: req.Version,
	})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	w.Header().Set("ETag", etag(o.Version))
	writeJSON(w, http.StatusOK, toOwnerResponse(o))
}

// Delete handles DELETE /owners/{id}.
func (h *OwnerHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.DeleteOwner(r.Context(), owner.DeleteOwnerInput{OwnerID: id, ExpectedVersion: version}); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
