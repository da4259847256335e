// Warranty HTTP handlers.
//
// This file exposes REST endpoints for warranty resources:
//   - POST /warranties               (seller: issue)
//   - GET  /warranties               (seller: list, paginated, ETag support)
//   - GET  /warranties/{id}          (seller or owner: detail with history)
//   - POST /warranties/manual        (buyer: self-declare)
//   - POST /warranties/{id}/release  (owner: release / transfer)
//   - POST /claims                   (buyer: claim by code, idempotent)
//   - GET  /me/warranties            (buyer: list owned)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardbox/warranty-backend/internal/domain"
	"github.com/cardbox/warranty-backend/internal/http/middleware"
	"github.com/cardbox/warranty-backend/internal/repo"
	"github.com/cardbox/warranty-backend/internal/services"
	"github.com/cardbox/warranty-backend/internal/utils"
	"github.com/cardbox/warranty-backend/internal/warranty"
)

//
// Service contracts (context-aware)
//

// WarrantyService defines warranty lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type WarrantyService interface {
	// Issue creates an unclaimed record with a fresh code on behalf of a seller.
	Issue(ctx context.Context, seller services.Identity, in services.IssueInput) (*domain.Warranty, error)
	// Claim attaches the buyer as owner of the record matching code.
	Claim(ctx context.Context, buyer services.Identity, code, purchaseDate string) (*domain.Warranty, error)
	// Release detaches the current owner and returns the reusable transfer code.
	Release(ctx context.Context, owner services.Identity, id string) (string, error)
	// SelfDeclare creates a manual, buyer-owned, unverified record.
	SelfDeclare(ctx context.Context, buyer services.Identity, in services.SelfDeclareInput) (*domain.Warranty, error)
	// Get returns a record and its history to its seller or current owner.
	Get(ctx context.Context, requester services.Identity, id string) (*domain.Warranty, []domain.WarrantyEvent, error)
	// ListForSeller returns a page of records issued by sellerID and the total.
	ListForSeller(ctx context.Context, sellerID string, page, pageSize int) ([]domain.Warranty, int64, error)
	// ListForBuyer returns a page of records owned by buyerID and the total.
	ListForBuyer(ctx context.Context, buyerID string, page, pageSize int) ([]domain.Warranty, int64, error)
}

// VerifyService defines the public verification lookup.
type VerifyService interface {
	// Lookup resolves a free-text query (code, then serial) to a redacted view.
	Lookup(ctx context.Context, query string) (*services.VerifyResult, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for warranties and public verification.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	warrantySvc WarrantyService
	verifySvc   VerifyService

	// DB and IdempotencyTTL back the claim replay store; both optional in
	// tests (nil DB disables replay persistence and ETag pre-checks).
	DB             *gorm.DB
	IdempotencyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(warrantySvc WarrantyService, verifySvc VerifyService, db *gorm.DB, idemTTL time.Duration) *Handlers {
	return &Handlers{
		warrantySvc:    warrantySvc,
		verifySvc:      verifySvc,
		DB:             db,
		IdempotencyTTL: idemTTL,
	}
}

// identity extracts the authenticated principal from the Gin context (set by
// the upstream auth proxy via headers). If absent, a demo identity is used so
// local development works without the proxy. It never touches c.Request if
// it's nil.
func identity(c *gin.Context) services.Identity {
	id := services.Identity{UID: "demo-user"}
	if c == nil || c.Request == nil {
		return id
	}
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			id.UID = s
		}
	} else if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
		id.UID = h
	}
	id.Email = strings.TrimSpace(c.GetHeader("X-User-Email"))
	id.Name = strings.TrimSpace(c.GetHeader("X-User-Name"))
	return id
}

//
// DTOs
//

// IssueWarrantyRequest is the JSON payload for issuing a warranty.
type IssueWarrantyRequest struct {
	CustomerName   string `json:"customer_name" binding:"required" example:"Rahim Ahmed"`
	CustomerPhone  string `json:"customer_phone" example:"01712345678"`
	ProductModel   string `json:"product_model" binding:"required" example:"Samsung Inverter AC 1.5T"`
	SerialNumber   string `json:"serial_number" binding:"required" example:"SN-9F2K-11A"`
	PurchaseDate   string `json:"purchase_date" binding:"required" example:"2025-06-01"`
	DurationMonths int    `json:"duration_months" binding:"required" example:"12"`
}

// ClaimRequest is the JSON payload for claiming a warranty by code.
type ClaimRequest struct {
	Code string `json:"code" binding:"required" example:"CB-K9M2-P3XW"`
	// PurchaseDate optionally cross-checks the record before claiming.
	PurchaseDate string `json:"purchase_date,omitempty" example:"2025-06-01"`
}

// SelfDeclareRequest is the JSON payload for adding a manual warranty.
// Set duration_months to one of the fixed choices, or omit it (zero) and
// supply custom_expiry_date instead.
type SelfDeclareRequest struct {
	ProductModel     string `json:"product_model" binding:"required" example:"Walton Refrigerator 12cft"`
	Brand            string `json:"brand" example:"Walton"`
	SerialNumber     string `json:"serial_number" example:"N/A"`
	SellerName       string `json:"seller_name" example:"Mirpur Electronics"`
	Notes            string `json:"notes" example:"Bought during Eid sale"`
	PurchaseDate     string `json:"purchase_date" binding:"required" example:"2025-01-15"`
	DurationMonths   int    `json:"duration_months" example:"12"`
	CustomExpiryDate string `json:"custom_expiry_date" example:"2026-01-15"`
}

// WarrantyResponse wraps a record with its derived coverage status. The
// status is computed per response; it is never read from storage.
type WarrantyResponse struct {
	domain.Warranty
	Status string `json:"status" example:"active"`
}

// WarrantyDetailResponse adds the lifecycle history to a record view.
type WarrantyDetailResponse struct {
	WarrantyResponse
	History []domain.WarrantyEvent `json:"history"`
}

// ReleaseResponse returns the shareable transfer code after a release. The
// code is shown once; the record is already detached from the caller.
type ReleaseResponse struct {
	TransferCode string `json:"transfer_code" example:"CB-K9M2-P3XW"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListWarrantiesResponse wraps a page of records and pagination information.
type ListWarrantiesResponse struct {
	Warranties []WarrantyResponse `json:"warranties"`
	Pagination Pagination         `json:"pagination"`
}

//
// Helpers
//

// toResponse decorates a record with its derived status.
func toResponse(w domain.Warranty, now time.Time) WarrantyResponse {
	return WarrantyResponse{Warranty: w, Status: warranty.Status(w.ExpiryDate, now)}
}

// toResponses maps a page of records, deriving status against one clock read.
func toResponses(ws []domain.Warranty) []WarrantyResponse {
	now := time.Now().UTC()
	out := make([]WarrantyResponse, 0, len(ws))
	for _, w := range ws {
		out = append(out, toResponse(w, now))
	}
	return out
}

// clampPagination reads page and page_size query params, normalized and
// bounded by the shared pagination policy.
func clampPagination(c *gin.Context) (page, pageSize int) {
	return utils.PageParams(c.Query("page"), c.Query("page_size"))
}

// failFromService maps service sentinel errors to HTTP results. Unknown
// errors become 500s with the given domain code.
func failFromService(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrWarrantyNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "warranty not found")
	case errors.Is(err, services.ErrAlreadyClaimed):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrPurchaseDateMismatch),
		errors.Is(err, services.ErrNotTransferable),
		errors.Is(err, services.ErrMissingField),
		errors.Is(err, warranty.ErrInvalidDuration),
		errors.Is(err, warranty.ErrMissingExpiry),
		errors.Is(err, warranty.ErrExpiryBeforePurchase),
		errors.Is(err, warranty.ErrBadDate):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}

//
// Handlers
//

// IssueWarranty godoc
// @ID          issueWarranty
// @Summary     Issue a new warranty
// @Description Creates an unclaimed warranty record with a fresh shareable code for the authenticated seller.
// @Tags        Warranties
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID     header  string  false "Seller ID (auth proxy header)" example(seller123)
// @Param       X-User-Email  header  string  false "Seller email"                  example(shop@example.com)
// @Param       body          body    handlers.IssueWarrantyRequest  true  "Issue payload"
//
// @Success     201  {object}  handlers.WarrantyResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /warranties [post]
func (h *Handlers) IssueWarranty(c *gin.Context) {
	var req IssueWarrantyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	w, err := h.warrantySvc.Issue(c.Request.Context(), identity(c), services.IssueInput{
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		ProductModel:   req.ProductModel,
		SerialNumber:   req.SerialNumber,
		PurchaseDate:   req.PurchaseDate,
		DurationMonths: req.DurationMonths,
	})
	if err != nil {
		failFromService(c, err, ErrCodeIssueFailed)
		return
	}
	middleware.CountWarrantyOp(domain.ActionIssued)
	ok(c, http.StatusCreated, toResponse(*w, time.Now().UTC()))
}

// ListWarranties godoc
// @ID          listWarranties
// @Summary     List issued warranties (paginated)
// @Description Returns a page of records issued by the current seller. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Warranties
// @Produce     json
//
// @Param       X-User-ID      header  string  false "Seller ID (auth proxy header)" example(seller123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"    example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                   minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"                minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListWarrantiesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /warranties [get]
func (h *Handlers) ListWarranties(c *gin.Context) {
	ctx := c.Request.Context()
	uid := identity(c).UID
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if h.DB != nil {
		count, maxTS, err := repo.SellerWarrantyStats(ctx, h.DB, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"warranties:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.warrantySvc.ListForSeller(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, listResponse(items, page, pageSize, total))
}

// ListMyWarranties godoc
// @ID          listMyWarranties
// @Summary     List owned warranties (paginated)
// @Description Returns a page of records currently owned by the authenticated buyer (claimed or self-declared).
// @Tags        Warranties
// @Produce     json
//
// @Param       X-User-ID  header  string  false "Buyer ID (auth proxy header)" example(buyer123)
// @Param       page       query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListWarrantiesResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /me/warranties [get]
func (h *Handlers) ListMyWarranties(c *gin.Context) {
	uid := identity(c).UID
	page, pageSize := clampPagination(c)

	items, total, err := h.warrantySvc.ListForBuyer(c.Request.Context(), uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, listResponse(items, page, pageSize, total))
}

// GetWarranty godoc
// @ID          getWarranty
// @Summary     Get one warranty with its history
// @Description Returns a record and its lifecycle events. Only the issuing seller and the current owner can see it.
// @Tags        Warranties
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (auth proxy header)" example(buyer123)
// @Param       id         path    string  true  "Warranty ID (UUID)" format(uuid)
//
// @Success     200  {object} handlers.WarrantyDetailResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /warranties/{id} [get]
func (h *Handlers) GetWarranty(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "warranty id must be a UUID")
		return
	}

	w, events, err := h.warrantySvc.Get(c.Request.Context(), identity(c), id)
	if err != nil {
		failFromService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, WarrantyDetailResponse{
		WarrantyResponse: toResponse(*w, time.Now().UTC()),
		History:          events,
	})
}

// SelfDeclareWarranty godoc
// @ID          selfDeclareWarranty
// @Summary     Add a manual warranty
// @Description Creates a buyer-owned, unverified record for a warranty the platform did not issue. No code is attached.
// @Tags        Warranties
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID     header  string  false "Buyer ID (auth proxy header)" example(buyer123)
// @Param       X-User-Email  header  string  false "Buyer email"                  example(me@example.com)
// @Param       body          body    handlers.SelfDeclareRequest  true  "Manual warranty payload"
//
// @Success     201  {object} handlers.WarrantyResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /warranties/manual [post]
func (h *Handlers) SelfDeclareWarranty(c *gin.Context) {
	var req SelfDeclareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	w, err := h.warrantySvc.SelfDeclare(c.Request.Context(), identity(c), services.SelfDeclareInput{
		ProductModel:     req.ProductModel,
		Brand:            req.Brand,
		SerialNumber:     req.SerialNumber,
		SellerName:       req.SellerName,
		Notes:            req.Notes,
		PurchaseDate:     req.PurchaseDate,
		DurationMonths:   req.DurationMonths,
		CustomExpiryDate: req.CustomExpiryDate,
	})
	if err != nil {
		failFromService(c, err, ErrCodeIssueFailed)
		return
	}
	middleware.CountWarrantyOp(domain.ActionSelfDeclared)
	ok(c, http.StatusCreated, toResponse(*w, time.Now().UTC()))
}

// ClaimWarranty godoc
// @ID          claimWarranty
// @Summary     Claim a warranty by code
// @Description Attaches the authenticated buyer as owner of the record matching the code. Exactly one of two concurrent claims succeeds. Safe to retry with an Idempotency-Key header.
// @Tags        Claims
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "Buyer ID (auth proxy header)" example(buyer123)
// @Param       X-User-Email     header  string  false "Buyer email"                  example(me@example.com)
// @Param       Idempotency-Key  header  string  false "Replay protection key"        example(claim-7f3a)
// @Param       body             body    handlers.ClaimRequest  true  "Claim payload"
//
// @Success     200  {object} handlers.WarrantyResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Code not found"
// @Failure     409  {object} handlers.ErrorResponse "Already claimed"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /claims [post]
func (h *Handlers) ClaimWarranty(c *gin.Context) {
	ctx := c.Request.Context()
	buyer := identity(c)

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "warranty code required")
		return
	}
	code := warranty.NormalizeCode(req.Code)

	// Serve a stored replay instead of re-claiming.
	scope := claimScope(c)
	if key, hasKey := middleware.GetIdempotencyKey(c); hasKey && h.DB != nil {
		if rec, err := repo.GetIdempotency(ctx, h.DB, buyer.UID, scope, key, time.Now().UTC()); err == nil && rec != nil {
			if w, err := repo.GetWarranty(ctx, h.DB, rec.WarrantyID); err == nil {
				c.Header(middleware.HeaderIdempotencyReplayed, "true")
				ok(c, rec.Status, toResponse(*w, time.Now().UTC()))
				return
			}
		}
	}

	w, err := h.warrantySvc.Claim(ctx, buyer, code, strings.TrimSpace(req.PurchaseDate))
	if err != nil {
		failFromService(c, err, ErrCodeClaimFailed)
		return
	}

	// Record the outcome for replays; best effort, the claim already happened.
	if key, hasKey := middleware.GetIdempotencyKey(c); hasKey && h.DB != nil {
		if _, err := repo.CreateIdempotency(ctx, h.DB, buyer.UID, scope, key, w.ID, http.StatusOK, h.idemTTL()); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record not stored")
		}
	}

	middleware.CountWarrantyOp(domain.ActionClaimed)
	ok(c, http.StatusOK, toResponse(*w, time.Now().UTC()))
}

// ReleaseWarranty godoc
// @ID          releaseWarranty
// @Summary     Release (transfer) a warranty
// @Description Detaches the authenticated owner from the record and returns the code the next owner can claim it with. Irreversible.
// @Tags        Warranties
// @Produce     json
//
// @Param       X-User-ID     header  string  false "Owner ID (auth proxy header)" example(buyer123)
// @Param       X-User-Email  header  string  false "Owner email"                  example(me@example.com)
// @Param       id            path    string  true  "Warranty ID (UUID)" format(uuid)
//
// @Success     200  {object} handlers.ReleaseResponse
// @Failure     400  {object} handlers.ErrorResponse "Not transferable"
// @Failure     404  {object} handlers.ErrorResponse "Not found or not owner"
// @Router      /warranties/{id}/release [post]
func (h *Handlers) ReleaseWarranty(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "warranty id must be a UUID")
		return
	}

	code, err := h.warrantySvc.Release(c.Request.Context(), identity(c), id)
	if err != nil {
		failFromService(c, err, ErrCodeInternal)
		return
	}
	middleware.CountWarrantyOp(domain.ActionReleased)
	ok(c, http.StatusOK, ReleaseResponse{TransferCode: code})
}

// listResponse assembles the standard paginated list envelope.
func listResponse(items []domain.Warranty, page, pageSize int, total int64) ListWarrantiesResponse {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return ListWarrantiesResponse{
		Warranties: toResponses(items),
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
}

// claimScope namespaces idempotency records per route so keys from other
// operations cannot collide with claim replays. Must match the scope the
// IdempotencyValidator middleware uses for its lookup.
func claimScope(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// idemTTL returns the configured replay TTL with a sane default.
func (h *Handlers) idemTTL() time.Duration {
	if h.IdempotencyTTL <= 0 {
		return 24 * time.Hour
	}
	return h.IdempotencyTTL
}
