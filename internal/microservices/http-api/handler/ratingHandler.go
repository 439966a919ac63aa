package handler

import (
	"net/http"
	"strconv"

	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/service"
	"bookhub/internal/shared"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	ratingService service.RatingService
}

func NewRatingHandler(ratingService service.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// RegisterRoutes mounts read-only routes on public and writes on protected (behind AuthMiddleware)
func (h *RatingHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/books/:book_id/ratings", h.ListByBook)
	public.GET("/books/:book_id/ratings/stats", h.Stats)
	public.GET("/ratings/top", h.TopRated)

	protected.POST("/books/:book_id/ratings", h.Rate)
	protected.GET("/books/:book_id/ratings/me", h.Mine)
	protected.DELETE("/books/:book_id/ratings", h.Delete)
	protected.GET("/users/me/ratings", h.ListByUser)
}

// Rate creates or replaces the caller's rating: 201 when created, 200 when updated
func (h *RatingHandler) Rate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var uri dto.BookURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}

	var req dto.CreateRatingDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.ratingService.Upsert(ctx, userID, uri.BookID, req.Stars, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// Delete removes the caller's rating; 404 when there was none
func (h *RatingHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var uri dto.BookURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	removed, err := h.ratingService.Remove(ctx, userID, uri.BookID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "rating not found"})
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "rating deleted"})
}

func (h *RatingHandler) Mine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var uri dto.BookURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.ratingService.AlreadyRated(ctx, userID, uri.BookID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RatingHandler) ListByBook(c *gin.Context) {
	var uri dto.BookURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}

	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.ratingService.ListByBook(ctx, uri.BookID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RatingHandler) ListByUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.ratingService.ListByUser(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Stats answers 404 for books nobody has rated
func (h *RatingHandler) Stats(c *gin.Context) {
	var uri dto.BookURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.ratingService.Stats(ctx, uri.BookID)
	if err != nil {
		respondError(c, err)
		return
	}
	if stats == nil {
		respondError(c, shared.NotFound("no ratings for book"))
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *RatingHandler) TopRated(c *gin.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	minRatings, ok := intQuery(c, "min_ratings")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	books, err := h.ratingService.TopRated(ctx, limit, minRatings)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": books, "total": len(books)})
}

// intQuery parses an optional non-negative integer query parameter; absent means 0
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameter", Details: []string{name}})
		return 0, false
	}
	return n, true
}
