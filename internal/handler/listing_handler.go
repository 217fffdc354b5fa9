package handler

import (
	"net/http"
	"strconv"

	"automarket/internal/middleware"
	"automarket/internal/repository"
	"automarket/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ListingHandler struct {
	listings *service.ListingService
	market   *service.MarketplaceService
	reviews  *service.ReviewService
	messages *service.MessageService
}

func NewListingHandler(
	listings *service.ListingService,
	market *service.MarketplaceService,
	reviews *service.ReviewService,
	messages *service.MessageService,
) *ListingHandler {
	return &ListingHandler{listings: listings, market: market, reviews: reviews, messages: messages}
}

type searchQuery struct {
	Query    string `form:"q"`
	BrandID  uint   `form:"brand_id"`
	PriceMin string `form:"price_min"`
	PriceMax string `form:"price_max"`
	YearMin  int    `form:"year_min"`
	YearMax  int    `form:"year_max"`
	Status   string `form:"status" binding:"omitempty,oneof=reserved available"`
	Sort     string `form:"sort"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Search handles GET /listings.
func (h *ListingHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	minPrice, err := optionalDecimal(q.PriceMin)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_min"})
		return
	}
	maxPrice, err := optionalDecimal(q.PriceMax)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price_max"})
		return
	}
	page, err := h.listings.Search(repository.ListingFilter{
		Query:    q.Query,
		BrandID:  q.BrandID,
		PriceMin: minPrice,
		PriceMax: maxPrice,
		YearMin:  q.YearMin,
		YearMax:  q.YearMax,
		Status:   q.Status,
		Sort:     q.Sort,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		respondError(c, "listing", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Detail handles GET /listings/:id. Every view by someone other than the
// seller, anonymous visitors included, counts once.
func (h *ListingHandler) Detail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	d, err := h.market.ListingDetail(id, middleware.GetOptionalUserID(c))
	if err != nil {
		respondError(c, "listing", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type CreateListingRequest struct {
	BrandID     uint            `json:"brand_id" binding:"required"`
	ModelName   string          `json:"model_name" binding:"required,notblank,max=100"`
	Price       decimal.Decimal `json:"price"`
	Mileage     int             `json:"mileage" binding:"min=0"`
	Year        int             `json:"year" binding:"required,vehicle_year"`
	Color       string          `json:"color" binding:"required,car_color"`
	Condition   string          `json:"condition" binding:"required,car_condition"`
	Description string          `json:"description"`
}

func (h *ListingHandler) Create(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
		return
	}
	l, err := h.listings.Create(middleware.GetUserID(c), service.CreateListingInput{
		BrandID:     req.BrandID,
		ModelName:   req.ModelName,
		Price:       req.Price,
		Mileage:     req.Mileage,
		Year:        req.Year,
		Color:       req.Color,
		Condition:   req.Condition,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, "listing", err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

type UpdateListingRequest struct {
	Price       *decimal.Decimal `json:"price"`
	Mileage     *int             `json:"mileage" binding:"omitempty,min=0"`
	Description *string          `json:"description"`
}

func (h *ListingHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price != nil && !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
		return
	}
	l, err := h.listings.Update(id, middleware.GetUserID(c), service.UpdateListingInput{
		Price:       req.Price,
		Mileage:     req.Mileage,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, "listing", err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *ListingHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.listings.Delete(id, middleware.GetUserID(c)); err != nil {
		respondError(c, "listing", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage replaces the main image from the multipart "image" field.
func (h *ListingHandler) UploadImage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	f, ok := openImage(c, "image")
	if !ok {
		return
	}
	defer f.Close()
	l, err := h.listings.SetMainImage(c.Request.Context(), id, middleware.GetUserID(c), f)
	if err != nil {
		respondError(c, "listing", err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// AddGalleryImage stores one more picture with an optional caption and order.
func (h *ListingHandler) AddGalleryImage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := strconv.Atoi(c.DefaultPostForm("order", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order"})
		return
	}
	f, ok := openImage(c, "image")
	if !ok {
		return
	}
	defer f.Close()
	img, err := h.listings.AddGalleryImage(c.Request.Context(), id, middleware.GetUserID(c), f, c.PostForm("description"), order)
	if err != nil {
		respondError(c, "listing", err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (h *ListingHandler) ToggleFavorite(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	fav, err := h.listings.ToggleFavorite(middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, "favorite", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_favorite": fav})
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required,notblank"`
}

func (h *ListingHandler) Review(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rv, created, err := h.reviews.Submit(id, middleware.GetUserID(c), req.Rating, req.Comment)
	if err != nil {
		respondError(c, "review", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, rv)
}

type ContactRequest struct {
	Body string `json:"body" binding:"required,notblank"`
}

// Contact sends a message to the listing's seller.
func (h *ListingHandler) Contact(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := h.messages.ContactSeller(id, middleware.GetUserID(c), req.Body)
	if err != nil {
		respondError(c, "message", err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// Purchase reserves the listing for the caller and opens a pending transaction.
func (h *ListingHandler) Purchase(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tx, err := h.market.InitiatePurchase(id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, "purchase", err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}
