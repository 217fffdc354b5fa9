package handler

import (
	"net/http"
	"strings"
	"time"

	"automarket/internal/models"
	"automarket/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	svc      *service.CatalogService
	listings *service.ListingService
}

func NewCatalogHandler(svc *service.CatalogService, listings *service.ListingService) *CatalogHandler {
	return &CatalogHandler{svc: svc, listings: listings}
}

// Home handles GET /home.
func (h *CatalogHandler) Home(c *gin.Context) {
	feed, err := h.listings.Home()
	if err != nil {
		respondError(c, "home", err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *CatalogHandler) Brands(c *gin.Context) {
	list, err := h.svc.Brands()
	if err != nil {
		respondError(c, "catalog", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": list})
}

func (h *CatalogHandler) Models(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.Models(id)
	if err != nil {
		respondError(c, "catalog", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": list})
}

type CreateBrandRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=100"`
	Country     string `json:"country" binding:"max=100"`
	FoundedOn   string `json:"founded_on"` // YYYY-MM-DD
	Description string `json:"description"`
}

func (h *CatalogHandler) CreateBrand(c *gin.Context) {
	var req CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b := &models.Brand{
		Name:        strings.TrimSpace(req.Name),
		Country:     strings.TrimSpace(req.Country),
		Description: req.Description,
	}
	if req.FoundedOn != "" {
		t, err := time.Parse("2006-01-02", req.FoundedOn)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid founded_on format (use YYYY-MM-DD)"})
			return
		}
		b.FoundedOn = &t
	}
	if err := h.svc.CreateBrand(b); err != nil {
		respondError(c, "catalog", err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

type CreateModelRequest struct {
	Name         string  `json:"name" binding:"required,notblank,max=100"`
	LaunchYear   int     `json:"launch_year" binding:"required,vehicle_year"`
	FuelType     string  `json:"fuel_type" binding:"required,oneof=essence diesel hybride electrique gpl"`
	Transmission string  `json:"transmission" binding:"required,oneof=manuelle automatique semi-auto"`
	PowerHP      int     `json:"power_hp" binding:"min=0"`
	Consumption  float64 `json:"consumption" binding:"min=0"`
	Description  string  `json:"description"`
}

func (h *CatalogHandler) CreateModel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req CreateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m := &models.CarModel{
		Name:         strings.TrimSpace(req.Name),
		LaunchYear:   req.LaunchYear,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		PowerHP:      req.PowerHP,
		Consumption:  req.Consumption,
		Description:  req.Description,
	}
	if err := h.svc.CreateModel(id, m); err != nil {
		respondError(c, "catalog", err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// UploadLogo handles the multipart "logo" field.
func (h *CatalogHandler) UploadLogo(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	f, ok := openImage(c, "logo")
	if !ok {
		return
	}
	defer f.Close()
	b, err := h.svc.UploadLogo(c.Request.Context(), id, f)
	if err != nil {
		respondError(c, "catalog", err)
		return
	}
	c.JSON(http.StatusOK, b)
}
