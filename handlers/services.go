package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	bookingRepo "salonbook/database/repository/booking"
	serviceRepo "salonbook/database/repository/service"
	"salonbook/models"
	"salonbook/services/storage"
	"salonbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const serviceCacheTTL = 5 * time.Minute

// ServiceHandler serves the service catalog. Public reads go through the
// Redis cache; admin writes invalidate it.
type ServiceHandler struct {
	Repo     serviceRepo.ServiceRepository
	Bookings bookingRepo.BookingRepository
	Storage  storage.StorageService
	Logger   *zap.Logger
}

func NewServiceHandler(repo serviceRepo.ServiceRepository, bookings bookingRepo.BookingRepository, store storage.StorageService, logger *zap.Logger) *ServiceHandler {
	return &ServiceHandler{Repo: repo, Bookings: bookings, Storage: store, Logger: logger}
}

func serviceListCacheKey(filter models.ServiceFilter) string {
	return fmt.Sprintf("services:list:%s:%t:%d:%d", filter.Category, filter.PopularOnly, filter.Page, filter.Limit)
}

// ListServicesHandler handles GET /api/services.
func (h *ServiceHandler) ListServicesHandler(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter := models.ServiceFilter{
		Category:    c.Query("category"),
		PopularOnly: c.Query("popular") == "true",
		ActiveOnly:  true,
		Page:        page,
		Limit:       limit,
	}
	if filter.Category != "" && !models.ValidCategory(filter.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category", "categories": models.ServiceCategories})
		return
	}

	cache := utils.GetCacheClient()
	key := serviceListCacheKey(filter)
	if cached, err := cache.Get(c.Request.Context(), key).Result(); err == nil {
		c.Data(http.StatusOK, "application/json", []byte(cached))
		return
	}

	services, total, err := h.Repo.List(filter)
	if err != nil {
		h.Logger.Error("failed to list services", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch services"})
		return
	}

	body, err := json.Marshal(gin.H{"services": services, "total": total, "page": filter.Page, "limit": filter.Limit})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode services"})
		return
	}
	if err := cache.Set(c.Request.Context(), key, body, serviceCacheTTL).Err(); err != nil {
		h.Logger.Warn("service cache write failed", zap.Error(err))
	}
	c.Data(http.StatusOK, "application/json", body)
}

// PopularServicesHandler handles GET /api/services/popular.
func (h *ServiceHandler) PopularServicesHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "6"))

	cache := utils.GetCacheClient()
	key := fmt.Sprintf("services:list:popular:%d", limit)
	if cached, err := cache.Get(c.Request.Context(), key).Result(); err == nil {
		c.Data(http.StatusOK, "application/json", []byte(cached))
		return
	}

	services, err := h.Repo.ListPopular(limit)
	if err != nil {
		h.Logger.Error("failed to list popular services", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch services"})
		return
	}

	body, err := json.Marshal(gin.H{"services": services})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode services"})
		return
	}
	if err := cache.Set(c.Request.Context(), key, body, serviceCacheTTL).Err(); err != nil {
		h.Logger.Warn("service cache write failed", zap.Error(err))
	}
	c.Data(http.StatusOK, "application/json", body)
}

// CategoriesHandler handles GET /api/services/categories.
func (h *ServiceHandler) CategoriesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": models.ServiceCategories})
}

// GetServiceHandler handles GET /api/services/:id. The remaining daily
// capacity for today is counted from persisted bookings, not a stored counter.
func (h *ServiceHandler) GetServiceHandler(c *gin.Context) {
	svc, err := h.Repo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, serviceRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
			return
		}
		h.Logger.Error("failed to fetch service", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch service"})
		return
	}

	resp := gin.H{"service": svc}
	if svc.MaxBookingsPerDay > 0 {
		today := time.Now().Format("2006-01-02")
		used, err := h.Bookings.CountActiveForService(svc.ID, today)
		if err != nil {
			h.Logger.Warn("failed to count bookings for service", zap.String("serviceId", svc.ID), zap.Error(err))
		} else {
			remaining := svc.MaxBookingsPerDay - int(used)
			if remaining < 0 {
				remaining = 0
			}
			resp["availableToday"] = remaining
		}
	}
	c.JSON(http.StatusOK, resp)
}

// CreateServiceHandler handles POST /api/services (admin).
func (h *ServiceHandler) CreateServiceHandler(c *gin.Context) {
	var svc models.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if err := validateService(&svc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc.ID = uuid.New().String()
	svc.IsActive = true
	if err := h.Repo.Create(&svc); err != nil {
		h.Logger.Error("failed to create service", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create service"})
		return
	}
	h.invalidateListCache(c)
	c.JSON(http.StatusCreated, gin.H{"service": svc})
}

// UpdateServiceHandler handles PUT /api/services/:id (admin).
func (h *ServiceHandler) UpdateServiceHandler(c *gin.Context) {
	existing, err := h.Repo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, serviceRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch service"})
		return
	}

	var svc models.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	svc.ID = existing.ID
	svc.CreatedAt = existing.CreatedAt
	if svc.Image == "" {
		svc.Image = existing.Image
	}
	if err := validateService(&svc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Repo.Update(&svc); err != nil {
		h.Logger.Error("failed to update service", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update service"})
		return
	}
	h.invalidateListCache(c)
	c.JSON(http.StatusOK, gin.H{"service": svc})
}

// DeleteServiceHandler handles DELETE /api/services/:id (admin). Services are
// deactivated rather than removed so existing bookings keep a valid reference.
func (h *ServiceHandler) DeleteServiceHandler(c *gin.Context) {
	if err := h.Repo.Deactivate(c.Param("id")); err != nil {
		if errors.Is(err, serviceRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
			return
		}
		h.Logger.Error("failed to deactivate service", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate service"})
		return
	}
	h.invalidateListCache(c)
	c.JSON(http.StatusOK, gin.H{"message": "service deactivated"})
}

// UploadServiceImageHandler handles POST /api/services/:id/image (admin).
func (h *ServiceHandler) UploadServiceImageHandler(c *gin.Context) {
	svc, err := h.Repo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, serviceRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch service"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	defer os.Remove(tmpPath)

	url, err := h.Storage.UploadFile(c.Request.Context(), tmpPath, "services")
	if err != nil {
		h.Logger.Error("image upload failed", zap.String("serviceId", svc.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
		return
	}

	svc.Image = url
	if err := h.Repo.Update(svc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update service"})
		return
	}
	h.invalidateListCache(c)
	c.JSON(http.StatusOK, gin.H{"image": url})
}

func (h *ServiceHandler) invalidateListCache(c *gin.Context) {
	cache := utils.GetCacheClient()
	iter := cache.Scan(c.Request.Context(), 0, "services:list:*", 100).Iterator()
	for iter.Next(c.Request.Context()) {
		if err := cache.Del(c.Request.Context(), iter.Val()).Err(); err != nil {
			h.Logger.Warn("service cache invalidation failed", zap.Error(err))
		}
	}
}

func validateService(svc *models.Service) error {
	if svc.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if !models.ValidCategory(svc.Category) {
		return fmt.Errorf("category must be one of %v", models.ServiceCategories)
	}
	if svc.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	if svc.Duration < 15 {
		return fmt.Errorf("duration must be at least 15 minutes")
	}
	return nil
}
