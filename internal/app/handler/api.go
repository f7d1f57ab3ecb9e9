package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mileoa/vehicle-accounting/internal/app/export"
	"github.com/mileoa/vehicle-accounting/internal/app/repository"
	"github.com/mileoa/vehicle-accounting/internal/app/validation"
)

// helper для единых ошибок API
func fail(ctx *gin.Context, code int, message string) {
	ctx.JSON(code, gin.H{
		"status":  "fail",
		"message": message,
	})
}

// ObtainToken - выдача пары JWT-токенов по логину/паролю
// @Summary Obtain token pair
// @Description Issue access and refresh tokens for login/password pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body handler.tokenRequest true "Credentials"
// @Success 200 {object} map[string]interface{} "Token pair"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /api/token/ [post]
func (h *Handler) ObtainToken(ctx *gin.Context) {
	var req tokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Repository.GetUserByLogin(req.Username)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		fail(ctx, http.StatusUnauthorized, "invalid credentials")
		return
	}

	access, err := h.JWTService.GenerateAccessToken(user.ID, user.Login, user.Role)
	if err != nil {
		fail(ctx, http.StatusInternalServerError, "failed to generate access token")
		return
	}
	refresh, err := h.JWTService.GenerateRefreshToken(user.ID, user.Login, user.Role)
	if err != nil {
		fail(ctx, http.StatusInternalServerError, "failed to generate refresh token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"access":     access,
		"refresh":    refresh,
		"expires_at": time.Now().Add(h.JWTService.AccessExpire()),
	})
}

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshToken - новая пара токенов по refresh-токену
// @Summary Refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body map[string]string true "Refresh token"
// @Success 200 {object} map[string]interface{} "Token pair"
// @Failure 401 {object} map[string]string "Invalid refresh token"
// @Router /api/token/refresh/ [post]
func (h *Handler) RefreshToken(ctx *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		fail(ctx, http.StatusBadRequest, "invalid request body")
		return
	}

	access, refresh, err := h.JWTService.RefreshTokenPair(req.Refresh)
	if err != nil {
		fail(ctx, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"access":     access,
		"refresh":    refresh,
		"expires_at": time.Now().Add(h.JWTService.AccessExpire()),
	})
}

// vehiclePayload - тело запроса создания/изменения машины в API.
// Приводится к RawFieldMap, чтобы веб-форма и API проходили один валидатор.
type vehiclePayload struct {
	CarNumber         string   `json:"car_number"`
	Price             *float64 `json:"price"`
	YearOfManufacture *int     `json:"year_of_manufacture"`
	Mileage           *int     `json:"mileage"`
	Description       string   `json:"description"`
	PurchaseDatetime  string   `json:"purchase_datetime"`
	BrandID           *uint    `json:"brand_id"`
	EnterpriseID      *uint    `json:"enterprise_id"`
}

func (p vehiclePayload) fields() validation.RawFieldMap {
	fields := validation.RawFieldMap{
		"car_number":        p.CarNumber,
		"description":       p.Description,
		"purchase_datetime": p.PurchaseDatetime,
	}
	if p.Price != nil {
		fields["price"] = strconv.FormatFloat(*p.Price, 'f', -1, 64)
	}
	if p.YearOfManufacture != nil {
		fields["year_of_manufacture"] = strconv.Itoa(*p.YearOfManufacture)
	}
	if p.Mileage != nil {
		fields["mileage"] = strconv.Itoa(*p.Mileage)
	}
	if p.BrandID != nil {
		fields["brand"] = strconv.FormatUint(uint64(*p.BrandID), 10)
	}
	if p.EnterpriseID != nil {
		fields["enterprise"] = strconv.FormatUint(uint64(*p.EnterpriseID), 10)
	}
	return fields
}

// GetVehiclesAPI - постраничный список машин
// @Summary List vehicles
// @Tags vehicles
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param enterprise_id query int false "Filter by enterprise"
// @Param brand_id query int false "Filter by brand"
// @Success 200 {object} map[string]interface{} "Vehicles page"
// @Router /api/vehicles/ [get]
func (h *Handler) GetVehiclesAPI(ctx *gin.Context) {
	page, err := strconv.Atoi(ctx.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(ctx.Query("page_size"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = h.PageSize
	}

	vehicles, total, err := h.Repository.ListVehicles(page, pageSize, vehicleFilterFromQuery(ctx))
	if err != nil {
		logrus.Error(err)
		fail(ctx, http.StatusInternalServerError, "failed to list vehicles")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"count":   total,
		"page":    page,
		"results": vehicles,
	})
}

// GetVehicleAPI - машина по номеру
func (h *Handler) GetVehicleAPI(ctx *gin.Context) {
	vehicle, err := h.Repository.GetVehicleByNumber(ctx.Param("car_number"))
	if errors.Is(err, repository.ErrVehicleNotFound) {
		fail(ctx, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		logrus.Error(err)
		fail(ctx, http.StatusInternalServerError, "failed to get vehicle")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "vehicle": vehicle})
}

// CreateVehicleAPI - создание машины через API
func (h *Handler) CreateVehicleAPI(ctx *gin.Context) {
	var payload vehiclePayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		fail(ctx, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, errs := validation.Validate(payload.fields(), h.Repository)
	if errs != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "fail", "errors": errs})
		return
	}

	vehicle, err := h.Repository.CreateVehicle(draft)
	if errors.Is(err, repository.ErrCarNumberTaken) {
		ctx.JSON(http.StatusConflict, gin.H{
			"status": "fail",
			"errors": gin.H{"car_number": "Машина с таким номером уже существует."},
		})
		return
	}
	if err != nil {
		logrus.Error(err)
		fail(ctx, http.StatusInternalServerError, "failed to create vehicle")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"status": "ok", "vehicle": vehicle})
}

// UpdateVehicleAPI - изменение машины через API
func (h *Handler) UpdateVehicleAPI(ctx *gin.Context) {
	carNumber := ctx.Param("car_number")

	var payload vehiclePayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		fail(ctx, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := payload.fields()
	fields["car_number"] = carNumber

	draft, errs := validation.Validate(fields, h.Repository)
	if errs != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "fail", "errors": errs})
		return
	}

	vehicle, err := h.Repository.UpdateVehicleByNumber(carNumber, draft)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		fail(ctx, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		logrus.Error(err)
		fail(ctx, http.StatusInternalServerError, "failed to update vehicle")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "vehicle": vehicle})
}

// DeleteVehicleAPI - удаление машины через API
func (h *Handler) DeleteVehicleAPI(ctx *gin.Context) {
	err := h.Repository.DeleteVehicleByNumber(ctx.Param("car_number"))
	if errors.Is(err, repository.ErrVehicleNotFound) {
		fail(ctx, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		logrus.Error(err)
		fail(ctx, http.StatusInternalServerError, "failed to delete vehicle")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "message": "vehicle deleted"})
}

// ExportVehiclesAPI - экспорт подборки машин (csv по умолчанию, json по запросу)
func (h *Handler) ExportVehiclesAPI(ctx *gin.Context) {
	format := ctx.DefaultQuery("export_format", export.FormatCSV)

	vehicles, err := h.Repository.ListAllVehicles(vehicleFilterFromQuery(ctx))
	if err != nil {
		logrus.Error(err)
		fail(ctx, http.StatusInternalServerError, "failed to export vehicles")
		return
	}

	artifact, err := export.Vehicles(vehicles, format)
	if err != nil {
		logrus.Error(err)
		fail(ctx, http.StatusInternalServerError, "failed to export vehicles")
		return
	}

	ctx.Header("Content-Disposition", "attachment; filename="+artifact.Filename)
	ctx.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

// GetBrandsAPI - справочник брендов
func (h *Handler) GetBrandsAPI(ctx *gin.Context) {
	brands, err := h.Repository.GetBrands()
	if err != nil {
		logrus.Error(err)
		fail(ctx, http.StatusInternalServerError, "failed to list brands")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "brands": brands})
}

// GetEnterprisesAPI - справочник предприятий
func (h *Handler) GetEnterprisesAPI(ctx *gin.Context) {
	enterprises, err := h.Repository.GetEnterprises()
	if err != nil {
		logrus.Error(err)
		fail(ctx, http.StatusInternalServerError, "failed to list enterprises")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "enterprises": enterprises})
}
