package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mileoa/vehicle-accounting/internal/app/auth"
	"github.com/mileoa/vehicle-accounting/internal/app/export"
	"github.com/mileoa/vehicle-accounting/internal/app/middleware"
	"github.com/mileoa/vehicle-accounting/internal/app/repository"
	"github.com/mileoa/vehicle-accounting/internal/app/service"
	"github.com/mileoa/vehicle-accounting/internal/app/validation"
)

const flashCookieName = "flashmsg"

type Handler struct {
	Repository     *repository.Repository
	Sessions       *service.SessionService
	JWTService     *auth.JWTService
	AuthMiddleware *middleware.AuthMiddleware
	PageSize       int
}

func NewHandler(r *repository.Repository, sessions *service.SessionService, jwtService *auth.JWTService, authMiddleware *middleware.AuthMiddleware, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Handler{
		Repository:     r,
		Sessions:       sessions,
		JWTService:     jwtService,
		AuthMiddleware: authMiddleware,
		PageSize:       pageSize,
	}
}

// flashMessage - одноразовое уведомление, переживающее redirect после мутации
type flashMessage struct {
	Level string // success / danger
	Text  string
}

// setFlash - кладёт уведомление в cookie до следующей отрисовки страницы.
// Кириллица в значении cookie недопустима, поэтому base64.
func setFlash(ctx *gin.Context, level, text string) {
	value := base64.URLEncoding.EncodeToString([]byte(level + "|" + text))
	ctx.SetCookie(flashCookieName, value, 60, "/", "", false, true)
}

// popFlash - читает и гасит уведомление
func popFlash(ctx *gin.Context) []flashMessage {
	raw, err := ctx.Cookie(flashCookieName)
	if err != nil || raw == "" {
		return nil
	}
	ctx.SetCookie(flashCookieName, "", -1, "/", "", false, true)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil
	}
	return []flashMessage{{Level: parts[0], Text: parts[1]}}
}

// ==================== АВТОРИЗАЦИЯ ====================

// GetLoginPage - форма входа
func (h *Handler) GetLoginPage(ctx *gin.Context) {
	// уже авторизованных на форму входа не пускаем
	if token, err := ctx.Cookie(middleware.SessionCookieName); err == nil {
		if _, err := h.Sessions.Authorize(token); err == nil {
			ctx.Redirect(http.StatusFound, "/vehicles/")
			return
		}
	}
	ctx.HTML(http.StatusOK, "login.html", gin.H{})
}

// PostLogin - проверка логина/пароля и установка cookie сессии
func (h *Handler) PostLogin(ctx *gin.Context) {
	username := ctx.PostForm("username")
	password := ctx.PostForm("password")

	session, err := h.Sessions.Authenticate(username, password)
	if err != nil {
		// остаёмся на /login/ с ошибкой, логин в форме сохраняем
		ctx.HTML(http.StatusOK, "login.html", gin.H{
			"Error":    "Неверное имя пользователя или пароль",
			"Username": username,
		})
		return
	}

	maxAge := int(session.ExpiresAt.Sub(session.CreatedAt).Seconds())
	ctx.SetCookie(middleware.SessionCookieName, session.Token, maxAge, "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/vehicles/")
}

// Logout - уничтожение сессии и возврат на форму входа
func (h *Handler) Logout(ctx *gin.Context) {
	if token, err := ctx.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.Sessions.Destroy(token); err != nil {
			logrus.Errorf("logout: %v", err)
		}
	}
	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/login/")
}

// ==================== МАШИНЫ (ВЕБ) ====================

func vehicleFilterFromQuery(ctx *gin.Context) repository.VehicleFilter {
	var f repository.VehicleFilter
	if id, err := strconv.Atoi(ctx.Query("enterprise_id")); err == nil && id > 0 {
		f.EnterpriseID = uint(id)
	}
	if id, err := strconv.Atoi(ctx.Query("brand_id")); err == nil && id > 0 {
		f.BrandID = uint(id)
	}
	return f
}

// GetVehicles - список машин с пагинацией
func (h *Handler) GetVehicles(ctx *gin.Context) {
	page, err := strconv.Atoi(ctx.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	vehicles, total, err := h.Repository.ListVehicles(page, h.PageSize, vehicleFilterFromQuery(ctx))
	if err != nil {
		logrus.Error(err)
		ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"Error": "Ошибка загрузки списка машин",
		})
		return
	}

	totalPages := int((total + int64(h.PageSize) - 1) / int64(h.PageSize))
	pages := make([]int, 0, totalPages)
	for p := 1; p <= totalPages; p++ {
		pages = append(pages, p)
	}

	ctx.HTML(http.StatusOK, "vehicle_list.html", gin.H{
		"Vehicles":   vehicles,
		"Total":      total,
		"Page":       page,
		"TotalPages": totalPages,
		"Pages":      pages,
		"Messages":   popFlash(ctx),
	})
}

// referenceOptions - наборы брендов и предприятий для селектов формы
func (h *Handler) referenceOptions(ctx *gin.Context) (gin.H, bool) {
	brands, err := h.Repository.GetBrands()
	if err != nil {
		logrus.Error(err)
		ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": "Ошибка загрузки справочников"})
		return nil, false
	}
	enterprises, err := h.Repository.GetEnterprises()
	if err != nil {
		logrus.Error(err)
		ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": "Ошибка загрузки справочников"})
		return nil, false
	}
	return gin.H{"Brands": brands, "Enterprises": enterprises}, true
}

func vehicleFormValues(ctx *gin.Context) validation.RawFieldMap {
	fields := validation.RawFieldMap{}
	for _, name := range []string{
		"car_number", "price", "year_of_manufacture", "mileage",
		"description", "brand", "enterprise", "purchase_datetime",
	} {
		fields[name] = ctx.PostForm(name)
	}
	return fields
}

func (h *Handler) renderVehicleForm(ctx *gin.Context, template string, form validation.RawFieldMap, errs validation.ValidationErrors, extra gin.H) {
	options, ok := h.referenceOptions(ctx)
	if !ok {
		return
	}
	data := gin.H{
		"Form":   form,
		"Errors": errs,
	}
	for k, v := range options {
		data[k] = v
	}
	for k, v := range extra {
		data[k] = v
	}
	// форма с ошибками отдаётся тем же путём, без редиректа
	ctx.HTML(http.StatusOK, template, data)
}

// GetVehicleCreatePage - форма создания машины
func (h *Handler) GetVehicleCreatePage(ctx *gin.Context) {
	h.renderVehicleForm(ctx, "vehicle_create.html", validation.RawFieldMap{}, nil, nil)
}

// CreateVehicle - валидация и создание машины
func (h *Handler) CreateVehicle(ctx *gin.Context) {
	form := vehicleFormValues(ctx)

	draft, errs := validation.Validate(form, h.Repository)
	if errs != nil {
		h.renderVehicleForm(ctx, "vehicle_create.html", form, errs, nil)
		return
	}

	_, err := h.Repository.CreateVehicle(draft)
	if errors.Is(err, repository.ErrCarNumberTaken) {
		errs = validation.ValidationErrors{"car_number": "Машина с таким номером уже существует."}
		h.renderVehicleForm(ctx, "vehicle_create.html", form, errs, nil)
		return
	}
	if err != nil {
		logrus.Error(err)
		ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": "Не удалось создать машину"})
		return
	}

	setFlash(ctx, "success", "Машина успешно создана")
	ctx.Redirect(http.StatusFound, "/vehicles/")
}

// GetVehicle - детальная страница машины
func (h *Handler) GetVehicle(ctx *gin.Context) {
	carNumber := ctx.Param("car_number")

	vehicle, err := h.Repository.GetVehicleByNumber(carNumber)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		ctx.HTML(http.StatusNotFound, "error.html", gin.H{"Error": "Машина не найдена"})
		return
	}
	if err != nil {
		logrus.Error(err)
		ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": "Ошибка загрузки машины"})
		return
	}

	ctx.HTML(http.StatusOK, "vehicle_detail.html", gin.H{
		"Vehicle":  vehicle,
		"Messages": popFlash(ctx),
	})
}

// GetVehicleEditPage - форма изменения машины с текущими значениями
func (h *Handler) GetVehicleEditPage(ctx *gin.Context) {
	carNumber := ctx.Param("car_number")

	vehicle, err := h.Repository.GetVehicleByNumber(carNumber)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		ctx.HTML(http.StatusNotFound, "error.html", gin.H{"Error": "Машина не найдена"})
		return
	}
	if err != nil {
		logrus.Error(err)
		ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": "Ошибка загрузки машины"})
		return
	}

	form := validation.RawFieldMap{
		"car_number":          vehicle.CarNumber,
		"price":               strconv.FormatFloat(vehicle.Price, 'f', -1, 64),
		"year_of_manufacture": strconv.Itoa(vehicle.YearOfManufacture),
		"mileage":             strconv.Itoa(vehicle.Mileage),
		"description":         vehicle.Description,
		"brand":               strconv.FormatUint(uint64(vehicle.BrandID), 10),
		"enterprise":          strconv.FormatUint(uint64(vehicle.EnterpriseID), 10),
	}
	if vehicle.PurchaseDatetime != nil {
		form["purchase_datetime"] = vehicle.PurchaseDatetime.Format("2006-01-02T15:04")
	}

	h.renderVehicleForm(ctx, "vehicle_update.html", form, nil, gin.H{"Vehicle": vehicle})
}

// UpdateVehicle - валидация и сохранение изменений.
// Номер машины через редактирование не меняется.
func (h *Handler) UpdateVehicle(ctx *gin.Context) {
	carNumber := ctx.Param("car_number")

	vehicle, err := h.Repository.GetVehicleByNumber(carNumber)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		ctx.HTML(http.StatusNotFound, "error.html", gin.H{"Error": "Машина не найдена"})
		return
	}
	if err != nil {
		logrus.Error(err)
		ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": "Ошибка загрузки машины"})
		return
	}

	form := vehicleFormValues(ctx)
	form["car_number"] = carNumber // идентичность из URL, не из формы

	draft, errs := validation.Validate(form, h.Repository)
	if errs != nil {
		h.renderVehicleForm(ctx, "vehicle_update.html", form, errs, gin.H{"Vehicle": vehicle})
		return
	}

	if _, err := h.Repository.UpdateVehicleByNumber(carNumber, draft); err != nil {
		logrus.Error(err)
		ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": "Не удалось сохранить изменения"})
		return
	}

	setFlash(ctx, "success", "Машина успешно изменена")
	ctx.Redirect(http.StatusFound, "/vehicles/")
}

// GetVehicleDeletePage - страница подтверждения удаления, данные не трогает
func (h *Handler) GetVehicleDeletePage(ctx *gin.Context) {
	carNumber := ctx.Param("car_number")

	vehicle, err := h.Repository.GetVehicleByNumber(carNumber)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		ctx.HTML(http.StatusNotFound, "error.html", gin.H{"Error": "Машина не найдена"})
		return
	}
	if err != nil {
		logrus.Error(err)
		ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": "Ошибка загрузки машины"})
		return
	}

	ctx.HTML(http.StatusOK, "vehicle_delete.html", gin.H{"Vehicle": vehicle})
}

// DeleteVehicle - подтверждённое удаление
func (h *Handler) DeleteVehicle(ctx *gin.Context) {
	carNumber := ctx.Param("car_number")

	err := h.Repository.DeleteVehicleByNumber(carNumber)
	if errors.Is(err, repository.ErrVehicleNotFound) {
		ctx.HTML(http.StatusNotFound, "error.html", gin.H{"Error": "Машина не найдена"})
		return
	}
	if err != nil {
		logrus.Error(err)
		ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": "Не удалось удалить машину"})
		return
	}

	setFlash(ctx, "success", "Машина успешно удалена")
	ctx.Redirect(http.StatusFound, "/vehicles/")
}

// ExportVehicles - выгрузка всей подборки (без пагинации) в CSV или JSON.
// Неизвестный формат молча отдаёт CSV. Авторизация такая же, как у списка.
func (h *Handler) ExportVehicles(ctx *gin.Context) {
	format := ctx.DefaultQuery("export_format", export.FormatCSV)

	vehicles, err := h.Repository.ListAllVehicles(vehicleFilterFromQuery(ctx))
	if err != nil {
		logrus.Error(err)
		ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": "Ошибка экспорта"})
		return
	}

	artifact, err := export.Vehicles(vehicles, format)
	if err != nil {
		logrus.Error(err)
		ctx.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": "Ошибка экспорта"})
		return
	}

	ctx.Header("Content-Disposition", "attachment; filename="+artifact.Filename)
	ctx.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}
