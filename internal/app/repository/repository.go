package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mileoa/vehicle-accounting/internal/app/ds"
	"github.com/mileoa/vehicle-accounting/internal/app/validation"
)

var (
	ErrVehicleNotFound    = errors.New("машина не найдена")
	ErrCarNumberTaken     = errors.New("машина с таким номером уже существует")
	ErrBrandNotFound      = errors.New("бренд не найден")
	ErrEnterpriseNotFound = errors.New("предприятие не найдено")
	ErrUserNotFound       = errors.New("пользователь не найден")
	ErrSessionNotFound    = errors.New("сессия не найдена")
)

type Repository struct {
	db *gorm.DB
}

func New(dsn string) (*Repository, error) {
	// TranslateError нужен, чтобы нарушение уникального индекса по car_number
	// приходило как gorm.ErrDuplicatedKey независимо от драйвера
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB - репозиторий поверх готового подключения (тесты используют sqlite)
func NewWithDB(db *gorm.DB) (*Repository, error) {
	err := db.AutoMigrate(
		&ds.Brand{},
		&ds.Enterprise{},
		&ds.Vehicle{},
		&ds.User{},
		&ds.Session{},
	)
	if err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return &Repository{db: db}, nil
}

// ==================== МАШИНЫ ====================

// VehicleFilter - фильтры списка/экспорта машин
type VehicleFilter struct {
	EnterpriseID uint
	BrandID      uint
}

func (r *Repository) vehicleQuery(f VehicleFilter) *gorm.DB {
	query := r.db.Model(&ds.Vehicle{}).Preload("Brand").Preload("Enterprise")
	if f.EnterpriseID != 0 {
		query = query.Where("enterprise_id = ?", f.EnterpriseID)
	}
	if f.BrandID != 0 {
		query = query.Where("brand_id = ?", f.BrandID)
	}
	return query
}

// ListVehicles - страница списка машин в порядке создания + общее количество
func (r *Repository) ListVehicles(page, pageSize int, f VehicleFilter) ([]ds.Vehicle, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	query := r.vehicleQuery(f)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vehicles []ds.Vehicle
	err := query.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&vehicles).Error
	if err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

// ListAllVehicles - вся подборка без пагинации (экспорт)
func (r *Repository) ListAllVehicles(f VehicleFilter) ([]ds.Vehicle, error) {
	var vehicles []ds.Vehicle
	err := r.vehicleQuery(f).Order("id ASC").Find(&vehicles).Error
	return vehicles, err
}

// GetVehicleByNumber - машина по номеру (точное сравнение, с учётом регистра)
func (r *Repository) GetVehicleByNumber(carNumber string) (ds.Vehicle, error) {
	var vehicle ds.Vehicle
	err := r.db.Preload("Brand").Preload("Enterprise").
		Where("car_number = ?", carNumber).First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ds.Vehicle{}, ErrVehicleNotFound
	}
	if err != nil {
		return ds.Vehicle{}, err
	}
	return vehicle, nil
}

// CreateVehicle - вставка новой машины. Уникальность номера обеспечивает
// индекс БД, поэтому два конкурентных create с одним номером дадут
// ровно один успех и один ErrCarNumberTaken.
func (r *Repository) CreateVehicle(draft *validation.ValidatedVehicle) (ds.Vehicle, error) {
	vehicle := ds.Vehicle{
		CarNumber:         draft.CarNumber,
		Price:             draft.Price,
		YearOfManufacture: draft.Year,
		Mileage:           draft.Mileage,
		Description:       draft.Description,
		PurchaseDatetime:  draft.PurchaseDatetime,
		BrandID:           draft.BrandID,
		EnterpriseID:      draft.EnterpriseID,
	}
	err := r.db.Create(&vehicle).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ds.Vehicle{}, ErrCarNumberTaken
	}
	if err != nil {
		return ds.Vehicle{}, err
	}
	return r.GetVehicleByNumber(vehicle.CarNumber)
}

// UpdateVehicleByNumber - замена изменяемых полей существующей машины.
// Номер (идентичность) через update не меняется.
func (r *Repository) UpdateVehicleByNumber(carNumber string, draft *validation.ValidatedVehicle) (ds.Vehicle, error) {
	var vehicle ds.Vehicle
	err := r.db.Where("car_number = ?", carNumber).First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ds.Vehicle{}, ErrVehicleNotFound
	}
	if err != nil {
		return ds.Vehicle{}, err
	}

	vehicle.Price = draft.Price
	vehicle.YearOfManufacture = draft.Year
	vehicle.Mileage = draft.Mileage
	vehicle.Description = draft.Description
	vehicle.PurchaseDatetime = draft.PurchaseDatetime
	vehicle.BrandID = draft.BrandID
	vehicle.EnterpriseID = draft.EnterpriseID

	if err := r.db.Save(&vehicle).Error; err != nil {
		return ds.Vehicle{}, err
	}
	return r.GetVehicleByNumber(carNumber)
}

// DeleteVehicleByNumber - удаление машины по номеру
func (r *Repository) DeleteVehicleByNumber(carNumber string) error {
	result := r.db.Where("car_number = ?", carNumber).Delete(&ds.Vehicle{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

// ==================== СПРАВОЧНИКИ ====================

func (r *Repository) GetBrands() ([]ds.Brand, error) {
	var brands []ds.Brand
	err := r.db.Order("name ASC").Find(&brands).Error
	return brands, err
}

func (r *Repository) GetBrand(id int) (ds.Brand, error) {
	var brand ds.Brand
	err := r.db.Where("id = ?", id).First(&brand).Error
	if err != nil {
		return ds.Brand{}, ErrBrandNotFound
	}
	return brand, nil
}

func (r *Repository) GetEnterprises() ([]ds.Enterprise, error) {
	var enterprises []ds.Enterprise
	err := r.db.Order("name ASC").Find(&enterprises).Error
	return enterprises, err
}

func (r *Repository) GetEnterprise(id int) (ds.Enterprise, error) {
	var enterprise ds.Enterprise
	err := r.db.Where("id = ?", id).First(&enterprise).Error
	if err != nil {
		return ds.Enterprise{}, ErrEnterpriseNotFound
	}
	return enterprise, nil
}

// SeedReferenceData - наполнение пустых справочников стартовыми значениями,
// чтобы форма создания машины имела что выбирать на свежей БД
func (r *Repository) SeedReferenceData() error {
	var count int64
	if err := r.db.Model(&ds.Brand{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		brands := []ds.Brand{
			{Name: "Lada", VehicleType: "sedan", FuelTankCapacityLiters: 50, LoadCapacityKg: 400, SeatsNumber: 5},
			{Name: "Kamaz", VehicleType: "truck", FuelTankCapacityLiters: 350, LoadCapacityKg: 10000, SeatsNumber: 3},
			{Name: "PAZ", VehicleType: "bus", FuelTankCapacityLiters: 105, LoadCapacityKg: 2500, SeatsNumber: 25},
		}
		if err := r.db.Create(&brands).Error; err != nil {
			return err
		}
		logrus.Infof("seeded %d brands", len(brands))
	}

	if err := r.db.Model(&ds.Enterprise{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		enterprises := []ds.Enterprise{
			{Name: "Автобаза №1", City: "Москва", Timezone: "Europe/Moscow"},
			{Name: "Автобаза №2", City: "Новосибирск", Timezone: "Asia/Novosibirsk"},
		}
		if err := r.db.Create(&enterprises).Error; err != nil {
			return err
		}
		logrus.Infof("seeded %d enterprises", len(enterprises))
	}
	return nil
}

// ==================== ПОЛЬЗОВАТЕЛИ ====================

// CreateUser - создание пользователя, пароль хешируется здесь
func (r *Repository) CreateUser(login, password, name, role string) (ds.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ds.User{}, err
	}
	user := ds.User{
		Login:    login,
		Password: string(hash),
		Name:     name,
		Role:     role,
	}
	if err := r.db.Create(&user).Error; err != nil {
		return ds.User{}, err
	}
	return user, nil
}

func (r *Repository) GetUserByLogin(login string) (ds.User, error) {
	var user ds.User
	err := r.db.Where("login = ?", login).First(&user).Error
	if err != nil {
		return ds.User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *Repository) GetUser(id uint) (ds.User, error) {
	var user ds.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return ds.User{}, ErrUserNotFound
	}
	return user, nil
}

// EnsureAdmin - гарантирует наличие стартовой учётной записи администратора
func (r *Repository) EnsureAdmin(login, password string) error {
	if login == "" || password == "" {
		return nil
	}
	if _, err := r.GetUserByLogin(login); err == nil {
		return nil
	}
	_, err := r.CreateUser(login, password, login, ds.RoleAdmin)
	if err == nil {
		logrus.Infof("created default admin user %q", login)
	}
	return err
}

// ==================== СЕССИИ ====================

// CreateSession - новая сессия пользователя с токеном uuid
func (r *Repository) CreateSession(userID uint, ttl time.Duration) (ds.Session, error) {
	session := ds.Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := r.db.Create(&session).Error; err != nil {
		return ds.Session{}, err
	}
	return session, nil
}

// GetSession - живая сессия по токену; истекшая удаляется и не возвращается
func (r *Repository) GetSession(token string) (ds.Session, error) {
	var session ds.Session
	err := r.db.Where("token = ?", token).First(&session).Error
	if err != nil {
		return ds.Session{}, ErrSessionNotFound
	}
	if session.Expired(time.Now()) {
		r.db.Where("token = ?", token).Delete(&ds.Session{})
		return ds.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// DeleteSession - инвалидация сессии (logout)
func (r *Repository) DeleteSession(token string) error {
	return r.db.Where("token = ?", token).Delete(&ds.Session{}).Error
}

// DeleteExpiredSessions - чистка истекших сессий
func (r *Repository) DeleteExpiredSessions() error {
	return r.db.Where("expires_at <= ?", time.Now()).Delete(&ds.Session{}).Error
}
