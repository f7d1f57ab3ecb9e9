package ds

import "time"

// Vehicle - учётная запись машины автопарка. Идентификатор для веб-маршрутов -
// уникальный номер машины (car_number), числовой id остаётся первичным ключом в БД.
type Vehicle struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	CarNumber         string     `json:"car_number" gorm:"uniqueIndex;size:16;not null"`
	Price             float64    `json:"price" gorm:"not null"`
	YearOfManufacture int        `json:"year_of_manufacture" gorm:"not null"`
	Mileage           int        `json:"mileage" gorm:"not null"`
	Description       string     `json:"description"`
	PurchaseDatetime  *time.Time `json:"purchase_datetime"`
	BrandID           uint       `json:"brand_id" gorm:"not null"`
	Brand             Brand      `json:"brand" gorm:"foreignKey:BrandID"`
	EnterpriseID      uint       `json:"enterprise_id" gorm:"not null"`
	Enterprise        Enterprise `json:"enterprise" gorm:"foreignKey:EnterpriseID"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Brand - справочник брендов (read-only для этой подсистемы)
type Brand struct {
	ID                     uint   `json:"id" gorm:"primaryKey"`
	Name                   string `json:"name" gorm:"size:100;not null"`
	VehicleType            string `json:"vehicle_type" gorm:"size:50"` // sedan / truck / bus / suv
	FuelTankCapacityLiters int    `json:"fuel_tank_capacity_liters"`
	LoadCapacityKg         int    `json:"load_capacity_kg"`
	SeatsNumber            int    `json:"seats_number"`
}

// Enterprise - справочник предприятий (read-only для этой подсистемы)
type Enterprise struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"size:100;not null"`
	City     string `json:"city" gorm:"size:100"`
	Timezone string `json:"timezone" gorm:"size:64;default:UTC"`
}
