package validation

import (
	"strconv"
	"strings"
	"time"

	"github.com/mileoa/vehicle-accounting/internal/app/ds"
)

// Нижняя граница года выпуска: машин старше автомобильной эры не бывает.
const MinYearOfManufacture = 1900

// RawFieldMap - сырые значения полей формы/запроса до валидации
type RawFieldMap map[string]string

// ValidationErrors - ошибки по полям: имя поля -> текст для пользователя
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// ValidatedVehicle - типизированный набор полей, прошедший валидацию
// и безопасный для записи в репозиторий
type ValidatedVehicle struct {
	CarNumber        string
	Price            float64
	Year             int
	Mileage          int
	Description      string
	PurchaseDatetime *time.Time
	BrandID          uint
	EnterpriseID     uint
}

// ReferenceCatalog - источник справочных данных для проверки внешних ссылок
type ReferenceCatalog interface {
	GetBrand(id int) (ds.Brand, error)
	GetEnterprise(id int) (ds.Enterprise, error)
}

// Форматы, в которых приходит purchase_datetime: datetime-local из HTML-формы,
// RFC3339 из API и пара распространённых текстовых вариантов.
var datetimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Validate - проверка полей машины. Возвращает либо готовый к сохранению
// ValidatedVehicle, либо карту ошибок по полям. Форма с ошибками должна
// перерисовываться с введёнными значениями, поэтому исходная карта не меняется.
func Validate(fields RawFieldMap, catalog ReferenceCatalog) (*ValidatedVehicle, ValidationErrors) {
	errs := ValidationErrors{}
	v := &ValidatedVehicle{}

	carNumber := strings.TrimSpace(fields["car_number"])
	if carNumber == "" {
		errs["car_number"] = "Обязательное поле."
	}
	v.CarNumber = carNumber

	priceStr := strings.TrimSpace(fields["price"])
	if priceStr == "" {
		errs["price"] = "Обязательное поле."
	} else if price, err := strconv.ParseFloat(priceStr, 64); err != nil {
		errs["price"] = "Введите число."
	} else if price < 0 {
		errs["price"] = "Цена не может быть отрицательной."
	} else {
		v.Price = price
	}

	yearStr := strings.TrimSpace(fields["year_of_manufacture"])
	maxYear := time.Now().Year() + 1
	if yearStr == "" {
		errs["year_of_manufacture"] = "Обязательное поле."
	} else if year, err := strconv.Atoi(yearStr); err != nil {
		errs["year_of_manufacture"] = "Введите целое число."
	} else if year < MinYearOfManufacture || year > maxYear {
		errs["year_of_manufacture"] = "Год выпуска должен быть в диапазоне " +
			strconv.Itoa(MinYearOfManufacture) + "–" + strconv.Itoa(maxYear) + "."
	} else {
		v.Year = year
	}

	mileageStr := strings.TrimSpace(fields["mileage"])
	if mileageStr == "" {
		errs["mileage"] = "Обязательное поле."
	} else if mileage, err := strconv.Atoi(mileageStr); err != nil {
		errs["mileage"] = "Введите целое число."
	} else if mileage < 0 {
		errs["mileage"] = "Пробег не может быть отрицательным."
	} else {
		v.Mileage = mileage
	}

	v.Description = strings.TrimSpace(fields["description"])

	if dtStr := strings.TrimSpace(fields["purchase_datetime"]); dtStr != "" {
		dt, err := parseDatetime(dtStr)
		if err != nil {
			errs["purchase_datetime"] = "Введите корректные дату и время."
		} else {
			v.PurchaseDatetime = &dt
		}
	}

	if id, ok := parseReference(fields["brand"]); !ok {
		errs["brand"] = "Обязательное поле."
	} else if _, err := catalog.GetBrand(id); err != nil {
		errs["brand"] = "Выберите корректный вариант."
	} else {
		v.BrandID = uint(id)
	}

	if id, ok := parseReference(fields["enterprise"]); !ok {
		errs["enterprise"] = "Обязательное поле."
	} else if _, err := catalog.GetEnterprise(id); err != nil {
		errs["enterprise"] = "Выберите корректный вариант."
	} else {
		v.EnterpriseID = uint(id)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return v, nil
}

func parseReference(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseDatetime(raw string) (time.Time, error) {
	var firstErr error
	for _, layout := range datetimeLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
