package validation

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/mileoa/vehicle-accounting/internal/app/ds"
)

// fakeCatalog - справочник в памяти: бренды 1..3, предприятия 1..2
type fakeCatalog struct{}

func (fakeCatalog) GetBrand(id int) (ds.Brand, error) {
	if id >= 1 && id <= 3 {
		return ds.Brand{ID: uint(id), Name: "brand"}, nil
	}
	return ds.Brand{}, fmt.Errorf("бренд не найден")
}

func (fakeCatalog) GetEnterprise(id int) (ds.Enterprise, error) {
	if id >= 1 && id <= 2 {
		return ds.Enterprise{ID: uint(id), Name: "enterprise"}, nil
	}
	return ds.Enterprise{}, fmt.Errorf("предприятие не найдено")
}

func validFields() RawFieldMap {
	return RawFieldMap{
		"car_number":          "А123ВС",
		"price":               "1500000",
		"year_of_manufacture": "2020",
		"mileage":             "50000",
		"description":         "Тестовый автомобиль",
		"brand":               "1",
		"enterprise":          "1",
		"purchase_datetime":   "2023-01-15T10:30",
	}
}

func TestValidateOK(t *testing.T) {
	v, errs := Validate(validFields(), fakeCatalog{})
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if v.CarNumber != "А123ВС" {
		t.Errorf("car number: got %q", v.CarNumber)
	}
	if v.Price != 1500000 {
		t.Errorf("price: got %v", v.Price)
	}
	if v.Year != 2020 || v.Mileage != 50000 {
		t.Errorf("year/mileage: got %d/%d", v.Year, v.Mileage)
	}
	if v.BrandID != 1 || v.EnterpriseID != 1 {
		t.Errorf("references: got brand=%d enterprise=%d", v.BrandID, v.EnterpriseID)
	}
	if v.PurchaseDatetime == nil {
		t.Fatal("purchase datetime not parsed")
	}
	want := time.Date(2023, 1, 15, 10, 30, 0, 0, time.UTC)
	if !v.PurchaseDatetime.Equal(want) {
		t.Errorf("purchase datetime: got %v, want %v", v.PurchaseDatetime, want)
	}
}

func TestValidateEmptyForm(t *testing.T) {
	_, errs := Validate(RawFieldMap{}, fakeCatalog{})
	if errs == nil {
		t.Fatal("expected errors for empty form")
	}
	for _, field := range []string{"car_number", "price", "year_of_manufacture", "mileage", "brand", "enterprise"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected error for required field %q", field)
		}
	}
	// необязательные поля не дают ошибок при пустой форме
	if _, ok := errs["description"]; ok {
		t.Error("description must be optional")
	}
	if _, ok := errs["purchase_datetime"]; ok {
		t.Error("purchase_datetime must be optional")
	}
}

func TestValidateFieldRules(t *testing.T) {
	cases := []struct {
		name      string
		field     string
		value     string
		wantError bool
	}{
		{"car number only spaces", "car_number", "   ", true},
		{"negative price", "price", "-1", true},
		{"price not a number", "price", "дорого", true},
		{"zero price ok", "price", "0", false},
		{"year before cars existed", "year_of_manufacture", "1850", true},
		{"year far in the future", "year_of_manufacture", strconv.Itoa(time.Now().Year() + 2), true},
		{"next year ok", "year_of_manufacture", strconv.Itoa(time.Now().Year() + 1), false},
		{"negative mileage", "mileage", "-5", true},
		{"fractional mileage", "mileage", "10.5", true},
		{"unknown brand", "brand", "99", true},
		{"brand not a number", "brand", "abc", true},
		{"unknown enterprise", "enterprise", "99", true},
		{"bad purchase datetime", "purchase_datetime", "вчера", true},
		{"rfc3339 purchase datetime", "purchase_datetime", "2023-01-15T10:30:00Z", false},
		{"date only purchase datetime", "purchase_datetime", "2023-01-15", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := validFields()
			fields[tc.field] = tc.value
			_, errs := Validate(fields, fakeCatalog{})
			if tc.wantError {
				if errs == nil || errs[tc.field] == "" {
					t.Fatalf("expected error for %s=%q, got %v", tc.field, tc.value, errs)
				}
				return
			}
			if errs != nil {
				t.Fatalf("unexpected errors for %s=%q: %v", tc.field, tc.value, errs)
			}
		})
	}
}

func TestValidateKeepsInputUntouched(t *testing.T) {
	fields := RawFieldMap{"car_number": "  А123ВС  "}
	v, _ := Validate(fields, fakeCatalog{})
	if fields["car_number"] != "  А123ВС  " {
		t.Error("validator must not mutate the submitted field map")
	}
	_ = v
}
