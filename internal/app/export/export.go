package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"

	"github.com/mileoa/vehicle-accounting/internal/app/ds"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Artifact - одноразовый результат экспорта: байты + заголовки для отдачи файлом
type Artifact struct {
	Data        []byte
	ContentType string
	Filename    string
}

// vehicleRow - строка экспорта с доменными именами полей.
// Бренд и предприятие отдаются именами, а не id.
type vehicleRow struct {
	CarNumber         string  `json:"car_number"`
	Brand             string  `json:"brand"`
	Enterprise        string  `json:"enterprise"`
	Price             float64 `json:"price"`
	YearOfManufacture int     `json:"year_of_manufacture"`
	Mileage           int     `json:"mileage"`
	Description       string  `json:"description"`
	PurchaseDatetime  *string `json:"purchase_datetime"`
}

var csvHeader = []string{
	"car_number", "brand", "enterprise", "price",
	"year_of_manufacture", "mileage", "description", "purchase_datetime",
}

// Vehicles - сериализация коллекции машин в выбранный формат.
// Неизвестный формат не считается ошибкой: отдаём CSV по умолчанию.
func Vehicles(items []ds.Vehicle, format string) (Artifact, error) {
	if format == FormatJSON {
		return vehiclesJSON(items)
	}
	return vehiclesCSV(items)
}

func vehiclesJSON(items []ds.Vehicle) (Artifact, error) {
	rows := make([]vehicleRow, 0, len(items))
	for _, v := range items {
		rows = append(rows, toRow(v))
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Data:        data,
		ContentType: "application/json",
		Filename:    "vehicles.json",
	}, nil
}

func vehiclesCSV(items []ds.Vehicle) (Artifact, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return Artifact{}, err
	}
	for _, v := range items {
		row := toRow(v)
		purchase := ""
		if row.PurchaseDatetime != nil {
			purchase = *row.PurchaseDatetime
		}
		record := []string{
			row.CarNumber,
			row.Brand,
			row.Enterprise,
			strconv.FormatFloat(row.Price, 'f', 2, 64),
			strconv.Itoa(row.YearOfManufacture),
			strconv.Itoa(row.Mileage),
			row.Description,
			purchase,
		}
		if err := w.Write(record); err != nil {
			return Artifact{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Artifact{}, err
	}

	return Artifact{
		Data:        buf.Bytes(),
		ContentType: "text/csv; charset=utf-8",
		Filename:    "vehicles.csv",
	}, nil
}

func toRow(v ds.Vehicle) vehicleRow {
	row := vehicleRow{
		CarNumber:         v.CarNumber,
		Brand:             v.Brand.Name,
		Enterprise:        v.Enterprise.Name,
		Price:             v.Price,
		YearOfManufacture: v.YearOfManufacture,
		Mileage:           v.Mileage,
		Description:       v.Description,
	}
	if v.PurchaseDatetime != nil {
		iso := v.PurchaseDatetime.Format(time.RFC3339)
		row.PurchaseDatetime = &iso
	}
	return row
}
