package export

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mileoa/vehicle-accounting/internal/app/ds"
)

func sampleVehicles() []ds.Vehicle {
	purchase := time.Date(2023, 1, 15, 10, 30, 0, 0, time.UTC)
	return []ds.Vehicle{
		{
			CarNumber:         "А123ВС",
			Price:             1500000,
			YearOfManufacture: 2020,
			Mileage:           50000,
			Description:       "Служебная, \"первая\" машина",
			PurchaseDatetime:  &purchase,
			Brand:             ds.Brand{Name: "Lada"},
			Enterprise:        ds.Enterprise{Name: "Автобаза №1"},
		},
		{
			CarNumber:         "В456ЕК",
			Price:             990000.5,
			YearOfManufacture: 2015,
			Mileage:           120000,
			Description:       "строка с запятой, и переводом\nстроки",
			Brand:             ds.Brand{Name: "Kamaz"},
			Enterprise:        ds.Enterprise{Name: "Автобаза №2"},
		},
	}
}

func TestVehiclesCSV(t *testing.T) {
	artifact, err := Vehicles(sampleVehicles(), FormatCSV)
	if err != nil {
		t.Fatalf("export csv: %v", err)
	}
	if artifact.Filename != "vehicles.csv" {
		t.Errorf("filename: got %q", artifact.Filename)
	}

	records, err := csv.NewReader(strings.NewReader(string(artifact.Data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	// заголовок + по строке на машину
	if len(records) != 3 {
		t.Fatalf("rows: got %d, want 3", len(records))
	}
	if records[0][0] != "car_number" || records[0][3] != "price" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][0] != "А123ВС" || records[1][3] != "1500000.00" {
		t.Errorf("unexpected first row: %v", records[1])
	}
	// кавычки и переводы строк пережили round-trip через csv.Reader
	if records[2][6] != "строка с запятой, и переводом\nстроки" {
		t.Errorf("description not escaped correctly: %q", records[2][6])
	}
	if records[2][7] != "" {
		t.Errorf("empty purchase datetime must stay empty, got %q", records[2][7])
	}
}

func TestVehiclesJSON(t *testing.T) {
	artifact, err := Vehicles(sampleVehicles(), FormatJSON)
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	if artifact.ContentType != "application/json" {
		t.Errorf("content type: got %q", artifact.ContentType)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(artifact.Data, &rows); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}
	if rows[0]["car_number"] != "А123ВС" {
		t.Errorf("car_number: got %v", rows[0]["car_number"])
	}
	if _, ok := rows[0]["price"].(float64); !ok {
		t.Errorf("price must serialize as number, got %T", rows[0]["price"])
	}
	if rows[0]["purchase_datetime"] != "2023-01-15T10:30:00Z" {
		t.Errorf("purchase_datetime: got %v", rows[0]["purchase_datetime"])
	}
	if rows[1]["purchase_datetime"] != nil {
		t.Errorf("missing purchase_datetime must be null, got %v", rows[1]["purchase_datetime"])
	}
	if rows[0]["brand"] != "Lada" || rows[0]["enterprise"] != "Автобаза №1" {
		t.Errorf("references must export as names: %v / %v", rows[0]["brand"], rows[0]["enterprise"])
	}
}

func TestVehiclesUnknownFormatFallsBackToCSV(t *testing.T) {
	artifact, err := Vehicles(sampleVehicles(), "xml")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if artifact.Filename != "vehicles.csv" {
		t.Errorf("unknown format must default to csv, got %q", artifact.Filename)
	}
}

func TestVehiclesEmptyCollection(t *testing.T) {
	artifact, err := Vehicles(nil, FormatJSON)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(artifact.Data) != "[]" {
		t.Errorf("empty export must be an empty array, got %q", artifact.Data)
	}
}
