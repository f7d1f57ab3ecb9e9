package repository

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mileoa/vehicle-accounting/internal/app/ds"
	"github.com/mileoa/vehicle-accounting/internal/app/validation"
)

var testDBCounter atomic.Int64

// newTestRepository - репозиторий поверх именованной in-memory sqlite.
// Именованная база с cache=shared нужна, чтобы пул соединений database/sql
// видел одни и те же таблицы; одно соединение убирает SQLITE_BUSY в тестах.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	name := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	repo, err := NewWithDB(db)
	require.NoError(t, err)
	require.NoError(t, repo.SeedReferenceData())
	return repo
}

func draftVehicle(carNumber string) *validation.ValidatedVehicle {
	return &validation.ValidatedVehicle{
		CarNumber: carNumber,
		Price:     1500000,
		Year:      2020,
		Mileage:   50000,
	}
}

func seededIDs(t *testing.T, repo *Repository) (uint, uint) {
	t.Helper()
	brands, err := repo.GetBrands()
	require.NoError(t, err)
	require.NotEmpty(t, brands)
	enterprises, err := repo.GetEnterprises()
	require.NoError(t, err)
	require.NotEmpty(t, enterprises)
	return brands[0].ID, enterprises[0].ID
}

func mustCreate(t *testing.T, repo *Repository, carNumber string) ds.Vehicle {
	t.Helper()
	brandID, enterpriseID := seededIDs(t, repo)
	draft := draftVehicle(carNumber)
	draft.BrandID = brandID
	draft.EnterpriseID = enterpriseID
	vehicle, err := repo.CreateVehicle(draft)
	require.NoError(t, err)
	return vehicle
}

func TestCreateAndGetVehicle(t *testing.T) {
	repo := newTestRepository(t)

	created := mustCreate(t, repo, "А123ВС")
	require.Equal(t, "А123ВС", created.CarNumber)
	require.NotEmpty(t, created.Brand.Name, "relations must come back resolved")
	require.NotEmpty(t, created.Enterprise.Name)

	got, err := repo.GetVehicleByNumber("А123ВС")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	_, err = repo.GetVehicleByNumber("Н000ЕТ")
	require.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestCreateVehicleDuplicateNumber(t *testing.T) {
	repo := newTestRepository(t)
	mustCreate(t, repo, "А123ВС")

	brandID, enterpriseID := seededIDs(t, repo)
	draft := draftVehicle("А123ВС")
	draft.BrandID = brandID
	draft.EnterpriseID = enterpriseID
	_, err := repo.CreateVehicle(draft)
	require.ErrorIs(t, err, ErrCarNumberTaken)
}

func TestCarNumberIsCaseSensitive(t *testing.T) {
	repo := newTestRepository(t)
	mustCreate(t, repo, "AB123")

	_, err := repo.GetVehicleByNumber("ab123")
	require.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestConcurrentCreateSameNumber(t *testing.T) {
	repo := newTestRepository(t)
	brandID, enterpriseID := seededIDs(t, repo)

	const attempts = 2
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			draft := draftVehicle("Х777ХХ")
			draft.BrandID = brandID
			draft.EnterpriseID = enterpriseID
			_, err := repo.CreateVehicle(draft)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflict int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrCarNumberTaken):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok, "exactly one create must succeed")
	require.Equal(t, 1, conflict, "the other must observe a conflict")
}

func TestUpdateVehicle(t *testing.T) {
	repo := newTestRepository(t)
	created := mustCreate(t, repo, "А123ВС")

	brandID, enterpriseID := seededIDs(t, repo)
	draft := draftVehicle("А123ВС")
	draft.BrandID = brandID
	draft.EnterpriseID = enterpriseID
	draft.Description = "Обновленное описание"
	draft.Mileage = 60000

	updated, err := repo.UpdateVehicleByNumber("А123ВС", draft)
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID, "identity must be preserved")
	require.Equal(t, "Обновленное описание", updated.Description)
	require.Equal(t, 60000, updated.Mileage)

	_, err = repo.UpdateVehicleByNumber("Н000ЕТ", draft)
	require.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestDeleteVehicle(t *testing.T) {
	repo := newTestRepository(t)
	mustCreate(t, repo, "А123ВС")

	require.NoError(t, repo.DeleteVehicleByNumber("А123ВС"))

	_, err := repo.GetVehicleByNumber("А123ВС")
	require.ErrorIs(t, err, ErrVehicleNotFound)

	// повторное удаление не обязано быть идемпотентным
	require.ErrorIs(t, repo.DeleteVehicleByNumber("А123ВС"), ErrVehicleNotFound)
}

func TestListVehiclesPagination(t *testing.T) {
	repo := newTestRepository(t)
	for i := 0; i < 5; i++ {
		mustCreate(t, repo, fmt.Sprintf("К%03dМН", i))
	}

	items, total, err := repo.ListVehicles(1, 2, VehicleFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, items, 2)

	// стабильный порядок создания
	require.Equal(t, "К000МН", items[0].CarNumber)
	require.Equal(t, "К001МН", items[1].CarNumber)

	items, _, err = repo.ListVehicles(3, 2, VehicleFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "К004МН", items[0].CarNumber)
}

func TestListVehiclesFilterByEnterprise(t *testing.T) {
	repo := newTestRepository(t)
	enterprises, err := repo.GetEnterprises()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(enterprises), 2)
	brands, err := repo.GetBrands()
	require.NoError(t, err)

	for i, entID := range []uint{enterprises[0].ID, enterprises[0].ID, enterprises[1].ID} {
		draft := draftVehicle(fmt.Sprintf("Е%03dКХ", i))
		draft.BrandID = brands[0].ID
		draft.EnterpriseID = entID
		_, err := repo.CreateVehicle(draft)
		require.NoError(t, err)
	}

	all, err := repo.ListAllVehicles(VehicleFilter{EnterpriseID: enterprises[0].ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestSessions(t *testing.T) {
	repo := newTestRepository(t)
	user, err := repo.CreateUser("Manager_Alex", "qwer1234qwer", "Алексей", ds.RoleManager)
	require.NoError(t, err)

	session, err := repo.CreateSession(user.ID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	got, err := repo.GetSession(session.Token)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.UserID)

	require.NoError(t, repo.DeleteSession(session.Token))
	_, err = repo.GetSession(session.Token)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestExpiredSessionNotReturned(t *testing.T) {
	repo := newTestRepository(t)
	user, err := repo.CreateUser("Manager_Alex", "qwer1234qwer", "Алексей", ds.RoleManager)
	require.NoError(t, err)

	session, err := repo.CreateSession(user.ID, -time.Minute)
	require.NoError(t, err)

	_, err = repo.GetSession(session.Token)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestEnsureAdminIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	require.NoError(t, repo.EnsureAdmin("admin", "secret123"))
	require.NoError(t, repo.EnsureAdmin("admin", "secret123"))

	user, err := repo.GetUserByLogin("admin")
	require.NoError(t, err)
	require.Equal(t, ds.RoleAdmin, user.Role)
}
