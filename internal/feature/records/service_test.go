package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"memorial-records-api/internal/domain"
	"memorial-records-api/internal/repo"
	"memorial-records-api/pkg/derive"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Person{}, &domain.Row{}))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	db := newTestDB(t)
	svc := NewService(repo.NewPersonRepo(db), repo.NewRowRepo(db), nil, zap.NewNop())
	return svc, db
}

func intp(v int) *int       { return &v }
func strp(s string) *string { return &s }

func seedPersons(t *testing.T, db *gorm.DB, n int) []domain.Person {
	t.Helper()
	persons := make([]domain.Person, 0, n)
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		sex := "m"
		if i%2 == 0 {
			sex = "f"
		}
		p := domain.Person{
			ID:        fmt.Sprintf("p-%03d", i),
			Name:      fmt.Sprintf("اسم %d", i),
			EnName:    fmt.Sprintf("Name %d", i),
			Age:       intp(i),
			Sex:       &sex,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&p).Error)
		persons = append(persons, p)
	}
	return persons
}

func TestList_DefaultOrderNewestFirst(t *testing.T) {
	svc, db := newTestService(t)
	seedPersons(t, db, 5)

	res := svc.List(context.Background(), Query{})
	require.Len(t, res.Data, 5)
	assert.Equal(t, int64(5), res.Pagination.Total)
	// created_at 降序：最后插入的排最前
	assert.Equal(t, "p-004", res.Data[0].ID)
	assert.Equal(t, "p-000", res.Data[4].ID)
}

func TestList_AgeRangeInclusive(t *testing.T) {
	svc, db := newTestService(t)
	seedPersons(t, db, 30)

	res := svc.List(context.Background(), Query{Age: "10-20"})
	require.NotEmpty(t, res.Data)
	assert.Equal(t, int64(11), res.Pagination.Total)
	for _, p := range res.Data {
		require.NotNil(t, p.Age)
		assert.GreaterOrEqual(t, *p.Age, 10)
		assert.LessOrEqual(t, *p.Age, 20)
	}
}

func TestList_AgeGreaterThan(t *testing.T) {
	svc, db := newTestService(t)
	seedPersons(t, db, 40)

	res := svc.List(context.Background(), Query{Age: ">30"})
	assert.Equal(t, int64(9), res.Pagination.Total)
	for _, p := range res.Data {
		assert.Greater(t, *p.Age, 30)
	}
}

func TestList_MalformedAgeBehavesAsNoFilter(t *testing.T) {
	svc, db := newTestService(t)
	seedPersons(t, db, 10)

	plain := svc.List(context.Background(), Query{})
	malformed := svc.List(context.Background(), Query{Age: "abc"})
	assert.Equal(t, plain.Pagination.Total, malformed.Pagination.Total)
	assert.Equal(t, len(plain.Data), len(malformed.Data))
}

func TestList_SexFilter(t *testing.T) {
	svc, db := newTestService(t)
	seedPersons(t, db, 10)

	res := svc.List(context.Background(), Query{Sex: "f"})
	assert.Equal(t, int64(5), res.Pagination.Total)
	for _, p := range res.Data {
		assert.Equal(t, "f", *p.Sex)
	}

	// 非法值当没传
	ignored := svc.List(context.Background(), Query{Sex: "x"})
	assert.Equal(t, int64(10), ignored.Pagination.Total)
}

func TestList_NameMatchesEitherColumnCaseInsensitive(t *testing.T) {
	svc, db := newTestService(t)
	require.NoError(t, db.Create(&domain.Person{ID: "a", Name: "محمد", EnName: "Mohammed"}).Error)
	require.NoError(t, db.Create(&domain.Person{ID: "b", Name: "سارة", EnName: "Sara"}).Error)

	res := svc.List(context.Background(), Query{Name: "moham"})
	require.Equal(t, int64(1), res.Pagination.Total)
	assert.Equal(t, "a", res.Data[0].ID)

	res = svc.List(context.Background(), Query{Name: "سارة"})
	require.Equal(t, int64(1), res.Pagination.Total)
	assert.Equal(t, "b", res.Data[0].ID)
}

func TestList_CategoryFilterCountsDerivedSet(t *testing.T) {
	svc, db := newTestService(t)
	persons := seedPersons(t, db, 50)

	want := 0
	for _, p := range persons {
		if derive.CategoryOf(p.ID) == "journalist" {
			want++
		}
	}
	require.Greater(t, want, 0, "seed should produce at least one journalist")

	res := svc.List(context.Background(), Query{Category: "journalist", Limit: 10})
	assert.Equal(t, int64(want), res.Pagination.Total)
	assert.LessOrEqual(t, len(res.Data), 10)
	for _, p := range res.Data {
		assert.Equal(t, "journalist", derive.CategoryOf(p.ID))
	}
}

func TestList_CategoryFilterPreservesOrderAcrossPages(t *testing.T) {
	svc, db := newTestService(t)
	seedPersons(t, db, 60)

	var all []domain.Person
	for page := 1; ; page++ {
		res := svc.List(context.Background(), Query{Category: "civilian", Page: page, Limit: 5})
		if len(res.Data) == 0 {
			break
		}
		all = append(all, res.Data...)
	}
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt),
			"page concatenation must stay created_at descending")
	}
}

func TestList_CategoryCombinesWithOtherFilters(t *testing.T) {
	svc, db := newTestService(t)
	persons := seedPersons(t, db, 50)

	want := 0
	for _, p := range persons {
		if *p.Sex == "m" && derive.CategoryOf(p.ID) == "civilian" {
			want++
		}
	}
	res := svc.List(context.Background(), Query{Category: "civilian", Sex: "m"})
	assert.Equal(t, int64(want), res.Pagination.Total)
}

func TestList_FallbackToGenericRowsWhenNoPersons(t *testing.T) {
	svc, db := newTestService(t)
	blob := json.RawMessage(`{"col":"value"}`)
	require.NoError(t, db.Create(&domain.Row{ID: "r1", Data: blob}).Error)

	res := svc.List(context.Background(), Query{})
	assert.True(t, res.Fallback)
	require.Len(t, res.Rows, 1)
	assert.JSONEq(t, string(blob), string(res.Rows[0]))
}

func TestList_NoFallbackWhenFilterMatchesNothing(t *testing.T) {
	svc, db := newTestService(t)
	seedPersons(t, db, 3)
	require.NoError(t, db.Create(&domain.Row{ID: "r1", Data: json.RawMessage(`{}`)}).Error)

	res := svc.List(context.Background(), Query{Age: ">200"})
	assert.False(t, res.Fallback)
	assert.Empty(t, res.Data)
	assert.Equal(t, int64(0), res.Pagination.Total)
}

func TestList_Pagination(t *testing.T) {
	svc, db := newTestService(t)
	seedPersons(t, db, 25)

	res := svc.List(context.Background(), Query{Page: 2, Limit: 10})
	assert.Equal(t, 2, res.Pagination.Page)
	assert.Equal(t, int64(25), res.Pagination.Total)
	assert.Equal(t, int64(3), res.Pagination.TotalPages)
	assert.Len(t, res.Data, 10)
}

type failingPersonRepo struct{}

var errStore = errors.New("store unavailable")

func (failingPersonRepo) List(domain.PersonFilter, int, int) ([]domain.Person, int64, error) {
	return nil, 0, errStore
}
func (failingPersonRepo) ListIDs(domain.PersonFilter) ([]string, error)    { return nil, errStore }
func (failingPersonRepo) FindByIDs([]string) ([]domain.Person, error)      { return nil, errStore }
func (failingPersonRepo) FindByID(string) (*domain.Person, error)          { return nil, errStore }
func (failingPersonRepo) Update(*domain.Person) error                      { return errStore }
func (failingPersonRepo) ReplaceAll([]domain.Person) error                 { return errStore }
func (failingPersonRepo) CountAll() (int64, error)                         { return 0, errStore }

type failingRowRepo struct{}

func (failingRowRepo) List(int, int) ([]domain.Row, error) { return nil, errStore }
func (failingRowRepo) ReplaceAll([]domain.Row) error       { return errStore }

func TestList_FailsOpenToEmptySet(t *testing.T) {
	svc := NewService(failingPersonRepo{}, failingRowRepo{}, nil, zap.NewNop())

	res := svc.List(context.Background(), Query{Page: 3, Limit: 25})
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Equal(t, int64(0), res.Pagination.Total)
	assert.Equal(t, 3, res.Pagination.Page)
}

func TestGet_ReturnsDerivedAttributes(t *testing.T) {
	svc, db := newTestService(t)
	require.NoError(t, db.Create(&domain.Person{ID: "p-1", Name: "اسم", EnName: "Name"}).Error)

	view, err := svc.Get(context.Background(), "p-1")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, derive.CategoryOf("p-1"), view.Category)
	lat, lon := derive.GeoOf("p-1")
	assert.Equal(t, lat, view.Lat)
	assert.Equal(t, lon, view.Lon)
	assert.NotEmpty(t, view.DateOfDeath)

	missing, err := svc.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdate_MissingIDRejectedWithoutStorageTouch(t *testing.T) {
	svc, db := newTestService(t)
	seedPersons(t, db, 2)

	_, err := svc.Update(context.Background(), &domain.Person{Name: "x"})
	require.ErrorIs(t, err, ErrMissingID)

	var count int64
	require.NoError(t, db.Model(&domain.Person{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestUpdate_Idempotent(t *testing.T) {
	svc, db := newTestService(t)
	persons := seedPersons(t, db, 1)

	upd := domain.Person{ID: persons[0].ID, Name: "جديد", EnName: "New", Age: intp(44), Sex: strp("m")}
	first, err := svc.Update(context.Background(), &upd)
	require.NoError(t, err)

	again := upd
	second, err := svc.Update(context.Background(), &again)
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)

	var stored domain.Person
	require.NoError(t, db.First(&stored, "id = ?", persons[0].ID).Error)
	assert.Equal(t, "جديد", stored.Name)
	assert.Equal(t, 44, *stored.Age)
}

func TestUpdate_UnknownIDFails(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), &domain.Person{ID: "ghost"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingID)
}
