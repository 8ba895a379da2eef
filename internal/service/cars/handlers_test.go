package cars_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
	"github.com/fairyhunter13/car-rental-gateway/internal/service/cars"
)

type stubRepo struct {
	cars    []domain.Car
	total   int
	err     error
	gotPage int
	gotSize int
	gotAll  bool
	gotUID  string
	gotAvlb bool
}

func (r *stubRepo) List(_ domain.Context, page, size int, showAll bool) ([]domain.Car, int, error) {
	r.gotPage, r.gotSize, r.gotAll = page, size, showAll
	return r.cars, r.total, r.err
}

func (r *stubRepo) Get(_ domain.Context, carUID string) (domain.Car, error) {
	r.gotUID = carUID
	if r.err != nil {
		return domain.Car{}, r.err
	}
	return r.cars[0], nil
}

func (r *stubRepo) SetAvailability(_ domain.Context, carUID string, available bool) error {
	r.gotUID, r.gotAvlb = carUID, available
	return r.err
}

func testCar() domain.Car {
	return domain.Car{
		CarUID:    "109b42f3-198d-4c89-9276-a7520a7120ab",
		Brand:     "Mercedes Benz",
		Model:     "GLA 250",
		Price:     3500,
		Type:      "SEDAN",
		Available: true,
	}
}

func do(t *testing.T, repo cars.Repo, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	cars.NewServer(repo).Routes().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestList_PaginatesAndFilters(t *testing.T) {
	t.Parallel()
	repo := &stubRepo{cars: []domain.Car{testCar()}, total: 7}

	rec := do(t, repo, http.MethodGet, "/api/v1/cars?page=2&size=5&show_all=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, repo.gotPage)
	assert.Equal(t, 5, repo.gotSize)
	assert.True(t, repo.gotAll)
	assert.Contains(t, rec.Body.String(), `"totalElements":7`)
}

func TestList_DefaultsHideUnavailable(t *testing.T) {
	t.Parallel()
	repo := &stubRepo{cars: []domain.Car{}}

	rec := do(t, repo, http.MethodGet, "/api/v1/cars")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, repo.gotPage)
	assert.Equal(t, 10, repo.gotSize)
	assert.False(t, repo.gotAll)
}

func TestGet_FoundAndMissing(t *testing.T) {
	t.Parallel()
	repo := &stubRepo{cars: []domain.Car{testCar()}}
	rec := do(t, repo, http.MethodGet, "/api/v1/cars/109b42f3-198d-4c89-9276-a7520a7120ab")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GLA 250")

	missing := &stubRepo{err: domain.ErrNotFound}
	rec = do(t, missing, http.MethodGet, "/api/v1/cars/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvailability_RequiresParam(t *testing.T) {
	t.Parallel()
	repo := &stubRepo{}
	rec := do(t, repo, http.MethodPatch, "/api/v1/cars/car-1/availability")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailability_Updates(t *testing.T) {
	t.Parallel()
	repo := &stubRepo{}
	rec := do(t, repo, http.MethodPatch, "/api/v1/cars/car-1/availability?available=false")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "car-1", repo.gotUID)
	assert.False(t, repo.gotAvlb)

	missing := &stubRepo{err: domain.ErrNotFound}
	rec = do(t, missing, http.MethodPatch, "/api/v1/cars/unknown/availability?available=true")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	rec := do(t, &stubRepo{}, http.MethodGet, "/manage/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}
