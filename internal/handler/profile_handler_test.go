package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/gps-performance-service/internal/handler"
	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/repository"
	"github.com/maxviazov/gps-performance-service/internal/service"
)

// stubPingerNoop satisfies handler.Pinger (health endpoints not focus here).
type stubPingerNoop struct{}

func (s stubPingerNoop) Ping(ctx context.Context) error { return nil }

// fakeInvalid replicates aggregated validation error semantics.
type fakeInvalid struct{ fe []service.FieldError }

func (f *fakeInvalid) Error() string                { return service.ErrInvalidInput.Error() }
func (f *fakeInvalid) Unwrap() error                { return service.ErrInvalidInput }
func (f *fakeInvalid) Fields() []service.FieldError { return f.fe }

// stubProfileService lets us control each method outcome.
type stubProfileService struct {
	create struct {
		profile model.GpsProfile
		err     error
	}
	addMapping struct {
		mapping model.ColumnMapping
		err     error
	}
	activateErr error
	choices     []model.MetricChoice
}

func (s *stubProfileService) CreateProfile(ctx context.Context, clubID int64, name, vendorSystem string) (model.GpsProfile, error) {
	return s.create.profile, s.create.err
}
func (s *stubProfileService) GetProfile(ctx context.Context, id int64) (model.GpsProfile, error) {
	return model.GpsProfile{}, repository.ErrNotFound
}
func (s *stubProfileService) ListProfiles(ctx context.Context, clubID int64, p repository.Page) (repository.PageResult[model.GpsProfile], error) {
	return repository.PageResult[model.GpsProfile]{}, nil
}
func (s *stubProfileService) AddMapping(ctx context.Context, m model.ColumnMapping) (model.ColumnMapping, error) {
	return s.addMapping.mapping, s.addMapping.err
}
func (s *stubProfileService) UpdateMapping(ctx context.Context, id int64, patch model.MappingPatch) (model.ColumnMapping, error) {
	return model.ColumnMapping{}, nil
}
func (s *stubProfileService) RemoveMapping(ctx context.Context, id int64) error { return nil }
func (s *stubProfileService) ListMappings(ctx context.Context, profileID int64) ([]model.ColumnMapping, error) {
	return nil, nil
}
func (s *stubProfileService) ActivateProfile(ctx context.Context, id int64) error {
	return s.activateErr
}
func (s *stubProfileService) DeactivateProfile(ctx context.Context, id int64) error { return nil }
func (s *stubProfileService) MetricChoices(locale string) []model.MetricChoice      { return s.choices }

func newRouter(ps service.ProfileService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r, stubPingerNoop{}, ps, nil, nil, nil)
	return r
}

func TestProfileHandler_Create_OK(t *testing.T) {
	stub := &stubProfileService{}
	stub.create.profile = model.GpsProfile{ID: 1, Name: "Catapult main", CatalogVersion: "1.0.0"}
	r := newRouter(stub)
	body, _ := json.Marshal(map[string]any{"club_id": 1, "name": "Catapult main", "vendor_system": "Catapult"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/profiles", bytes.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp model.GpsProfile
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.ID != 1 || resp.CatalogVersion != "1.0.0" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestProfileHandler_Create_Invalid(t *testing.T) {
	stub := &stubProfileService{}
	stub.create.err = &fakeInvalid{fe: []service.FieldError{{Field: "name", Message: "must not be empty"}}}
	r := newRouter(stub)
	body, _ := json.Marshal(map[string]any{"club_id": 1, "name": ""})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/profiles", bytes.NewReader(body)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("invalid_input")) || !bytes.Contains(w.Body.Bytes(), []byte("name")) {
		t.Fatalf("expected field error for name, body=%s", w.Body.String())
	}
}

func TestProfileHandler_AddMapping_Frozen(t *testing.T) {
	stub := &stubProfileService{}
	stub.addMapping.err = service.ErrStructureFrozen
	r := newRouter(stub)
	body, _ := json.Marshal(map[string]any{"source_column": "Dist", "canonical_metric": "total_distance"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/profiles/1/mappings", bytes.NewReader(body)))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("structure_frozen")) {
		t.Fatalf("expected structure_frozen, body=%s", w.Body.String())
	}
}

func TestProfileHandler_Activate_IncompleteColumns(t *testing.T) {
	stub := &stubProfileService{activateErr: &service.IncompleteColumnsError{Columns: []string{"Dist", "HSR"}}}
	r := newRouter(stub)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/profiles/1/activate", nil))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Dist")) || !bytes.Contains(w.Body.Bytes(), []byte("HSR")) {
		t.Fatalf("expected offending columns listed, body=%s", w.Body.String())
	}
}

func TestProfileHandler_Get_BadID(t *testing.T) {
	r := newRouter(&stubProfileService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/profiles/zero", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProfileHandler_MetricChoices(t *testing.T) {
	stub := &stubProfileService{choices: []model.MetricChoice{{Key: "total_distance", Label: "Total distance"}}}
	r := newRouter(stub)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("total_distance")) {
		t.Fatalf("expected catalog choices, body=%s", w.Body.String())
	}
}
