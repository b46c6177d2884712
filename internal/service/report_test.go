package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/gps-performance-service/internal/catalog"
	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/repository"
	"github.com/maxviazov/gps-performance-service/internal/service"
)

func newReportFixture(t *testing.T) (*fakeReportRepo, *fakeProfileRepo, service.ReportService) {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	reports := newFakeReportRepo()
	profiles := newFakeProfileRepo()
	return reports, profiles, service.NewReportService(reports, profiles, cat, zerolog.Nop())
}

func validReport(profileID int64) model.GpsReport {
	return model.GpsReport{
		ProfileID: profileID,
		TeamID:    10,
		EventType: model.EventTraining,
		EventDate: date(2026, time.August, 30),
		RawData:   []model.RawRow{{"Name": "Ivan Petrov", "Distance": "5000"}},
	}
}

func TestIngest_AggregatesFieldErrors(t *testing.T) {
	_, _, svc := newReportFixture(t)
	_, err := svc.Ingest(context.Background(), model.GpsReport{EventType: "friendly"})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Len(t, service.FieldErrors(err), 5)
}

func TestIngest_RejectsInactiveProfile(t *testing.T) {
	_, profiles, svc := newReportFixture(t)
	p, err := profiles.Create(context.Background(), model.GpsProfile{ClubID: 1, CatalogVersion: "1.0.0"})
	require.NoError(t, err)

	_, err = svc.Ingest(context.Background(), validReport(p.ID))
	assert.ErrorIs(t, err, service.ErrProfileInactive)
}

func TestIngest_RejectsIncompatibleCatalog(t *testing.T) {
	_, profiles, svc := newReportFixture(t)
	p, err := profiles.Create(context.Background(), model.GpsProfile{ClubID: 1, CatalogVersion: "2.0.0", IsActive: true})
	require.NoError(t, err)

	_, err = svc.Ingest(context.Background(), validReport(p.ID))
	assert.ErrorIs(t, err, catalog.ErrIncompatibleCatalog)
}

func TestIngest_UnknownProfile(t *testing.T) {
	_, _, svc := newReportFixture(t)
	_, err := svc.Ingest(context.Background(), validReport(404))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIngest_StoresReport(t *testing.T) {
	reports, profiles, svc := newReportFixture(t)
	p, err := profiles.Create(context.Background(), model.GpsProfile{ClubID: 1, CatalogVersion: "1.0.0", IsActive: true})
	require.NoError(t, err)

	out, err := svc.Ingest(context.Background(), validReport(p.ID))
	require.NoError(t, err)
	assert.NotZero(t, out.ID)

	stored, err := reports.GetByID(context.Background(), out.ID)
	require.NoError(t, err)
	assert.Equal(t, out.RawData, stored.RawData)

	got, err := svc.GetReport(context.Background(), out.ID)
	require.NoError(t, err)
	assert.Equal(t, out.ID, got.ID)
}
