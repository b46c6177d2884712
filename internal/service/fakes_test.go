package service_test

import (
	"context"
	"sort"
	"time"

	"github.com/maxviazov/gps-performance-service/internal/model"
	"github.com/maxviazov/gps-performance-service/internal/repository"
)

// In-memory repository fakes. They mirror the Postgres implementations'
// observable behavior (sentinel errors, fresh used-reports counts, window
// filtering) without any storage.

type fakeProfileRepo struct {
	profiles      map[int64]model.GpsProfile
	mappings      map[int64]model.ColumnMapping
	used          map[int64]int
	nextProfileID int64
	nextMappingID int64
}

var _ repository.ProfileRepository = (*fakeProfileRepo)(nil)

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles: make(map[int64]model.GpsProfile),
		mappings: make(map[int64]model.ColumnMapping),
		used:     make(map[int64]int),
	}
}

func (f *fakeProfileRepo) Create(_ context.Context, p model.GpsProfile) (model.GpsProfile, error) {
	f.nextProfileID++
	p.ID = f.nextProfileID
	f.profiles[p.ID] = p
	return p, nil
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id int64) (model.GpsProfile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return model.GpsProfile{}, repository.ErrNotFound
	}
	p.UsedReportsCount = f.used[id]
	return p, nil
}

func (f *fakeProfileRepo) ListByClub(_ context.Context, clubID int64, _ repository.Page) (repository.PageResult[model.GpsProfile], error) {
	var items []model.GpsProfile
	for _, p := range f.profiles {
		if p.ClubID == clubID {
			p.UsedReportsCount = f.used[p.ID]
			items = append(items, p)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return repository.PageResult[model.GpsProfile]{Items: items, Total: len(items)}, nil
}

func (f *fakeProfileRepo) SetActive(_ context.Context, id int64, active bool) error {
	p, ok := f.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsActive = active
	f.profiles[id] = p
	return nil
}

func (f *fakeProfileRepo) CountUsedReports(_ context.Context, profileID int64) (int, error) {
	return f.used[profileID], nil
}

func (f *fakeProfileRepo) AddMapping(_ context.Context, m model.ColumnMapping) (model.ColumnMapping, error) {
	f.nextMappingID++
	m.ID = f.nextMappingID
	f.mappings[m.ID] = m
	return m, nil
}

func (f *fakeProfileRepo) GetMapping(_ context.Context, id int64) (model.ColumnMapping, error) {
	m, ok := f.mappings[id]
	if !ok {
		return model.ColumnMapping{}, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeProfileRepo) ListMappings(_ context.Context, profileID int64) ([]model.ColumnMapping, error) {
	var out []model.ColumnMapping
	for _, m := range f.mappings {
		if m.ProfileID == profileID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProfileRepo) UpdateMapping(_ context.Context, m model.ColumnMapping) (model.ColumnMapping, error) {
	if _, ok := f.mappings[m.ID]; !ok {
		return model.ColumnMapping{}, repository.ErrNotFound
	}
	f.mappings[m.ID] = m
	return m, nil
}

func (f *fakeProfileRepo) DeleteMapping(_ context.Context, id int64) error {
	if _, ok := f.mappings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.mappings, id)
	return nil
}

type fakeReportRepo struct {
	reports     map[int64]model.GpsReport
	nextID      int64
	lastWindow  repository.BaselineWindow
	windowCalls int
}

var _ repository.ReportRepository = (*fakeReportRepo)(nil)

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[int64]model.GpsReport)}
}

func (f *fakeReportRepo) Create(_ context.Context, r model.GpsReport) (model.GpsReport, error) {
	f.nextID++
	r.ID = f.nextID
	f.reports[r.ID] = r
	return r, nil
}

func (f *fakeReportRepo) GetByID(_ context.Context, id int64) (model.GpsReport, error) {
	r, ok := f.reports[id]
	if !ok {
		return model.GpsReport{}, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeReportRepo) ListWindow(_ context.Context, w repository.BaselineWindow) ([]model.GpsReport, error) {
	f.lastWindow = w
	f.windowCalls++

	var out []model.GpsReport
	for _, r := range f.reports {
		if r.TeamID != w.TeamID || r.EventType != w.EventType || r.ID == w.ExcludeReportID {
			continue
		}
		if w.Since != nil && r.EventDate.Before(*w.Since) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.After(out[j].EventDate) })
	if w.LastN > 0 && len(out) > w.LastN {
		out = out[:w.LastN]
	}
	return out, nil
}

type fakePlayerMappingRepo struct {
	byReport map[int64][]model.PlayerMapping
	replaced int
}

var _ repository.PlayerMappingRepository = (*fakePlayerMappingRepo)(nil)

func newFakePlayerMappingRepo() *fakePlayerMappingRepo {
	return &fakePlayerMappingRepo{byReport: make(map[int64][]model.PlayerMapping)}
}

func (f *fakePlayerMappingRepo) ReplaceForReport(_ context.Context, reportID int64, mappings []model.PlayerMapping) error {
	out := make([]model.PlayerMapping, len(mappings))
	copy(out, mappings)
	f.byReport[reportID] = out
	f.replaced++
	return nil
}

func (f *fakePlayerMappingRepo) ListByReport(_ context.Context, reportID int64) ([]model.PlayerMapping, error) {
	out := make([]model.PlayerMapping, len(f.byReport[reportID]))
	copy(out, f.byReport[reportID])
	return out, nil
}

func (f *fakePlayerMappingRepo) ListByReports(_ context.Context, reportIDs []int64) (map[int64][]model.PlayerMapping, error) {
	out := make(map[int64][]model.PlayerMapping, len(reportIDs))
	for _, id := range reportIDs {
		if ms, ok := f.byReport[id]; ok {
			cp := make([]model.PlayerMapping, len(ms))
			copy(cp, ms)
			out[id] = cp
		}
	}
	return out, nil
}

type fakeRosterRepo struct {
	players map[int64]model.Player
}

var _ repository.RosterRepository = (*fakeRosterRepo)(nil)

func newFakeRosterRepo(players ...model.Player) *fakeRosterRepo {
	f := &fakeRosterRepo{players: make(map[int64]model.Player, len(players))}
	for _, p := range players {
		f.players[p.ID] = p
	}
	return f
}

func (f *fakeRosterRepo) ListByTeam(_ context.Context, teamID int64) ([]model.Player, error) {
	var out []model.Player
	for _, p := range f.players {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRosterRepo) GetByID(_ context.Context, id int64) (model.Player, error) {
	p, ok := f.players[id]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	return p, nil
}

type fakeTxManager struct {
	calls int
}

var _ repository.TxManager = (*fakeTxManager)(nil)

func (f *fakeTxManager) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	f.calls++
	return fn(ctx)
}

func pid(v int64) *int64 { return &v }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}
