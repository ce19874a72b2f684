package ble

import (
	"context"
	"errors"
	"testing"
)

// fakeRepo is an in-memory Repository that records calls.
type fakeRepo struct {
	sensors map[string]Sensor
	err     error
	calls   int
}

func (f *fakeRepo) ListByPillarIDs(_ context.Context, ids []int) ([]Sensor, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []Sensor
	for _, s := range f.sensors {
		if want[s.PillarID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, bleID string) (*Sensor, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sensors[bleID]
	if !ok {
		return nil, ErrSensorNotFound
	}
	return &s, nil
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sensors: map[string]Sensor{
		"101": {BleID: "101", PillarID: 4, Line: 2},
		"201": {BleID: "201", PillarID: 8, Line: 3},
	}}
}

func TestService_FindByPillars(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	got, err := svc.FindByPillars(context.Background(), "4")
	if err != nil {
		t.Fatalf("FindByPillars() error = %v", err)
	}
	if len(got) != 1 || got[0].BleID != "101" {
		t.Errorf("FindByPillars(4) = %+v", got)
	}
}

func TestService_FindByPillars_EmptySkipsStore(t *testing.T) {
	for _, csv := range []string{"", "   ", ",,"} {
		repo := newFakeRepo()
		svc := NewService(repo)

		got, err := svc.FindByPillars(context.Background(), csv)
		if err != nil {
			t.Fatalf("FindByPillars(%q) error = %v", csv, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("FindByPillars(%q) = %v, want empty non-nil slice", csv, got)
		}
		if repo.calls != 0 {
			t.Errorf("FindByPillars(%q) issued %d store calls, want 0", csv, repo.calls)
		}
	}
}

func TestService_FindByPillars_NoMatchIsEmpty(t *testing.T) {
	svc := NewService(newFakeRepo())

	got, err := svc.FindByPillars(context.Background(), "77")
	if err != nil {
		t.Fatalf("FindByPillars() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("FindByPillars(77) = %v, want empty non-nil slice", got)
	}
}

func TestService_FindByPillars_InvalidToken(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.FindByPillars(context.Background(), "4,x")
	if !errors.Is(err, ErrInvalidPillarID) {
		t.Fatalf("error = %v, want ErrInvalidPillarID", err)
	}
	if repo.calls != 0 {
		t.Errorf("invalid input reached the store")
	}
}

func TestService_FindByPillars_StoreError(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("db down")
	svc := NewService(repo)

	if _, err := svc.FindByPillars(context.Background(), "4"); err == nil {
		t.Fatal("expected store error")
	}
}

func TestService_Detail(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	s, ok, err := svc.Detail(ctx, "201")
	if err != nil || !ok {
		t.Fatalf("Detail(201) = %v, %v, %v", s, ok, err)
	}
	if s.PillarID != 8 || s.Line != 3 {
		t.Errorf("Detail(201) = %+v", s)
	}

	s, ok, err = svc.Detail(ctx, "missing")
	if err != nil {
		t.Fatalf("Detail(missing) error = %v", err)
	}
	if ok || s != (Sensor{}) {
		t.Errorf("Detail(missing) = %+v, %v, want zero, false", s, ok)
	}
}

func TestService_Detail_StoreError(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("db down")
	svc := NewService(repo)

	_, ok, err := svc.Detail(context.Background(), "101")
	if err == nil || ok {
		t.Errorf("Detail() = %v, %v, want error", ok, err)
	}
}
