package location

import (
	"context"
	"errors"
	"testing"

	"github.com/gdugdh24/topicmatch-backend/internal/domain"
	"github.com/gdugdh24/topicmatch-backend/internal/geo"
	"github.com/gdugdh24/topicmatch-backend/internal/testinfra"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateLocation(t *testing.T) {
	f := testinfra.NewFixture(0)
	user := f.AddUser(1)
	uc := NewLocationUseCase(f.Store)

	p, err := uc.UpdateLocation(context.Background(), &UpdateLocationRequest{
		UserID:        user,
		ShareLocation: true,
		Latitude:      ptr(52.3676),
		Longitude:     ptr(4.9041),
		City:          ptr("Amsterdam"),
		MaxDistanceKm: ptr(25),
	})
	if err != nil {
		t.Fatalf("UpdateLocation() error: %v", err)
	}
	if point, ok := p.Location(); !ok || point.Lat != 52.3676 {
		t.Errorf("Location() = %v, %v", point, ok)
	}
	if l, ok := p.DistanceLimit(); !ok || l != geo.Bounded(25) {
		t.Errorf("DistanceLimit() = %v, %v; want 25km", l, ok)
	}
	if p.City == nil || *p.City != "Amsterdam" {
		t.Errorf("City = %v", p.City)
	}
}

func TestUpdateLocation_NotSharedClearsCoordinates(t *testing.T) {
	f := testinfra.NewFixture(0)
	user := f.AddUser(1, testinfra.At(52.3676, 4.9041))
	uc := NewLocationUseCase(f.Store)

	p, err := uc.UpdateLocation(context.Background(), &UpdateLocationRequest{
		UserID:    user,
		Latitude:  ptr(10.0),
		Longitude: ptr(10.0),
		City:      ptr("Somewhere"),
		Worldwide: true,
	})
	if err != nil {
		t.Fatalf("UpdateLocation() error: %v", err)
	}
	if _, ok := p.Location(); ok {
		t.Error("coordinates kept although location is not shared")
	}
	if p.City != nil {
		t.Errorf("City = %q, want cleared", *p.City)
	}
	if l, ok := p.DistanceLimit(); !ok || l.IsBounded() {
		t.Errorf("DistanceLimit() = %v, %v; want unbounded", l, ok)
	}
}

func TestUpdateLocation_Errors(t *testing.T) {
	f := testinfra.NewFixture(0)
	user := f.AddUser(1)
	uc := NewLocationUseCase(f.Store)

	_, err := uc.UpdateLocation(context.Background(), &UpdateLocationRequest{UserID: user, ShareLocation: true, Latitude: ptr(95.0), Longitude: ptr(0.0)})
	if !errors.Is(err, geo.ErrInvalidCoordinates) {
		t.Errorf("out of range error = %v, want ErrInvalidCoordinates", err)
	}

	_, err = uc.UpdateLocation(context.Background(), &UpdateLocationRequest{UserID: user, ShareLocation: true})
	if !errors.Is(err, geo.ErrInvalidCoordinates) {
		t.Errorf("missing coordinates error = %v, want ErrInvalidCoordinates", err)
	}

	_, err = uc.UpdateLocation(context.Background(), &UpdateLocationRequest{UserID: testinfra.UserID(9)})
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("unknown user error = %v, want ErrProfileNotFound", err)
	}
}
