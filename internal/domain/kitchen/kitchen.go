// Package kitchen manages the public profile of the kitchen the storefront
// sells for.
package kitchen

import (
	"context"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// ErrNotFound is returned by a Repository when no profile is stored.
var ErrNotFound = errors.New("kitchen profile not found")

// Profile is the kitchen's display information.
type Profile struct {
	Name         string   `json:"name"`
	Cuisine      string   `json:"cuisine"`
	Rating       float64  `json:"rating"`
	ReviewCount  int      `json:"reviewCount"`
	DeliveryTime string   `json:"deliveryTime"`
	Address      string   `json:"address"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	Specialties  []string `json:"specialties"`
	IsVeg        bool     `json:"isVeg"`
	IsTopRated   bool     `json:"isTopRated"`
}

// Validate checks the fields the storefront header cannot render without.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("kitchen name is required")
	}
	if p.Rating < 0 || p.Rating > 5 {
		return errors.Errorf("rating %v out of range [0, 5]", p.Rating)
	}
	if p.ReviewCount < 0 {
		return errors.Errorf("negative review count %d", p.ReviewCount)
	}
	return nil
}

// Default returns the profile used until an administrator saves one.
func Default() Profile {
	return Profile{
		Name:         "Mama's Thali",
		Cuisine:      "North Indian",
		Rating:       4.8,
		ReviewCount:  234,
		DeliveryTime: "30 min",
		Address:      "Mansarover, Jaipur, Rajasthan",
		Phone:        "+91 98765 43210",
		Email:        "support@mamasthali.com",
		Description:  "Authentic home-cooked meals from our kitchen in Mansarover, Jaipur",
		Image:        "https://images.unsplash.com/photo-1555939594-58d7cb561ad1?w=800&h=600&fit=crop",
		Specialties:  []string{"North Indian Thali", "Roti & Sabzi", "Dal Makhani"},
		IsVeg:        true,
		IsTopRated:   true,
	}
}

// Repository persists the kitchen profile.
type Repository interface {
	// Load returns ErrNotFound when nothing has been saved.
	Load(ctx context.Context) (Profile, error)
	Save(ctx context.Context, p Profile) error
}

// Service reads and updates the kitchen profile.
type Service struct {
	repo Repository
	mu   sync.Mutex
}

// NewService creates a Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the stored profile. The first read stores and returns Default.
func (s *Service) Get(ctx context.Context) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.repo.Load(ctx)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, ErrNotFound):
	default:
		// An unreadable profile is replaced rather than blocking the page.
		zctx.From(ctx).Warn("Failed to load kitchen profile, using default", zap.Error(err))
	}

	p = Default()
	if err := s.repo.Save(ctx, p); err != nil {
		zctx.From(ctx).Warn("Failed to persist default kitchen profile", zap.Error(err))
	}
	return p, nil
}

// Save validates and stores p.
func (s *Service) Save(ctx context.Context, p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, p); err != nil {
		return errors.Wrap(err, "save kitchen profile")
	}
	return nil
}
