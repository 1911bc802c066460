package theme

import (
	"context"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/foodorder-backend/pkg/errors"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// DefaultColors is the palette a fresh process starts with.
var DefaultColors = map[string]string{
	"PRIMARY":          "#FF4500",
	"ACCENT":           "#FFD700",
	"BACKGROUND_LIGHT": "#121212",
	"BACKGROUND_DARK":  "#1E1E1E",
	"TEXT_LIGHT":       "#FFFFFF",
	"TEXT_DARK":        "#F5F5F5",
	"TEXT_MUTED":       "#A0A0A0",
	"SUCCESS":          "#28A745",
	"ERROR":            "#DC3545",
	"DANGER":           "#DC3545",
	"WARNING":          "#FFC107",
}

// Theme is the app-wide look served to every client.
type Theme struct {
	Colors         map[string]string `json:"colors"`
	Logo           string            `json:"logo"`
	CarouselImages []string          `json:"carousel_images"`
}

// Patch changes part of the theme. Colors are merged key by key; nil fields
// are left alone.
type Patch struct {
	Colors         map[string]string `json:"colors"`
	Logo           *string           `json:"logo"`
	CarouselImages *[]string         `json:"carousel_images"`
}

// Store keeps the theme for the lifetime of the process.
type Store struct {
	mu    sync.RWMutex
	theme Theme
}

func NewStore() *Store {
	return &Store{theme: Theme{
		Colors:         maps.Clone(DefaultColors),
		CarouselImages: []string{},
	}}
}

func (s *Store) Get(context.Context) Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme.clone()
}

// Update applies p atomically and returns the resulting theme.
func (s *Store) Update(_ context.Context, p Patch) (Theme, error) {
	colors := make(map[string]string, len(p.Colors))
	for key, value := range p.Colors {
		name := strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if name == "" {
			return Theme{}, pkgerrors.New(pkgerrors.CodeValidation, "color name is required")
		}
		if !hexColor.MatchString(value) {
			return Theme{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid color").
				WithDetails(map[string]string{name: value})
		}
		colors[name] = value
	}

	var carousel []string
	if p.CarouselImages != nil {
		carousel = make([]string, 0, len(*p.CarouselImages))
		for _, img := range *p.CarouselImages {
			if img = strings.TrimSpace(img); img != "" {
				carousel = append(carousel, img)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.theme.Colors, colors)
	if p.Logo != nil {
		s.theme.Logo = strings.TrimSpace(*p.Logo)
	}
	if carousel != nil {
		s.theme.CarouselImages = carousel
	}
	return s.theme.clone(), nil
}

func (t Theme) clone() Theme {
	return Theme{
		Colors:         maps.Clone(t.Colors),
		Logo:           t.Logo,
		CarouselImages: slices.Clone(t.CarouselImages),
	}
}
