package service

import (
	"math/rand"
	"strings"

	"lunch-picker/internal/domain"
)

// CooldownWindow is how many of the newest history rows are excluded from
// the pool.
const CooldownWindow = 3

// Randomizer draws the index of the winning candidate.
type Randomizer interface {
	// Intn returns a number in [0, n).
	Intn(n int) int
}

// globalRand uses the package level source of math/rand, which is safe for
// concurrent use.
type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// Candidate is one entry of the selection pool.
type Candidate struct {
	Kind      domain.ItemKind
	ID        string
	Name      string
	PlaceName string
}

// BuildPool returns the active menu items whose place is also active. When
// there are none it falls back to the active places themselves.
func BuildPool(data domain.RoomData) []Candidate {
	activePlaces := make(map[string]domain.Place, len(data.Places))
	for _, p := range data.Places {
		if p.IsActive {
			activePlaces[p.ID] = p
		}
	}

	menus := make([]Candidate, 0, len(data.Menus))
	for _, m := range data.Menus {
		if !m.IsActive {
			continue
		}
		place, ok := activePlaces[m.PlaceID]
		if !ok {
			continue
		}
		menus = append(menus, Candidate{Kind: domain.KindMenu, ID: m.ID, Name: m.Name, PlaceName: place.Name})
	}
	if len(menus) > 0 {
		return menus
	}

	places := make([]Candidate, 0, len(activePlaces))
	for _, p := range data.Places {
		if p.IsActive {
			places = append(places, Candidate{Kind: domain.KindPlace, ID: p.ID, Name: p.Name, PlaceName: p.Name})
		}
	}
	return places
}

// ApplyCooldown drops candidates named like one of the recent history rows.
// If that would leave nothing from a non-empty pool, the unfiltered pool is
// returned and bypassed is true.
func ApplyCooldown(pool []Candidate, recent []domain.HistoryItem) (filtered []Candidate, bypassed bool) {
	recentNames := make(map[string]struct{}, len(recent))
	for _, h := range recent {
		recentNames[strings.ToLower(h.ItemName)] = struct{}{}
	}

	filtered = make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if _, hit := recentNames[strings.ToLower(c.Name)]; !hit {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 && len(pool) > 0 {
		return pool, true
	}
	return filtered, false
}

// Select runs the whole selection: pool, cooldown, uniform draw.
func Select(data domain.RoomData, rng Randomizer) (Candidate, bool, error) {
	pool := BuildPool(data)
	if len(pool) == 0 {
		return Candidate{}, false, ErrEmptyPool
	}
	pool, bypassed := ApplyCooldown(pool, data.RecentHistory(CooldownWindow))
	return pool[rng.Intn(len(pool))], bypassed, nil
}
