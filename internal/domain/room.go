package domain

import (
	"strings"
	"time"
)

// ItemKind 区分一次抽选落在菜单项还是餐厅本身。
type ItemKind string

const (
	KindMenu  ItemKind = "menu"
	KindPlace ItemKind = "place"
)

// Valid reports whether k is one of the known kinds.
func (k ItemKind) Valid() bool {
	return k == KindMenu || k == KindPlace
}

// Place is a lunch venue registered in a room.
type Place struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Menu is a dish offered by a Place. It is only selectable while both it and
// its place are active.
type Menu struct {
	ID        string    `json:"id"`
	PlaceID   string    `json:"place_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomData is the durable catalog of a room, stored as one document.
type RoomData struct {
	RoomName *string       `json:"room_name"`
	Places   []Place       `json:"places"`
	Menus    []Menu        `json:"menus"`
	History  []HistoryItem `json:"history"`
	Ratings  []Rating      `json:"ratings,omitempty"`
}

// NewRoomData returns the empty catalog an unknown room starts with.
func NewRoomData() RoomData {
	return RoomData{
		Places:  []Place{},
		Menus:   []Menu{},
		History: []HistoryItem{},
	}
}

// Normalize replaces nil slices so that documents written by older clients
// (missing "history", for instance) behave like empty ones.
func (d *RoomData) Normalize() {
	if d.Places == nil {
		d.Places = []Place{}
	}
	if d.Menus == nil {
		d.Menus = []Menu{}
	}
	if d.History == nil {
		d.History = []HistoryItem{}
	}
}

// FindPlace returns the index of the place with the given id, or -1.
func (d *RoomData) FindPlace(id string) int {
	for i := range d.Places {
		if d.Places[i].ID == id {
			return i
		}
	}
	return -1
}

// FindMenu returns the index of the menu with the given id, or -1.
func (d *RoomData) FindMenu(id string) int {
	for i := range d.Menus {
		if d.Menus[i].ID == id {
			return i
		}
	}
	return -1
}

// HasPlaceNamed reports whether a place other than exceptID already uses name,
// compared case-insensitively.
func (d *RoomData) HasPlaceNamed(name, exceptID string) bool {
	for _, p := range d.Places {
		if p.ID != exceptID && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// RemovePlace deletes a place together with every menu that references it.
func (d *RoomData) RemovePlace(id string) {
	places := make([]Place, 0, len(d.Places))
	for _, p := range d.Places {
		if p.ID != id {
			places = append(places, p)
		}
	}
	menus := make([]Menu, 0, len(d.Menus))
	for _, m := range d.Menus {
		if m.PlaceID != id {
			menus = append(menus, m)
		}
	}
	d.Places = places
	d.Menus = menus
}

// RemoveMenu deletes a single menu item.
func (d *RoomData) RemoveMenu(id string) {
	menus := make([]Menu, 0, len(d.Menus))
	for _, m := range d.Menus {
		if m.ID != id {
			menus = append(menus, m)
		}
	}
	d.Menus = menus
}
