package service

import (
	"context"

	"lunch-picker/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SetRoomName 设置房间显示名称。
func (s *LunchService) SetRoomName(ctx context.Context, roomID, name string) error {
	trimmed, err := cleanName(name)
	if err != nil {
		return err
	}
	return s.mutateCatalog(ctx, roomID, domain.ChangeRoom, func(data *domain.RoomData) error {
		data.RoomName = &trimmed
		return nil
	})
}

// AddPlace registers a new active place at the head of the list and returns
// its id. Names are unique within a room regardless of case or activity.
func (s *LunchService) AddPlace(ctx context.Context, roomID, name string) (string, error) {
	trimmed, err := cleanName(name)
	if err != nil {
		return "", err
	}
	place := domain.Place{
		ID:        uuid.NewString(),
		Name:      trimmed,
		IsActive:  true,
		CreatedAt: s.now().UTC(),
	}
	err = s.mutateCatalog(ctx, roomID, domain.ChangeCatalog, func(data *domain.RoomData) error {
		if data.HasPlaceNamed(trimmed, "") {
			return ErrAlreadyExists
		}
		data.Places = append([]domain.Place{place}, data.Places...)
		return nil
	})
	if err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{"room_id": roomID, "place_id": place.ID}).Info("Place added")
	return place.ID, nil
}

// AddMenu appends a new active menu item under placeID and returns its id.
func (s *LunchService) AddMenu(ctx context.Context, roomID, placeID, name string) (string, error) {
	trimmed, err := cleanName(name)
	if err != nil {
		return "", err
	}
	menu := domain.Menu{
		ID:        uuid.NewString(),
		PlaceID:   placeID,
		Name:      trimmed,
		IsActive:  true,
		CreatedAt: s.now().UTC(),
	}
	err = s.mutateCatalog(ctx, roomID, domain.ChangeCatalog, func(data *domain.RoomData) error {
		if data.FindPlace(placeID) < 0 {
			return ErrPlaceNotFound
		}
		data.Menus = append(data.Menus, menu)
		return nil
	})
	if err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{"room_id": roomID, "place_id": placeID, "menu_id": menu.ID}).Info("Menu added")
	return menu.ID, nil
}

// ToggleActive flips is_active of a place or menu and returns the new value.
func (s *LunchService) ToggleActive(ctx context.Context, roomID string, kind domain.ItemKind, id string) (bool, error) {
	var active bool
	err := s.mutateCatalog(ctx, roomID, domain.ChangeCatalog, func(data *domain.RoomData) error {
		switch kind {
		case domain.KindPlace:
			i := data.FindPlace(id)
			if i < 0 {
				return ErrPlaceNotFound
			}
			data.Places[i].IsActive = !data.Places[i].IsActive
			active = data.Places[i].IsActive
		case domain.KindMenu:
			i := data.FindMenu(id)
			if i < 0 {
				return ErrMenuNotFound
			}
			data.Menus[i].IsActive = !data.Menus[i].IsActive
			active = data.Menus[i].IsActive
		default:
			return ErrInvalidKind
		}
		return nil
	})
	return active, err
}

// RenamePlace changes the name of a place, keeping names unique in the room.
func (s *LunchService) RenamePlace(ctx context.Context, roomID, placeID, name string) error {
	trimmed, err := cleanName(name)
	if err != nil {
		return err
	}
	return s.mutateCatalog(ctx, roomID, domain.ChangeCatalog, func(data *domain.RoomData) error {
		i := data.FindPlace(placeID)
		if i < 0 {
			return ErrPlaceNotFound
		}
		if data.HasPlaceNamed(trimmed, placeID) {
			return ErrAlreadyExists
		}
		data.Places[i].Name = trimmed
		return nil
	})
}

// RenameMenu changes the name of a menu item.
func (s *LunchService) RenameMenu(ctx context.Context, roomID, menuID, name string) error {
	trimmed, err := cleanName(name)
	if err != nil {
		return err
	}
	return s.mutateCatalog(ctx, roomID, domain.ChangeCatalog, func(data *domain.RoomData) error {
		i := data.FindMenu(menuID)
		if i < 0 {
			return ErrMenuNotFound
		}
		data.Menus[i].Name = trimmed
		return nil
	})
}

// DeletePlace removes a place and every menu item under it.
func (s *LunchService) DeletePlace(ctx context.Context, roomID, placeID string) error {
	return s.mutateCatalog(ctx, roomID, domain.ChangeCatalog, func(data *domain.RoomData) error {
		if data.FindPlace(placeID) < 0 {
			return ErrPlaceNotFound
		}
		data.RemovePlace(placeID)
		return nil
	})
}

// DeleteMenu removes one menu item.
func (s *LunchService) DeleteMenu(ctx context.Context, roomID, menuID string) error {
	return s.mutateCatalog(ctx, roomID, domain.ChangeCatalog, func(data *domain.RoomData) error {
		if data.FindMenu(menuID) < 0 {
			return ErrMenuNotFound
		}
		data.RemoveMenu(menuID)
		return nil
	})
}
