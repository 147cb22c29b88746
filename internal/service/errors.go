package service

import (
	"errors"
	"fmt"

	"lunch-picker/internal/repository"
)

var (
	ErrAlreadyExists     = errors.New("a place with this name already exists")
	ErrRetryLimitReached = errors.New("retry limit reached for today")
	ErrEmptyPool         = errors.New("no active items to pick from")
	ErrStoreUnavailable  = errors.New("room store unavailable")

	ErrInvalidRoomID = errors.New("invalid room id")
	ErrInvalidName   = errors.New("name must not be empty")
	ErrInvalidKind   = errors.New("kind must be menu or place")
	ErrInvalidScore  = errors.New("score must be between 1 and 5")
	ErrPlaceNotFound = errors.New("place not found")
	ErrMenuNotFound  = errors.New("menu not found")
	ErrNoCurrentPick = errors.New("nothing has been picked today")
)

// mapRepoError 将仓库层错误映射为服务层错误，同时保留原始错误链。
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrStoreUnavailable) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}
