package mocks

import (
	"context"

	"armory-sync/feature/roster"
	"armory-sync/feature/roster/models"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of roster.Store
type Store struct {
	mock.Mock
}

func (m *Store) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	args := m.Called(ctx, userID)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) UpsertGuilds(ctx context.Context, guilds []models.Guild) ([]models.Guild, error) {
	args := m.Called(ctx, guilds)
	if persisted, ok := args.Get(0).([]models.Guild); ok {
		return persisted, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) UpsertCharacters(ctx context.Context, characters []models.Character) error {
	args := m.Called(ctx, characters)
	return args.Error(0)
}

func (m *Store) ListCharactersByOwner(ctx context.Context, userID uint) ([]models.Character, error) {
	args := m.Called(ctx, userID)
	if characters, ok := args.Get(0).([]models.Character); ok {
		return characters, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) DeleteCharacter(ctx context.Context, userID uint, key roster.Key) error {
	args := m.Called(ctx, userID, key)
	return args.Error(0)
}
