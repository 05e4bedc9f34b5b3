package mocks

import (
	"context"

	"armory-sync/core/armory"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of armory.Client
type Client struct {
	mock.Mock
}

func (m *Client) FetchAccountRoster(ctx context.Context, token string) ([]armory.CharacterSummary, error) {
	args := m.Called(ctx, token)
	if roster, ok := args.Get(0).([]armory.CharacterSummary); ok {
		return roster, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) FetchCharacterDetail(ctx context.Context, token, realmSlug, name string) (*armory.GuildSummary, error) {
	args := m.Called(ctx, token, realmSlug, name)
	if guild, ok := args.Get(0).(*armory.GuildSummary); ok {
		return guild, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) FetchPlayableClasses(ctx context.Context, token string) ([]armory.ClassRef, error) {
	args := m.Called(ctx, token)
	if classes, ok := args.Get(0).([]armory.ClassRef); ok {
		return classes, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) FetchPlayableRaces(ctx context.Context, token string) ([]armory.RaceRef, error) {
	args := m.Called(ctx, token)
	if races, ok := args.Get(0).([]armory.RaceRef); ok {
		return races, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) FetchRealms(ctx context.Context, token string) ([]armory.RealmRef, error) {
	args := m.Called(ctx, token)
	if realms, ok := args.Get(0).([]armory.RealmRef); ok {
		return realms, args.Error(1)
	}
	return nil, args.Error(1)
}
