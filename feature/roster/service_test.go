package roster_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"armory-sync/core/armory"
	armorymocks "armory-sync/core/armory/mocks"
	"armory-sync/feature/roster"
	"armory-sync/feature/roster/mocks"
	"armory-sync/feature/roster/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func uintPtr(v uint) *uint { return &v }

func setupService(t *testing.T) (*roster.Service, *mocks.Store, *armorymocks.Client) {
	t.Helper()
	store := new(mocks.Store)
	client := new(armorymocks.Client)
	svc := roster.NewService(store, client, nil, zap.NewNop())
	return svc, store, client
}

func testUser() *models.User {
	return &models.User{ID: 1, BattleTag: "Thrall#1234", AccessToken: "tkn"}
}

func TestReconcile_SingleCharacterWithGuild(t *testing.T) {
	svc, store, client := setupService(t)

	store.On("GetUser", mock.Anything, uint(1)).Return(testUser(), nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").Return([]armory.CharacterSummary{
		{Name: "Thrall", RealmSlug: "icecrown", Region: "us", ClassID: 7, RaceID: 2, Level: 70},
	}, nil)
	client.On("FetchCharacterDetail", mock.Anything, "tkn", "icecrown", "Thrall").
		Return(&armory.GuildSummary{Name: "Horde Vanguard", RealmSlug: "icecrown", Region: "us", Faction: "HORDE"}, nil)

	store.On("UpsertGuilds", mock.Anything, mock.MatchedBy(func(guilds []models.Guild) bool {
		return len(guilds) == 1 && guilds[0].Name == "Horde Vanguard" &&
			guilds[0].Faction != nil && *guilds[0].Faction == "HORDE"
	})).Return([]models.Guild{
		{ID: 7, Name: "Horde Vanguard", RealmSlug: "icecrown", Region: "us"},
	}, nil)

	store.On("UpsertCharacters", mock.Anything, mock.MatchedBy(func(chars []models.Character) bool {
		if len(chars) != 1 {
			return false
		}
		c := chars[0]
		return c.Name == "Thrall" && c.RealmSlug == "icecrown" && c.Region == "us" &&
			c.UserID != nil && *c.UserID == 1 &&
			c.GuildID != nil && *c.GuildID == 7 &&
			c.Level == 70 && c.ClassID == 7 && c.RaceID == 2
	})).Return(nil)

	store.On("ListCharactersByOwner", mock.Anything, uint(1)).Return([]models.Character{
		{Name: "Thrall", RealmSlug: "icecrown", Region: "us", UserID: uintPtr(1)},
	}, nil)

	result, err := svc.Reconcile(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Characters)
	assert.Equal(t, "Thrall#1234", result.BattleTag)
	store.AssertNotCalled(t, "DeleteCharacter", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestReconcile_UserNotFound(t *testing.T) {
	svc, store, client := setupService(t)

	store.On("GetUser", mock.Anything, uint(99)).Return(nil, roster.ErrUserNotFound)

	_, err := svc.Reconcile(context.Background(), 99)

	assert.ErrorIs(t, err, roster.ErrUserNotFound)
	client.AssertNotCalled(t, "FetchAccountRoster", mock.Anything, mock.Anything)
}

func TestReconcile_UnauthorizedLeavesStoreUntouched(t *testing.T) {
	svc, store, client := setupService(t)

	store.On("GetUser", mock.Anything, uint(1)).Return(testUser(), nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").Return(nil, armory.ErrUnauthorized)

	_, err := svc.Reconcile(context.Background(), 1)

	assert.ErrorIs(t, err, roster.ErrUnauthorized)
	store.AssertNotCalled(t, "UpsertGuilds", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UpsertCharacters", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "DeleteCharacter", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_RosterFetchFailure(t *testing.T) {
	svc, store, client := setupService(t)

	store.On("GetUser", mock.Anything, uint(1)).Return(testUser(), nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").Return(nil, armory.ErrUnavailable)

	_, err := svc.Reconcile(context.Background(), 1)

	assert.ErrorIs(t, err, roster.ErrUpstreamUnavailable)
}

func TestReconcile_EmptyRosterDeletesOwned(t *testing.T) {
	svc, store, client := setupService(t)

	store.On("GetUser", mock.Anything, uint(1)).Return(testUser(), nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").Return([]armory.CharacterSummary{}, nil)

	owned := []models.Character{
		{Name: "Thrall", RealmSlug: "icecrown", Region: "us", UserID: uintPtr(1)},
		{Name: "Jaina", RealmSlug: "area52", Region: "us", UserID: uintPtr(1)},
		{Name: "Sylvanas", RealmSlug: "area52", Region: "us", UserID: uintPtr(1)},
	}
	store.On("ListCharactersByOwner", mock.Anything, uint(1)).Return(owned, nil)
	store.On("DeleteCharacter", mock.Anything, uint(1), mock.Anything).Return(nil).Times(3)

	result, err := svc.Reconcile(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Characters)
	// No guild or character writes happen for an empty roster.
	store.AssertNotCalled(t, "UpsertCharacters", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestReconcile_SharedGuildDeduped(t *testing.T) {
	svc, store, client := setupService(t)

	store.On("GetUser", mock.Anything, uint(1)).Return(testUser(), nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").Return([]armory.CharacterSummary{
		{Name: "Thrall", RealmSlug: "icecrown", Region: "us"},
		{Name: "Rehgar", RealmSlug: "icecrown", Region: "us"},
	}, nil)

	guild := &armory.GuildSummary{Name: "Alpha", RealmSlug: "area52", Region: "us"}
	client.On("FetchCharacterDetail", mock.Anything, "tkn", "icecrown", "Thrall").Return(guild, nil)
	client.On("FetchCharacterDetail", mock.Anything, "tkn", "icecrown", "Rehgar").Return(guild, nil)

	// Exactly one guild reaches the store.
	store.On("UpsertGuilds", mock.Anything, mock.MatchedBy(func(guilds []models.Guild) bool {
		return len(guilds) == 1 && guilds[0].Name == "Alpha"
	})).Return([]models.Guild{{ID: 3, Name: "Alpha", RealmSlug: "area52", Region: "us"}}, nil)

	store.On("UpsertCharacters", mock.Anything, mock.MatchedBy(func(chars []models.Character) bool {
		return len(chars) == 2 &&
			chars[0].GuildID != nil && *chars[0].GuildID == 3 &&
			chars[1].GuildID != nil && *chars[1].GuildID == 3
	})).Return(nil)

	store.On("ListCharactersByOwner", mock.Anything, uint(1)).Return([]models.Character{}, nil)

	result, err := svc.Reconcile(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Characters)
	store.AssertExpectations(t)
}

func TestReconcile_DetailFailureYieldsNullGuild(t *testing.T) {
	svc, store, client := setupService(t)

	store.On("GetUser", mock.Anything, uint(1)).Return(testUser(), nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").Return([]armory.CharacterSummary{
		{Name: "Thrall", RealmSlug: "icecrown", Region: "us"},
		{Name: "Jaina", RealmSlug: "area52", Region: "us"},
	}, nil)

	// One fetch fails outright, one reports no guild. Both reduce to a null
	// guild reference and neither blocks the upsert.
	client.On("FetchCharacterDetail", mock.Anything, "tkn", "icecrown", "Thrall").
		Return(nil, armory.ErrUnavailable)
	client.On("FetchCharacterDetail", mock.Anything, "tkn", "area52", "Jaina").
		Return((*armory.GuildSummary)(nil), nil)

	store.On("UpsertCharacters", mock.Anything, mock.MatchedBy(func(chars []models.Character) bool {
		return len(chars) == 2 && chars[0].GuildID == nil && chars[1].GuildID == nil
	})).Return(nil)

	store.On("ListCharactersByOwner", mock.Anything, uint(1)).Return([]models.Character{}, nil)

	result, err := svc.Reconcile(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Characters)
	// No guild was discovered, so no guild batch is written.
	store.AssertNotCalled(t, "UpsertGuilds", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestReconcile_GuildBatchFailureAbortsBeforeCharacters(t *testing.T) {
	svc, store, client := setupService(t)

	store.On("GetUser", mock.Anything, uint(1)).Return(testUser(), nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").Return([]armory.CharacterSummary{
		{Name: "Thrall", RealmSlug: "icecrown", Region: "us"},
	}, nil)
	client.On("FetchCharacterDetail", mock.Anything, "tkn", "icecrown", "Thrall").
		Return(&armory.GuildSummary{Name: "Alpha", RealmSlug: "area52", Region: "us"}, nil)

	store.On("UpsertGuilds", mock.Anything, mock.Anything).Return(nil, errors.New("deadlock"))

	_, err := svc.Reconcile(context.Background(), 1)

	assert.ErrorIs(t, err, roster.ErrPersistence)
	store.AssertNotCalled(t, "UpsertCharacters", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "DeleteCharacter", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_CharacterBatchFailure(t *testing.T) {
	svc, store, client := setupService(t)

	store.On("GetUser", mock.Anything, uint(1)).Return(testUser(), nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").Return([]armory.CharacterSummary{
		{Name: "Thrall", RealmSlug: "icecrown", Region: "us"},
	}, nil)
	client.On("FetchCharacterDetail", mock.Anything, "tkn", "icecrown", "Thrall").
		Return((*armory.GuildSummary)(nil), nil)

	store.On("UpsertCharacters", mock.Anything, mock.Anything).Return(errors.New("connection lost"))

	_, err := svc.Reconcile(context.Background(), 1)

	assert.ErrorIs(t, err, roster.ErrPersistence)
	store.AssertNotCalled(t, "DeleteCharacter", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_OrphanCleanupSkipsRosterMembers(t *testing.T) {
	svc, store, client := setupService(t)

	store.On("GetUser", mock.Anything, uint(1)).Return(testUser(), nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").Return([]armory.CharacterSummary{
		{Name: "Thrall", RealmSlug: "icecrown", Region: "us"},
	}, nil)
	client.On("FetchCharacterDetail", mock.Anything, "tkn", "icecrown", "Thrall").
		Return((*armory.GuildSummary)(nil), nil)

	store.On("UpsertCharacters", mock.Anything, mock.Anything).Return(nil)

	// The stored row has different casing; it still matches the roster entry.
	store.On("ListCharactersByOwner", mock.Anything, uint(1)).Return([]models.Character{
		{Name: "THRALL", RealmSlug: "icecrown", Region: "us", UserID: uintPtr(1)},
		{Name: "Oldmain", RealmSlug: "icecrown", Region: "us", UserID: uintPtr(1)},
	}, nil)

	store.On("DeleteCharacter", mock.Anything, uint(1),
		roster.Key{Name: "Oldmain", RealmSlug: "icecrown", Region: "us"}).Return(nil)

	result, err := svc.Reconcile(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Characters)
	store.AssertExpectations(t)
}

func TestReconcile_CleanupDeleteFailureIsSwallowed(t *testing.T) {
	svc, store, client := setupService(t)

	store.On("GetUser", mock.Anything, uint(1)).Return(testUser(), nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").Return([]armory.CharacterSummary{}, nil)

	store.On("ListCharactersByOwner", mock.Anything, uint(1)).Return([]models.Character{
		{Name: "Oldmain", RealmSlug: "icecrown", Region: "us", UserID: uintPtr(1)},
	}, nil)
	store.On("DeleteCharacter", mock.Anything, uint(1), mock.Anything).
		Return(errors.New("lock wait timeout"))

	result, err := svc.Reconcile(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Characters)
}

func TestReconcile_Idempotent(t *testing.T) {
	svc, store, client := setupService(t)

	store.On("GetUser", mock.Anything, uint(1)).Return(testUser(), nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").Return([]armory.CharacterSummary{
		{Name: "Thrall", RealmSlug: "icecrown", Region: "us", Level: 70},
	}, nil)
	client.On("FetchCharacterDetail", mock.Anything, "tkn", "icecrown", "Thrall").
		Return(&armory.GuildSummary{Name: "Alpha", RealmSlug: "area52", Region: "us"}, nil)

	var guildBatches [][]models.Guild
	store.On("UpsertGuilds", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			guildBatches = append(guildBatches, args.Get(1).([]models.Guild))
		}).
		Return([]models.Guild{{ID: 3, Name: "Alpha", RealmSlug: "area52", Region: "us"}}, nil)

	var charBatches [][]models.Character
	store.On("UpsertCharacters", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			charBatches = append(charBatches, args.Get(1).([]models.Character))
		}).
		Return(nil)

	store.On("ListCharactersByOwner", mock.Anything, uint(1)).Return([]models.Character{
		{Name: "Thrall", RealmSlug: "icecrown", Region: "us", UserID: uintPtr(1)},
	}, nil)

	first, err := svc.Reconcile(context.Background(), 1)
	require.NoError(t, err)
	second, err := svc.Reconcile(context.Background(), 1)
	require.NoError(t, err)

	// Same result and byte-identical batches both runs: re-running with an
	// unchanged remote roster is a no-op for the stored rows.
	assert.Equal(t, first, second)
	require.Len(t, guildBatches, 2)
	assert.Equal(t, guildBatches[0], guildBatches[1])
	require.Len(t, charBatches, 2)
	assert.Equal(t, charBatches[0], charBatches[1])
	store.AssertNotCalled(t, "DeleteCharacter", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_ListFailureSkipsCleanup(t *testing.T) {
	svc, store, client := setupService(t)

	store.On("GetUser", mock.Anything, uint(1)).Return(testUser(), nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").Return([]armory.CharacterSummary{}, nil)
	store.On("ListCharactersByOwner", mock.Anything, uint(1)).Return(nil, errors.New("timeout"))

	result, err := svc.Reconcile(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Characters)
	store.AssertNotCalled(t, "DeleteCharacter", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_SameUserRunsAreSerialized(t *testing.T) {
	svc, store, client := setupService(t)

	var (
		eventsMu sync.Mutex
		events   []string
	)
	record := func(name string) {
		eventsMu.Lock()
		events = append(events, name)
		eventsMu.Unlock()
	}

	firstStarted := make(chan struct{})
	release := make(chan struct{})
	var fetches int32

	// The first run parks inside GetUser until the second run has been
	// launched and had time to block on the per-user lock.
	store.On("GetUser", mock.Anything, uint(1)).Run(func(mock.Arguments) {
		record("fetch")
		if atomic.AddInt32(&fetches, 1) == 1 {
			close(firstStarted)
			<-release
		}
	}).Return(testUser(), nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").Return([]armory.CharacterSummary{}, nil)
	store.On("ListCharactersByOwner", mock.Anything, uint(1)).Run(func(mock.Arguments) {
		record("cleanup")
	}).Return([]models.Character{}, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = svc.Reconcile(context.Background(), 1)
	}()
	<-firstStarted
	go func() {
		defer wg.Done()
		_, _ = svc.Reconcile(context.Background(), 1)
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	// If the runs overlapped, the second fetch would land before the
	// first run's cleanup.
	assert.Equal(t, []string{"fetch", "cleanup", "fetch", "cleanup"}, events)
}
