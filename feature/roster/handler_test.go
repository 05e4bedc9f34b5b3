package roster_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"armory-sync/core/armory"
	armorymocks "armory-sync/core/armory/mocks"
	"armory-sync/feature/roster"
	"armory-sync/feature/roster/mocks"
	"armory-sync/feature/roster/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) (*fiber.App, *mocks.Store, *armorymocks.Client) {
	t.Helper()
	app := fiber.New()
	store := new(mocks.Store)
	client := new(armorymocks.Client)
	svc := roster.NewService(store, client, nil, zap.NewNop())
	handler := roster.NewHandler(svc)
	handler.RegisterRoutes(app)
	return app, store, client
}

func TestHandleReconcile_Success(t *testing.T) {
	app, store, client := setupTestApp(t)

	store.On("GetUser", mock.Anything, uint(1)).
		Return(&models.User{ID: 1, BattleTag: "Thrall#1234", AccessToken: "tkn"}, nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").
		Return([]armory.CharacterSummary{
			{Name: "Thrall", RealmSlug: "icecrown", Region: "us", Level: 70},
		}, nil)
	client.On("FetchCharacterDetail", mock.Anything, "tkn", "icecrown", "Thrall").
		Return((*armory.GuildSummary)(nil), nil)
	store.On("UpsertCharacters", mock.Anything, mock.Anything).Return(nil)
	store.On("ListCharactersByOwner", mock.Anything, uint(1)).
		Return([]models.Character{}, nil)

	req := httptest.NewRequest("POST", "/users/1/reconcile", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "Thrall#1234", body["battle_tag"])
	assert.Equal(t, float64(1), body["characters"])
}

func TestHandleReconcile_UserNotFound(t *testing.T) {
	app, store, _ := setupTestApp(t)

	store.On("GetUser", mock.Anything, uint(7)).Return(nil, roster.ErrUserNotFound)

	req := httptest.NewRequest("POST", "/users/7/reconcile", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleReconcile_TokenRejected(t *testing.T) {
	app, store, client := setupTestApp(t)

	store.On("GetUser", mock.Anything, uint(1)).
		Return(&models.User{ID: 1, AccessToken: "expired"}, nil)
	client.On("FetchAccountRoster", mock.Anything, "expired").
		Return(nil, armory.ErrUnauthorized)

	req := httptest.NewRequest("POST", "/users/1/reconcile", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHandleReconcile_UpstreamUnavailable(t *testing.T) {
	app, store, client := setupTestApp(t)

	store.On("GetUser", mock.Anything, uint(1)).
		Return(&models.User{ID: 1, AccessToken: "tkn"}, nil)
	client.On("FetchAccountRoster", mock.Anything, "tkn").
		Return(nil, armory.ErrUnavailable)

	req := httptest.NewRequest("POST", "/users/1/reconcile", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 502, resp.StatusCode)
}

func TestHandleReconcile_InvalidID(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/users/abc/reconcile", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
