// handlers/kinetic_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"kinetic-engine/models"
	"kinetic-engine/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Character{},
		&models.KineticsTransaction{},
		&models.Trick{},
		&models.CharacterTrick{},
		&models.Achievement{},
		&models.CharacterAchievement{},
		&models.Accessory{},
		&models.CharacterAccessory{},
		&models.PurchasedItem{},
		&models.Tournament{},
		&models.TournamentEntry{},
		&models.LeaderboardEntry{},
		&models.TrainingVisit{},
		&models.GameResult{},
		&models.CharacterNotification{},
	))
	require.NoError(t, services.SeedCatalog(db))

	app := fiber.New()
	SetupKineticRoutes(app, &KineticHandler{
		Characters:    services.NewCharacterService(db),
		Ledger:        services.NewLedgerService(db),
		Ownership:     services.NewOwnershipService(db),
		Progression:   services.NewProgressionService(db),
		Achievements:  services.NewAchievementService(db),
		Tournaments:   services.NewTournamentService(db),
		Leaderboards:  services.NewLeaderboardService(db),
		Notifications: services.NewNotificationService(db),
		Profiles:      services.NewProfileService(db),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, userID, roles string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if roles != "" {
		req.Header.Set("X-User-Roles", roles)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var payload map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

func TestCreateAndFetchCharacter(t *testing.T) {
	app := setupTestApp(t)

	resp, payload := doJSON(t, app, "POST", "/kinetic?action=create_character", "user-1", "", fiber.Map{
		"name":       "Nika",
		"sport_type": models.SportRollers,
	})
	require.Equal(t, 201, resp.StatusCode)
	char := payload["character"].(map[string]any)
	assert.Equal(t, "Nika", char["name"])
	assert.Equal(t, float64(models.StartingKinetics), char["kinetics"])

	resp, payload = doJSON(t, app, "GET", "/kinetic?action=my_character", "user-1", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	char = payload["character"].(map[string]any)
	assert.Equal(t, "nika", char["slug"])

	// A second character for the same user is rejected with a stable code.
	resp, payload = doJSON(t, app, "POST", "/kinetic?action=create_character", "user-1", "", fiber.Map{
		"name":       "Other",
		"sport_type": models.SportBMX,
	})
	require.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "character_exists", payload["error"])
}

func TestMissingUserContextRejected(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := doJSON(t, app, "GET", "/kinetic?action=my_character", "", "", nil)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestUnknownActionRejected(t *testing.T) {
	app := setupTestApp(t)

	resp, payload := doJSON(t, app, "GET", "/kinetic?action=frobnicate", "user-1", "", nil)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "unknown_action", payload["error"])

	resp, payload = doJSON(t, app, "POST", "/kinetic?action=frobnicate", "user-1", "", nil)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "unknown_action", payload["error"])
}

func TestTrainerActionsRequireRole(t *testing.T) {
	app := setupTestApp(t)

	_, payload := doJSON(t, app, "POST", "/kinetic?action=create_character", "user-1", "", fiber.Map{
		"name":       "Nika",
		"sport_type": models.SportSkate,
	})
	charID := uint(payload["character"].(map[string]any)["id"].(float64))

	// Plain user may not grant kinetics.
	resp, _ := doJSON(t, app, "POST", "/kinetic?action=add_kinetics", "user-1", "", fiber.Map{
		"character_id": charID,
		"amount":       50,
	})
	assert.Equal(t, 403, resp.StatusCode)

	// A trainer may.
	resp, payload = doJSON(t, app, "POST", "/kinetic?action=add_kinetics", "trainer-9", "trainer", fiber.Map{
		"character_id": charID,
		"amount":       50,
		"description":  "contest prize",
	})
	require.Equal(t, 200, resp.StatusCode)
	char := payload["character"].(map[string]any)
	assert.Equal(t, float64(150), char["kinetics"])
}

func TestPurchaseFlowOverHTTP(t *testing.T) {
	app := setupTestApp(t)

	doJSON(t, app, "POST", "/kinetic?action=create_character", "user-1", "", fiber.Map{
		"name":       "Nika",
		"sport_type": models.SportSkate,
	})

	resp, payload := doJSON(t, app, "POST", "/kinetic?action=purchase_customization", "user-1", "", fiber.Map{
		"item_type":  models.ItemTypeHairColor,
		"item_value": "#ff00ff",
	})
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, float64(20), payload["cost"])
	assert.Equal(t, false, payload["was_free"])

	// Overdrafts surface as not_enough_kinetics.
	resp, payload = doJSON(t, app, "POST", "/kinetic?action=add_sport", "user-1", "", fiber.Map{
		"sport_type": models.SportBMX, // costs 100, only 80 left
	})
	require.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "not_enough_kinetics", payload["error"])
}

func TestTournamentFlowOverHTTP(t *testing.T) {
	app := setupTestApp(t)

	doJSON(t, app, "POST", "/kinetic?action=create_character", "user-1", "", fiber.Map{
		"name":       "Nika",
		"sport_type": models.SportSkate,
	})

	resp, _ := doJSON(t, app, "POST", "/kinetic?action=join_tournament", "user-1", "", nil)
	require.Equal(t, 201, resp.StatusCode)

	resp, payload := doJSON(t, app, "POST", "/kinetic?action=join_tournament", "user-1", "", nil)
	require.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "already_joined", payload["error"])

	resp, payload = doJSON(t, app, "GET", "/kinetic?action=current_tournament", "user-1", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.NotNil(t, payload["my_entry"])
}
