// handlers/kinetic.go
package handlers

import (
	"strconv"
	"time"

	"kinetic-engine/middleware"
	"kinetic-engine/models"
	"kinetic-engine/services"

	"github.com/gofiber/fiber/v2"
)

// KineticHandler bundles the services behind the single action-dispatched
// endpoint. Every request names its operation in the `action` query
// parameter; reads go through GET, state changes through POST.
type KineticHandler struct {
	Characters    *services.CharacterService
	Ledger        *services.LedgerService
	Ownership     *services.OwnershipService
	Progression   *services.ProgressionService
	Achievements  *services.AchievementService
	Tournaments   *services.TournamentService
	Leaderboards  *services.LeaderboardService
	Notifications *services.NotificationService
	Profiles      *services.ProfileService
}

func SetupKineticRoutes(app *fiber.App, h *KineticHandler) {
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Get("/kinetic", h.handleGet)
	secured.Post("/kinetic", h.handlePost)
	// The gateway forwards secured paths with an /s/ prefix.
	secured.Get("/s/kinetic", h.handleGet)
	secured.Post("/s/kinetic", h.handlePost)
}

// writeErr maps domain errors to their stable codes; anything unexpected is a
// plain 500 without internals leaking to the client.
func writeErr(c *fiber.Ctx, err error) error {
	if reqErr, ok := services.IsRequestError(err); ok {
		return c.Status(reqErr.Status).JSON(fiber.Map{"error": reqErr.Code, "message": reqErr.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
}

func (h *KineticHandler) requireCharacter(c *fiber.Ctx) (*models.Character, error) {
	userID, _ := c.Locals("user_id").(string)
	return h.Characters.ByUserID(userID)
}

func requireTrainer(c *fiber.Ctx) bool {
	return middleware.HasRole(c, "trainer") || middleware.HasRole(c, "admin")
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "trainer or admin role required"})
}

func (h *KineticHandler) handleGet(c *fiber.Ctx) error {
	switch action := c.Query("action"); action {
	case "my_character":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"character": char})

	case "all_characters":
		chars, err := h.Characters.All(c.QueryInt("limit"))
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"characters": chars})

	case "tricks":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		tricks, err := h.Progression.TricksFor(char.ID, c.Query("sport_type"))
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"tricks": tricks})

	case "mastered_tricks":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		tricks, err := h.Progression.MasteredTricks(char.ID)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"tricks": tricks})

	case "transactions":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		rows, err := h.Ledger.Transactions(char.ID, c.QueryInt("limit"))
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"transactions": rows, "kinetics": char.Kinetics})

	case "notifications":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		rows, unread, err := h.Notifications.List(char.ID, c.QueryInt("limit"))
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"notifications": rows, "unread_count": unread})

	case "achievements":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		rows, err := h.Achievements.AchievementsFor(char.ID)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"achievements": rows})

	case "purchased_items":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		items, err := h.Ownership.PurchasedItems(char.ID)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"purchased_items": items})

	case "accessories":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		rows, err := h.Ownership.Accessories(char.ID)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"accessories": rows})

	case "current_tournament":
		t, entries, err := h.Tournaments.Current(time.Now().UTC())
		if err != nil {
			return writeErr(c, err)
		}
		resp := fiber.Map{"tournament": t, "entries": entries}
		if char, err := h.requireCharacter(c); err == nil {
			for _, e := range entries {
				if e.CharacterID == char.ID {
					resp["my_entry"] = e
					break
				}
			}
		}
		return c.JSON(resp)

	case "tournament_history":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		entries, tournaments, err := h.Tournaments.History(char.ID, c.QueryInt("limit"))
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"entries": entries, "tournaments": tournaments})

	case "leaderboard":
		period := c.Query("period", models.PeriodWeekly)
		rows, err := h.Leaderboards.Leaderboard(period, time.Now().UTC(), c.QueryInt("limit"))
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"period": period, "leaderboard": rows})

	case "public_profile":
		if slugValue := c.Query("slug"); slugValue != "" {
			profile, err := h.Profiles.BySlug(slugValue)
			if err != nil {
				return writeErr(c, err)
			}
			return c.JSON(fiber.Map{"profile": profile})
		}
		id, err := strconv.Atoi(c.Query("character_id"))
		if err != nil || id <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "missing_fields", "message": "slug or character_id is required"})
		}
		profile, err := h.Profiles.ByCharacterID(uint(id))
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"profile": profile})

	case "training_visits":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		visits, err := h.Progression.TrainingVisits(char.ID, c.QueryInt("limit"))
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"training_visits": visits})

	default:
		return c.Status(400).JSON(fiber.Map{"error": "unknown_action", "message": "unknown action: " + action})
	}
}

func (h *KineticHandler) handlePost(c *fiber.Ctx) error {
	switch action := c.Query("action"); action {
	case "create_character":
		var in services.CreateCharacterInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "bad_request", "message": "invalid JSON body"})
		}
		in.UserID, _ = c.Locals("user_id").(string)
		char, err := h.Characters.Create(in)
		if err != nil {
			return writeErr(c, err)
		}
		return c.Status(201).JSON(fiber.Map{"character": char})

	case "update_character":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		var in services.UpdateInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "bad_request", "message": "invalid JSON body"})
		}
		updated, err := h.Characters.Update(char.ID, in)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"character": updated})

	case "add_kinetics":
		if !requireTrainer(c) {
			return forbidden(c)
		}
		var in struct {
			CharacterID uint   `json:"character_id"`
			Amount      int    `json:"amount"` // signed: negative debits
			Source      string `json:"source"`
			Description string `json:"description"`
		}
		if err := c.BodyParser(&in); err != nil || in.Amount == 0 || in.CharacterID == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "bad_request", "message": "character_id and a non-zero amount are required"})
		}
		if in.Source == "" {
			in.Source = models.SourceAdmin
		}
		createdBy, _ := c.Locals("user_id").(string)
		char, transaction, err := h.Ledger.Adjust(in.CharacterID, in.Amount, in.Source, in.Description, createdBy)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"character": char, "transaction": transaction})

	case "confirm_tricks":
		if !requireTrainer(c) {
			return forbidden(c)
		}
		var in struct {
			CharacterID uint   `json:"character_id"`
			TrickIDs    []uint `json:"trick_ids"`
		}
		if err := c.BodyParser(&in); err != nil || in.CharacterID == 0 || len(in.TrickIDs) == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "bad_request", "message": "character_id and trick_ids are required"})
		}
		confirmedBy, _ := c.Locals("user_id").(string)
		result, err := h.Progression.ConfirmTricks(in.CharacterID, in.TrickIDs, confirmedBy)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(result)

	case "game_complete":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		var in services.GameCompleteInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "bad_request", "message": "invalid JSON body"})
		}
		result, err := h.Progression.GameComplete(char.ID, in)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(result)

	case "mark_notifications_read":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		var in struct {
			IDs []string `json:"notification_ids"`
		}
		if err := c.BodyParser(&in); err != nil {
			in.IDs = nil // empty body marks everything read
		}
		marked, err := h.Notifications.MarkRead(char.ID, in.IDs)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"marked_read": marked})

	case "purchase_customization":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		var in struct {
			ItemType  string `json:"item_type"`
			ItemValue string `json:"item_value"`
			ItemName  string `json:"item_name"`
		}
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "bad_request", "message": "invalid JSON body"})
		}
		result, err := h.Ownership.PurchaseCustomization(char.ID, in.ItemType, in.ItemValue, in.ItemName)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(result)

	case "add_sport":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		var in struct {
			SportType string `json:"sport_type"`
		}
		if err := c.BodyParser(&in); err != nil || in.SportType == "" {
			return c.Status(400).JSON(fiber.Map{"error": "bad_request", "message": "sport_type is required"})
		}
		updated, err := h.Ownership.AddSport(char.ID, in.SportType)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"character": updated})

	case "buy_accessory":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		var in struct {
			AccessoryID uint `json:"accessory_id"`
		}
		if err := c.BodyParser(&in); err != nil || in.AccessoryID == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "bad_request", "message": "accessory_id is required"})
		}
		acc, updated, err := h.Ownership.BuyAccessory(char.ID, in.AccessoryID)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"accessory": acc, "character": updated})

	case "equip_accessory":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		var in struct {
			AccessoryID uint  `json:"accessory_id"`
			Equipped    *bool `json:"equipped"`
		}
		if err := c.BodyParser(&in); err != nil || in.AccessoryID == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "bad_request", "message": "accessory_id is required"})
		}
		equipped := true
		if in.Equipped != nil {
			equipped = *in.Equipped
		}
		if err := h.Ownership.EquipAccessory(char.ID, in.AccessoryID, equipped); err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"accessory_id": in.AccessoryID, "equipped": equipped})

	case "join_tournament":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		t, entry, err := h.Tournaments.Join(char.ID, time.Now().UTC())
		if err != nil {
			return writeErr(c, err)
		}
		char, err = h.Characters.ByID(char.ID)
		if err != nil {
			return writeErr(c, err)
		}
		return c.Status(201).JSON(fiber.Map{"tournament": t, "entry": entry, "character": char})

	case "add_training_visit":
		if !requireTrainer(c) {
			return forbidden(c)
		}
		var in struct {
			CharacterID uint   `json:"character_id"`
			VisitDate   string `json:"visit_date"`
			Notes       string `json:"notes"`
		}
		if err := c.BodyParser(&in); err != nil || in.CharacterID == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "bad_request", "message": "character_id is required"})
		}
		var visitDate time.Time
		if in.VisitDate != "" {
			parsed, err := time.Parse(time.RFC3339, in.VisitDate)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "bad_request", "message": "invalid visit_date (use RFC3339)"})
			}
			visitDate = parsed
		}
		confirmedBy, _ := c.Locals("user_id").(string)
		visit, earned, err := h.Progression.AddTrainingVisit(in.CharacterID, visitDate, confirmedBy, in.Notes)
		if err != nil {
			return writeErr(c, err)
		}
		char, err := h.Characters.ByID(in.CharacterID)
		if err != nil {
			return writeErr(c, err)
		}
		return c.Status(201).JSON(fiber.Map{"training_visit": visit, "achievements_earned": earned, "character": char})

	case "set_trainer":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		var in struct {
			TrainerName string `json:"trainer_name"`
		}
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "bad_request", "message": "invalid JSON body"})
		}
		updated, err := h.Characters.Update(char.ID, services.UpdateInput{TrainerName: &in.TrainerName})
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"character": updated})

	case "set_age":
		char, err := h.requireCharacter(c)
		if err != nil {
			return writeErr(c, err)
		}
		var in struct {
			Age *int `json:"age"`
		}
		if err := c.BodyParser(&in); err != nil || in.Age == nil || *in.Age <= 0 {
			return c.Status(400).JSON(fiber.Map{"error": "bad_request", "message": "a positive age is required"})
		}
		updated, err := h.Characters.Update(char.ID, services.UpdateInput{Age: in.Age})
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"character": updated})

	case "send_weekly_results":
		if !requireTrainer(c) {
			return forbidden(c)
		}
		t, err := h.Tournaments.SendWeeklyResults()
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(fiber.Map{"tournament": t, "sent": true})

	default:
		return c.Status(400).JSON(fiber.Map{"error": "unknown_action", "message": "unknown action: " + action})
	}
}
