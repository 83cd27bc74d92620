package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicProfile(t *testing.T) {
	db := setupTestDB(t)
	profiles := NewProfileService(db)
	progression := NewProgressionService(db)
	tournaments := NewTournamentService(db)
	char := newTestCharacter(t, db, "user-1", "Tony")

	_, err := progression.ConfirmTricks(char.ID, trickIDs(t, db, "Ollie"), "trainer-1")
	require.NoError(t, err)
	_, _, err = progression.AddTrainingVisit(char.ID, time.Now().UTC(), "trainer-1", "")
	require.NoError(t, err)

	// One sealed tournament in the past for the history section.
	past := time.Now().UTC().AddDate(0, 0, -7)
	_, _, err = tournaments.Join(char.ID, past)
	require.NoError(t, err)
	require.NoError(t, tournaments.Rollover(time.Now().UTC()))

	profile, err := profiles.BySlug("tony")
	require.NoError(t, err)
	assert.Equal(t, "Tony", profile.Name)
	assert.Equal(t, 1, profile.MasteredTricks)
	assert.Equal(t, 1, profile.TrainingVisits)
	require.Len(t, profile.History, 1)
	assert.Equal(t, 1, profile.History[0].Rank)

	// Earned-only achievements, no balance exposure.
	for _, a := range profile.Achievements {
		assert.True(t, a.Earned)
	}

	byID, err := profiles.ByCharacterID(char.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.Slug, byID.Slug)

	_, err = profiles.BySlug("nobody")
	require.ErrorIs(t, err, ErrCharacterNotFound)
}
