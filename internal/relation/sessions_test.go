package relation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"squadup/backend/internal/models"
	"squadup/backend/internal/relation"
	"squadup/backend/internal/testutil"
)

func userRef(id uint) relation.ParticipantRef  { return relation.ParticipantRef{UserID: &id} }
func groupRef(id uint) relation.ParticipantRef { return relation.ParticipantRef{GroupID: &id} }

func participantRows(t *testing.T, db *gorm.DB, sessionID uint) []models.SessionParticipant {
	t.Helper()
	var rows []models.SessionParticipant
	require.NoError(t, db.Where("session_id = ?", sessionID).Order("user_id").Find(&rows).Error)
	return rows
}

func TestSessionCreateWithUserRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewSessionService(db)
	host := testutil.CreateUser(t, db, "host")
	bob := testutil.CreateUser(t, db, "bob")
	game := testutil.CreateGame(t, db, "deep-rock")

	session, err := svc.Create(host.ID, game.ID, time.Now().Add(24*time.Hour), "casual run",
		[]relation.ParticipantRef{userRef(bob.ID), userRef(host.ID)})
	require.NoError(t, err)
	assert.Equal(t, host.ID, session.HostID)

	// The host never appears on their own participant list.
	rows := participantRows(t, db, session.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, bob.ID, rows[0].UserID)
	assert.Equal(t, models.ParticipantPending, rows[0].Status)
}

func TestSessionCreateExpandsGroupRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	groups := relation.NewGroupService(db)
	svc := relation.NewSessionService(db)
	host := testutil.CreateUser(t, db, "host")
	owner := testutil.CreateUser(t, db, "owner")
	bob := testutil.CreateUser(t, db, "bob")
	game := testutil.CreateGame(t, db, "deep-rock")

	group, err := groups.Create(owner.ID, "raiders", "", []uint{bob.ID, host.ID})
	require.NoError(t, err)

	// The group expands to owner + members; host and the duplicate bob ref
	// collapse away.
	session, err := svc.Create(host.ID, game.ID, time.Now().Add(time.Hour), "",
		[]relation.ParticipantRef{groupRef(group.ID), userRef(bob.ID)})
	require.NoError(t, err)

	rows := participantRows(t, db, session.ID)
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	assert.ElementsMatch(t, []uint{owner.ID, bob.ID}, ids)
}

func TestSessionCreateHostAlreadyHosting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewSessionService(db)
	host := testutil.CreateUser(t, db, "host")
	bob := testutil.CreateUser(t, db, "bob")
	game := testutil.CreateGame(t, db, "deep-rock")

	first, err := svc.Create(host.ID, game.ID, time.Now().Add(time.Hour), "first",
		[]relation.ParticipantRef{userRef(bob.ID)})
	require.NoError(t, err)

	_, err = svc.Create(host.ID, game.ID, time.Now().Add(2*time.Hour), "second", nil)
	require.Error(t, err)
	assert.Equal(t, relation.KindConflict, relation.KindOf(err))

	// The first session is untouched.
	fresh, err := svc.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", fresh.Description)
	assert.Len(t, participantRows(t, db, first.ID), 1)

	var count int64
	require.NoError(t, db.Model(&models.GameSession{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSessionCreateBadRefWritesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewSessionService(db)
	host := testutil.CreateUser(t, db, "host")
	game := testutil.CreateGame(t, db, "deep-rock")

	// Neither side set.
	_, err := svc.Create(host.ID, game.ID, time.Now(), "", []relation.ParticipantRef{{}})
	require.Error(t, err)
	assert.Equal(t, relation.KindValidation, relation.KindOf(err))

	// Unknown group.
	missing := uint(12345)
	_, err = svc.Create(host.ID, game.ID, time.Now(), "",
		[]relation.ParticipantRef{{GroupID: &missing}})
	require.Error(t, err)
	assert.Equal(t, relation.KindNotFound, relation.KindOf(err))

	var count int64
	require.NoError(t, db.Model(&models.GameSession{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSessionCreateUnknownGame(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewSessionService(db)
	host := testutil.CreateUser(t, db, "host")

	_, err := svc.Create(host.ID, 999, time.Now(), "", nil)
	require.Error(t, err)
	assert.Equal(t, relation.KindNotFound, relation.KindOf(err))
}

func TestSessionAddAndRemoveParticipants(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewSessionService(db)
	host := testutil.CreateUser(t, db, "host")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	game := testutil.CreateGame(t, db, "deep-rock")

	session, err := svc.Create(host.ID, game.ID, time.Now().Add(time.Hour), "",
		[]relation.ParticipantRef{userRef(bob.ID)})
	require.NoError(t, err)

	// bob is already invited; only carol is new.
	require.NoError(t, svc.AddParticipants(session.ID, host.ID,
		[]relation.ParticipantRef{userRef(bob.ID), userRef(carol.ID)}))
	assert.Len(t, participantRows(t, db, session.ID), 2)

	// Non-host cannot touch the roster.
	err = svc.RemoveParticipants(session.ID, bob.ID, []relation.ParticipantRef{userRef(carol.ID)})
	require.Error(t, err)
	assert.Equal(t, relation.KindForbidden, relation.KindOf(err))

	require.NoError(t, svc.RemoveParticipants(session.ID, host.ID,
		[]relation.ParticipantRef{userRef(carol.ID)}))
	rows := participantRows(t, db, session.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, bob.ID, rows[0].UserID)
}

func TestSessionRespond(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewSessionService(db)
	host := testutil.CreateUser(t, db, "host")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	game := testutil.CreateGame(t, db, "deep-rock")

	session, err := svc.Create(host.ID, game.ID, time.Now().Add(time.Hour), "",
		[]relation.ParticipantRef{userRef(bob.ID), userRef(carol.ID)})
	require.NoError(t, err)

	require.NoError(t, svc.Respond(session.ID, bob.ID, true))
	require.NoError(t, svc.Respond(session.ID, carol.ID, false))

	statuses := map[uint]models.ParticipantStatus{}
	for _, row := range participantRows(t, db, session.ID) {
		statuses[row.UserID] = row.Status
	}
	assert.Equal(t, models.ParticipantAccepted, statuses[bob.ID])
	assert.Equal(t, models.ParticipantRejected, statuses[carol.ID])

	err = svc.Respond(session.ID, bob.ID, true)
	require.Error(t, err)
	assert.Equal(t, relation.KindConflict, relation.KindOf(err))
}

func TestSessionUpdateAllowList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewSessionService(db)
	host := testutil.CreateUser(t, db, "host")
	game := testutil.CreateGame(t, db, "deep-rock")
	other := testutil.CreateGame(t, db, "valheim")

	session, err := svc.Create(host.ID, game.ID, time.Now().Add(time.Hour), "", nil)
	require.NoError(t, err)

	when := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	updated, err := svc.Update(session.ID, host.ID, map[string]interface{}{
		"game_id":      float64(other.ID),
		"scheduled_at": when.Format(time.RFC3339),
		"description":  "rescheduled",
	})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.GameID)
	assert.Equal(t, "rescheduled", updated.Description)

	// host_id is not on the allow-list.
	_, err = svc.Update(session.ID, host.ID, map[string]interface{}{"host_id": float64(1)})
	require.Error(t, err)
	assert.Equal(t, relation.KindValidation, relation.KindOf(err))

	// game_id must reference a real game.
	_, err = svc.Update(session.ID, host.ID, map[string]interface{}{"game_id": float64(9999)})
	require.Error(t, err)
	assert.Equal(t, relation.KindNotFound, relation.KindOf(err))
}

func TestSessionDeleteCascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewSessionService(db)
	host := testutil.CreateUser(t, db, "host")
	bob := testutil.CreateUser(t, db, "bob")
	game := testutil.CreateGame(t, db, "deep-rock")

	session, err := svc.Create(host.ID, game.ID, time.Now().Add(time.Hour), "",
		[]relation.ParticipantRef{userRef(bob.ID)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(session.ID, host.ID))

	var sessions, participants int64
	require.NoError(t, db.Model(&models.GameSession{}).Count(&sessions).Error)
	require.NoError(t, db.Model(&models.SessionParticipant{}).Count(&participants).Error)
	assert.Zero(t, sessions)
	assert.Zero(t, participants)

	// The host can schedule again.
	_, err = svc.Create(host.ID, game.ID, time.Now().Add(time.Hour), "", nil)
	require.NoError(t, err)
}

func TestSessionListForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewSessionService(db)
	host := testutil.CreateUser(t, db, "host")
	bob := testutil.CreateUser(t, db, "bob")
	game := testutil.CreateGame(t, db, "deep-rock")

	hosted, err := svc.Create(host.ID, game.ID, time.Now().Add(time.Hour), "",
		[]relation.ParticipantRef{userRef(bob.ID)})
	require.NoError(t, err)
	invitedTo, err := svc.Create(bob.ID, game.ID, time.Now().Add(time.Hour), "",
		[]relation.ParticipantRef{userRef(host.ID)})
	require.NoError(t, err)

	entries, err := svc.ListForUser(host.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	statuses := map[uint]models.ParticipantStatus{}
	for _, entry := range entries {
		statuses[entry.Session.ID] = entry.Status
	}
	assert.Equal(t, relation.ParticipantHost, statuses[hosted.ID])
	assert.Equal(t, models.ParticipantPending, statuses[invitedTo.ID])
}
