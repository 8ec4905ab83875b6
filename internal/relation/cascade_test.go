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

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestUserUpdateAllowList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewUserService(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	updated, err := svc.Update(alice.ID, map[string]interface{}{
		"email":      "new@example.com",
		"avatar_url": "https://cdn.example.com/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "https://cdn.example.com/a.png", updated.AvatarURL)

	_, err = svc.Update(alice.ID, map[string]interface{}{"username": "stolen"})
	require.Error(t, err)
	assert.Equal(t, relation.KindValidation, relation.KindOf(err))

	_, err = svc.Update(alice.ID, map[string]interface{}{"email": bob.Email})
	require.Error(t, err)
	assert.Equal(t, relation.KindConflict, relation.KindOf(err))
}

// Deleting an account must scrub every reference to it: the session it hosts,
// the groups it owns, and its rows on other people's sessions, groups and
// friend lists, while leaving everyone else's data alone.
func TestUserPurgeScrubsEverything(t *testing.T) {
	db := testutil.SetupTestDB(t)
	friends := relation.NewFriendService(db)
	groups := relation.NewGroupService(db)
	sessions := relation.NewSessionService(db)
	users := relation.NewUserService(db)

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	game := testutil.CreateGame(t, db, "deep-rock")

	// alice is friends with bob, owns a group with carol in it, hosts a
	// session with bob in it, belongs to bob's group and is invited to
	// carol's session.
	require.NoError(t, friends.Add(alice.ID, bob.ID))
	require.NoError(t, friends.UpdateStatus(bob.ID, alice.ID, models.StatusAccepted))

	aliceGroup, err := groups.Create(alice.ID, "alice-crew", "", []uint{carol.ID})
	require.NoError(t, err)
	bobGroup, err := groups.Create(bob.ID, "bob-crew", "", []uint{alice.ID, carol.ID})
	require.NoError(t, err)

	aliceSession, err := sessions.Create(alice.ID, game.ID, time.Now().Add(time.Hour), "",
		[]relation.ParticipantRef{userRef(bob.ID)})
	require.NoError(t, err)
	carolSession, err := sessions.Create(carol.ID, game.ID, time.Now().Add(time.Hour), "",
		[]relation.ParticipantRef{userRef(alice.ID), userRef(bob.ID)})
	require.NoError(t, err)

	require.NoError(t, users.Purge(alice.ID))

	// alice's session and group are gone, including the rows that pointed
	// at them.
	assert.Zero(t, count(t, db, &models.GameSession{}, "id = ?", aliceSession.ID))
	assert.Zero(t, count(t, db, &models.SessionParticipant{}, "session_id = ?", aliceSession.ID))
	assert.Zero(t, count(t, db, &models.Group{}, "id = ?", aliceGroup.ID))
	assert.Zero(t, count(t, db, &models.GroupMember{}, "group_id = ?", aliceGroup.ID))

	// No row anywhere still references alice.
	assert.Zero(t, count(t, db, &models.Friendship{}, "user_id = ? OR friend_id = ?", alice.ID, alice.ID))
	assert.Zero(t, count(t, db, &models.GroupMember{}, "user_id = ?", alice.ID))
	assert.Zero(t, count(t, db, &models.SessionParticipant{}, "user_id = ?", alice.ID))

	// Everyone else's data survives.
	assert.EqualValues(t, 1, count(t, db, &models.Group{}, "id = ?", bobGroup.ID))
	assert.EqualValues(t, 1, count(t, db, &models.GroupMember{}, "group_id = ? AND user_id = ?", bobGroup.ID, carol.ID))
	assert.EqualValues(t, 1, count(t, db, &models.GameSession{}, "id = ?", carolSession.ID))
	assert.EqualValues(t, 1, count(t, db, &models.SessionParticipant{}, "session_id = ? AND user_id = ?", carolSession.ID, bob.ID))

	_, err = users.Get(alice.ID)
	require.Error(t, err)
	assert.Equal(t, relation.KindNotFound, relation.KindOf(err))
}

// Walks the friend lifecycle end to end: request, accept, unfriend.
func TestFriendLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	friends := relation.NewFriendService(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	require.NoError(t, friends.Add(alice.ID, bob.ID))

	pending, err := friends.List(bob.ID, models.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.False(t, pending[0].Initiator)

	require.NoError(t, friends.UpdateStatus(bob.ID, alice.ID, models.StatusAccepted))

	accepted, err := friends.List(alice.ID, models.StatusAccepted)
	require.NoError(t, err)
	require.Len(t, accepted, 1)

	require.NoError(t, friends.Remove(bob.ID, alice.ID))
	all, err := friends.List(alice.ID, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

// Walks a group from creation through invitations into a session scheduled
// for the whole group.
func TestGroupToSessionLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	groups := relation.NewGroupService(db)
	sessions := relation.NewSessionService(db)

	owner := testutil.CreateUser(t, db, "owner")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	host := testutil.CreateUser(t, db, "host")
	game := testutil.CreateGame(t, db, "deep-rock")

	group, err := groups.Create(owner.ID, "raiders", "", []uint{bob.ID, carol.ID})
	require.NoError(t, err)
	require.NoError(t, groups.Respond(group.ID, bob.ID, true))
	require.NoError(t, groups.Respond(group.ID, carol.ID, true))

	session, err := sessions.Create(host.ID, game.ID, time.Now().Add(time.Hour), "group night",
		[]relation.ParticipantRef{groupRef(group.ID)})
	require.NoError(t, err)

	// owner + bob + carol got invited; everyone accepts.
	rows := participantRows(t, db, session.ID)
	require.Len(t, rows, 3)
	for _, row := range rows {
		require.NoError(t, sessions.Respond(session.ID, row.UserID, true))
	}

	fresh, err := sessions.Get(session.ID)
	require.NoError(t, err)
	for _, p := range fresh.Participants {
		assert.Equal(t, models.ParticipantAccepted, p.Status)
	}

	entries, err := sessions.ListForUser(bob.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ParticipantAccepted, entries[0].Status)
}
