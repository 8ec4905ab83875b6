package relation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"squadup/backend/internal/models"
	"squadup/backend/internal/relation"
	"squadup/backend/internal/testutil"
)

func friendRows(t *testing.T, db *gorm.DB, userID, friendID uint) []models.Friendship {
	t.Helper()
	var rows []models.Friendship
	require.NoError(t, db.Where("user_id = ? AND friend_id = ?", userID, friendID).Find(&rows).Error)
	return rows
}

func TestFriendAddCreatesBothSides(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewFriendService(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	require.NoError(t, svc.Add(alice.ID, bob.ID))

	mine := friendRows(t, db, alice.ID, bob.ID)
	theirs := friendRows(t, db, bob.ID, alice.ID)
	require.Len(t, mine, 1)
	require.Len(t, theirs, 1)
	assert.Equal(t, models.StatusPending, mine[0].Status)
	assert.Equal(t, models.StatusPending, theirs[0].Status)
	assert.True(t, mine[0].Initiator)
	assert.False(t, theirs[0].Initiator)
}

func TestFriendAddSelf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewFriendService(db)
	alice := testutil.CreateUser(t, db, "alice")

	err := svc.Add(alice.ID, alice.ID)
	require.Error(t, err)
	assert.Equal(t, relation.KindConflict, relation.KindOf(err))
}

func TestFriendAddUnknownTarget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewFriendService(db)
	alice := testutil.CreateUser(t, db, "alice")

	err := svc.Add(alice.ID, alice.ID+1000)
	require.Error(t, err)
	assert.Equal(t, relation.KindNotFound, relation.KindOf(err))

	// Nothing was written on either side.
	var count int64
	require.NoError(t, db.Model(&models.Friendship{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFriendAddTwice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewFriendService(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	require.NoError(t, svc.Add(alice.ID, bob.ID))

	err := svc.Add(alice.ID, bob.ID)
	require.Error(t, err)
	assert.Equal(t, relation.KindConflict, relation.KindOf(err))

	// The reverse direction conflicts too.
	err = svc.Add(bob.ID, alice.ID)
	require.Error(t, err)
	assert.Equal(t, relation.KindConflict, relation.KindOf(err))
}

func TestFriendAcceptUpdatesBothSides(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewFriendService(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	require.NoError(t, svc.Add(alice.ID, bob.ID))
	require.NoError(t, svc.UpdateStatus(bob.ID, alice.ID, models.StatusAccepted))

	assert.Equal(t, models.StatusAccepted, friendRows(t, db, alice.ID, bob.ID)[0].Status)
	assert.Equal(t, models.StatusAccepted, friendRows(t, db, bob.ID, alice.ID)[0].Status)
}

func TestFriendInitiatorCannotAcceptOwnRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewFriendService(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	require.NoError(t, svc.Add(alice.ID, bob.ID))

	err := svc.UpdateStatus(alice.ID, bob.ID, models.StatusAccepted)
	require.Error(t, err)
	assert.Equal(t, relation.KindForbidden, relation.KindOf(err))
}

func TestFriendRejectDeletesBothSides(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewFriendService(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	require.NoError(t, svc.Add(alice.ID, bob.ID))
	require.NoError(t, svc.UpdateStatus(bob.ID, alice.ID, models.StatusRejected))

	assert.Empty(t, friendRows(t, db, alice.ID, bob.ID))
	assert.Empty(t, friendRows(t, db, bob.ID, alice.ID))

	// The pair can start over after a rejection.
	require.NoError(t, svc.Add(bob.ID, alice.ID))
}

func TestFriendRemoveBothSides(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewFriendService(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	require.NoError(t, svc.Add(alice.ID, bob.ID))
	require.NoError(t, svc.UpdateStatus(bob.ID, alice.ID, models.StatusAccepted))
	require.NoError(t, svc.Remove(alice.ID, bob.ID))

	assert.Empty(t, friendRows(t, db, alice.ID, bob.ID))
	assert.Empty(t, friendRows(t, db, bob.ID, alice.ID))
}

func TestFriendRemoveNothingToRemove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewFriendService(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	err := svc.Remove(alice.ID, bob.ID)
	require.Error(t, err)
	assert.Equal(t, relation.KindNotFound, relation.KindOf(err))
}

func TestFriendUpdateStatusInvalid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewFriendService(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	require.NoError(t, svc.Add(alice.ID, bob.ID))

	err := svc.UpdateStatus(bob.ID, alice.ID, models.FriendshipStatus("bogus"))
	require.Error(t, err)
	assert.Equal(t, relation.KindValidation, relation.KindOf(err))
}

func TestFriendListFiltersByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := relation.NewFriendService(db)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	require.NoError(t, svc.Add(alice.ID, bob.ID))
	require.NoError(t, svc.Add(alice.ID, carol.ID))
	require.NoError(t, svc.UpdateStatus(bob.ID, alice.ID, models.StatusAccepted))

	all, err := svc.List(alice.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	accepted, err := svc.List(alice.ID, models.StatusAccepted)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, bob.ID, accepted[0].FriendID)
	assert.Equal(t, "bob", accepted[0].Friend.Username)

	pending, err := svc.List(alice.ID, models.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, carol.ID, pending[0].FriendID)
}
