package repository

import (
	"testing"
	"time"

	"dojolibre/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Location{},
		&models.AttendanceRecord{},
		&models.Message{},
		&models.Notification{},
		&models.Follow{},
		&models.Block{},
	))
	return db
}

func TestConversationKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, "3-9", ConversationKey(9, 3))
	assert.Equal(t, "3-9", ConversationKey(3, 9))
	assert.Equal(t, "7-7", ConversationKey(7, 7))
}

func TestConversationSpansBothDirections(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)

	require.NoError(t, repo.Create(&models.Message{SenderID: 1, ReceiverID: 2, Body: "hi"}))
	require.NoError(t, repo.Create(&models.Message{SenderID: 2, ReceiverID: 1, Body: "hey"}))
	require.NoError(t, repo.Create(&models.Message{SenderID: 1, ReceiverID: 3, Body: "other thread"}))

	msgs, err := repo.Conversation(2, 1, 50, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Body)
	assert.Equal(t, "hey", msgs[1].Body)
}

func TestMarkReadIsReceiverOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewMessageRepository(db)

	msg := &models.Message{SenderID: 1, ReceiverID: 2, Body: "hi"}
	require.NoError(t, repo.Create(msg))

	// the sender cannot mark their own message read
	require.NoError(t, repo.MarkRead(msg.ID, 1))
	n, err := repo.UnreadCount(2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.MarkRead(msg.ID, 2))
	n, err = repo.UnreadCount(2)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBlockSeversFollowEdges(t *testing.T) {
	db := newTestDB(t)
	repo := NewFollowRepository(db)

	require.NoError(t, repo.Follow(1, 2))
	require.NoError(t, repo.Follow(2, 1))
	require.NoError(t, repo.Follow(1, 3))

	require.NoError(t, repo.Block(1, 2))

	blocked, err := repo.IsBlocked(2, 1)
	require.NoError(t, err)
	assert.True(t, blocked)

	following, err := repo.FollowingIDs(1)
	require.NoError(t, err)
	assert.Equal(t, []uint{3}, following)
	followers, err := repo.FollowerIDs(1)
	require.NoError(t, err)
	assert.Empty(t, followers)

	require.NoError(t, repo.Unblock(1, 2))
	blocked, err = repo.IsBlocked(1, 2)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestFollowIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewFollowRepository(db)

	require.NoError(t, repo.Follow(1, 2))
	require.NoError(t, repo.Follow(1, 2))
	ids, err := repo.FollowerIDs(2)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)
}

func TestLocationUpdateFieldsPartialMerge(t *testing.T) {
	db := newTestDB(t)
	repo := NewLocationRepository(db)

	loc := &models.Location{
		Name:        "Old Name",
		Address:     "1 First Ave",
		Capacity:    20,
		PartnerID:   1,
		CreatedByID: 1,
		CreatorRole: "PARTNER",
	}
	require.NoError(t, repo.Create(loc))

	require.NoError(t, repo.UpdateFields(loc.ID, map[string]interface{}{"capacity": 35}))
	got, err := repo.GetByID(loc.ID)
	require.NoError(t, err)
	assert.Equal(t, 35, got.Capacity)
	assert.Equal(t, "Old Name", got.Name)
	assert.Equal(t, "1 First Ave", got.Address)
}

func TestLocationDeleteKeepsAttendanceHistory(t *testing.T) {
	db := newTestDB(t)
	locRepo := NewLocationRepository(db)
	attRepo := NewAttendanceRepository(db)

	loc := &models.Location{Name: "Gone Gym", Address: "x", Capacity: 10, PartnerID: 1, CreatedByID: 1, CreatorRole: "PARTNER"}
	require.NoError(t, locRepo.Create(loc))
	out := time.Now()
	d := 30
	require.NoError(t, attRepo.Create(&models.AttendanceRecord{
		UserID: 7, LocationID: loc.ID, CheckInTime: out.Add(-30 * time.Minute), CheckOutTime: &out, Duration: &d,
	}))

	require.NoError(t, locRepo.Delete(loc.ID))
	_, err := locRepo.GetByID(loc.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	history, err := attRepo.HistoryByUser(7)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestGetOpenByUserIgnoresClosedRecords(t *testing.T) {
	db := newTestDB(t)
	repo := NewAttendanceRepository(db)

	out := time.Now()
	d := 45
	require.NoError(t, repo.Create(&models.AttendanceRecord{
		UserID: 7, LocationID: 1, CheckInTime: out.Add(-time.Hour), CheckOutTime: &out, Duration: &d,
	}))
	open, err := repo.GetOpenByUser(7)
	require.NoError(t, err)
	assert.Nil(t, open)

	require.NoError(t, repo.Create(&models.AttendanceRecord{
		UserID: 7, LocationID: 2, CheckInTime: time.Now(),
	}))
	open, err = repo.GetOpenByUser(7)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, uint(2), open.LocationID)
}
