package service

import (
	"context"
	"testing"

	"zoodate/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLikeTest(t *testing.T) (*LikeService, *memStore, *memMatchStore, *fakePush) {
	t.Helper()
	store := newMemStore()
	matchStore := newMemMatchStore()
	push := &fakePush{}
	matchSvc := NewMatchService(matchStore)
	return NewLikeService(store, store, matchSvc, push), store, matchStore, push
}

func TestRecordJudgment_Like(t *testing.T) {
	svc, store, _, _ := setupLikeTest(t)
	rex := store.addPet("Rex", 1)
	luna := store.addPet("Luna", 2)

	result, err := svc.RecordJudgment(context.Background(), rex.ID, luna.ID, true)
	require.NoError(t, err)
	assert.Equal(t, rex.ID, result.Like.LikerPetID)
	assert.Equal(t, luna.ID, result.Like.LikedPetID)
	assert.True(t, result.Like.IsLike)
	assert.Nil(t, result.MutualMatch, "one-sided like must not match")
}

func TestRecordJudgment_MutualLikeCreatesMatch(t *testing.T) {
	svc, store, matchStore, push := setupLikeTest(t)
	rex := store.addPet("Rex", 1)
	luna := store.addPet("Luna", 2)

	first, err := svc.RecordJudgment(context.Background(), rex.ID, luna.ID, true)
	require.NoError(t, err)
	assert.Nil(t, first.MutualMatch)

	second, err := svc.RecordJudgment(context.Background(), luna.ID, rex.ID, true)
	require.NoError(t, err)
	require.NotNil(t, second.MutualMatch, "reciprocal like must create a match")

	// Exactly one match row, normalized pair order.
	assert.Len(t, matchStore.matches, 1)
	assert.Equal(t, rex.ID, second.MutualMatch.Pet1ID)
	assert.Equal(t, luna.ID, second.MutualMatch.Pet2ID)

	// Both owners get the match notification.
	require.Len(t, push.matchCalls, 2)
	assert.Equal(t, uint(2), push.matchCalls[0].UserID)
	assert.Equal(t, "Rex", push.matchCalls[0].Name)
	assert.Equal(t, uint(1), push.matchCalls[1].UserID)
	assert.Equal(t, "Luna", push.matchCalls[1].Name)
}

func TestRecordJudgment_PassNeverMatches(t *testing.T) {
	svc, store, matchStore, _ := setupLikeTest(t)
	rex := store.addPet("Rex", 1)
	luna := store.addPet("Luna", 2)

	_, err := svc.RecordJudgment(context.Background(), rex.ID, luna.ID, true)
	require.NoError(t, err)

	result, err := svc.RecordJudgment(context.Background(), luna.ID, rex.ID, false)
	require.NoError(t, err)
	assert.Nil(t, result.MutualMatch)
	assert.Empty(t, matchStore.matches)
}

func TestRecordJudgment_PassThenLikeNoMatch(t *testing.T) {
	svc, store, matchStore, _ := setupLikeTest(t)
	rex := store.addPet("Rex", 1)
	luna := store.addPet("Luna", 2)

	_, err := svc.RecordJudgment(context.Background(), rex.ID, luna.ID, false)
	require.NoError(t, err)

	result, err := svc.RecordJudgment(context.Background(), luna.ID, rex.ID, true)
	require.NoError(t, err)
	assert.Nil(t, result.MutualMatch, "a pass is not reciprocal interest")
	assert.Empty(t, matchStore.matches)
}

func TestRecordJudgment_SelfRejected(t *testing.T) {
	svc, store, _, _ := setupLikeTest(t)
	rex := store.addPet("Rex", 1)

	_, err := svc.RecordJudgment(context.Background(), rex.ID, rex.ID, true)
	assert.ErrorIs(t, err, domain.ErrSelfJudgment)
}

func TestRecordJudgment_TargetNotFound(t *testing.T) {
	svc, store, _, _ := setupLikeTest(t)
	rex := store.addPet("Rex", 1)

	_, err := svc.RecordJudgment(context.Background(), rex.ID, 999, true)
	assert.ErrorIs(t, err, domain.ErrPetNotFound)
}

func TestRecordJudgment_DuplicateRejected(t *testing.T) {
	svc, store, _, _ := setupLikeTest(t)
	rex := store.addPet("Rex", 1)
	luna := store.addPet("Luna", 2)

	_, err := svc.RecordJudgment(context.Background(), rex.ID, luna.ID, true)
	require.NoError(t, err)

	// Same direction again, even flipping like to pass, is a conflict.
	_, err = svc.RecordJudgment(context.Background(), rex.ID, luna.ID, false)
	assert.ErrorIs(t, err, domain.ErrDuplicateJudgment)
	assert.Len(t, store.likes, 1, "duplicate judgment must not add a row")
}

func TestRecordJudgment_MutualLikeIsIdempotentOnMatch(t *testing.T) {
	svc, store, matchStore, _ := setupLikeTest(t)
	rex := store.addPet("Rex", 1)
	luna := store.addPet("Luna", 2)
	milo := store.addPet("Milo", 3)

	_, err := svc.RecordJudgment(context.Background(), rex.ID, luna.ID, true)
	require.NoError(t, err)
	second, err := svc.RecordJudgment(context.Background(), luna.ID, rex.ID, true)
	require.NoError(t, err)

	// A third pet matching one of them creates a distinct match only.
	_, err = svc.RecordJudgment(context.Background(), rex.ID, milo.ID, true)
	require.NoError(t, err)
	third, err := svc.RecordJudgment(context.Background(), milo.ID, rex.ID, true)
	require.NoError(t, err)

	assert.Len(t, matchStore.matches, 2)
	assert.NotEqual(t, second.MutualMatch.ID, third.MutualMatch.ID)
}

func TestRecordJudgment_StoreFailureIsTransient(t *testing.T) {
	svc, store, _, _ := setupLikeTest(t)
	rex := store.addPet("Rex", 1)
	luna := store.addPet("Luna", 2)

	store.failNext = assert.AnError
	_, err := svc.RecordJudgment(context.Background(), rex.ID, luna.ID, true)
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}
