package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ApplyRating(t *testing.T) {
	store := &Store{}

	require.NoError(t, store.ApplyRating(4.0))
	assert.Equal(t, 4.0, store.ReviewSum)
	assert.Equal(t, int64(1), store.ReviewCount)
	assert.Equal(t, 4.0, store.Rating)

	require.NoError(t, store.ApplyRating(5.0))
	assert.Equal(t, 9.0, store.ReviewSum)
	assert.Equal(t, int64(2), store.ReviewCount)
	assert.InDelta(t, 4.5, store.Rating, 0.0001)
}

func TestStore_ApplyRating_ExistingAggregate(t *testing.T) {
	// 누적 별점 99점 / 리뷰 30개인 매장에 3.3점 리뷰 추가
	store := &Store{ReviewSum: 99, ReviewCount: 30, Rating: 3.3}

	require.NoError(t, store.ApplyRating(3.3))
	assert.InDelta(t, 102.3, store.ReviewSum, 0.0001)
	assert.Equal(t, int64(31), store.ReviewCount)
	assert.InDelta(t, 102.3/31, store.Rating, 0.0001)
}

func TestStore_ApplyRating_OverLimit(t *testing.T) {
	store := &Store{}

	err := store.ApplyRating(5.5)
	assert.ErrorIs(t, err, ErrOverRatingLimit)
	// 실패 시 집계는 변하지 않는다
	assert.Equal(t, 0.0, store.ReviewSum)
	assert.Equal(t, int64(0), store.ReviewCount)
}

func TestStore_ReplaceRating(t *testing.T) {
	store := &Store{ReviewSum: 9, ReviewCount: 2, Rating: 4.5}

	// 4.0 -> 2.0으로 수정: 개수는 불변
	require.NoError(t, store.ReplaceRating(4.0, 2.0))
	assert.InDelta(t, 7.0, store.ReviewSum, 0.0001)
	assert.Equal(t, int64(2), store.ReviewCount)
	assert.InDelta(t, 3.5, store.Rating, 0.0001)

	err := store.ReplaceRating(2.0, 5.5)
	assert.ErrorIs(t, err, ErrOverRatingLimit)
}

func TestStore_RemoveRating(t *testing.T) {
	store := &Store{ReviewSum: 9, ReviewCount: 2, Rating: 4.5}

	store.RemoveRating(5.0)
	assert.InDelta(t, 4.0, store.ReviewSum, 0.0001)
	assert.Equal(t, int64(1), store.ReviewCount)
	assert.InDelta(t, 4.0, store.Rating, 0.0001)

	// 마지막 리뷰 삭제 시 0으로 복귀 (0으로 나누기 금지)
	store.RemoveRating(4.0)
	assert.Equal(t, int64(0), store.ReviewCount)
	assert.Equal(t, 0.0, store.Rating)
}

func TestStore_HasDate(t *testing.T) {
	store := &Store{Dates: DateList{"2026-09-01", "2026-09-02"}}

	assert.True(t, store.HasDate("2026-09-01"))
	assert.False(t, store.HasDate("2026-09-03"))
}
