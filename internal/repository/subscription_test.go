package repository

import (
	"context"
	"testing"

	"vidtube/internal/models"
	"vidtube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionRepository_Toggle(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice")
	bob := testutil.SeedUser(t, db, "bob")

	on, err := repo.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = repo.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, on)

	var count int64
	db.Model(&models.Subscription{}).Count(&count)
	assert.Zero(t, count)
}

func TestSubscriptionRepository_ListSubscribers(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	channel := testutil.SeedUser(t, db, "channel")
	alice := testutil.SeedUser(t, db, "alice")
	bob := testutil.SeedUser(t, db, "bob")
	carol := testutil.SeedUser(t, db, "carol")

	mustToggle := func(sub, ch string) {
		_, err := repo.Toggle(ctx, sub, ch)
		require.NoError(t, err)
	}
	mustToggle(alice.ID, channel.ID)
	mustToggle(bob.ID, channel.ID)
	mustToggle(channel.ID, alice.ID)
	mustToggle(carol.ID, alice.ID)

	subs, err := repo.ListSubscribers(ctx, channel.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	assert.Equal(t, "bob", subs[0].Username)
	assert.False(t, subs[0].SubscribedToSubscriber)
	assert.Zero(t, subs[0].SubscribersCount)

	assert.Equal(t, "alice", subs[1].Username)
	assert.True(t, subs[1].SubscribedToSubscriber)
	assert.Equal(t, int64(2), subs[1].SubscribersCount)

	empty, err := repo.ListSubscribers(ctx, carol.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSubscriptionRepository_ListSubscribedChannels(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	viewer := testutil.SeedUser(t, db, "viewer")
	active := testutil.SeedUser(t, db, "active")
	quiet := testutil.SeedUser(t, db, "quiet")

	testutil.SeedVideo(t, db, active.ID, "older", true, 1)
	newest := testutil.SeedVideo(t, db, active.ID, "newest", true, 2)
	testutil.SeedVideo(t, db, active.ID, "draft", false, 0)
	testutil.SeedVideo(t, db, quiet.ID, "quiet-draft", false, 0)

	_, err := repo.Toggle(ctx, viewer.ID, active.ID)
	require.NoError(t, err)
	_, err = repo.Toggle(ctx, viewer.ID, quiet.ID)
	require.NoError(t, err)

	channels, err := repo.ListSubscribedChannels(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, channels, 2)

	assert.Equal(t, "quiet", channels[0].Username)
	assert.Nil(t, channels[0].LatestVideo)

	assert.Equal(t, "active", channels[1].Username)
	require.NotNil(t, channels[1].LatestVideo)
	assert.Equal(t, newest.ID, channels[1].LatestVideo.ID)
}
