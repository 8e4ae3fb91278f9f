package service

import (
	"Airena/internal/api/dto"
	"Airena/internal/model"
	"Airena/internal/pkg/security"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type videoFixture struct {
	svc    VideoService
	repo   *memVideoRepo
	store  *memStore
	events *memEvents
	users  *memUsers
}

func newVideoFixture(public bool) *videoFixture {
	users := newMemUsers()
	users.add("creator-1", "c@example.com", "Casey", model.RoleCreator)
	identity := NewIdentityService(users, users, users, newMemRevoker(), time.Second)
	repo := &memVideoRepo{}
	store := newMemStore()
	events := &memEvents{}
	return &videoFixture{
		svc:    NewVideoService(repo, identity, store, events, VideoURLPolicy{UsePublicLink: public, SignedExpiry: time.Hour}, 0, time.Second),
		repo:   repo,
		store:  store,
		events: events,
		users:  users,
	}
}

func videoFile() *dto.UploadFile {
	data := mp4Bytes()
	return &dto.UploadFile{Name: "My Clip.mp4", Size: int64(len(data)), Reader: bytes.NewReader(data)}
}

func validVideoForm() *dto.VideoFormDTO {
	return &dto.VideoFormDTO{Title: "Goal", Description: "last minute", Category: "sports"}
}

func TestUploadVideo(t *testing.T) {
	ctx := context.Background()
	creator := security.NewPrincipal("creator-1", model.RoleCreator)

	t.Run("creator upload with signed link", func(t *testing.T) {
		f := newVideoFixture(false)
		res, err := f.svc.UploadVideo(ctx, creator, validVideoForm(), videoFile())
		require.NoError(t, err)
		assert.Equal(t, "Casey", res.AuthorName)
		assert.Equal(t, int64(0), res.Views)
		assert.True(t, strings.HasPrefix(res.VideoURL, "https://cdn.test/videos/creator-1/"))
		assert.True(t, strings.HasSuffix(res.VideoURL, "_my-clip.mp4?sig=1"))
		require.Len(t, f.store.objects, 1)
	})

	t.Run("admin upload with public link", func(t *testing.T) {
		f := newVideoFixture(true)
		res, err := f.svc.UploadVideo(ctx, security.NewPrincipal("admin-1", model.RoleAdmin), validVideoForm(), videoFile())
		require.NoError(t, err)
		assert.False(t, strings.Contains(res.VideoURL, "?sig="))
	})

	t.Run("plain user is forbidden", func(t *testing.T) {
		f := newVideoFixture(true)
		_, err := f.svc.UploadVideo(ctx, security.NewPrincipal("u1"), validVideoForm(), videoFile())
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.svc.UploadVideo(ctx, nil, validVideoForm(), videoFile())
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.Empty(t, f.store.objects)
	})

	t.Run("validation", func(t *testing.T) {
		f := newVideoFixture(true)
		_, err := f.svc.UploadVideo(ctx, creator, &dto.VideoFormDTO{Title: "x", Category: "sports"}, videoFile())
		assert.ErrorIs(t, err, ErrVideoFieldsRequired)

		_, err = f.svc.UploadVideo(ctx, creator, &dto.VideoFormDTO{Title: "x", Description: "y", Category: "music"}, videoFile())
		assert.ErrorIs(t, err, ErrInvalidCategory)

		_, err = f.svc.UploadVideo(ctx, creator, validVideoForm(), nil)
		assert.ErrorIs(t, err, ErrVideoFieldsRequired)

		data := pngBytes(t, 2, 2)
		_, err = f.svc.UploadVideo(ctx, creator, validVideoForm(), &dto.UploadFile{Name: "a.mp4", Size: int64(len(data)), Reader: bytes.NewReader(data)})
		assert.ErrorIs(t, err, ErrFileNotSupported)
	})
}

func TestGetUserVideos(t *testing.T) {
	ctx := context.Background()
	f := newVideoFixture(false)
	creator := security.NewPrincipal("creator-1", model.RoleCreator)

	_, err := f.svc.UploadVideo(ctx, creator, validVideoForm(), videoFile())
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second := validVideoForm()
	second.Title = "Second"
	_, err = f.svc.UploadVideo(ctx, creator, second, videoFile())
	require.NoError(t, err)

	list, err := f.svc.GetUserVideos(ctx, creator, "creator-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Title)

	t.Run("someone else's videos are forbidden", func(t *testing.T) {
		_, err := f.svc.GetUserVideos(ctx, security.NewPrincipal("stranger"), "creator-1")
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = f.svc.GetUserVideos(ctx, security.NewPrincipal("admin-1", model.RoleAdmin, model.RoleSuperAdmin), "creator-1")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := f.svc.GetUserVideos(ctx, nil, "creator-1")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("no videos yields empty list", func(t *testing.T) {
		list, err := f.svc.GetUserVideos(ctx, security.NewPrincipal("nobody"), "nobody")
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})
}

func TestVideoListingAndViews(t *testing.T) {
	ctx := context.Background()
	f := newVideoFixture(true)
	creator := security.NewPrincipal("creator-1", model.RoleCreator)

	uploaded, err := f.svc.UploadVideo(ctx, creator, validVideoForm(), videoFile())
	require.NoError(t, err)

	games, err := f.svc.ListVideos(ctx, "games", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, games)

	sports, err := f.svc.ListVideos(ctx, "sports", 1, 10)
	require.NoError(t, err)
	assert.Len(t, sports, 1)

	_, err = f.svc.ListVideos(ctx, "music", 1, 10)
	assert.ErrorIs(t, err, ErrInvalidCategory)

	got, err := f.svc.GetVideo(ctx, uploaded.ID)
	require.NoError(t, err)
	assert.Equal(t, uploaded.VideoURL, got.VideoURL)

	require.NoError(t, f.svc.RecordView(ctx, uploaded.ID))
	assert.Equal(t, []string{uploaded.ID}, f.events.views)

	assert.ErrorIs(t, f.svc.RecordView(ctx, "000000000000000000000000"), ErrVideoNotFound)
	_, err = f.svc.GetVideo(ctx, "bad")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}
