package service

import (
	"Airena/internal/model"
	"Airena/internal/pkg/es"
	"Airena/internal/pkg/kafka"
	"Airena/internal/pkg/mongo"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
)

// memPostRepo 以互斥锁模拟事务，唯一约束与 Mongo 索引一致
type memPostRepo struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]*mongo.PostModel
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: map[primitive.ObjectID]*mongo.PostModel{}}
}

func (r *memPostRepo) InsertPost(_ context.Context, post *mongo.PostModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == post.Slug {
			return mongo.ErrSlugTaken
		}
	}
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.IsFeatured {
		for _, p := range r.posts {
			p.IsFeatured = false
		}
	}
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *memPostRepo) UpdatePost(_ context.Context, id primitive.ObjectID, upd *mongo.PostUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return mongoDB.ErrNoDocuments
	}
	if upd.IsFeatured != nil && *upd.IsFeatured {
		for oid, other := range r.posts {
			if oid != id {
				other.IsFeatured = false
			}
		}
	}
	p.Title = upd.Title
	p.Content = upd.Content
	if upd.IsFeatured != nil {
		p.IsFeatured = *upd.IsFeatured
	}
	if upd.ImageKey != nil && upd.ImageURL != nil {
		p.ImageKey = *upd.ImageKey
		p.ImageURL = *upd.ImageURL
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memPostRepo) DeletePost(_ context.Context, id primitive.ObjectID) (*mongo.PostModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, mongoDB.ErrNoDocuments
	}
	delete(r.posts, id)
	return p, nil
}

func (r *memPostRepo) GetByID(_ context.Context, id primitive.ObjectID) (*mongo.PostModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, mongoDB.ErrNoDocuments
	}
	cp := *p
	return &cp, nil
}

func (r *memPostRepo) GetBySlug(_ context.Context, slug string) (*mongo.PostModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, mongoDB.ErrNoDocuments
}

func (r *memPostRepo) SlugsWithPrefix(_ context.Context, base string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]string, 0)
	for _, p := range r.posts {
		if p.Slug == base || strings.HasPrefix(p.Slug, base+"-") {
			res = append(res, p.Slug)
		}
	}
	return res, nil
}

func (r *memPostRepo) List(_ context.Context, limit, offset int64) ([]*mongo.PostModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*mongo.PostModel, 0, len(r.posts))
	for _, p := range r.posts {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= int64(len(all)) {
		return []*mongo.PostModel{}, nil
	}
	end := offset + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[offset:end], nil
}

func (r *memPostRepo) GetFeatured(_ context.Context) (*mongo.PostModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.IsFeatured {
			cp := *p
			return &cp, nil
		}
	}
	return nil, mongoDB.ErrNoDocuments
}

func (r *memPostRepo) CountFeatured(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.posts {
		if p.IsFeatured {
			n++
		}
	}
	return n, nil
}

type memSearchRepo struct {
	result *es.SearchResult
}

func (r *memSearchRepo) IndexPost(context.Context, *es.PostES) error { return nil }
func (r *memSearchRepo) DeletePost(context.Context, string) error    { return nil }
func (r *memSearchRepo) Search(_ context.Context, _ string, _, _ int) (*es.SearchResult, error) {
	if r.result == nil {
		return &es.SearchResult{Posts: []*es.PostES{}}, nil
	}
	return r.result, nil
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) Put(_ context.Context, key string, reader io.Reader, _ int64, _ string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return key, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (s *memStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key + "?sig=1", nil
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

type memLocker struct {
	mu sync.Mutex
}

func (l *memLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}

type memEvents struct {
	mu    sync.Mutex
	posts []kafka.PostEvent
	views []string
}

func (e *memEvents) PublishPostEvent(_ context.Context, evt kafka.PostEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.posts = append(e.posts, evt)
	return nil
}

func (e *memEvents) PublishVideoView(_ context.Context, videoID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.views = append(e.views, videoID)
	return nil
}

// memUsers 同时实现用户、角色与用户角色三个仓储
type memUsers struct {
	mu        sync.Mutex
	users     map[string]*model.User
	roles     map[string]*model.Role
	userRoles map[string][]uint64
}

func newMemUsers() *memUsers {
	u := &memUsers{
		users:     map[string]*model.User{},
		roles:     map[string]*model.Role{},
		userRoles: map[string][]uint64{},
	}
	for i, name := range model.AllRoles {
		u.roles[name] = &model.Role{ID: uint64(i + 1), Name: name}
	}
	return u
}

func (u *memUsers) add(id, email, name string, roles ...string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users[id] = &model.User{ID: id, Email: email, DisplayName: name}
	for _, r := range roles {
		u.userRoles[id] = append(u.userRoles[id], u.roles[r].ID)
	}
}

func (u *memUsers) roleByID(id uint64) model.Role {
	for _, r := range u.roles {
		if r.ID == id {
			return *r
		}
	}
	return model.Role{}
}

func (u *memUsers) withRoles(user *model.User) *model.User {
	cp := *user
	cp.UserRoles = nil
	for _, rid := range u.userRoles[user.ID] {
		cp.UserRoles = append(cp.UserRoles, model.UserRole{UserID: user.ID, RoleID: rid, Role: u.roleByID(rid)})
	}
	return &cp
}

func (u *memUsers) GetUserById(_ context.Context, id string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[id]
	if !ok {
		return nil, nil
	}
	return u.withRoles(user), nil
}

func (u *memUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.users {
		if user.Email == email {
			return u.withRoles(user), nil
		}
	}
	return nil, nil
}

func (u *memUsers) CreateUser(_ context.Context, user *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	cp := *user
	u.users[user.ID] = &cp
	return nil
}

func (u *memUsers) UpdateProfile(_ context.Context, id string, displayName *string, photoURL *string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[id]
	if !ok {
		return errors.New("user missing")
	}
	if displayName != nil {
		user.DisplayName = *displayName
	}
	if photoURL != nil {
		user.PhotoURL = photoURL
	}
	return nil
}

func (u *memUsers) GetRolesByNames(_ context.Context, names []string) ([]*model.Role, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	res := make([]*model.Role, 0, len(names))
	for _, n := range names {
		if r, ok := u.roles[n]; ok {
			res = append(res, r)
		}
	}
	return res, nil
}

func (u *memUsers) GetUserRoleNames(_ context.Context, userId string) ([]string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	names := make([]string, 0)
	for _, rid := range u.userRoles[userId] {
		names = append(names, u.roleByID(rid).Name)
	}
	return names, nil
}

func (u *memUsers) ReplaceUserRoles(_ context.Context, userId string, roleIds []uint64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.userRoles[userId] = append([]uint64(nil), roleIds...)
	return nil
}

func (u *memUsers) GetUserIdsByRole(_ context.Context, roleName string) ([]string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	target := u.roles[roleName].ID
	ids := make([]string, 0)
	for uid, rids := range u.userRoles {
		for _, rid := range rids {
			if rid == target {
				ids = append(ids, uid)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]struct{}
}

func newMemRevoker() *memRevoker {
	return &memRevoker{revoked: map[string]struct{}{}}
}

func (r *memRevoker) Revoke(_ context.Context, signature string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[signature] = struct{}{}
	return nil
}

func (r *memRevoker) IsRevoked(_ context.Context, signature string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[signature]
	return ok, nil
}

type memVideoRepo struct {
	mu     sync.Mutex
	videos []*mongo.VideoModel
}

func (r *memVideoRepo) InsertVideo(_ context.Context, video *mongo.VideoModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if video.ID.IsZero() {
		video.ID = primitive.NewObjectID()
	}
	cp := *video
	r.videos = append(r.videos, &cp)
	return nil
}

func (r *memVideoRepo) GetByID(_ context.Context, id primitive.ObjectID) (*mongo.VideoModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.videos {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, mongoDB.ErrNoDocuments
}

func (r *memVideoRepo) ListByAuthor(_ context.Context, authorID string) ([]*mongo.VideoModel, error) {
	return r.filter(func(v *mongo.VideoModel) bool { return v.AuthorID == authorID }), nil
}

func (r *memVideoRepo) List(_ context.Context, category string, limit, offset int64) ([]*mongo.VideoModel, error) {
	all := r.filter(func(v *mongo.VideoModel) bool { return category == "" || v.Category == category })
	if offset >= int64(len(all)) {
		return []*mongo.VideoModel{}, nil
	}
	end := offset + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[offset:end], nil
}

func (r *memVideoRepo) IncViews(_ context.Context, id primitive.ObjectID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.videos {
		if v.ID == id {
			v.Views += delta
			return nil
		}
	}
	return mongoDB.ErrNoDocuments
}

func (r *memVideoRepo) filter(keep func(v *mongo.VideoModel) bool) []*mongo.VideoModel {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*mongo.VideoModel, 0)
	for _, v := range r.videos {
		if keep(v) {
			cp := *v
			res = append(res, &cp)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res
}

type memChannelRepo struct {
	mu        sync.Mutex
	channels  map[string]*mongo.ChannelModel
	createErr error
}

func newMemChannelRepo() *memChannelRepo {
	return &memChannelRepo{channels: map[string]*mongo.ChannelModel{}}
}

func (r *memChannelRepo) CreateOnce(_ context.Context, channel *mongo.ChannelModel) (bool, error) {
	if r.createErr != nil {
		return false, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[channel.ID]; ok {
		return false, nil
	}
	cp := *channel
	r.channels[channel.ID] = &cp
	return true, nil
}

func (r *memChannelRepo) GetByID(_ context.Context, userID string) (*mongo.ChannelModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.channels[userID]
	if !ok {
		return nil, mongoDB.ErrNoDocuments
	}
	cp := *c
	return &cp, nil
}

func (r *memChannelRepo) ExistingIDs(_ context.Context, userIDs []string) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := map[string]struct{}{}
	for _, id := range userIDs {
		if _, ok := r.channels[id]; ok {
			found[id] = struct{}{}
		}
	}
	return found, nil
}

type memAppRepo struct {
	mu   sync.Mutex
	apps map[string]*mongo.ApplicationModel
}

func newMemAppRepo() *memAppRepo {
	return &memAppRepo{apps: map[string]*mongo.ApplicationModel{}}
}

func (r *memAppRepo) UpsertPending(_ context.Context, app *mongo.ApplicationModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	existing, ok := r.apps[app.UserID]
	if !ok {
		existing = &mongo.ApplicationModel{UserID: app.UserID, CreatedAt: now}
		r.apps[app.UserID] = existing
	}
	existing.ChannelName = app.ChannelName
	existing.YoutubeLink = app.YoutubeLink
	existing.TwitterLink = app.TwitterLink
	existing.Status = mongo.ApplicationPending
	existing.UpdatedAt = now
	return nil
}

func (r *memAppRepo) GetByUserID(_ context.Context, userID string) (*mongo.ApplicationModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[userID]
	if !ok {
		return nil, mongoDB.ErrNoDocuments
	}
	cp := *a
	return &cp, nil
}

func (r *memAppRepo) List(_ context.Context, status string) ([]*mongo.ApplicationModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*mongo.ApplicationModel, 0)
	for _, a := range r.apps {
		if status == "" || a.Status == status {
			cp := *a
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (r *memAppRepo) UpdateStatus(_ context.Context, userID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[userID]
	if !ok {
		return mongoDB.ErrNoDocuments
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

func (r *memAppRepo) ListUserIDsByStatus(_ context.Context, status string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0)
	for id, a := range r.apps {
		if a.Status == status {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// mp4Bytes 仅包含 ftyp 头，足以被识别为 video/mp4
func mp4Bytes() []byte {
	head := []byte{0x00, 0x00, 0x00, 0x18}
	head = append(head, []byte("ftypmp42")...)
	head = append(head, 0x00, 0x00, 0x00, 0x00)
	head = append(head, []byte("mp42isom")...)
	return append(head, make([]byte, 64)...)
}
