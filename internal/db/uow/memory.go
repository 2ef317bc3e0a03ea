package uow

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	audiodomain "soundvault/internal/audio/domain"
	audiorepo "soundvault/internal/audio/repository"
	sessiondomain "soundvault/internal/session/domain"
	userdomain "soundvault/internal/user/domain"
	userrepo "soundvault/internal/user/repository"
)

// ErrDuplicateRefreshToken mirrors the refresh_token unique constraint in memory.
var ErrDuplicateRefreshToken = errors.New("duplicate refresh token")

// MemoryUnitOfWork is an in-memory Runner. Each Do works on a copy of the state that
// replaces the committed state only when fn succeeds and the context is still live.
// Calls are serialized; fn must not call Do again.
type MemoryUnitOfWork struct {
	mu    sync.Mutex
	state *memState
}

// NewMemory returns an empty in-memory unit of work.
func NewMemory() *MemoryUnitOfWork {
	return &MemoryUnitOfWork{state: newMemState()}
}

// Do runs fn against a private copy of the state and publishes it on success.
func (m *MemoryUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := m.state.clone()
	if err := fn(ctx, work.repositories()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.state = work
	return nil
}

// AddUser stores u directly, outside any transaction, and assigns its ID.
func (m *MemoryUnitOfWork) AddUser(u *userdomain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = (&memUsers{s: m.state}).Create(context.Background(), u)
}

// Sessions returns copies of all committed sessions ordered by ID.
func (m *MemoryUnitOfWork) Sessions() []sessiondomain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sessiondomain.Session, 0, len(m.state.sessions))
	for _, s := range m.state.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// User returns a copy of the committed user with id, or nil.
func (m *MemoryUnitOfWork) User(id int64) *userdomain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.state.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

// AudioFiles returns copies of all committed audio files ordered by ID.
func (m *MemoryUnitOfWork) AudioFiles() []audiodomain.AudioFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audiodomain.AudioFile, 0, len(m.state.audio))
	for _, f := range m.state.audio {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memState struct {
	users    map[int64]*userdomain.User
	sessions map[int64]*sessiondomain.Session
	audio    map[int64]*audiodomain.AudioFile

	nextUserID    int64
	nextSessionID int64
	nextAudioID   int64
}

func newMemState() *memState {
	return &memState{
		users:    make(map[int64]*userdomain.User),
		sessions: make(map[int64]*sessiondomain.Session),
		audio:    make(map[int64]*audiodomain.AudioFile),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for id, u := range s.users {
		cp := *u
		c.users[id] = &cp
	}
	for id, sess := range s.sessions {
		cp := *sess
		c.sessions[id] = &cp
	}
	for id, f := range s.audio {
		cp := *f
		c.audio[id] = &cp
	}
	c.nextUserID = s.nextUserID
	c.nextSessionID = s.nextSessionID
	c.nextAudioID = s.nextAudioID
	return c
}

func (s *memState) repositories() Repositories {
	return Repositories{
		Users:      &memUsers{s: s},
		Sessions:   &memSessions{s: s},
		AudioFiles: &memAudio{s: s},
	}
}

type memUsers struct{ s *memState }

func (r *memUsers) GetByID(_ context.Context, id int64) (*userdomain.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByYandexID(_ context.Context, yandexID string) (*userdomain.User, error) {
	for _, u := range r.s.users {
		if u.YandexID == yandexID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUsers) Create(_ context.Context, u *userdomain.User) error {
	if r.conflicts(u) {
		return userrepo.ErrDuplicateUser
	}
	if u.ID == 0 {
		r.s.nextUserID++
		u.ID = r.s.nextUserID
	} else if u.ID > r.s.nextUserID {
		r.s.nextUserID = u.ID
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *memUsers) Update(_ context.Context, u *userdomain.User) error {
	cur, ok := r.s.users[u.ID]
	if !ok {
		return userrepo.ErrUserNotFound
	}
	if r.conflicts(u) {
		return userrepo.ErrDuplicateUser
	}
	cur.Username = u.Username
	cur.PhoneNumber = u.PhoneNumber
	cur.IsSuperuser = u.IsSuperuser
	cur.UpdatedAt = time.Now().UTC()
	u.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r *memUsers) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.users[id]; !ok {
		return userrepo.ErrUserNotFound
	}
	delete(r.s.users, id)
	for sid, sess := range r.s.sessions {
		if sess.UserID == id {
			delete(r.s.sessions, sid)
		}
	}
	for fid, f := range r.s.audio {
		if f.UserID == id {
			delete(r.s.audio, fid)
		}
	}
	return nil
}

func (r *memUsers) conflicts(u *userdomain.User) bool {
	for id, other := range r.s.users {
		if id == u.ID {
			continue
		}
		if other.YandexID == u.YandexID || other.Username == u.Username || other.PhoneNumber == u.PhoneNumber {
			return true
		}
	}
	return false
}

type memSessions struct{ s *memState }

func (r *memSessions) Insert(_ context.Context, sess *sessiondomain.Session) error {
	if r.holder(sess.RefreshToken) != nil {
		return ErrDuplicateRefreshToken
	}
	r.s.nextSessionID++
	sess.ID = r.s.nextSessionID
	sess.CreatedAt = time.Now().UTC()
	cp := *sess
	r.s.sessions[sess.ID] = &cp
	return nil
}

func (r *memSessions) FindByRefreshToken(_ context.Context, token string) (*sessiondomain.Session, error) {
	if s := r.holder(token); s != nil {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *memSessions) UpdateRefreshToken(_ context.Context, id int64, token string, expiresAt time.Time) error {
	cur, ok := r.s.sessions[id]
	if !ok {
		return errors.New("session not found")
	}
	if other := r.holder(token); other != nil && other.ID != id {
		return ErrDuplicateRefreshToken
	}
	cur.RefreshToken = token
	cur.ExpiresAt = expiresAt
	return nil
}

func (r *memSessions) holder(token string) *sessiondomain.Session {
	for _, s := range r.s.sessions {
		if s.RefreshToken == token {
			return s
		}
	}
	return nil
}

type memAudio struct{ s *memState }

func (r *memAudio) Create(_ context.Context, f *audiodomain.AudioFile) error {
	for _, other := range r.s.audio {
		if (other.UserID == f.UserID && other.FilenameOriginal == f.FilenameOriginal) || other.FilenameUnique == f.FilenameUnique {
			return audiorepo.ErrDuplicateFile
		}
	}
	r.s.nextAudioID++
	f.ID = r.s.nextAudioID
	f.CreatedAt = time.Now().UTC()
	cp := *f
	r.s.audio[f.ID] = &cp
	return nil
}

func (r *memAudio) GetByOriginalName(_ context.Context, userID int64, name string) (*audiodomain.AudioFile, error) {
	for _, f := range r.s.audio {
		if f.UserID == userID && f.FilenameOriginal == name {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAudio) ListByUser(_ context.Context, userID int64) ([]*audiodomain.AudioFile, error) {
	var out []*audiodomain.AudioFile
	for _, f := range r.s.audio {
		if f.UserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
