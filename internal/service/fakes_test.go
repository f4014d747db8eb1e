package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/premiumcars/listingsheet/internal/model"
	"github.com/premiumcars/listingsheet/internal/render"
	"github.com/premiumcars/listingsheet/internal/repository"
)

type memStore struct {
	mu      sync.Mutex
	users   map[string]*model.User
	records map[string]*model.Record
	writes  int
	failGet error
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[string]*model.User),
		records: make(map[string]*model.Record),
	}
}

func (m *memStore) addUser(id, email string) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &model.User{ID: id, Email: email, CreatedAt: time.Now().UTC()}
	m.users[id] = u
	return u
}

func (m *memStore) addRecord(rec *model.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records[rec.ID] = &cp
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) GetOrCreateUser(_ context.Context, user *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			cp := *u
			return &cp, nil
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return user, nil
}

func (m *memStore) CreateRecord(_ context.Context, rec *model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[rec.OwnerID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *rec
	m.records[rec.ID] = &cp
	m.writes++
	return nil
}

func (m *memStore) GetRecordByID(_ context.Context, id string) (*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memStore) ListRecordsByOwner(_ context.Context, ownerID string) ([]*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Record, 0)
	for _, rec := range m.records {
		if rec.OwnerID == ownerID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) UpdateRecord(_ context.Context, rec *model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.records[rec.ID]
	if !ok || cur.OwnerID != rec.OwnerID {
		return repository.ErrRecordNotFound
	}
	cp := *rec
	cp.CreatedAt = cur.CreatedAt
	m.records[rec.ID] = &cp
	m.writes++
	return nil
}

func (m *memStore) DeleteRecord(_ context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.records[id]
	if !ok || cur.OwnerID != ownerID {
		return repository.ErrRecordNotFound
	}
	delete(m.records, id)
	m.writes++
	return nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	err      error
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]*model.Session)}
}

func (m *memSessions) GetSession(_ context.Context, hash string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sessions[hash], nil
}

func (m *memSessions) SetSession(_ context.Context, hash string, sess *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sessions[hash] = sess
	return nil
}

func (m *memSessions) DeleteSession(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.sessions, hash)
	return nil
}

type fakePDF struct {
	calls int
	html  []byte
	err   error
}

func (f *fakePDF) RenderPDF(_ context.Context, html []byte) ([]byte, error) {
	f.calls++
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 fake"), nil
}

func (f *fakePDF) Close() error { return nil }

var _ render.PDFRenderer = (*fakePDF)(nil)

type memArchive struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemArchive() *memArchive {
	return &memArchive{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *memArchive) Upload(_ context.Context, key string, data []byte, contentType string) error {
	if m.err != nil {
		return m.err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memArchive) PresignDownload(_ context.Context, key string, expiry time.Duration) (string, error) {
	if _, ok := m.objects[key]; !ok {
		return "", errors.New("no such key")
	}
	return "https://archive.test/" + key + "?expires=" + expiry.String(), nil
}
