package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/utils"
)

// Мок-репозиторий пользователей (в памяти)
type mockUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64
	saves  int
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[int64]*models.User), nextID: 1}
	for _, u := range users {
		cp := *u
		m.users[u.ID] = &cp
		if u.ID >= m.nextID {
			m.nextID = u.ID + 1
		}
	}
	return m
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()
	m.nextID++
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) Save(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	m.saves++
	return nil
}

func (m *mockUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id })
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *mockUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Username == username })
}

func (m *mockUserRepo) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	return err == nil, nil
}

func (m *mockUserRepo) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	return err == nil, nil
}

// Мок-репозиторий постов
type mockPostRepo struct {
	posts  map[int64]*models.Post
	nextID int64
	now    time.Time
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[int64]*models.Post), nextID: 1, now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *mockPostRepo) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	cp := *p
	cp.ID = m.nextID
	cp.DatePosted = m.now.Add(time.Duration(m.nextID) * time.Minute)
	m.nextID++
	m.posts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id int64) (*models.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPostRepo) Update(_ context.Context, p *models.Post) error {
	if _, ok := m.posts[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *mockPostRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *mockPostRepo) sorted(match func(*models.Post) bool) []*models.Post {
	var out []*models.Post
	for _, p := range m.posts {
		if match(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DatePosted.After(out[j].DatePosted) })
	return out
}

func paginate(all []*models.Post, limit, offset int) ([]*models.Post, int64) {
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total
}

func (m *mockPostRepo) List(_ context.Context, limit, offset int) ([]*models.Post, int64, error) {
	items, total := paginate(m.sorted(func(*models.Post) bool { return true }), limit, offset)
	return items, total, nil
}

func (m *mockPostRepo) ListByAuthor(_ context.Context, userID int64, limit, offset int) ([]*models.Post, int64, error) {
	items, total := paginate(m.sorted(func(p *models.Post) bool { return p.UserID == userID }), limit, offset)
	return items, total, nil
}

// recordingMailer запоминает отправленные письма
type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

func testHasher() *utils.BcryptHasher {
	return utils.NewBcryptHasher(bcrypt.MinCost)
}

func mustHash(h *utils.BcryptHasher, password string) string {
	hash, err := h.Hash(password)
	if err != nil {
		panic(err)
	}
	return hash
}
