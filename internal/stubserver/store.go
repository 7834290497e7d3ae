package stubserver

import (
	"errors"
	"sync"
	"time"

	"github.com/maheshrc27/postflow-cli/internal/models"
	"github.com/maheshrc27/postflow-cli/pkg/utils"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrUsernameExists = errors.New("username already exists")
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

type Post struct {
	UserID int64
	models.Post
}

// Account keeps platform secrets encrypted at rest; only non-secret fields
// are ever serialized back to the client.
type Account struct {
	UserID         int64
	ID             int64
	Platform       string
	Username       string
	EncryptedToken string
	EncryptedChat  string
	IsActive       bool
	CreatedAt      time.Time
}

type Result struct {
	models.PublishResult
	PostedAt time.Time
}

// Store is the stub server's in-memory state. It stands in for the real
// backend's database during local development and integration tests.
type Store struct {
	mu        sync.RWMutex
	secretKey []byte

	users       map[int64]*User
	usersByName map[string]int64
	posts       map[int64]*Post
	accounts    map[int64]*Account
	results     map[int64][]Result
	media       map[string][]byte
	revoked     map[string]bool
	nextID      int64
}

func NewStore(secretKey string) *Store {
	return &Store{
		secretKey:   []byte(secretKey),
		users:       make(map[int64]*User),
		usersByName: make(map[string]int64),
		posts:       make(map[int64]*Post),
		accounts:    make(map[int64]*Account),
		results:     make(map[int64][]Result),
		media:       make(map[string][]byte),
		revoked:     make(map[string]bool),
	}
}

func (s *Store) nextIDLocked() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateUser(username, email string, passwordHash []byte) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usersByName[username]; exists {
		return nil, ErrUsernameExists
	}
	user := &User{
		ID:           s.nextIDLocked(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	s.usersByName[username] = user.ID
	return user, nil
}

func (s *Store) UserByName(username string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByName[username]
	if !ok {
		return nil, false
	}
	return s.users[id], true
}

func (s *Store) UserByID(id int64) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	return user, ok
}

func (s *Store) UpdateUser(id int64, email string, passwordHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	if email != "" {
		user.Email = email
	}
	if passwordHash != nil {
		user.PasswordHash = passwordHash
	}
	return nil
}

func (s *Store) CreatePost(userID int64, post models.Post) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = s.nextIDLocked()
	post.CreatedAt = time.Now()
	s.posts[post.ID] = &Post{UserID: userID, Post: post}
	return &post
}

func (s *Store) PostByID(userID, postID int64) (*models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[postID]
	if !ok || p.UserID != userID {
		return nil, false
	}
	post := p.Post
	return &post, true
}

func (s *Store) ListPosts(userID int64) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts := make([]models.Post, 0)
	for _, p := range s.posts {
		if p.UserID == userID {
			posts = append(posts, p.Post)
		}
	}
	return posts
}

func (s *Store) UpdatePost(userID, postID int64, mutate func(*models.Post)) (*models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok || p.UserID != userID {
		return nil, false
	}
	mutate(&p.Post)
	post := p.Post
	return &post, true
}

func (s *Store) DeletePost(userID, postID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok || p.UserID != userID {
		return false
	}
	delete(s.posts, postID)
	delete(s.results, postID)
	return true
}

// DueScheduledPosts returns posts whose scheduled time has passed and are
// still marked scheduled, across all users. Used by the cron sweep. Entries
// are copies; the sweep runs concurrently with request handlers.
func (s *Store) DueScheduledPosts(now time.Time) []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	due := make([]Post, 0)
	for _, p := range s.posts {
		if p.Status == models.PostStatusScheduled && p.ScheduledTime != nil && p.ScheduledTime.Before(now) {
			due = append(due, *p)
		}
	}
	return due
}

func (s *Store) SetPostStatus(postID int64, status string, postedAt *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.posts[postID]; ok {
		p.Status = status
		if postedAt != nil {
			p.PostedAt = postedAt
		}
	}
}

func (s *Store) CreateAccount(userID int64, platform, username, token, chatID string, isActive bool) (*Account, error) {
	encToken := ""
	encChat := ""
	var err error
	if token != "" {
		if encToken, err = utils.Encrypt([]byte(token), s.secretKey); err != nil {
			return nil, err
		}
	}
	if chatID != "" {
		if encChat, err = utils.Encrypt([]byte(chatID), s.secretKey); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	account := &Account{
		UserID:         userID,
		ID:             s.nextIDLocked(),
		Platform:       platform,
		Username:       username,
		EncryptedToken: encToken,
		EncryptedChat:  encChat,
		IsActive:       isActive,
		CreatedAt:      time.Now(),
	}
	s.accounts[account.ID] = account
	created := *account
	return &created, nil
}

// AccountByID returns a copy, like PostByID; callers read fields outside the
// store lock.
func (s *Store) AccountByID(userID, accountID int64) (*Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok || a.UserID != userID {
		return nil, false
	}
	account := *a
	return &account, true
}

func (s *Store) ListAccounts(userID int64) []*Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*Account, 0)
	for _, a := range s.accounts {
		if a.UserID == userID {
			account := *a
			accounts = append(accounts, &account)
		}
	}
	return accounts
}

func (s *Store) UpdateAccount(userID, accountID int64, mutate func(*Account)) (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok || a.UserID != userID {
		return nil, false
	}
	mutate(a)
	account := *a
	return &account, true
}

func (s *Store) DeleteAccount(userID, accountID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok || a.UserID != userID {
		return false
	}
	delete(s.accounts, accountID)
	return true
}

// Token returns the decrypted platform token for publishing.
func (s *Store) Token(a *Account) (string, error) {
	if a.EncryptedToken == "" {
		return "", nil
	}
	return utils.Decrypt(a.EncryptedToken, s.secretKey)
}

func (s *Store) ChatID(a *Account) (string, error) {
	if a.EncryptedChat == "" {
		return "", nil
	}
	return utils.Decrypt(a.EncryptedChat, s.secretKey)
}

func (s *Store) AppendResults(postID int64, results []models.PublishResult) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		s.results[postID] = append(s.results[postID], Result{PublishResult: r, PostedAt: now})
	}
}

func (s *Store) Results(userID, postID int64) ([]Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[postID]
	if !ok || p.UserID != userID {
		return nil, false
	}
	return append([]Result{}, s.results[postID]...), true
}

func (s *Store) SaveMedia(name string, data []byte) {
	s.mu.Lock()
	s.media[name] = data
	s.mu.Unlock()
}

func (s *Store) Media(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.media[name]
	return data, ok
}

func (s *Store) RevokeToken(token string) {
	s.mu.Lock()
	s.revoked[token] = true
	s.mu.Unlock()
}

func (s *Store) TokenRevoked(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revoked[token]
}
