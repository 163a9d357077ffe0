// Package session holds the signed-in user record and the functions that
// load and save it through an injected Storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Network names accepted by the API.
const (
	NetworkSepolia = "sepolia"
	NetworkMainnet = "mainnet"
)

var (
	// ErrNotFound is returned by Storage when no record exists for a key.
	ErrNotFound = errors.New("session: not found")

	// ErrIncomplete is returned when saving a user without token, wallet or a supported network.
	ErrIncomplete = errors.New("session: user record is incomplete")
)

// Networks lists the supported network names.
func Networks() []string {
	return []string{NetworkSepolia, NetworkMainnet}
}

// ValidNetwork reports whether name is a supported network.
func ValidNetwork(name string) bool {
	return name == NetworkSepolia || name == NetworkMainnet
}

// User is the signed-in wallet holder.
type User struct {
	AccessToken   string `json:"access_token"`
	WalletAddress string `json:"wallet_address"`
	Network       string `json:"network"`
	Email         string `json:"email,omitempty"`
}

// Complete reports whether u carries everything needed to sign writes.
func (u User) Complete() bool {
	return strings.TrimSpace(u.AccessToken) != "" &&
		strings.TrimSpace(u.WalletAddress) != "" &&
		ValidNetwork(u.Network)
}

// WithAccessToken returns u with token applied when token is non-empty.
func (u User) WithAccessToken(token string) User {
	if strings.TrimSpace(token) != "" {
		u.AccessToken = token
	}
	return u
}

// Receipt is what the hosted execution service returns for a submitted write.
type Receipt struct {
	TxHash      string `json:"txHash"`
	AccessToken string `json:"accessToken,omitempty"`
}

// Registration is the account created by a sign-up.
type Registration struct {
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address"`
	CreatedAt     string `json:"created_at"`
}

// Storage persists opaque session records by key.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// NewID returns a fresh session key.
func NewID() string {
	return uuid.NewString()
}

// Load reads the user stored under key. A missing or unreadable record reports ok=false.
func Load(ctx context.Context, storage Storage, key string) (User, bool, error) {
	raw, err := storage.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("load session: %w", err)
	}

	var user User
	if err := json.Unmarshal(raw, &user); err != nil || !user.Complete() {
		return User{}, false, nil
	}
	return user, true, nil
}

// Save replaces the record under key. A nil user clears it.
func Save(ctx context.Context, storage Storage, key string, user *User) error {
	if user == nil {
		if err := storage.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("clear session: %w", err)
		}
		return nil
	}
	if !user.Complete() {
		return ErrIncomplete
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := storage.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// MemoryStorage keeps session records in process memory.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (m *MemoryStorage) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[key]; !ok {
		return ErrNotFound
	}
	delete(m.items, key)
	return nil
}
