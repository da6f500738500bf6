package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	sets map[string]map[string]struct{}
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), sets: make(map[string]map[string]struct{})}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
		delete(m.sets, key)
	}
	return nil
}

func (m *mockStore) SAdd(ctx context.Context, key string, ttl time.Duration, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{})
		m.sets[key] = set
	}
	for _, member := range members {
		set[member] = struct{}{}
	}
	return nil
}

func (m *mockStore) SRem(ctx context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range members {
		delete(m.sets[key], member)
	}
	return nil
}

func (m *mockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sets[key]))
	for member := range m.sets[key] {
		out = append(out, member)
	}
	return out, nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func (m *mockStore) UserSessionsKey(userID string) string {
	return fmt.Sprintf("user-sess:%s", userID)
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func storedRecord(t *testing.T, store *mockStore, accessID string) (record, bool) {
	t.Helper()
	raw, ok := store.data[store.AccessSessionKey(accessID)]
	if !ok {
		return record{}, false
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("decode stored session: %v", err)
	}
	return rec, true
}

func TestManagerGenerateAndRotate(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()
	userID := uuid.New()

	accessID := "access-123"
	token, err := manager.Generate(ctx, accessID, userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	rec, ok := storedRecord(t, store, accessID)
	if !ok || !rec.matches(token) || rec.UserID != userID {
		t.Fatalf("unexpected stored session %+v", rec)
	}

	if _, _, _, err := manager.Rotate(ctx, accessID, "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}

	owner, newAccessID, newToken, err := manager.Rotate(ctx, accessID, token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if owner != userID {
		t.Fatalf("expected owner %s, got %s", userID, owner)
	}
	if _, exists := storedRecord(t, store, accessID); exists {
		t.Fatalf("old access key left behind")
	}
	rec, ok = storedRecord(t, store, newAccessID)
	if !ok || !rec.matches(newToken) || rec.UserID != userID {
		t.Fatalf("expected new session stored, got %+v", rec)
	}

	if _, _, _, err := manager.Rotate(ctx, accessID, token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("rotating a consumed session should fail, got %v", err)
	}
}

func TestManagerStoresDigestOnly(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)

	token, err := manager.Generate(context.Background(), "access-9", uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	raw := store.data[store.AccessSessionKey("access-9")]
	if raw == "" || strings.Contains(raw, token) {
		t.Fatalf("raw refresh token persisted: %s", raw)
	}
}

func TestManagerRotateRejectsCorruptRecord(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	store.data[store.AccessSessionKey("access-x")] = `{"user_id":"` + uuid.NewString() + `"}`

	if _, _, _, err := manager.Rotate(context.Background(), "access-x", "anything"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
}

func TestManagerHasSessionAndRevoke(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	if _, err := manager.Generate(ctx, "access-1", uuid.New()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	ok, err := manager.HasSession(ctx, "access-1")
	if err != nil || !ok {
		t.Fatalf("expected active session, ok=%v err=%v", ok, err)
	}

	if err := manager.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = manager.HasSession(ctx, "access-1")
	if err != nil || ok {
		t.Fatalf("expected revoked session, ok=%v err=%v", ok, err)
	}
}

func TestManagerRevokeUserEndsEverySession(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()
	userID := uuid.New()
	otherID := uuid.New()

	token, err := manager.Generate(ctx, "phone", userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := manager.Generate(ctx, "laptop", userID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := manager.Generate(ctx, "other", otherID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, rotated, _, err := manager.Rotate(ctx, "phone", token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}

	if err := manager.RevokeUser(ctx, userID); err != nil {
		t.Fatalf("revoke user: %v", err)
	}
	for _, accessID := range []string{"phone", "laptop", rotated} {
		if ok, _ := manager.HasSession(ctx, accessID); ok {
			t.Fatalf("session %s survived revoke", accessID)
		}
	}
	if ok, _ := manager.HasSession(ctx, "other"); !ok {
		t.Fatalf("another user's session was revoked")
	}
	if _, exists := store.sets[store.UserSessionsKey(userID.String())]; exists {
		t.Fatalf("user session index left behind")
	}
}

func TestManagerRevokeDropsIndexEntry(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := manager.Generate(ctx, "access-1", userID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := manager.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if len(store.sets[store.UserSessionsKey(userID.String())]) != 0 {
		t.Fatalf("expected index entry removed")
	}
	if err := manager.Revoke(ctx, "never-issued"); err != nil {
		t.Fatalf("revoking an unknown session should be a no-op: %v", err)
	}
}

func TestManagerGenerateValidatesInput(t *testing.T) {
	manager := newTestManager(newMockStore())
	if _, err := manager.Generate(context.Background(), " ", uuid.New()); err == nil {
		t.Fatalf("expected missing access id error")
	}
	if _, err := manager.Generate(context.Background(), "access", uuid.Nil); err == nil {
		t.Fatalf("expected missing user id error")
	}
}
