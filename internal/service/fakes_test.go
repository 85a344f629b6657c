package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/hawy/hawy-go/internal/crypto"
	"github.com/hawy/hawy-go/internal/logging"
	"github.com/hawy/hawy-go/internal/model"
	"github.com/hawy/hawy-go/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
	err   error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type fakeChatStore struct {
	mu        sync.Mutex
	turns     []model.ChatTurn
	seq       int
	appendErr error
	recentErr error
	deleteErr error
}

func (f *fakeChatStore) Append(_ context.Context, t *model.ChatTurn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.seq++
	t.ID = strconv.Itoa(f.seq)
	f.turns = append(f.turns, *t)
	return nil
}

func (f *fakeChatStore) Recent(_ context.Context, scope model.AccessScope, limit int) ([]model.ChatTurn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	var out []model.ChatTurn
	for _, t := range f.turns {
		if matches(scope, t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		a, _ := strconv.Atoi(out[i].ID)
		b, _ := strconv.Atoi(out[j].ID)
		return a > b
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeChatStore) Delete(_ context.Context, scope model.AccessScope) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	kept := f.turns[:0]
	var n int64
	for _, t := range f.turns {
		if matches(scope, t) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	f.turns = kept
	return n, nil
}

func (f *fakeChatStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.turns)
}

func matches(scope model.AccessScope, t model.ChatTurn) bool {
	if t.SessionID != scope.SessionID {
		return false
	}
	return !scope.IsOwned() || t.UserID == scope.UserID
}

// fakeOracle replies with a fixed text and records every prompt it receives.
type fakeOracle struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeOracle) Complete(_ context.Context, p string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeOracle) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func newTestAuthService(users repository.UserStore) *AuthService {
	hasher := crypto.NewPasswordHasher(crypto.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	return NewAuthService(users, crypto.NewTokenService("test-secret", time.Hour), hasher, logging.Discard())
}
