package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/password"
	"xpointconnect/backend/services/auth-service/internal/models"
	"xpointconnect/backend/services/auth-service/internal/repository"
)

var fixedNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return repository.ErrAlreadyExists
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeOwnerRepo struct {
	mu     sync.Mutex
	owners map[string]models.EVOwner
}

func newFakeOwnerRepo(owners ...models.EVOwner) *fakeOwnerRepo {
	r := &fakeOwnerRepo{owners: map[string]models.EVOwner{}}
	for _, o := range owners {
		r.owners[o.NIC] = o
	}
	return r
}

func (r *fakeOwnerRepo) Create(_ context.Context, o *models.EVOwner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[o.NIC]; ok {
		return repository.ErrAlreadyExists
	}
	r.owners[o.NIC] = *o
	return nil
}

func (r *fakeOwnerRepo) GetByNIC(_ context.Context, nic string) (*models.EVOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.owners[nic]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r *fakeOwnerRepo) List(_ context.Context, awaitingReactivation bool) ([]models.EVOwner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.EVOwner{}
	for _, o := range r.owners {
		if awaitingReactivation && !o.RequiresReactivation {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NIC < out[j].NIC })
	return out, nil
}

func (r *fakeOwnerRepo) Update(_ context.Context, o *models.EVOwner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[o.NIC]; !ok {
		return repository.ErrNotFound
	}
	r.owners[o.NIC] = *o
	return nil
}

func (r *fakeOwnerRepo) SetActivation(_ context.Context, nic string, active bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.owners[nic]
	if !ok {
		return repository.ErrNotFound
	}
	o.IsActive = active
	o.RequiresReactivation = !active
	o.UpdatedAt = at
	r.owners[nic] = o
	return nil
}

func (r *fakeOwnerRepo) Delete(_ context.Context, nic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[nic]; !ok {
		return repository.ErrNotFound
	}
	delete(r.owners, nic)
	return nil
}

func testHasher() password.Hasher {
	return password.NewBcryptHasher(4)
}

func testTokens() *auth.TokenService {
	return auth.NewTokenService("test-secret", time.Hour)
}

func mustHash(t interface{ Fatal(...interface{}) }, pw string) string {
	hash, err := testHasher().Hash(pw)
	if err != nil {
		t.Fatal(err)
	}
	return hash
}

func newTestUserService(repo UserRepository) *UserService {
	svc := NewUserService(repo, testHasher(), testTokens(), nil, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func newTestOwnerService(repo OwnerRepository) *OwnerService {
	svc := NewOwnerService(repo, testHasher(), testTokens(), nil, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}
