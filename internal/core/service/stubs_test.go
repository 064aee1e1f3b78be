package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/recipe-app/healthcare-backend/internal/core/domain"
	"github.com/recipe-app/healthcare-backend/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Specialization store
// ---------------------------------------------------------------------------

// stubSpecRepo mimics the Mongo repository: name lookup, unique slug.
type stubSpecRepo struct {
	mu        sync.Mutex
	byName    map[string]*domain.Specialization
	slugs     map[string]bool
	nextID    int
	createErr error
}

func newStubSpecRepo() *stubSpecRepo {
	return &stubSpecRepo{byName: map[string]*domain.Specialization{}, slugs: map[string]bool{}}
}

func (r *stubSpecRepo) FindOrCreate(_ context.Context, name string, d domain.SpecializationDefaults) (*domain.Specialization, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName[name]; ok {
		return existing, false, nil
	}
	if r.createErr != nil {
		return nil, false, r.createErr
	}

	slug := d.Slug
	if slug == "" {
		slug = domain.Slugify(name)
	}
	if r.slugs[slug] {
		return nil, false, fmt.Errorf("%w: %q", domain.ErrDuplicateSlug, slug)
	}

	r.nextID++
	spec := &domain.Specialization{
		ID:          fmt.Sprintf("spec-%d", r.nextID),
		Name:        name,
		Slug:        slug,
		Specialty:   d.Specialty,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.Owner != nil {
		spec.OwnerID = d.Owner.ID
	}
	r.byName[name] = spec
	r.slugs[slug] = true
	return spec, true, nil
}

func (r *stubSpecRepo) FindByName(_ context.Context, name string) (*domain.Specialization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.byName[name]; ok {
		return s, nil
	}
	return nil, domain.ErrSpecializationNotFound
}

func (r *stubSpecRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName)
}

// ---------------------------------------------------------------------------
// User store
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     []*domain.User
	listErr   error
	createErr error
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	cp := *u
	cp.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	r.users = append(r.users, &cp)
	return &cp, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ListActors(_ context.Context, q ports.ActorQuery) ([]*domain.User, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := append([]*domain.User(nil), r.users...)
	sort.SliceStable(out, func(i, j int) bool {
		if q.PrivilegedFirst && out[i].IsSuperuser != out[j].IsSuperuser {
			return out[i].IsSuperuser
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Reporter, lock, metrics
// ---------------------------------------------------------------------------

type notice struct {
	level string
	msg   string
}

type recordingReporter struct {
	notices []notice
}

func (r *recordingReporter) Success(msg string) { r.notices = append(r.notices, notice{"success", msg}) }
func (r *recordingReporter) Warning(msg string) { r.notices = append(r.notices, notice{"warning", msg}) }
func (r *recordingReporter) Error(msg string) { r.notices = append(r.notices, notice{"error", msg}) }

func (r *recordingReporter) byLevel(level string) []string {
	var out []string
	for _, n := range r.notices {
		if n.level == level {
			out = append(out, n.msg)
		}
	}
	return out
}

type stubLock struct {
	held       bool
	acquireErr error
	acquired   int
	released   int
}

func (l *stubLock) Acquire(context.Context) (bool, error) {
	if l.acquireErr != nil {
		return false, l.acquireErr
	}
	if l.held {
		return false, nil
	}
	l.held = true
	l.acquired++
	return true, nil
}

func (l *stubLock) Release(context.Context) error {
	l.held = false
	l.released++
	return nil
}

type stubMetrics struct {
	rows    map[domain.RowOutcome]int
	runs    []domain.ImportPhase
	created int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{rows: map[domain.RowOutcome]int{}}
}

func (m *stubMetrics) ObserveRow(o domain.RowOutcome) { m.rows[o]++ }

func (m *stubMetrics) ObserveRun(p domain.ImportPhase, created int, _ time.Duration) {
	m.runs = append(m.runs, p)
	m.created = created
}
