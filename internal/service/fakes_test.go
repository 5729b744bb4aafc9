package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mansoorceksport/periodize/internal/domain"
)

// In-memory repositories backing the service tests. They mirror the Mongo
// repositories' contracts, including the conditional-write semantics the
// services lean on.

type fakeTemplateRepo struct {
	mu        sync.Mutex
	seq       int
	templates map[string]*domain.WorkoutTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: map[string]*domain.WorkoutTemplate{}}
}

func (r *fakeTemplateRepo) Create(_ context.Context, t *domain.WorkoutTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	t.ID = fmt.Sprintf("tmpl-%d", r.seq)
	r.templates[t.ID] = t
	return nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id string) (*domain.WorkoutTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return t, nil
}

func (r *fakeTemplateRepo) ListByUser(_ context.Context, userID string) ([]*domain.WorkoutTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.WorkoutTemplate
	for _, t := range r.templates {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, t *domain.WorkoutTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[t.ID]; !ok {
		return domain.ErrTemplateNotFound
	}
	r.templates[t.ID] = t
	return nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[id]; !ok {
		return domain.ErrTemplateNotFound
	}
	delete(r.templates, id)
	return nil
}

type fakeProgramRepo struct {
	mu       sync.Mutex
	seq      int
	programs map[string]*domain.Program
}

func newFakeProgramRepo() *fakeProgramRepo {
	return &fakeProgramRepo{programs: map[string]*domain.Program{}}
}

func (r *fakeProgramRepo) Create(_ context.Context, p *domain.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p.ID = fmt.Sprintf("prog-%d", r.seq)
	r.programs[p.ID] = p
	return nil
}

func (r *fakeProgramRepo) GetByID(_ context.Context, id string) (*domain.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.programs[id]
	if !ok {
		return nil, domain.ErrProgramNotFound
	}
	return p, nil
}

func (r *fakeProgramRepo) ListByUser(_ context.Context, userID string) ([]*domain.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Program
	for _, p := range r.programs {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProgramRepo) Update(_ context.Context, p *domain.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.programs[p.ID]; !ok {
		return domain.ErrProgramNotFound
	}
	r.programs[p.ID] = p
	return nil
}

func (r *fakeProgramRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.programs[id]; !ok {
		return domain.ErrProgramNotFound
	}
	delete(r.programs, id)
	return nil
}

type fakeScheduleRepo struct {
	mu       sync.Mutex
	seq      int
	workouts map[string]*domain.ScheduledWorkout
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{workouts: map[string]*domain.ScheduledWorkout{}}
}

func (r *fakeScheduleRepo) Create(_ context.Context, w *domain.ScheduledWorkout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirrors the partial unique index on active slots.
	for _, existing := range r.workouts {
		if existing.UserID == w.UserID && existing.TemplateID == w.TemplateID &&
			existing.Date.Equal(w.Date) && existing.Active() {
			return domain.ErrDuplicateSlot
		}
	}
	r.seq++
	w.ID = fmt.Sprintf("sched-%d", r.seq)
	cp := *w
	r.workouts[w.ID] = &cp
	return nil
}

func (r *fakeScheduleRepo) GetByID(_ context.Context, id string) (*domain.ScheduledWorkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeScheduleRepo) FindActiveSlot(_ context.Context, userID string, date time.Time, templateID string) (*domain.ScheduledWorkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.workouts {
		if w.UserID == userID && w.TemplateID == templateID && w.Date.Equal(date) && w.Active() {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeScheduleRepo) ListByDateRange(_ context.Context, userID string, from, to time.Time) ([]*domain.ScheduledWorkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ScheduledWorkout
	for _, w := range r.workouts {
		if w.UserID == userID && !w.Date.Before(from) && w.Date.Before(to) {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) Update(_ context.Context, w *domain.ScheduledWorkout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[w.ID]; !ok {
		return domain.ErrScheduleNotFound
	}
	cp := *w
	r.workouts[w.ID] = &cp
	return nil
}

func (r *fakeScheduleRepo) UpdateStatus(_ context.Context, id, fromStatus, toStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return domain.ErrScheduleNotFound
	}
	if w.Status != fromStatus {
		return domain.ErrInvalidTransition
	}
	w.Status = toStatus
	return nil
}

func (r *fakeScheduleRepo) SetSession(_ context.Context, id, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok {
		return domain.ErrScheduleNotFound
	}
	if w.Status != domain.ScheduleStatusPlanned {
		return domain.ErrInvalidTransition
	}
	w.SessionID = sessionID
	w.Status = domain.ScheduleStatusInProgress
	return nil
}

func (r *fakeScheduleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workouts[id]; !ok {
		return domain.ErrScheduleNotFound
	}
	delete(r.workouts, id)
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*domain.WorkoutSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*domain.WorkoutSession{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *domain.WorkoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s.ID = fmt.Sprintf("sess-%d", r.seq)
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	cp.Sets = append([]domain.LoggedSet(nil), s.Sets...)
	return &cp, nil
}

func (r *fakeSessionRepo) AppendSet(_ context.Context, id string, set domain.LoggedSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if s.CompletedAt != nil {
		return domain.ErrSessionFinalized
	}
	s.Sets = append(s.Sets, set)
	return nil
}

func (r *fakeSessionRepo) Finalize(_ context.Context, id string, completedAt time.Time, totalVolume float64, totalSets int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if s.CompletedAt != nil {
		return domain.ErrSessionFinalized
	}
	s.CompletedAt = &completedAt
	s.TotalVolume = totalVolume
	s.TotalSets = totalSets
	return nil
}

func (r *fakeSessionRepo) ReplaceSets(_ context.Context, id string, sets []domain.LoggedSet, totalVolume float64, totalSets int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Sets = append([]domain.LoggedSet(nil), sets...)
	s.TotalVolume = totalVolume
	s.TotalSets = totalSets
	return nil
}

func (r *fakeSessionRepo) Void(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.VoidedAt = &at
	return nil
}

func (r *fakeSessionRepo) ListCompletedByDateRange(_ context.Context, userID string, from, to time.Time) ([]*domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.WorkoutSession
	for _, s := range r.sessions {
		if s.UserID != userID || s.CompletedAt == nil || s.VoidedAt != nil {
			continue
		}
		if s.CompletedAt.Before(from) || !s.CompletedAt.Before(to) {
			continue
		}
		cp := *s
		cp.Sets = append([]domain.LoggedSet(nil), s.Sets...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.Before(*out[j].CompletedAt) })
	return out, nil
}

type fakeMaxRepo struct {
	mu        sync.Mutex
	seq       int
	estimates map[string]*domain.OneRepMaxEstimate
}

func newFakeMaxRepo() *fakeMaxRepo {
	return &fakeMaxRepo{estimates: map[string]*domain.OneRepMaxEstimate{}}
}

func maxKey(userID, exerciseID string) string { return userID + "|" + exerciseID }

func (r *fakeMaxRepo) Get(_ context.Context, userID, exerciseID string) (*domain.OneRepMaxEstimate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	est, ok := r.estimates[maxKey(userID, exerciseID)]
	if !ok {
		return nil, nil
	}
	cp := *est
	return &cp, nil
}

func (r *fakeMaxRepo) Upsert(_ context.Context, est *domain.OneRepMaxEstimate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := maxKey(est.UserID, est.ExerciseID)
	if existing, ok := r.estimates[key]; ok {
		est.ID = existing.ID
	} else {
		r.seq++
		est.ID = fmt.Sprintf("max-%d", r.seq)
	}
	cp := *est
	r.estimates[key] = &cp
	return nil
}

func (r *fakeMaxRepo) ListByUser(_ context.Context, userID string) ([]*domain.OneRepMaxEstimate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.OneRepMaxEstimate
	for _, est := range r.estimates {
		if est.UserID == userID {
			cp := *est
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return domain.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	c.sets++
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.deletes++
	return nil
}

type noopInvalidator struct {
	mu    sync.Mutex
	calls []string
}

func (n *noopInvalidator) InvalidateDay(_ context.Context, userID string, date time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, userID+"|"+date.Format("2006-01-02"))
	return nil
}
