// Package memory is an in-process implementation of the storage ports.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"hustleledger/internal/core"
	"hustleledger/internal/ports"
)

var _ ports.Store = (*Store)(nil)

type Store struct {
	mu        sync.Mutex
	entries   map[string]core.Entry
	templates map[string]core.RecurringTemplate
	budgets   map[string]core.Budget
	kv        map[string]string
	inbox     []core.InboxItem
}

func New(budgets ...core.Budget) *Store {
	s := &Store{
		entries:   make(map[string]core.Entry),
		templates: make(map[string]core.RecurringTemplate),
		budgets:   make(map[string]core.Budget),
		kv:        make(map[string]string),
	}
	for _, b := range budgets {
		s.budgets[b.ID] = b.Clone()
	}
	return s
}

// NewFromFiles seeds budgets from base/seed_budgets.txt. Each non-comment
// line is "name|category|limit" with an optional "|cadence" suffix; malformed
// lines are skipped.
func NewFromFiles(base string) *Store {
	var budgets []core.Budget
	for _, line := range readLines(filepath.Join(base, "seed_budgets.txt")) {
		b, err := parseSeedBudget(line)
		if err != nil {
			continue
		}
		budgets = append(budgets, b)
	}
	return New(budgets...)
}

func parseSeedBudget(line string) (core.Budget, error) {
	parts := strings.Split(line, "|")
	if len(parts) < 3 {
		return core.Budget{}, fmt.Errorf("seed budget %q: want name|category|limit", line)
	}
	limit, err := core.ParseAmount(parts[2])
	if err != nil {
		return core.Budget{}, fmt.Errorf("seed budget %q: %w", line, err)
	}
	b := core.Budget{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(parts[0]),
		CategoryID: strings.TrimSpace(parts[1]),
		Limit:      limit,
		Cadence:    core.CadenceMonthly,
	}
	if len(parts) > 3 {
		b.Cadence = core.Cadence(strings.TrimSpace(parts[3]))
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, fmt.Errorf("seed budget %q: %w", line, err)
	}
	return b, nil
}

func (s *Store) SaveEntry(_ context.Context, e core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = e
	return nil
}

func (s *Store) GetEntry(_ context.Context, id string) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return core.Entry{}, fmt.Errorf("entry %s: %w", id, core.ErrNotFound)
	}
	return e, nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("entry %s: %w", id, core.ErrNotFound)
	}
	delete(s.entries, id)
	return nil
}

func (s *Store) DeleteEntriesByTemplate(_ context.Context, templateID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if e.TemplateID == templateID {
			delete(s.entries, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) ListEntries(_ context.Context, f ports.EntryFilter) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Entry
	for _, e := range s.entries {
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.TemplateID != "" && e.TemplateID != f.TemplateID {
			continue
		}
		if !f.From.IsZero() && e.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !e.Date.Before(f.To) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) SaveTemplate(_ context.Context, t core.RecurringTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.ID] = t
	return nil
}

func (s *Store) GetTemplate(_ context.Context, id string) (core.RecurringTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return core.RecurringTemplate{}, fmt.Errorf("template %s: %w", id, core.ErrNotFound)
	}
	return t, nil
}

func (s *Store) DeleteTemplate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return fmt.Errorf("template %s: %w", id, core.ErrNotFound)
	}
	delete(s.templates, id)
	return nil
}

func (s *Store) ListTemplates(_ context.Context, activeOnly bool) ([]core.RecurringTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RecurringTemplate
	for _, t := range s.templates {
		if activeOnly && !t.Active {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) SaveBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.ID] = b.Clone()
	return nil
}

func (s *Store) GetBudget(_ context.Context, id string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	return b.Clone(), nil
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[id]; !ok {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	return s.budgetsWhere(func(core.Budget) bool { return true }), nil
}

func (s *Store) BudgetsByCategory(_ context.Context, category string) ([]core.Budget, error) {
	if category == "" {
		return nil, nil
	}
	return s.budgetsWhere(func(b core.Budget) bool { return b.CategoryID == category }), nil
}

func (s *Store) budgetsWhere(keep func(core.Budget) bool) []core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if keep(b) {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.kv[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kv, key)
	return nil
}

func (s *Store) SaveInboxItem(_ context.Context, item core.InboxItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.inbox {
		if s.inbox[i].Handle == item.Handle {
			s.inbox[i] = item
			return nil
		}
	}
	s.inbox = append(s.inbox, item)
	return nil
}

func (s *Store) CancelInboxItem(_ context.Context, handle core.NotificationHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.inbox {
		if s.inbox[i].Handle == handle {
			s.inbox[i].Cancelled = true
			return nil
		}
	}
	return fmt.Errorf("inbox item %s: %w", handle, core.ErrNotFound)
}

func (s *Store) ListInbox(_ context.Context, pendingOnly bool) ([]core.InboxItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.InboxItem
	for _, item := range s.inbox {
		if pendingOnly && item.Cancelled {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
