package plans

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// DefaultPlanID is the plan used for manual Easypaisa approvals and for
// checkout when no plan is requested.
const DefaultPlanID = "monthly_pkr_1000"

// Plan describes a purchasable premium tier. Amount is in the smallest
// currency unit (PKR paisa), matching what Stripe expects.
type Plan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	Interval    string   `json:"interval"`
	Features    []string `json:"features"`
}

type plansFile struct {
	Plans []Plan `json:"plans"`
}

// Registry holds the configured plans, loaded once at boot.
type Registry struct {
	mu    sync.RWMutex
	plans map[string]*Plan
	order []string
}

func NewRegistry() *Registry {
	return &Registry{plans: make(map[string]*Plan)}
}

// Default returns a registry with the built-in monthly plan, used when no
// plans file is present.
func Default() *Registry {
	r := NewRegistry()
	r.Register(&Plan{
		ID:          DefaultPlanID,
		Name:        "LoveyLink Premium",
		Description: "Unlimited Love Pages, Custom QR Codes, and Advanced Analytics.",
		Amount:      100000,
		Currency:    "pkr",
		Interval:    "month",
		Features:    []string{"unlimited_pages", "qr_codes", "analytics"},
	})
	return r
}

func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plans config: %w", err)
	}

	var file plansFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plans config: %w", err)
	}

	registry := NewRegistry()
	for i := range file.Plans {
		registry.Register(&file.Plans[i])
	}
	return registry, nil
}

func (r *Registry) Register(p *Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	r.plans[p.ID] = p
}

func (r *Registry) Get(id string) *Plan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plans[id]
}

func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.plans[id]
	return ok
}

// All returns the plans in registration order.
func (r *Registry) All() []*Plan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Plan, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.plans[id])
	}
	return out
}
