package model

import "fmt"

type PlanID string

const (
	PlanBasic    PlanID = "basic"
	PlanStandard PlanID = "standard"
	PlanPremium  PlanID = "premium"
)

type Plan struct {
	ID       PlanID   `json:"id"`
	Name     string   `json:"name"`
	Price    int      `json:"price"` // USD
	Features []string `json:"features"`
}

// PlanCatalog is a read-only price table. It is built once and passed to
// whoever needs to resolve a plan price.
type PlanCatalog struct {
	defaultID PlanID
	order     []PlanID
	plans     map[PlanID]Plan
}

func NewPlanCatalog(defaultID PlanID, plans ...Plan) (PlanCatalog, error) {
	c := PlanCatalog{
		defaultID: defaultID,
		order:     make([]PlanID, 0, len(plans)),
		plans:     make(map[PlanID]Plan, len(plans)),
	}
	for _, p := range plans {
		if p.ID == "" {
			return PlanCatalog{}, fmt.Errorf("plan id is required")
		}
		if p.Price <= 0 {
			return PlanCatalog{}, fmt.Errorf("plan %s: price must be positive", p.ID)
		}
		if _, dup := c.plans[p.ID]; dup {
			return PlanCatalog{}, fmt.Errorf("plan %s: duplicate id", p.ID)
		}
		p.Features = append([]string(nil), p.Features...)
		c.plans[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	if _, ok := c.plans[defaultID]; !ok {
		return PlanCatalog{}, fmt.Errorf("default plan %s is not in the catalog", defaultID)
	}
	return c, nil
}

func DefaultPlanCatalog() PlanCatalog {
	c, err := NewPlanCatalog(PlanPremium,
		Plan{
			ID:    PlanBasic,
			Name:  "Basic Meet & Greet",
			Price: 500,
			Features: []string{
				"10-minute personal meeting",
				"Professional photo opportunity",
				"Signed photograph",
				"Group session with other fans",
			},
		},
		Plan{
			ID:    PlanStandard,
			Name:  "Standard Experience",
			Price: 750,
			Features: []string{
				"15-minute personal meeting",
				"Professional photo opportunity",
				"Signed merchandise",
				"Q&A session access",
				"Priority seating",
			},
		},
		Plan{
			ID:    PlanPremium,
			Name:  "Premium Package",
			Price: 1000,
			Features: []string{
				"30-minute personal meeting",
				"Professional photo shoot (3 digital photos)",
				"Signed merchandise package",
				"Exclusive Q&A session",
				"VIP seating",
				"Backstage access (where available)",
				"Commemorative gift",
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

func (c PlanCatalog) Default() PlanID {
	return c.defaultID
}

func (c PlanCatalog) Lookup(id PlanID) (Plan, bool) {
	p, ok := c.plans[id]
	if !ok {
		return Plan{}, false
	}
	p.Features = append([]string(nil), p.Features...)
	return p, true
}

func (c PlanCatalog) Price(id PlanID) (int, bool) {
	p, ok := c.plans[id]
	return p.Price, ok
}

// Plans lists the catalog in declaration order.
func (c PlanCatalog) Plans() []Plan {
	out := make([]Plan, 0, len(c.order))
	for _, id := range c.order {
		p, _ := c.Lookup(id)
		out = append(out, p)
	}
	return out
}
