package quota

import (
	"context"
	"fmt"
	"time"
)

// Resource is one of the daily-limited resource kinds.
type Resource string

const (
	ResourceChat   Resource = "chat"
	ResourceApply  Resource = "apply"
	ResourceResume Resource = "resume"
	ResourceUpload Resource = "upload"
)

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPro     Plan = "pro"
	PlanPremium Plan = "premium"
)

// Unlimited is the sentinel limit for plans without a daily cap.
const Unlimited = -1

type Limits struct {
	Chat   int
	Apply  int
	Resume int
	Upload int
}

var planLimits = map[Plan]Limits{
	PlanFree:    {Chat: 5, Apply: 0, Resume: 1, Upload: 2},
	PlanPro:     {Chat: 100, Apply: 10, Resume: 20, Upload: 50},
	PlanPremium: {Chat: Unlimited, Apply: Unlimited, Resume: Unlimited, Upload: Unlimited},
}

// LimitsFor returns the daily limits of a plan. Unknown plans fall back to free.
func LimitsFor(plan Plan) Limits {
	if l, ok := planLimits[plan]; ok {
		return l
	}
	return planLimits[PlanFree]
}

func (l Limits) For(res Resource) int {
	switch res {
	case ResourceChat:
		return l.Chat
	case ResourceApply:
		return l.Apply
	case ResourceResume:
		return l.Resume
	case ResourceUpload:
		return l.Upload
	}
	return 0
}

// Counters holds a user's usage for a single day. Absent rows are all zero.
type Counters struct {
	Chat   int
	Apply  int
	Resume int
	Upload int
}

func (c Counters) For(res Resource) int {
	switch res {
	case ResourceChat:
		return c.Chat
	case ResourceApply:
		return c.Apply
	case ResourceResume:
		return c.Resume
	case ResourceUpload:
		return c.Upload
	}
	return 0
}

// Store is the persistence boundary for plans and usage counters.
// IncrementUsage must be atomic (upsert-increment in one statement):
// the gate does not serialize concurrent callers.
type Store interface {
	GetPlan(ctx context.Context, userID string) (Plan, error)
	GetUsage(ctx context.Context, userID, day string) (Counters, error)
	IncrementUsage(ctx context.Context, userID, day string, res Resource) error
}

type Check struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
	Limit     int  `json:"limit"`
}

type ResourceUsage struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

type Summary struct {
	Plan  Plan                       `json:"plan"`
	Today map[Resource]ResourceUsage `json:"today"`
}

// Gate enforces per-user per-day resource limits.
type Gate struct {
	store Store
}

func NewGate(store Store) *Gate {
	return &Gate{store: store}
}

// today is evaluated at every read/write so counters roll over at UTC
// midnight without any timer.
func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// Check reports whether the user may consume one more unit of res today.
func (g *Gate) Check(ctx context.Context, userID string, res Resource) (Check, error) {
	plan, err := g.store.GetPlan(ctx, userID)
	if err != nil {
		return Check{}, fmt.Errorf("resolve plan: %w", err)
	}

	limit := LimitsFor(plan).For(res)
	if limit == Unlimited {
		return Check{Allowed: true, Remaining: Unlimited, Limit: Unlimited}, nil
	}

	counters, err := g.store.GetUsage(ctx, userID, today())
	if err != nil {
		return Check{}, fmt.Errorf("read usage: %w", err)
	}

	used := counters.For(res)
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Check{Allowed: used < limit, Remaining: remaining, Limit: limit}, nil
}

// Charge counts one unit of res against the user's daily counters.
func (g *Gate) Charge(ctx context.Context, userID string, res Resource) error {
	if err := g.store.IncrementUsage(ctx, userID, today(), res); err != nil {
		return fmt.Errorf("increment %s usage: %w", res, err)
	}
	return nil
}

// Summary returns the user's plan plus today's usage for every resource.
func (g *Gate) Summary(ctx context.Context, userID string) (Summary, error) {
	plan, err := g.store.GetPlan(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("resolve plan: %w", err)
	}
	limits := LimitsFor(plan)

	counters, err := g.store.GetUsage(ctx, userID, today())
	if err != nil {
		return Summary{}, fmt.Errorf("read usage: %w", err)
	}

	summary := Summary{Plan: plan, Today: map[Resource]ResourceUsage{}}
	for _, res := range []Resource{ResourceChat, ResourceApply, ResourceResume, ResourceUpload} {
		summary.Today[res] = ResourceUsage{Used: counters.For(res), Limit: limits.For(res)}
	}
	return summary, nil
}
