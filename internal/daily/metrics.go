// Package daily keeps the landing page metrics, regenerated once per
// calendar day.
package daily

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// DayLayout is the key format of a calendar day.
const DayLayout = "2006-01-02"

// Metrics are the cosmetic figures shown on the landing page for one day.
type Metrics struct {
	Date          string `json:"date"`
	ActiveTrucks  int    `json:"activeTrucks"`
	CargoValue    int    `json:"cargoValue"`
	OnTimeRate    int    `json:"onTimeRate"`
	PenaltyCost   int    `json:"penaltyCost"`
	SolutionCost  int    `json:"solutionCost"`
	CarbonCredits int    `json:"carbonCredits"`
	NetSavings    int    `json:"netSavings"`
}

// Fallback is shown when the store cannot be read.
func Fallback(day string) Metrics {
	return withNet(Metrics{
		Date: day, ActiveTrucks: 4, CargoValue: 450000, OnTimeRate: 98,
		PenaltyCost: 2500, SolutionCost: 800, CarbonCredits: 450,
	})
}

func withNet(m Metrics) Metrics {
	m.NetSavings = m.PenaltyCost - m.SolutionCost
	return m
}

// Generate draws a fresh set of metrics for day.
func Generate(r *rand.Rand, day string) Metrics {
	return withNet(Metrics{
		Date:          day,
		ActiveTrucks:  r.IntN(3) + 3,
		CargoValue:    r.IntN(100000) + 400000,
		OnTimeRate:    r.IntN(3) + 96,
		PenaltyCost:   r.IntN(1000) + 2000,
		SolutionCost:  r.IntN(400) + 600,
		CarbonCredits: r.IntN(100) + 400,
	})
}

// ErrNotFound is returned by stores for days never written.
var ErrNotFound = errors.New("daily metrics not found")

// Store persists metrics by day. Create must keep an existing entry and
// return it, so concurrent first reads agree on one value.
type Store interface {
	Get(ctx context.Context, day string) (Metrics, error)
	Create(ctx context.Context, m Metrics) (Metrics, error)
}

// Provider serves today's metrics, generating them on the first read of a
// new day.
type Provider struct {
	store Store
	loc   *time.Location
	now   func() time.Time
	log   *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewProvider creates a provider over store. Days are cut in loc.
func NewProvider(store Store, loc *time.Location, log *slog.Logger) *Provider {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	seed := uint64(time.Now().UnixNano())
	return &Provider{
		store: store,
		loc:   loc,
		now:   time.Now,
		log:   log,
		rng:   rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

// Day returns the key of the calendar day containing t.
func (p *Provider) Day(t time.Time) string {
	return t.In(p.loc).Format(DayLayout)
}

// Today returns the stored metrics for the current day, creating them on
// first access. Store failures degrade to Fallback.
func (p *Provider) Today(ctx context.Context) Metrics {
	day := p.Day(p.now())
	m, err := p.store.Get(ctx, day)
	if err == nil {
		return withNet(m)
	}
	if !errors.Is(err, ErrNotFound) {
		p.log.Error("daily metrics read failed", "day", day, "err", err)
		return Fallback(day)
	}

	p.mu.Lock()
	fresh := Generate(p.rng, day)
	p.mu.Unlock()
	m, err = p.store.Create(ctx, fresh)
	if err != nil {
		p.log.Error("daily metrics write failed", "day", day, "err", err)
		return Fallback(day)
	}
	p.log.Info("daily metrics generated", "day", day)
	return withNet(m)
}
