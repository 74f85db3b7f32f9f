// Package tracking serves the public order tracking view.
package tracking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"fleetfusion/internal/fleet"
	"fleetfusion/internal/routing"
)

// OrderStatus is the customer facing delivery state.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderInTransit OrderStatus = "in-transit"
	OrderDelayed   OrderStatus = "delayed"
	OrderDelivered OrderStatus = "delivered"
)

// Label is the display form of s, e.g. "in transit".
func (s OrderStatus) Label() string { return strings.ReplaceAll(string(s), "-", " ") }

// TruckStatus maps an order state onto the map marker state.
func (s OrderStatus) TruckStatus() fleet.Status {
	switch s {
	case OrderDelayed:
		return fleet.StatusDelayed
	case OrderDelivered:
		return fleet.StatusResolved
	default:
		return fleet.StatusOnTime
	}
}

// Milestone is one step of the delivery timeline. A nil At means pending.
type Milestone struct {
	Status    string     `json:"status"`
	At        *time.Time `json:"timestamp,omitempty"`
	Completed bool       `json:"completed"`
}

// Order is a tracked shipment.
type Order struct {
	OrderID           string           `json:"orderId"`
	TruckID           string           `json:"truckId"`
	Status            OrderStatus      `json:"status"`
	CurrentLocation   string           `json:"currentLocation"`
	Destination       string           `json:"destination"`
	DestinationCoords fleet.Coordinate `json:"destinationCoords"`
	EstimatedDelivery time.Time        `json:"estimatedDelivery"`
	Timeline          []Milestone      `json:"timeline"`
	Truck             fleet.Truck      `json:"truck"`
}

// ErrNotFound is returned for unknown order ids.
var ErrNotFound = errors.New("order not found")

// Catalog resolves order ids. Timestamps are relative to the lookup time.
type Catalog struct {
	mu     sync.RWMutex
	orders map[string]func(now time.Time) Order
	now    func() time.Time
}

// Pune and Mumbai are the endpoints of the demo shipment.
var (
	Pune   = fleet.Coordinate{73.8567, 18.5204}
	Mumbai = fleet.Coordinate{72.8777, 19.0760}
)

// NewCatalog returns a catalog holding the demo order ORD-402.
func NewCatalog() *Catalog {
	c := &Catalog{orders: make(map[string]func(time.Time) Order), now: time.Now}
	c.Add("ORD-402", demoOrder)
	return c
}

// Add registers an order builder under id.
func (c *Catalog) Add(id string, build func(now time.Time) Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders[strings.ToUpper(id)] = build
}

// Lookup returns the order for id, case-insensitively.
func (c *Catalog) Lookup(id string) (Order, error) {
	c.mu.RLock()
	build, ok := c.orders[strings.ToUpper(strings.TrimSpace(id))]
	c.mu.RUnlock()
	if !ok {
		return Order{}, ErrNotFound
	}
	return build(c.now()), nil
}

func demoOrder(now time.Time) Order {
	at := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}
	return Order{
		OrderID:           "ORD-402",
		TruckID:           "TRK-402",
		Status:            OrderInTransit,
		CurrentLocation:   "Pune, Maharashtra",
		Destination:       "Mumbai, Maharashtra",
		DestinationCoords: Mumbai,
		EstimatedDelivery: now.Add(3 * time.Hour),
		Timeline: []Milestone{
			{Status: "Order Placed", At: at(-2 * time.Hour), Completed: true},
			{Status: "Picked Up", At: at(-time.Hour), Completed: true},
			{Status: "In Transit", At: at(0), Completed: true},
			{Status: "Out for Delivery"},
			{Status: "Delivered"},
		},
		Truck: fleet.Truck{
			ID:          "TRK-402",
			Driver:      "Priya Sharma",
			Position:    Pune,
			Destination: Mumbai,
			Velocity:    68,
			CargoValue:  125000,
			Status:      fleet.StatusOnTime,
			Route:       []fleet.Coordinate{Pune, {73.5, 18.7}, {73.2, 18.9}, {73.0, 19.0}, Mumbai},
		},
	}
}

// RouteSource tells where the displayed path came from.
type RouteSource string

const (
	RouteRoad      RouteSource = "road"
	RouteWaypoints RouteSource = "waypoints"
)

// View is an order plus the path to draw for it.
type View struct {
	Order       Order              `json:"order"`
	Path        []fleet.Coordinate `json:"path"`
	RouteSource RouteSource        `json:"routeSource"`
	ETAHours    float64            `json:"etaHours"`
}

// Tracker combines the catalog with road geometry.
type Tracker struct {
	catalog *Catalog
	routes  routing.Fetcher
}

// NewTracker creates a tracker. A nil fetcher always uses stored waypoints.
func NewTracker(catalog *Catalog, routes routing.Fetcher) *Tracker {
	return &Tracker{catalog: catalog, routes: routes}
}

// Track looks up id and resolves its path, falling back to the stored
// waypoints when no road route is available.
func (t *Tracker) Track(ctx context.Context, id string) (View, error) {
	o, err := t.catalog.Lookup(id)
	if err != nil {
		return View{}, err
	}
	o.Truck.Status = o.Status.TruckStatus()
	path, road := routing.FetchOrFallback(ctx, t.routes, o.Truck.Position, o.DestinationCoords, o.Truck.Route)
	src := RouteWaypoints
	if road {
		src = RouteRoad
	}
	return View{Order: o, Path: path, RouteSource: src, ETAHours: fleet.ETAHours(o.Truck.Velocity)}, nil
}
