// Package analytics holds the analytics snapshot and its export formats.
package analytics

import "time"

// Summary is the headline metric block.
type Summary struct {
	TotalDeliveries   int    `json:"totalDeliveries"`
	DeliveryGrowth    string `json:"deliveryGrowth"`
	ActiveTrucks      int    `json:"activeTrucks"`
	TruckChange       string `json:"truckChange"`
	TotalSavings      int    `json:"totalSavings"`
	SavingsGrowth     string `json:"savingsGrowth"`
	IncidentsResolved int    `json:"incidentsResolved"`
	IncidentChange    string `json:"incidentChange"`
}

// MonthlySavings is one month of savings against avoided penalties.
type MonthlySavings struct {
	Month     string `json:"month"`
	Savings   int    `json:"savings"`
	Penalties int    `json:"penalties"`
}

// CostSavings aggregates savings over the reporting window.
type CostSavings struct {
	TotalSavings     int              `json:"totalSavings"`
	PenaltiesAvoided int              `json:"penaltiesAvoided"`
	MonthlyData      []MonthlySavings `json:"monthlyData"`
}

// StatusDistribution counts trucks per display status.
type StatusDistribution struct {
	OnTime    int `json:"onTime"`
	InTransit int `json:"inTransit"`
	Delayed   int `json:"delayed"`
	Critical  int `json:"critical"`
}

// FleetStatus describes the fleet at export time.
type FleetStatus struct {
	TotalTrucks        int                `json:"totalTrucks"`
	OnTimeRate         string             `json:"onTimeRate"`
	StatusDistribution StatusDistribution `json:"statusDistribution"`
}

// RouteVolume is a route ranked by deliveries.
type RouteVolume struct {
	Route      string `json:"route"`
	Deliveries int    `json:"deliveries"`
}

// Performance holds operational averages.
type Performance struct {
	AvgDeliveryTime string  `json:"avgDeliveryTime"`
	FuelEfficiency  string  `json:"fuelEfficiency"`
	CustomerRating  float64 `json:"customerRating"`
}

// CarbonImpact summarises emissions avoided.
type CarbonImpact struct {
	CO2Saved        string `json:"co2Saved"`
	CreditsEarned   string `json:"creditsEarned"`
	TreesEquivalent int    `json:"treesEquivalent"`
}

// ArbitrageRecord is a resolved opportunity shown in the history table.
type ArbitrageRecord struct {
	ID               string `json:"id"`
	Truck            string `json:"truck"`
	Type             string `json:"type"`
	ProjectedPenalty int    `json:"projectedPenalty"`
	Solution         string `json:"solution"`
	SolutionCost     int    `json:"solutionCost"`
	NetSavings       int    `json:"netSavings"`
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
}

// Snapshot is everything the analytics page shows and exports.
type Snapshot struct {
	ExportDate         time.Time         `json:"exportDate"`
	Summary            Summary           `json:"summary"`
	CostSavings        CostSavings       `json:"costSavings"`
	FleetStatus        FleetStatus       `json:"fleetStatus"`
	TopRoutes          []RouteVolume     `json:"topRoutes"`
	PerformanceMetrics Performance       `json:"performanceMetrics"`
	CarbonImpact       CarbonImpact      `json:"carbonImpact"`
	RecentArbitrage    []ArbitrageRecord `json:"recentArbitrage"`
}

// Default returns the reporting snapshot stamped at now.
func Default(now time.Time) Snapshot {
	return Snapshot{
		ExportDate: now.UTC(),
		Summary: Summary{
			TotalDeliveries: 1247, DeliveryGrowth: "+12.5%",
			ActiveTrucks: 42, TruckChange: "+3",
			TotalSavings: 47500, SavingsGrowth: "+$8,200",
			IncidentsResolved: 28, IncidentChange: "-15%",
		},
		CostSavings: CostSavings{
			TotalSavings:     30200,
			PenaltiesAvoided: 18100,
			MonthlyData: []MonthlySavings{
				{"Jan", 2500, 4200},
				{"Feb", 3100, 3800},
				{"Mar", 4200, 3500},
				{"Apr", 5100, 3200},
				{"May", 6800, 2100},
				{"Jun", 8500, 1300},
			},
		},
		FleetStatus: FleetStatus{
			TotalTrucks: 42,
			OnTimeRate:  "95.2%",
			StatusDistribution: StatusDistribution{
				OnTime: 35, InTransit: 4, Delayed: 2, Critical: 1,
			},
		},
		TopRoutes: []RouteVolume{
			{"Pune → Mumbai", 342},
			{"Delhi → Jaipur", 287},
			{"Bangalore → Chennai", 234},
		},
		PerformanceMetrics: Performance{AvgDeliveryTime: "3.2h", FuelEfficiency: "8.2 km/L", CustomerRating: 4.8},
		CarbonImpact:       CarbonImpact{CO2Saved: "2.4T", CreditsEarned: "$450", TreesEquivalent: 48},
		RecentArbitrage: []ArbitrageRecord{
			{
				ID: "ARB-001", Truck: "TRK-402", Type: "Route Optimization",
				ProjectedPenalty: 5200, Solution: "Alternative Route via NH48",
				SolutionCost: 800, NetSavings: 4400, Status: "Executed", Timestamp: "2 hours ago",
			},
			{
				ID: "ARB-002", Truck: "TRK-301", Type: "Warehouse Switch",
				ProjectedPenalty: 3800, Solution: "Redirect to nearby distribution center",
				SolutionCost: 500, NetSavings: 3300, Status: "Executed", Timestamp: "5 hours ago",
			},
		},
	}
}
