package zones

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"
)

type Stats struct {
	Total           int            `json:"total"`
	NoRide          int            `json:"no_ride"`
	SpeedLimited    int            `json:"speed_limited"`
	ParkingRequired int            `json:"parking_required"`
	Custom          map[string]int `json:"custom,omitempty"`
}

type ruleEnv struct {
	RideStartAllowed   bool     `expr:"ride_start_allowed"`
	RideEndAllowed     bool     `expr:"ride_end_allowed"`
	RideThroughAllowed bool     `expr:"ride_through_allowed"`
	StationParking     bool     `expr:"station_parking"`
	HasSpeedLimit      bool     `expr:"has_speed_limit"`
	MaximumSpeedKph    float64  `expr:"maximum_speed_kph"`
	VehicleTypeIDs     []string `expr:"vehicle_type_ids"`
}

func newRuleEnv(rule Rule) ruleEnv {
	env := ruleEnv{
		RideStartAllowed:   rule.RideStartAllowed,
		RideEndAllowed:     rule.RideEndAllowed,
		RideThroughAllowed: rule.RideThroughAllowed,
		StationParking:     rule.ParkingRequired(),
		VehicleTypeIDs:     rule.VehicleTypeIDs,
	}
	if rule.MaximumSpeedKph != nil {
		env.HasSpeedLimit = true
		env.MaximumSpeedKph = *rule.MaximumSpeedKph
	}
	return env
}

type category struct {
	name    string
	program *vm.Program
}

// StatsCalculator classifies zones by their first rule. Custom categories are
// boolean expressions evaluated against that rule.
type StatsCalculator struct {
	categories []category
}

func NewStatsCalculator(custom map[string]string) (*StatsCalculator, error) {
	names := make([]string, 0, len(custom))
	for name := range custom {
		names = append(names, name)
	}
	sort.Strings(names)

	calculator := &StatsCalculator{}
	for _, name := range names {
		program, err := expr.Compile(custom[name], expr.Env(ruleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compiling category %s: %w", name, err)
		}
		calculator.categories = append(calculator.categories, category{name: name, program: program})
	}

	return calculator, nil
}

func (c *StatsCalculator) Calculate(zones []*Zone) Stats {
	stats := Stats{Total: len(zones)}
	if c != nil && len(c.categories) > 0 {
		stats.Custom = map[string]int{}
		for _, cat := range c.categories {
			stats.Custom[cat.name] = 0
		}
	}

	for _, zone := range zones {
		rule, ok := zone.FirstRule()
		if !ok {
			continue
		}

		if !rule.RideStartAllowed && !rule.RideThroughAllowed {
			stats.NoRide++
		}
		if rule.MaximumSpeedKph != nil {
			stats.SpeedLimited++
		}
		if rule.ParkingRequired() {
			stats.ParkingRequired++
		}

		if c == nil {
			continue
		}
		env := newRuleEnv(rule)
		for _, cat := range c.categories {
			result, err := expr.Run(cat.program, env)
			if err != nil {
				log.Warn().Err(err).Str("category", cat.name).Str("zone", zone.ID).Msg("Failed to evaluate zone category")
				continue
			}
			if matched, _ := result.(bool); matched {
				stats.Custom[cat.name]++
			}
		}
	}

	return stats
}

func CalculateStats(zones []*Zone) Stats {
	var calculator *StatsCalculator
	return calculator.Calculate(zones)
}
