package zones

import (
	"cmp"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// DefaultPrecedenceStride must exceed the number of rules any one zone carries,
// otherwise rules of a later zone can outrank rules of an earlier one.
const DefaultPrecedenceStride = 1000

type RankedRule struct {
	Zone      *Zone
	Rule      Rule
	ZoneIndex int
	RuleIndex int
	Score     int
}

// Analysis maps each vehicle type scope to its applicable rules, best first.
type Analysis map[VehicleTypeScope][]RankedRule

type Analyzer struct {
	Stride int
}

func NewAnalyzer(stride int) Analyzer {
	if stride <= 0 {
		stride = DefaultPrecedenceStride
	}
	return Analyzer{Stride: stride}
}

// Analyze ranks every rule of the overlapping zones. A rule's score is
// zoneIndex*Stride + ruleIndex where zoneIndex is the position in overlapping, so
// earlier zones win and within a zone earlier rules win. Universal rules are only
// registered under AllVehicleTypes.
func (a Analyzer) Analyze(overlapping []*Zone) Analysis {
	stride := a.Stride
	if stride <= 0 {
		stride = DefaultPrecedenceStride
	}

	analysis := Analysis{}

	for zoneIndex, zone := range overlapping {
		if len(zone.Rules) > stride {
			log.Warn().
				Str("zone", zone.ID).
				Int("rules", len(zone.Rules)).
				Int("stride", stride).
				Msg("Zone has more rules than the precedence stride")
		}

		for ruleIndex, rule := range zone.Rules {
			ranked := RankedRule{
				Zone:      zone,
				Rule:      rule,
				ZoneIndex: zoneIndex,
				RuleIndex: ruleIndex,
				Score:     zoneIndex*stride + ruleIndex,
			}

			for _, scope := range rule.Scopes() {
				analysis[scope] = append(analysis[scope], ranked)
			}
		}
	}

	for scope := range analysis {
		slices.SortStableFunc(analysis[scope], func(a, b RankedRule) int {
			return cmp.Compare(a.Score, b.Score)
		})
	}

	return analysis
}

// Winner returns the highest precedence rule registered under scope.
func (a Analysis) Winner(scope VehicleTypeScope) (RankedRule, bool) {
	rules := a[scope]
	if len(rules) == 0 {
		return RankedRule{}, false
	}
	return rules[0], true
}

// Effective resolves the rule that applies to a concrete vehicle type by comparing the
// best rule scoped to that type with the best universal rule. Only the score decides.
func (a Analysis) Effective(vehicleTypeID string) (RankedRule, bool) {
	universal, hasUniversal := a.Winner(AllVehicleTypes)
	if vehicleTypeID == "" {
		return universal, hasUniversal
	}

	specific, hasSpecific := a.Winner(SpecificVehicleType(vehicleTypeID))
	switch {
	case hasSpecific && hasUniversal:
		if universal.Score < specific.Score {
			return universal, true
		}
		return specific, true
	case hasSpecific:
		return specific, true
	default:
		return universal, hasUniversal
	}
}

// Scopes returns the analysed scopes with the all scope first and the rest by id.
func (a Analysis) Scopes() []VehicleTypeScope {
	scopes := make([]VehicleTypeScope, 0, len(a))
	for scope := range a {
		scopes = append(scopes, scope)
	}

	sort.Slice(scopes, func(i, j int) bool {
		if scopes[i].IsAll() != scopes[j].IsAll() {
			return scopes[i].IsAll()
		}
		return scopes[i].id < scopes[j].id
	})
	return scopes
}
