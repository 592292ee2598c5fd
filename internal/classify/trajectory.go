package classify

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vaxpanel/internal/model"
)

// AssignTrajectories computes the country-level ever-flags from the regime
// history and broadcasts the 4-way trajectory to every row. The trajectory
// is a pure function of a country's full regime history; any country that
// ends up without one is a hard error, not a diagnostic.
func AssignTrajectories(rows []*model.Row) (map[string]int, error) {
	type history struct {
		everClassic   bool
		everSupported bool
		everMIC       bool
	}
	byCountry := map[string]*history{}
	for _, row := range rows {
		h, ok := byCountry[row.CountryCode]
		if !ok {
			h = &history{}
			byCountry[row.CountryCode] = h
		}
		if row.Regime == model.RegimeClassic {
			h.everClassic = true
		}
		if row.Regime == model.RegimeMIC {
			h.everMIC = true
		}
		if row.GaviSupported != model.GaviSupportedNo {
			h.everSupported = true
		}
	}

	trajectories := map[string]string{}
	for code, h := range byCountry {
		switch {
		case h.everClassic && h.everMIC:
			trajectories[code] = model.TrajectoryGraduated
		case h.everClassic:
			trajectories[code] = model.TrajectoryClassicAlways
		case h.everSupported:
			trajectories[code] = model.TrajectoryMICEntry
		default:
			trajectories[code] = model.TrajectoryNeverAlways
		}
	}

	counts := map[string]int{}
	for _, row := range rows {
		trajectory, ok := trajectories[row.CountryCode]
		if !ok || trajectory == "" {
			return nil, eris.Errorf("trajectory: no trajectory for country %s", row.CountryCode)
		}
		h := byCountry[row.CountryCode]
		row.EverClassicGavi = boolFlag(h.everClassic)
		row.EverSupported = boolFlag(h.everSupported)
		row.Trajectory = trajectory
		row.TrajectoryCode = model.TrajectoryCodeOf(trajectory)
		if row.TrajectoryCode == 0 {
			return nil, eris.Errorf("trajectory: unknown label %q for country %s", trajectory, row.CountryCode)
		}
		counts[trajectory]++
	}

	var labels []string
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		zap.L().Info("classify: trajectory",
			zap.String("trajectory", label), zap.Int("rows", counts[label]))
	}
	return counts, nil
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}
