package progression

import (
	"errors"

	"github.com/seoultrader/server/trader/database/models"
)

var (
	// ErrMaxLevel means the level catalog is exhausted.
	ErrMaxLevel = errors.New("maximum level reached")
	// ErrInsufficientExp means accumulated experience does not reach the
	// requested level.
	ErrInsufficientExp = errors.New("insufficient experience")
)

// resolveLevelUps walks the threshold catalog and returns the level the
// accumulated experience supports, with the point rewards earned along
// the way. A single grant can cross several thresholds at once.
// Thresholds must be sorted ascending by level.
func resolveLevelUps(currentLevel int, totalExp int64, thresholds []*models.LevelThreshold) (newLevel, statGain, skillGain int) {
	newLevel = currentLevel
	for _, th := range thresholds {
		if th.Level <= newLevel {
			continue
		}
		if totalExp < th.RequiredExp {
			break
		}
		newLevel = th.Level
		statGain += th.StatPoints
		skillGain += th.SkillPoints
	}
	return newLevel, statGain, skillGain
}

// AdvanceTo validates a level preview against accumulated experience.
// It returns the catalog row for target, ErrMaxLevel when target is
// beyond the catalog, and ErrInsufficientExp when totalExp does not
// reach it.
func AdvanceTo(thresholds []*models.LevelThreshold, totalExp int64, target int) (*models.LevelThreshold, error) {
	for _, th := range thresholds {
		if th.Level != target {
			continue
		}
		if totalExp < th.RequiredExp {
			return nil, ErrInsufficientExp
		}
		return th, nil
	}
	return nil, ErrMaxLevel
}

// nextThreshold returns the catalog row for the level after current, or
// ErrMaxLevel at the end of the catalog.
func nextThreshold(thresholds []*models.LevelThreshold, current int) (*models.LevelThreshold, error) {
	for _, th := range thresholds {
		if th.Level > current {
			return th, nil
		}
	}
	return nil, ErrMaxLevel
}
