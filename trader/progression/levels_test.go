package progression

import (
	"errors"
	"testing"

	"github.com/seoultrader/server/trader/database/models"
)

// testThresholds mirrors the seeded catalog shape: cumulative required
// exp 100, 300, 600, 1000 for levels 2 through 5.
func testThresholds() []*models.LevelThreshold {
	return []*models.LevelThreshold{
		{Level: 2, RequiredExp: 100, StatPoints: 2, SkillPoints: 1},
		{Level: 3, RequiredExp: 300, StatPoints: 2, SkillPoints: 1},
		{Level: 4, RequiredExp: 600, StatPoints: 2, SkillPoints: 1},
		{Level: 5, RequiredExp: 1000, StatPoints: 2, SkillPoints: 1},
	}
}

func TestResolveLevelUps(t *testing.T) {
	tests := []struct {
		name         string
		currentLevel int
		totalExp     int64
		wantLevel    int
		wantStat     int
		wantSkill    int
	}{
		{"no change below first threshold", 1, 99, 1, 0, 0},
		{"exact threshold levels up", 1, 100, 2, 2, 1},
		{"single level", 1, 250, 2, 2, 1},
		{"multi level jump", 1, 650, 4, 6, 3},
		{"full catalog", 1, 5000, 5, 8, 4},
		{"already past earlier thresholds", 3, 650, 4, 2, 1},
		{"at max level", 5, 5000, 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, stat, skill := resolveLevelUps(tt.currentLevel, tt.totalExp, testThresholds())
			if level != tt.wantLevel {
				t.Errorf("level = %d, want %d", level, tt.wantLevel)
			}
			if stat != tt.wantStat {
				t.Errorf("stat gain = %d, want %d", stat, tt.wantStat)
			}
			if skill != tt.wantSkill {
				t.Errorf("skill gain = %d, want %d", skill, tt.wantSkill)
			}
		})
	}
}

func TestResolveLevelUpsMultiLevelGrant(t *testing.T) {
	// One 260-exp grant from a fresh level 1 crosses two thresholds when
	// the catalog steps are 100 and 250.
	thresholds := []*models.LevelThreshold{
		{Level: 2, RequiredExp: 100, StatPoints: 2, SkillPoints: 1},
		{Level: 3, RequiredExp: 250, StatPoints: 2, SkillPoints: 1},
	}

	level, stat, skill := resolveLevelUps(1, 260, thresholds)
	if level != 3 {
		t.Errorf("level = %d, want 3", level)
	}
	if stat != 4 || skill != 2 {
		t.Errorf("gains = %d stat / %d skill, want 4 / 2", stat, skill)
	}
}

func TestAdvanceTo(t *testing.T) {
	tests := []struct {
		name     string
		totalExp int64
		target   int
		wantErr  error
	}{
		{"reachable", 300, 3, nil},
		{"not enough exp", 299, 3, ErrInsufficientExp},
		{"beyond catalog", 99999, 6, ErrMaxLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := AdvanceTo(testThresholds(), tt.totalExp, tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && th.Level != tt.target {
				t.Errorf("threshold level = %d, want %d", th.Level, tt.target)
			}
		})
	}
}

func TestNextThresholdHelper(t *testing.T) {
	th, err := nextThreshold(testThresholds(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if th.Level != 2 {
		t.Errorf("next level = %d, want 2", th.Level)
	}

	if _, err := nextThreshold(testThresholds(), 5); !errors.Is(err, ErrMaxLevel) {
		t.Errorf("err = %v, want ErrMaxLevel", err)
	}
}
