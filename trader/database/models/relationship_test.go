package models

import (
	"testing"
)

func TestStatusForPoints(t *testing.T) {
	tests := []struct {
		points int
		want   RelationshipStatus
	}{
		{0, StatusStranger},
		{49, StatusStranger},
		{50, StatusAcquaintance},
		{199, StatusAcquaintance},
		{200, StatusFriend},
		{499, StatusFriend},
		{500, StatusCloseFriend},
		{799, StatusCloseFriend},
		{800, StatusBestFriend},
		{MaxFriendshipPoints, StatusBestFriend},
	}

	for _, tt := range tests {
		if got := StatusForPoints(tt.points); got != tt.want {
			t.Errorf("StatusForPoints(%d) = %q, want %q", tt.points, got, tt.want)
		}
	}
}

func TestDiscountRate(t *testing.T) {
	tests := []struct {
		status RelationshipStatus
		want   float64
	}{
		{StatusStranger, 0},
		{StatusAcquaintance, 0},
		{StatusFriend, 0.03},
		{StatusCloseFriend, 0.05},
		{StatusBestFriend, 0.07},
	}

	for _, tt := range tests {
		if got := DiscountRate(tt.status); got != tt.want {
			t.Errorf("DiscountRate(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestFriendThresholdMatchesFriendTier(t *testing.T) {
	if StatusForPoints(FriendThreshold) != StatusFriend {
		t.Error("the friend threshold must land exactly on the friend tier")
	}
	if StatusForPoints(FriendThreshold-1) == StatusFriend {
		t.Error("one point below the threshold must not count as a friend")
	}
}

func TestStatTotal(t *testing.T) {
	cp := &CharacterProgress{Strength: 12, Intelligence: 15, Charisma: 10, Luck: 18}
	if got := cp.StatTotal(); got != 55 {
		t.Errorf("StatTotal() = %d, want 55", got)
	}
}
