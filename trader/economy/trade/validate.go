package trade

import (
	"fmt"
	"math"

	"github.com/seoultrader/server/trader/gameerr"
)

const (
	// MaxTradeDistanceKM gates every trade on physical proximity.
	// Inclusive: exactly 0.5 km still trades.
	MaxTradeDistanceKM = 0.5

	MinBuyQuantity = 1
	MaxBuyQuantity = 10

	buyFriendship  = 5
	sellFriendship = 3

	buyTrust  = 1
	sellTrust = 2
)

func validateQuantity(qty int) error {
	if qty < MinBuyQuantity || qty > MaxBuyQuantity {
		return gameerr.Precondition("quantity must be between %d and %d, got %d", MinBuyQuantity, MaxBuyQuantity, qty)
	}
	return nil
}

func validateLicense(playerLicense, required int) error {
	if playerLicense < required {
		return gameerr.Precondition("merchant requires license %d, player holds %d", required, playerLicense)
	}
	return nil
}

func validateCapacity(currentRows, adding, max int) error {
	if currentRows+adding > max {
		return gameerr.Precondition("inventory full: %d of %d slots used", currentRows, max)
	}
	return nil
}

func validateFunds(money, cost int64) error {
	if money < cost {
		return gameerr.Precondition("insufficient funds: need %d, have %d", cost, money)
	}
	return nil
}

func validateDistance(distanceKM float64) error {
	if distanceKM > MaxTradeDistanceKM {
		if math.IsInf(distanceKM, 1) {
			return gameerr.Precondition("player location unknown")
		}
		return gameerr.Precondition("merchant is %.2f km away, trading range is %.1f km", distanceKM, MaxTradeDistanceKM)
	}
	return nil
}

// Lock keys identify one logical trade attempt. Sell keys use the
// inventory row id as item identity so two different rows of the same
// item never contend.
func buyLockKey(playerID, merchantID int64, itemName string) string {
	return fmt.Sprintf("%d:%d:%s:buy", playerID, merchantID, itemName)
}

func sellLockKey(playerID, merchantID, inventoryItemID int64) string {
	return fmt.Sprintf("%d:%d:%d:sell", playerID, merchantID, inventoryItemID)
}

// Experience grants scale with trade value on top of a flat floor.
func buyExp(totalPrice int64) int64 {
	return totalPrice/1000 + 5
}

func sellExp(totalPrice int64) int64 {
	return totalPrice/800 + 8
}
