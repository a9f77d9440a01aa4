// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import "math/big"

// Constants of the reward distribution protocol.
const (
	// DefaultRewardsDuration length of a reward funding epoch, in seconds.
	DefaultRewardsDuration uint64 = 7 * 24 * 3600

	// TokenDecimals decimal places of base and reward token amounts.
	TokenDecimals = 18
)

// RewardScale is the fixed-point scale of reward-per-token accumulators.
var RewardScale = big.NewInt(1e18)
