// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewarder

import "github.com/vechain/multirewards/metrics"

var (
	metricDeposits      = metrics.LazyLoadCounter("deposits_total")
	metricWithdrawals   = metrics.LazyLoadCounter("withdrawals_total")
	metricRewardsPaid   = metrics.LazyLoadCounterVec("rewards_paid_total", []string{"token"})
	metricRewardsFunded = metrics.LazyLoadCounterVec("rewards_funded_total", []string{"token"})
	metricTotalStake    = metrics.LazyLoadGauge("total_stake_units")
	metricRewardTokens  = metrics.LazyLoadGauge("reward_tokens")
)
