// Package metrics exposes Prometheus collectors for the coin ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LedgerMutations counts committed balance changes by reason code.
	LedgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "closetcoins_ledger_mutations_total",
		Help: "Committed ledger mutations by reason code.",
	}, []string{"reason"})

	// CoinsMoved tracks the absolute coin volume by direction.
	CoinsMoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "closetcoins_coins_moved_total",
		Help: "Total coins credited and debited.",
	}, []string{"direction"})

	// Redemptions counts committed reward redemptions.
	Redemptions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "closetcoins_redemptions_total",
		Help: "Committed reward redemptions.",
	})

	// AccountsCreated counts accounts provisioned at registration.
	AccountsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "closetcoins_accounts_created_total",
		Help: "Accounts provisioned by the registration bonus.",
	})
)
