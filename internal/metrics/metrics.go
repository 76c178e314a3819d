// Package metrics exposes the engine's Prometheus counters and gauges.
// Collectors are package-level vars registered at init, the same layout
// the pack's rate-limit middleware uses for its own counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchd_commands_total",
			Help: "Total commands handled by the engine, by kind.",
		},
		[]string{"kind"},
	)

	CommandQueueDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "matchd_command_queue_dropped_total",
			Help: "Commands dropped because the engine's command queue was full.",
		},
	)

	RoomsQueued = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "matchd_rooms_queued",
			Help: "Rooms currently waiting in the matchmaking queue, by mode.",
		},
		[]string{"mode"},
	)

	GroupsForming = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "matchd_groups_forming",
			Help: "Ready groups currently waiting to be paired into a match, by mode.",
		},
		[]string{"mode"},
	)

	GamesInPrestart = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchd_games_prestart",
			Help: "Games currently waiting for all players to acknowledge prestart.",
		},
	)

	GamesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchd_games_active",
			Help: "Games currently in their lifecycle controller pipeline or gaming.",
		},
	)

	MatchesFormed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchd_matches_formed_total",
			Help: "Matches formed by the matcher sweep, by mode.",
		},
		[]string{"mode"},
	)

	PrestartCancelled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchd_prestart_cancelled_total",
			Help: "Pending matches cancelled because a player declined prestart, by mode.",
		},
		[]string{"mode"},
	)

	SettlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchd_settlements_total",
			Help: "Completed rating settlements, by mode.",
		},
		[]string{"mode"},
	)

	PersistenceQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchd_persistence_queue_depth",
			Help: "Pending records waiting to be flushed to MySQL.",
		},
	)

	BusPublishFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchd_bus_publish_failures_total",
			Help: "Outbound bus publishes that returned an error.",
		},
		[]string{"topic_kind"},
	)
)

func init() {
	prometheus.MustRegister(
		CommandsTotal,
		CommandQueueDropped,
		RoomsQueued,
		GroupsForming,
		GamesInPrestart,
		GamesActive,
		MatchesFormed,
		PrestartCancelled,
		SettlementsTotal,
		PersistenceQueueDepth,
		BusPublishFailures,
	)
}
