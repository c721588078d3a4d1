// Package main runs the DeLott lottery engine.
//
// Without -demo it starts the scheduler loop against an in-memory ledger and
// serves Prometheus metrics; with -demo it plays one full round end to end and
// exits. The in-memory backends make the binary self-contained, so it doubles
// as a reference for wiring the engine against real token and randomness
// infrastructure.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/R3E-Network/delott/internal/config"
	"github.com/R3E-Network/delott/lottery"
	"github.com/R3E-Network/delott/pkg/logger"
	"github.com/R3E-Network/delott/pkg/metrics"
	"github.com/R3E-Network/delott/randomness"
	"github.com/R3E-Network/delott/token"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (defaults to config/delott.yaml)")
	metricsAddr := flag.String("metrics-addr", ":9464", "Prometheus metrics listen address")
	cronSpec := flag.String("advance-cron", "@every 1m", "Cron spec for the round advance loop")
	demo := flag.Bool("demo", false, "Play one simulated round and exit")
	flag.Parse()

	if v := os.Getenv("DELOTT_CONFIG"); v != "" {
		*configPath = v
	}
	if v := os.Getenv("DELOTT_METRICS_ADDR"); v != "" {
		*metricsAddr = v
	}

	var cfg config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFromPath(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg = config.LoadOrDefault()
	}

	log := logger.New(logger.Config{Service: "delott", Level: cfg.LogLevel})

	stats := metrics.New()
	store := lottery.NewMemoryStore()
	ledger := token.NewMemoryLedger("CAKE")
	source := randomness.NewSecureSource()

	svc := lottery.New(cfg, "owner", store, ledger, source, log)
	svc.WithMetrics(stats)

	if err := svc.SetRoles("owner", "operator", "treasury", "injector"); err != nil {
		log.WithError(err).Error("assign roles")
		os.Exit(1)
	}

	if *demo {
		if err := runDemo(context.Background(), svc, ledger, source, log); err != nil {
			log.WithError(err).Error("demo round failed")
			os.Exit(1)
		}
		return
	}

	sched := lottery.NewScheduler(svc, "operator", log)
	if _, err := sched.ScheduleAdvance(*cronSpec, true); err != nil {
		log.WithError(err).Error("schedule advance loop")
		os.Exit(1)
	}
	sched.Start()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(stats.Gatherer(), promhttp.HandlerOpts{}))
	server := &http.Server{Addr: *metricsAddr, Handler: mux}

	go func() {
		log.WithField("addr", *metricsAddr).Info("metrics server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server stopped")
		}
	}()

	log.WithField("advance_cron", *cronSpec).Info("delott engine started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	<-sched.Stop().Done()
}

// runDemo plays one round: three players buy tickets, the round closes, the
// randomness request is fulfilled, the draw runs and winners claim.
func runDemo(ctx context.Context, svc *lottery.Service, ledger *token.MemoryLedger, source *randomness.SecureSource, log *logger.Logger) error {
	players := []string{"alice", "bob", "carol"}
	for _, p := range players {
		ledger.Mint(p, 1_000_000_000)
		ledger.Approve(p, "delott-pool", 1_000_000_000)
	}

	round, err := svc.StartRound(ctx, "operator", lottery.StartParams{
		EndTime:          time.Now().Add(4 * time.Hour),
		TicketPrice:      5_000_000,
		DiscountDivisor:  2000,
		RewardsBreakdown: [lottery.Brackets]int64{250, 375, 625, 1250, 2500, 5000},
		TreasuryFeeBps:   2000,
	})
	if err != nil {
		return fmt.Errorf("start round: %w", err)
	}

	bought := map[string][]int64{}
	for i, p := range players {
		numbers := make([]int32, 5)
		for j := range numbers {
			numbers[j] = int32(1_000_000 + i*100_000 + j*11_111)
		}
		ids, err := svc.BuyTickets(ctx, p, round.ID, numbers)
		if err != nil {
			return fmt.Errorf("buy tickets for %s: %w", p, err)
		}
		bought[p] = ids
	}

	// Closing is time-gated, so the demo service runs on a clock that has
	// already passed the round's end.
	svc.WithClock(func() time.Time { return round.EndTime.Add(time.Second) })

	if _, err := svc.CloseRound(ctx, "operator", round.ID); err != nil {
		return fmt.Errorf("close round: %w", err)
	}
	if err := source.Fulfill(); err != nil {
		return fmt.Errorf("fulfill randomness: %w", err)
	}

	drawn, err := svc.DrawFinalNumberAndMakeClaimable(ctx, "operator", round.ID, true)
	if err != nil {
		return fmt.Errorf("draw round: %w", err)
	}
	log.WithField("final_number", drawn.FinalNumber).
		WithField("winners_bracket_0", drawn.CountWinnersPerBracket[0]).
		Info("round drawn")

	for _, p := range players {
		for _, id := range bought[p] {
			for bracket := lottery.Brackets - 1; bracket >= 0; bracket-- {
				if svc.ViewRewardsForTicket(ctx, round.ID, id, bracket) == 0 {
					continue
				}
				paid, err := svc.ClaimTickets(ctx, p, round.ID, []int64{id}, []int{bracket})
				if err != nil {
					return fmt.Errorf("claim ticket %d for %s: %w", id, p, err)
				}
				log.WithField("player", p).
					WithField("ticket_id", id).
					WithField("bracket", bracket).
					WithField("amount", paid).
					Info("prize claimed")
				break
			}
		}
	}

	log.Info("demo round complete")
	return nil
}
