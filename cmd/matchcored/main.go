// Command matchcored runs the market-data ingestion and matching
// pipeline end to end: UDP receiver -> pipeline wiring -> order-book
// mirror and matching engine worker pools -> trade broadcaster and
// diagnostics gRPC API, wired the way the teacher's cmd/server/main.go
// wires its own service, WALs, and gRPC server.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/lokifeed/matchcore/api/grpcserver"
	"github.com/lokifeed/matchcore/api/pb"
	"github.com/lokifeed/matchcore/internal/book"
	"github.com/lokifeed/matchcore/internal/broadcaster"
	"github.com/lokifeed/matchcore/internal/config"
	"github.com/lokifeed/matchcore/internal/logging"
	"github.com/lokifeed/matchcore/internal/match"
	"github.com/lokifeed/matchcore/internal/memory"
	"github.com/lokifeed/matchcore/internal/metrics"
	"github.com/lokifeed/matchcore/internal/pipeline"
	"github.com/lokifeed/matchcore/internal/reclaim"
	"github.com/lokifeed/matchcore/internal/receiver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------- CLI ----------------

	if len(os.Args) != 2 {
		return fmt.Errorf("usage: matchcored <udp-port>")
	}
	port, err := strconv.Atoi(os.Args[1])
	if err != nil {
		return fmt.Errorf("matchcored: invalid port %q: %w", os.Args[1], err)
	}
	if err := config.ValidatePort(port); err != nil {
		return err
	}

	// ---------------- Config & logging ----------------

	cfg, err := config.Load(".", "/etc/matchcore")
	if err != nil {
		return fmt.Errorf("matchcored: loading config: %w", err)
	}

	log := logging.Must(false)
	defer log.Sync()

	// ---------------- Metrics ----------------

	reg := prometheus.NewRegistry()
	m := metrics.NewRegistry(reg)

	// ---------------- Core ----------------

	mirror := book.NewMirror(cfg.RetireRingSize)
	diag := grpcserver.NewServer(nil)

	bc, err := broadcaster.New(cfg.KafkaBrokers, cfg.TradesTopic, cfg.TicksTopic, log)
	if err != nil {
		log.Warn("matchcored: kafka broadcaster unavailable, trades will only reach gRPC subscribers", zap.Error(err))
		bc = nil
	}

	ackStore, err := broadcaster.OpenAckStore(cfg.PebbleDir)
	if err != nil {
		log.Warn("matchcored: ack store unavailable", zap.Error(err))
		ackStore = nil
	}
	if bc != nil && ackStore != nil {
		bc.SetAckStore(ackStore)
	}

	onTrade := func(t match.Trade) {
		m.TradesExecuted.Inc()
		diag.OnTrade(t)
		if bc != nil {
			bc.OnTrade(t)
		}
	}
	engine := match.New(nil, onTrade)
	diag.SetSource(engine)

	life := pipeline.NewLifecycle()
	wiring := pipeline.NewWiring(cfg.RingCapacityBook, cfg.RingCapacityMatch, life)

	bookPool := pipeline.NewWorkerPool(wiring.RBBook, cfg.BookWorkers, func(u book.Update) {
		before := mirror.CASRetries()
		mirror.Apply(u)
		m.UpdatesProcessed.Inc()
		if after := mirror.CASRetries(); after > before {
			m.MirrorCASRetries.Add(float64(after - before))
		}
	}, life)
	matchPool := pipeline.NewWorkerPool(wiring.RBMatch, cfg.MatchWorkers, func(u book.Update) {
		before := engine.CASRetries()
		engine.Match(u)
		m.UpdatesProcessed.Inc()
		if after := engine.CASRetries(); after > before {
			m.EngineCASRetries.Add(float64(after - before))
		}
	}, life)

	bookPool.Start()
	matchPool.Start()

	// ---------------- Reclaim job ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := memory.NewPool(func() *book.State { return book.Empty() })
	job := reclaim.New(2*time.Second, pool, []*memory.RetireRing{mirror.RetireRing()})
	go job.Run(ctx)

	// ---------------- UDP receiver ----------------

	udp, err := receiver.Listen(port, wiring, life, log, m)
	if err != nil {
		log.Error("matchcored: udp listen failed, no new updates will be received", zap.Error(err))
	} else {
		go udp.Run(ctx)
	}

	// ---------------- Broadcaster ----------------

	if bc != nil {
		go bc.Run(ctx, func() (bid, ask *float64) {
			if l, ok := mirror.BestBid(); ok {
				bid = &l.Price
			}
			if l, ok := mirror.BestAsk(); ok {
				ask = &l.Price
			}
			return bid, ask
		})
	}

	// ---------------- Diagnostics gRPC ----------------

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("matchcored: grpc listen: %w", err)
	}
	grpcSrv := grpc.NewServer()
	pb.RegisterDiagnosticsServer(grpcSrv, diag)
	go func() {
		if err := grpcSrv.Serve(lis); err != nil {
			log.Error("matchcored: grpc server exited", zap.Error(err))
		}
	}()

	// ---------------- Metrics HTTP ----------------

	metricsSrv := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("matchcored: metrics server exited", zap.Error(err))
		}
	}()

	log.Info("matchcored: running",
		zap.Int("udp_port", port),
		zap.String("grpc_addr", cfg.GRPCAddr),
		zap.String("metrics_addr", cfg.MetricsAddr),
	)

	// ---------------- Shutdown ----------------

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("matchcored: shutting down")
	life.Stop()
	cancel()
	grpcSrv.GracefulStop()
	_ = metricsSrv.Close()
	if udp != nil {
		_ = udp.Close()
	}
	if bc != nil {
		_ = bc.Close()
	}
	if ackStore != nil {
		_ = ackStore.Close()
	}
	bookPool.Wait()
	matchPool.Wait()

	return nil
}
