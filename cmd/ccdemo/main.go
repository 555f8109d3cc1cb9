// Command ccdemo drives the congestion control core against a synthetic
// send/ack/loss trace and exposes its live state over Prometheus, in the
// style of the teacher's own example binaries.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/quic-go/qcc/internal/congestion"
	"github.com/quic-go/qcc/internal/protocol"
	"github.com/quic-go/qcc/internal/utils"
	"github.com/quic-go/qcc/logging"
)

func main() {
	var (
		addr       = flag.String("addr", ":2112", "address to serve /metrics on")
		algoFlag   = flag.String("algorithm", "newreno", "congestion control algorithm: newreno or bbr")
		packets    = flag.Int("packets", 2000, "number of packets to simulate")
		lossRate   = flag.Float64("loss-rate", 0.02, "fraction of packets randomly dropped")
		packetSize = flag.Int("packet-size", 1200, "simulated packet size in bytes")
		verbose    = flag.Bool("verbose", false, "enable per-event congestion logging")
	)
	flag.Parse()

	kind := protocol.CongestionControlNewReno
	algorithmID := 0.0
	if *algoFlag == "bbr" {
		kind = protocol.CongestionControlBBR
		algorithmID = 1.0
	}

	metrics := newCCMetrics()
	rttStats := &utils.RTTStats{}
	ctrl := congestion.NewController(kind, rttStats, utils.DefaultLogger)
	connLogger := logging.NewLogger("ccdemo", *verbose)

	srv := &http.Server{Addr: *addr, Handler: promhttp.Handler()}
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		go func() {
			<-ctx.Done()
			_ = srv.Close()
		}()
		log.Printf("serving /metrics on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		defer srv.Close()
		defer log.Println("simulation complete")
		return runSimulation(ctx, ctrl, connLogger, metrics, algorithmID, *packets, *packetSize, *lossRate)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}

// runSimulation feeds a paced trace of sends, acks, and random losses
// through ctrl, printing and exporting a snapshot every 100 packets. Send
// and ack timestamps come from the real monotonic clock (congestion.Clock),
// with a scaled-down sleep standing in for network RTT so a multi-thousand
// packet run finishes in a few seconds.
func runSimulation(ctx context.Context, ctrl *congestion.Controller, connLogger *logging.Logger, metrics *ccMetrics, algorithmID float64, packets, packetSize int, lossRate float64) error {
	limiter := rate.NewLimiter(rate.Limit(500), 50) // paces packet sends, independent of cwnd
	rng := rand.New(rand.NewSource(1))
	clock := congestion.DefaultClock{}

	const simulatedRTT = 5 * time.Millisecond

	for i := 0; i < packets; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		pn := protocol.PacketNumber(i)
		sentTime := clock.Now()
		ctrl.OnPacketSent(pn, protocol.ByteCount(packetSize), sentTime)
		metrics.PacketsSent.Inc()

		time.Sleep(simulatedRTT)
		ackTime := clock.Now()
		if rng.Float64() < lossRate {
			ctrl.OnPacketLost(pn, protocol.ByteCount(packetSize), sentTime, ackTime)
			metrics.PacketsLost.Inc()
			cwnd, _ := ctrl.Stats()["congestion_window"].(protocol.ByteCount)
			connLogger.LogPacketLoss(protocol.ByteCount(packetSize), cwnd)
		} else {
			ctrl.OnPacketAcked(pn, protocol.ByteCount(packetSize), sentTime, ackTime)
		}

		if i%100 == 0 {
			ctrl.CollectPeriodicStats(ackTime)
			stats := ctrl.Stats()
			metrics.update(stats, algorithmID)
			fmt.Printf("packet=%d cwnd=%v bytes_in_flight=%v state=%v\n",
				i, stats["congestion_window"], stats["bytes_in_flight"], stats["state"])
		}
	}

	ctrl.CollectPeriodicStats(clock.Now())
	metrics.update(ctrl.Stats(), algorithmID)
	return nil
}
