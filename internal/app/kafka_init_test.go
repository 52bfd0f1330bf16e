package app

import (
	"context"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/basket/internal/metrics"
	"github.com/vladislavdragonenkov/basket/internal/storage/memory"
)

func newTestDependencies(t *testing.T, cfg Config) *Dependencies {
	t.Helper()
	m := metrics.NewCartMetricsWithRegisterer(prometheus.NewRegistry())
	return NewDependencies(cfg, memory.NewKeyValueStore(), m, log.WithField("test", t.Name()))
}

func TestInitKafkaRelay_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	relay, err := initKafkaRelay(cfg, newTestDependencies(t, cfg), log.WithField("test", "kafka"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if relay != nil {
		t.Fatalf("expected nil relay without brokers, got %+v", relay)
	}

	// Методы безопасны на nil.
	if err := relay.start(context.Background()); err != nil {
		t.Fatalf("start on nil relay: %v", err)
	}
	relay.close(log.WithField("test", "kafka"))
}

func TestInitKafkaRelay_UnreachableBrokers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KafkaBrokers = []string{"127.0.0.1:1"}

	relay, err := initKafkaRelay(cfg, newTestDependencies(t, cfg), log.WithField("test", "kafka"))
	if err == nil {
		relay.close(log.WithField("test", "kafka"))
		t.Skip("kafka unexpectedly reachable on 127.0.0.1:1")
	}
	if relay != nil {
		t.Fatal("expected nil relay on error")
	}
}

func TestKafkaRuntime_Check(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	reachable := &kafkaRuntime{brokers: []string{"127.0.0.1:1", lis.Addr().String()}}
	if err := reachable.check(context.Background()); err != nil {
		t.Fatalf("expected reachable broker, got %v", err)
	}

	unreachable := &kafkaRuntime{brokers: []string{"127.0.0.1:1"}}
	if err := unreachable.check(context.Background()); err == nil {
		t.Fatal("expected error for unreachable brokers")
	}
}
