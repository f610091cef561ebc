// Package broadcaster republishes committed trades and best-bid/ask
// ticks to downstream consumers. It wires both Kafka clients the
// teacher carries: github.com/IBM/sarama for durable, required-acks-
// all trade publication (adapted from jobs/broadcaster, which used
// the same client for durable order acknowledgement), and
// segmentio/kafka-go for lighter best-bid/ask tick publication
// (adapted from infra/kafka).
package broadcaster

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/lokifeed/matchcore/internal/book"
	"github.com/lokifeed/matchcore/internal/match"
)

// TradeEvent is the JSON payload published to the trades topic.
type TradeEvent struct {
	Seq       uint64  `json:"seq"`
	V         int     `json:"v"`
	TakerSide string  `json:"taker_side"`
	Price     float64 `json:"price"`
	Size      float64 `json:"size"`
	Timestamp int64   `json:"timestamp"`
}

// TickEvent is the JSON payload published to the ticks topic.
type TickEvent struct {
	V       int      `json:"v"`
	BestBid *float64 `json:"best_bid,omitempty"`
	BestAsk *float64 `json:"best_ask,omitempty"`
	AtUnix  int64    `json:"at_unix"`
}

// Broadcaster owns both Kafka clients and a bounded queue of trades
// awaiting publication.
type Broadcaster struct {
	trades      sarama.SyncProducer
	ticks       *kafkago.Writer
	tradesTopic string
	ticksTopic  string
	log         *zap.Logger
	acks        *AckStore

	seq   atomic.Uint64
	queue chan TradeEvent
}

// New constructs a Broadcaster. brokers and topics come from
// internal/config.Config.
func New(brokers []string, tradesTopic, ticksTopic string, log *zap.Logger) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		trades: producer,
		ticks: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        ticksTopic,
			RequiredAcks: kafkago.RequireOne,
			Async:        true,
			BatchTimeout: 10 * time.Millisecond,
		},
		tradesTopic: tradesTopic,
		ticksTopic:  ticksTopic,
		log:         log,
		queue:       make(chan TradeEvent, 4096),
	}, nil
}

// SetAckStore attaches a durable ack-state store. Optional: with none
// attached, publication still happens, just without a crash-recovery
// record of what got through.
func (b *Broadcaster) SetAckStore(store *AckStore) {
	b.acks = store
}

// OnTrade is a match.Callback: it enqueues the trade for asynchronous
// publication so the matching engine's hot path never blocks on
// network I/O (spec §5: no blocking calls besides the three named
// suspension points; Kafka I/O must happen off that path).
func (b *Broadcaster) OnTrade(t match.Trade) {
	seq := b.seq.Add(1)
	ev := TradeEvent{
		Seq:       seq,
		V:         1,
		TakerSide: sideString(t.TakerSide),
		Price:     t.Price,
		Size:      t.Size,
		Timestamp: time.Now().UnixNano(),
	}
	select {
	case b.queue <- ev:
	default:
		b.log.Warn("broadcaster: trade queue full, dropping event")
		if b.acks != nil {
			if err := b.acks.MarkFailed(seq); err != nil {
				b.log.Error("broadcaster: mark failed", zap.Error(err))
			}
		}
	}
}

// Run drains the trade queue and periodically ticks best-bid/ask
// until ctx is canceled, in the teacher's ticker-loop style
// (jobs/broadcaster.Broadcaster.Start).
func (b *Broadcaster) Run(ctx context.Context, snapshot func() (bestBid, bestAsk *float64)) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.queue:
			b.publishTrade(ev)
		case <-ticker.C:
			bid, ask := snapshot()
			b.publishTick(ctx, TickEvent{V: 1, BestBid: bid, BestAsk: ask, AtUnix: time.Now().Unix()})
		}
	}
}

func (b *Broadcaster) publishTrade(ev TradeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.Error("broadcaster: marshal trade event", zap.Error(err))
		return
	}
	if b.acks != nil {
		if aerr := b.acks.MarkPublished(ev.Seq); aerr != nil {
			b.log.Error("broadcaster: mark published", zap.Error(aerr))
		}
	}
	_, _, err = b.trades.SendMessage(&sarama.ProducerMessage{
		Topic: b.tradesTopic,
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		b.log.Error("broadcaster: publish trade", zap.Error(err))
		if b.acks != nil {
			if aerr := b.acks.MarkFailed(ev.Seq); aerr != nil {
				b.log.Error("broadcaster: mark failed", zap.Error(aerr))
			}
		}
		return
	}
	if b.acks != nil {
		if aerr := b.acks.MarkAcked(ev.Seq); aerr != nil {
			b.log.Error("broadcaster: mark acked", zap.Error(aerr))
		}
	}
}

func (b *Broadcaster) publishTick(ctx context.Context, ev TickEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.Error("broadcaster: marshal tick event", zap.Error(err))
		return
	}
	if err := b.ticks.WriteMessages(ctx, kafkago.Message{Value: payload}); err != nil {
		b.log.Error("broadcaster: publish tick", zap.Error(err))
	}
}

// Close releases both Kafka clients.
func (b *Broadcaster) Close() error {
	if err := b.trades.Close(); err != nil {
		return err
	}
	return b.ticks.Close()
}

func sideString(s book.Side) string {
	if s == book.Bid {
		return "BID"
	}
	return "ASK"
}
