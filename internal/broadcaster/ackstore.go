package broadcaster

import (
	"encoding/binary"
	"errors"

	"github.com/cockroachdb/pebble"
)

// AckState tracks whether a published trade's Kafka publication has
// been acknowledged, adapted from the teacher's exit-WAL
// (infra/wal/exit/wal.go), which used Pebble the same way to persist
// per-order acknowledgement state. Here the durable key is the
// trade's broadcast sequence number rather than an order ID.
type AckState uint8

const (
	StatePublished AckState = iota
	StateAcked
	StateFailed
)

// AckStore is a durable Pebble-backed record of outbox state, so a
// crash between "sent to Kafka" and "broker acked" can be reconciled
// on restart instead of silently losing or double-publishing a trade.
type AckStore struct {
	db *pebble.DB
}

// OpenAckStore opens (creating if absent) the ack-state store at dir.
func OpenAckStore(dir string) (*AckStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &AckStore{db: db}, nil
}

func (s *AckStore) Close() error {
	return s.db.Close()
}

// MarkPublished records that seq was sent to the broker.
func (s *AckStore) MarkPublished(seq uint64) error {
	return s.set(seq, StatePublished)
}

// MarkAcked records that seq was acknowledged by the broker.
func (s *AckStore) MarkAcked(seq uint64) error {
	return s.set(seq, StateAcked)
}

// MarkFailed records that publishing seq failed after retries.
func (s *AckStore) MarkFailed(seq uint64) error {
	return s.set(seq, StateFailed)
}

func (s *AckStore) set(seq uint64, state AckState) error {
	return s.db.Set(seqKey(seq), []byte{byte(state)}, pebble.Sync)
}

// State returns the recorded state for seq, or (0, false) if unknown.
func (s *AckStore) State(seq uint64) (AckState, bool, error) {
	v, closer, err := s.db.Get(seqKey(seq))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	defer closer.Close()
	if len(v) != 1 {
		return 0, false, errors.New("broadcaster: corrupt ack record")
	}
	return AckState(v[0]), true, nil
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
