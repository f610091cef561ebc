// Package receiver implements the UDP network driver: the external
// collaborator spec §1 scopes out of the core, included here so the
// repository is a complete, runnable program. It polls a single
// non-blocking socket, validates and decodes each datagram via
// internal/wire, and hands good updates to a pipeline.Wiring.
package receiver

import (
	"context"
	"errors"
	"net"
	"runtime"
	"time"

	"github.com/lokifeed/matchcore/internal/metrics"
	"github.com/lokifeed/matchcore/internal/pipeline"
	"github.com/lokifeed/matchcore/internal/wire"
	"go.uber.org/zap"
)

// maxDatagramSize comfortably covers the wire format's largest frame:
// a 4-byte header plus 20 26-byte records.
const maxDatagramSize = 4 + wire.MaxCount*26

// UDP polls one non-blocking socket on Run's goroutine, dispatching
// parsed updates into wiring until the lifecycle stops.
type UDP struct {
	conn    *net.UDPConn
	wiring  *pipeline.Wiring
	life    *pipeline.Lifecycle
	log     *zap.Logger
	metrics *metrics.Registry
}

// Listen binds a non-blocking UDP socket on port. Per spec §7, a
// fatal bind error is reported to the caller; the rest of the
// pipeline is expected to keep running even if this never succeeds.
func Listen(port int, wiring *pipeline.Wiring, life *pipeline.Lifecycle, log *zap.Logger, reg *metrics.Registry) (*UDP, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, err
	}
	return &UDP{conn: conn, wiring: wiring, life: life, log: log, metrics: reg}, nil
}

// Run polls the socket until the lifecycle stops or ctx is canceled,
// whichever comes first. It never blocks indefinitely: the socket's
// read deadline is refreshed every iteration so the run-flag is
// polled promptly (spec §5: "Sockets are polled in non-blocking
// mode").
func (u *UDP) Run(ctx context.Context) {
	buf := make([]byte, maxDatagramSize)
	for u.life.Running() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_ = u.conn.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
		n, _, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			u.log.Warn("udp receiver: read error", zap.Error(err))
			continue
		}

		updates, err := wire.Decode(buf[:n])
		if err != nil {
			if u.metrics != nil {
				u.metrics.PacketsDropped.WithLabelValues(dropReason(err)).Inc()
			}
			continue
		}

		for _, update := range updates {
			if !u.wiring.Dispatch(update) {
				runtime.Gosched()
			}
		}
	}
}

// Close releases the socket.
func (u *UDP) Close() error {
	return u.conn.Close()
}

func dropReason(err error) string {
	switch err {
	case wire.ErrWrongProtocol:
		return "wrong_protocol"
	case wire.ErrCountOutOfRange:
		return "bad_count"
	case wire.ErrSizeMismatch:
		return "size_mismatch"
	case wire.ErrShortDatagram:
		return "short_datagram"
	default:
		return "unknown"
	}
}
