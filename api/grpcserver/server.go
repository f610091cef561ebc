// Package grpcserver adapts the matching engine's read path to the
// diagnostics gRPC API (component I), generalized from the teacher's
// api/grpcserver.Server, which adapted an order-placement service the
// same way. This service is read-only: GetBestBidAsk, GetDepth, and
// StreamTrades. Placing or canceling an order isn't exposed here —
// the wire feed is the core's only write path (spec §1).
package grpcserver

import (
	"context"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lokifeed/matchcore/api/pb"
	"github.com/lokifeed/matchcore/internal/book"
	"github.com/lokifeed/matchcore/internal/match"
)

// BookSource is the read surface the server needs from the matching
// engine; match.Engine satisfies it directly.
type BookSource interface {
	BestBid() (book.Level, bool)
	BestAsk() (book.Level, bool)
	Snapshot() *book.State
}

// Server implements pb.DiagnosticsServer over a live BookSource and a
// fan-out of the engine's trade stream.
type Server struct {
	pb.UnimplementedDiagnosticsServer

	src BookSource

	mu   sync.Mutex
	subs map[chan *pb.TradeEvent]struct{}
}

// NewServer constructs a diagnostics server reading from src. Call
// OnTrade as the engine's match.Callback (or chain it alongside
// another callback) to feed StreamTrades subscribers.
func NewServer(src BookSource) *Server {
	return &Server{src: src, subs: make(map[chan *pb.TradeEvent]struct{})}
}

// SetSource rebinds the server's read source. Useful at startup when
// the engine's onTrade callback must close over the server that
// reads from that same engine once construction finishes.
func (s *Server) SetSource(src BookSource) {
	s.src = src
}

// OnTrade fans t out to every active StreamTrades subscriber. It
// never blocks: when a subscriber's buffer is full, this event is
// skipped for that subscriber (which stays subscribed) rather than
// stalling the caller, which the teacher's own jobs/broadcaster
// treats the same way for its own outbound queue.
func (s *Server) OnTrade(t match.Trade) {
	ev := &pb.TradeEvent{
		TakerSide: fromSide(t.TakerSide),
		Price:     t.Price,
		Size:      t.Size,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Server) GetBestBidAsk(ctx context.Context, _ *pb.BestBidAskRequest) (*pb.BestBidAskResponse, error) {
	resp := &pb.BestBidAskResponse{}
	if bid, ok := s.src.BestBid(); ok {
		resp.Bid = &pb.Level{Price: bid.Price, Size: bid.Size}
	}
	if ask, ok := s.src.BestAsk(); ok {
		resp.Ask = &pb.Level{Price: ask.Price, Size: ask.Size}
	}
	return resp, nil
}

func (s *Server) GetDepth(ctx context.Context, req *pb.DepthRequest) (*pb.DepthResponse, error) {
	if req.Levels <= 0 {
		return nil, status.Error(codes.InvalidArgument, "levels must be positive")
	}
	snap := s.src.Snapshot()
	resp := &pb.DepthResponse{
		Bids: toPBLevels(snap.Levels(book.Bid, int(req.Levels))),
		Asks: toPBLevels(snap.Levels(book.Ask, int(req.Levels))),
	}
	return resp, nil
}

func (s *Server) StreamTrades(_ *pb.StreamTradesRequest, stream pb.Diagnostics_StreamTradesServer) error {
	ch := make(chan *pb.TradeEvent, 256)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}()

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-ch:
			if err := stream.Send(ev); err != nil {
				return err
			}
		}
	}
}

func toPBLevels(levels []book.Level) []pb.Level {
	out := make([]pb.Level, len(levels))
	for i, l := range levels {
		out[i] = pb.Level{Price: l.Price, Size: l.Size}
	}
	return out
}

func fromSide(s book.Side) pb.Side {
	if s == book.Bid {
		return pb.Side_BID
	}
	return pb.Side_ASK
}
