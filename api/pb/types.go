// Package pb holds the diagnostics API's wire types. A .proto source
// normally drives protoc-gen-go/protoc-gen-go-grpc for this package;
// since this exercise never invokes the protobuf toolchain, these
// types and the ServiceDesc in grpc.go are hand-maintained in the
// shape protoc-gen-go would emit, and are marshaled with the JSON
// codec registered in grpc.go rather than the protobuf wire format
// (see DESIGN.md). google.golang.org/grpc's own status/codes plumbing
// still depends on google.golang.org/protobuf under the hood, so the
// dependency remains genuinely exercised.
package pb

// Side mirrors book.Side across the API boundary.
type Side int32

const (
	Side_ASK Side = 0
	Side_BID Side = 1
)

// Level is one aggregated price/size pair.
type Level struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// BestBidAskRequest has no fields; it queries the current top of book.
type BestBidAskRequest struct{}

// BestBidAskResponse carries the current best bid/ask, if present.
type BestBidAskResponse struct {
	Bid *Level `json:"bid,omitempty"`
	Ask *Level `json:"ask,omitempty"`
}

// DepthRequest asks for up to Levels rows per side.
type DepthRequest struct {
	Levels int32 `json:"levels"`
}

// DepthResponse carries depth snapshots for both sides, best first.
type DepthResponse struct {
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
}

// TradeEvent is one trade streamed to StreamTrades subscribers.
type TradeEvent struct {
	TakerSide Side    `json:"taker_side"`
	Price     float64 `json:"price"`
	Size      float64 `json:"size"`
	Timestamp int64   `json:"timestamp"`
}

// StreamTradesRequest has no fields; it subscribes to every trade.
type StreamTradesRequest struct{}
