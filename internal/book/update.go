package book

// Update is the ingress record the core accepts, already deserialized
// by the wire receiver. size == 0 means "remove this price level" to
// the mirror, or "nothing left to match" is never sent — for the
// matching engine size > 0 is the order quantity to match.
type Update struct {
	Side      Side
	Price     float64
	Size      float64
	Timestamp uint64
}
