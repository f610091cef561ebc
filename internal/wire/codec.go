// Package wire implements the external UDP framing the core accepts
// deserialized updates from (spec §6). Each datagram begins with a
// 4-byte header {protocol: u16 = 0x6666, count: u16 in [1,20]} in
// network byte order, followed by exactly count packed 26-byte Update
// records (side, price, size, timestamp), all multi-byte fields in
// network byte order. Datagrams with wrong protocol, excess count, or
// a size mismatch are dropped here and never reach the core.
package wire

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/lokifeed/matchcore/internal/book"
)

const (
	// Protocol is the required 2-byte magic at the start of every
	// datagram.
	Protocol uint16 = 0x6666

	// MinCount and MaxCount bound the record count field.
	MinCount = 1
	MaxCount = 20

	headerSize = 4
	// recordSize: side(2) + price(8) + size(8) + timestamp(8) = 26.
	// Records are packed with no padding: price, size and timestamp
	// start at offsets 2, 10 and 18 of a record, so neither the 8-byte
	// fields nor the records after the first are 8-byte aligned.
	recordSize = 26
)

var (
	ErrShortDatagram  = errors.New("wire: datagram shorter than header")
	ErrWrongProtocol  = errors.New("wire: wrong protocol magic")
	ErrCountOutOfRange = errors.New("wire: record count out of range")
	ErrSizeMismatch   = errors.New("wire: datagram size does not match header count")
)

// Decode validates and parses one datagram into its Update records.
// It never partially-applies a malformed datagram: on any validation
// error it returns no records.
func Decode(datagram []byte) ([]book.Update, error) {
	if len(datagram) < headerSize {
		return nil, ErrShortDatagram
	}

	protocol := binary.BigEndian.Uint16(datagram[0:2])
	if protocol != Protocol {
		return nil, ErrWrongProtocol
	}

	count := binary.BigEndian.Uint16(datagram[2:4])
	if count < MinCount || count > MaxCount {
		return nil, ErrCountOutOfRange
	}

	want := headerSize + int(count)*recordSize
	if len(datagram) != want {
		return nil, ErrSizeMismatch
	}

	updates := make([]book.Update, count)
	off := headerSize
	for i := 0; i < int(count); i++ {
		rec := datagram[off : off+recordSize]

		side := binary.BigEndian.Uint16(rec[0:2])
		priceBits := binary.BigEndian.Uint64(rec[2:10])
		sizeBits := binary.BigEndian.Uint64(rec[10:18])
		ts := binary.BigEndian.Uint64(rec[18:26])

		updates[i] = book.Update{
			Side:      book.Side(side),
			Price:     math.Float64frombits(priceBits),
			Size:      math.Float64frombits(sizeBits),
			Timestamp: ts,
		}
		off += recordSize
	}

	return updates, nil
}

// Encode serializes updates into one datagram, for tests and for any
// loopback tooling. It returns ErrCountOutOfRange if len(updates) is
// outside [MinCount, MaxCount].
func Encode(updates []book.Update) ([]byte, error) {
	if len(updates) < MinCount || len(updates) > MaxCount {
		return nil, ErrCountOutOfRange
	}

	buf := make([]byte, headerSize+len(updates)*recordSize)
	binary.BigEndian.PutUint16(buf[0:2], Protocol)
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(updates)))

	off := headerSize
	for _, u := range updates {
		rec := buf[off : off+recordSize]
		binary.BigEndian.PutUint16(rec[0:2], uint16(u.Side))
		binary.BigEndian.PutUint64(rec[2:10], math.Float64bits(u.Price))
		binary.BigEndian.PutUint64(rec[10:18], math.Float64bits(u.Size))
		binary.BigEndian.PutUint64(rec[18:26], u.Timestamp)
		off += recordSize
	}
	return buf, nil
}
