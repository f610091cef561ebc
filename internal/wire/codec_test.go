package wire

import (
	"testing"

	"github.com/lokifeed/matchcore/internal/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []book.Update{
		{Side: book.Bid, Price: 101.5, Size: 10, Timestamp: 42},
		{Side: book.Ask, Price: 102.25, Size: 5, Timestamp: 43},
	}

	datagram, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(datagram)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeRejectsWrongProtocol(t *testing.T) {
	datagram, err := Encode([]book.Update{{Side: book.Bid, Price: 1, Size: 1}})
	require.NoError(t, err)
	datagram[0] = 0x00
	datagram[1] = 0x01

	_, err = Decode(datagram)
	assert.ErrorIs(t, err, ErrWrongProtocol)
}

func TestDecodeRejectsOutOfRangeCount(t *testing.T) {
	_, err := Encode(nil)
	assert.ErrorIs(t, err, ErrCountOutOfRange)

	tooMany := make([]book.Update, MaxCount+1)
	_, err = Encode(tooMany)
	assert.ErrorIs(t, err, ErrCountOutOfRange)

	datagram, err := Encode([]book.Update{{Side: book.Bid, Price: 1, Size: 1}})
	require.NoError(t, err)

	datagram[2], datagram[3] = 0x00, 0x00
	_, err = Decode(datagram)
	assert.ErrorIs(t, err, ErrCountOutOfRange)

	datagram[2], datagram[3] = 0x00, MaxCount+1
	_, err = Decode(datagram)
	assert.ErrorIs(t, err, ErrCountOutOfRange)
}

func TestDecodeRejectsSizeMismatch(t *testing.T) {
	datagram, err := Encode([]book.Update{{Side: book.Bid, Price: 1, Size: 1}})
	require.NoError(t, err)

	_, err = Decode(datagram[:len(datagram)-1])
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = Decode(append(datagram, 0x00))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestDecodeRejectsShortDatagram(t *testing.T) {
	_, err := Decode([]byte{0x66})
	assert.ErrorIs(t, err, ErrShortDatagram)
}
