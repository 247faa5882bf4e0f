package sigbench

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marsian83/ethereum-contract-recommendations/internal/timeutil"
)

var epoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestPublished(t *testing.T) {
	rows := Published()
	require.Len(t, rows, 6)

	assert.Equal(t, Result{Algorithm: "ECDSA (secp256k1)", Sign: 141, Verify: 125, Source: SourcePublished}, rows[0])
	assert.Equal(t, "Schnorr (BIP-340)", rows[5].Algorithm)
	assert.Equal(t, 212.0, rows[2].Verify)
}

func TestMerge(t *testing.T) {
	measured := []Result{
		{Algorithm: "Ed25519", Sign: 50000, Verify: 20000, Source: SourceMeasured},
		{Algorithm: "Schnorr (secp256k1, DCRv0)", Sign: 9000, Verify: 4000, Source: SourceMeasured},
	}

	got := Merge(Published(), measured)

	require.Len(t, got, 7)
	assert.Equal(t, measured[0], got[2])
	assert.Equal(t, SourcePublished, got[3].Source, "Ed448 keeps its published row")
	assert.Equal(t, measured[1], got[6])

	// The input slice is not modified.
	assert.Equal(t, 75.0, Published()[2].Sign)
}

func TestSigners_RoundTrip(t *testing.T) {
	signers, err := DefaultSigners()
	require.NoError(t, err)
	require.Len(t, signers, 5)

	msg := []byte("transfer 1 ether")
	other := []byte("transfer 2 ether")
	for _, s := range signers {
		t.Run(s.Name(), func(t *testing.T) {
			sig, err := s.Sign(msg)
			require.NoError(t, err)
			assert.True(t, s.Verify(msg, sig), "own signature should verify")
			assert.False(t, s.Verify(other, sig), "signature must not verify a different message")
			assert.False(t, s.Verify(msg, nil), "empty signature must not verify")
		})
	}
}

func TestMeasure_SteppingClock(t *testing.T) {
	s, err := NewEd25519Signer()
	require.NoError(t, err)

	clock := timeutil.NewSteppingClock(epoch, 100*time.Millisecond)
	r, err := Measure(context.Background(), s, []byte("m"), time.Second, clock)
	require.NoError(t, err)

	assert.Equal(t, "Ed25519", r.Algorithm)
	assert.Equal(t, SourceMeasured, r.Source)
	assert.InDelta(t, 10.0, r.Sign, 1e-9)
	assert.InDelta(t, 10.0, r.Verify, 1e-9)
}

func TestMeasureAll(t *testing.T) {
	signers, err := DefaultSigners()
	require.NoError(t, err)

	clock := timeutil.NewSteppingClock(epoch, 250*time.Millisecond)
	results, err := MeasureAll(context.Background(), signers, time.Second, clock)
	require.NoError(t, err)
	require.Len(t, results, len(signers))

	for i, r := range results {
		assert.Equal(t, signers[i].Name(), r.Algorithm)
		assert.Greater(t, r.Sign, 0.0)
		assert.Greater(t, r.Verify, 0.0)
	}
}

func TestMeasure_Cancelled(t *testing.T) {
	s, err := NewEd25519Signer()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Measure(ctx, s, []byte("m"), time.Second, timeutil.NewMockClock(epoch))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMeasure_RejectsEmptyWindow(t *testing.T) {
	s, err := NewEd25519Signer()
	require.NoError(t, err)

	clock := timeutil.NewSteppingClock(epoch, time.Second)
	for _, window := range []time.Duration{0, -time.Second} {
		_, err := Measure(context.Background(), s, []byte("m"), window, clock)
		assert.ErrorIs(t, err, ErrBadWindow)
	}
}

func TestRate_FrozenClockNeverReportsInfinity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	r, err := rate(ctx, time.Nanosecond, timeutil.NewMockClock(epoch), func() error {
		calls++
		if calls == 5 {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, r)
	assert.Equal(t, 5, calls)
}

type brokenSigner struct{}

func (brokenSigner) Name() string                { return "broken" }
func (brokenSigner) Sign([]byte) ([]byte, error) { return []byte{1}, nil }
func (brokenSigner) Verify([]byte, []byte) bool  { return false }

type failingSigner struct{ brokenSigner }

func (failingSigner) Sign([]byte) ([]byte, error) { return nil, errors.New("no key") }

func TestMeasure_SignerErrors(t *testing.T) {
	clock := timeutil.NewSteppingClock(epoch, time.Second)

	_, err := Measure(context.Background(), brokenSigner{}, []byte("m"), time.Second, clock)
	assert.ErrorIs(t, err, ErrVerifyFailed)

	_, err = Measure(context.Background(), failingSigner{}, []byte("m"), time.Second, clock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no key")
}
