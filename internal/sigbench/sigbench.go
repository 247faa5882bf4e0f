// Package sigbench compares signing and verification throughput of the
// signature schemes used by public chains.
package sigbench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marsian83/ethereum-contract-recommendations/internal/monitoring"
	"github.com/marsian83/ethereum-contract-recommendations/internal/timeutil"
)

// Result sources.
const (
	SourcePublished = "published"
	SourceMeasured  = "measured"
)

var (
	// ErrVerifyFailed is returned when a signer rejects its own signature.
	ErrVerifyFailed = errors.New("sigbench: signature did not verify")
	ErrBadWindow    = errors.New("sigbench: measurement window must be positive")
)

// Result is the throughput of one algorithm in operations per second.
type Result struct {
	Algorithm string  `json:"algorithm"`
	Sign      float64 `json:"sign_ops_per_sec"`
	Verify    float64 `json:"verify_ops_per_sec"`
	Source    string  `json:"source"`
}

// Published returns the reference figures charted in the comparison.
func Published() []Result {
	return []Result{
		{Algorithm: "ECDSA (secp256k1)", Sign: 141, Verify: 125, Source: SourcePublished},
		{Algorithm: "ECDSA (secp256r1)", Sign: 103, Verify: 62, Source: SourcePublished},
		{Algorithm: "Ed25519", Sign: 75, Verify: 212, Source: SourcePublished},
		{Algorithm: "Ed448", Sign: 71, Verify: 40, Source: SourcePublished},
		{Algorithm: "ECDSA (secp384r1)", Sign: 62, Verify: 35, Source: SourcePublished},
		{Algorithm: "Schnorr (BIP-340)", Sign: 109, Verify: 72, Source: SourcePublished},
	}
}

// Merge overlays measured results on the published rows with the same
// algorithm name. Measured algorithms without a published row are appended.
func Merge(published, measured []Result) []Result {
	out := make([]Result, len(published))
	copy(out, published)

	index := make(map[string]int, len(out))
	for i, r := range out {
		index[r.Algorithm] = i
	}
	for _, m := range measured {
		if i, ok := index[m.Algorithm]; ok {
			out[i] = m
			continue
		}
		index[m.Algorithm] = len(out)
		out = append(out, m)
	}
	return out
}

// Measure runs sign and verify loops for window each and reports the
// achieved rate. The clock decides when a window has elapsed.
func Measure(ctx context.Context, s Signer, msg []byte, window time.Duration, clock timeutil.Clock) (Result, error) {
	if window <= 0 {
		return Result{}, fmt.Errorf("%w: %v", ErrBadWindow, window)
	}
	sig, err := s.Sign(msg)
	if err != nil {
		return Result{}, fmt.Errorf("%s sign: %w", s.Name(), err)
	}
	if !s.Verify(msg, sig) {
		return Result{}, fmt.Errorf("%s: %w", s.Name(), ErrVerifyFailed)
	}

	signRate, err := rate(ctx, window, clock, func() error {
		_, err := s.Sign(msg)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s sign: %w", s.Name(), err)
	}

	verifyRate, err := rate(ctx, window, clock, func() error {
		if !s.Verify(msg, sig) {
			return ErrVerifyFailed
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s verify: %w", s.Name(), err)
	}

	return Result{Algorithm: s.Name(), Sign: signRate, Verify: verifyRate, Source: SourceMeasured}, nil
}

func rate(ctx context.Context, window time.Duration, clock timeutil.Clock, op func() error) (float64, error) {
	start := clock.Now()
	ops := 0
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := op(); err != nil {
			return 0, err
		}
		ops++
		// A clock that has not advanced would give an infinite rate.
		if elapsed := clock.Since(start); elapsed > 0 && elapsed >= window {
			return float64(ops) / elapsed.Seconds(), nil
		}
	}
}

// MeasureAll measures every signer in order and stops at the first error.
func MeasureAll(ctx context.Context, signers []Signer, window time.Duration, clock timeutil.Clock) ([]Result, error) {
	msg := []byte("chainviz signature benchmark payload")
	results := make([]Result, 0, len(signers))
	for _, s := range signers {
		r, err := Measure(ctx, s, msg, window, clock)
		if err != nil {
			return results, err
		}
		monitoring.Logf("%s: %.0f sign/s, %.0f verify/s", r.Algorithm, r.Sign, r.Verify)
		results = append(results, r)
	}
	return results, nil
}
