// Package txcluster groups transactions by value and time of day with
// k-means.
package txcluster

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrNoTransactions is returned when clustering is asked to run on no input.
	ErrNoTransactions = errors.New("txcluster: no transactions")

	// ErrInvalidK is returned for a non-positive cluster count.
	ErrInvalidK = errors.New("txcluster: cluster count must be positive")
)

// timeBucket folds timestamps so that the time feature stays on a scale
// comparable across days.
const timeBucket = 100000

// Kind classifies a transaction by its call data.
type Kind int

const (
	Transfer Kind = iota
	ContractCall
)

func (k Kind) String() string {
	if k == ContractCall {
		return "contract-call"
	}
	return "transfer"
}

// Transaction is one record of the export. Numeric fields arrive as strings.
type Transaction struct {
	From      string
	To        string
	Value     float64
	Timestamp uint64
	Kind      Kind
}

type rawTransaction struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Value     string  `json:"value"`
	Timestamp string  `json:"timestamp"`
	Input     *string `json:"input"`
}

// ReadTransactions decodes a JSON array of transactions.
func ReadTransactions(r io.Reader) ([]Transaction, error) {
	var raws []rawTransaction
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	txs := make([]Transaction, len(raws))
	for i, raw := range raws {
		value, err := strconv.ParseFloat(raw.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("transaction %d value %q: %w", i, raw.Value, err)
		}
		ts, err := strconv.ParseUint(raw.Timestamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("transaction %d timestamp %q: %w", i, raw.Timestamp, err)
		}
		kind := Transfer
		if raw.Input != nil && *raw.Input != "0x" {
			kind = ContractCall
		}
		txs[i] = Transaction{From: raw.From, To: raw.To, Value: value, Timestamp: ts, Kind: kind}
	}
	return txs, nil
}

// Features maps a transaction to (log(value+1), timestamp mod 100000).
func Features(tx Transaction) []float64 {
	return []float64{math.Log(tx.Value + 1), float64(tx.Timestamp % timeBucket)}
}

// Cluster is one k-means centroid and its final membership.
type Cluster struct {
	Centroid []float64
	Members  []int
}

// Result is the outcome of a clustering run.
type Result struct {
	Clusters   []Cluster
	Assignment []int // cluster index per transaction
	Features   [][]float64
}

// KMeans clusters the transactions into k groups. Initial centroids are
// k features drawn uniformly with replacement using rng; every iteration
// assigns each point to its nearest centroid (first wins on ties) and then
// moves each centroid to the mean of its members. A centroid without
// members keeps its position.
func KMeans(txs []Transaction, k, iterations int, rng *rand.Rand) (*Result, error) {
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}

	features := make([][]float64, len(txs))
	for i, tx := range txs {
		features[i] = Features(tx)
	}

	centroids := make([][]float64, k)
	for i := range centroids {
		centroids[i] = append([]float64(nil), features[rng.IntN(len(features))]...)
	}

	assignment := make([]int, len(features))
	for iter := 0; iter < iterations; iter++ {
		assign(features, centroids, assignment)
		update(features, centroids, assignment)
	}
	if iterations <= 0 {
		assign(features, centroids, assignment)
	}

	res := &Result{
		Clusters:   make([]Cluster, k),
		Assignment: assignment,
		Features:   features,
	}
	for i := range res.Clusters {
		res.Clusters[i].Centroid = centroids[i]
	}
	for p, c := range assignment {
		res.Clusters[c].Members = append(res.Clusters[c].Members, p)
	}
	return res, nil
}

func assign(features, centroids [][]float64, assignment []int) {
	for p, f := range features {
		best, bestDist := 0, floats.Distance(f, centroids[0], 2)
		for c := 1; c < len(centroids); c++ {
			if d := floats.Distance(f, centroids[c], 2); d < bestDist {
				best, bestDist = c, d
			}
		}
		assignment[p] = best
	}
}

func update(features, centroids [][]float64, assignment []int) {
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, len(centroids[c]))
	}
	for p, c := range assignment {
		floats.Add(sums[c], features[p])
		counts[c]++
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		centroids[c] = sums[c]
	}
}

// WriteCentroids prints one line per centroid with four decimals.
func (r *Result) WriteCentroids(w io.Writer) error {
	for i, c := range r.Clusters {
		if _, err := fmt.Fprintf(w, "Centroid %d: (%.4f, %.4f) members=%d\n", i, c.Centroid[0], c.Centroid[1], len(c.Members)); err != nil {
			return err
		}
	}
	return nil
}
