// Package rungen generates deterministic synthetic solver run results in the
// results file layout.
package rungen

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/domain/types"
)

// Faces is the number of board faces; a board of w x h has Faces*w*h cells.
const Faces = 6

// DefaultMineDensity is the share of cells holding a mine.
const DefaultMineDensity = 0.15

// Board is a face size.
type Board struct {
	W, H int
}

// Dims renders the board id used in the dims column.
func (b Board) Dims() string { return fmt.Sprintf("%dx%dx%d", b.H, b.W, Faces) }

// Cells returns the total cell count.
func (b Board) Cells() int { return Faces * b.W * b.H }

// Mines returns the mine count for density, at least one on multi-cell boards.
func (b Board) Mines(density float64) int {
	m := int(float64(b.Cells()) * density)
	if m == 0 && b.Cells() > 1 {
		m = 1
	}
	return m
}

// Default matrix members.
var (
	DefaultAlgorithms = []string{"greedy", "exact_solver", "global_sat", "partitioned_sat", "scip_solver"}
	DefaultObjectives = []string{"MinDistance", "MinRotation", "MaxInformation"}
	DefaultBoards     = []Board{{3, 3}, {5, 5}, {8, 8}, {10, 10}}
)

// Config describes the run matrix.
type Config struct {
	Algorithms  []string
	Objectives  []string
	Boards      []Board
	Seeds       int
	MineDensity float64
	// RandSeed drives the outcome generator.
	RandSeed uint64
}

// DefaultConfig returns the full matrix with 30 seeds.
func DefaultConfig() Config {
	return Config{
		Algorithms:  DefaultAlgorithms,
		Objectives:  DefaultObjectives,
		Boards:      DefaultBoards,
		Seeds:       30,
		MineDensity: DefaultMineDensity,
		RandSeed:    1,
	}
}

// Run is one generated result row.
type Run struct {
	Algorithm  string
	Objective  string
	Dims       string
	Seed       int
	Win        bool
	Clicks     int
	TimeMs     int
	Guesses    int
	Completion float64
}

// profile is an algorithm's synthetic strength and cost.
type profile struct {
	skill float64
	costM float64
}

var profiles = map[string]profile{
	"greedy":          {skill: 0.55, costM: 0.02},
	"exact_solver":    {skill: 0.85, costM: 0.9},
	"global_sat":      {skill: 0.8, costM: 0.5},
	"partitioned_sat": {skill: 0.78, costM: 0.25},
	"scip_solver":     {skill: 0.82, costM: 1.4},
}

var objectiveBias = map[string]float64{
	"MinDistance":    0,
	"MinRotation":    -0.03,
	"MaxInformation": 0.04,
}

// Generate produces the matrix board-major, then seed, algorithm and
// objective. The same config always yields the same runs.
func Generate(cfg Config) []Run {
	density := cfg.MineDensity
	if density <= 0 {
		density = DefaultMineDensity
	}
	rng := rand.New(rand.NewPCG(cfg.RandSeed, cfg.RandSeed^0x9e3779b97f4a7c15))

	runs := make([]Run, 0, len(cfg.Boards)*cfg.Seeds*len(cfg.Algorithms)*len(cfg.Objectives))
	for _, b := range cfg.Boards {
		mines := b.Mines(density)
		safe := b.Cells() - mines
		// per-seed board hardness shared by every algorithm
		hardness := make([]float64, cfg.Seeds)
		for i := range hardness {
			hardness[i] = rng.Float64() * 0.3
		}
		for seed := 0; seed < cfg.Seeds; seed++ {
			for _, alg := range cfg.Algorithms {
				for _, obj := range cfg.Objectives {
					runs = append(runs, simulate(rng, alg, obj, b, safe, seed, hardness[seed]))
				}
			}
		}
	}
	return runs
}

func simulate(rng *rand.Rand, alg, obj string, b Board, safe, seed int, hardness float64) Run {
	p, ok := profiles[alg]
	if !ok {
		p = profile{skill: 0.6, costM: 0.3}
	}
	sizePenalty := 0.04 * math.Log2(float64(b.Cells())/float64(Faces*9)+1)
	pWin := clamp(p.skill+objectiveBias[obj]-hardness-sizePenalty, 0.02, 0.98)

	r := Run{Algorithm: alg, Objective: obj, Dims: b.Dims(), Seed: seed}
	r.Win = rng.Float64() < pWin

	revealed := safe
	if !r.Win {
		revealed = rng.IntN(safe + 1)
	}
	if safe > 0 {
		r.Completion = 100 * float64(revealed) / float64(safe)
	}
	// flood fill reveals several cells per click
	perClick := 1 + rng.Float64()*3
	r.Clicks = int(math.Ceil(float64(revealed) / perClick))
	if !r.Win && r.Clicks < 1 && rng.IntN(4) > 0 {
		r.Clicks = 1
	}
	r.Guesses = rng.IntN(1 + int(math.Ceil(float64(r.Clicks)*(1-p.skill)*0.3)))
	r.TimeMs = int(math.Round(float64(r.Clicks) * p.costM * (1 + float64(b.Cells())/54) * (0.5 + rng.Float64())))
	return r
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Header is the results file header.
var Header = model.RequiredColumns

// Record renders a run as results file cells.
func (r Run) Record() []string {
	return []string{
		r.Algorithm,
		r.Objective,
		r.Dims,
		strconv.Itoa(r.Seed),
		strconv.FormatBool(r.Win),
		strconv.Itoa(r.Clicks),
		strconv.Itoa(r.TimeMs),
		strconv.Itoa(r.Guesses),
		strconv.FormatFloat(r.Completion, 'f', 2, 64),
	}
}

// WriteCSV writes runs with a header row.
func WriteCSV(w io.Writer, runs []Run) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range runs {
		if err := cw.Write(r.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Frame renders runs as a raw frame of text cells.
func Frame(runs []Run) types.Frame {
	rows := make([][]any, len(runs))
	for i, r := range runs {
		rec := r.Record()
		row := make([]any, len(rec))
		for j, c := range rec {
			row[j] = c
		}
		rows[i] = row
	}
	return types.Frame{Columns: append([]string(nil), Header...), Rows: rows}
}
