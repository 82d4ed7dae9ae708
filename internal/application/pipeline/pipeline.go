// Package pipeline orchestrates the decision sequence for one card:
// factor scoring, stop-ladder optimization, whale validation, credibility
// assessment, and position sizing, in that fixed order.
package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/leveledge/internal/domain/credibility"
	"github.com/sawpanic/leveledge/internal/domain/whale"
	"github.com/sawpanic/leveledge/internal/models"
	"github.com/sawpanic/leveledge/internal/risk"
	"github.com/sawpanic/leveledge/internal/score"
	"github.com/sawpanic/leveledge/internal/tune/weights"
)

// DecisionRecord is the full pipeline output for one card.
type DecisionRecord struct {
	RunID  string    `json:"run_id"`
	Ticker string    `json:"ticker"`
	AsOf   time.Time `json:"as_of"`

	Base        score.Decision       `json:"base"`
	Whale       whale.Result         `json:"whale"`
	WhaleProb   whale.Boosted        `json:"whale_adjusted"`
	Credibility credibility.Result   `json:"credibility"`
	Final       credibility.Adjusted `json:"final"`
	Position    risk.Position        `json:"position"`

	FinalProbability float64  `json:"final_probability"`
	Why              []string `json:"why"`
	RuntimeMS        int64    `json:"runtime_ms"`
}

// Config bounds the pipeline run.
type Config struct {
	AccountEquity float64
	Workers       int
}

// Pipeline runs the decision sequence. Weights are loaded once at
// construction and read-only for the pipeline's lifetime; per-ticker
// runs share no mutable state and may execute concurrently.
type Pipeline struct {
	engine   *score.Engine
	whale    *whale.Validator
	assessor *credibility.Assessor
	cfg      Config
	runID    string
}

// New creates a pipeline over a loaded weight map. lookup may be nil,
// in which case every ladder row carries the base probability.
func New(w weights.Map, lookup score.OutcomeLookup, cfg Config) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Pipeline{
		engine:   score.NewEngine(w, lookup),
		whale:    whale.NewValidator(),
		assessor: credibility.NewAssessor(),
		cfg:      cfg,
		runID:    uuid.NewString(),
	}
}

// RunID identifies this scan cycle on every decision record.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run scores one card through the full sequence.
func (p *Pipeline) Run(card *models.Card) DecisionRecord {
	start := time.Now()

	base := p.engine.ScoreCard(card)

	entry, _ := card.EntryRef()
	whaleResult := p.whale.Validate(whale.Input{
		Entry:      entry,
		VolumeZ:    card.VolZ,
		BuyBlocks:  toBlocks(card.WhaleBuyBlocks),
		SellBlocks: toBlocks(card.WhaleSellBlocks),
	})
	boosted := whale.ApplyBoost(base.Probability, whaleResult)

	credResult := p.assessor.Assess(credibility.Input{
		Entry:                 entry,
		BaseProbability:       boosted.FinalProbability,
		VolumeTrend:           card.VolumeTrend,
		VolumeZ:               card.VolZ,
		BrokenResistance:      card.BrokenResistance,
		ClosedAboveResistance: card.ClosedAboveResistance,
		DailySignal:           card.DailySignal,
		H4Signal:              card.H4Signal,
		H1Signal:              card.H1Signal,
		TrendDirection:        card.TrendDirection,
		MoveSize:              card.MoveSize,
		ATR20:                 card.ATR20,
		IVRank:                card.IVRank,
		NearestSupport:        card.NearestSupport,
		ChartPattern:          card.ChartPattern,
		PatternComplete:       card.PatternComplete,
		WhaleConviction:       whaleResult.Conviction,
		WhaleBlocksAligned:    whaleResult.BuyBlocks,
	})
	final := credibility.ApplyMultiplier(boosted.FinalProbability, credResult)

	stop := entry
	if base.ChosenStop != nil {
		stop = base.ChosenStop.StopPrice
	}
	position := risk.Size(p.cfg.AccountEquity, entry, stop, final.FinalProbability*100.0)

	why := append([]string{}, base.Why...)
	why = append(why,
		"whale="+whaleResult.Verdict.String(),
		"credibility_risk="+credResult.RiskTier.String(),
		"recommendation="+credResult.Recommendation.String(),
	)

	record := DecisionRecord{
		RunID:            p.runID,
		Ticker:           card.Ticker,
		AsOf:             card.AsOf,
		Base:             base,
		Whale:            whaleResult,
		WhaleProb:        boosted,
		Credibility:      credResult,
		Final:            final,
		Position:         position,
		FinalProbability: final.FinalProbability,
		Why:              why,
		RuntimeMS:        time.Since(start).Milliseconds(),
	}

	log.Debug().
		Str("ticker", card.Ticker).
		Float64("base_prob", base.Probability).
		Str("whale", whaleResult.Verdict.String()).
		Float64("credibility", credResult.Credibility).
		Float64("final_prob", final.FinalProbability).
		Int64("shares", position.Shares).
		Msg("Card scored")

	return record
}

// RunBatch scores all cards with a bounded worker pool. Output order
// matches input order; weights stay read-only throughout.
func (p *Pipeline) RunBatch(cards []*models.Card) []DecisionRecord {
	out := make([]DecisionRecord, len(cards))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = p.Run(cards[i])
			}
		}()
	}

	for i := range cards {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	log.Info().Str("run_id", p.runID).Int("cards", len(cards)).Msg("Scan cycle scored")
	return out
}

func toBlocks(blocks []models.WhaleBlock) []whale.Block {
	out := make([]whale.Block, len(blocks))
	for i, b := range blocks {
		out[i] = whale.Block{Price: b.Price, Size: b.Size}
	}
	return out
}
