// Package whale validates institutional order flow behind a signal:
// volume-spike gating, block alignment around entry, and a 0-10
// conviction score that feeds an additive probability boost.
package whale

import (
	"sort"
)

// Verdict is the terminal whale-flow decision for one signal.
type Verdict int

const (
	Deny Verdict = iota
	Neutral
	Watch
	Confirm
)

func (v Verdict) String() string {
	switch v {
	case Deny:
		return "DENY"
	case Neutral:
		return "NEUTRAL"
	case Watch:
		return "WATCH"
	case Confirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

// Boost values per verdict.
const (
	boostDeny    = -0.15
	boostNeutral = 0.0
	boostWatch   = 0.05
	boostConfirm = 0.20
)

// Tier is the textual confidence tier derived from conviction.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "HIGH"
	case TierMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Block is a single large print at a price.
type Block struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// Input carries the order-flow evidence for one signal.
type Input struct {
	Entry      float64
	VolumeZ    float64
	BuyBlocks  []Block
	SellBlocks []Block
}

// Result is the whale-flow verdict with its supporting scores.
type Result struct {
	Verdict         Verdict `json:"verdict"`
	Conviction      float64 `json:"conviction"`
	Credibility     float64 `json:"credibility"`
	Boost           float64 `json:"boost"`
	AlignmentScore  float64 `json:"alignment_score"`
	Alignment       string  `json:"alignment"`
	BuyBlocks       int     `json:"buy_blocks"`
	SellBlocks      int     `json:"sell_blocks"`
	LargestBuy      float64 `json:"largest_buy_block"`
	TotalBuyVolume  float64 `json:"total_buy_volume"`
	TotalSellVolume float64 `json:"total_sell_volume"`
	Reason          string  `json:"reason,omitempty"`
}

// blockTier maps a minimum dollar size to a conviction weight. Ordered
// descending; the first rung reached wins.
type blockTier struct {
	MinSize float64
	Weight  float64
}

var convictionTiers = []blockTier{
	{500_000, 3.0},
	{100_000, 2.0},
	{50_000, 1.0},
}

const smallBlockWeight = 0.3

// alignmentTolerance filters blocks to within ±2% of entry.
const alignmentTolerance = 0.02

// volumeSpikeZ is the z-score gate: below this there is no statistically
// significant volume and the verdict is an immediate DENY.
const volumeSpikeZ = 2.0

// Validator scores whale flow. Stateless; safe for concurrent use.
type Validator struct{}

// NewValidator creates a whale-flow validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs the decision sequence: volume gate, alignment filter,
// conviction scoring, verdict. Each call is terminal; there is no state
// carried between signals.
func (v *Validator) Validate(in Input) Result {
	if in.VolumeZ <= volumeSpikeZ {
		return Result{
			Verdict:     Deny,
			Conviction:  0,
			Credibility: 0,
			Boost:       boostDeny,
			Reason:      "no significant volume spike (Z <= 2.0)",
		}
	}

	buys := alignedBlocks(in.BuyBlocks, in.Entry)
	sells := alignedBlocks(in.SellBlocks, in.Entry)

	alignment := alignmentScore(buys, sells)
	conviction := convictionScore(buys, sells)
	verdict, boost := decide(alignment, conviction, len(buys), len(sells))

	var largest, buyVol, sellVol float64
	for _, b := range buys {
		buyVol += b.Size
		if b.Size > largest {
			largest = b.Size
		}
	}
	for _, b := range sells {
		sellVol += b.Size
	}

	return Result{
		Verdict:         verdict,
		Conviction:      conviction,
		Credibility:     credibility(conviction, len(buys)),
		Boost:           boost,
		AlignmentScore:  alignment,
		Alignment:       alignmentLabel(alignment),
		BuyBlocks:       len(buys),
		SellBlocks:      len(sells),
		LargestBuy:      largest,
		TotalBuyVolume:  buyVol,
		TotalSellVolume: sellVol,
	}
}

// alignedBlocks filters blocks to within tolerance of entry, sorted by
// size descending.
func alignedBlocks(blocks []Block, entry float64) []Block {
	tolerance := entry * alignmentTolerance
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		diff := b.Price - entry
		if diff < 0 {
			diff = -diff
		}
		if diff <= tolerance {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Size > out[j].Size })
	return out
}

// alignmentScore is the buy share of aligned block volume: 1.0 all buys,
// 0.5 balanced or no blocks at all, 0.0 all sells.
func alignmentScore(buys, sells []Block) float64 {
	var buyVol, sellVol float64
	for _, b := range buys {
		buyVol += b.Size
	}
	for _, b := range sells {
		sellVol += b.Size
	}
	total := buyVol + sellVol
	if total == 0 {
		return 0.5
	}
	return buyVol / total
}

// convictionScore sums buy-block weights minus half the sell-block
// weights, clamped to [0,10].
func convictionScore(buys, sells []Block) float64 {
	c := 0.0
	for _, b := range buys {
		c += blockWeight(b.Size)
	}
	for _, b := range sells {
		c -= 0.5 * blockWeight(b.Size)
	}
	if c < 0 {
		return 0
	}
	if c > 10 {
		return 10
	}
	return c
}

func blockWeight(size float64) float64 {
	for _, t := range convictionTiers {
		if size >= t.MinSize {
			return t.Weight
		}
	}
	return smallBlockWeight
}

// decide applies verdict precedence: institutional selling first, then
// the CONFIRM and WATCH gates, else NEUTRAL.
func decide(alignment, conviction float64, buyCount, sellCount int) (Verdict, float64) {
	if sellCount > buyCount {
		return Deny, boostDeny
	}
	if alignment >= 0.70 && conviction >= 6.0 {
		return Confirm, boostConfirm
	}
	if alignment >= 0.50 && conviction >= 3.0 {
		return Watch, boostWatch
	}
	return Neutral, boostNeutral
}

// credibility rates how reliable the whale evidence is: repeated large
// blocks read as real institutional flow, thin activity as retail noise.
func credibility(conviction float64, buyCount int) float64 {
	switch {
	case conviction >= 6.0 && buyCount >= 2:
		return 0.95
	case conviction >= 3.0 && buyCount >= 1:
		return 0.75
	case buyCount > 0:
		return 0.60
	default:
		return 0.40
	}
}

func alignmentLabel(score float64) string {
	switch {
	case score >= 0.85:
		return "PERFECT"
	case score >= 0.70:
		return "STRONG"
	case score >= 0.50:
		return "BALANCED"
	case score >= 0.30:
		return "MIXED"
	default:
		return "WEAK"
	}
}

// Boosted is the whale-adjusted probability.
type Boosted struct {
	BaseProbability  float64 `json:"base_probability"`
	FinalProbability float64 `json:"final_probability"`
	BoostApplied     float64 `json:"whale_boost_applied"`
	Conviction       float64 `json:"whale_conviction"`
	Verdict          Verdict `json:"whale_verdict"`
	Tier             Tier    `json:"confidence"`
}

// ApplyBoost adds the verdict boost to the base probability, capping the
// result at 0.98 so no signal ever reads as certain.
func ApplyBoost(baseProbability float64, r Result) Boosted {
	final := baseProbability + r.Boost
	if final < 0 {
		final = 0
	}
	if final > 0.98 {
		final = 0.98
	}

	tier := TierLow
	switch {
	case r.Conviction >= 7:
		tier = TierHigh
	case r.Conviction >= 4:
		tier = TierMedium
	}

	return Boosted{
		BaseProbability:  baseProbability,
		FinalProbability: final,
		BoostApplied:     r.Boost,
		Conviction:       r.Conviction,
		Verdict:          r.Verdict,
		Tier:             tier,
	}
}
