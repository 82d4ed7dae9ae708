// Package credibility distinguishes genuine breakouts from fakes with an
// 8-factor framework. Each sub-score is a bucketed heuristic in [0,1];
// the aggregate is their mean, applied to probability as a multiplier.
package credibility

// RiskTier bands the aggregate credibility into a risk assessment.
type RiskTier int

const (
	RiskVeryLow RiskTier = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskVeryHigh
)

func (r RiskTier) String() string {
	switch r {
	case RiskVeryLow:
		return "VERY_LOW"
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	case RiskVeryHigh:
		return "VERY_HIGH"
	default:
		return "UNKNOWN"
	}
}

// Recommendation is the combined credibility x probability call.
type Recommendation int

const (
	StrongBuy Recommendation = iota
	Buy
	ModerateBuy
	WeakBuy
	Avoid
)

func (r Recommendation) String() string {
	switch r {
	case StrongBuy:
		return "STRONG_BUY"
	case Buy:
		return "BUY"
	case ModerateBuy:
		return "MODERATE_BUY"
	case WeakBuy:
		return "WEAK_BUY"
	case Avoid:
		return "AVOID"
	default:
		return "UNKNOWN"
	}
}

// Input carries the breakout evidence for one signal.
type Input struct {
	Entry           float64
	BaseProbability float64

	VolumeTrend string
	VolumeZ     float64

	BrokenResistance      bool
	ClosedAboveResistance bool

	DailySignal bool
	H4Signal    bool
	H1Signal    bool

	TrendDirection string
	MoveSize       float64
	ATR20          float64

	IVRank float64

	NearestSupport float64

	ChartPattern    string
	PatternComplete bool

	WhaleConviction    float64
	WhaleBlocksAligned int
}

// FactorScores holds the eight named sub-scores, each in [0,1].
type FactorScores struct {
	VolumeReversal    float64 `json:"volume_reversal"`
	PriceStructure    float64 `json:"price_structure"`
	MultiTimeframe    float64 `json:"multi_timeframe"`
	TrendStrength     float64 `json:"trend_strength"`
	VolatilityRegime  float64 `json:"volatility_regime"`
	SupportResistance float64 `json:"support_resistance"`
	ChartPattern      float64 `json:"chart_pattern"`
	WhaleValidation   float64 `json:"whale_validation"`
}

// Result is the aggregate credibility assessment.
type Result struct {
	Factors          FactorScores   `json:"credibility_factors"`
	Credibility      float64        `json:"credibility"`
	FakeBreakoutProb float64        `json:"fake_breakout_probability"`
	RiskTier         RiskTier       `json:"risk_assessment"`
	Recommendation   Recommendation `json:"recommendation"`
}

// reliablePatterns is the whitelist of breakout patterns with a
// historically better completion rate.
var reliablePatterns = map[string]bool{
	"ascending_triangle":         true,
	"cup_and_handle":             true,
	"flag":                       true,
	"pennant":                    true,
	"inverse_head_and_shoulders": true,
}

// Assessor scores breakout credibility. Stateless; safe for concurrent use.
type Assessor struct{}

// NewAssessor creates a credibility assessor.
func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess runs the 8-factor framework and aggregates by arithmetic mean.
func (a *Assessor) Assess(in Input) Result {
	factors := FactorScores{
		VolumeReversal:    assessVolume(in),
		PriceStructure:    assessPriceStructure(in),
		MultiTimeframe:    assessConfluence(in),
		TrendStrength:     assessTrend(in),
		VolatilityRegime:  assessVolatility(in),
		SupportResistance: assessLevels(in),
		ChartPattern:      assessPattern(in),
		WhaleValidation:   assessWhale(in),
	}

	sum := factors.VolumeReversal + factors.PriceStructure + factors.MultiTimeframe +
		factors.TrendStrength + factors.VolatilityRegime + factors.SupportResistance +
		factors.ChartPattern + factors.WhaleValidation
	credibility := clamp01(sum / 8.0)

	return Result{
		Factors:          factors,
		Credibility:      credibility,
		FakeBreakoutProb: 1.0 - credibility,
		RiskTier:         riskTier(credibility),
		Recommendation:   recommendation(credibility, in.BaseProbability),
	}
}

// assessVolume: a spike that keeps building reads genuine; a spike that
// fades into the breakout reads like distribution.
func assessVolume(in Input) float64 {
	if in.VolumeZ < 2.0 {
		return 0.40
	}
	switch in.VolumeTrend {
	case "increasing":
		return 0.95
	case "stable":
		return 0.75
	default:
		return 0.45
	}
}

// assessPriceStructure: closes above resistance beat wicks through it.
func assessPriceStructure(in Input) float64 {
	if !in.BrokenResistance {
		return 0.30
	}
	if in.ClosedAboveResistance {
		return 0.92
	}
	return 0.55
}

// assessConfluence: two or more timeframes agreeing is the strongest
// single tell of a real breakout.
func assessConfluence(in Input) float64 {
	count := 0
	for _, sig := range []bool{in.DailySignal, in.H4Signal, in.H1Signal} {
		if sig {
			count++
		}
	}
	switch {
	case count >= 2:
		return 0.95
	case count == 1:
		return 0.60
	default:
		return 0.30
	}
}

func assessTrend(in Input) float64 {
	if in.TrendDirection != "up" {
		return 0.30
	}
	atr := in.ATR20
	if atr <= 0 {
		atr = 1.0
	}
	switch {
	case in.MoveSize >= atr*1.5:
		return 0.92
	case in.MoveSize >= atr:
		return 0.75
	default:
		return 0.50
	}
}

// assessVolatility: mid-band IV rank is normal; extremes on either side
// raise squeeze risk.
func assessVolatility(in Input) float64 {
	switch {
	case in.IVRank < 0.3:
		return 0.70
	case in.IVRank > 0.8:
		return 0.50
	default:
		return 0.85
	}
}

// assessLevels: stop location quality from support distance.
func assessLevels(in Input) float64 {
	if in.Entry <= 0 {
		return 0.50
	}
	distance := in.Entry - in.NearestSupport
	if distance < 0 {
		distance = -distance
	}
	distance /= in.Entry
	switch {
	case distance > 0.10:
		return 0.50
	case distance > 0.05:
		return 0.75
	default:
		return 0.85
	}
}

func assessPattern(in Input) float64 {
	if !in.PatternComplete {
		return 0.50
	}
	switch {
	case reliablePatterns[in.ChartPattern]:
		return 0.92
	case in.ChartPattern != "" && in.ChartPattern != "none":
		return 0.75
	default:
		return 0.55
	}
}

func assessWhale(in Input) float64 {
	switch {
	case in.WhaleConviction >= 7 && in.WhaleBlocksAligned >= 2:
		return 0.98
	case in.WhaleConviction >= 5 && in.WhaleBlocksAligned >= 1:
		return 0.80
	case in.WhaleConviction >= 3:
		return 0.65
	default:
		return 0.45
	}
}

// riskBands is the ordered credibility-to-tier ladder.
var riskBands = []struct {
	Min  float64
	Tier RiskTier
}{
	{0.90, RiskVeryLow},
	{0.80, RiskLow},
	{0.70, RiskMedium},
	{0.60, RiskHigh},
}

func riskTier(credibility float64) RiskTier {
	for _, b := range riskBands {
		if credibility >= b.Min {
			return b.Tier
		}
	}
	return RiskVeryHigh
}

// recBands is the ordered combined-score-to-recommendation ladder.
var recBands = []struct {
	Min float64
	Rec Recommendation
}{
	{0.85, StrongBuy},
	{0.75, Buy},
	{0.65, ModerateBuy},
	{0.55, WeakBuy},
}

func recommendation(credibility, probability float64) Recommendation {
	combined := credibility * probability
	for _, b := range recBands {
		if combined >= b.Min {
			return b.Rec
		}
	}
	return Avoid
}

// Adjusted is the credibility-discounted probability.
type Adjusted struct {
	BaseProbability  float64        `json:"base_probability"`
	Credibility      float64        `json:"credibility"`
	FinalProbability float64        `json:"final_probability"`
	RiskTier         RiskTier       `json:"risk_assessment"`
	Recommendation   Recommendation `json:"recommendation"`
}

// ApplyMultiplier discounts the base probability by the credibility
// score, capping the result at 0.98.
func ApplyMultiplier(baseProbability float64, r Result) Adjusted {
	final := baseProbability * r.Credibility
	if final < 0 {
		final = 0
	}
	if final > 0.98 {
		final = 0.98
	}
	return Adjusted{
		BaseProbability:  baseProbability,
		Credibility:      r.Credibility,
		FinalProbability: final,
		RiskTier:         r.RiskTier,
		Recommendation:   r.Recommendation,
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
