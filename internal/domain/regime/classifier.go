// Package regime provides soft trend/chop/transition classification from
// evidence features. No hard cutoffs: smooth scores, pick the max.
package regime

// Regime is the soft market-regime label.
type Regime int

const (
	Trend Regime = iota
	Chop
	Transition
)

func (r Regime) String() string {
	switch r {
	case Trend:
		return "trend"
	case Chop:
		return "chop"
	case Transition:
		return "transition"
	default:
		return "unknown"
	}
}

// Scores keeps all three raw regime scores for transparency.
type Scores struct {
	Trend      float64 `json:"trend"`
	Chop       float64 `json:"chop"`
	Transition float64 `json:"transition"`
}

// Classification is the argmax regime with its score as confidence.
type Classification struct {
	Regime     Regime  `json:"type"`
	Confidence float64 `json:"confidence"`
	Scores     Scores  `json:"scores"`
}

// Classify derives the soft regime from compression, trend efficiency,
// and the short/long realized-volatility ratio (all in [0,1]).
func Classify(compression, trendEff, rvRatio float64) Classification {
	trendScore := 0.55*trendEff + 0.25*rvRatio + 0.20*(1.0-compression)
	chopScore := 0.55*compression + 0.25*(1.0-trendEff) + 0.20*(1.0-rvRatio)
	transScore := 1.0 - abs(trendScore-chopScore)

	regime := Trend
	conf := trendScore
	if chopScore > conf {
		regime, conf = Chop, chopScore
	}
	if transScore > conf {
		regime, conf = Transition, transScore
	}

	return Classification{
		Regime:     regime,
		Confidence: conf,
		Scores:     Scores{Trend: trendScore, Chop: chopScore, Transition: transScore},
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
