package board

// ModeDef ties a user-facing trading horizon to the data resolution used
// for state building and the forward window used for barrier estimation.
type ModeDef struct {
	Name           string `json:"name"`
	Interval       string `json:"interval"`
	LookaheadBars  int    `json:"lookahead_bars"`
	MaxHistoryBars int    `json:"max_history_bars"`
}

// Modes in presentation order: day estimates on 15m structure, swing on
// daily, long on weekly.
var Modes = []ModeDef{
	{Name: "day", Interval: "15m", LookaheadBars: 16, MaxHistoryBars: 2500},
	{Name: "swing", Interval: "1d", LookaheadBars: 10, MaxHistoryBars: 4000},
	{Name: "long", Interval: "1wk", LookaheadBars: 26, MaxHistoryBars: 6000},
}
