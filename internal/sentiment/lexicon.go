package sentiment

// valence holds word sentiment intensities on a [-4, 4] scale, tilted
// toward vocabulary that shows up in financial headlines.
var valence = map[string]float64{
	// positive
	"gain":         1.9,
	"gains":        1.9,
	"gained":       1.8,
	"growth":       2.0,
	"grow":         1.6,
	"grows":        1.6,
	"profit":       2.1,
	"profits":      2.1,
	"profitable":   2.3,
	"surge":        2.4,
	"surges":       2.4,
	"surged":       2.4,
	"rally":        2.0,
	"rallies":      2.0,
	"soar":         2.6,
	"soars":        2.6,
	"soared":       2.6,
	"jump":         1.7,
	"jumps":        1.7,
	"jumped":       1.7,
	"beat":         1.8,
	"beats":        1.8,
	"record":       1.4,
	"strong":       1.9,
	"stronger":     2.0,
	"bullish":      2.3,
	"upgrade":      1.9,
	"upgraded":     1.9,
	"upgrades":     1.9,
	"outperform":   2.0,
	"outperforms":  2.0,
	"win":          2.2,
	"wins":         2.2,
	"winner":       2.3,
	"success":      2.4,
	"successful":   2.4,
	"positive":     1.8,
	"optimistic":   1.9,
	"opportunity":  1.5,
	"breakthrough": 2.5,
	"boom":         2.1,
	"booming":      2.2,
	"recover":      1.5,
	"recovery":     1.6,
	"recovers":     1.5,
	"dividend":     1.0,
	"expansion":    1.4,
	"innovative":   1.7,
	"top":          1.3,
	"best":         2.6,
	"good":         1.9,
	"great":        2.8,
	"higher":       1.2,
	"rise":         1.3,
	"rises":        1.3,
	"rose":         1.3,
	"up":           0.9,

	// negative
	"loss":          -2.0,
	"losses":        -2.0,
	"lose":          -1.9,
	"loses":         -1.9,
	"lost":          -1.9,
	"drop":          -1.5,
	"drops":         -1.5,
	"dropped":       -1.5,
	"fall":          -1.4,
	"falls":         -1.4,
	"fell":          -1.4,
	"plunge":        -2.6,
	"plunges":       -2.6,
	"plunged":       -2.6,
	"crash":         -3.0,
	"crashes":       -3.0,
	"crashed":       -3.0,
	"decline":       -1.6,
	"declines":      -1.6,
	"declined":      -1.6,
	"weak":          -1.8,
	"weaker":        -1.9,
	"bearish":       -2.3,
	"downgrade":     -1.9,
	"downgraded":    -1.9,
	"downgrades":    -1.9,
	"underperform":  -2.0,
	"miss":          -1.7,
	"misses":        -1.7,
	"missed":        -1.7,
	"lawsuit":       -2.1,
	"fraud":         -3.2,
	"scandal":       -2.8,
	"bankruptcy":    -3.4,
	"bankrupt":      -3.3,
	"default":       -2.5,
	"debt":          -1.2,
	"layoff":        -2.2,
	"layoffs":       -2.2,
	"cut":           -1.1,
	"cuts":          -1.1,
	"risk":          -1.3,
	"risks":         -1.3,
	"risky":         -1.5,
	"warning":       -1.8,
	"warns":         -1.8,
	"fear":          -2.2,
	"fears":         -2.2,
	"crisis":        -2.7,
	"recession":     -2.6,
	"negative":      -1.8,
	"pessimistic":   -1.9,
	"bad":           -2.5,
	"worst":         -3.1,
	"poor":          -2.1,
	"trouble":       -1.9,
	"down":          -0.9,
	"lower":         -1.2,
	"slump":         -2.0,
	"slumps":        -2.0,
	"tumble":        -2.1,
	"tumbles":       -2.1,
	"tumbled":       -2.1,
	"volatile":      -1.4,
	"volatility":    -1.2,
	"probe":         -1.6,
	"investigation": -1.7,
	"recall":        -1.8,
	"halt":          -1.5,
	"halts":         -1.5,
	"halted":        -1.5,
}

// boosters scale a nearby sentiment word up or down.
var boosters = map[string]float64{
	"very":       0.293,
	"extremely":  0.293,
	"hugely":     0.293,
	"massively":  0.293,
	"sharply":    0.293,
	"strongly":   0.293,
	"slightly":   -0.293,
	"somewhat":   -0.293,
	"marginally": -0.293,
	"barely":     -0.293,
}

// negations flip the valence of a following sentiment word.
var negations = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"neither": true,
	"nor":     true,
	"without": true,
	"isnt":    true,
	"wasnt":   true,
	"wont":    true,
	"dont":    true,
	"didnt":   true,
	"doesnt":  true,
	"cant":    true,
	"cannot":  true,
	"couldnt": true,
	"wouldnt": true,
	"hasnt":   true,
	"havent":  true,
}
