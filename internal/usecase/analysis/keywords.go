package analysis

// scamKeywords are rule-score weights, each counted once per text
var scamKeywords = []struct {
	phrase string
	weight float64
}{
	{"gift card", 0.4},
	{"bitcoin", 0.7},
	{"wire transfer", 0.7},
	{"password", 0.5},
	{"immediately", 0.5},
	{"arrest", 0.6},
	{"verify", 0.5},
	{"urgent", 0.5},
	{"transfer now", 0.6},
	{"call immediately", 0.6},
	{"account suspended", 0.6},
	{"password reset", 0.5},
	{"remote access", 0.6},
	{"wire money", 0.7},
	{"back taxes", 0.7},
	{"compromised", 0.6},
	{"unauthorized", 0.6},
	{"disconnected", 0.5},
	{"legal action", 0.7},
	{"warrant", 0.7},
	{"social security", 0.6},
	{"install", 0.5},
	{"prize", 0.4},
	{"pay immediately", 0.6},
	{"pay your bill now", 0.7},
	{"confirm your details", 0.6},
	{"avoid legal consequences", 0.7},
}

// fillerWords are per-language hesitation tokens stripped before scoring
var fillerWords = map[string][]string{
	"en": {"um", "uh", "er", "ah", "like", "you know"},
	"fr": {"euh", "bah", "ben", "hein"},
	"es": {"eh", "este", "pues", "o sea"},
}
