package language

import (
	"context"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"go.uber.org/zap"
)

const (
	statConfidence = 0.7
	keywordRatio   = 0.2
	keywordHits    = 2
	accentRatio    = 0.05
	englishRatio   = 0.3
	englishMinWord = 3
)

// Translator translates text into English
type Translator interface {
	Translate(ctx context.Context, text, sourceLang string) (string, error)
}

// Guesser is implemented by translators that can also identify a language
type Guesser interface {
	GuessLanguage(ctx context.Context, text string) (string, error)
}

// StatGuesser returns a language code and a confidence in [0,1]
type StatGuesser func(text string) (string, float64)

// Detector detects languages and translates to English with a memoizing
// cache. It is safe for concurrent use.
type Detector struct {
	translator   Translator
	guess        StatGuesser
	cache        *Cache
	logger       *zap.Logger
	computations atomic.Int64
}

// NewDetector creates a detector; translator may be nil
func NewDetector(translator Translator, logger *zap.Logger) *Detector {
	return &Detector{
		translator: translator,
		guess:      WhatlangGuess,
		cache:      NewCache(),
		logger:     logger,
	}
}

// WithStatGuesser replaces the statistical guesser
func (d *Detector) WithStatGuesser(g StatGuesser) *Detector {
	d.guess = g
	return d
}

// WhatlangGuess runs the whatlanggo trigram detector
func WhatlangGuess(text string) (string, float64) {
	info := whatlanggo.Detect(text)
	return info.Lang.Iso6391(), info.Confidence
}

// Detect returns the dominant language code of text, "en" when nothing
// matches and "unknown" for blank input
func (d *Detector) Detect(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return Unknown
	}

	key := Key(text)
	if lang, ok := d.cache.Get(key); ok {
		return lang
	}

	lang := d.detect(ctx, text)
	d.cache.Set(key, lang)
	return lang
}

func (d *Detector) detect(ctx context.Context, text string) string {
	d.computations.Add(1)

	tokens := Tokens(text)
	if len(tokens) >= 2 {
		if d.guess != nil {
			if lang, conf := d.guess(strings.Join(tokens, " ")); lang != "" && conf > statConfidence {
				return lang
			}
		}
		if lang, ok := byKeywords(tokens); ok {
			return lang
		}
	}

	if lang, ok := byScript(text); ok {
		return lang
	}
	if lang, ok := byAccents(text); ok {
		return lang
	}
	if IsLikelyEnglish(text) {
		return English
	}

	if g, ok := d.translator.(Guesser); ok {
		lang, err := g.GuessLanguage(ctx, text)
		if err == nil && lang != "" {
			return strings.ToLower(lang)
		}
		if err != nil && d.logger != nil {
			d.logger.Warn("remote language guess failed", zap.Error(err))
		}
	}

	return English
}

// Translate translates text to English. Empty sourceLang triggers detection.
// Failures return the original text with translated=false.
func (d *Detector) Translate(ctx context.Context, text, sourceLang string) (string, string, bool) {
	if sourceLang == "" {
		sourceLang = d.Detect(ctx, text)
	}
	if sourceLang == English || sourceLang == Unknown || strings.TrimSpace(text) == "" {
		return text, sourceLang, false
	}
	if d.translator == nil {
		return text, sourceLang, false
	}

	translated, err := d.translator.Translate(ctx, text, sourceLang)
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("translation failed, keeping original text",
				zap.String("source_lang", sourceLang),
				zap.Error(err),
			)
		}
		return text, sourceLang, false
	}
	translated = strings.TrimSpace(translated)
	if translated == "" {
		return text, sourceLang, false
	}
	return translated, sourceLang, true
}

// CacheSize returns the number of memoized detections
func (d *Detector) CacheSize() int {
	return d.cache.Len()
}

// Computations returns how many uncached detections ran
func (d *Detector) Computations() int64 {
	return d.computations.Load()
}

// Tokens strips punctuation and digits, collapses whitespace, lowercases,
// and splits into words
func Tokens(text string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsMark(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}

// IsLikelyEnglish reports whether more than 30% of at least three words are
// common English words
func IsLikelyEnglish(text string) bool {
	tokens := Tokens(text)
	if len(tokens) < englishMinWord {
		return false
	}
	hits := 0
	for _, t := range tokens {
		if _, ok := englishIndicators[t]; ok {
			hits++
		}
	}
	return float64(hits)/float64(len(tokens)) > englishRatio
}

func byKeywords(tokens []string) (string, bool) {
	best, bestHits, bestRatio := "", 0, 0.0
	for _, lang := range keywordOrder {
		words := keywords[lang]
		hits := 0
		for _, t := range tokens {
			if _, ok := words[t]; ok {
				hits++
			}
		}
		ratio := float64(hits) / float64(len(tokens))
		if ratio > bestRatio {
			best, bestHits, bestRatio = lang, hits, ratio
		}
	}
	if best != "" && (bestRatio >= keywordRatio || bestHits >= keywordHits) {
		return best, true
	}
	return "", false
}

// byScript is a hard check: any letter from a non-Latin block decides the
// language, kana first, then the blocks in table order
func byScript(text string) (string, bool) {
	kana := 0
	counts := make(map[string]int)
	cyrillicRU, cyrillicBG := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.In(r, unicode.Hiragana, unicode.Katakana) {
			kana++
			continue
		}
		for _, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[s.lang]++
				break
			}
		}
		switch unicode.ToLower(r) {
		case 'ы', 'э', 'ё':
			cyrillicRU++
		case 'ъ':
			cyrillicBG++
		}
	}
	if kana > 0 {
		return "ja", true
	}

	for _, s := range scripts {
		if counts[s.lang] == 0 {
			continue
		}
		if s.lang == "ru" && cyrillicBG > 0 && cyrillicRU == 0 {
			return "bg", true
		}
		return s.lang, true
	}
	return "", false
}

func byAccents(text string) (string, bool) {
	lower := strings.ToLower(text)
	letters := 0
	for _, r := range lower {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters == 0 {
		return "", false
	}

	best, bestRatio := "", 0.0
	for _, lang := range accentOrder {
		chars := accents[lang]
		n := 0
		for _, r := range lower {
			if strings.ContainsRune(chars, r) {
				n++
			}
		}
		ratio := float64(n) / float64(letters)
		if ratio > bestRatio {
			best, bestRatio = lang, ratio
		}
	}
	if best != "" && bestRatio >= accentRatio {
		return best, true
	}
	return "", false
}
