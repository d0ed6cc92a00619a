package language

import "unicode"

const (
	// Unknown is returned for empty input
	Unknown = "unknown"
	// English is the pivot language and the detection default
	English = "en"
)

// keywordOrder fixes tie-breaking between languages with equal hit ratios
var keywordOrder = []string{"es", "fr", "de", "it", "pt", "nl", "ru"}

var keywords = map[string]map[string]struct{}{
	"es": set("el", "los", "las", "que", "es", "por", "para", "con", "una", "pero", "como", "muy",
		"está", "usted", "cuenta", "dinero", "hola", "gracias", "señor", "ahora", "necesito", "del", "su"),
	"fr": set("le", "les", "des", "est", "et", "une", "pour", "avec", "pas", "vous", "nous", "je",
		"qui", "dans", "sur", "bonjour", "merci", "votre", "compte", "être", "maintenant"),
	"de": set("der", "die", "das", "und", "ist", "nicht", "ich", "sie", "mit", "ein", "eine", "zu",
		"den", "auf", "für", "sind", "bitte", "danke", "ihr", "konto", "haben", "wir"),
	"it": set("il", "che", "di", "è", "non", "per", "sono", "gli", "della", "con", "mi", "ciao",
		"grazie", "questo", "anche", "sua", "conto", "molto", "ho"),
	"pt": set("os", "não", "uma", "com", "você", "obrigado", "olá", "muito", "seu", "sua", "conta",
		"da", "em", "mas", "isso", "agora"),
	"nl": set("het", "een", "niet", "ik", "je", "van", "dat", "met", "voor", "zijn", "op", "wij",
		"bedankt", "hallo", "alstublieft", "uw", "rekening"),
	"ru": set("и", "в", "не", "что", "на", "я", "с", "он", "как", "это", "по", "но", "вы", "мы",
		"здравствуйте", "спасибо", "да", "нет", "ваш", "счет"),
}

// accentOrder fixes tie-breaking between accent families
var accentOrder = []string{"es", "fr", "de", "pt", "it"}

var accents = map[string]string{
	"es": "ñáéíóúü¿¡",
	"fr": "àâçéèêëîïôûùüÿœæ",
	"de": "äöüß",
	"pt": "ãõáâàçéêíóôú",
	"it": "àèéìíîòóùú",
}

// scripts maps non-Latin Unicode blocks to a language; kana is checked
// separately so Japanese text with kanji is not reported as Chinese
var scripts = []struct {
	table *unicode.RangeTable
	lang  string
}{
	{unicode.Hangul, "ko"},
	{unicode.Han, "zh"},
	{unicode.Arabic, "ar"},
	{unicode.Hebrew, "he"},
	{unicode.Thai, "th"},
	{unicode.Devanagari, "hi"},
	{unicode.Kannada, "kn"},
	{unicode.Greek, "el"},
	{unicode.Cyrillic, "ru"},
}

var englishIndicators = set("the", "and", "is", "are", "you", "your", "to", "of", "a", "in", "it",
	"that", "this", "for", "with", "have", "be", "on", "not", "we", "i", "my", "me", "please", "can",
	"will", "what", "hello", "thank", "call")

var names = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"ru": "Russian",
	"bg": "Bulgarian",
	"ja": "Japanese",
	"zh": "Chinese",
	"ko": "Korean",
	"ar": "Arabic",
	"he": "Hebrew",
	"th": "Thai",
	"hi": "Hindi",
	"kn": "Kannada",
	"el": "Greek",
}

// Name returns the display name for a language code
func Name(code string) string {
	if n, ok := names[code]; ok {
		return n
	}
	return "Unknown"
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
