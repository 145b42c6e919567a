package text

// StopSet is a set of normalized stop words.
type StopSet map[string]struct{}

// NewStopSet builds a StopSet from a word list. Words are normalized so
// membership checks are case-insensitive.
func NewStopSet(words []string) StopSet {
	set := make(StopSet, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		set[Normalize(w)] = struct{}{}
	}
	return set
}

// Contains reports whether the normalized form of word is a stop word.
func (s StopSet) Contains(word string) bool {
	_, ok := s[Normalize(word)]
	return ok
}

// Built-in stop-word lists per language. Callers that need richer lists
// load them from a file through the config package.
var defaultStopWords = map[string][]string{
	"en": {
		"a", "an", "the", "is", "are", "was", "were", "be", "been",
		"am", "do", "does", "did", "will", "would", "can", "could",
		"of", "to", "in", "on", "at", "for", "with", "from", "by",
		"and", "or", "but", "not", "no", "so", "too", "very",
		"i", "you", "he", "she", "it", "we", "they", "me", "my",
		"your", "his", "her", "its", "our", "their", "this", "that",
		"these", "those", "what", "which", "who", "please",
	},
	"fr": {
		"le", "la", "les", "un", "une", "des", "du", "de", "d",
		"est", "sont", "suis", "es", "et", "ou", "mais", "ne", "pas",
		"je", "tu", "il", "elle", "nous", "vous", "ils", "elles",
		"mon", "ma", "mes", "ton", "ta", "tes", "son", "sa", "ses",
		"ce", "cette", "ces", "que", "qui", "quoi", "dans", "sur",
		"pour", "avec", "par", "au", "aux", "en", "y",
	},
}

// StopWords returns the built-in stop-word set for a language. Unknown
// languages get an empty set, which disables stop-word filtering.
func StopWords(language string) StopSet {
	return NewStopSet(defaultStopWords[language])
}
