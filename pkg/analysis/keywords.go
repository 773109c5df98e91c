package analysis

import (
	"sort"
	"strings"
	"unicode"
)

// stopWords is the standard english stop word list.
var stopWords = makeWordSet(
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you",
	"you're", "you've", "you'll", "you'd", "your", "yours", "yourself",
	"yourselves", "he", "him", "his", "himself", "she", "she's", "her",
	"hers", "herself", "it", "it's", "its", "itself", "they", "them",
	"their", "theirs", "themselves", "what", "which", "who", "whom",
	"this", "that", "that'll", "these", "those", "am", "is", "are", "was",
	"were", "be", "been", "being", "have", "has", "had", "having", "do",
	"does", "did", "doing", "a", "an", "the", "and", "but", "if", "or",
	"because", "as", "until", "while", "of", "at", "by", "for", "with",
	"about", "against", "between", "into", "through", "during", "before",
	"after", "above", "below", "to", "from", "up", "down", "in", "out",
	"on", "off", "over", "under", "again", "further", "then", "once",
	"here", "there", "when", "where", "why", "how", "all", "any", "both",
	"each", "few", "more", "most", "other", "some", "such", "no", "nor",
	"not", "only", "own", "same", "so", "than", "too", "very", "s", "t",
	"can", "will", "just", "don", "don't", "should", "should've", "now",
	"d", "ll", "m", "o", "re", "ve", "y", "ain", "aren", "aren't",
	"couldn", "couldn't", "didn", "didn't", "doesn", "doesn't", "hadn",
	"hadn't", "hasn", "hasn't", "haven", "haven't", "isn", "isn't", "ma",
	"mightn", "mightn't", "mustn", "mustn't", "needn", "needn't", "shan",
	"shan't", "shouldn", "shouldn't", "wasn", "wasn't", "weren", "weren't",
	"won", "won't", "wouldn", "wouldn't",
)

// noiseWords are domain noise words common in journaling. Frequent but
// carrying no topical signal.
var noiseWords = makeWordSet(
	"just", "really", "think", "know", "want", "need", "feel", "like",
	"going", "things", "thing", "time", "today", "also", "still", "even",
	"make", "good", "much", "well", "back", "year", "years", "week", "day",
	"life", "little", "right", "something", "never", "always", "everything",
	"nothing", "actually", "definitely", "probably", "maybe", "would",
	"could", "should", "might", "this", "that", "these", "those",
)

func makeWordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Keyword is a word and the number of times it appears.
type Keyword struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// ExtractKeywords returns the topN most frequent meaningful words in the
// text. Words are lowercased, must be purely alphabetic and longer than
// three letters, and must not be stop words or journaling noise words.
// Ties are broken alphabetically so results are deterministic.
func ExtractKeywords(text string, topN int) []Keyword {
	counts := make(map[string]int)
	for _, tok := range tokenize(strings.ToLower(text)) {
		if len([]rune(tok)) <= 3 {
			continue
		}
		if stopWords[tok] || noiseWords[tok] {
			continue
		}
		counts[tok]++
	}

	keywords := make([]Keyword, 0, len(counts))
	for w, c := range counts {
		keywords = append(keywords, Keyword{Word: w, Count: c})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Count != keywords[j].Count {
			return keywords[i].Count > keywords[j].Count
		}
		return keywords[i].Word < keywords[j].Word
	})

	if topN > 0 && len(keywords) > topN {
		keywords = keywords[:topN]
	}
	return keywords
}

// tokenize splits text into runs of letters, discarding anything containing
// digits or punctuation.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
