// Package readability computes the six-score readability battery used to
// judge how plain a text is: Coleman-Liau (CLI), Flesch Reading Ease (FRE),
// Gunning Fog (GFI), SMOG, Flesch-Kincaid Grade (FKGL) and Dale-Chall (DCRS).
//
// All formulas share one fixed tokenization so their outputs are reproducible:
// sentences are maximal segments separated by runs of '.', '!' or '?' that
// contain at least one word; words are runs of ASCII letters and apostrophes;
// syllables are vowel groups (aeiouy) per lowercased word, with a trailing
// silent 'e' discounted and a minimum of one syllable per word.
package readability

import (
	"bufio"
	_ "embed"
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Scores holds the six readability measures for one text.
// Field names follow the wire format of the evaluation response.
type Scores struct {
	CLI  float64 `json:"CLI"`
	FRE  float64 `json:"FRE"`
	GFI  float64 `json:"GFI"`
	SMOG float64 `json:"SMOG"`
	FKGL float64 `json:"FKGL"`
	DCRS float64 `json:"DCRS"`
}

//go:embed familiar_words.txt
var familiarWordsRaw string

// familiarWords is the fixed reference list backing the Dale-Chall
// difficult-word test. Words absent from it count as difficult.
var familiarWords = loadFamiliarWords()

func loadFamiliarWords() map[string]struct{} {
	words := make(map[string]struct{})
	sc := bufio.NewScanner(strings.NewReader(familiarWordsRaw))
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w != "" {
			words[w] = struct{}{}
		}
	}
	return words
}

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	wordRe          = regexp.MustCompile(`[a-zA-Z']+`)
	vowelGroupRe    = regexp.MustCompile(`[aeiouy]+`)
)

// counts are the base quantities every formula draws from.
type counts struct {
	sentences int // S
	words     int // W
	letters   int // C
	syllables int // Y
	complex   int // P: words with >= 3 syllables
	difficult int // D: words absent from the familiar list
}

// Measure computes all six readability scores for text. It is a pure
// function of the text content. Texts with no sentences or no words yield
// the all-zero score set instead of dividing by zero.
func Measure(text string) Scores {
	c := count(text)
	if c.sentences == 0 || c.words == 0 {
		return Scores{}
	}

	s := float64(c.sentences)
	w := float64(c.words)
	letters := float64(c.letters)
	syll := float64(c.syllables)
	poly := float64(c.complex)
	diff := float64(c.difficult)

	scores := Scores{
		CLI:  0.0588*(100*letters/w) - 0.296*(100*s/w) - 15.8,
		FRE:  206.835 - 1.015*(w/s) - 84.6*(syll/w),
		GFI:  0.4 * ((w / s) + 100*(poly/w)),
		FKGL: 0.39*(w/s) + 11.8*(syll/w) - 15.59,
	}

	// SMOG is defined over a 30-sentence sample; shorter texts extrapolate
	// the polysyllable count proportionally (P*30/S), which reduces to the
	// plain per-sentence ratio below.
	scores.SMOG = 1.0430*math.Sqrt(30*poly/s) + 3.1291

	pctDifficult := 100 * diff / w
	scores.DCRS = 0.1579*pctDifficult + 0.0496*(w/s)
	if pctDifficult > 5 {
		scores.DCRS += 3.6355
	}
	return scores
}

func count(text string) counts {
	var c counts
	for _, segment := range sentenceSplitRe.Split(text, -1) {
		if wordRe.MatchString(segment) {
			c.sentences++
		}
	}
	for _, word := range wordRe.FindAllString(text, -1) {
		c.words++
		for _, r := range word {
			if unicode.IsLetter(r) {
				c.letters++
			}
		}
		y := countSyllables(word)
		c.syllables += y
		if y >= 3 {
			c.complex++
		}
		if !isFamiliar(word) {
			c.difficult++
		}
	}
	return c
}

// countSyllables approximates syllables as vowel groups, discounting a
// trailing silent 'e' (but not '-le' endings). Every word counts at least one.
func countSyllables(word string) int {
	w := strings.ToLower(strings.Trim(word, "'"))
	if w == "" {
		return 1
	}
	n := len(vowelGroupRe.FindAllString(w, -1))
	if n > 1 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

func isFamiliar(word string) bool {
	w := strings.ToLower(strings.Trim(word, "'"))
	w = strings.TrimSuffix(w, "'s")
	if w == "" {
		return true
	}
	_, ok := familiarWords[w]
	return ok
}
