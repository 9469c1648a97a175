package utils

import (
	"regexp"
	"strings"

	"clinic-booking-chatbot/models"
)

const (
	unknownIntentConfidence = 0.1
	confidencePerHit        = 0.3
)

type intentRule struct {
	intent   models.Intent
	patterns []*regexp.Regexp
}

type IntentClassifier struct {
	rules []intentRule
}

func NewIntentClassifier(lexicon *Lexicon) *IntentClassifier {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	rules := make([]intentRule, 0, len(lexicon.Intents))
	for _, entry := range lexicon.Intents {
		rule := intentRule{intent: entry.Intent}
		for _, keyword := range entry.Keywords {
			rule.patterns = append(rule.patterns, keywordPattern(keyword))
		}
		rules = append(rules, rule)
	}
	return &IntentClassifier{rules: rules}
}

// keywordPattern matches a keyword only where a word starts, not as a plain
// substring: "book" hits "booking" but not "facebook". Keywords of three
// letters or fewer must be whole words so "hi" does not fire inside "this".
func keywordPattern(keyword string) *regexp.Regexp {
	expr := `\b` + regexp.QuoteMeta(keyword)
	if len(keyword) <= 3 {
		expr += `\b`
	}
	return regexp.MustCompile(expr)
}

// ClassifyIntent scores every intent by keyword hits. The first intent in
// table order to reach the highest score wins.
func (ic *IntentClassifier) ClassifyIntent(message string) models.IntentResult {
	message = strings.ToLower(message)

	bestIntent := models.IntentUnknown
	bestScore := 0
	for _, rule := range ic.rules {
		score := 0
		for _, pattern := range rule.patterns {
			if pattern.MatchString(message) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestIntent = rule.intent
		}
	}

	if bestScore == 0 {
		return models.IntentResult{Intent: models.IntentUnknown, Confidence: unknownIntentConfidence}
	}
	confidence := float64(bestScore) * confidencePerHit
	if confidence > 1.0 {
		confidence = 1.0
	}
	return models.IntentResult{Intent: bestIntent, Confidence: confidence}
}
