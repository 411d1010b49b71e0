package usecase

import (
	"math"
	"regexp"
	"strings"

	personadomain "persona-backend/internal/persona/domain"
)

// strongRetrievalDistance assumes cosine distance in [0,2].
const strongRetrievalDistance = 0.30

// Phrases marking routine acknowledgment traffic.
var ackPhrases = []string{
	"confirm",
	"acknowledge",
	"received",
	"got it",
	"thank",
	"meeting confirm",
	"calendar invite",
	"rsvp",
	"accepted",
}

// Words marking commitments, money or obligations.
var commitmentWords = []string{
	"deadline",
	"commit",
	"promise",
	"guarantee",
	"contract",
	"agreement",
	"budget",
	"invoice",
	"payment",
}

var (
	moneyRe   = regexp.MustCompile(`\$\d`)
	percentRe = regexp.MustCompile(`\d+%`)
)

// confidenceInput collects everything the rule table looks at.
type confidenceInput struct {
	Subject      string
	Body         string
	Urgency      string
	BestDistance float64
	HasNeighbors bool
	KnownSender  bool
}

// scoreConfidence applies the fixed rule table: start at 0.50, each rule
// fires at most once, clamp to [0,1], round to two decimals. The rules
// are deliberately asymmetric so errors default to human review.
func scoreConfidence(in confidenceInput) float64 {
	score := 0.50
	text := strings.ToLower(in.Subject + " " + in.Body)

	if containsAny(text, ackPhrases) {
		score += 0.30
	}
	if in.HasNeighbors && in.BestDistance < strongRetrievalDistance {
		score += 0.10
	}
	if moneyRe.MatchString(text) || percentRe.MatchString(text) || containsAny(text, commitmentWords) {
		score -= 0.30
	}
	if !in.KnownSender {
		score -= 0.20
	}
	if in.Urgency == personadomain.UrgencyCritical || in.Urgency == personadomain.UrgencyImportant {
		score -= 0.30
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return math.Round(score*100) / 100
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
