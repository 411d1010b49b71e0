package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	personadomain "persona-backend/internal/persona/domain"
	"persona-backend/pkg/prompts"

	"github.com/google/uuid"
)

const (
	retrievalK       = 5
	queryBodyLimit   = 500
	promptBodyLimit  = 3000
	originalBodyKeep = 5000
	replyMaxTokens   = 800
	processBatchSize = 50
)

var validCategories = map[string]bool{
	personadomain.CategoryAcknowledgment:    true,
	personadomain.CategoryMeetingScheduling: true,
	personadomain.CategoryRoutine:           true,
	personadomain.CategoryComplex:           true,
	personadomain.CategoryNegotiation:       true,
	personadomain.CategoryCommitment:        true,
	personadomain.CategoryGeneral:           true,
}

// replyOutput is the shape the reply prompt asks the model for.
type replyOutput struct {
	ReplyBody string `json:"reply_body"`
	Category  string `json:"category"`
	Reasoning string `json:"reasoning"`
}

// GenerateDraft produces at most one draft for a message. The bool
// reports whether a draft was created; skips (existing draft, self-mail,
// excluded sender) return (nil, false, nil).
func (u *personaUsecase) GenerateDraft(ctx context.Context, msg *personadomain.IncomingMessage) (*personadomain.Draft, bool, error) {
	u.rebuildMu.RLock()
	defer u.rebuildMu.RUnlock()

	exists, err := u.draftRepo.ExistsForMessage(msg.ID)
	if err != nil {
		return nil, false, err
	}
	if exists {
		return nil, false, nil
	}

	skip, err := u.shouldSkipSender(msg.Sender)
	if err != nil {
		return nil, false, err
	}
	if skip {
		log.Printf("[Draft] Skipping message %s from %s", msg.ID, msg.Sender)
		return nil, false, nil
	}

	profile, err := u.GetProfile()
	if err != nil {
		return nil, false, err
	}
	if profile == nil {
		return nil, false, fmt.Errorf("no style profile yet, build one first")
	}

	// Retrieve the user's closest past writing for few-shot grounding.
	queryText := msg.Subject + " " + truncate(msg.Body, queryBodyLimit)
	_, docs, distances, err := u.vectorIndex.Query(ctx, queryText, retrievalK)
	if err != nil {
		// Retrieval is an enhancement, not a requirement.
		log.Printf("[Draft] Retrieval failed for message %s: %v", msg.ID, err)
		docs, distances = nil, nil
	}

	prompt, err := u.buildReplyPrompt(profile, docs, msg)
	if err != nil {
		return nil, false, err
	}

	raw, err := u.llm.Complete(ctx, prompt, replyMaxTokens)
	if err != nil {
		return nil, false, fmt.Errorf("reply generation failed: %w", err)
	}
	reply := parseReply(raw)

	known, err := u.isKnownSender(msg)
	if err != nil {
		return nil, false, err
	}

	bestDistance := 0.0
	if len(distances) > 0 {
		bestDistance = distances[0]
	}
	confidence := scoreConfidence(confidenceInput{
		Subject:      msg.Subject,
		Body:         msg.Body,
		Urgency:      msg.Urgency,
		BestDistance: bestDistance,
		HasNeighbors: len(distances) > 0,
		KnownSender:  known,
	})

	level, threshold, _, err := u.automationSettings()
	if err != nil {
		return nil, false, err
	}

	messageID := msg.ID
	draft := &personadomain.Draft{
		ID:                uuid.New().String(),
		IncomingMessageID: &messageID,
		Recipient:         msg.Sender,
		Subject:           replySubject(msg.Subject),
		Body:              reply.ReplyBody,
		Status:            initialStatus(level, confidence, threshold, reply.Category),
		Confidence:        confidence,
		Category:          reply.Category,
		Reasoning:         reply.Reasoning,
		OriginalBody:      truncate(msg.Body, originalBodyKeep),
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	if err := u.draftRepo.Create(draft); err != nil {
		return nil, false, err
	}

	log.Printf("[Draft] Created draft %s for message %s (confidence=%.2f status=%s)",
		draft.ID, msg.ID, confidence, draft.Status)
	return draft, true, nil
}

// shouldSkipSender filters self-mail and excluded senders.
func (u *personaUsecase) shouldSkipSender(sender string) (bool, error) {
	userEmail, err := u.settingsRepo.Get(personadomain.SettingUserEmail)
	if err != nil {
		return false, err
	}
	if userEmail == "" {
		userEmail = u.config.UserEmail
	}
	if userEmail != "" && strings.EqualFold(strings.TrimSpace(sender), userEmail) {
		return true, nil
	}

	rules, err := u.exclusionRepo.List()
	if err != nil {
		return false, err
	}
	for _, rule := range rules {
		if rule.Matches(sender) {
			return true, nil
		}
	}
	return false, nil
}

// isKnownSender reports whether the sender appeared before this message.
func (u *personaUsecase) isKnownSender(msg *personadomain.IncomingMessage) (bool, error) {
	senders, err := u.messageRepo.KnownSenders(msg.ID)
	if err != nil {
		return false, err
	}
	needle := strings.ToLower(strings.TrimSpace(msg.Sender))
	for _, s := range senders {
		if strings.Contains(strings.ToLower(s), needle) || strings.Contains(needle, strings.ToLower(s)) {
			return true, nil
		}
	}
	return false, nil
}

func (u *personaUsecase) buildReplyPrompt(profile *personadomain.StyleProfile, examples []string, msg *personadomain.IncomingMessage) (string, error) {
	template, err := u.prompts.Load(prompts.ReplyGeneration)
	if err != nil {
		return "", err
	}

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", err
	}

	similar := "(no similar past messages)"
	if len(examples) > 0 {
		similar = strings.Join(examples, "\n---\n")
	}

	instructions, err := u.settingsRepo.Get(personadomain.SettingInstructions)
	if err != nil {
		return "", err
	}
	goals, err := u.settingsRepo.Get(personadomain.SettingGoals)
	if err != nil {
		return "", err
	}
	if instructions == "" {
		instructions = "(none)"
	}
	if goals == "" {
		goals = "(none)"
	}

	return prompts.Render(template, map[string]string{
		"persona_profile":  string(profileJSON),
		"similar_examples": similar,
		"instructions":     instructions,
		"goals":            goals,
		"sender":           msg.Sender,
		"subject":          msg.Subject,
		"body":             truncate(msg.Body, promptBodyLimit),
	}), nil
}

// parseReply extracts the structured reply, falling back to the raw text
// so a malformed response still reaches human review instead of being
// dropped.
func parseReply(raw string) replyOutput {
	if jsonStr, ok := extractJSONObject(raw); ok {
		var out replyOutput
		if err := json.Unmarshal([]byte(jsonStr), &out); err == nil && out.ReplyBody != "" {
			if !validCategories[out.Category] {
				out.Category = personadomain.CategoryGeneral
			}
			return out
		}
	}
	return replyOutput{
		ReplyBody: strings.TrimSpace(raw),
		Category:  personadomain.CategoryGeneral,
		Reasoning: "unstructured",
	}
}

func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ProcessNewEmails drafts replies for every message without one.
func (u *personaUsecase) ProcessNewEmails(ctx context.Context) (*ProcessReport, error) {
	msgs, err := u.messageRepo.ListUndrafted(processBatchSize)
	if err != nil {
		return nil, err
	}

	report := &ProcessReport{}
	for i := range msgs {
		_, created, err := u.GenerateDraft(ctx, &msgs[i])
		switch {
		case err != nil:
			report.Errors = append(report.Errors, fmt.Sprintf("message %s: %v", msgs[i].ID, err))
		case created:
			report.Processed++
		default:
			report.Skipped++
		}
	}
	return report, nil
}
