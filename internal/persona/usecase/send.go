package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	personadomain "persona-backend/internal/persona/domain"
)

func (u *personaUsecase) getDraft(id string) (*personadomain.Draft, error) {
	draft, err := u.draftRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("draft %s not found", id)
	}
	return draft, nil
}

func (u *personaUsecase) transition(id, to string) (*personadomain.Draft, error) {
	draft, err := u.getDraft(id)
	if err != nil {
		return nil, err
	}
	if !personadomain.CanTransition(draft.Status, to) {
		return nil, fmt.Errorf("cannot move draft from %s to %s", draft.Status, to)
	}
	draft.Status = to
	draft.UpdatedAt = time.Now()
	if err := u.draftRepo.Update(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// ApproveDraft marks a draft ready to send.
func (u *personaUsecase) ApproveDraft(id string) (*personadomain.Draft, error) {
	return u.transition(id, personadomain.StatusApproved)
}

// RejectDraft discards a draft. Rejected is terminal.
func (u *personaUsecase) RejectDraft(id string) (*personadomain.Draft, error) {
	return u.transition(id, personadomain.StatusRejected)
}

// UpdateDraftBody edits the reply text of a reviewable draft.
func (u *personaUsecase) UpdateDraftBody(id, body string) (*personadomain.Draft, error) {
	draft, err := u.getDraft(id)
	if err != nil {
		return nil, err
	}
	if draft.Terminal() {
		return nil, fmt.Errorf("draft %s is already %s", id, draft.Status)
	}
	draft.Body = body
	draft.UpdatedAt = time.Now()
	if err := u.draftRepo.Update(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// SendDraft dispatches a draft through the outbound mail collaborator.
// The kill switch is checked at send time, so drafts approved before
// read-only mode was enabled still cannot leave.
func (u *personaUsecase) SendDraft(ctx context.Context, id string) (*personadomain.Draft, error) {
	_, _, readOnly, err := u.automationSettings()
	if err != nil {
		return nil, err
	}
	if readOnly {
		return nil, ErrReadOnly
	}

	draft, err := u.getDraft(id)
	if err != nil {
		return nil, err
	}
	if !personadomain.CanTransition(draft.Status, personadomain.StatusSent) {
		return nil, fmt.Errorf("cannot send draft in status %s", draft.Status)
	}

	ok, message, providerID := u.sender.SendEmail(draft.Recipient, draft.Subject, draft.Body, draft.ID)
	if !ok {
		// Status stays put so the draft can be retried.
		return nil, fmt.Errorf("send failed: %s", message)
	}

	now := time.Now()
	draft.Status = personadomain.StatusSent
	draft.SentAt = &now
	draft.UpdatedAt = now
	if err := u.draftRepo.Update(draft); err != nil {
		return nil, fmt.Errorf("sent but failed to record: %w", err)
	}

	log.Printf("[Send] Draft %s sent to %s (provider id %s)", draft.ID, draft.Recipient, providerID)
	return draft, nil
}
