package cashier

import (
	"context"
	"errors"

	"github.com/appetiteclub/pos/pkg/apperr"
	"github.com/appetiteclub/pos/pkg/validate"
	"github.com/google/uuid"
)

// RegisterTerminal records a new device. Terminals start active but
// unapproved; a manager approves them before they can open sessions.
func (s *Service) RegisterTerminal(ctx context.Context, in validate.TerminalInput) (*Terminal, error) {
	if err := in.Validate().Err(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	t := &Terminal{
		ID:          uuid.New(),
		BranchID:    in.BranchID,
		Name:        in.Name,
		Type:        in.Type,
		Fingerprint: in.Fingerprint,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertTerminal(ctx, t); err != nil {
		if errors.Is(err, ErrDuplicateFingerprint) {
			return nil, apperr.New(apperr.Conflict, "DuplicateFingerprint", "a terminal with this fingerprint is already registered")
		}
		return nil, internal(err, "cannot register terminal")
	}

	s.logger.Info("terminal registered", "terminal_id", t.ID, "type", t.Type)
	return t, nil
}

func (s *Service) GetTerminal(ctx context.Context, id uuid.UUID) (*Terminal, error) {
	t, err := s.store.FindTerminal(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "TerminalNotFound", "terminal not found")
		}
		return nil, internal(err, "cannot load terminal")
	}
	return t, nil
}

func (s *Service) ApproveTerminal(ctx context.Context, id uuid.UUID) (*Terminal, error) {
	t, err := s.GetTerminal(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.setTerminalFlags(ctx, t.ID, t.Active, true)
}

// DeactivateTerminal takes a device out of service. Open sessions on it are
// left for their cashier to close.
func (s *Service) DeactivateTerminal(ctx context.Context, id uuid.UUID) (*Terminal, error) {
	t, err := s.GetTerminal(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.setTerminalFlags(ctx, t.ID, false, t.Approved)
}

func (s *Service) setTerminalFlags(ctx context.Context, id uuid.UUID, active, approved bool) (*Terminal, error) {
	t, err := s.store.UpdateTerminalFlags(ctx, id, active, approved, s.clock.Now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "TerminalNotFound", "terminal not found")
		}
		return nil, internal(err, "cannot update terminal")
	}
	return t, nil
}
