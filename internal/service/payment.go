package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/auraplay/fortune-server-go/internal/clock"
	apperrors "github.com/auraplay/fortune-server-go/internal/errors"
	"github.com/auraplay/fortune-server-go/internal/model"
	"github.com/auraplay/fortune-server-go/internal/qr"
	"github.com/auraplay/fortune-server-go/internal/repository"
	"github.com/auraplay/fortune-server-go/internal/util"
)

type CreatePaymentResult struct {
	PaymentID string    `json:"paymentId"`
	Amount    int       `json:"amount"`
	QRImage   string    `json:"qrImage"`
	ExpiresAt time.Time `json:"expiresAt"`
	PayURL    string    `json:"payUrl"`
}

type PaymentStatusResult struct {
	Status       model.PaymentStatus `json:"status"`
	PaymentID    string              `json:"paymentId"`
	PaymentToken string              `json:"paymentToken,omitempty"`
}

type ConfirmPaymentResult struct {
	Status       model.PaymentStatus `json:"status"`
	PaymentID    string              `json:"paymentId"`
	PaymentToken string              `json:"paymentToken"`
}

type PaymentService struct {
	repo          repository.PaymentRepository
	qrGen         qr.Generator
	clock         clock.Clock
	payBaseURL    string
	ttl           time.Duration
	defaultAmount int
}

func NewPaymentService(
	repo repository.PaymentRepository,
	qrGen qr.Generator,
	clk clock.Clock,
	payBaseURL string,
	ttl time.Duration,
	defaultAmount int,
) *PaymentService {
	return &PaymentService{
		repo:          repo,
		qrGen:         qrGen,
		clock:         clk,
		payBaseURL:    payBaseURL,
		ttl:           ttl,
		defaultAmount: defaultAmount,
	}
}

// CreateSession issues a new pending payment session. The QR image is
// rendered before the session is committed so an imaging failure leaves
// no session behind.
func (s *PaymentService) CreateSession(ctx context.Context, amount int) (*CreatePaymentResult, error) {
	if amount <= 0 {
		amount = s.defaultAmount
	}

	token, err := util.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	id := uuid.NewString()
	payURL := s.buildPayURL(id, token)

	qrImage, err := s.qrGen.DataURI(payURL)
	if err != nil {
		return nil, apperrors.QRGeneration(err)
	}

	now := s.clock.Now()
	session, err := s.repo.Create(ctx, model.CreatePaymentParams{
		ID:        id,
		Token:     token,
		Amount:    amount,
		PayURL:    payURL,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("create payment session: %w", err)
	}

	log.Info().
		Str("paymentId", session.ID).
		Int("amount", session.Amount).
		Time("expiresAt", session.ExpiresAt).
		Msg("payment session created")

	return &CreatePaymentResult{
		PaymentID: session.ID,
		Amount:    session.Amount,
		QRImage:   qrImage,
		ExpiresAt: session.ExpiresAt,
		PayURL:    session.PayURL,
	}, nil
}

// GetStatus reports the effective status of a session. The token is
// disclosed only once the session is paid.
func (s *PaymentService) GetStatus(ctx context.Context, id string) (*PaymentStatusResult, error) {
	session, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &PaymentStatusResult{
		Status:    session.Status,
		PaymentID: session.ID,
	}
	if session.Status == model.PaymentStatusPaid {
		result.PaymentToken = session.Token
	}
	return result, nil
}

// Confirm marks a pending session paid. This is the legitimate
// disclosure point for the token.
func (s *PaymentService) Confirm(ctx context.Context, id string) (*ConfirmPaymentResult, error) {
	session, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.markPaid(ctx, session)
}

// ConfirmScan is the simulated payment-provider callback: it requires
// the token carried in the QR payload to match before confirming.
func (s *PaymentService) ConfirmScan(ctx context.Context, id, token string) (*ConfirmPaymentResult, error) {
	session, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !util.ConstantTimeEqual(session.Token, token) {
		return nil, apperrors.NotFound("Payment session")
	}
	return s.markPaid(ctx, session)
}

// Validate decides whether a request may pass the payment gate. A nil
// return means the gate is open.
func (s *PaymentService) Validate(ctx context.Context, id, token string) error {
	if id == "" && token == "" {
		return apperrors.PaymentRequired()
	}

	var session *model.PaymentSession
	var err error

	if id != "" {
		session, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("find payment session: %w", err)
		}
	}
	if session == nil && token != "" {
		session, err = s.repo.FindByToken(ctx, token)
		if err != nil {
			return fmt.Errorf("find payment session by token: %w", err)
		}
	}
	if session == nil {
		return apperrors.NotFound("Payment session")
	}

	if err := s.reconcileExpiry(ctx, session); err != nil {
		return err
	}

	switch session.Status {
	case model.PaymentStatusExpired:
		return apperrors.PaymentExpired()
	case model.PaymentStatusPaid:
		// token check below
	default:
		return apperrors.InvalidPayment()
	}

	if id != "" && token != "" && !util.ConstantTimeEqual(session.Token, token) {
		return apperrors.InvalidPayment()
	}

	return nil
}

func (s *PaymentService) lookup(ctx context.Context, id string) (*model.PaymentSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find payment session: %w", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Payment session")
	}
	if err := s.reconcileExpiry(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *PaymentService) markPaid(ctx context.Context, session *model.PaymentSession) (*ConfirmPaymentResult, error) {
	if session.Status == model.PaymentStatusExpired {
		return nil, apperrors.PaymentExpired()
	}

	if session.Status != model.PaymentStatusPaid {
		now := s.clock.Now()
		// The deadline may have passed since the session was read.
		if now.After(session.ExpiresAt) {
			session.Status = model.PaymentStatusExpired
			if err := s.repo.Save(ctx, session); err != nil && !errors.Is(err, repository.ErrStatusConflict) {
				return nil, fmt.Errorf("save expired session: %w", err)
			}
			return nil, apperrors.PaymentExpired()
		}

		session.Status = model.PaymentStatusPaid
		session.PaidAt = &now
		if err := s.repo.Save(ctx, session); err != nil {
			if errors.Is(err, repository.ErrStatusConflict) {
				// A concurrent request expired the session first.
				return nil, apperrors.PaymentExpired()
			}
			return nil, fmt.Errorf("save payment session: %w", err)
		}

		log.Info().
			Str("paymentId", session.ID).
			Str("token", util.MaskToken(session.Token)).
			Msg("payment confirmed")
	}

	return &ConfirmPaymentResult{
		Status:       session.Status,
		PaymentID:    session.ID,
		PaymentToken: session.Token,
	}, nil
}

// reconcileExpiry rewrites a pending session to expired once its
// deadline has passed. There is no background sweep; every read path
// goes through here.
func (s *PaymentService) reconcileExpiry(ctx context.Context, session *model.PaymentSession) error {
	if session.Status != model.PaymentStatusPending {
		return nil
	}
	if !s.clock.Now().After(session.ExpiresAt) {
		return nil
	}

	session.Status = model.PaymentStatusExpired
	if err := s.repo.Save(ctx, session); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			// Lost the race to a concurrent write; adopt the stored state.
			stored, ferr := s.repo.FindByID(ctx, session.ID)
			if ferr != nil {
				return fmt.Errorf("reread payment session: %w", ferr)
			}
			if stored != nil {
				*session = *stored
			}
			return nil
		}
		return fmt.Errorf("save expired session: %w", err)
	}

	log.Debug().Str("paymentId", session.ID).Msg("payment session expired")
	return nil
}

func (s *PaymentService) buildPayURL(id, token string) string {
	params := url.Values{}
	params.Set("paymentId", id)
	params.Set("token", token)
	return s.payBaseURL + "?" + params.Encode()
}
