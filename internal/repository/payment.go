package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/auraplay/fortune-server-go/internal/model"
)

// ErrStatusConflict is returned by Save when the stored session already
// reached a terminal status and the write would change it. Paid and
// expired are final; callers decide how to surface the conflict.
var ErrStatusConflict = errors.New("payment session status is terminal")

type PaymentRepository interface {
	FindByID(ctx context.Context, id string) (*model.PaymentSession, error)
	FindByToken(ctx context.Context, token string) (*model.PaymentSession, error)
	Create(ctx context.Context, params model.CreatePaymentParams) (*model.PaymentSession, error)
	Save(ctx context.Context, session *model.PaymentSession) error
	Count(ctx context.Context) (int, error)
}

// memoryPaymentRepo holds all sessions in process memory. State is
// intentionally lost on restart; sessions are never deleted.
type memoryPaymentRepo struct {
	mu       sync.Mutex
	sessions map[string]model.PaymentSession
}

func NewMemoryPaymentRepository() PaymentRepository {
	return &memoryPaymentRepo{
		sessions: make(map[string]model.PaymentSession),
	}
}

func (r *memoryPaymentRepo) FindByID(_ context.Context, id string) (*model.PaymentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (r *memoryPaymentRepo) FindByToken(_ context.Context, token string) (*model.PaymentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Linear scan. Acceptable at this scale: the table is bounded by
	// process lifetime and the token path is the fallback, not the norm.
	for _, session := range r.sessions {
		if session.Token == token {
			found := session
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryPaymentRepo) Create(_ context.Context, params model.CreatePaymentParams) (*model.PaymentSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := model.PaymentSession{
		ID:        params.ID,
		Token:     params.Token,
		Amount:    params.Amount,
		Status:    model.PaymentStatusPending,
		PayURL:    params.PayURL,
		CreatedAt: params.CreatedAt,
		ExpiresAt: params.ExpiresAt,
	}
	r.sessions[session.ID] = session

	stored := session
	return &stored, nil
}

func (r *memoryPaymentRepo) Save(_ context.Context, session *model.PaymentSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[session.ID]; ok {
		if existing.Status.Terminal() && existing.Status != session.Status {
			return ErrStatusConflict
		}
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *memoryPaymentRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions), nil
}
