package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bekimbicaku/scan-perks/internal/domain"
	"github.com/bekimbicaku/scan-perks/internal/domain/model"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/adapter"
	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
)

// GeneratedCode is a rendered code ready for display.
type GeneratedCode struct {
	Payload   string     `json:"payload"`
	Image     string     `json:"qrCode"` // base64 PNG data URL
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// QRUseCase mints and validates scannable codes. Validity enforcement for
// dynamic codes lives here, outside the scan accounting core.
type QRUseCase interface {
	// GenerateStatic renders a business's permanent code.
	GenerateStatic(ctx context.Context, ownerID string) (*GeneratedCode, error)
	// MintDynamic creates a single-use code through the business API; the
	// caller authenticates with the business API key. Codes expire after five
	// minutes.
	MintDynamic(ctx context.Context, apiKey, transactionID string, amountCents int64, metadata map[string]string) (*GeneratedCode, error)
	// ValidateDynamic checks a scanned dynamic payload against the stored
	// code: ErrCodeExpired past its window, ErrCodeUsed when already consumed.
	ValidateDynamic(ctx context.Context, p *model.QRPayload) error
	// Consume burns a dynamic code after its scan was accepted.
	Consume(ctx context.Context, businessID, transactionID string) error
	// PurgeExpired removes lapsed codes; called by the background worker.
	PurgeExpired(ctx context.Context) (int, error)
}

var _ QRUseCase = (*qrUC)(nil)

type qrUC struct {
	businesses repository.BusinessRepository
	codes      repository.DynamicCodeRepository
	renderer   adapter.QRRenderer
	now        func() time.Time
	log        *zerolog.Logger
}

func NewQRUseCase(
	businesses repository.BusinessRepository,
	codes repository.DynamicCodeRepository,
	renderer adapter.QRRenderer,
	logger *zerolog.Logger,
	clock ...func() time.Time,
) QRUseCase {
	now := time.Now
	if len(clock) > 0 && clock[0] != nil {
		now = clock[0]
	}
	l := logger.With().Str("component", "QRUseCase").Logger()
	return &qrUC{businesses: businesses, codes: codes, renderer: renderer, now: now, log: &l}
}

func (uc *qrUC) GenerateStatic(ctx context.Context, ownerID string) (*GeneratedCode, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	biz, err := uc.businesses.FindByID(ctx, repository.NoTX, ownerID)
	if err != nil {
		return nil, err
	}
	p := &model.QRPayload{
		BusinessID: biz.ID,
		Type:       model.QRTypeStatic,
		Timestamp:  uc.now(),
	}
	payload, err := p.Encode()
	if err != nil {
		return nil, err
	}
	img, err := uc.renderer.RenderDataURL(payload)
	if err != nil {
		return nil, err
	}
	return &GeneratedCode{Payload: payload, Image: img}, nil
}

func (uc *qrUC) MintDynamic(ctx context.Context, apiKey, transactionID string, amountCents int64, metadata map[string]string) (*GeneratedCode, error) {
	biz, err := uc.businesses.FindByAPIKey(ctx, repository.NoTX, apiKey)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrInvalidAPIKey
		}
		return nil, err
	}
	if biz.PlanStatus != model.PlanStatusActive {
		return nil, domain.ErrPlanNotActive
	}

	code, err := model.NewDynamicCode(biz.ID, transactionID, amountCents, metadata, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.codes.Save(ctx, repository.NoTX, code); err != nil {
		return nil, err
	}

	payload, err := code.Payload().Encode()
	if err != nil {
		return nil, err
	}
	img, err := uc.renderer.RenderDataURL(payload)
	if err != nil {
		return nil, err
	}
	exp := code.ExpiresAt
	return &GeneratedCode{Payload: payload, Image: img, ExpiresAt: &exp}, nil
}

func (uc *qrUC) ValidateDynamic(ctx context.Context, p *model.QRPayload) error {
	if p == nil || !p.IsDynamic() {
		return nil
	}
	code, err := uc.codes.Find(ctx, repository.NoTX, p.BusinessID, p.TransactionID)
	if err != nil {
		return err
	}
	if code.Used {
		return domain.ErrCodeUsed
	}
	if code.Expired(uc.now()) {
		return domain.ErrCodeExpired
	}
	return nil
}

func (uc *qrUC) Consume(ctx context.Context, businessID, transactionID string) error {
	return uc.codes.MarkUsed(ctx, repository.NoTX, businessID, transactionID)
}

func (uc *qrUC) PurgeExpired(ctx context.Context) (int, error) {
	return uc.codes.DeleteExpired(ctx, repository.NoTX, uc.now())
}
