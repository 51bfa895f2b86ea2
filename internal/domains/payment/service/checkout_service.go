package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	modmodel "researchequals-backend/internal/domains/module/model"
	modrepo "researchequals-backend/internal/domains/module/repository"
	"researchequals-backend/internal/domains/payment/gateway/stripe"
	"researchequals-backend/pkg/logger"
)

var (
	ErrModuleAlreadyPublished = errors.New("module is already published")
	ErrModuleMissingLicense   = errors.New("module has no license selected")
	ErrAmountRequired         = errors.New("a positive amount is required for this license")
)

// CheckoutService opens payment sessions for module licenses. The
// session's payment-intent metadata is the contract with the webhook:
// it must carry everything the publication pipeline dispatches on.
type CheckoutService struct {
	moduleRepo modrepo.ModuleRepository
	stripe     *stripe.Client
	origin     string
	doiPrefix  string
}

func NewCheckoutService(moduleRepo modrepo.ModuleRepository, stripeClient *stripe.Client, origin, doiPrefix string) *CheckoutService {
	return &CheckoutService{
		moduleRepo: moduleRepo,
		stripe:     stripeClient,
		origin:     origin,
		doiPrefix:  doiPrefix,
	}
}

// CreateSession builds a checkout session for the module's selected
// license. Catalog licenses use their provider price; zero-priced
// licenses take a pay-what-you-want amount from the caller.
func (s *CheckoutService) CreateSession(ctx context.Context, moduleID int64, amount decimal.Decimal) (*stripe.CheckoutSession, error) {
	mod, err := s.moduleRepo.GetForPublication(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if mod.Published {
		return nil, ErrModuleAlreadyPublished
	}
	if mod.License == nil {
		return nil, ErrModuleMissingLicense
	}

	params := stripe.CheckoutParams{
		ModuleID:    mod.ID,
		Suffix:      mod.Suffix,
		DOI:         fmt.Sprintf("%s/%s", s.doiPrefix, mod.Suffix),
		Description: fmt.Sprintf("%s %q", mod.Type.Name, mod.Title),
		LicenseName: mod.License.Name,
		ProductName: fmt.Sprintf("%s %q", mod.Type.Name, mod.Title),
		SuccessURL:  fmt.Sprintf("%s/modules/%s?payment=success", s.origin, mod.Suffix),
		CancelURL:   fmt.Sprintf("%s/modules/%s?payment=cancelled", s.origin, mod.Suffix),
	}

	if mod.License.PriceID != nil && *mod.License.PriceID != "" {
		params.PriceID = *mod.License.PriceID
	} else {
		if amount.LessThanOrEqual(decimal.Zero) {
			return nil, ErrAmountRequired
		}
		params.Amount = amount
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, err
	}

	logger.Info("Checkout session created", map[string]interface{}{
		"module_id":  mod.ID,
		"session_id": session.ID,
	})
	return session, nil
}

// moduleNotFound reports whether the error is a missing module, for
// handler status mapping.
func IsModuleNotFound(err error) bool {
	return errors.Is(err, modmodel.ErrModuleNotFound)
}
