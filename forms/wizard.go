package forms

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrsteele09/imvestor-client/dto"
	"github.com/jrsteele09/imvestor-client/internal/errors"
	"github.com/rs/zerolog/log"
)

// Step is a page of the entrepreneur signup wizard
type Step int

const (
	StepAccount Step = iota + 1
	StepReferral
	StepPlan
	StepFinished
)

var stepNames = map[Step]string{
	StepAccount:  "account",
	StepReferral: "referral",
	StepPlan:     "plan",
	StepFinished: "finished",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Submitter sends the completed registration, e.g. api.Service.RegisterEntrepreneur
type Submitter func(ctx context.Context, req dto.RegisterEntrepreneurRequest) error

// Wizard walks an entrepreneur through signup. Values is edited between
// steps; the registration is submitted when the referral step is left.
type Wizard struct {
	Values dto.RegisterEntrepreneurRequest

	step   Step
	submit Submitter
}

func NewWizard(submit Submitter) *Wizard {
	return &Wizard{step: StepAccount, submit: submit}
}

func (w *Wizard) Step() Step {
	return w.step
}

// Next validates the current step and moves forward. Leaving the referral
// step validates the whole form again before submitting it; a validation or
// submission failure keeps the wizard on the referral step.
func (w *Wizard) Next(ctx context.Context) error {
	switch w.step {
	case StepAccount:
		if err := ValidateEntrepreneurSignup(w.Values); err != nil {
			return err
		}
	case StepReferral:
		req := w.Values
		req.ReferralToken = nil
		if w.Values.ReferralToken != nil {
			if token := strings.TrimSpace(*w.Values.ReferralToken); token != "" {
				req.ReferralToken = &token
			}
		}
		// Values may have been edited since the account step
		if err := ValidateEntrepreneurSignup(req); err != nil {
			return err
		}
		if err := w.submit(ctx, req); err != nil {
			log.Warn().Err(err).Str("email", req.Email).Msg("Registration failed")
			return errors.Wrapf(err, "submit registration")
		}
	case StepFinished:
		return errors.ErrFinished
	}
	w.step++
	return nil
}

// Back returns to the previous step. The finished step cannot be left.
func (w *Wizard) Back() error {
	switch w.step {
	case StepAccount:
		return errors.ErrAtFirstStep
	case StepFinished:
		return errors.ErrFinished
	}
	w.step--
	return nil
}
