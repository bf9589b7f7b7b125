package services

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"magnet-wizard/internal/common/errors"
	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/common/metrics"
	"magnet-wizard/internal/common/observability"
	"magnet-wizard/internal/magnet"
	"magnet-wizard/internal/session"
	"magnet-wizard/internal/wizard"
)

// Clock returns the current time.
type Clock func() time.Time

// WizardService loads a session, applies one operation and saves it back.
type WizardService struct {
	store     session.Store
	submitter *LeadSubmissionService
	obs       *observability.Observability
	logger    logger.Logger
	now       Clock
	seed      func() int64
}

// NewWizardService wires the service. obs may be nil.
func NewWizardService(store session.Store, submitter *LeadSubmissionService, obs *observability.Observability, log logger.Logger) *WizardService {
	return &WizardService{
		store:     store,
		submitter: submitter,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "wizard-service"}),
		now:       time.Now,
		seed:      func() int64 { return time.Now().UnixNano() },
	}
}

// WithClock overrides the time source and the optimizer seed source.
func (s *WizardService) WithClock(now Clock, seed func() int64) *WizardService {
	s.now = now
	s.seed = seed
	return s
}

func (s *WizardService) Create(ctx context.Context) (*wizard.View, error) {
	sess, err := s.store.Create(ctx, s.now())
	if err != nil {
		return nil, err
	}
	metrics.WizardSessionsStarted.Inc()
	s.obs.RecordWizardOperation(ctx, "create", "ok")
	return view(sess), nil
}

func (s *WizardService) Get(ctx context.Context, id string) (*wizard.View, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return view(sess), nil
}

func (s *WizardService) UpdateAnswers(ctx context.Context, id string, patch wizard.AnswerPatch) (*wizard.View, error) {
	return s.mutate(ctx, id, "answers", func(sess *wizard.Session) error {
		_, err := sess.UpdateAnswers(patch, s.now())
		return err
	})
}

// Next advances one step. Entering the contact step records the selection.
func (s *WizardService) Next(ctx context.Context, id string) (*wizard.View, error) {
	return s.mutate(ctx, id, "next", func(sess *wizard.Session) error {
		from := sess.Step
		if err := sess.Next(s.now()); err != nil {
			return err
		}
		metrics.WizardStepTransitions.WithLabelValues(strconv.Itoa(from), strconv.Itoa(sess.Step)).Inc()
		if sess.Step == wizard.TotalSteps {
			metrics.WizardTemplatesSelected.WithLabelValues(string(sess.TemplateID)).Inc()
			s.logger.Info("template selected", map[string]interface{}{
				"sessionId":  sess.ID,
				"templateId": string(sess.TemplateID),
				"keyword":    magnet.MatchedKeyword(sess.Answers.Input()),
			})
		}
		return nil
	})
}

func (s *WizardService) Back(ctx context.Context, id string) (*wizard.View, error) {
	return s.mutate(ctx, id, "back", func(sess *wizard.Session) error {
		from := sess.Step
		if err := sess.Back(s.now()); err != nil {
			return err
		}
		if from != sess.Step {
			metrics.WizardStepTransitions.WithLabelValues(strconv.Itoa(from), strconv.Itoa(sess.Step)).Inc()
		}
		return nil
	})
}

func (s *WizardService) UpdatePreview(ctx context.Context, id string, params magnet.Params) (*wizard.View, error) {
	return s.mutate(ctx, id, "preview", func(sess *wizard.Session) error {
		return sess.UpdatePreviewParams(params, s.now())
	})
}

// Analyze runs the preview's action button. params, when non-nil, are merged
// first so a single request can change inputs and analyze.
func (s *WizardService) Analyze(ctx context.Context, id string, params *magnet.Params) (*wizard.View, error) {
	return s.mutate(ctx, id, "analyze", func(sess *wizard.Session) error {
		if params != nil {
			if err := sess.UpdatePreviewParams(*params, s.now()); err != nil {
				return err
			}
		}
		if err := sess.Analyze(s.seed(), s.now()); err != nil {
			return err
		}
		metrics.WizardPreviewsAnalyzed.WithLabelValues(string(sess.TemplateID)).Inc()
		return nil
	})
}

// Submit completes the wizard and hands the payload to the submission
// service. The submitted state is saved before the process starts, so a
// store failure never leaves a started process behind a reopenable session.
// A failed hand-off reopens the session for a retry.
func (s *WizardService) Submit(ctx context.Context, id string) (*Acknowledgement, error) {
	ctx, span := s.obs.StartSpan(ctx, "wizard.submit")
	defer span.End()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	sub, err := sess.Submit(s.now())
	if err != nil {
		s.recordFailure(ctx, "submit", err)
		return nil, translate(err)
	}

	if err := s.store.Save(ctx, sess); err != nil {
		s.obs.RecordWizardOperation(ctx, "submit", "error")
		return nil, err
	}

	ack, err := s.submitter.Submit(ctx, sub)
	if err != nil {
		s.obs.RecordWizardOperation(ctx, "submit", "error")
		sess.Reopen(s.now())
		if saveErr := s.store.Save(ctx, sess); saveErr != nil {
			s.logger.Error("failed to reopen session after hand-off failure", map[string]interface{}{
				"sessionId": id,
				"error":     saveErr.Error(),
			})
		}
		return nil, err
	}

	s.obs.RecordWizardOperation(ctx, "submit", "ok")
	return ack, nil
}

// Reset clears the session back to step 1 ("Start Over").
func (s *WizardService) Reset(ctx context.Context, id string) (*wizard.View, error) {
	return s.mutate(ctx, id, "reset", func(sess *wizard.Session) error {
		sess.Reset(s.now())
		return nil
	})
}

func (s *WizardService) mutate(ctx context.Context, id, op string, fn func(*wizard.Session) error) (*wizard.View, error) {
	ctx, span := s.obs.StartSpan(ctx, "wizard."+op)
	defer span.End()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(sess); err != nil {
		s.recordFailure(ctx, op, err)
		return nil, translate(err)
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.obs.RecordWizardOperation(ctx, op, "ok")
	return view(sess), nil
}

func (s *WizardService) recordFailure(ctx context.Context, op string, err error) {
	var verr *wizard.ValidationError
	if stderrors.As(err, &verr) {
		for field := range verr.Fields {
			metrics.WizardValidationFailures.WithLabelValues(field).Inc()
		}
	}
	s.obs.RecordWizardOperation(ctx, op, "rejected")
	s.logger.Debug("wizard operation rejected", map[string]interface{}{
		"op":    op,
		"error": err,
	})
}

// translate maps wizard and widget errors onto application error codes.
func translate(err error) error {
	var verr *wizard.ValidationError
	switch {
	case stderrors.As(err, &verr):
		return errors.NewWizardValidationFailedError(verr.Fields)
	case stderrors.Is(err, wizard.ErrInvalidTransition),
		stderrors.Is(err, wizard.ErrAlreadySubmitted),
		stderrors.Is(err, wizard.ErrPreviewUnavailable):
		return errors.NewInvalidTransitionError(err.Error())
	case stderrors.Is(err, magnet.ErrInvalidParams):
		return errors.NewInvalidPreviewParamsError(err.Error())
	}
	if stdErr, ok := errors.As(err); ok {
		return stdErr
	}
	return errors.NewInternalError(err)
}

func view(sess *wizard.Session) *wizard.View {
	v := wizard.NewView(sess)
	return &v
}
