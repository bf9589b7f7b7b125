package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "magnet-wizard/internal/common/errors"
	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/magnet"
	"magnet-wizard/internal/session"
	"magnet-wizard/internal/wizard"
)

type MockProcessStarter struct {
	mock.Mock
}

func (m *MockProcessStarter) StartProcess(ctx context.Context, processID string, variables interface{}) (int64, error) {
	args := m.Called(ctx, processID, variables)
	return args.Get(0).(int64), args.Error(1)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func createTestStore(t *testing.T) *session.RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return session.NewRedisStore(client, "wizard:session:", time.Hour, logger.NewTestLogger(t))
}

func createTestService(t *testing.T, starter ProcessStarter) *WizardService {
	t.Helper()
	return createTestServiceWithStore(t, starter, createTestStore(t))
}

func createTestServiceWithStore(t *testing.T, starter ProcessStarter, store session.Store) *WizardService {
	t.Helper()
	log := logger.NewTestLogger(t)
	submitter := NewLeadSubmissionService(starter, "lead-submission", log)

	return NewWizardService(store, submitter, nil, log).
		WithClock(func() time.Time { return fixedNow }, func() int64 { return 42 })
}

func str(s string) *string { return &s }

func walkToContact(t *testing.T, svc *WizardService, id string, answers [4]string) *wizard.View {
	t.Helper()
	ctx := context.Background()
	_, err := svc.UpdateAnswers(ctx, id, wizard.AnswerPatch{
		Trigger: str(answers[0]), Job: str(answers[1]), Pain: str(answers[2]), Desire: str(answers[3]),
	})
	require.NoError(t, err)

	var v *wizard.View
	for i := 1; i < wizard.TotalSteps; i++ {
		v, err = svc.Next(ctx, id)
		require.NoError(t, err)
	}
	return v
}

// ==========================
// Session operations
// ==========================

func TestWizardService_FullFlow(t *testing.T) {
	starter := new(MockProcessStarter)
	starter.On("StartProcess", mock.Anything, "lead-submission", mock.MatchedBy(func(v interface{}) bool {
		vars, ok := v.(map[string]interface{})
		return ok && vars["templateId"] == "compliance-radar" && vars["email"] == "cfo@example.com"
	})).Return(int64(2251799813685249), nil)

	svc := createTestService(t, starter)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created.Step)
	assert.Equal(t, 20.0, created.Progress)

	v := walkToContact(t, svc, created.SessionID, [4]string{
		"New compliance rules", "Prepare for audit", "Manual checks", "Pass the audit",
	})
	require.NotNil(t, v.Preview)
	assert.Equal(t, magnet.ComplianceRadar, v.Preview.TemplateID)

	_, err = svc.UpdateAnswers(ctx, created.SessionID, wizard.AnswerPatch{
		Email:        str("cfo@example.com"),
		ConsentGiven: func(b bool) *bool { return &b }(true),
	})
	require.NoError(t, err)

	ack, err := svc.Submit(ctx, created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, ThankYouTitle, ack.Title)
	assert.Equal(t, ThankYouDescription, ack.Description)
	assert.Equal(t, int64(2251799813685249), ack.ProcessInstanceKey)
	assert.Equal(t, "GM-03", ack.Submission.TemplateCode)
	starter.AssertExpectations(t)

	got, err := svc.Get(ctx, created.SessionID)
	require.NoError(t, err)
	assert.True(t, got.Submitted)

	reset, err := svc.Reset(ctx, created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, reset.Step)
	assert.False(t, reset.Submitted)
}

func TestWizardService_NextValidationFailure(t *testing.T) {
	svc := createTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.Next(ctx, created.SessionID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeWizardValidationFailed))

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	fields := stdErr.Metadata["fieldErrors"].(map[string]string)
	assert.Equal(t, "Please tell us what triggered your search", fields[wizard.FieldTrigger])

	got, err := svc.Get(ctx, created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Step)
}

func TestWizardService_UnknownSession(t *testing.T) {
	svc := createTestService(t, nil)

	_, err := svc.Next(context.Background(), "does-not-exist")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionNotFound))
}

func TestWizardService_AnalyzeCostOptimizer(t *testing.T) {
	svc := createTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	walkToContact(t, svc, created.SessionID, [4]string{"Budget cuts", "Plan", "Waste", "Save"})

	params := &magnet.Params{Cost: &magnet.CostParams{Resources: "Cloud: $1,000\nTools: 500"}}
	v, err := svc.Analyze(ctx, created.SessionID, params)
	require.NoError(t, err)
	require.NotNil(t, v.Preview)
	assert.True(t, v.Preview.Analyzed)

	current, ok := v.Preview.Metric("currentCost")
	require.True(t, ok)
	assert.Equal(t, 1500.0, current.Value)
}

func TestWizardService_InvalidPreviewParams(t *testing.T) {
	svc := createTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	walkToContact(t, svc, created.SessionID, [4]string{"aa", "bb", "cc", "dd"})

	_, err = svc.UpdatePreview(ctx, created.SessionID, magnet.Params{
		Scenario: &magnet.ScenarioParams{Budget: -1, Timeframe: 12},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidPreviewParams))
}

func TestWizardService_BackHidesPreview(t *testing.T) {
	svc := createTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	walkToContact(t, svc, created.SessionID, [4]string{"aa", "bb", "cc", "dd"})

	v, err := svc.Back(ctx, created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 4, v.Step)
	assert.Nil(t, v.Preview)

	_, err = svc.Analyze(ctx, created.SessionID, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidTransition))
}

// ==========================
// Submission hand-off
// ==========================

func TestWizardService_SubmitProcessFailureKeepsSessionOpen(t *testing.T) {
	starter := new(MockProcessStarter)
	starter.On("StartProcess", mock.Anything, "lead-submission", mock.Anything).
		Return(int64(0), errors.New("unavailable"))

	svc := createTestService(t, starter)
	ctx := context.Background()

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	walkToContact(t, svc, created.SessionID, [4]string{"aa", "bb", "cc", "dd"})
	_, err = svc.UpdateAnswers(ctx, created.SessionID, wizard.AnswerPatch{
		Email:        str("a@b.io"),
		ConsentGiven: func(b bool) *bool { return &b }(true),
	})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, created.SessionID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeProcessStartFailed))

	got, err := svc.Get(ctx, created.SessionID)
	require.NoError(t, err)
	assert.False(t, got.Submitted)
	assert.Equal(t, wizard.TotalSteps, got.Step)
}

// failingSubmitStore rejects saves of submitted sessions.
type failingSubmitStore struct {
	session.Store
}

func (f failingSubmitStore) Save(ctx context.Context, sess *wizard.Session) error {
	if sess.Submitted {
		return apperrors.NewSessionStoreFailedError("set", errors.New("connection reset"))
	}
	return f.Store.Save(ctx, sess)
}

func readyToSubmit(t *testing.T, svc *WizardService) string {
	t.Helper()
	ctx := context.Background()
	created, err := svc.Create(ctx)
	require.NoError(t, err)
	walkToContact(t, svc, created.SessionID, [4]string{"aa", "bb", "cc", "dd"})
	_, err = svc.UpdateAnswers(ctx, created.SessionID, wizard.AnswerPatch{
		Email:        str("a@b.io"),
		ConsentGiven: func(b bool) *bool { return &b }(true),
	})
	require.NoError(t, err)
	return created.SessionID
}

func TestWizardService_SubmitSavesBeforeStartingProcess(t *testing.T) {
	store := createTestStore(t)
	starter := new(MockProcessStarter)
	svc := createTestServiceWithStore(t, starter, store)
	id := readyToSubmit(t, svc)

	starter.On("StartProcess", mock.Anything, "lead-submission", mock.Anything).
		Run(func(mock.Arguments) {
			stored, err := store.Get(context.Background(), id)
			require.NoError(t, err)
			assert.True(t, stored.Submitted)
		}).
		Return(int64(7), nil)

	ack, err := svc.Submit(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ack.ProcessInstanceKey)
	starter.AssertNumberOfCalls(t, "StartProcess", 1)
}

func TestWizardService_SubmitStoreFailureStartsNoProcess(t *testing.T) {
	starter := new(MockProcessStarter)
	store := createTestStore(t)
	svc := createTestServiceWithStore(t, starter, failingSubmitStore{Store: store})
	id := readyToSubmit(t, svc)

	_, err := svc.Submit(context.Background(), id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionStoreFailed))
	starter.AssertNotCalled(t, "StartProcess", mock.Anything, mock.Anything, mock.Anything)

	stored, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, stored.Submitted)
}

func TestLeadSubmissionService_WithoutProcess(t *testing.T) {
	svc := NewLeadSubmissionService(nil, "lead-submission", logger.NewNoOpLogger())

	ack, err := svc.Submit(context.Background(), &wizard.Submission{
		SessionID:  "s1",
		TemplateID: magnet.ScenarioSimulator,
	})
	require.NoError(t, err)
	assert.Equal(t, ThankYouTitle, ack.Title)
	assert.Zero(t, ack.ProcessInstanceKey)
}
