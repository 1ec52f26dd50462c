package service

import (
	"context"
	"testing"
	"time"

	"labqc/internal/model"
	"labqc/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testResultFixture struct {
	samples  *fakeSampleRepo
	tests    *fakeTestResultRepo
	notifier *fakeNotifier
	service  TestResultService
}

func newTestResultFixture(t *testing.T, batchNumbers ...string) *testResultFixture {
	t.Helper()
	f := &testResultFixture{
		samples:  newFakeSampleRepo(),
		tests:    newFakeTestResultRepo(),
		notifier: &fakeNotifier{},
	}
	f.service = NewTestResultService(f.tests, f.samples, f.notifier)
	for _, batch := range batchNumbers {
		require.NoError(t, f.samples.Create(context.Background(), &model.Sample{
			SampleType:  model.SampleWhiteSugar,
			BatchNumber: batch,
			CollectedAt: time.Now().UTC(),
			AssignedTo:  "EMP001",
		}))
	}
	return f
}

func chemistIdentity(employeeID string) model.Identity {
	return model.Identity{UserID: uuid.New(), EmployeeID: employeeID, Role: model.RoleChemist, Department: "qc"}
}

func identityWithRole(role model.Role) model.Identity {
	return model.Identity{UserID: uuid.New(), EmployeeID: "EMP500", Role: role, Department: "packaging"}
}

func validResultRequest(batch string) CreateTestResultRequest {
	return CreateTestResultRequest{
		SampleBatchNumber: batch,
		Parameter:         "pH",
		Value:             6.8,
		Unit:              "pH",
		Status:            "completed",
	}
}

func TestResultCreate(t *testing.T) {
	f := newTestResultFixture(t, "W001")
	caller := chemistIdentity("EMP001")

	result, err := f.service.Create(context.Background(), validResultRequest("W001"), caller)
	require.NoError(t, err)
	assert.Equal(t, model.ParamPH, result.Parameter)
	assert.Equal(t, "EMP001", result.EnteredBy)
	assert.False(t, result.EnteredAt.IsZero())
	assert.Contains(t, f.notifier.kinds(), "test.created")
}

// The precondition order is fixed: a missing sample wins over everything,
// including a caller who would also fail the role gate.
func TestResultCreateMissingSampleWins(t *testing.T) {
	f := newTestResultFixture(t)
	caller := identityWithRole(model.RoleOther)

	_, err := f.service.Create(context.Background(), validResultRequest("W999"), caller)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestResultCreateRoleGate(t *testing.T) {
	f := newTestResultFixture(t, "W001")
	caller := identityWithRole(model.RoleOther)

	_, err := f.service.Create(context.Background(), validResultRequest("W001"), caller)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
}

// A duplicate parameter is reported as a conflict even when the rest of the
// payload would also fail validation.
func TestResultCreateDuplicateWinsOverValidation(t *testing.T) {
	f := newTestResultFixture(t, "W001")
	caller := chemistIdentity("EMP001")
	ctx := context.Background()

	_, err := f.service.Create(ctx, validResultRequest("W001"), caller)
	require.NoError(t, err)

	dup := validResultRequest("W001")
	dup.Unit = "furlongs"
	_, err = f.service.Create(ctx, dup, caller)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestResultCreateValidation(t *testing.T) {
	f := newTestResultFixture(t, "W001")
	caller := chemistIdentity("EMP001")
	ctx := context.Background()

	bad := validResultRequest("W001")
	bad.Parameter = "flavor"
	_, err := f.service.Create(ctx, bad, caller)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	bad = validResultRequest("W001")
	bad.Unit = "furlongs"
	_, err = f.service.Create(ctx, bad, caller)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	bad = validResultRequest("W001")
	bad.Status = "done"
	_, err = f.service.Create(ctx, bad, caller)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestResultDifferentParametersAllowed(t *testing.T) {
	f := newTestResultFixture(t, "W001")
	caller := chemistIdentity("EMP001")
	ctx := context.Background()

	_, err := f.service.Create(ctx, validResultRequest("W001"), caller)
	require.NoError(t, err)

	second := validResultRequest("W001")
	second.Parameter = "colour"
	second.Unit = "IU"
	_, err = f.service.Create(ctx, second, caller)
	assert.NoError(t, err)

	// Same parameter on a different sample is fine too.
	require.NoError(t, f.samples.Create(ctx, &model.Sample{
		SampleType: model.SampleWhiteSugar, BatchNumber: "W002",
		CollectedAt: time.Now().UTC(), AssignedTo: "EMP001",
	}))
	_, err = f.service.Create(ctx, validResultRequest("W002"), caller)
	assert.NoError(t, err)
}

func TestResultListBySampleVisibility(t *testing.T) {
	f := newTestResultFixture(t, "W001")
	assignee := chemistIdentity("EMP001")
	stranger := chemistIdentity("EMP777")
	ctx := context.Background()

	_, err := f.service.Create(ctx, validResultRequest("W001"), assignee)
	require.NoError(t, err)

	results, err := f.service.ListBySample(ctx, "W001", assignee)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	_, err = f.service.ListBySample(ctx, "W001", stranger)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	_, err = f.service.ListBySample(ctx, "W999", assignee)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestResultUpdate(t *testing.T) {
	f := newTestResultFixture(t, "W001")
	caller := chemistIdentity("EMP001")
	ctx := context.Background()

	result, err := f.service.Create(ctx, validResultRequest("W001"), caller)
	require.NoError(t, err)

	value := 7.2
	status := "failed"
	updated, err := f.service.Update(ctx, result.ID, UpdateTestResultRequest{Value: &value, Status: &status}, caller)
	require.NoError(t, err)
	assert.Equal(t, 7.2, updated.Value)
	assert.Equal(t, model.TestFailed, updated.Status)

	badUnit := "furlongs"
	_, err = f.service.Update(ctx, result.ID, UpdateTestResultRequest{Unit: &badUnit}, caller)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = f.service.Update(ctx, result.ID, UpdateTestResultRequest{}, identityWithRole(model.RoleOther))
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
}

func TestResultDelete(t *testing.T) {
	f := newTestResultFixture(t, "W001")
	caller := chemistIdentity("EMP001")
	ctx := context.Background()

	result, err := f.service.Create(ctx, validResultRequest("W001"), caller)
	require.NoError(t, err)

	assert.True(t, apperror.IsKind(
		f.service.Delete(ctx, result.ID, identityWithRole(model.RoleOther)),
		apperror.KindForbidden))
	require.NoError(t, f.service.Delete(ctx, result.ID, caller))
	_, err = f.service.GetByID(ctx, result.ID, caller)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
