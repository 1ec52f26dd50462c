package service

import (
	"context"
	"testing"

	"labqc/internal/model"
	"labqc/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccessRequestService() (AccessRequestService, *fakeAccessRequestRepo) {
	repo := newFakeAccessRequestRepo()
	return NewAccessRequestService(repo), repo
}

func accessRequestInput(employeeID string) CreateAccessRequestInput {
	return CreateAccessRequestInput{
		FullName:   "New Hire",
		Email:      employeeID + "@mill.example",
		EmployeeID: employeeID,
		Reason:     "joining the night shift",
	}
}

func TestAccessRequestCreate(t *testing.T) {
	service, _ := newAccessRequestService()
	ctx := context.Background()

	request, err := service.Create(ctx, accessRequestInput("EMP050"))
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, request.Status)

	_, err = service.Create(ctx, accessRequestInput("EMP050"))
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestAccessRequestReview(t *testing.T) {
	service, _ := newAccessRequestService()
	manager := model.Identity{UserID: uuid.New(), EmployeeID: "EMP010", Role: model.RoleQCManager, Department: "qc"}
	chemist := chemistIdentity("EMP001")
	ctx := context.Background()

	request, err := service.Create(ctx, accessRequestInput("EMP050"))
	require.NoError(t, err)

	_, err = service.List(ctx, chemist)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	listed, err := service.List(ctx, manager)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = service.UpdateStatus(ctx, request.ID, "approved", chemist)
	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))

	approved, err := service.UpdateStatus(ctx, request.ID, "approved", manager)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, approved.Status)

	// Terminal.
	_, err = service.UpdateStatus(ctx, request.ID, "rejected", manager)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))

	_, err = service.UpdateStatus(ctx, uuid.New(), "approved", manager)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
