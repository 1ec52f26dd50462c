package service

import (
	"context"

	"labqc/internal/model"
	"labqc/internal/repository"
)

// DashboardSummary holds the per-caller counters shown on the landing
// dashboard.
type DashboardSummary struct {
	SampleCount     int64 `json:"sample_count"`
	TestResultCount int64 `json:"test_result_count"`
}

// DashboardService aggregates the landing-page counters. The sample count
// follows the listing visibility rule (oversight roles count everything);
// the test-result count is always the caller's own entries.
type DashboardService interface {
	Summary(ctx context.Context, caller model.Identity) (*DashboardSummary, error)
}

type dashboardService struct {
	samples repository.SampleRepository
	tests   repository.TestResultRepository
}

func NewDashboardService(samples repository.SampleRepository, tests repository.TestResultRepository) DashboardService {
	return &dashboardService{samples: samples, tests: tests}
}

func (s *dashboardService) Summary(ctx context.Context, caller model.Identity) (*DashboardSummary, error) {
	filter := repository.SampleFilter{}
	if !caller.Role.In(model.OversightTier) {
		filter.AssignedTo = caller.EmployeeID
	}

	// Count via a single-page listing; only the total is used.
	_, sampleCount, err := s.samples.List(ctx, filter, 1, 1)
	if err != nil {
		return nil, err
	}

	testCount, err := s.tests.CountByUser(ctx, caller.EmployeeID)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{SampleCount: sampleCount, TestResultCount: testCount}, nil
}
