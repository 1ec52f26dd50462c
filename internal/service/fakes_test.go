package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"labqc/internal/model"
	"labqc/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the storage-level contracts the
// services rely on: gorm.ErrRecordNotFound on misses and
// gorm.ErrDuplicatedKey on unique-index violations.

type fakeSampleRepo struct {
	mu      sync.Mutex
	samples map[string]*model.Sample // keyed by batch number
}

func newFakeSampleRepo() *fakeSampleRepo {
	return &fakeSampleRepo{samples: make(map[string]*model.Sample)}
}

func (f *fakeSampleRepo) Create(_ context.Context, sample *model.Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.samples[sample.BatchNumber]; exists {
		return gorm.ErrDuplicatedKey
	}
	if sample.ID == uuid.Nil {
		sample.ID = uuid.New()
	}
	clone := *sample
	f.samples[sample.BatchNumber] = &clone
	return nil
}

func (f *fakeSampleRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.samples {
		if s.ID == id {
			clone := *s
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSampleRepo) GetByBatchNumber(_ context.Context, batchNumber string) (*model.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.samples[batchNumber]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSampleRepo) List(_ context.Context, filter repository.SampleFilter, page, limit int) ([]model.Sample, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []model.Sample
	for _, s := range f.samples {
		if filter.SampleType != "" && s.SampleType != filter.SampleType {
			continue
		}
		if filter.AssignedTo != "" && s.AssignedTo != filter.AssignedTo {
			continue
		}
		matched = append(matched, *s)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CollectedAt.After(matched[j].CollectedAt)
	})
	total := int64(len(matched))

	offset := (page - 1) * limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeSampleRepo) LatestCollected(_ context.Context, assignedTo string) (*model.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.Sample
	for _, s := range f.samples {
		if assignedTo != "" && s.AssignedTo != assignedTo {
			continue
		}
		if latest == nil || s.CollectedAt.After(latest.CollectedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *latest
	return &clone, nil
}

func (f *fakeSampleRepo) MaxBatchSequence(_ context.Context, prefix string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for batch := range f.samples {
		if !strings.HasPrefix(batch, prefix) {
			continue
		}
		seq, err := strconv.Atoi(strings.TrimPrefix(batch, prefix))
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max, nil
}

func (f *fakeSampleRepo) Update(_ context.Context, sample *model.Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *sample
	f.samples[sample.BatchNumber] = &clone
	return nil
}

func (f *fakeSampleRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for batch, s := range f.samples {
		if s.ID == id {
			delete(f.samples, batch)
			return nil
		}
	}
	return nil
}

type fakeTestResultRepo struct {
	mu      sync.Mutex
	results []model.TestResult
}

func newFakeTestResultRepo() *fakeTestResultRepo {
	return &fakeTestResultRepo{}
}

func (f *fakeTestResultRepo) Create(_ context.Context, result *model.TestResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.results {
		if r.SampleBatchNumber == result.SampleBatchNumber && r.Parameter == result.Parameter {
			return gorm.ErrDuplicatedKey
		}
	}
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	f.results = append(f.results, *result)
	return nil
}

func (f *fakeTestResultRepo) GetByID(_ context.Context, id uuid.UUID) (*model.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.results {
		if r.ID == id {
			clone := r
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTestResultRepo) ListBySample(_ context.Context, batchNumber string) ([]model.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []model.TestResult
	for _, r := range f.results {
		if r.SampleBatchNumber == batchNumber {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].EnteredAt.After(matched[j].EnteredAt)
	})
	return matched, nil
}

func (f *fakeTestResultRepo) ListByUser(_ context.Context, employeeID string, page, limit int) ([]model.TestResult, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []model.TestResult
	for _, r := range f.results {
		if r.EnteredBy == employeeID {
			matched = append(matched, r)
		}
	}
	total := int64(len(matched))
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeTestResultRepo) ExistsForParameter(_ context.Context, batchNumber string, parameter model.TestParameter) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.results {
		if r.SampleBatchNumber == batchNumber && r.Parameter == parameter {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTestResultRepo) CountByUser(_ context.Context, employeeID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.results {
		if r.EnteredBy == employeeID {
			count++
		}
	}
	return count, nil
}

func (f *fakeTestResultRepo) Update(_ context.Context, result *model.TestResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.results {
		if r.ID == result.ID {
			f.results[i] = *result
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeTestResultRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.results {
		if r.ID == id {
			f.results = append(f.results[:i], f.results[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeTestResultRepo) DeleteBySample(_ context.Context, batchNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.results[:0]
	for _, r := range f.results {
		if r.SampleBatchNumber != batchNumber {
			kept = append(kept, r)
		}
	}
	f.results = kept
	return nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*model.Request
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uuid.UUID]*model.Request)}
}

func (f *fakeRequestRepo) Create(_ context.Context, req *model.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	clone := *req
	f.requests[req.ID] = &clone
	return nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *req
	return &clone, nil
}

func (f *fakeRequestRepo) listByDepartment(match func(*model.Request) bool, page, limit int) ([]model.Request, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []model.Request
	for _, r := range f.requests {
		if match(r) {
			matched = append(matched, *r)
		}
	}
	total := int64(len(matched))
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (f *fakeRequestRepo) ListToQC(_ context.Context, page, limit int) ([]model.Request, int64, error) {
	return f.listByDepartment(func(r *model.Request) bool { return r.ToQC() }, page, limit)
}

func (f *fakeRequestRepo) ListFromQC(_ context.Context, page, limit int) ([]model.Request, int64, error) {
	return f.listByDepartment(func(r *model.Request) bool { return r.FromQC() }, page, limit)
}

func (f *fakeRequestRepo) ListByRequester(_ context.Context, employeeID string) ([]model.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []model.Request
	for _, r := range f.requests {
		if r.RequestedBy == employeeID {
			matched = append(matched, *r)
		}
	}
	return matched, nil
}

func (f *fakeRequestRepo) Update(_ context.Context, req *model.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.requests[req.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *req
	f.requests[req.ID] = &clone
	return nil
}

type fakeAttachmentRepo struct {
	mu          sync.Mutex
	attachments map[uuid.UUID]*model.SampleAttachment
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{attachments: make(map[uuid.UUID]*model.SampleAttachment)}
}

func (f *fakeAttachmentRepo) Create(_ context.Context, attachment *model.SampleAttachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if attachment.ID == uuid.Nil {
		attachment.ID = uuid.New()
	}
	clone := *attachment
	f.attachments[attachment.ID] = &clone
	return nil
}

func (f *fakeAttachmentRepo) GetByID(_ context.Context, id uuid.UUID) (*model.SampleAttachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attachments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *a
	return &clone, nil
}

func (f *fakeAttachmentRepo) ListBySample(_ context.Context, sampleID uuid.UUID) ([]model.SampleAttachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []model.SampleAttachment
	for _, a := range f.attachments {
		if a.SampleID == sampleID {
			matched = append(matched, *a)
		}
	}
	return matched, nil
}

func (f *fakeAttachmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.attachments, id)
	return nil
}

func (f *fakeAttachmentRepo) DeleteBySample(_ context.Context, sampleID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, a := range f.attachments {
		if a.SampleID == sampleID {
			delete(f.attachments, id)
		}
	}
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by employee id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[user.EmployeeID]; exists {
		return gorm.ErrDuplicatedKey
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	f.users[user.EmployeeID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID.String() == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmployeeID(_ context.Context, employeeID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[employeeID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.User
	for _, u := range f.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].EmployeeID < all[j].EmployeeID })
	total := int64(len(all))
	offset := (page - 1) * limit
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *user
	f.users[user.EmployeeID] = &clone
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for employeeID, u := range f.users {
		if u.ID.String() == id {
			delete(f.users, employeeID)
			return nil
		}
	}
	return nil
}

type fakeAccessRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*model.AccessRequest
}

func newFakeAccessRequestRepo() *fakeAccessRequestRepo {
	return &fakeAccessRequestRepo{requests: make(map[uuid.UUID]*model.AccessRequest)}
}

func (f *fakeAccessRequestRepo) Create(_ context.Context, request *model.AccessRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.EmployeeID == request.EmployeeID || r.Email == request.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	clone := *request
	f.requests[request.ID] = &clone
	return nil
}

func (f *fakeAccessRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*model.AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *r
	return &clone, nil
}

func (f *fakeAccessRequestRepo) List(_ context.Context) ([]model.AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.AccessRequest
	for _, r := range f.requests {
		all = append(all, *r)
	}
	return all, nil
}

func (f *fakeAccessRequestRepo) Update(_ context.Context, request *model.AccessRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.requests[request.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *request
	f.requests[request.ID] = &clone
	return nil
}

// fakeTxManager runs the callback directly; the fakes have no transactions.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// fakeNotifier records published events for assertions.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) Publish(kind string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, kind)
}

func (f *fakeNotifier) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}
