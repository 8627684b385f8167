package handler_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mayankshukla2904/nagrik-backend/internal/models"
	"github.com/mayankshukla2904/nagrik-backend/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveUserIfNotExists(telegramID int64) (*models.User, error) {
	args := m.Called(telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) UpdateUserLanguage(userID string, language string) error {
	args := m.Called(userID, language)
	return args.Error(0)
}

func (m *MockStorage) UpdateUserDistrict(userID string, district string) error {
	args := m.Called(userID, district)
	return args.Error(0)
}

func (m *MockStorage) SaveComplaint(complaint *models.Complaint) error {
	args := m.Called(complaint)
	return args.Error(0)
}

func (m *MockStorage) GetComplaintByTrackingCode(code string) (*models.Complaint, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) GetComplaintsByReporter(reporterID string, limit int) ([]models.Complaint, error) {
	args := m.Called(reporterID, limit)
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) FindOpenSimilar(ctx context.Context, category, district string, limit int) ([]models.Complaint, error) {
	args := m.Called(ctx, category, district, limit)
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) ListComplaints(filter storage.ComplaintFilter) ([]models.Complaint, int64, error) {
	args := m.Called(filter)
	return args.Get(0).([]models.Complaint), args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) ReinforceComplaint(ctx context.Context, trackingCode, supporterID string) (*models.Complaint, error) {
	args := m.Called(ctx, trackingCode, supporterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) UpdateComplaintStatus(trackingCode, toStatus, note, actor string) (*models.Complaint, error) {
	args := m.Called(trackingCode, toStatus, note, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) AssignDepartment(trackingCode, department, actor string) (*models.Complaint, error) {
	args := m.Called(trackingCode, department, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) AllowSubmission(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) StatusCounts() (map[string]int64, error) {
	args := m.Called()
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockStorage) CategoryCounts() ([]storage.GroupCount, error) {
	args := m.Called()
	return args.Get(0).([]storage.GroupCount), args.Error(1)
}

func (m *MockStorage) DistrictCounts() ([]storage.GroupCount, error) {
	args := m.Called()
	return args.Get(0).([]storage.GroupCount), args.Error(1)
}

func (m *MockStorage) TrendingComplaints(limit int) ([]models.Complaint, error) {
	args := m.Called(limit)
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) ExportComplaints() ([]models.Complaint, error) {
	args := m.Called()
	return args.Get(0).([]models.Complaint), args.Error(1)
}
