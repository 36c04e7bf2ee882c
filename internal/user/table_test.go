package user

import (
	"context"
	"errors"
	"testing"

	"pawmart_web/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// MockAdminAPI is a mock type for AdminAPI
type MockAdminAPI struct {
	mock.Mock
}

func (m *MockAdminAPI) ListUsers(ctx context.Context) ([]domain.ApplicationUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApplicationUser), args.Error(1)
}

func (m *MockAdminAPI) UpdateRole(ctx context.Context, email string, role domain.Role) (*domain.ApplicationUser, error) {
	args := m.Called(ctx, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApplicationUser), args.Error(1)
}

type TableTestSuite struct {
	suite.Suite
	api   *MockAdminAPI
	table *Table
}

func (s *TableTestSuite) SetupTest() {
	s.api = new(MockAdminAPI)
	s.table = NewTable(s.api, zap.NewNop())
	s.api.On("ListUsers", mock.Anything).Return([]domain.ApplicationUser{
		{Email: "ann@example.com", Name: "Ann", Role: domain.RoleAdmin},
		{Email: "bob@example.com", Name: "Bob", Role: domain.RoleUser},
	}, nil).Once()
	_, err := s.table.Load(context.Background())
	s.Require().NoError(err)
}

func (s *TableTestSuite) TestToggleRole_FailureLeavesTableUnchanged() {
	before := s.table.Users()
	s.api.On("UpdateRole", mock.Anything, "bob@example.com", domain.RoleAdmin).Return(nil, errors.New("network down"))

	row, err := s.table.ToggleRole(context.Background(), "bob@example.com")
	s.Error(err)
	s.Equal(domain.RoleUser, row.Role)
	s.Equal(before, s.table.Users())
}

func (s *TableTestSuite) TestToggleRole_AckFlipsRole() {
	s.api.On("UpdateRole", mock.Anything, "bob@example.com", domain.RoleAdmin).Return(nil, nil)

	row, err := s.table.ToggleRole(context.Background(), "bob@example.com")
	s.Require().NoError(err)
	s.Equal(domain.RoleAdmin, row.Role)
	s.Equal(domain.RoleAdmin, s.table.Users()[1].Role)
}

func (s *TableTestSuite) TestToggleRole_DemotesAdminUsingServerRecord() {
	server := &domain.ApplicationUser{Email: "ann@example.com", Name: "Ann B", Role: domain.RoleUser}
	s.api.On("UpdateRole", mock.Anything, "ann@example.com", domain.RoleUser).Return(server, nil)

	row, err := s.table.ToggleRole(context.Background(), "ANN@example.com")
	s.Require().NoError(err)
	s.Equal(*server, row)
	s.Equal("Ann B", s.table.Users()[0].Name)
}

func (s *TableTestSuite) TestToggleRole_UnknownEmail() {
	_, err := s.table.ToggleRole(context.Background(), "zed@example.com")
	s.ErrorIs(err, ErrUnknownUser)
	s.api.AssertNotCalled(s.T(), "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestTableTestSuite(t *testing.T) {
	suite.Run(t, new(TableTestSuite))
}

func TestLoad_FailureEmptiesTable(t *testing.T) {
	api := new(MockAdminAPI)
	api.On("ListUsers", mock.Anything).Return(nil, errors.New("boom"))

	table := NewTable(api, zap.NewNop())
	users, err := table.Load(context.Background())
	require.Error(t, err)
	assert.Empty(t, users)
	assert.Empty(t, table.Users())
}
