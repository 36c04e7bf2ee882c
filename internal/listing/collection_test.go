package listing

import (
	"context"
	"errors"
	"testing"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/common"
	"pawmart_web/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockMutationAPI is a mock type for MutationAPI
type MockMutationAPI struct {
	mock.Mock
}

func (m *MockMutationAPI) ListListings(ctx context.Context, q apiclient.ListingQuery) ([]domain.Listing, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockMutationAPI) CreateListing(ctx context.Context, in apiclient.ListingInput) (*domain.Listing, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockMutationAPI) UpdateListing(ctx context.Context, id string, in apiclient.ListingInput) (*domain.Listing, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockMutationAPI) DeleteListing(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

const owner = "ann@example.com"

func ownedListings() []domain.Listing {
	return []domain.Listing{
		{ID: "1", Name: "Rex", Category: domain.CategoryPets, Quantity: 1, Location: "NY", Description: "Good dog", Image: "https://img/rex.png", Date: "2024-05-01", Email: owner},
		{ID: "2", Name: "Bowl", Category: domain.CategoryAccessories, Price: decimal.NewFromInt(10), Quantity: 3, Location: "LA", Description: "Steel", Image: "https://img/bowl.png", Date: "2024-05-02", Email: owner},
	}
}

func loadedCollection(t *testing.T) (*Collection, *MockMutationAPI) {
	api := new(MockMutationAPI)
	api.On("ListListings", mock.Anything, apiclient.ListingQuery{Email: owner}).Return(ownedListings(), nil).Once()
	c := NewCollection(api, zap.NewNop())
	_, err := c.Load(context.Background(), owner)
	require.NoError(t, err)
	return c, api
}

func validForm() Form {
	return Form{
		Name:        "Kibble",
		Category:    domain.CategoryPetFood,
		Price:       decimal.NewFromFloat(19.99),
		Quantity:    2,
		Location:    "Reno",
		Description: "Dry food",
		Image:       "https://img/kibble.png",
		Date:        "2024-05-03",
	}
}

func TestCreate_ValidationFieldMessages(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *Form)
		field   string
		message string
	}{
		{"missing name", func(f *Form) { f.Name = "  " }, "name", "Name is required."},
		{"bad image", func(f *Form) { f.Image = "not a url" }, "image", "Image must be a valid URL."},
		{"negative price", func(f *Form) { f.Price = decimal.NewFromInt(-1) }, "price", "Price cannot be negative."},
		{"zero quantity", func(f *Form) { f.Quantity = 0 }, "quantity", "Quantity must be at least 1."},
		{"unknown category", func(f *Form) { f.Category = "Reptiles" }, "category", "Please select a valid category."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := new(MockMutationAPI)
			c := NewCollection(api, zap.NewNop())
			f := validForm()
			tc.mutate(&f)

			_, err := c.Create(context.Background(), owner, f)
			apiErr, ok := common.IsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
			assert.Equal(t, tc.message, apiErr.Message)
			assert.Contains(t, apiErr.Details, tc.field)
			api.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_PetsLockAppliedToPayload(t *testing.T) {
	api := new(MockMutationAPI)
	api.On("CreateListing", mock.Anything, mock.MatchedBy(func(in apiclient.ListingInput) bool {
		return in.Price.IsZero() && in.Quantity == 1 && in.Email == owner
	})).Return(&domain.Listing{ID: "9", Name: "Milo"}, nil)

	c := NewCollection(api, zap.NewNop())
	f := validForm()
	f.Name = "Milo"
	f.Category = domain.CategoryPets
	f.Price = decimal.NewFromInt(-50)
	f.Quantity = 0

	created, err := c.Create(context.Background(), owner, f)
	require.NoError(t, err)
	assert.Equal(t, "9", created.ID)
	api.AssertExpectations(t)
}

func TestEdit_MergesServerResponseAtKey(t *testing.T) {
	c, api := loadedCollection(t)
	server := domain.Listing{ID: "2", Name: "Bowl XL", Category: domain.CategoryAccessories, Price: decimal.NewFromInt(12), Quantity: 3, Email: owner}
	api.On("UpdateListing", mock.Anything, "2", mock.Anything).Return(&server, nil)

	f, err := c.EditForm("2")
	require.NoError(t, err)
	f.Name = "Bowl XL"

	merged, err := c.Edit(context.Background(), "2", f)
	require.NoError(t, err)
	assert.Equal(t, server, merged)

	items := c.Items()
	assert.Equal(t, []string{"1", "2"}, ids(items), "position is kept")
	assert.Equal(t, "Bowl XL", items[1].Name)
}

func TestEdit_AckWithoutDocumentMergesSubmittedFields(t *testing.T) {
	c, api := loadedCollection(t)
	api.On("UpdateListing", mock.Anything, "1", mock.MatchedBy(func(in apiclient.ListingInput) bool {
		return in.Price.IsZero() && in.Quantity == 1
	})).Return(nil, nil)

	f, err := c.EditForm("1")
	require.NoError(t, err)
	f.Description = "Very good dog"
	f.Price = decimal.NewFromInt(100)
	f.Quantity = 7

	merged, err := c.Edit(context.Background(), "1", f)
	require.NoError(t, err)
	assert.Equal(t, "Very good dog", merged.Description)
	assert.True(t, merged.Price.IsZero())
	assert.Equal(t, 1, merged.Quantity)
	assert.Equal(t, "Very good dog", c.Items()[0].Description)
}

func TestEdit_SkipsNumericFloorChecks(t *testing.T) {
	c, api := loadedCollection(t)
	api.On("UpdateListing", mock.Anything, "2", mock.Anything).Return(nil, nil)

	f, err := c.EditForm("2")
	require.NoError(t, err)
	f.Quantity = 0

	_, err = c.Edit(context.Background(), "2", f)
	assert.NoError(t, err)
}

func TestEdit_UnknownIDAndFailureLeaveListUnchanged(t *testing.T) {
	c, api := loadedCollection(t)

	_, err := c.Edit(context.Background(), "404", validForm())
	assert.ErrorIs(t, err, ErrNotInCollection)

	api.On("UpdateListing", mock.Anything, "2", mock.Anything).Return(nil, errors.New("boom"))
	f, _ := c.EditForm("2")
	f.Name = "Changed"
	_, err = c.Edit(context.Background(), "2", f)
	assert.Error(t, err)
	assert.Equal(t, ownedListings(), c.Items())
}

func TestDelete_TwoStepFlow(t *testing.T) {
	c, api := loadedCollection(t)

	_, err := c.ConfirmDelete(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingDelete)

	target, err := c.RequestDelete("1")
	require.NoError(t, err)
	assert.Equal(t, "Rex", target.Name)
	require.NotNil(t, c.PendingDelete())

	api.On("DeleteListing", mock.Anything, "1").Return(nil)
	deleted, err := c.ConfirmDelete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", deleted.ID)
	assert.Equal(t, []string{"2"}, ids(c.Items()))
	assert.Nil(t, c.PendingDelete())
}

func TestDelete_FailureLeavesListUnchanged(t *testing.T) {
	c, api := loadedCollection(t)
	api.On("DeleteListing", mock.Anything, "2").Return(&apiclient.BackendError{Status: 500, Message: "db offline"})

	_, err := c.RequestDelete("2")
	require.NoError(t, err)
	_, err = c.ConfirmDelete(context.Background())
	require.Error(t, err)
	assert.Equal(t, "db offline", apiclient.UserMessage(err, "Failed to delete listing."))
	assert.Equal(t, ownedListings(), c.Items())
	assert.NotNil(t, c.PendingDelete(), "dialog stays open for a retry")
}

func TestDelete_Cancel(t *testing.T) {
	c, api := loadedCollection(t)
	_, err := c.RequestDelete("2")
	require.NoError(t, err)
	c.CancelDelete()
	assert.Nil(t, c.PendingDelete())
	api.AssertNotCalled(t, "DeleteListing", mock.Anything, mock.Anything)
}

func TestLoad_FailureEmptiesList(t *testing.T) {
	c, api := loadedCollection(t)
	api.On("ListListings", mock.Anything, apiclient.ListingQuery{Email: owner}).Return(nil, errors.New("down"))

	items, err := c.Load(context.Background(), owner)
	assert.Error(t, err)
	assert.Empty(t, items)
	assert.Empty(t, c.Items())
}
