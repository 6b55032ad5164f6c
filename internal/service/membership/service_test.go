package membership

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/promptdeck/promptdeck/internal/model"
)

type stubCustomers struct {
	rows map[string]*model.Customer
	err  error
}

func (s *stubCustomers) Create(context.Context, model.Customer) error { return errors.New("unused") }

func (s *stubCustomers) GetByUserID(_ context.Context, userID string) (*model.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows[userID], nil
}

func (s *stubCustomers) UpdateByUserID(context.Context, string, model.CustomerPatch) (*model.Customer, error) {
	return nil, errors.New("unused")
}

func (s *stubCustomers) UpdateByStripeCustomerID(context.Context, string, model.CustomerPatch) (*model.Customer, error) {
	return nil, errors.New("unused")
}

func TestGetReturnsStoredMembership(t *testing.T) {
	svc := New(&stubCustomers{rows: map[string]*model.Customer{
		"user_pro":  {UserID: "user_pro", Membership: model.MembershipPro},
		"user_free": {UserID: "user_free", Membership: model.MembershipFree},
	}}, nil, time.Minute, nil)

	assert.Equal(t, model.MembershipPro, svc.Get(context.Background(), "user_pro"))
	assert.Equal(t, model.MembershipFree, svc.Get(context.Background(), "user_free"))
	assert.True(t, svc.IsPro(context.Background(), "user_pro"))
	assert.False(t, svc.IsPro(context.Background(), "user_free"))
}

func TestGetMissingRowReadsAsFree(t *testing.T) {
	svc := New(&stubCustomers{rows: map[string]*model.Customer{}}, nil, time.Minute, nil)

	assert.Equal(t, model.MembershipFree, svc.Get(context.Background(), "user_unknown"))
}

func TestGetStorageErrorReadsAsFree(t *testing.T) {
	// availability problems degrade reads, they never surface as errors
	svc := New(&stubCustomers{err: errors.New("mysql down")}, nil, time.Minute, nil)

	assert.Equal(t, model.MembershipFree, svc.Get(context.Background(), "user_pro"))
	assert.False(t, svc.IsPro(context.Background(), "user_pro"))
}

func TestGetEmptyUserIDReadsAsFree(t *testing.T) {
	svc := New(&stubCustomers{}, nil, time.Minute, nil)

	assert.Equal(t, model.MembershipFree, svc.Get(context.Background(), ""))
}
