package razorpay

import (
	"context"
	"errors"
	"fmt"

	rzp "github.com/razorpay/razorpay-go"

	"github.com/baechuer/expense-tracker/internal/application/billing"
)

// DefaultTotalCount is the number of billing cycles requested per subscription.
const DefaultTotalCount = 12

// creator matches the Create method of the razorpay-go resources.
type creator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client adapts razorpay-go to billing.PaymentProvider.
type Client struct {
	customers     creator
	subscriptions creator
	totalCount    int
}

var _ billing.PaymentProvider = (*Client)(nil)

func New(keyID, keySecret string) *Client {
	c := rzp.NewClient(keyID, keySecret)
	return &Client{
		customers:     c.Customer,
		subscriptions: c.Subscription,
		totalCount:    DefaultTotalCount,
	}
}

func (c *Client) CreateCustomer(ctx context.Context, name, email string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	res, err := c.customers.Create(map[string]interface{}{
		"name":  name,
		"email": email,
		// return the existing customer instead of failing on duplicate email
		"fail_existing": "0",
	}, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay create customer: %w", err)
	}
	id := stringField(res, "id")
	if id == "" {
		return "", errors.New("razorpay create customer: response missing id")
	}
	return id, nil
}

func (c *Client) CreateSubscription(ctx context.Context, planID, customerID string) (billing.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return billing.Subscription{}, err
	}
	res, err := c.subscriptions.Create(map[string]interface{}{
		"plan_id":         planID,
		"customer_id":     customerID,
		"customer_notify": 1,
		"total_count":     c.totalCount,
	}, nil)
	if err != nil {
		return billing.Subscription{}, fmt.Errorf("razorpay create subscription: %w", err)
	}
	sub := billing.Subscription{ID: stringField(res, "id"), Status: stringField(res, "status")}
	if sub.ID == "" {
		return billing.Subscription{}, errors.New("razorpay create subscription: response missing id")
	}
	return sub, nil
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
