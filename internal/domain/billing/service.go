package billing

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stripe/stripe-go/v78"
	portalsession "github.com/stripe/stripe-go/v78/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/customer"
	"github.com/stripe/stripe-go/v78/subscription"
	"google.golang.org/api/iterator"
)

type Config struct {
	SecretKey            string
	WebhookSecret        string
	PriceProMonthly      string
	PriceProYearly       string
	PriceBusinessMonthly string
	PriceBusinessYearly  string
}

func LoadConfig() Config {
	return Config{
		SecretKey:            os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret:        os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PriceProMonthly:      os.Getenv("STRIPE_PRICE_PRO_MONTHLY"),
		PriceProYearly:       os.Getenv("STRIPE_PRICE_PRO_YEARLY"),
		PriceBusinessMonthly: os.Getenv("STRIPE_PRICE_BUSINESS_MONTHLY"),
		PriceBusinessYearly:  os.Getenv("STRIPE_PRICE_BUSINESS_YEARLY"),
	}
}

// Configured reports whether billing can run at all.
func (c Config) Configured() bool { return c.SecretKey != "" }

type Service struct {
	fs     *firestore.Client
	config Config
}

func NewService(fs *firestore.Client, cfg Config) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{fs: fs, config: cfg}
}

func (s *Service) businesses() *firestore.CollectionRef {
	return s.fs.Collection("businesses")
}

func (s *Service) CreateCheckoutSession(ctx context.Context, userUID string, input CreateCheckoutInput) (string, error) {
	input.Trim()

	if input.BusinessID == "" {
		return "", fmt.Errorf("%w: businessId is required", ErrBadRequest)
	}
	if input.Plan != PlanPro && input.Plan != PlanBusiness {
		return "", fmt.Errorf("%w: plan must be 'pro' or 'business'", ErrBadRequest)
	}
	if input.Period != "monthly" && input.Period != "yearly" {
		return "", fmt.Errorf("%w: period must be 'monthly' or 'yearly'", ErrBadRequest)
	}

	bizDoc, err := s.businesses().Doc(input.BusinessID).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: business not found", ErrNotFound)
	}

	bizData := bizDoc.Data()
	companyName, _ := bizData["companyName"].(string)
	stripeCustomerID, _ := bizData["stripeCustomerId"].(string)

	userDoc, _ := s.fs.Collection("users").Doc(userUID).Get(ctx)
	var email string
	if userDoc != nil && userDoc.Exists() {
		email, _ = userDoc.Data()["email"].(string)
	}

	if stripeCustomerID == "" {
		params := &stripe.CustomerParams{
			Email: stripe.String(email),
			Name:  stripe.String(companyName),
			Metadata: map[string]string{
				"businessId": input.BusinessID,
				"userUid":    userUID,
			},
		}
		c, err := customer.New(params)
		if err != nil {
			return "", fmt.Errorf("failed to create customer: %w", err)
		}
		stripeCustomerID = c.ID

		_, err = s.businesses().Doc(input.BusinessID).Set(ctx, map[string]interface{}{
			"stripeCustomerId": stripeCustomerID,
		}, firestore.MergeAll)
		if err != nil {
			log.Printf("failed to save customer id: %v", err)
		}
	}

	var priceID string
	if input.Plan == PlanPro {
		if input.Period == "yearly" {
			priceID = s.config.PriceProYearly
		} else {
			priceID = s.config.PriceProMonthly
		}
	} else {
		if input.Period == "yearly" {
			priceID = s.config.PriceBusinessYearly
		} else {
			priceID = s.config.PriceBusinessMonthly
		}
	}

	if priceID == "" {
		return "", fmt.Errorf("%w: price not configured for %s %s", ErrBadRequest, input.Plan, input.Period)
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(stripeCustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(input.SuccessURL),
		CancelURL:  stripe.String(input.CancelURL),
		Metadata: map[string]string{
			"businessId": input.BusinessID,
			"plan":       input.Plan,
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"businessId": input.BusinessID,
				"plan":       input.Plan,
			},
		},
	}

	session, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session.URL, nil
}

func (s *Service) CreatePortalSession(ctx context.Context, userUID string, input CreatePortalInput) (string, error) {
	input.Trim()

	if input.BusinessID == "" {
		return "", fmt.Errorf("%w: businessId is required", ErrBadRequest)
	}

	bizDoc, err := s.businesses().Doc(input.BusinessID).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: business not found", ErrNotFound)
	}

	stripeCustomerID, _ := bizDoc.Data()["stripeCustomerId"].(string)
	if stripeCustomerID == "" {
		return "", fmt.Errorf("%w: no billing account found", ErrBadRequest)
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(stripeCustomerID),
		ReturnURL: stripe.String(input.ReturnURL),
	}

	session, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}

	return session.URL, nil
}

func (s *Service) GetSubscriptionInfo(ctx context.Context, userUID, businessID string) (*SubscriptionInfo, error) {
	bizDoc, err := s.businesses().Doc(businessID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: business not found", ErrNotFound)
	}

	bizData := bizDoc.Data()

	plan, _ := bizData["plan"].(string)
	if plan == "" {
		plan = PlanFree
	}

	status, _ := bizData["subscriptionStatus"].(string)
	if status == "" {
		status = "none"
	}

	var periodEnd *time.Time
	if pe, ok := bizData["planPeriodEnd"].(time.Time); ok {
		periodEnd = &pe
	}

	cancelAtPeriodEnd, _ := bizData["cancelAtPeriodEnd"].(bool)

	memberCount, _ := s.countMembers(ctx, businessID)
	staffCount := s.countStaff(bizData)
	classCount, _ := s.countClasses(ctx, businessID)
	emailCount, _ := s.countEmailsThisMonth(ctx, userUID)

	limits := GetPlanLimits(plan)

	return &SubscriptionInfo{
		Plan:              plan,
		Status:            status,
		PeriodEnd:         periodEnd,
		CancelAtPeriodEnd: cancelAtPeriodEnd,
		Usage: UsageInfo{
			Members: ResourceUsage{Current: memberCount, Limit: limits.Members},
			Staff:   ResourceUsage{Current: staffCount, Limit: limits.Staff},
			Classes: ResourceUsage{Current: classCount, Limit: limits.Classes},
			Emails:  ResourceUsage{Current: emailCount, Limit: limits.EmailsPerMonth},
		},
	}, nil
}

func (s *Service) CancelSubscription(ctx context.Context, userUID, businessID string) error {
	return s.setCancelAtPeriodEnd(ctx, businessID, true)
}

func (s *Service) ResumeSubscription(ctx context.Context, userUID, businessID string) error {
	return s.setCancelAtPeriodEnd(ctx, businessID, false)
}

func (s *Service) setCancelAtPeriodEnd(ctx context.Context, businessID string, cancel bool) error {
	bizDoc, err := s.businesses().Doc(businessID).Get(ctx)
	if err != nil {
		return fmt.Errorf("%w: business not found", ErrNotFound)
	}

	subscriptionID, _ := bizDoc.Data()["subscriptionId"].(string)
	if subscriptionID == "" {
		return fmt.Errorf("%w: no subscription found", ErrBadRequest)
	}

	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(cancel),
	}
	if _, err := subscription.Update(subscriptionID, params); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	_, err = s.businesses().Doc(businessID).Set(ctx, map[string]interface{}{
		"cancelAtPeriodEnd": cancel,
	}, firestore.MergeAll)
	if err != nil {
		log.Printf("failed to update cancelAtPeriodEnd: %v", err)
	}

	return nil
}

// CheckPlanLimit rejects creating another member, staff entry or class when
// the business's plan is at capacity. Unknown businesses are allowed through
// so billing outages never block day-to-day work.
func (s *Service) CheckPlanLimit(ctx context.Context, businessID, resource string) error {
	bizDoc, err := s.businesses().Doc(businessID).Get(ctx)
	if err != nil {
		log.Printf("CheckPlanLimit: business not found %s, allowing", businessID)
		return nil
	}

	bizData := bizDoc.Data()
	plan, _ := bizData["plan"].(string)
	if plan == "" {
		plan = PlanFree
	}

	limits := GetPlanLimits(plan)
	var limit int
	var current int

	switch resource {
	case "member":
		limit = limits.Members
		current, _ = s.countMembers(ctx, businessID)
	case "staff":
		limit = limits.Staff
		current = s.countStaff(bizData)
	case "class":
		limit = limits.Classes
		current, _ = s.countClasses(ctx, businessID)
	default:
		return nil
	}

	if limit == -1 {
		return nil
	}

	if current >= limit {
		return fmt.Errorf("%w: %s limit reached (%d/%d). Upgrade your plan to add more.",
			ErrLimitReached, resource, current, limit)
	}

	return nil
}

// CheckEmailQuota enforces the monthly outbound email allowance of the plan
// attached to the caller's business.
func (s *Service) CheckEmailQuota(ctx context.Context, userUID, businessID string) error {
	plan := PlanFree
	if businessID != "" {
		if bizDoc, err := s.businesses().Doc(businessID).Get(ctx); err == nil {
			if p, _ := bizDoc.Data()["plan"].(string); p != "" {
				plan = p
			}
		}
	}

	limit := GetPlanLimits(plan).EmailsPerMonth
	if limit == -1 {
		return nil
	}

	current, err := s.countEmailsThisMonth(ctx, userUID)
	if err != nil {
		log.Printf("CheckEmailQuota: count failed for %s, allowing: %v", userUID, err)
		return nil
	}
	if current >= limit {
		return fmt.Errorf("%w: monthly email limit reached (%d/%d). Upgrade your plan to send more.",
			ErrLimitReached, current, limit)
	}
	return nil
}

func (s *Service) GetPlanFromPriceID(priceID string) string {
	switch priceID {
	case s.config.PriceProMonthly, s.config.PriceProYearly:
		return PlanPro
	case s.config.PriceBusinessMonthly, s.config.PriceBusinessYearly:
		return PlanBusiness
	default:
		return PlanFree
	}
}

func (s *Service) countMembers(ctx context.Context, businessID string) (int, error) {
	iter := s.fs.Collection("gymMembers").
		Where("businessId", "==", businessID).
		Where("status", "in", []string{"trial", "active"}).
		Documents(ctx)
	return countDocs(iter)
}

func (s *Service) countStaff(bizData map[string]interface{}) int {
	staff, _ := bizData["staffMembers"].([]interface{})
	return len(staff)
}

func (s *Service) countClasses(ctx context.Context, businessID string) (int, error) {
	iter := s.fs.Collection("classes").
		Where("businessId", "==", businessID).
		Where("active", "==", true).
		Documents(ctx)
	return countDocs(iter)
}

func (s *Service) countEmailsThisMonth(ctx context.Context, userUID string) (int, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	iter := s.fs.Collection("sentEmails").
		Where("userUid", "==", userUID).
		Where("deliveryStatus", "==", "sent").
		Where("sentAt", ">=", monthStart).
		Documents(ctx)
	return countDocs(iter)
}

func countDocs(iter *firestore.DocumentIterator) (int, error) {
	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}
