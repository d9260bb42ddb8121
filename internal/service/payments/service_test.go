package payments_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/matrimony-core/internal/app/apptest"
	"github.com/oggyb/matrimony-core/internal/db"
	"github.com/oggyb/matrimony-core/internal/domain"
	"github.com/oggyb/matrimony-core/internal/repository"
	"github.com/oggyb/matrimony-core/internal/rpc"
	"github.com/oggyb/matrimony-core/internal/service/payments"
	"github.com/oggyb/matrimony-core/internal/service/views"
)

const admin = "1000"

func setupService(t *testing.T) (*payments.Service, *apptest.Env) {
	t.Helper()
	env := apptest.New(t)
	return payments.NewPaymentService(env.App), env
}

func reload(t *testing.T, env *apptest.Env, id uint64) *db.Payment {
	t.Helper()
	p, err := repository.NewPaymentRepository(env.App.DB).Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	user := env.AddMember(t, apptest.Member{Name: "asha"})

	resp, err := svc.Checkout(ctx, &rpc.CheckoutRequest{UserID: rpc.FormatID(user), PackageType: "Gold"})
	require.NoError(t, err)
	assert.Equal(t, "1999.00", resp.Payment.Amount)
	assert.EqualValues(t, 60, resp.Payment.ViewsLimit)
	assert.Equal(t, domain.PackageGold, resp.Payment.PackageType)
	assert.Equal(t, string(domain.PaymentPending), resp.Payment.Status)
	assert.Len(t, resp.Payment.Reference, 36)

	addon, err := svc.Checkout(ctx, &rpc.CheckoutRequest{UserID: rpc.FormatID(user), PackageType: domain.AddonExtraViews10})
	require.NoError(t, err)
	assert.Equal(t, "199.00", addon.Payment.Amount)
	assert.EqualValues(t, 10, addon.Payment.ViewsLimit)
	assert.NotEqual(t, resp.Payment.Reference, addon.Payment.Reference)
}

func TestCheckoutRefusals(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	user := rpc.FormatID(env.AddMember(t, apptest.Member{Name: "asha"}))

	tests := []struct {
		name string
		req  *rpc.CheckoutRequest
		code codes.Code
	}{
		{"free package", &rpc.CheckoutRequest{UserID: user, PackageType: domain.PackageFree}, codes.InvalidArgument},
		{"unknown item", &rpc.CheckoutRequest{UserID: user, PackageType: "diamond"}, codes.InvalidArgument},
		{"bad user id", &rpc.CheckoutRequest{UserID: "x", PackageType: domain.PackageGold}, codes.InvalidArgument},
		{"missing member", &rpc.CheckoutRequest{UserID: "777", PackageType: domain.PackageGold}, codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Checkout(ctx, tt.req)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestSubmitScreenshot(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	user := env.AddMember(t, apptest.Member{Name: "asha"})
	p := env.AddPayment(t, user, domain.PackageSilver, domain.PaymentPending)

	resp, err := svc.SubmitScreenshot(ctx, &rpc.SubmitScreenshotRequest{Reference: p.Reference, ScreenshotRef: "uploads/tx-1.png"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentUnderReview), resp.Payment.Status)
	assert.Equal(t, "uploads/tx-1.png", resp.Payment.ScreenshotRef)

	_, err = svc.SubmitScreenshot(ctx, &rpc.SubmitScreenshotRequest{Reference: p.Reference})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.SubmitScreenshot(ctx, &rpc.SubmitScreenshotRequest{Reference: "nope", ScreenshotRef: "x"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	done := env.AddPayment(t, user, domain.PackageGold, domain.PaymentAccepted)
	_, err = svc.SubmitScreenshot(ctx, &rpc.SubmitScreenshotRequest{Reference: done.Reference, ScreenshotRef: "x"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestGatewayCallback(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	user := env.AddMember(t, apptest.Member{Name: "asha"})

	ok := env.AddPayment(t, user, domain.PackageGold, domain.PaymentPending)
	resp, err := svc.GatewayCallback(ctx, &rpc.GatewayCallbackRequest{Reference: ok.Reference, Success: true, Amount: "1999.00"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentUnderReview), resp.Payment.Status)

	declined := env.AddPayment(t, user, domain.PackageGold, domain.PaymentPending)
	resp, err = svc.GatewayCallback(ctx, &rpc.GatewayCallbackRequest{Reference: declined.Reference, Success: false})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentRejected), resp.Payment.Status)
	assert.Equal(t, domain.GatewayDeclinedReason, resp.Payment.RejectionReason)

	// a rejected record is terminal for the gateway
	_, err = svc.GatewayCallback(ctx, &rpc.GatewayCallbackRequest{Reference: declined.Reference, Success: true})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

// TestReviewAcceptPackage checks the acceptance path adds the payment's grant
// to the current limit and unblocks the viewer.
func TestReviewAcceptPackage(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	user := env.AddMember(t, apptest.Member{Name: "asha", ViewsLimit: 5})
	target := env.AddMember(t, apptest.Member{Name: "target"})
	p := env.AddPayment(t, user, domain.PackageGold, domain.PaymentUnderReview)

	viewSvc := views.NewViewService(env.App)
	_, err := viewSvc.Record(ctx, user, target)
	_, blocked := domain.IsPaymentBlocked(err)
	require.True(t, blocked)

	resp, err := svc.ReviewPayment(ctx, &rpc.ReviewPaymentRequest{
		PaymentID: rpc.FormatID(p.ID), Action: "accept", ReviewerUserID: admin,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentAccepted), resp.Payment.Status)
	assert.Equal(t, admin, resp.Payment.ReviewedBy)
	assert.Equal(t, env.Clock.Unix(), resp.Payment.ReviewedAtUnix)

	mod := env.Moderation(t, user)
	assert.Equal(t, domain.PackageGold, mod.SubscriptionStatus)
	assert.Equal(t, 65, mod.ViewsLimit)

	_, err = viewSvc.Record(ctx, user, target)
	require.NoError(t, err)
}

// TestReviewReacceptDoesNotGrantTwice re-reviews a terminal record: only
// the reviewer stamp changes.
func TestReviewReacceptDoesNotGrantTwice(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	user := env.AddMember(t, apptest.Member{Name: "asha"})
	p := env.AddPayment(t, user, domain.PackageSilver, domain.PaymentUnderReview)

	_, err := svc.Review(ctx, p.ID, domain.ReviewAccept, "", 1)
	require.NoError(t, err)
	require.Equal(t, 25, env.Moderation(t, user).ViewsLimit)

	env.Clock = env.Clock.Add(time.Hour)
	again, err := svc.Review(ctx, p.ID, domain.ReviewReject, "changed my mind", 2)
	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentAccepted), again.PaymentStatus)
	assert.Nil(t, again.RejectionReason)

	stored := reload(t, env, p.ID)
	require.NotNil(t, stored.ReviewedBy)
	assert.EqualValues(t, 2, *stored.ReviewedBy)
	assert.Equal(t, env.Clock.Unix(), stored.ReviewedAt.Unix())
	assert.Equal(t, 25, env.Moderation(t, user).ViewsLimit)
}

func TestReviewAcceptAddons(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	user := env.AddMember(t, apptest.Member{Name: "asha", ViewsLimit: 60})
	require.NoError(t, env.App.DB.Model(&db.Moderation{}).Where("user_id = ?", user).
		Update("subscription_status", domain.PackageGold).Error)

	for _, item := range []string{domain.AddonBoostProfile, domain.AddonVerifiedBadge, domain.AddonExtraViews25} {
		p := env.AddPayment(t, user, item, domain.PaymentUnderReview)
		_, err := svc.Review(ctx, p.ID, domain.ReviewAccept, "", 1)
		require.NoError(t, err, item)
	}

	mod := env.Moderation(t, user)
	assert.Equal(t, domain.PackageGold, mod.SubscriptionStatus, "add-ons keep the package")
	assert.Equal(t, 85, mod.ViewsLimit)
	assert.True(t, mod.VerifiedBadge)
	assert.True(t, mod.BoostProfile)
	require.NotNil(t, mod.BoostExpiresAt)
	assert.Equal(t, env.Clock.Add(30*24*time.Hour).Unix(), mod.BoostExpiresAt.Unix())

	version, err := env.Redis.Get("profiles:featured:version")
	require.NoError(t, err)
	assert.Equal(t, "3", version)
}

// TestReviewRejectWithoutReason is refused and leaves the record under review.
func TestReviewRejectWithoutReason(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	user := env.AddMember(t, apptest.Member{Name: "asha"})
	p := env.AddPayment(t, user, domain.PackageGold, domain.PaymentUnderReview)

	_, err := svc.ReviewPayment(ctx, &rpc.ReviewPaymentRequest{
		PaymentID: rpc.FormatID(p.ID), Action: "reject", Reason: "   ", ReviewerUserID: admin,
	})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	stored := reload(t, env, p.ID)
	assert.Equal(t, string(domain.PaymentUnderReview), stored.PaymentStatus)
	assert.Nil(t, stored.ReviewedAt)
	assert.Nil(t, stored.ReviewedBy)
}

func TestReviewRejectBlocksWithReason(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	user := env.AddMember(t, apptest.Member{Name: "asha", ViewsLimit: 10})
	target := env.AddMember(t, apptest.Member{Name: "target"})
	p := env.AddPayment(t, user, domain.PackageGold, domain.PaymentUnderReview)

	resp, err := svc.ReviewPayment(ctx, &rpc.ReviewPaymentRequest{
		PaymentID: rpc.FormatID(p.ID), Action: "reject", Reason: "amount mismatch", ReviewerUserID: admin,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentRejected), resp.Payment.Status)
	assert.Equal(t, "amount mismatch", resp.Payment.RejectionReason)
	assert.Equal(t, 10, env.Moderation(t, user).ViewsLimit)

	_, err = views.NewViewService(env.App).Record(ctx, user, target)
	blocked, ok := domain.IsPaymentBlocked(err)
	require.True(t, ok)
	assert.Equal(t, "amount mismatch", blocked.Reason)
}

// TestReviewStorageFailureLeavesRecordUnreviewed drops the moderation table
// so the grant fails mid-transaction.
func TestReviewStorageFailureLeavesRecordUnreviewed(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	user := env.AddMember(t, apptest.Member{Name: "asha"})
	p := env.AddPayment(t, user, domain.PackageGold, domain.PaymentUnderReview)

	require.NoError(t, env.App.DB.Migrator().DropTable(&db.Moderation{}))

	_, err := svc.ReviewPayment(ctx, &rpc.ReviewPaymentRequest{
		PaymentID: rpc.FormatID(p.ID), Action: "accept", ReviewerUserID: admin,
	})
	assert.Equal(t, codes.Unavailable, status.Code(err))

	stored := reload(t, env, p.ID)
	assert.Equal(t, string(domain.PaymentUnderReview), stored.PaymentStatus)
	assert.Nil(t, stored.ReviewedAt)
}

// TestReviewPendingIsRefused covers checkouts that never got a screenshot or
// a gateway result: neither decision applies and nothing is granted.
func TestReviewPendingIsRefused(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	user := env.AddMember(t, apptest.Member{Name: "asha", ViewsLimit: 5})
	p := env.AddPayment(t, user, domain.PackageGold, domain.PaymentPending)

	for _, req := range []*rpc.ReviewPaymentRequest{
		{PaymentID: rpc.FormatID(p.ID), Action: "accept", ReviewerUserID: admin},
		{PaymentID: rpc.FormatID(p.ID), Action: "reject", Reason: "no proof", ReviewerUserID: admin},
	} {
		_, err := svc.ReviewPayment(ctx, req)
		assert.Equal(t, codes.FailedPrecondition, status.Code(err), req.Action)
	}

	stored := reload(t, env, p.ID)
	assert.Equal(t, string(domain.PaymentPending), stored.PaymentStatus)
	assert.Nil(t, stored.ReviewedAt)
	assert.Equal(t, 5, env.Moderation(t, user).ViewsLimit)
	assert.Equal(t, domain.PackageFree, env.Moderation(t, user).SubscriptionStatus)
}

func TestReviewPaymentArguments(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.ReviewPayment(ctx, &rpc.ReviewPaymentRequest{PaymentID: "1", Action: "approve", ReviewerUserID: admin})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.ReviewPayment(ctx, &rpc.ReviewPaymentRequest{PaymentID: "1", Action: "accept"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.ReviewPayment(ctx, &rpc.ReviewPaymentRequest{PaymentID: "99", Action: "accept", ReviewerUserID: admin})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestListPayments(t *testing.T) {
	ctx := context.Background()
	svc, env := setupService(t)
	env.App.Config.PageSize = 2
	user := env.AddMember(t, apptest.Member{Name: "asha"})

	for range 3 {
		env.AddPayment(t, user, domain.PackageSilver, domain.PaymentUnderReview)
	}
	env.AddPayment(t, user, domain.PackageGold, domain.PaymentAccepted)

	first, err := svc.ListPayments(ctx, &rpc.ListPaymentsRequest{Status: "under_review"})
	require.NoError(t, err)
	require.Len(t, first.Payments, 2)
	require.NotNil(t, first.NextPageToken)

	second, err := svc.ListPayments(ctx, &rpc.ListPaymentsRequest{Status: "under_review", PageToken: first.NextPageToken})
	require.NoError(t, err)
	require.Len(t, second.Payments, 1)
	assert.Nil(t, second.NextPageToken)

	all, err := svc.ListPayments(ctx, &rpc.ListPaymentsRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Payments, 2)
	assert.NotNil(t, all.NextPageToken)

	_, err = svc.ListPayments(ctx, &rpc.ListPaymentsRequest{Status: "lost"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	bad := "%%%"
	_, err = svc.ListPayments(ctx, &rpc.ListPaymentsRequest{PageToken: &bad})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
