package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matrimony-core/internal/domain"
)

func TestCheckProfileTransition(t *testing.T) {
	cases := []struct {
		from, to domain.ProfileStatus
		ok       bool
	}{
		{domain.ProfilePending, domain.ProfileApproved, true},
		{domain.ProfilePending, domain.ProfileTerminated, true},
		{domain.ProfileApproved, domain.ProfilePending, true},
		{domain.ProfileRejected, domain.ProfileApproved, true},
		{domain.ProfileTerminated, domain.ProfileApproved, true},
		{domain.ProfileApproved, domain.ProfileApproved, true},
		{domain.ProfilePending, domain.ProfileFlagged, false},
		{domain.ProfileFlagged, domain.ProfileApproved, false},
		{domain.ProfileApproved, domain.ProfileFlagged, false},
	}
	for _, c := range cases {
		err := domain.CheckProfileTransition(c.from, c.to)
		if c.ok {
			assert.NoError(t, err, "%s -> %s", c.from, c.to)
			continue
		}
		var te *domain.TransitionError
		assert.True(t, errors.As(err, &te), "%s -> %s", c.from, c.to)
	}
}

func TestParseProfileStatus(t *testing.T) {
	st, err := domain.ParseProfileStatus(" Approved ")
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileApproved, st)
	assert.True(t, st.Visible())

	_, err = domain.ParseProfileStatus("archived")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestPlanReview(t *testing.T) {
	plan, err := domain.PlanReview(domain.PaymentUnderReview, domain.ReviewAccept, "")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentAccepted, plan.Target)
	assert.True(t, plan.Grant)

	_, err = domain.PlanReview(domain.PaymentUnderReview, domain.ReviewReject, "  ")
	assert.ErrorIs(t, err, domain.ErrRejectionReasonRequired)

	plan, err = domain.PlanReview(domain.PaymentUnderReview, domain.ReviewReject, "blurry screenshot")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRejected, plan.Target)
	assert.False(t, plan.Grant)

	// nothing to decide on before a screenshot or gateway result arrives
	for _, action := range []domain.ReviewAction{domain.ReviewAccept, domain.ReviewReject} {
		_, err = domain.PlanReview(domain.PaymentPending, action, "no proof")
		var te *domain.TransitionError
		assert.ErrorAs(t, err, &te, action)
	}

	// terminal records only get their reviewer stamp refreshed
	plan, err = domain.PlanReview(domain.PaymentAccepted, domain.ReviewReject, "late fraud report")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentAccepted, plan.Target)
	assert.True(t, plan.StampOnly)
	assert.False(t, plan.Grant)
}

func TestPaymentStatusBlocks(t *testing.T) {
	assert.True(t, domain.PaymentPending.Blocks())
	assert.True(t, domain.PaymentUnderReview.Blocks())
	assert.True(t, domain.PaymentRejected.Blocks())
	assert.False(t, domain.PaymentAccepted.Blocks())
}

func TestCompletion(t *testing.T) {
	empty := make([]string, domain.TrackedFieldCount)
	assert.Equal(t, 0, domain.Completion(empty, false))
	assert.Equal(t, 20, domain.Completion(empty, true))

	full := make([]string, domain.TrackedFieldCount)
	for i := range full {
		full[i] = "x"
	}
	assert.Equal(t, 80, domain.Completion(full, false))
	assert.Equal(t, 100, domain.Completion(full, true))

	// whitespace-only values do not count
	half := make([]string, domain.TrackedFieldCount)
	for i := 0; i < 7; i++ {
		half[i] = "x"
	}
	half[7] = "   "
	assert.Equal(t, 40, domain.Completion(half, false))
}

func TestCompletionMonotonic(t *testing.T) {
	values := make([]string, domain.TrackedFieldCount)
	for _, photo := range []bool{false, true} {
		prev := domain.Completion(values, photo)
		for i := range values {
			values[i] = "filled"
			got := domain.Completion(values, photo)
			assert.GreaterOrEqual(t, got, prev)
			assert.LessOrEqual(t, got, 100)
			prev = got
		}
		for i := range values {
			values[i] = ""
		}
	}
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "gold (Under Review)", domain.StatusLabel{
		Base:       "gold",
		Annotation: domain.AnnotationFor(domain.PaymentUnderReview),
	}.String())
	assert.Equal(t, "free", domain.StatusLabel{Base: "free"}.String())
	assert.Equal(t, domain.AnnotationActive, domain.AnnotationFor(domain.PaymentAccepted))
}

func TestOfferFor(t *testing.T) {
	offer, err := domain.OfferFor("gold")
	require.NoError(t, err)
	assert.Equal(t, 60, offer.ViewsLimit)
	assert.Equal(t, "1999.00", offer.Amount.StringFixed(2))

	offer, err = domain.OfferFor(domain.AddonExtraViews10)
	require.NoError(t, err)
	assert.Equal(t, 10, offer.ViewsLimit)

	_, err = domain.OfferFor("free")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = domain.OfferFor("diamond")
	assert.ErrorIs(t, err, domain.ErrUnknownPackage)
}

func TestPaymentBlockedError(t *testing.T) {
	err := error(&domain.PaymentBlockedError{Status: domain.PaymentRejected, Reason: "amount mismatch"})
	pb, ok := domain.IsPaymentBlocked(err)
	require.True(t, ok)
	assert.Contains(t, pb.Error(), "amount mismatch")
}
