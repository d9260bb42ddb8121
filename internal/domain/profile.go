package domain

import (
	"math"
	"strings"
)

// TrackedFieldCount is the number of demographic attributes that count
// towards profile completion.
const TrackedFieldCount = 14

const (
	completionFieldsWeight = 80
	completionPhotoWeight  = 20
)

// Completion scores a profile from its tracked attribute values and whether
// it has a main photo. The result is in [0, 100].
func Completion(values []string, hasPhoto bool) int {
	filled := 0
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			filled++
		}
	}
	if filled > TrackedFieldCount {
		filled = TrackedFieldCount
	}
	score := float64(filled) / TrackedFieldCount * completionFieldsWeight
	if hasPhoto {
		score += completionPhotoWeight
	}
	return int(math.Min(100, math.Round(score)))
}

// PaymentAnnotation qualifies a member's subscription status with the state
// of their latest payment.
type PaymentAnnotation string

const (
	AnnotationNone            PaymentAnnotation = ""
	AnnotationPaymentPending  PaymentAnnotation = "Payment Pending"
	AnnotationUnderReview     PaymentAnnotation = "Under Review"
	AnnotationActive          PaymentAnnotation = "Active"
	AnnotationPaymentRejected PaymentAnnotation = "Payment Rejected"
)

// AnnotationFor maps a latest payment status to its annotation.
func AnnotationFor(s PaymentStatus) PaymentAnnotation {
	switch s {
	case PaymentPending:
		return AnnotationPaymentPending
	case PaymentUnderReview:
		return AnnotationUnderReview
	case PaymentAccepted:
		return AnnotationActive
	case PaymentRejected:
		return AnnotationPaymentRejected
	}
	return AnnotationNone
}

// StatusLabel is the structured subscription status shown next to view stats.
type StatusLabel struct {
	Base       string
	Annotation PaymentAnnotation
}

// String formats the label for display, e.g. "gold (Under Review)".
func (l StatusLabel) String() string {
	if l.Annotation == AnnotationNone {
		return l.Base
	}
	return l.Base + " (" + string(l.Annotation) + ")"
}
