package rpc

// User ids travel as decimal strings and are validated by the services.
//
// Every message here is a matrimony.v1 protobuf message: the pb tag is the
// field number and the json tag is the proto field name. 64-bit integers use
// the ",string" JSON form, as the proto3 JSON mapping does.

// --- visibility ---

type ListVisibleProfilesRequest struct {
	// ViewerUserID is empty for anonymous visitors.
	ViewerUserID string `json:"viewer_user_id,omitempty" pb:"1"`
	Limit        int32  `json:"limit,omitempty" pb:"2"`
	FeaturedOnly bool   `json:"featured_only,omitempty" pb:"3"`
}

type ProfileSummary struct {
	UserID            string `json:"user_id" pb:"1"`
	Name              string `json:"name" pb:"2"`
	Age               int32  `json:"age,omitempty" pb:"3"`
	City              string `json:"city,omitempty" pb:"4"`
	Religion          string `json:"religion,omitempty" pb:"5"`
	Education         string `json:"education,omitempty" pb:"6"`
	Occupation        string `json:"occupation,omitempty" pb:"7"`
	PhotoURL          string `json:"photo_url" pb:"8"`
	VerifiedBadge     bool   `json:"verified_badge" pb:"9"`
	Boosted           bool   `json:"boosted" pb:"10"`
	CompletionPercent int32  `json:"completion_percent" pb:"11"`
}

type ListVisibleProfilesResponse struct {
	Profiles []*ProfileSummary `json:"profiles" pb:"1"`
}

type GetProfileRequest struct {
	ViewerUserID  string `json:"viewer_user_id" pb:"1"`
	ProfileUserID string `json:"profile_user_id" pb:"2"`
}

// ProfileDetail carries the summary fields (1-11) followed by the rest of
// the profile.
type ProfileDetail struct {
	ProfileSummary
	Gender        string `json:"gender,omitempty" pb:"12"`
	State         string `json:"state,omitempty" pb:"13"`
	Country       string `json:"country,omitempty" pb:"14"`
	Caste         string `json:"caste,omitempty" pb:"15"`
	MotherTongue  string `json:"mother_tongue,omitempty" pb:"16"`
	AnnualIncome  string `json:"annual_income,omitempty" pb:"17"`
	Height        string `json:"height,omitempty" pb:"18"`
	MaritalStatus string `json:"marital_status,omitempty" pb:"19"`
	About         string `json:"about,omitempty" pb:"20"`
}

type GetProfileResponse struct {
	Profile *ProfileDetail `json:"profile" pb:"1"`
	// AlreadyViewed is true when no quota was charged for this reveal.
	AlreadyViewed bool `json:"already_viewed" pb:"2"`
}

// --- views ---

type RecordViewRequest struct {
	ViewerUserID string `json:"viewer_user_id" pb:"1"`
	TargetUserID string `json:"target_user_id" pb:"2"`
}

type RecordViewResponse struct {
	// Charged is true when this call consumed one unit of quota.
	Charged bool `json:"charged" pb:"1"`
	// AlreadyViewed is true when the pair was paid for earlier; the profile
	// may still be shown.
	AlreadyViewed bool  `json:"already_viewed" pb:"2"`
	Remaining     int64 `json:"remaining,string" pb:"3"`
}

type GetViewStatsRequest struct {
	UserID string `json:"user_id" pb:"1"`
}

type StatusLabel struct {
	Base       string `json:"base" pb:"1"`
	Annotation string `json:"annotation,omitempty" pb:"2"`
}

type GetViewStatsResponse struct {
	Limit     int64       `json:"limit,string" pb:"1"`
	Consumed  int64       `json:"consumed,string" pb:"2"`
	Remaining int64       `json:"remaining,string" pb:"3"`
	Label     StatusLabel `json:"label" pb:"4"`
	Display   string      `json:"display" pb:"5"`
}

type ListViewedProfilesRequest struct {
	ViewerUserID string  `json:"viewer_user_id" pb:"1"`
	PageToken    *string `json:"page_token,omitempty" pb:"2"`
}

type ViewedProfile struct {
	ProfileUserID string `json:"profile_user_id" pb:"1"`
	ViewedAtUnix  int64  `json:"viewed_at_unix,string" pb:"2"`
}

type ListViewedProfilesResponse struct {
	Views         []*ViewedProfile `json:"views" pb:"1"`
	NextPageToken *string          `json:"next_page_token,omitempty" pb:"2"`
}

// --- payments ---

type Payment struct {
	ID              string `json:"id" pb:"1"`
	Reference       string `json:"reference" pb:"2"`
	UserID          string `json:"user_id" pb:"3"`
	Amount          string `json:"amount" pb:"4"`
	PackageType     string `json:"package_type" pb:"5"`
	ViewsLimit      int64  `json:"views_limit,string" pb:"6"`
	Status          string `json:"status" pb:"7"`
	RejectionReason string `json:"rejection_reason,omitempty" pb:"8"`
	ScreenshotRef   string `json:"screenshot_ref,omitempty" pb:"9"`
	ReviewedAtUnix  int64  `json:"reviewed_at_unix,string,omitempty" pb:"10"`
	ReviewedBy      string `json:"reviewed_by,omitempty" pb:"11"`
	CreatedAtUnix   int64  `json:"created_at_unix,string" pb:"12"`
}

type CheckoutRequest struct {
	UserID      string `json:"user_id" pb:"1"`
	PackageType string `json:"package_type" pb:"2"`
}

type SubmitScreenshotRequest struct {
	Reference     string `json:"reference" pb:"1"`
	ScreenshotRef string `json:"screenshot_ref" pb:"2"`
}

type GatewayCallbackRequest struct {
	Reference string `json:"reference" pb:"1"`
	Success   bool   `json:"success" pb:"2"`
	// Amount is opaque and only logged.
	Amount string `json:"amount,omitempty" pb:"3"`
}

type ReviewPaymentRequest struct {
	PaymentID      string `json:"payment_id" pb:"1"`
	Action         string `json:"action" pb:"2"`
	Reason         string `json:"reason,omitempty" pb:"3"`
	ReviewerUserID string `json:"reviewer_user_id" pb:"4"`
}

type PaymentResponse struct {
	Payment *Payment `json:"payment" pb:"1"`
}

type ListPaymentsRequest struct {
	Status    string  `json:"status,omitempty" pb:"1"`
	PageToken *string `json:"page_token,omitempty" pb:"2"`
}

type ListPaymentsResponse struct {
	Payments      []*Payment `json:"payments" pb:"1"`
	NextPageToken *string    `json:"next_page_token,omitempty" pb:"2"`
}

// --- moderation ---

type ModerationRecord struct {
	UserID             string `json:"user_id" pb:"1"`
	ProfileStatus      string `json:"profile_status" pb:"2"`
	SubscriptionStatus string `json:"subscription_status" pb:"3"`
	ViewsLimit         int64  `json:"views_limit,string" pb:"4"`
	VerifiedBadge      bool   `json:"verified_badge" pb:"5"`
	BoostProfile       bool   `json:"boost_profile" pb:"6"`
	BoostExpiresAtUnix int64  `json:"boost_expires_at_unix,string,omitempty" pb:"7"`
	UpdatedAtUnix      int64  `json:"updated_at_unix,string" pb:"8"`
}

type ModerationResponse struct {
	Moderation *ModerationRecord `json:"moderation" pb:"1"`
}

type TransitionProfileRequest struct {
	UserID       string `json:"user_id" pb:"1"`
	TargetStatus string `json:"target_status" pb:"2"`
	ActorUserID  string `json:"actor_user_id,omitempty" pb:"3"`
}

type GetModerationRequest struct {
	UserID string `json:"user_id" pb:"1"`
}

type ListProfilesByStatusRequest struct {
	Status    string  `json:"status" pb:"1"`
	PageToken *string `json:"page_token,omitempty" pb:"2"`
}

type ListProfilesByStatusResponse struct {
	Records       []*ModerationRecord `json:"records" pb:"1"`
	NextPageToken *string             `json:"next_page_token,omitempty" pb:"2"`
}

type ProfileInput struct {
	Name          string `json:"name" pb:"1"`
	Email         string `json:"email" pb:"2"`
	Password      string `json:"password" pb:"3"`
	Gender        string `json:"gender,omitempty" pb:"4"`
	Age           int32  `json:"age,omitempty" pb:"5"`
	City          string `json:"city,omitempty" pb:"6"`
	State         string `json:"state,omitempty" pb:"7"`
	Country       string `json:"country,omitempty" pb:"8"`
	Religion      string `json:"religion,omitempty" pb:"9"`
	Caste         string `json:"caste,omitempty" pb:"10"`
	MotherTongue  string `json:"mother_tongue,omitempty" pb:"11"`
	Education     string `json:"education,omitempty" pb:"12"`
	Occupation    string `json:"occupation,omitempty" pb:"13"`
	AnnualIncome  string `json:"annual_income,omitempty" pb:"14"`
	Height        string `json:"height,omitempty" pb:"15"`
	MaritalStatus string `json:"marital_status,omitempty" pb:"16"`
	About         string `json:"about,omitempty" pb:"17"`
	PhotoURL      string `json:"photo_url,omitempty" pb:"18"`
}

type RegisterProfileRequest struct {
	Profile *ProfileInput `json:"profile" pb:"1"`
}

type RegisterProfileResponse struct {
	UserID     string            `json:"user_id" pb:"1"`
	Moderation *ModerationRecord `json:"moderation" pb:"2"`
}

type EraseMemberRequest struct {
	UserID string `json:"user_id" pb:"1"`
}

type EraseMemberResponse struct{}

// --- entitlements ---

type GrantPackageRequest struct {
	UserID      string `json:"user_id" pb:"1"`
	PackageType string `json:"package_type" pb:"2"`
}

type GrantAddonRequest struct {
	UserID  string `json:"user_id" pb:"1"`
	AddonID string `json:"addon_id" pb:"2"`
}

type SetViewsLimitRequest struct {
	UserID     string `json:"user_id" pb:"1"`
	ViewsLimit int64  `json:"views_limit,string" pb:"2"`
}
