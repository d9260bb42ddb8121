package moderation

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/matrimony-core/internal/app"
	"github.com/oggyb/matrimony-core/internal/db"
	"github.com/oggyb/matrimony-core/internal/domain"
	svcErr "github.com/oggyb/matrimony-core/internal/errors"
	"github.com/oggyb/matrimony-core/internal/repository"
	"github.com/oggyb/matrimony-core/internal/rpc"
)

const minPasswordLen = 8

// Service implements the Moderation gRPC API: member registration, the
// profile approval state machine, admin queues and erasure.
//
// Every status change goes through Transition, which enforces the
// transition table in domain.CheckProfileTransition.
type Service struct {
	appCtx     *app.AppContext
	profiles   *repository.ProfileRepository
	moderation *repository.ModerationRepository
}

// NewModerationService creates a new Moderation service with dependencies from AppContext.
func NewModerationService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		profiles:   repository.NewProfileRepository(appCtx.DB),
		moderation: repository.NewModerationRepository(appCtx.DB),
	}
}

// Register creates a member profile with a pending, free, zero-quota
// moderation record. The password is stored as a bcrypt hash.
func (s *Service) Register(ctx context.Context, in *rpc.ProfileInput) (*db.Profile, *db.Moderation, error) {
	if in == nil {
		return nil, nil, fmt.Errorf("%w: profile is required", domain.ErrInvalidArgument)
	}
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		return nil, nil, fmt.Errorf("%w: name is required", domain.ErrInvalidArgument)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, fmt.Errorf("%w: email is invalid", domain.ErrInvalidArgument)
	}
	if len(in.Password) < minPasswordLen {
		return nil, nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidArgument, minPasswordLen)
	}
	if in.Age < 0 {
		return nil, nil, fmt.Errorf("%w: age must be positive", domain.ErrInvalidArgument)
	}

	taken, err := s.profiles.EmailTaken(ctx, email)
	if err != nil {
		return nil, nil, domain.Store("check email", err)
	}
	if taken {
		return nil, nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	p := &db.Profile{
		Name:          name,
		Email:         email,
		PasswordHash:  string(hash),
		Gender:        opt(in.Gender),
		City:          opt(in.City),
		State:         opt(in.State),
		Country:       opt(in.Country),
		Religion:      opt(in.Religion),
		Caste:         opt(in.Caste),
		MotherTongue:  opt(in.MotherTongue),
		Education:     opt(in.Education),
		Occupation:    opt(in.Occupation),
		AnnualIncome:  opt(in.AnnualIncome),
		Height:        opt(in.Height),
		MaritalStatus: opt(in.MaritalStatus),
		About:         opt(in.About),
	}
	if in.Age > 0 {
		age := int(in.Age)
		p.Age = &age
	}

	mod, err := s.profiles.Register(ctx, p)
	if err != nil {
		return nil, nil, domain.Store("register profile", err)
	}
	if url := strings.TrimSpace(in.PhotoURL); url != "" {
		if err := s.profiles.AddPhoto(ctx, &db.Photo{UserID: p.UserID, URL: url, IsMain: true}); err != nil {
			return nil, nil, domain.Store("add photo", err)
		}
	}

	s.appCtx.Logger.Info("member registered", "user", p.UserID)
	return p, mod, nil
}

// Transition moves a profile to target.
//
// Behavior:
//   - Allowed moves come from the transition table; anything else is a
//     *domain.TransitionError.
//   - Re-applying the current state succeeds without a write.
//   - Every real change invalidates the featured listing cache.
func (s *Service) Transition(ctx context.Context, userID uint64, target domain.ProfileStatus, actorID *uint64) (*db.Moderation, error) {
	current, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	from := domain.ProfileStatus(current.ProfileStatus)
	if err := domain.CheckProfileTransition(from, target); err != nil {
		return nil, err
	}
	if from == target {
		return current, nil
	}

	if err := s.moderation.SetStatus(ctx, userID, target, s.appCtx.Now()); err != nil {
		return nil, domain.Store("set profile status", err)
	}
	log := s.appCtx.Logger.With("user", userID, "from", from, "to", target)
	if actorID != nil {
		log = log.With("actor", *actorID)
	}
	log.Info("profile status changed")
	s.invalidateListings(ctx)
	return s.load(ctx, userID)
}

// Erase deletes a member with photos, payments, moderation record and every
// view record in either direction.
func (s *Service) Erase(ctx context.Context, userID uint64) error {
	if err := s.profiles.Erase(ctx, userID); err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("member %d: %w", userID, domain.ErrNotFound)
		}
		return domain.Store("erase member", err)
	}
	s.appCtx.Logger.Info("member erased", "user", userID)
	s.invalidateListings(ctx)
	return nil
}

func (s *Service) load(ctx context.Context, userID uint64) (*db.Moderation, error) {
	m, err := s.moderation.Get(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("moderation record of user %d: %w", userID, domain.ErrNotFound)
		}
		return nil, domain.Store("load moderation", err)
	}
	return m, nil
}

func (s *Service) invalidateListings(ctx context.Context) {
	if s.appCtx.RedisCache == nil {
		return
	}
	if err := s.appCtx.RedisCache.InvalidateFeatured(ctx); err != nil {
		s.appCtx.Logger.Warn("featured cache invalidation failed", "err", err)
	}
}

// RegisterProfile creates a member and its pending moderation record.
//
// Example:
//
//	svc.RegisterProfile(ctx, &rpc.RegisterProfileRequest{Profile: &rpc.ProfileInput{
//		Name: "Asha", Email: "asha@example.com", Password: "s3cret-pass",
//	}})
func (s *Service) RegisterProfile(ctx context.Context, req *rpc.RegisterProfileRequest) (*rpc.RegisterProfileResponse, error) {
	p, mod, err := s.Register(ctx, req.Profile)
	if err != nil {
		s.appCtx.Logger.Info("RegisterProfile refused", "err", err)
		return nil, svcErr.Map(err)
	}
	return &rpc.RegisterProfileResponse{
		UserID:     rpc.FormatID(p.UserID),
		Moderation: rpc.ModerationRecordFrom(mod),
	}, nil
}

// TransitionProfile applies an admin status change.
func (s *Service) TransitionProfile(ctx context.Context, req *rpc.TransitionProfileRequest) (*rpc.ModerationResponse, error) {
	s.appCtx.Logger.Debug("TransitionProfile called", "user", req.UserID, "target", req.TargetStatus)

	userID, err := rpc.ParseID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}
	actorID, err := rpc.ParseOptionalID("actor_user_id", req.ActorUserID)
	if err != nil {
		return nil, err
	}
	target, err := domain.ParseProfileStatus(req.TargetStatus)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	m, err := s.Transition(ctx, userID, target, actorID)
	if err != nil {
		s.appCtx.Logger.Error("TransitionProfile failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &rpc.ModerationResponse{Moderation: rpc.ModerationRecordFrom(m)}, nil
}

// GetModeration returns the current moderation record of a member.
func (s *Service) GetModeration(ctx context.Context, req *rpc.GetModerationRequest) (*rpc.ModerationResponse, error) {
	userID, err := rpc.ParseID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}
	m, err := s.load(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &rpc.ModerationResponse{Moderation: rpc.ModerationRecordFrom(m)}, nil
}

// ListProfilesByStatus is the admin queue for one moderation state.
func (s *Service) ListProfilesByStatus(ctx context.Context, req *rpc.ListProfilesByStatusRequest) (*rpc.ListProfilesByStatusResponse, error) {
	st, err := domain.ParseProfileStatus(req.Status)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	rows, next, err := s.moderation.ListByStatus(ctx, st, req.PageToken, s.appCtx.Config.PageSize)
	if err != nil {
		return nil, svcErr.Map(domain.Store("list profiles", err))
	}

	resp := &rpc.ListProfilesByStatusResponse{NextPageToken: next}
	for i := range rows {
		resp.Records = append(resp.Records, rpc.ModerationRecordFrom(&rows[i]))
	}
	return resp, nil
}

// EraseMember removes a member and everything attached to it.
func (s *Service) EraseMember(ctx context.Context, req *rpc.EraseMemberRequest) (*rpc.EraseMemberResponse, error) {
	userID, err := rpc.ParseID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.Erase(ctx, userID); err != nil {
		s.appCtx.Logger.Error("EraseMember failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &rpc.EraseMemberResponse{}, nil
}

func opt(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
