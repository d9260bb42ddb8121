package visibility

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/oggyb/matrimony-core/internal/app"
	"github.com/oggyb/matrimony-core/internal/cache"
	"github.com/oggyb/matrimony-core/internal/db"
	"github.com/oggyb/matrimony-core/internal/domain"
	svcErr "github.com/oggyb/matrimony-core/internal/errors"
	"github.com/oggyb/matrimony-core/internal/repository"
	"github.com/oggyb/matrimony-core/internal/rpc"
	"github.com/oggyb/matrimony-core/internal/service/views"
)

// Summary is a ranked listing entry. It is what the featured cache stores.
type Summary struct {
	UserID     uint64 `json:"user_id"`
	Name       string `json:"name"`
	Age        int    `json:"age,omitempty"`
	City       string `json:"city,omitempty"`
	Religion   string `json:"religion,omitempty"`
	Education  string `json:"education,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	PhotoURL   string `json:"photo_url"`
	Verified   bool   `json:"verified"`
	Boosted    bool   `json:"boosted"`
	Completion int    `json:"completion"`
}

// Service implements the Visibility gRPC API: the browse and featured
// listings and the full-profile reveal.
type Service struct {
	appCtx     *app.AppContext
	profiles   *repository.ProfileRepository
	moderation *repository.ModerationRepository
	views      *views.Service
}

// NewVisibilityService creates a new Visibility service with dependencies from AppContext.
func NewVisibilityService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		profiles:   repository.NewProfileRepository(appCtx.DB),
		moderation: repository.NewModerationRepository(appCtx.DB),
		views:      views.NewViewService(appCtx),
	}
}

// Visible returns the ranked profiles viewerID may browse.
//
// Behavior:
//   - Only approved profiles are candidates; viewerID is always excluded.
//   - limit > 0 caps the candidates before profile data is loaded.
//   - featuredOnly ranks by verified badge, otherwise by active boost;
//     completion percentage breaks ties in both modes.
//   - Anonymous callers (nil viewerID) always get the featured ranking capped
//     at Visibility.AnonymousLimit, served from Redis when cached.
//   - Failures are logged and yield an empty list.
func (s *Service) Visible(ctx context.Context, viewerID *uint64, limit int, featuredOnly bool) []Summary {
	if viewerID == nil {
		return s.anonymous(ctx, limit)
	}
	out, err := s.load(ctx, viewerID, limit, featuredOnly)
	if err != nil {
		s.appCtx.Logger.Error("visible profiles query failed", "viewer", *viewerID, "err", err)
		return []Summary{}
	}
	return out
}

func (s *Service) anonymous(ctx context.Context, limit int) []Summary {
	ceiling := s.appCtx.Config.Visibility.AnonymousLimit
	if limit <= 0 || limit > ceiling {
		limit = ceiling
	}

	key, err := s.featuredKey(ctx, limit)
	if err == nil {
		var cached []Summary
		switch err := s.appCtx.RedisCache.GetJSON(ctx, key, &cached); {
		case err == nil:
			return cached
		case !errors.Is(err, cache.ErrMiss):
			s.appCtx.Logger.Warn("featured cache read failed", "key", key, "err", err)
		}
	} else {
		s.appCtx.Logger.Warn("featured cache unavailable", "err", err)
	}

	out, err := s.load(ctx, nil, limit, true)
	if err != nil {
		s.appCtx.Logger.Error("featured profiles query failed", "err", err)
		return []Summary{}
	}
	if key != "" {
		if err := s.appCtx.RedisCache.SetJSON(ctx, key, out, s.appCtx.Config.Visibility.FeaturedCacheTTL); err != nil {
			s.appCtx.Logger.Warn("featured cache write failed", "key", key, "err", err)
		}
	}
	return out
}

func (s *Service) featuredKey(ctx context.Context, limit int) (string, error) {
	if s.appCtx.RedisCache == nil {
		return "", errors.New("no redis cache configured")
	}
	return s.appCtx.RedisCache.KeyForFeatured(ctx, limit)
}

func (s *Service) load(ctx context.Context, viewerID *uint64, limit int, featuredOnly bool) ([]Summary, error) {
	ids, err := s.moderation.ApprovedUserIDs(ctx, viewerID, limit)
	if err != nil || len(ids) == 0 {
		return []Summary{}, err
	}

	profiles, err := s.profiles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	photos, err := s.profiles.MainPhotos(ctx, ids)
	if err != nil {
		return nil, err
	}
	mods, err := s.moderation.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]*db.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].UserID] = &profiles[i]
	}

	now := s.appCtx.Now()
	out := make([]Summary, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		mod, modOK := mods[id]
		// Re-check: the status may have changed between the two queries.
		if !ok || !modOK || !domain.ProfileStatus(mod.ProfileStatus).Visible() {
			continue
		}
		out = append(out, s.summarize(p, &mod, photos[id], now))
	}

	slices.SortStableFunc(out, func(a, b Summary) int {
		flagA, flagB := a.Boosted, b.Boosted
		if featuredOnly {
			flagA, flagB = a.Verified, b.Verified
		}
		if flagA != flagB {
			if flagA {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.Completion, a.Completion)
	})
	return out, nil
}

func (s *Service) summarize(p *db.Profile, mod *db.Moderation, photo string, now time.Time) Summary {
	out := Summary{
		UserID:     p.UserID,
		Name:       p.Name,
		PhotoURL:   photo,
		Verified:   mod.VerifiedBadge,
		Boosted:    mod.Boosted(now),
		Completion: domain.Completion(p.TrackedValues(), photo != ""),
	}
	if out.PhotoURL == "" {
		out.PhotoURL = s.appCtx.Config.Visibility.PhotoPlaceholder
	}
	if p.Age != nil {
		out.Age = *p.Age
	}
	out.City = str(p.City)
	out.Religion = str(p.Religion)
	out.Education = str(p.Education)
	out.Occupation = str(p.Occupation)
	return out
}

// Reveal charges viewerID for profileID and returns the full profile.
//
// Behavior:
//   - A pair paid for earlier is reopened without touching the quota, even
//     when the quota is used up or a newer payment is unresolved.
//     alreadyViewed is true in that case.
//   - Otherwise the view goes through the regular charge.
//   - The profile must still be approved either way.
func (s *Service) Reveal(ctx context.Context, viewerID, profileID uint64) (*rpc.ProfileDetail, bool, error) {
	alreadyViewed, err := s.views.HasViewed(ctx, viewerID, profileID)
	if err != nil {
		return nil, false, err
	}
	if !alreadyViewed {
		_, err := s.views.Record(ctx, viewerID, profileID)
		alreadyViewed = errors.Is(err, domain.ErrAlreadyViewed)
		if err != nil && !alreadyViewed {
			return nil, false, err
		}
	}

	p, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, domain.Store("load profile", err)
	}
	mod, err := s.moderation.Get(ctx, profileID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, domain.Store("load moderation", err)
	}
	if domain.ProfileStatus(mod.ProfileStatus) != domain.ProfileApproved {
		return nil, false, fmt.Errorf("profile %d: %w", profileID, domain.ErrNotFound)
	}
	photos, err := s.profiles.MainPhotos(ctx, []uint64{profileID})
	if err != nil {
		return nil, false, domain.Store("load photos", err)
	}

	sum := s.summarize(p, mod, photos[profileID], s.appCtx.Now())
	detail := &rpc.ProfileDetail{
		ProfileSummary: *toProto(sum),
		Gender:         str(p.Gender),
		State:          str(p.State),
		Country:        str(p.Country),
		Caste:          str(p.Caste),
		MotherTongue:   str(p.MotherTongue),
		AnnualIncome:   str(p.AnnualIncome),
		Height:         str(p.Height),
		MaritalStatus:  str(p.MaritalStatus),
		About:          str(p.About),
	}
	return detail, alreadyViewed, nil
}

// ListVisibleProfiles returns the browse or featured listing.
//
// Behavior:
//   - Empty viewer_user_id is an anonymous visitor: featured, at most 5.
//   - Never fails on data errors; an empty list is returned instead.
//
// Example:
//
//	svc.ListVisibleProfiles(ctx, &rpc.ListVisibleProfilesRequest{ViewerUserID: "7", Limit: 10})
func (s *Service) ListVisibleProfiles(ctx context.Context, req *rpc.ListVisibleProfilesRequest) (*rpc.ListVisibleProfilesResponse, error) {
	s.appCtx.Logger.Debug("ListVisibleProfiles called", "viewer", req.ViewerUserID, "limit", req.Limit, "featured", req.FeaturedOnly)

	viewerID, err := rpc.ParseOptionalID("viewer_user_id", req.ViewerUserID)
	if err != nil {
		return nil, err
	}

	rows := s.Visible(ctx, viewerID, int(req.Limit), req.FeaturedOnly)
	resp := &rpc.ListVisibleProfilesResponse{Profiles: make([]*rpc.ProfileSummary, 0, len(rows))}
	for _, r := range rows {
		resp.Profiles = append(resp.Profiles, toProto(r))
	}
	return resp, nil
}

// GetProfile reveals a full profile, charging the viewer's quota once.
func (s *Service) GetProfile(ctx context.Context, req *rpc.GetProfileRequest) (*rpc.GetProfileResponse, error) {
	viewerID, err := rpc.ParseID("viewer_user_id", req.ViewerUserID)
	if err != nil {
		return nil, err
	}
	profileID, err := rpc.ParseID("profile_user_id", req.ProfileUserID)
	if err != nil {
		return nil, err
	}

	detail, alreadyViewed, err := s.Reveal(ctx, viewerID, profileID)
	if err != nil {
		s.appCtx.Logger.Info("GetProfile refused", "viewer", viewerID, "profile", profileID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &rpc.GetProfileResponse{Profile: detail, AlreadyViewed: alreadyViewed}, nil
}

func toProto(s Summary) *rpc.ProfileSummary {
	return &rpc.ProfileSummary{
		UserID:            rpc.FormatID(s.UserID),
		Name:              s.Name,
		Age:               int32(s.Age),
		City:              s.City,
		Religion:          s.Religion,
		Education:         s.Education,
		Occupation:        s.Occupation,
		PhotoURL:          s.PhotoURL,
		VerifiedBadge:     s.Verified,
		Boosted:           s.Boosted,
		CompletionPercent: int32(s.Completion),
	}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
