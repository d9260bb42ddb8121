package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Package is a subscription tier sold through checkout.
type Package struct {
	ID         string
	Price      decimal.Decimal
	ViewsLimit int
}

// AddonEffect says what an add-on changes on the moderation record.
type AddonEffect int

const (
	EffectVerifiedBadge AddonEffect = iota + 1
	EffectBoost
	EffectExtraViews
)

// Addon is a one-off purchase layered on top of a package.
type Addon struct {
	ID     string
	Price  decimal.Decimal
	Effect AddonEffect
	// Views is only used by EffectExtraViews.
	Views int
}

const (
	PackageFree     = "free"
	PackageSilver   = "silver"
	PackageGold     = "gold"
	PackagePlatinum = "platinum"

	AddonVerifiedBadge = "verified_badge"
	AddonBoostProfile  = "boost_profile"
	AddonExtraViews10  = "extra_views_10"
	AddonExtraViews25  = "extra_views_25"
)

var packages = map[string]Package{
	PackageFree:     {ID: PackageFree, Price: decimal.Zero, ViewsLimit: 0},
	PackageSilver:   {ID: PackageSilver, Price: decimal.RequireFromString("999.00"), ViewsLimit: 25},
	PackageGold:     {ID: PackageGold, Price: decimal.RequireFromString("1999.00"), ViewsLimit: 60},
	PackagePlatinum: {ID: PackagePlatinum, Price: decimal.RequireFromString("3499.00"), ViewsLimit: 150},
}

var addons = map[string]Addon{
	AddonVerifiedBadge: {ID: AddonVerifiedBadge, Price: decimal.RequireFromString("499.00"), Effect: EffectVerifiedBadge},
	AddonBoostProfile:  {ID: AddonBoostProfile, Price: decimal.RequireFromString("299.00"), Effect: EffectBoost},
	AddonExtraViews10:  {ID: AddonExtraViews10, Price: decimal.RequireFromString("199.00"), Effect: EffectExtraViews, Views: 10},
	AddonExtraViews25:  {ID: AddonExtraViews25, Price: decimal.RequireFromString("399.00"), Effect: EffectExtraViews, Views: 25},
}

func LookupPackage(id string) (Package, error) {
	p, ok := packages[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Package{}, fmt.Errorf("%w: %q", ErrUnknownPackage, id)
	}
	return p, nil
}

func LookupAddon(id string) (Addon, error) {
	a, ok := addons[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Addon{}, fmt.Errorf("%w: %q", ErrUnknownAddon, id)
	}
	return a, nil
}

// Offer is what checkout charges for an item and how many views it grants.
type Offer struct {
	ItemID     string
	Amount     decimal.Decimal
	ViewsLimit int
}

// OfferFor resolves a package or add-on id into a checkout offer.
func OfferFor(itemID string) (Offer, error) {
	if p, err := LookupPackage(itemID); err == nil {
		if p.Price.IsZero() {
			return Offer{}, fmt.Errorf("%w: package %q is not purchasable", ErrInvalidArgument, itemID)
		}
		return Offer{ItemID: p.ID, Amount: p.Price, ViewsLimit: p.ViewsLimit}, nil
	}
	a, err := LookupAddon(itemID)
	if err != nil {
		return Offer{}, fmt.Errorf("%w: %q", ErrUnknownPackage, itemID)
	}
	return Offer{ItemID: a.ID, Amount: a.Price, ViewsLimit: a.Views}, nil
}
