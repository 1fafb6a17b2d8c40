package models

import (
	"context"
	"time"
)

// Collector fetches fixtures and historical head-to-head data for one sport.
// FetchH2H takes the whole fixture because upstream feeds scope historical
// data by league, which the entity IDs alone do not carry.
type Collector interface {
	Sport() Sport
	FetchFixtures(ctx context.Context, date time.Time) ([]Fixture, error)
	FetchH2H(ctx context.Context, fixture Fixture) (HeadToHeadSample, error)
}

// Enricher optionally produces a contextual adjustment for one fixture x market.
// A nil Enricher or a (nil, nil) return means no adjustment: the scorer must
// behave identically with or without it.
type Enricher interface {
	Enrich(ctx context.Context, fixture Fixture, market MarketSpec, profile StatisticalProfile) (*ContextualAdjustment, error)
}
