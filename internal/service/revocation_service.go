package service

import (
	"context"

	"dashboard-api/internal/cache"
	"dashboard-api/pkg/apierror"
)

// RevocationService consults the logout blacklist. Entries are written by
// the session endpoints; this service only reads them.
type RevocationService struct {
	cache Cache
}

func NewRevocationService(cache Cache) *RevocationService {
	return &RevocationService{cache: cache}
}

// Check fails with TokenRevoked for blacklisted tokens. Exists reports false
// when Redis is down, so an outage lets every verified token through.
func (s *RevocationService) Check(ctx context.Context, token string) error {
	if s.cache.Exists(ctx, cache.BlacklistKey(token)) {
		return apierror.TokenRevoked()
	}
	return nil
}
