// internal/app/features/stats/handler.go
package stats

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/memberhub/internal/app/store/queries/statsqueries"
	"github.com/dalemusser/memberhub/internal/app/system/respond"
	"github.com/dalemusser/memberhub/internal/app/system/timeouts"
	"github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const cacheKey = "member-stats"

// DefaultTTL is how long a computed result is served before recounting.
const DefaultTTL = 30 * time.Second

type Handler struct {
	Log   *zap.Logger
	Cache *cache.Cache

	// Count computes fresh stats. NewHandler points it at the database.
	Count func(ctx context.Context, now time.Time) (statsqueries.MemberStats, error)
}

func NewHandler(db *mongo.Database, ttl time.Duration, logger *zap.Logger) *Handler {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Handler{
		Log:   logger,
		Cache: cache.New(ttl, 2*ttl),
		Count: func(ctx context.Context, now time.Time) (statsqueries.MemberStats, error) {
			return statsqueries.CountMemberStats(ctx, db, now)
		},
	}
}

// ServeStats handles GET /stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	if cached, found := h.Cache.Get(cacheKey); found {
		w.Header().Set("X-Cache", "HIT")
		respond.JSON(w, http.StatusOK, cached.(statsqueries.MemberStats))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	s, err := h.Count(ctx, time.Now().UTC())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Cache.Set(cacheKey, s, cache.DefaultExpiration)

	w.Header().Set("X-Cache", "MISS")
	respond.JSON(w, http.StatusOK, s)
}
