// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/memberhub/internal/app/store/audit"
	"github.com/dalemusser/memberhub/internal/app/system/paging"
	"github.com/dalemusser/memberhub/internal/app/system/respond"
	"github.com/dalemusser/memberhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// listItem is one audit event with actor and target names resolved.
type listItem struct {
	audit.Event
	ActorName  string `json:"actorName,omitempty"`
	TargetName string `json:"targetName,omitempty"`
}

type listPage struct {
	Data       []listItem `json:"data"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
	Total      int64      `json:"total"`
	TotalPages int64      `json:"totalPages"`
}

// ServeList handles GET /audit?category=&event_type=&user_id=&start_date=&end_date=&page=&size=.
// Dates are YYYY-MM-DD in UTC; end_date is inclusive.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	q := r.URL.Query()
	p := paging.Parse(r)
	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     p.Limit(),
		Offset:    p.Skip(),
	}
	if raw := strings.TrimSpace(q.Get("user_id")); raw != "" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respond.BadRequest(w, "Invalid user_id")
			return
		}
		filter.Involving = &oid
	}
	if d := strings.TrimSpace(q.Get("start_date")); d != "" {
		if t, err := time.Parse("2006-01-02", d); err == nil {
			filter.StartTime = &t
		}
	}
	if d := strings.TrimSpace(q.Get("end_date")); d != "" {
		if t, err := time.Parse("2006-01-02", d); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndTime = &endOfDay
		}
	}

	var (
		events []audit.Event
		total  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = h.Events.Query(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = h.Events.CountByFilter(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	// names are best effort; ids are shown when a lookup fails
	seen := make(map[primitive.ObjectID]struct{})
	ids := make([]primitive.ObjectID, 0)
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.UserID} {
			if id == nil {
				continue
			}
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}
	names, err := h.Users.NamesByID(ctx, ids)
	if err != nil {
		h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
		names = nil
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{Event: e}
		if e.ActorID != nil {
			item.ActorName = nameOr(names, *e.ActorID)
		}
		if e.UserID != nil {
			item.TargetName = nameOr(names, *e.UserID)
		}
		items = append(items, item)
	}

	respond.JSON(w, http.StatusOK, listPage{
		Data:       items,
		Page:       p.Page,
		Size:       p.Size,
		Total:      total,
		TotalPages: p.TotalPages(total),
	})
}

func nameOr(names map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id.Hex()
}
