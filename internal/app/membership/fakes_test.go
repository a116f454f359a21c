package membership_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	registrationstore "github.com/dalemusser/memberhub/internal/app/store/registrations"
	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/blobstore"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// clock hands out strictly increasing timestamps so "newest first" is
// deterministic.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.t.IsZero() {
		c.t = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	c.t = c.t.Add(time.Second)
	return c.t
}

type fakeRegistrations struct {
	mu    sync.Mutex
	clock *clock
	byID  map[primitive.ObjectID]*models.Registration

	// beforeApprove runs ahead of MarkApproved's status check.
	beforeApprove func(id primitive.ObjectID)
}

func newFakeRegistrations(c *clock) *fakeRegistrations {
	return &fakeRegistrations{clock: c, byID: map[primitive.ObjectID]*models.Registration{}}
}

func (f *fakeRegistrations) Create(_ context.Context, reg models.Registration) (models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg.ID = primitive.NewObjectID()
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	if reg.Status == "" {
		reg.Status = models.RegistrationPending
	}
	reg.CreatedAt = f.clock.next()
	reg.UpdatedAt = reg.CreatedAt
	cp := reg
	f.byID[reg.ID] = &cp
	return reg, nil
}

func (f *fakeRegistrations) GetByID(_ context.Context, id primitive.ObjectID) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, registrationstore.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRegistrations) List(_ context.Context) ([]models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Registration, 0, len(f.byID))
	for _, r := range f.byID {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRegistrations) ExistsActiveEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byID {
		if r.Email == email && r.Status != models.RegistrationRejected {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegistrations) transition(id primitive.ObjectID, next string, apply func(*models.Registration)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return registrationstore.ErrNotFound
	}
	if r.Status != models.RegistrationPending {
		return registrationstore.ErrStatusChanged
	}
	r.Status = next
	if apply != nil {
		apply(r)
	}
	return nil
}

func (f *fakeRegistrations) MarkApproved(_ context.Context, id primitive.ObjectID, uniqueID, memberID string) error {
	if f.beforeApprove != nil {
		f.beforeApprove(id)
	}
	return f.transition(id, models.RegistrationApproved, func(r *models.Registration) {
		r.UniqueID = uniqueID
		r.MemberID = memberID
	})
}

func (f *fakeRegistrations) MarkRejected(_ context.Context, id primitive.ObjectID) error {
	return f.transition(id, models.RegistrationRejected, nil)
}

func (f *fakeRegistrations) SetMembershipValidity(_ context.Context, id primitive.ObjectID, year string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return registrationstore.ErrNotFound
	}
	r.MembershipValidity = year
	return nil
}

func (f *fakeRegistrations) status(id primitive.ObjectID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].Status
}

type fakeUsers struct {
	mu    sync.Mutex
	clock *clock
	byID  map[primitive.ObjectID]*models.User
}

func newFakeUsers(c *clock) *fakeUsers {
	return &fakeUsers{clock: c, byID: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return models.User{}, userstore.ErrDuplicateEmail
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = f.clock.next()
	u.UpdatedAt = u.CreatedAt
	cp := u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := f.GetWithPassword(ctx, id)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (f *fakeUsers) GetWithPassword(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) matching(q string) []models.User {
	q = strings.ToLower(strings.TrimSpace(q))
	var out []models.User
	for _, u := range f.byID {
		if u.Role == models.RoleAdmin {
			continue
		}
		if q != "" {
			hay := strings.ToLower(strings.Join([]string{u.Name, u.Mobile, u.UniqueID, u.MemberID}, "\x00"))
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeUsers) List(_ context.Context, lf userstore.ListFilter) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.matching(lf.Query)
	if lf.Skip >= int64(len(all)) {
		return []models.User{}, nil
	}
	all = all[lf.Skip:]
	if lf.Limit > 0 && int64(len(all)) > lf.Limit {
		all = all[:lf.Limit]
	}
	for i := range all {
		all[i].PasswordHash = ""
	}
	return all, nil
}

func (f *fakeUsers) Count(_ context.Context, q string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matching(q))), nil
}

func (f *fakeUsers) UpdateFields(_ context.Context, id primitive.ObjectID, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return userstore.ErrNotFound
	}
	if email, ok := fields["email"]; ok {
		for oid, other := range f.byID {
			if oid != id && other.Email == email {
				return userstore.ErrDuplicateEmail
			}
		}
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v
		case "email":
			u.Email = v
		case "about":
			u.About = v
		case "companyBrief":
			u.CompanyBrief = v
		case "photo":
			u.Photo = models.BlobRef(v)
		case "logo":
			u.Logo = models.BlobRef(v)
		case "membershipValidity":
			u.MembershipValidity = v
		case "social.linkedin":
			u.Social.LinkedIn = v
		}
	}
	return nil
}

func (f *fakeUsers) SetPasswordHash(_ context.Context, id primitive.ObjectID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return userstore.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) SetValidityByRegistration(_ context.Context, regID primitive.ObjectID, year string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.RegistrationID != nil && *u.RegistrationID == regID {
			u.MembershipValidity = year
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return userstore.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) all() []models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out
}

type fakeCounters struct {
	mu  sync.Mutex
	seq map[string]int64
}

func newFakeCounters() *fakeCounters { return &fakeCounters{seq: map[string]int64{}} }

func (f *fakeCounters) Next(_ context.Context, name string, floor int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur := f.seq[name]
	if cur < floor-1 {
		cur = floor - 1
	}
	cur++
	f.seq[name] = cur
	return cur, nil
}

func (f *fakeCounters) RaiseTo(_ context.Context, name string, value int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value > f.seq[name] {
		f.seq[name] = value
	}
	return nil
}

type fakeOutbox struct {
	mu    sync.Mutex
	tasks []models.EmailTask
	err   error
}

func (f *fakeOutbox) Enqueue(_ context.Context, t models.EmailTask) (models.EmailTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.EmailTask{}, f.err
	}
	t.ID = primitive.NewObjectID()
	t.Status = models.EmailPending
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeOutbox) byKind(kind string) []models.EmailTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.EmailTask
	for _, t := range f.tasks {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

var errBlobDown = errors.New("blob store unavailable")

type fakeBlobs struct {
	mu       sync.Mutex
	objects  map[string][]byte
	putErr   error
	signFail map[string]bool
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}, signFail: map[string]bool{}}
}

func (f *fakeBlobs) Put(_ context.Context, key string, r io.Reader, _ *blobstore.PutOptions) error {
	if f.putErr != nil {
		return f.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = b
	return nil
}

func (f *fakeBlobs) PresignedURL(_ context.Context, key string, _ *blobstore.PresignOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signFail[key] {
		return "", errBlobDown
	}
	return "https://blobs.test/" + key + "?sig=abc", nil
}

func (f *fakeBlobs) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.objects))
	for k := range f.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
