package members_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/memberhub/internal/app/features/members"
	"github.com/dalemusser/memberhub/internal/app/membership"
	"github.com/dalemusser/memberhub/internal/app/membership/membershiptest"
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"github.com/dalemusser/memberhub/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	fx     *testutil.Fixtures
	env    *membershiptest.Env
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	env := membershiptest.New(t, db)
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-0123", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	h := members.NewHandler(env.Service, nil, logger)
	return &testEnv{fx: testutil.NewFixtures(t, db), env: env, router: members.Routes(h, sm)}
}

func asUser(u models.User) testutil.TestUser {
	return testutil.TestUser{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: u.Role}
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	te := newTestEnv(t)

	rec := testutil.NewRecorder()
	te.router.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeList_PagesMembersOnly(t *testing.T) {
	te := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	te.fx.CreateAdmin(ctx, "admin@example.com", "x")
	te.fx.CreateMember(ctx, "Alice", "alice@example.com", "10001", "C10000")
	te.fx.CreateMember(ctx, "Bob", "bob@example.com", "10002", "C10001")
	te.fx.CreateMember(ctx, "Carol", "carol@example.com", "10003", "C10002")

	req := testutil.WithUser(httptest.NewRequest("GET", "/?page=1&size=2", nil), testutil.MemberUser())
	rec := testutil.NewRecorder()
	te.router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var page membership.DirectoryPage
	rec.DecodeJSON(t, &page)
	if page.Total != 3 || page.TotalPages != 2 || len(page.Data) != 2 || page.Size != 2 {
		t.Errorf("page = total %d, pages %d, rows %d, size %d; want 3, 2, 2, 2",
			page.Total, page.TotalPages, len(page.Data), page.Size)
	}
	if got := rec.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestServeList_Search(t *testing.T) {
	te := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	te.fx.CreateMember(ctx, "Alice", "alice@example.com", "10001", "C10000")
	te.fx.CreateMember(ctx, "Bob", "bob@example.com", "10002", "I10000")

	req := testutil.WithUser(httptest.NewRequest("GET", "/?q=i10000", nil), testutil.MemberUser())
	rec := testutil.NewRecorder()
	te.router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var page membership.DirectoryPage
	rec.DecodeJSON(t, &page)
	if len(page.Data) != 1 || page.Data[0].Name != "Bob" {
		t.Errorf("search returned %+v, want Bob only", page.Data)
	}
}

func TestServeOne_And_Fetch(t *testing.T) {
	te := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := te.fx.CreateMember(ctx, "Alice", "alice@example.com", "10001", "C10000")

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"get by path", httptest.NewRequest("GET", "/"+u.ID.Hex(), nil), http.StatusOK},
		{"post by body", testutil.NewJSONRequest("POST", "/", map[string]string{"id": u.ID.Hex()}), http.StatusOK},
		{"unknown", httptest.NewRequest("GET", "/64b7f0f0f0f0f0f0f0f0f0f0", nil), http.StatusNotFound},
		{"malformed", httptest.NewRequest("GET", "/not-an-id", nil), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			te.router.ServeHTTP(rec, testutil.WithUser(tt.req, testutil.MemberUser()))
			rec.AssertStatus(t, tt.want)
			if tt.want == http.StatusOK {
				rec.AssertContains(t, `"memberId":"C10000"`)
				if strings.Contains(rec.Body.String(), "password") {
					t.Error("response leaks password field")
				}
			}
		})
	}
}

func TestHandleUpdate_MemberOwnProfile(t *testing.T) {
	te := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := te.fx.CreateMember(ctx, "Alice", "alice@example.com", "10001", "C10000")

	body := map[string]any{
		"id": u.ID.Hex(),
		"updates": map[string]any{
			"about":  "<b>Hello</b><script>alert(1)</script>",
			"name":   "Mallory",
			"social": map[string]any{"linkedin": "https://linkedin.com/in/alice"},
		},
	}
	rec := testutil.NewRecorder()
	te.router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest("PATCH", "/", body), asUser(u)))
	rec.AssertStatus(t, http.StatusOK)

	got, err := te.env.Users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Alice" {
		t.Errorf("member changed their own name to %q", got.Name)
	}
	if strings.Contains(got.About, "<script") || !strings.Contains(got.About, "Hello") {
		t.Errorf("about not sanitized: %q", got.About)
	}
	if got.Social.LinkedIn != "https://linkedin.com/in/alice" {
		t.Errorf("social.linkedin = %q", got.Social.LinkedIn)
	}
}

func TestHandleUpdate_MemberOtherProfileForbidden(t *testing.T) {
	te := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := te.fx.CreateMember(ctx, "Alice", "alice@example.com", "10001", "C10000")
	bob := te.fx.CreateMember(ctx, "Bob", "bob@example.com", "10002", "C10001")

	body := map[string]any{"id": bob.ID.Hex(), "updates": map[string]any{"about": "hi"}}
	rec := testutil.NewRecorder()
	te.router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest("PATCH", "/", body), asUser(alice)))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleUpdate_AdminEditsProfile(t *testing.T) {
	te := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := te.fx.CreateMember(ctx, "Alice", "alice@example.com", "10001", "C10000")

	body := map[string]any{"id": u.ID.Hex(), "updates": map[string]any{"name": "Alice Smith", "memberId": "X1"}}
	rec := testutil.NewRecorder()
	te.router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest("PATCH", "/", body), testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	got, err := te.env.Users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Alice Smith" || got.MemberID != "C10000" {
		t.Errorf("name %q memberId %q, want renamed with identifiers untouched", got.Name, got.MemberID)
	}
}

func TestHandleUpdateMultipart_LogoUpload(t *testing.T) {
	te := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := te.fx.CreateMember(ctx, "Alice", "alice@example.com", "10001", "C10000")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("companyBrief", "We trade things.")
	fw, err := mw.CreateFormFile("logo", "logo.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte("pngdata"))
	// members may not replace their photo; the file is ignored
	fw, err = mw.CreateFormFile("photo", "me.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte("pngdata"))
	_ = mw.Close()

	req := httptest.NewRequest("PATCH", "/"+u.ID.Hex(), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := testutil.NewRecorder()
	te.router.ServeHTTP(rec, testutil.WithUser(req, asUser(u)))
	rec.AssertStatus(t, http.StatusOK)

	var view membership.MemberView
	rec.DecodeJSON(t, &view)
	if !strings.HasPrefix(view.LogoKey, "uploads/logo-") {
		t.Errorf("logoKey = %q", view.LogoKey)
	}
	if !strings.HasPrefix(view.Logo, "/files/") {
		t.Errorf("logo url = %q, want a signed local URL", view.Logo)
	}
	if view.PhotoKey != "" {
		t.Errorf("photoKey = %q, want none", view.PhotoKey)
	}
	if view.CompanyBrief != "We trade things." {
		t.Errorf("companyBrief = %q", view.CompanyBrief)
	}
}

func TestHandleChangePassword(t *testing.T) {
	te := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, _ := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	u := te.fx.CreateAdmin(ctx, "admin@example.com", string(hash))

	tests := []struct {
		name    string
		current string
		next    string
		want    int
	}{
		{"missing", "", "new-password", http.StatusBadRequest},
		{"wrong current", "nope", "new-password", http.StatusBadRequest},
		{"ok", "old-password", "new-password", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]string{"currentPassword": tt.current, "newPassword": tt.next}
			rec := testutil.NewRecorder()
			te.router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/change-password", body), asUser(u)))
			rec.AssertStatus(t, tt.want)
		})
	}

	got, err := te.env.Users.GetWithPassword(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetWithPassword failed: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(got.PasswordHash), []byte("new-password")) != nil {
		t.Error("stored hash does not match the new password")
	}
}
