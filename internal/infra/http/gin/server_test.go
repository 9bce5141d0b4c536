package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"homestay/internal/app/handlers"
	authsvc "homestay/internal/app/services/auth"
	"homestay/internal/domain/shared/fault"
	"homestay/internal/infra/config"
	"homestay/internal/infra/export"
	"homestay/internal/infra/obs"
	"homestay/internal/infra/security"
	"homestay/internal/infra/storage/memory"
	"homestay/internal/infra/validation"
)

type stubPhotos struct{ keys []string }

func (s *stubPhotos) Upload(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "https://cdn.example.com/" + key, nil
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	photos  *stubPhotos
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	factory := store.Factory()
	photos := &stubPhotos{}
	metrics := obs.NewMetrics()
	buses := handlers.Build(handlers.Deps{
		UoWFactory:  factory,
		Outbox:      store.Outbox(),
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		Validator:   validation.New(),
		Photos:      photos,
		Exporter:    export.XLSXExporter{},
		Metrics:     metrics,
		Currency:    "USD",
	})

	tokens, err := security.NewJWTIssuer("test-secret", "homestay-test")
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	auth := &authsvc.Service{
		UoWFactory: factory,
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:     tokens,
		SessionTTL: time.Hour,
	}
	if err := auth.EnsureAdmin(context.Background(), "admin@example.com", "admin-password"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	srv := NewServer(config.Config{Env: "test"}, obs.Middleware{}, metrics, obs.HealthHandlers{}, Handlers{
		Auth:           AuthHandler{Service: auth},
		Property:       PropertyHandler{Commands: buses.Commands, Queries: buses.Queries},
		Review:         ReviewHandler{Commands: buses.Commands, Queries: buses.Queries},
		Booking:        BookingHandler{Commands: buses.Commands, Queries: buses.Queries},
		Host:           HostHandler{Queries: buses.Queries},
		Admin:          AdminHandler{Commands: buses.Commands, Queries: buses.Queries},
		AuthMiddleware: AuthMiddleware{Service: auth}.Handle,
	})
	return &testServer{t: t, handler: srv.Handler, photos: photos}
}

func (s *testServer) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(email, role string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "name": strings.Split(email, "@")[0], "password": "correct-horse", "role": role,
	})
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("register %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	decode(s.t, rec, &out)
	return out.Token
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	decode(s.t, rec, &out)
	return out.Token
}

func (s *testServer) createProperty(token string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/properties", token, map[string]any{
		"name":      "Harbour Loft",
		"address":   "12 Quay Street, Lisbon",
		"amenities": []string{"wifi", "kitchen"},
		"base_rate": map[string]any{"amount": 100, "currency": "USD"},
	})
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("create property: status %d body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		ID string `json:"id"`
	}
	decode(s.t, rec, &out)
	return out.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error errorBody `json:"error"`
	}
	decode(t, rec, &body)
	return body.Error.Kind
}

type bookingBody struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Nights     int    `json:"nights"`
	TotalPrice struct {
		Amount int64 `json:"amount"`
	} `json:"total_price"`
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	host := s.register("host@example.com", "host")
	traveler := s.register("traveler@example.com", "")
	propertyID := s.createProperty(host)

	rec := s.do(http.MethodPost, "/api/v1/bookings", traveler, map[string]string{
		"property_id": propertyID, "start_date": "2024-01-01", "end_date": "2024-01-05",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create booking: status %d body %s", rec.Code, rec.Body.String())
	}
	var booking bookingBody
	decode(t, rec, &booking)
	if booking.Status != "pending" || booking.Nights != 4 || booking.TotalPrice.Amount != 400 {
		t.Fatalf("unexpected booking %+v", booking)
	}

	rec = s.do(http.MethodPost, "/api/v1/bookings", traveler, map[string]string{
		"property_id": propertyID, "start_date": "2024-01-02", "end_date": "2024-01-06",
	})
	if rec.Code != http.StatusConflict || errorKind(t, rec) != "conflict" {
		t.Fatalf("overlap: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodGet, "/api/v1/properties/"+propertyID+"/availability?from=2024-01-01&to=2024-01-11", "", nil)
	var calendar struct {
		BookedNights int `json:"booked_nights"`
		FreeNights   int `json:"free_nights"`
	}
	decode(t, rec, &calendar)
	if rec.Code != http.StatusOK || calendar.BookedNights != 4 || calendar.FreeNights != 6 {
		t.Fatalf("availability: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodPost, "/api/v1/bookings/"+booking.ID+"/approve", traveler, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("traveler approve: status %d body %s", rec.Code, rec.Body.String())
	}

	for _, step := range []struct {
		action string
		status string
	}{{"approve", "confirmed"}, {"complete", "completed"}} {
		rec = s.do(http.MethodPost, "/api/v1/bookings/"+booking.ID+"/"+step.action, host, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d body %s", step.action, rec.Code, rec.Body.String())
		}
		var got bookingBody
		decode(t, rec, &got)
		if got.Status != step.status {
			t.Fatalf("%s: status %q, want %q", step.action, got.Status, step.status)
		}
	}

	rec = s.do(http.MethodPost, "/api/v1/properties/"+propertyID+"/reviews", traveler, map[string]any{"rating": 4, "comment": "lovely"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("review: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = s.do(http.MethodPost, "/api/v1/properties/"+propertyID+"/reviews", traveler, map[string]any{"rating": 5})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second review: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodGet, "/api/v1/properties/"+propertyID, "", nil)
	var property struct {
		AverageRating float64 `json:"average_rating"`
		NumReviews    int     `json:"num_reviews"`
	}
	decode(t, rec, &property)
	if property.AverageRating != 4 || property.NumReviews != 1 {
		t.Fatalf("rating not refreshed: %+v", property)
	}

	rec = s.do(http.MethodGet, "/api/v1/me/bookings", traveler, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), booking.ID) {
		t.Fatalf("me/bookings: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = s.do(http.MethodGet, "/api/v1/host/dashboard", host, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestReviewWithoutStayIsForbidden(t *testing.T) {
	s := newTestServer(t)
	host := s.register("host@example.com", "host")
	traveler := s.register("traveler@example.com", "traveler")
	propertyID := s.createProperty(host)

	rec := s.do(http.MethodPost, "/api/v1/properties/"+propertyID+"/reviews", traveler, map[string]any{"rating": 5})
	if rec.Code != http.StatusForbidden || errorKind(t, rec) != "forbidden" {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestCreateBookingReplaysIdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	host := s.register("host@example.com", "host")
	traveler := s.register("traveler@example.com", "traveler")
	propertyID := s.createProperty(host)

	body := map[string]string{"property_id": propertyID, "start_date": "2024-03-01", "end_date": "2024-03-03"}
	first := s.do(http.MethodPost, "/api/v1/bookings", traveler, body, idempotencyHeader, "key-1")
	second := s.do(http.MethodPost, "/api/v1/bookings", traveler, body, idempotencyHeader, "key-1")
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("statuses %d/%d: %s", first.Code, second.Code, second.Body.String())
	}
	var a, b bookingBody
	decode(t, first, &a)
	decode(t, second, &b)
	if a.ID != b.ID {
		t.Fatalf("replay created a new booking: %s vs %s", a.ID, b.ID)
	}
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		kind   string
	}{
		{"anonymous booking", http.MethodPost, "/api/v1/bookings", map[string]string{"property_id": "p"}, http.StatusUnauthorized, "unauthorized"},
		{"admin self registration", http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "x@example.com", "name": "x", "password": "long-enough", "role": "admin"}, http.StatusBadRequest, "invalid_input"},
		{"short password", http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "y@example.com", "name": "y", "password": "short"}, http.StatusBadRequest, "invalid_input"},
		{"bad credentials", http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "nobody@example.com", "password": "whatever"}, http.StatusUnauthorized, "unauthorized"},
		{"missing property", http.MethodGet, "/api/v1/properties/missing", nil, http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(tc.method, tc.path, "", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status %d, want %d (%s)", rec.Code, tc.status, rec.Body.String())
			}
			if kind := errorKind(t, rec); kind != tc.kind {
				t.Fatalf("kind %q, want %q", kind, tc.kind)
			}
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.register("traveler@example.com", "traveler")

	if rec := s.do(http.MethodGet, "/api/v1/auth/me", token, nil); rec.Code != http.StatusOK {
		t.Fatalf("me: status %d", rec.Code)
	}
	if rec := s.do(http.MethodPost, "/api/v1/auth/logout", token, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: status %d body %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodGet, "/api/v1/auth/me", token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: status %d", rec.Code)
	}
}

func TestAdminEndpointsRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	host := s.register("host@example.com", "host")
	propertyID := s.createProperty(host)

	if rec := s.do(http.MethodGet, "/api/v1/admin/users", host, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("host listing users: status %d", rec.Code)
	}

	admin := s.login("admin@example.com", "admin-password")
	rec := s.do(http.MethodGet, "/api/v1/admin/users?role=host", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("users: status %d body %s", rec.Code, rec.Body.String())
	}
	var users struct {
		Total int `json:"total"`
	}
	decode(t, rec, &users)
	if users.Total != 1 {
		t.Fatalf("expected one host, got %d", users.Total)
	}

	rec = s.do(http.MethodPost, "/api/v1/admin/properties/"+propertyID+"/rating/recompute", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("recompute: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestSearchAndUploadPhoto(t *testing.T) {
	s := newTestServer(t)
	host := s.register("host@example.com", "host")
	propertyID := s.createProperty(host)

	rec := s.do(http.MethodGet, "/api/v1/properties?amenities=WiFi&base_rate%5Blte%5D=150&select=name,base_rate", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: status %d body %s", rec.Code, rec.Body.String())
	}
	var page struct {
		Count int              `json:"count"`
		Items []map[string]any `json:"items"`
	}
	decode(t, rec, &page)
	if page.Count != 1 || page.Items[0]["name"] != "Harbour Loft" {
		t.Fatalf("unexpected page %+v", page)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="photo"; filename="loft.jpg"`},
		"Content-Type":        {"image/jpeg"},
	})
	if err != nil {
		t.Fatalf("part: %v", err)
	}
	part.Write([]byte("jpeg-bytes"))
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties/"+propertyID+"/photos", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+host)
	out := httptest.NewRecorder()
	s.handler.ServeHTTP(out, req)
	if out.Code != http.StatusCreated {
		t.Fatalf("upload: status %d body %s", out.Code, out.Body.String())
	}
	if len(s.photos.keys) != 1 {
		t.Fatalf("expected one stored photo, got %v", s.photos.keys)
	}
	if !strings.Contains(out.Body.String(), "https://cdn.example.com/") {
		t.Fatalf("photo url missing: %s", out.Body.String())
	}
}

func TestHostExportIsXLSX(t *testing.T) {
	s := newTestServer(t)
	host := s.register("host@example.com", "host")
	s.createProperty(host)

	rec := s.do(http.MethodGet, "/api/v1/host/bookings/export", host, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status %d body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, ".xlsx") {
		t.Fatalf("content disposition %q", cd)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/livez", "/readyz", "/metrics"} {
		if rec := s.do(http.MethodGet, path, "", nil); rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
	}
}

func TestStatusForKinds(t *testing.T) {
	cases := map[fault.Kind]int{
		fault.NotFound:     http.StatusNotFound,
		fault.Forbidden:    http.StatusForbidden,
		fault.Conflict:     http.StatusConflict,
		fault.InvalidInput: http.StatusBadRequest,
		fault.Unauthorized: http.StatusUnauthorized,
		fault.Internal:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := statusFor(kind); got != want {
			t.Errorf("%s: got %d, want %d", kind, got, want)
		}
	}
}
