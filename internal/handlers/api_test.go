package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/anonto42/foodgram/backend/internal/handlers"
	"github.com/anonto42/foodgram/backend/internal/middleware"
	"github.com/anonto42/foodgram/backend/internal/models"
	"github.com/anonto42/foodgram/backend/internal/render"
	"github.com/anonto42/foodgram/backend/internal/router"
	"github.com/anonto42/foodgram/backend/internal/storage"
	"github.com/anonto42/foodgram/backend/internal/testdb"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const (
	testSecret = "test-secret"
	pngDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
)

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testdb.New(t)
	images, err := storage.NewLocalStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("Failed to create image store: %v", err)
	}

	e := echo.New()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler
	err = router.SetupRoutes(e, router.Deps{
		DB:          db,
		Images:      images,
		Renderer:    render.NewTextRenderer(),
		JWTSecret:   testSecret,
		PageSize:    6,
		MaxPageSize: 100,
	})
	if err != nil {
		t.Fatalf("Failed to set up routes: %v", err)
	}
	return &testServer{e: e, db: db}
}

func token(t *testing.T, id uint, username string) string {
	t.Helper()
	tok, err := middleware.SignToken(&models.JwtCustomClaims{
		UserID:   id,
		Username: username,
		Email:    username + "@example.com",
	}, testSecret)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tok
}

func (s *testServer) do(t *testing.T, method, target, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestAnonymousAccess(t *testing.T) {
	s := newTestServer(t)
	author := testdb.User(t, s.db, 1, "alice")
	testdb.Recipe(t, s.db, author.ID, "soup", nil)
	testdb.Recipe(t, s.db, author.ID, "stew", nil)

	rec := s.do(t, http.MethodGet, "/api/recipes", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var all handlers.Paginated[models.RecipeView]
	decode(t, rec, &all)

	// viewer-relative filters are no-ops for anonymous viewers
	rec = s.do(t, http.MethodGet, "/api/recipes?is_favorited=1&is_in_shopping_cart=1", "", nil)
	var filtered handlers.Paginated[models.RecipeView]
	decode(t, rec, &filtered)
	if filtered.Count != all.Count || all.Count != 2 {
		t.Errorf("expected filters to be ignored, got %d vs %d", filtered.Count, all.Count)
	}
	for _, r := range filtered.Results {
		if r.IsFavorited || r.IsInShoppingCart {
			t.Errorf("anonymous view must have false flags: %+v", r)
		}
	}

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/recipes/download_shopping_cart"},
		{http.MethodPost, "/api/recipes"},
		{http.MethodGet, "/api/users/me"},
		{http.MethodGet, "/api/users/subscriptions"},
		{http.MethodPost, "/api/recipes/1/favorite"},
		{http.MethodDelete, "/api/recipes/1/favorite"},
		{http.MethodPost, "/api/recipes/1/shopping_cart"},
		{http.MethodDelete, "/api/recipes/1/shopping_cart"},
		{http.MethodPatch, "/api/recipes/1"},
		{http.MethodDelete, "/api/recipes/1"},
		{http.MethodPost, "/api/users/1/subscribe"},
		{http.MethodDelete, "/api/users/1/subscribe"},
		{http.MethodPost, "/api/recipes/abc/favorite"},
	} {
		if rec := s.do(t, tc.method, tc.path, "", nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/recipes", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a bad token, got %d", rec.Code)
	}
}

func TestTokenProvisionsUser(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/users/me", token(t, 7, "newcomer"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var me models.UserView
	decode(t, rec, &me)
	if me.ID != 7 || me.Username != "newcomer" {
		t.Errorf("unexpected profile: %+v", me)
	}
}

func TestRecipeLifecycle(t *testing.T) {
	s := newTestServer(t)
	alice := token(t, 1, "alice")
	bob := token(t, 2, "bob")
	eggs := testdb.Ingredient(t, s.db, "eggs", "pcs")
	tag := testdb.Tag(t, s.db, "Breakfast", "#E26C2D", "breakfast")

	rec := s.do(t, http.MethodPost, "/api/recipes", alice, map[string]any{
		"ingredients":  []map[string]any{{"id": eggs.ID, "amount": 2}},
		"tags":         []uint{tag.ID},
		"image":        pngDataURI,
		"name":         "Omelette",
		"text":         "Beat the eggs.",
		"cooking_time": 5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created models.RecipeView
	decode(t, rec, &created)
	if !strings.HasPrefix(created.Image, "/media/recipes/images/") {
		t.Errorf("unexpected image ref %q", created.Image)
	}
	path := "/api/recipes/" + itoa(created.ID)

	rec = s.do(t, http.MethodPatch, path, bob, map[string]any{"name": "Stolen"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-author patch, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPatch, path, alice, map[string]any{"tags": []uint{}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty tags, got %d", rec.Code)
	}
	var fieldErrs map[string][]string
	decode(t, rec, &fieldErrs)
	if len(fieldErrs["tags"]) == 0 {
		t.Errorf("expected a tags error, got %v", fieldErrs)
	}

	rec = s.do(t, http.MethodPost, path+"/shopping_cart", bob, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 adding to cart, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary models.RecipeSummary
	decode(t, rec, &summary)
	if summary.ID != created.ID {
		t.Errorf("unexpected summary %+v", summary)
	}

	rec = s.do(t, http.MethodPost, path+"/shopping_cart", bob, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 on duplicate cart add, got %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["errors"] == "" {
		t.Errorf("expected an errors message, got %v", body)
	}

	rec = s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", bob, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "attachment") {
		t.Errorf("expected attachment, got %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "- eggs (pcs) - 2") {
		t.Errorf("unexpected shopping list %q", rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, path, bob, nil)
	var asBob models.RecipeView
	decode(t, rec, &asBob)
	if !asBob.IsInShoppingCart || asBob.IsFavorited {
		t.Errorf("unexpected flags for bob: %+v", asBob)
	}

	if rec := s.do(t, http.MethodDelete, path, alice, nil); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, path, alice, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, path+"/shopping_cart", bob, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for cart removal on a deleted recipe, got %d", rec.Code)
	}
}

func TestPaginationEnvelope(t *testing.T) {
	s := newTestServer(t)
	author := testdb.User(t, s.db, 1, "alice")
	for i := 0; i < 8; i++ {
		testdb.Recipe(t, s.db, author.ID, "recipe"+itoa(uint(i)), nil)
	}

	rec := s.do(t, http.MethodGet, "/api/recipes", "", nil)
	var page handlers.Paginated[models.RecipeView]
	decode(t, rec, &page)
	if page.Count != 8 || len(page.Results) != 6 || page.Next == nil || page.Previous != nil {
		t.Errorf("unexpected first page: count=%d results=%d next=%v prev=%v", page.Count, len(page.Results), page.Next, page.Previous)
	}

	rec = s.do(t, http.MethodGet, "/api/recipes?page=2&limit=5", "", nil)
	decode(t, rec, &page)
	if len(page.Results) != 3 || page.Next != nil || page.Previous == nil {
		t.Errorf("unexpected second page: results=%d next=%v prev=%v", len(page.Results), page.Next, page.Previous)
	}

	if rec := s.do(t, http.MethodGet, "/api/recipes?page=9", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 past the last page, got %d", rec.Code)
	}
}

func TestSubscriptionEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := token(t, 1, "alice")
	bobUser := testdb.User(t, s.db, 2, "bob")
	testdb.Recipe(t, s.db, bobUser.ID, "soup", nil)
	testdb.Recipe(t, s.db, bobUser.ID, "stew", nil)

	// provision alice
	s.do(t, http.MethodGet, "/api/users/me", alice, nil)

	if rec := s.do(t, http.MethodPost, "/api/users/1/subscribe", alice, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for self subscribe, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, "/api/users/99/subscribe", alice, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown author, got %d", rec.Code)
	}

	rec := s.do(t, http.MethodPost, "/api/users/2/subscribe?recipes_limit=1", alice, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var view models.SubscriptionView
	decode(t, rec, &view)
	if !view.IsSubscribed || view.RecipesCount != 2 || len(view.Recipes) != 1 {
		t.Errorf("unexpected subscription view: %+v", view)
	}

	rec = s.do(t, http.MethodGet, "/api/users/subscriptions", alice, nil)
	var page handlers.Paginated[models.SubscriptionView]
	decode(t, rec, &page)
	if page.Count != 1 || len(page.Results[0].Recipes) != 2 {
		t.Errorf("unexpected subscriptions page: %+v", page)
	}

	rec = s.do(t, http.MethodGet, "/api/users/2", alice, nil)
	var bob models.UserView
	decode(t, rec, &bob)
	if !bob.IsSubscribed {
		t.Error("expected is_subscribed for a followed user")
	}

	if rec := s.do(t, http.MethodDelete, "/api/users/2/subscribe", alice, nil); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, "/api/users/2/subscribe", alice, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 unsubscribing twice, got %d", rec.Code)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t)
	testdb.Tag(t, s.db, "Lunch", "#8775D2", "lunch")
	testdb.Tag(t, s.db, "Breakfast", "#E26C2D", "breakfast")
	sugar := testdb.Ingredient(t, s.db, "sugar", "g")
	testdb.Ingredient(t, s.db, "salt", "g")

	rec := s.do(t, http.MethodGet, "/api/tags", "", nil)
	var tags []models.Tag
	decode(t, rec, &tags)
	if len(tags) != 2 || tags[0].Slug != "breakfast" {
		t.Errorf("expected unpaginated tags ordered by name, got %+v", tags)
	}

	rec = s.do(t, http.MethodGet, "/api/ingredients?name=Su", "", nil)
	var ingredients []models.Ingredient
	decode(t, rec, &ingredients)
	if len(ingredients) != 1 || ingredients[0].ID != sugar.ID {
		t.Errorf("expected only sugar, got %+v", ingredients)
	}

	if rec := s.do(t, http.MethodGet, "/api/ingredients/999", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	if rec := s.do(t, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
