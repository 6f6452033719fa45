//go:build integration

package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"go-writer-app/internal/cache"
	"go-writer-app/internal/config"
	"go-writer-app/internal/content"
	"go-writer-app/internal/data"
	"go-writer-app/internal/logger"
	"go-writer-app/internal/markdown"
	"go-writer-app/internal/metrics"
	"go-writer-app/internal/middleware"
	"go-writer-app/internal/service"
	"go-writer-app/internal/tree"
	"go-writer-app/internal/view"
	"go-writer-app/web"
)

// memorySession is a Manager that keeps session values in a plain map,
// shared across requests for the lifetime of one test.
type memorySession struct {
	values map[string]interface{}
}

func newMemorySession() *memorySession {
	return &memorySession{values: make(map[string]interface{})}
}

func (s *memorySession) LoadAndSave(next http.Handler) http.Handler { return next }

func (s *memorySession) Put(ctx context.Context, key string, val interface{}) {
	s.values[key] = val
}

func (s *memorySession) GetString(ctx context.Context, key string) string {
	v, _ := s.values[key].(string)
	return v
}

func (s *memorySession) GetInt64(ctx context.Context, key string) int64 {
	v, _ := s.values[key].(int64)
	return v
}

func (s *memorySession) PopString(ctx context.Context, key string) string {
	v, _ := s.values[key].(string)
	delete(s.values, key)
	return v
}

func (s *memorySession) RenewToken(ctx context.Context) error { return nil }

func (s *memorySession) Destroy(ctx context.Context) error {
	s.values = make(map[string]interface{})
	return nil
}

func (s *memorySession) Remove(ctx context.Context, key string) {
	delete(s.values, key)
}

// noopNotifier satisfies service.Notifier without sending anything.
type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, page *data.Page, group string) error { return nil }

type testApp struct {
	Router   *chi.Mux
	DB       *sqlx.DB
	Pages    *service.PageService
	Sessions *memorySession
}

// setupTest initializes a full application stack over an in-memory
// SQLite database.
func setupTest(t *testing.T) (*testApp, func()) {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}
	db.MustExec(`
	CREATE TABLE pages (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL,
		dir_path TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL UNIQUE,
		parent_id INTEGER,
		template TEXT NOT NULL DEFAULT 'page',
		banner TEXT,
		body TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		sidebar TEXT NOT NULL DEFAULT '',
		user_id INTEGER NOT NULL DEFAULT 1,
		sort INTEGER NOT NULL DEFAULT 75,
		pub_date TIMESTAMP,
		published BOOLEAN NOT NULL DEFAULT 0,
		edit_date TIMESTAMP NOT NULL
	);
	CREATE TABLE page_versions (
		id INTEGER PRIMARY KEY,
		original_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		slug TEXT NOT NULL,
		dir_path TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL,
		parent_id INTEGER,
		template TEXT NOT NULL,
		banner TEXT,
		body TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		sidebar TEXT NOT NULL DEFAULT '',
		user_id INTEGER NOT NULL DEFAULT 1,
		sort INTEGER NOT NULL DEFAULT 75,
		pub_date TIMESTAMP,
		published BOOLEAN NOT NULL DEFAULT 0,
		edit_date TIMESTAMP NOT NULL
	);
	CREATE TABLE tags (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE);
	CREATE TABLE page_tags (page_id INTEGER NOT NULL, tag_id INTEGER NOT NULL, PRIMARY KEY (page_id, tag_id));
	CREATE TABLE page_version_tags (page_version_id INTEGER NOT NULL, tag_id INTEGER NOT NULL, PRIMARY KEY (page_version_id, tag_id));
	CREATE TABLE subscribers (
		id INTEGER PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		first_name TEXT,
		last_name TEXT,
		subscription TEXT NOT NULL DEFAULT 'all',
		sub_date TIMESTAMP NOT NULL
	);
	CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		about_me TEXT NOT NULL DEFAULT '',
		timezone TEXT NOT NULL DEFAULT 'UTC'
	);
	CREATE TABLE definitions (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		hidden_body TEXT NOT NULL DEFAULT '',
		dtype TEXT NOT NULL DEFAULT '',
		tag_id INTEGER,
		page_id INTEGER
	);
	CREATE TABLE links (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		sort INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE records (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		rec_date TIMESTAMP NOT NULL,
		words INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT ''
	);`)

	log := logger.New(config.LogConfig{Level: "error", Format: "console"}, io.Discard)
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		t.Fatalf("Failed to initialize views: %v", err)
	}
	navCache, err := cache.New(config.CacheConfig{FilePath: "file::memory:"})
	if err != nil {
		t.Fatalf("Failed to initialize cache: %v", err)
	}

	pageRepository := data.NewPageRepository(db)
	versionRepository := data.NewVersionRepository(db)
	tagRepository := data.NewTagRepository(db)
	userRepository := data.NewUserRepository(db)
	subscriberRepository := data.NewSubscriberRepository(db)
	definitionRepository := data.NewDefinitionRepository(db)
	linkRepository := data.NewLinkRepository(db)
	recordRepository := data.NewRecordRepository(db)

	navigator := tree.NewNavigator(pageRepository)
	engine := metrics.NewEngine(navigator)
	contentResolver := content.NewResolver(pageRepository, "https://example.com")
	renderer := markdown.New()

	pageService := service.NewPageService(db, pageRepository, versionRepository, navigator, engine, contentResolver, renderer, noopNotifier{}, log)
	tagService := service.NewTagService(tagRepository)
	userService := service.NewUserService(userRepository)
	subscriberService := service.NewSubscriberService(subscriberRepository)
	definitionService := service.NewDefinitionService(definitionRepository)
	linkService := service.NewLinkService(linkRepository)
	recordService := service.NewRecordService(recordRepository)
	navService := service.NewNavService(pageRepository, navCache, time.Minute, log)

	sessions := newMemorySession()
	pageHandler := NewPageHandler(pageService, navService, subscriberService, viewService, log)
	adminHandler := NewAdminHandler(pageService, tagService, userService, subscriberService, definitionService, linkService, recordService, navService, viewService, log)
	authHandler := NewAuthHandler(userService, sessions, viewService, log)
	sitemapHandler := NewSitemapHandler(pageService, "https://example.com")
	errorMiddleware := middleware.Error(log, viewService)

	router := NewRouter(pageHandler, adminHandler, authHandler, sitemapHandler, errorMiddleware, sessions)

	app := &testApp{Router: router, DB: db, Pages: pageService, Sessions: sessions}
	teardown := func() {
		navCache.Close()
		db.Close()
	}
	return app, teardown
}

func createTestPage(t *testing.T, app *testApp, in service.PageInput) *data.Page {
	t.Helper()
	page, err := app.Pages.CreatePage(context.Background(), in)
	if err != nil {
		t.Fatalf("failed to create test page: %v", err)
	}
	return page
}

func TestViewHandler(t *testing.T) {
	app, teardown := setupTest(t)
	defer teardown()

	createTestPage(t, app, service.PageInput{
		Title:     "Welcome",
		Slug:      "welcome",
		Template:  data.TemplatePage,
		Body:      "Hello from the welcome page.",
		UserID:    1,
		Published: true,
	})

	t.Run("published page renders", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/welcome", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "Welcome") {
			t.Errorf("expected page title in response")
		}
	})

	t.Run("unknown path is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestViewHandlerPreviewCodes(t *testing.T) {
	app, teardown := setupTest(t)
	defer teardown()

	draft := createTestPage(t, app, service.PageInput{
		Title:    "Hidden Draft",
		Slug:     "hidden-draft",
		Template: data.TemplatePage,
		Body:     "Not public yet.",
		UserID:   1,
	})

	t.Run("unpublished page is hidden without a code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hidden-draft", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("valid preview code grants access", func(t *testing.T) {
		fragment, err := content.GenViewCode(draft, time.Now())
		if err != nil {
			t.Fatalf("failed to generate view code: %v", err)
		}
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hidden-draft"+fragment, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 with code, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Hidden Draft") {
			t.Errorf("expected draft title in response")
		}
	})

	t.Run("garbage code is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hidden-draft?code=wrong", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestSubscribeHandler(t *testing.T) {
	app, teardown := setupTest(t)
	defer teardown()

	t.Run("form renders", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscribe", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("valid signup is accepted", func(t *testing.T) {
		form := url.Values{"email": {"reader@example.com"}, "groups": {"blog"}}
		req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "Thanks for subscribing") {
			t.Errorf("expected confirmation in response")
		}
	})

	t.Run("duplicate signup conflicts", func(t *testing.T) {
		form := url.Values{"email": {"reader@example.com"}}
		req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("malformed email is rejected", func(t *testing.T) {
		form := url.Values{"email": {"not-an-address"}}
		req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestSitemapHandler(t *testing.T) {
	app, teardown := setupTest(t)
	defer teardown()

	createTestPage(t, app, service.PageInput{
		Title:     "Welcome",
		Slug:      "welcome",
		Template:  data.TemplatePage,
		Body:      "Hello.",
		UserID:    1,
		Published: true,
	})
	createTestPage(t, app, service.PageInput{
		Title:    "Secret",
		Slug:     "secret",
		Template: data.TemplatePage,
		Body:     "Draft.",
		UserID:   1,
	})

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "https://example.com/welcome") {
		t.Errorf("expected published page in sitemap, got %s", body)
	}
	if strings.Contains(body, "/secret") {
		t.Errorf("draft page leaked into sitemap: %s", body)
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	app, teardown := setupTest(t)
	defer teardown()

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/pages", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestLoginFlow(t *testing.T) {
	app, teardown := setupTest(t)
	defer teardown()

	userService := service.NewUserService(data.NewUserRepository(app.DB))
	if _, err := userService.CreateUser(context.Background(), service.UserInput{
		Username:        "editor",
		Password:        "letmein1234",
		ConfirmPassword: "letmein1234",
	}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	t.Run("wrong password is rejected", func(t *testing.T) {
		form := url.Values{"username": {"editor"}, "password": {"wrong"}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("correct password opens the admin", func(t *testing.T) {
		form := url.Values{"username": {"editor"}, "password": {"letmein1234"}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		if rec.Code != http.StatusSeeOther && rec.Code != http.StatusFound {
			t.Fatalf("expected redirect after login, got %d", rec.Code)
		}

		// The session now carries the user, so admin pages render.
		rec = httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/pages", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 on admin index, got %d", rec.Code)
		}
	})
}
