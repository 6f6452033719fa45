package service

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"go-writer-app/internal/content"
	"go-writer-app/internal/data"
	"go-writer-app/internal/logger"
	"go-writer-app/internal/markdown"
	"go-writer-app/internal/metrics"
	"go-writer-app/internal/tree"
)

// Notifier triggers subscriber notices for a freshly published page.
type Notifier interface {
	Notify(ctx context.Context, page *data.Page, group string) error
}

// PageInput carries the validated fields of an add or edit action.
type PageInput struct {
	Title     string `validate:"required"`
	Slug      string `validate:"required"`
	Template  string `validate:"required,oneof=page post story book chapter blog"`
	ParentID  *int64
	Banner    *string
	Body      string `validate:"required"`
	Notes     string
	Summary   string `validate:"max=300"`
	Sidebar   string `validate:"max=1000"`
	TagIDs    []int64
	UserID    int64 `validate:"required"`
	Sort      int
	PubDate   *time.Time
	Published bool

	// NotifySubscribers is the explicit intent flag from the form; the
	// dispatcher never fires on a publish toggle alone.
	NotifySubscribers bool
	NotifyGroup       string
}

// PageView is the assembled display data for one rendered page.
type PageView struct {
	Page        *data.Page
	HTMLBody    template.HTML
	HTMLSidebar template.HTML
	Banner      string
	Section     string
	Description string
	WordCount   int
	ReadTime    string
	PageCount   int
	Ancestors   []*data.Page
	Prev        *data.Page
	Next        *data.Page
}

// PageService provides the add/edit/render logic for pages: validation,
// version snapshots, path resolution with subtree cascade, and display
// assembly.
type PageService struct {
	db       *sqlx.DB
	pages    *data.PageRepository
	versions *data.VersionRepository
	nav      *tree.Navigator
	engine   *metrics.Engine
	resolver *content.Resolver
	renderer *markdown.Renderer
	notifier Notifier
	validate *validator.Validate
	log      logger.Logger
}

// NewPageService creates a PageService.
func NewPageService(db *sqlx.DB, pages *data.PageRepository, versions *data.VersionRepository, nav *tree.Navigator, engine *metrics.Engine, resolver *content.Resolver, renderer *markdown.Renderer, notifier Notifier, log logger.Logger) *PageService {
	return &PageService{
		db:       db,
		pages:    pages,
		versions: versions,
		nav:      nav,
		engine:   engine,
		resolver: resolver,
		renderer: renderer,
		notifier: notifier,
		validate: validator.New(),
		log:      log,
	}
}

// validateInput runs struct validation and converts failures into the
// service's ValidationError, before any store interaction.
func (s *PageService) validateInput(in *PageInput) error {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fmt.Sprintf("failed '%s' validation", fe.Tag())
			}
			return &ValidationError{Fields: fields}
		}
		return err
	}
	return nil
}

// CreatePage validates the input, resolves the new page's path, and
// commits the page with its tag set in one transaction.
func (s *PageService) CreatePage(ctx context.Context, in PageInput) (*data.Page, error) {
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	sort := in.Sort
	if sort == 0 {
		sort = data.DefaultSort
	}
	page := &data.Page{
		Title:     in.Title,
		Slug:      in.Slug,
		ParentID:  in.ParentID,
		Template:  in.Template,
		Banner:    in.Banner,
		Body:      in.Body,
		Notes:     in.Notes,
		Summary:   in.Summary,
		Sidebar:   in.Sidebar,
		UserID:    in.UserID,
		Sort:      sort,
		PubDate:   in.PubDate,
		Published: in.Published,
		EditDate:  time.Now().UTC(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "create page", Err: err}
	}
	defer tx.Rollback()

	txPages := s.pages.WithTx(tx)
	if err := tree.NewResolver(txPages).Resolve(ctx, page); err != nil {
		return nil, err
	}
	if err := txPages.CreatePage(ctx, page); err != nil {
		return nil, &StorageError{Op: "create page", Err: err}
	}
	if err := txPages.ReplaceTags(ctx, page.ID, in.TagIDs); err != nil {
		return nil, &StorageError{Op: "create page", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "create page", Err: err}
	}

	if in.NotifySubscribers {
		s.dispatchNotice(ctx, page, in.NotifyGroup)
	}
	return page, nil
}

// UpdatePage applies an edit: inside one transaction it snapshots the
// page's pre-edit state as a PageVersion, overwrites the live row,
// re-resolves the path, and cascades the recompute over descendants so
// no stored path goes stale. A failed commit leaves neither a snapshot
// nor a partial update.
func (s *PageService) UpdatePage(ctx context.Context, id int64, in PageInput) (*data.Page, error) {
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "update page", Err: err}
	}
	defer tx.Rollback()

	txPages := s.pages.WithTx(tx)
	txVersions := s.versions.WithTx(tx)

	page, err := txPages.GetPageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	page.Tags, err = txPages.GetTagsForPage(ctx, page.ID)
	if err != nil {
		return nil, &StorageError{Op: "update page", Err: err}
	}

	// Snapshot strictly before any field is overwritten.
	if err := txVersions.CreateVersion(ctx, data.SnapshotPage(page)); err != nil {
		return nil, &StorageError{Op: "update page", Err: err}
	}

	page.Title = in.Title
	page.Slug = in.Slug
	page.ParentID = in.ParentID
	page.Template = in.Template
	page.Banner = in.Banner
	page.Body = in.Body
	page.Notes = in.Notes
	page.Summary = in.Summary
	page.Sidebar = in.Sidebar
	page.UserID = in.UserID
	if in.Sort != 0 {
		page.Sort = in.Sort
	}
	page.PubDate = in.PubDate
	page.Published = in.Published
	page.EditDate = time.Now().UTC()

	resolver := tree.NewResolver(txPages)
	if err := resolver.Resolve(ctx, page); err != nil {
		return nil, err
	}
	if err := txPages.UpdatePage(ctx, page); err != nil {
		return nil, &StorageError{Op: "update page", Err: err}
	}
	if err := resolver.Cascade(ctx, txPages, page); err != nil {
		return nil, &StorageError{Op: "update page", Err: err}
	}
	if err := txPages.ReplaceTags(ctx, page.ID, in.TagIDs); err != nil {
		return nil, &StorageError{Op: "update page", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "update page", Err: err}
	}

	if in.NotifySubscribers {
		s.dispatchNotice(ctx, page, in.NotifyGroup)
	}
	return page, nil
}

// dispatchNotice fires the notification dispatcher once. Transport
// failures are logged, never propagated to the edit flow.
func (s *PageService) dispatchNotice(ctx context.Context, page *data.Page, group string) {
	if group == "" {
		group = data.GroupAll
	}
	if err := s.notifier.Notify(ctx, page, group); err != nil {
		s.log.Error(err, "failed to notify subscribers")
	}
}

// GetPage retrieves a page with its tag set.
func (s *PageService) GetPage(ctx context.Context, id int64) (*data.Page, error) {
	page, err := s.pages.GetPageByID(ctx, id)
	if err != nil {
		return nil, err
	}
	page.Tags, err = s.pages.GetTagsForPage(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// GetPageByPath retrieves a page by its canonical path.
func (s *PageService) GetPageByPath(ctx context.Context, path string) (*data.Page, error) {
	return s.pages.GetPageByPath(ctx, path)
}

// ListPages retrieves pages by published state for the admin index.
func (s *PageService) ListPages(ctx context.Context, published bool) ([]*data.Page, error) {
	return s.pages.ListPages(ctx, published)
}

// VersionsFor returns a page's snapshot history, most recent first.
func (s *PageService) VersionsFor(ctx context.Context, pageID int64) ([]*data.PageVersion, error) {
	return s.versions.VersionsFor(ctx, pageID)
}

// RenderPage assembles the display data for one page: rendered body and
// sidebar, inherited banner and section, metrics, breadcrumb ancestors,
// and prev/next navigation.
func (s *PageService) RenderPage(ctx context.Context, page *data.Page) (*PageView, error) {
	view := &PageView{Page: page}

	var err error
	if view.HTMLBody, err = s.renderer.RenderBody(page.Body); err != nil {
		return nil, err
	}
	sidebar, err := s.resolver.EffectiveSidebar(ctx, page)
	if err != nil {
		return nil, err
	}
	if view.HTMLSidebar, err = s.renderer.Render(sidebar); err != nil {
		return nil, err
	}
	if view.Banner, err = s.resolver.EffectiveBanner(ctx, page); err != nil {
		return nil, err
	}
	if view.Section, err = s.resolver.SectionName(ctx, page); err != nil {
		return nil, err
	}
	view.Description = content.Description(page)
	view.WordCount = metrics.PageWordCount(page)
	view.ReadTime = s.engine.ReadTime(page)
	if view.PageCount, err = s.engine.PageCount(ctx, page); err != nil {
		return nil, err
	}
	if view.Ancestors, err = s.nav.Ancestors(ctx, page); err != nil {
		return nil, err
	}
	if view.Prev, err = s.nav.PrevPubSibling(ctx, page); err != nil {
		return nil, err
	}
	if view.Next, err = s.nav.NextPubSibling(ctx, page); err != nil {
		return nil, err
	}
	return view, nil
}
