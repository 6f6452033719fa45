package data

import (
	"strings"
	"time"
)

// Page templates. Chapter and post pages inherit display attributes from
// their parent; blog and story pages are containers whose statistics
// aggregate over their children.
const (
	TemplatePage    = "page"
	TemplatePost    = "post"
	TemplateStory   = "story"
	TemplateBook    = "book"
	TemplateChapter = "chapter"
	TemplateBlog    = "blog"
)

// TemplateChoices lists the valid page templates in form order.
var TemplateChoices = []string{
	TemplatePage,
	TemplatePost,
	TemplateStory,
	TemplateBook,
	TemplateChapter,
	TemplateBlog,
}

// DefaultSort is the sort value assigned to pages that do not set one.
// Lower values sort first among siblings.
const DefaultSort = 75

// Page is a node in the content tree and the unit of publishable content.
// Path and DirPath are derived from the parent chain and recomputed on
// every slug or parent change; they are stored, not independently set.
type Page struct {
	ID        int64      `db:"id"`
	Title     string     `db:"title"`
	Slug      string     `db:"slug"`
	DirPath   string     `db:"dir_path"`
	Path      string     `db:"path"`
	ParentID  *int64     `db:"parent_id"`
	Template  string     `db:"template"`
	Banner    *string    `db:"banner"`
	Body      string     `db:"body"`
	Notes     string     `db:"notes"`
	Summary   string     `db:"summary"`
	Sidebar   string     `db:"sidebar"`
	UserID    int64      `db:"user_id"`
	Sort      int        `db:"sort"`
	PubDate   *time.Time `db:"pub_date"`
	Published bool       `db:"published"`
	EditDate  time.Time  `db:"edit_date"`

	Tags []Tag `db:"-"`

	// Memo caches derived values for the lifetime of this loaded instance.
	// It is never persisted and never shared across requests.
	Memo PageMemo `db:"-"`
}

// PageMemo holds request-scoped memoized derivations for a loaded Page.
// A nil pointer (or false Known flag) means "not yet computed"; the
// zero value is always a valid empty cache.
type PageMemo struct {
	Words      *int
	ChildWords *int

	NextSibling *Page
	NextKnown   bool
	PrevSibling *Page
	PrevKnown   bool
}

// IsChapterOrPost reports whether the page inherits section attributes
// from its parent.
func (p *Page) IsChapterOrPost() bool {
	return p.Template == TemplateChapter || p.Template == TemplatePost
}

// IsContainer reports whether the page aggregates statistics over its
// children rather than its own body.
func (p *Page) IsContainer() bool {
	return p.Template == TemplateBlog || p.Template == TemplateStory
}

// IsRoot reports whether the page sits at the top of the tree.
func (p *Page) IsRoot() bool {
	return p.ParentID == nil
}

// PageVersion is an immutable snapshot of a Page's fields, captured
// before an edit overwrites the live row. Versions are append-only and
// browsed most-recent-first.
type PageVersion struct {
	ID         int64      `db:"id"`
	OriginalID int64      `db:"original_id"`
	Title      string     `db:"title"`
	Slug       string     `db:"slug"`
	DirPath    string     `db:"dir_path"`
	Path       string     `db:"path"`
	ParentID   *int64     `db:"parent_id"`
	Template   string     `db:"template"`
	Banner     *string    `db:"banner"`
	Body       string     `db:"body"`
	Notes      string     `db:"notes"`
	Summary    string     `db:"summary"`
	Sidebar    string     `db:"sidebar"`
	UserID     int64      `db:"user_id"`
	Sort       int        `db:"sort"`
	PubDate    *time.Time `db:"pub_date"`
	Published  bool       `db:"published"`
	EditDate   time.Time  `db:"edit_date"`

	Tags []Tag `db:"-"`
}

// SnapshotPage captures the current field values of page into a new
// PageVersion. The caller persists it before mutating the live row.
func SnapshotPage(page *Page) *PageVersion {
	return &PageVersion{
		OriginalID: page.ID,
		Title:      page.Title,
		Slug:       page.Slug,
		DirPath:    page.DirPath,
		Path:       page.Path,
		ParentID:   page.ParentID,
		Template:   page.Template,
		Banner:     page.Banner,
		Body:       page.Body,
		Notes:      page.Notes,
		Summary:    page.Summary,
		Sidebar:    page.Sidebar,
		UserID:     page.UserID,
		Sort:       page.Sort,
		PubDate:    page.PubDate,
		Published:  page.Published,
		EditDate:   page.EditDate,
		Tags:       append([]Tag(nil), page.Tags...),
	}
}

// Tag is a named label attached to pages, page versions, and definitions.
// Names are unique with case-sensitive exact matching.
type Tag struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Subscription groups a Subscriber may belong to.
const (
	GroupAll   = "all"
	GroupSprig = "sprig"
	GroupBlog  = "blog"
	GroupNews  = "news"
)

// SubscriptionChoices lists the valid notification groups.
var SubscriptionChoices = []string{GroupAll, GroupSprig, GroupBlog, GroupNews}

// Subscriber is an opt-in mailing list entry. Subscription is a
// comma-delimited set of group tokens.
type Subscriber struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	FirstName    *string   `db:"first_name"`
	LastName     *string   `db:"last_name"`
	Subscription string    `db:"subscription"`
	SubDate      time.Time `db:"sub_date"`
}

// InGroup reports whether the subscriber belongs to the named group.
// Members of "all" belong to every group.
func (s *Subscriber) InGroup(group string) bool {
	for _, token := range strings.Split(s.Subscription, ",") {
		token = strings.TrimSpace(token)
		if token == group || token == GroupAll {
			return true
		}
	}
	return false
}

// Definition is a glossary entry. HiddenBody holds spoiler content that
// is gated separately from the visible body.
type Definition struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	Body       string `db:"body"`
	HiddenBody string `db:"hidden_body"`
	DType      string `db:"dtype"`
	TagID      *int64 `db:"tag_id"`
	PageID     *int64 `db:"page_id"`
}

// User is an administrator account. Timezone holds an IANA zone name
// used to display and enter publish dates in the author's local time.
type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	AboutMe      string `db:"about_me"`
	Timezone     string `db:"timezone"`
}

// Link is an external link card with no coupling to the page tree.
type Link struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	URL         string `db:"url"`
	Description string `db:"description"`
	Sort        int    `db:"sort"`
}

// Record is a writing-productivity log entry.
type Record struct {
	ID      int64     `db:"id"`
	UserID  int64     `db:"user_id"`
	RecDate time.Time `db:"rec_date"`
	Words   int       `db:"words"`
	Notes   string    `db:"notes"`
}
