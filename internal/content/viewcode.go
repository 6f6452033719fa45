package content

import (
	"fmt"
	"net/url"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-writer-app/internal/data"
)

// viewCode derives the rotating preview secret for a page: the current
// year, the ISO week number, and the slug. Preview links therefore
// expire on their own as weeks roll over.
func viewCode(page *data.Page, at time.Time) string {
	year, week := at.ISOWeek()
	return fmt.Sprintf("%d%d%s", year, week, page.Slug)
}

// GenViewCode returns a query-string fragment ("?code=...") granting
// preview access to an unpublished page, or "" for published pages.
func GenViewCode(page *data.Page, at time.Time) (string, error) {
	if page.Published {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(viewCode(page, at)), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to generate view code: %w", err)
	}
	return "?code=" + url.QueryEscape(string(hash)), nil
}

// CheckViewCode reports whether code grants preview access to page.
func CheckViewCode(page *data.Page, code string, at time.Time) bool {
	if code == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(code), []byte(viewCode(page, at))) == nil
}
