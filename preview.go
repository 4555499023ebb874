package spacetraveling

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// handlePreview starts preview mode. Prismic redirects editors here with the
// preview ref in token and the document being edited in documentId.
func (a *App) handlePreview(c echo.Context) error {
	if !a.previewLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many preview requests. Try again later.")
	}
	token := c.QueryParam("token")
	documentID := c.QueryParam("documentId")
	if token == "" || documentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token and documentId are required")
	}

	ctx, cancel := a.fetchContext(c)
	defer cancel()
	detail, err := a.Content.GetByID(ctx, token, documentID)
	if err != nil {
		return contentError(err)
	}

	if err := setPreviewSession(c, token); err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, "/post/"+PathEscape(detail.UID)+"/")
}

func handleExitPreview(c echo.Context) error {
	if err := clearPreviewSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
