package spacetraveling

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
)

// revalidateRequest is the part of the Prismic webhook body we read.
type revalidateRequest struct {
	Secret string `json:"secret"`
}

// handleRevalidate drops every cached view of the content: the master ref,
// the catalog cache, stored snapshots and resized banners. Prismic calls it
// on publish.
func (a *App) handleRevalidate(c echo.Context) error {
	var req revalidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook body")
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(a.Config.WebhookSecret)) != 1 {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "invalid secret"})
	}

	if f, ok := a.Content.(interface{ ForgetRef() }); ok {
		f.ForgetRef()
	}
	a.Cache.Invalidate()
	n, err := a.Store.DeleteAll()
	if err != nil {
		return err
	}
	if err := os.RemoveAll(a.Config.BannerDir); err != nil {
		c.Logger().Warnf("clear banner cache: %v", err)
	}
	c.Logger().Infof("revalidated: %d snapshots dropped", n)
	return c.JSON(http.StatusOK, map[string]any{"revalidated": true, "snapshots": n})
}
