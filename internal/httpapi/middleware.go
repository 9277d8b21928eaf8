package httpapi

import (
	"strings"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

// serverHeader identifies the proxy on every response.
func serverHeader() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			c.Response().Header().Set("Server", "Prism")
			return next(c)
		}
	}
}

// corsMiddleware allows the configured origin ("*"/"any" or an exact
// origin) to call POST /criteria, including its preflight OPTIONS.
func corsMiddleware(origin string) echo.MiddlewareFunc {
	allowed := []string{origin}
	if strings.EqualFold(origin, "any") {
		allowed = []string{"*"}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowed,
		AllowMethods: []string{"POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	})
}
