package middleware

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"rescuetrack/internal/common"

	"github.com/labstack/echo/v4"
)

const VersionRequestHeader = "Accept-Version"

// APIVersion represents API version information
type APIVersion struct {
	Version    string     `json:"version"`
	Status     string     `json:"status"` // "active", "deprecated"
	SunsetDate *time.Time `json:"sunset_date,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// VersionMiddleware stamps responses with the API version and rejects unknown requested versions
type VersionMiddleware struct {
	supportedVersions map[string]APIVersion
	defaultVersion    string
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		supportedVersions: map[string]APIVersion{
			"v1": {Version: "v1", Status: "active", Message: "Current stable API version"},
		},
		defaultVersion: "v1",
	}
}

// VersionHeader sets X-API-Version and the deprecation headers of the served version.
func (vm *VersionMiddleware) VersionHeader() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := vm.defaultVersion
			if requested := strings.TrimSpace(c.Request().Header.Get(VersionRequestHeader)); requested != "" {
				if _, ok := vm.supportedVersions[requested]; !ok {
					return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("UNSUPPORTED_VERSION",
						"Unsupported API version", map[string]string{"supported_versions": strings.Join(vm.SupportedVersions(), ", ")}))
				}
				version = requested
			}

			h := c.Response().Header()
			h.Set("X-API-Version", version)
			if ver := vm.supportedVersions[version]; ver.Status == "deprecated" && ver.SunsetDate != nil {
				h.Set("X-API-Deprecated", "true")
				h.Set("X-API-Sunset", ver.SunsetDate.Format(time.RFC3339))
			}
			c.Set("api_version", version)
			return next(c)
		}
	}
}

func (vm *VersionMiddleware) SupportedVersions() []string {
	versions := make([]string, 0, len(vm.supportedVersions))
	for v := range vm.supportedVersions {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}
