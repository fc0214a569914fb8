package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zhishu/website/blog/domain"
)

const (
	LocaleCookie = "locale"
	LocaleHeader = "x-locale"

	localeKey          = "locale"
	localeCookieMaxAge = 60 * 60 * 24 * 30
	apiPrefix          = "/api"
)

// Locale resolves the request locale and stores it on the gin context.
// Page requests also get the x-locale header and a refreshed locale cookie.
// API requests only read ?lang and the cookie.
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isAPIPath(c.Request.URL.Path) {
			c.Set(localeKey, APILocale(c.Request))
		} else {
			setPageLocale(c)
		}
		c.Next()
	}
}

// PageLocale applies full page detection on a single route, overriding what Locale stored.
// It is meant for API routes that stand in for a rendered page, such as blog detail.
func PageLocale() gin.HandlerFunc {
	return func(c *gin.Context) {
		setPageLocale(c)
		c.Next()
	}
}

func setPageLocale(c *gin.Context) {
	locale := DetectLocale(c.Request)
	c.Set(localeKey, locale)
	c.Header(LocaleHeader, string(locale))
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     LocaleCookie,
		Value:    string(locale),
		Path:     "/",
		MaxAge:   localeCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetLocale returns the locale stored by Locale, or the source locale
func GetLocale(c *gin.Context) domain.Locale {
	if v, ok := c.Get(localeKey); ok {
		if l, ok := v.(domain.Locale); ok {
			return l
		}
	}
	return domain.SourceLocale
}

// DetectLocale applies, in order: ?lang, a zh. or en. subdomain, the locale cookie,
// then Accept-Language (zh if it mentions zh, otherwise en).
func DetectLocale(r *http.Request) domain.Locale {
	if l, ok := exactLocale(r.URL.Query().Get("lang")); ok {
		return l
	}

	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if labels := strings.Split(host, "."); len(labels) >= 2 {
		if l, ok := domain.ParseLocale(labels[0]); ok {
			return l
		}
	}

	if l, ok := cookieLocale(r); ok {
		return l
	}

	if strings.Contains(strings.ToLower(r.Header.Get("Accept-Language")), "zh") {
		return domain.LocaleZH
	}
	return domain.LocaleEN
}

// APILocale reads ?lang, then the locale cookie, defaulting to the source locale
func APILocale(r *http.Request) domain.Locale {
	if l, ok := exactLocale(r.URL.Query().Get("lang")); ok {
		return l
	}
	if l, ok := cookieLocale(r); ok {
		return l
	}
	return domain.SourceLocale
}

func cookieLocale(r *http.Request) (domain.Locale, bool) {
	cookie, err := r.Cookie(LocaleCookie)
	if err != nil {
		return "", false
	}
	return exactLocale(cookie.Value)
}

// exactLocale accepts only the literal codes used in URLs and cookies
func exactLocale(s string) (domain.Locale, bool) {
	switch domain.Locale(s) {
	case domain.LocaleZH, domain.LocaleEN:
		return domain.Locale(s), true
	}
	return "", false
}

func isAPIPath(path string) bool {
	return path == apiPrefix || strings.HasPrefix(path, apiPrefix+"/")
}
