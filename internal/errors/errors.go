package errors

import "errors"

var (
	ErrStatus                = errors.New("unexpected response status")
	ErrEmptyCatalog          = errors.New("project catalog is empty")
	ErrMalformedCatalog      = errors.New("malformed project catalog")
	ErrMalformedTranslations = errors.New("malformed translations")
	ErrUnsupportedLanguage   = errors.New("unsupported language")
	ErrWidgetUnavailable     = errors.New("effects widget unavailable")
	ErrInvalidContact        = errors.New("invalid contact submission")
	ErrHoneypot              = errors.New("contact submission rejected")
	ErrSiteDirMissing        = errors.New("site directory not found")
	ErrBrokenLinks           = errors.New("broken internal links")
	ErrElementNotFound       = errors.New("element not found")
	ErrInvalidScenario       = errors.New("invalid scenario")
)
