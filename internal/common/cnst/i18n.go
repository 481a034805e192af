package cnst

const (
	LangEN      = "en"
	LangKM      = "km"
	LangDefault = LangEN

	// XLang is both the request header and the gin context key carrying the language
	XLang = "X-Lang"
)
