package config

// Application constants
const (
	// Application Info
	AppName    = "busgov-extractor"
	AppVersion = "1.0.0"

	// Registry defaults
	DefaultBaseURL       = "https://bus.gov.ru/public-rest/api"
	DefaultRatingBaseURL = "https://bus.gov.ru/public-rating/api"
	DefaultInfoCardURL   = "https://bus.gov.ru/info-card/"
	DefaultSelectedYear  = 2023
	DefaultPageSize      = 100000
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/93.0.4577.63 Safari/537.36"
	DefaultAccept = "application/json, text/plain, */*"

	// Registry endpoint paths, relative to the base URLs
	IndexSearchPath  = "orgunique/extendedSearchOrgUnique"
	DetailLookupPath = "agency/compare"
	QualityPath      = "ratingCompare/commonInfo"

	// Workbook naming; the time layout avoids ':' so the name is valid everywhere
	ExportFilePrefix     = "Данные bus.gov.ru от "
	ExportFileTimeLayout = "02.01.2006 15.04"
	ExportFileExt        = ".xlsx"
)
