// Package registry is the HTTP client for the public bus.gov.ru API.
//
// Three endpoints are used: the index search (orgunique/extendedSearchOrgUnique),
// the per-organization detail lookup (agency/compare) and the quality ratings
// (ratingCompare/commonInfo). Response bodies are decoded into explicit
// schemas whose scalars stay as Value, so callers can tell null from empty and
// keep numbers exact.
//
// Failures are reported as *errors.AppError: NETWORK and PARSING for the index
// and quality requests, PARTIAL_FETCH for a single detail request.
package registry
