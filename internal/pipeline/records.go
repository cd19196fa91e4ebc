package pipeline

import (
	"github.com/ohappykust/busgov-extractor/internal/registry"
)

// Placeholder stands in for a missing value in a flattened row
const Placeholder = "-"

// Category tags a building execution line
type Category string

const (
	CategoryServices Category = "Услуги"
	CategoryWorks    Category = "Работы"
)

// BasicOrgRecord is one General Info row: the agency id and the fields of
// BasicFields, in that order.
type BasicOrgRecord struct {
	AgencyID registry.AgencyID
	Fields   []any
}

// Row returns the cells in header order
func (r BasicOrgRecord) Row() []any {
	row := make([]any, 0, len(r.Fields)+1)
	row = append(row, int64(r.AgencyID))
	return append(row, r.Fields...)
}

// Field returns the value for a dotted agenciesData path
func (r BasicOrgRecord) Field(path string) any {
	for i, f := range BasicFields {
		if f.Path == path && i < len(r.Fields) {
			return r.Fields[i]
		}
	}
	return nil
}

// QualityRecord is one Independent Quality Assessment row
type QualityRecord struct {
	AgencyID    registry.AgencyID
	Name        any
	ShortName   any
	RatingYear  any
	GroupName   any
	GlobalPlace any
	Openness    any
	Comfort     any
	Timeout     any
	Goodwill    any
	Contentment any
}

// Row returns the cells in header order
func (r QualityRecord) Row() []any {
	return []any{
		int64(r.AgencyID), r.Name, r.ShortName, r.RatingYear, r.GroupName,
		r.GlobalPlace, r.Openness, r.Comfort, r.Timeout, r.Goodwill, r.Contentment,
	}
}

// BuildingExecRecord is one service or work line of the state assignment
type BuildingExecRecord struct {
	AgencyID  registry.AgencyID
	Name      any
	ShortName any
	Category  Category
	ItemName  any
	Value     any
	Date      any
}

// Row returns the cells in header order
func (r BuildingExecRecord) Row() []any {
	return []any{int64(r.AgencyID), r.Name, r.ShortName, string(r.Category), r.ItemName, r.Value, r.Date}
}

// OperationScalars are the budget period fields copied onto every budget and
// subsidy line of an organization.
type OperationScalars struct {
	OKATO          any
	Year           any
	PlannedTotal   any
	SubsidiesTotal any
}

func (s OperationScalars) cells() []any {
	return []any{s.OKATO, s.Year, s.PlannedTotal, s.SubsidiesTotal}
}

// BudgetOpRecord is one budget investment line
type BudgetOpRecord struct {
	AgencyID  registry.AgencyID
	Name      any
	ShortName any
	Operation OperationScalars
	ItemName  any
	Sum       any
}

// Row returns the cells in header order
func (r BudgetOpRecord) Row() []any {
	row := []any{int64(r.AgencyID), r.Name, r.ShortName}
	row = append(row, r.Operation.cells()...)
	return append(row, r.ItemName, r.Sum)
}

// SubsidyOpRecord is one subsidy line
type SubsidyOpRecord struct {
	AgencyID        registry.AgencyID
	Name            any
	ShortName       any
	Operation       OperationScalars
	Code            any
	GrantName       any
	PlannedReceipts any
}

// Row returns the cells in header order
func (r SubsidyOpRecord) Row() []any {
	row := []any{int64(r.AgencyID), r.Name, r.ShortName}
	row = append(row, r.Operation.cells()...)
	return append(row, r.Code, r.GrantName, r.PlannedReceipts)
}

// UnavailableOrgRecord is an index entry whose detail request failed. Its
// fields are taken from the index unchanged.
type UnavailableOrgRecord registry.OrgStub

// Row returns the cells in header order
func (r UnavailableOrgRecord) Row() []any {
	return []any{int64(r.AgencyID), r.FullName, r.FullAddress, r.Phone, r.WebSite}
}

// IssueKind classifies a malformed structure found while flattening
type IssueKind string

const (
	IssueTrailingTasks      IssueKind = "trailing_tasks"
	IssueTrailingWorks      IssueKind = "trailing_works"
	IssueEmptyBudgetEntry   IssueKind = "empty_budget_entry"
	IssueMissingRatingTable IssueKind = "missing_rating_details"
	IssueDuplicateAgency    IssueKind = "duplicate_agency"
)

// DataIssue records upstream data that could not be turned into rows
type DataIssue struct {
	AgencyID registry.AgencyID
	Kind     IssueKind
	Detail   string
}
