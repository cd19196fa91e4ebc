package pipeline

import (
	"fmt"

	"github.com/ohappykust/busgov-extractor/internal/registry"
)

const (
	taskArity = 3
	workArity = 2
)

// Result holds the six record sets of one run plus the data issues met
// while building them.
type Result struct {
	Basic       []BasicOrgRecord
	Quality     []QualityRecord
	Building    []BuildingExecRecord
	Budget      []BudgetOpRecord
	Subsidies   []SubsidyOpRecord
	Unavailable []UnavailableOrgRecord
	Issues      []DataIssue
}

// Flatten joins details, quality entries and line item arrays by agency id
// and turns them into rows. It performs no I/O and is deterministic for a
// given bundle.
func Flatten(b *Bundle) *Result {
	res := &Result{}
	if b == nil {
		return res
	}

	for _, org := range b.Details {
		res.flattenOrg(org.AgencyID, org.Detail, b.Quality)
	}
	for _, stub := range b.Unavailable {
		res.Unavailable = append(res.Unavailable, UnavailableOrgRecord(stub))
	}
	return res
}

func (res *Result) flattenOrg(id registry.AgencyID, detail *registry.OrgDetail, quality registry.QualityResponse) {
	if detail == nil {
		detail = &registry.OrgDetail{}
	}

	basic := BasicOrgRecord{AgencyID: id, Fields: make([]any, len(BasicFields))}
	for i, f := range BasicFields {
		basic.Fields[i] = scalar(detail.AgenciesData, f.Path)
	}
	res.Basic = append(res.Basic, basic)

	name, short := basic.Field(fieldName), basic.Field(fieldShortName)

	res.flattenQuality(id, name, short, quality)
	res.flattenTasks(id, name, short, detail.Tasks(id))
	res.flattenWorks(id, name, short, detail.Works(id))

	ops := OperationScalars{
		OKATO:          rawScalar(detail.BudgetOperation, opOKATO),
		Year:           rawScalar(detail.BudgetOperation, opYear),
		PlannedTotal:   rawScalar(detail.BudgetOperation, opPlannedTotal),
		SubsidiesTotal: rawScalar(detail.BudgetOperation, opSubsidiesTotal),
	}

	for i, entry := range detail.BudgetInvestments {
		if len(entry) == 0 {
			res.issue(id, IssueEmptyBudgetEntry, fmt.Sprintf("budget investment #%d has no line", i))
			continue
		}
		res.Budget = append(res.Budget, BudgetOpRecord{
			AgencyID:  id,
			Name:      name,
			ShortName: short,
			Operation: ops,
			ItemName:  orNull(entry[0].Name, true),
			Sum:       orNull(entry[0].Sum, true),
		})
	}

	for _, entry := range detail.BudgetSubsidies {
		res.Subsidies = append(res.Subsidies, SubsidyOpRecord{
			AgencyID:        id,
			Name:            name,
			ShortName:       short,
			Operation:       ops,
			Code:            rawScalar(entry, "code"),
			GrantName:       rawScalar(entry, "grantName"),
			PlannedReceipts: rawScalar(entry, "sumPlannedReceips"),
		})
	}
}

// flattenQuality emits a row only when the entry exists and has at least one
// rating scope; a missing entry and an empty scope list are the same case.
func (res *Result) flattenQuality(id registry.AgencyID, name, short any, quality registry.QualityResponse) {
	entry, ok := quality[id]
	if !ok || len(entry.Scopes) == 0 {
		return
	}
	scope := entry.Scopes[0]
	if len(scope.RatingDetails) == 0 {
		res.issue(id, IssueMissingRatingTable, "first rating scope has no details")
		return
	}
	details := scope.RatingDetails[0]

	group := any(Placeholder)
	if details.OrganizationGroup != nil {
		group = placeholder(details.OrganizationGroup.GroupName, true)
	}

	res.Quality = append(res.Quality, QualityRecord{
		AgencyID:    id,
		Name:        name,
		ShortName:   short,
		RatingYear:  entry.RatingYear.Cell(),
		GroupName:   group,
		GlobalPlace: placeholder(details.GlobalPlaceValue, true),
		Openness:    placeholder(details.OpennessValue, true),
		Comfort:     placeholder(details.ComfortValue, true),
		Timeout:     placeholder(details.TimeoutValue, true),
		Goodwill:    placeholder(details.GoodwillValue, true),
		Contentment: placeholder(details.ContentmentValue, true),
	})
}

// flattenTasks walks (name, value, date) triples; a triple counts when its
// first cell carries itemData at all.
func (res *Result) flattenTasks(id registry.AgencyID, name, short any, tasks []registry.Item) {
	groups, rest := Chunk(tasks, taskArity)
	for _, g := range groups {
		if !g[0].Present {
			continue
		}
		res.Building = append(res.Building, BuildingExecRecord{
			AgencyID:  id,
			Name:      name,
			ShortName: short,
			Category:  CategoryServices,
			ItemName:  itemCell(g[0]),
			Value:     itemCell(g[1]),
			Date:      itemCell(g[2]),
		})
	}
	if len(rest) > 0 {
		res.issue(id, IssueTrailingTasks, fmt.Sprintf("%d of %d task cells do not form a triple", len(rest), len(tasks)))
	}
}

// flattenWorks walks (name, value) pairs; a pair counts when its first cell
// has a truthy itemData.
func (res *Result) flattenWorks(id registry.AgencyID, name, short any, works []registry.Item) {
	groups, rest := Chunk(works, workArity)
	for _, g := range groups {
		if !g[0].Present || !g[0].Data.Truthy() {
			continue
		}
		res.Building = append(res.Building, BuildingExecRecord{
			AgencyID:  id,
			Name:      name,
			ShortName: short,
			Category:  CategoryWorks,
			ItemName:  itemCell(g[0]),
			Value:     itemCell(g[1]),
			Date:      Placeholder,
		})
	}
	if len(rest) > 0 {
		res.issue(id, IssueTrailingWorks, fmt.Sprintf("%d of %d work cells do not form a pair", len(rest), len(works)))
	}
}

func (res *Result) issue(id registry.AgencyID, kind IssueKind, detail string) {
	res.Issues = append(res.Issues, DataIssue{AgencyID: id, Kind: kind, Detail: detail})
}

// scalar reads the first element under path, or the placeholder when it is falsy
func scalar(fs registry.FieldSet, path string) any {
	return placeholder(fs.First(path))
}

// rawScalar keeps falsy values such as 0 and only replaces a missing or null one
func rawScalar(fs registry.FieldSet, path string) any {
	return orNull(fs.First(path))
}

func itemCell(it registry.Item) any {
	return orNull(it.Data, it.Present)
}

func placeholder(v registry.Value, ok bool) any {
	if !ok || !v.Truthy() {
		return Placeholder
	}
	return v.Cell()
}

func orNull(v registry.Value, ok bool) any {
	if !ok || v.IsNull() {
		return Placeholder
	}
	return v.Cell()
}
