package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ohappykust/busgov-extractor/internal/registry"
)

// fullDetailJSON is a detail bundle for agency 1 with two services, one
// work, two budget lines and one subsidy.
const fullDetailJSON = `{
  "agenciesData": {
    "commontab.name": ["Школа № 1"],
    "commontab.short_name": ["ГБОУ Школа № 1"],
    "commontab.ppo.name": ["г. Москва"],
    "commontab.founderAgency.shortClientName": ["ДОгМ"],
    "commontab.rgbs.code.chapter": ["056"],
    "commontab.rbsAgency.name": ["Департамент образования"],
    "commontab.agency.type": ["Бюджетное"],
    "commontab.agency.kind": ["Школа"],
    "commontab.okato": [45000000],
    "commontab.okfs.name": ["Собственность субъектов"],
    "commontab.okopf.kind": ["Бюджетное учреждение"],
    "commontab.agencyAddress": ["ул. Ленина, 1"],
    "commontab.manager": ["Иванов И. И."],
    "commontab.manager.phone": ["+7 495 000-00-00"],
    "commontab.website": ["school1.ru"],
    "commontab.email": ["school1@mos.ru"],
    "commontab.branch.parent.name": [null],
    "commontab.act.type": ["Приказ"],
    "commontab.act.approverOrganizationName": ["ДОгМ"],
    "commontab.act.date": ["2023-01-10"],
    "commontab.act.number": ["12"],
    "commontab.act.name": ["Об утверждении"]
  },
  "agenciesTasks": {
    "value_1": [
      {"itemData": "Реализация программ"}, {"itemData": 120}, {"itemData": "2023-01-01"},
      {"label": "subtotal"}, {"itemData": 1}, {"itemData": 2},
      {"itemData": "Присмотр и уход"}, {"itemData": 0}, {}
    ]
  },
  "agenciesWorks": {
    "value_1": [
      {"itemData": "Уборка"}, {"itemData": 3},
      {"itemData": ""}, {"itemData": 4}
    ]
  },
  "budgetInvestmentsTable": [
    [{"name": "Ремонт кровли", "sum": 1500.5}],
    [{"name": "Спортзал", "sum": 99}]
  ],
  "budgetSubsidiesTable": [
    {"code": ["S-1"], "grantName": ["Грант мэра"], "sumPlannedReceips": [10]}
  ],
  "budgetOperation": {
    "budget.operation.okato": ["45000000"],
    "budget.operation.year": [2023],
    "budget.operation.sum.planned.all": [5000],
    "budget.operation.subsidies.all": [0]
  }
}`

const qualityJSON = `{
  "1": {"ratingYear": 2023, "scopeWithRatingsDtos": [{"ratingDetailsDto": [{
      "organizationGroup": {"groupName": "Школы"},
      "globalPlaceValue": 12, "opennessValue": 95.5, "comfortValue": 90,
      "timeoutValue": 100, "goodwillValue": 99, "contentmentValue": 0}]}]},
  "2": {"ratingYear": 2023, "scopeWithRatingsDtos": []},
  "3": {"ratingYear": 2022, "scopeWithRatingsDtos": [{"ratingDetailsDto": [{
      "organizationGroup": null,
      "globalPlaceValue": 1, "opennessValue": 1, "comfortValue": 1,
      "timeoutValue": 1, "goodwillValue": 1, "contentmentValue": 1}]}]},
  "4": {"ratingYear": 2023, "scopeWithRatingsDtos": [{"ratingDetailsDto": []}]}
}`

func mustDetail(t *testing.T, js string) *registry.OrgDetail {
	t.Helper()
	var d registry.OrgDetail
	require.NoError(t, json.Unmarshal([]byte(js), &d))
	return &d
}

func mustQuality(t *testing.T, js string) registry.QualityResponse {
	t.Helper()
	var q registry.QualityResponse
	require.NoError(t, json.Unmarshal([]byte(js), &q))
	return q
}

func stub(id int64) registry.OrgStub {
	return registry.OrgStub{
		AgencyID:    registry.AgencyID(id),
		FullName:    "Организация " + registry.AgencyID(id).String(),
		FullAddress: "Адрес",
		Phone:       "",
		WebSite:     "site.ru",
	}
}

// nameOnlyDetail returns a detail bundle carrying only the two name fields
func nameOnlyDetail(t *testing.T, name string) *registry.OrgDetail {
	t.Helper()
	return mustDetail(t, `{"agenciesData": {"commontab.name": ["`+name+`"], "commontab.short_name": [""]}}`)
}
