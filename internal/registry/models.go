package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// AgencyID identifies an organization across every registry endpoint.
type AgencyID int64

// String renders the id the way the registry keys its maps
func (id AgencyID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// OrgStub is one entry of the index search
type OrgStub struct {
	AgencyID    AgencyID `json:"agencyId"`
	FullName    string   `json:"fullName"`
	FullAddress string   `json:"fullAddress"`
	Phone       string   `json:"phone"`
	WebSite     string   `json:"webSite"`
}

// IndexResponse is the body of orgunique/extendedSearchOrgUnique
type IndexResponse struct {
	Orgs []OrgStub `json:"orgs"`
}

// FieldSet maps a dotted field path to a single-element value array,
// e.g. "commontab.name" -> ["School No. 1"].
type FieldSet map[string][]Value

// First returns the first element stored under path. ok is false when the
// path is absent or its array is empty.
func (f FieldSet) First(path string) (Value, bool) {
	values, found := f[path]
	if !found || len(values) == 0 {
		return Value{}, false
	}
	return values[0], true
}

// Item is one cell of a tasks/works array. Present records whether the
// itemData key existed at all, independent of its value.
type Item struct {
	Data    Value
	Present bool
}

// UnmarshalJSON keeps the presence of itemData separate from its value
func (i *Item) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		// non-object cells carry no payload
		*i = Item{}
		return nil
	}
	data, ok := raw["itemData"]
	if !ok {
		*i = Item{}
		return nil
	}
	i.Present = true
	return json.Unmarshal(data, &i.Data)
}

// BudgetInvestment is one entry of budgetInvestmentsTable; the registry wraps
// each line in a one-element array.
type BudgetInvestment []struct {
	Name Value `json:"name"`
	Sum  Value `json:"sum"`
}

// OrgDetail is the body of agency/compare for a single organization
type OrgDetail struct {
	AgenciesData      FieldSet           `json:"agenciesData"`
	AgenciesTasks     map[string][]Item  `json:"agenciesTasks"`
	AgenciesWorks     map[string][]Item  `json:"agenciesWorks"`
	BudgetInvestments []BudgetInvestment `json:"budgetInvestmentsTable"`
	BudgetSubsidies   []FieldSet         `json:"budgetSubsidiesTable"`
	BudgetOperation   FieldSet           `json:"budgetOperation"`
}

// agencyKey is how tasks and works maps key their arrays
func agencyKey(id AgencyID) string {
	return "value_" + id.String()
}

// Tasks returns the service array for id, nil when absent
func (d *OrgDetail) Tasks(id AgencyID) []Item {
	if d == nil || d.AgenciesTasks == nil {
		return nil
	}
	return d.AgenciesTasks[agencyKey(id)]
}

// Works returns the works array for id, nil when absent
func (d *OrgDetail) Works(id AgencyID) []Item {
	if d == nil || d.AgenciesWorks == nil {
		return nil
	}
	return d.AgenciesWorks[agencyKey(id)]
}

// OrganizationGroup names the peer group an organization is rated in
type OrganizationGroup struct {
	GroupName Value `json:"groupName"`
}

// RatingDetails carries the six sub-scores of a rating
type RatingDetails struct {
	OrganizationGroup *OrganizationGroup `json:"organizationGroup"`
	GlobalPlaceValue  Value              `json:"globalPlaceValue"`
	OpennessValue     Value              `json:"opennessValue"`
	ComfortValue      Value              `json:"comfortValue"`
	TimeoutValue      Value              `json:"timeoutValue"`
	GoodwillValue     Value              `json:"goodwillValue"`
	ContentmentValue  Value              `json:"contentmentValue"`
}

// ScopeWithRatings pairs a rating scope with its details
type ScopeWithRatings struct {
	RatingDetails []RatingDetails `json:"ratingDetailsDto"`
}

// QualityEntry is the rating bundle of one organization
type QualityEntry struct {
	RatingYear Value              `json:"ratingYear"`
	Scopes     []ScopeWithRatings `json:"scopeWithRatingsDtos"`
}

// QualityResponse is the body of ratingCompare/commonInfo, keyed by agency id
type QualityResponse map[AgencyID]QualityEntry

// UnmarshalJSON converts the string keys of the payload into AgencyIDs
func (q *QualityResponse) UnmarshalJSON(b []byte) error {
	var raw map[string]*QualityEntry
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(QualityResponse, len(raw))
	for key, entry := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("quality key %q is not an agency id: %w", key, err)
		}
		if entry == nil {
			continue
		}
		out[AgencyID(id)] = *entry
	}
	*q = out
	return nil
}

// decodeJSON decodes a response body keeping numbers exact
func decodeJSON(body []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}
