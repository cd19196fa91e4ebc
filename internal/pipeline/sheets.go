package pipeline

// BasicField maps an agenciesData path to its General Info column
type BasicField struct {
	Path   string
	Header string
}

// Name paths repeated on every per-organization sheet
const (
	fieldName      = "commontab.name"
	fieldShortName = "commontab.short_name"
)

// BasicFields lists the General Info columns after the agency id, in order
var BasicFields = []BasicField{
	{fieldName, "Полное наименование"},
	{fieldShortName, "Сокращенное наименование"},
	{"commontab.ppo.name", "Публично-правовое образование"},
	{"commontab.founderAgency.shortClientName", "Орган, осуществляющий функции учредителя"},
	{"commontab.rgbs.code.chapter", "Код главы по БК"},
	{"commontab.rbsAgency.name", "Главный распорядитель бюджетных средств"},
	{"commontab.agency.type", "Тип учреждения"},
	{"commontab.agency.kind", "Вид учреждения"},
	{"commontab.okato", "ОКАТО"},
	{"commontab.okfs.name", "Форма собственности (ОКФС)"},
	{"commontab.okopf.kind", "Организационно-правовая форма (ОКОПФ)"},
	{"commontab.agencyAddress", "Фактический адрес"},
	{"commontab.manager", "Руководитель"},
	{"commontab.manager.phone", "Телефон"},
	{"commontab.website", "Сайт"},
	{"commontab.email", "Электронная почта"},
	{"commontab.branch.parent.name", "Головное учреждение"},
	{"commontab.act.type", "Вид правового акта"},
	{"commontab.act.approverOrganizationName", "Орган, утвердивший акт"},
	{"commontab.act.date", "Дата акта"},
	{"commontab.act.number", "Номер акта"},
	{"commontab.act.name", "Наименование акта"},
}

// Budget operation paths shared by budget and subsidy rows
const (
	opOKATO          = "budget.operation.okato"
	opYear           = "budget.operation.year"
	opPlannedTotal   = "budget.operation.sum.planned.all"
	opSubsidiesTotal = "budget.operation.subsidies.all"
)

// Worksheet names, in workbook order
const (
	SheetGeneral     = "Общая информация"
	SheetQuality     = "Независимая оценка качества"
	SheetBuilding    = "Гос. здание и его исполнения"
	SheetBudget      = "Операции с бюджет. инвестициями"
	SheetSubsidies   = "Операции с субсидиями"
	SheetUnavailable = "Организации без данных"
)

// SheetOrder is the fixed worksheet order of every export
var SheetOrder = []string{
	SheetGeneral, SheetQuality, SheetBuilding, SheetBudget, SheetSubsidies, SheetUnavailable,
}

const (
	hdrID        = "ID"
	hdrName      = "Полное наименование"
	hdrShortName = "Сокращенное наименование"
)

var operationHeaders = []string{
	"ОКАТО операции", "Год", "Сумма плановых поступлений, всего", "Сумма субсидий, всего",
}

// Headers returns the column titles of a worksheet; nil for an unknown name
func Headers(sheet string) []string {
	switch sheet {
	case SheetGeneral:
		h := []string{hdrID}
		for _, f := range BasicFields {
			h = append(h, f.Header)
		}
		return h
	case SheetQuality:
		return []string{
			hdrID, hdrName, hdrShortName, "Год оценки", "Группа организаций",
			"Место в рейтинге", "Открытость и доступность информации", "Комфортность условий",
			"Время ожидания", "Доброжелательность и вежливость", "Удовлетворенность качеством",
		}
	case SheetBuilding:
		return []string{hdrID, hdrName, hdrShortName, "Категория", "Наименование", "Показатель", "Дата"}
	case SheetBudget:
		h := []string{hdrID, hdrName, hdrShortName}
		h = append(h, operationHeaders...)
		return append(h, "Наименование объекта", "Сумма")
	case SheetSubsidies:
		h := []string{hdrID, hdrName, hdrShortName}
		h = append(h, operationHeaders...)
		return append(h, "Код субсидии", "Наименование субсидии", "Плановые поступления")
	case SheetUnavailable:
		return []string{hdrID, "Полное наименование", "Адрес", "Телефон", "Сайт"}
	}
	return nil
}

// Sheet is one worksheet handed to the sink. When LinkBase is set the sink
// renders the first cell of every row as a link to LinkBase followed by the id.
type Sheet struct {
	Name     string
	Headers  []string
	Rows     [][]any
	LinkBase string
}

type rower interface {
	Row() []any
}

func rowsOf[T rower](records []T) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}

// Sheets shapes the result into the six worksheets, always all six and in
// SheetOrder, empty ones included.
func (r *Result) Sheets(linkBase string) []Sheet {
	rows := map[string][][]any{
		SheetGeneral:     rowsOf(r.Basic),
		SheetQuality:     rowsOf(r.Quality),
		SheetBuilding:    rowsOf(r.Building),
		SheetBudget:      rowsOf(r.Budget),
		SheetSubsidies:   rowsOf(r.Subsidies),
		SheetUnavailable: rowsOf(r.Unavailable),
	}

	sheets := make([]Sheet, 0, len(SheetOrder))
	for _, name := range SheetOrder {
		sheets = append(sheets, Sheet{
			Name:     name,
			Headers:  Headers(name),
			Rows:     rows[name],
			LinkBase: linkBase,
		})
	}
	return sheets
}
