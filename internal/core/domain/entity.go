// Package domain file: internal/core/domain/entity.go
package domain

// Entity 描述一个现代 API 实体如何落在遗留 SDWIS 风格表上。
// 这里只有映射数据，没有逻辑：新 API 字段名 → 遗留列名。
type Entity struct {
	Name         string   // API 路径中的实体名, e.g. "systems"
	LegacyTable  string   // 遗留表名
	IDField      string   // 单条查询所用的 JSON 字段名
	DefaultSort  string   // 缺省排序字段（JSON 名）
	Fields       []Field  // 有序字段表，决定 SELECT 列顺序
}

// Field 是单个字段的映射与能力描述
type Field struct {
	JSONName     string // 现代 API 字段名, e.g. "pwsName"
	Alias        string // SELECT 别名（小写 snake），行规整后即以此为键
	LegacyColumn string // 遗留库列名
	Filterable   bool   // 是否允许出现在 WHERE 中
	Pattern      bool   // 是否允许 contains/prefix 模糊匹配（文本列）
	Sortable     bool   // 是否允许 ORDER BY
}

// Catalog 是全部实体的注册表，键为 API 实体名。
var Catalog = map[string]*Entity{
	"systems":    WaterSystems,
	"facilities": Facilities,
	"violations": Violations,
}

// WaterSystems 公共供水系统 (TINWSYS)
var WaterSystems = &Entity{
	Name:        "systems",
	LegacyTable: "TINWSYS",
	IDField:     "pwsId",
	DefaultSort: "pwsId",
	Fields: []Field{
		{JSONName: "pwsId", Alias: "pws_id", LegacyColumn: "NUMBER0", Filterable: true, Pattern: true, Sortable: true},
		{JSONName: "pwsName", Alias: "pws_name", LegacyColumn: "NAME", Filterable: true, Pattern: true, Sortable: true},
		{JSONName: "pwsTypeCode", Alias: "pws_type_code", LegacyColumn: "FED_TYPE_CD", Filterable: true, Sortable: true},
		{JSONName: "activityStatusCode", Alias: "activity_status_code", LegacyColumn: "ACTIVITY_STATUS_CD", Filterable: true, Sortable: true},
		{JSONName: "stateCode", Alias: "state_code", LegacyColumn: "ST_CODE", Filterable: true, Sortable: true},
		{JSONName: "populationServedCount", Alias: "population_served_count", LegacyColumn: "POPULATION_SERVED_CNT", Sortable: true},
		{JSONName: "primacyAgencyCode", Alias: "primacy_agency_code", LegacyColumn: "PRIMACY_AGENCY_CD", Filterable: true, Sortable: true},
		{JSONName: "ownerTypeCode", Alias: "owner_type_code", LegacyColumn: "OWNER_TYPE_CD", Filterable: true},
		{JSONName: "sourceWaterCode", Alias: "source_water_code", LegacyColumn: "GW_SW_CD", Filterable: true},
	},
}

// Facilities 供水设施 (TINWSF)
var Facilities = &Entity{
	Name:        "facilities",
	LegacyTable: "TINWSF",
	IDField:     "facilityId",
	DefaultSort: "facilityId",
	Fields: []Field{
		{JSONName: "facilityId", Alias: "facility_id", LegacyColumn: "ST_ASGN_IDENT_CD", Filterable: true, Pattern: true, Sortable: true},
		{JSONName: "facilityName", Alias: "facility_name", LegacyColumn: "NAME", Filterable: true, Pattern: true, Sortable: true},
		{JSONName: "facilityTypeCode", Alias: "facility_type_code", LegacyColumn: "TYPE_CODE", Filterable: true, Sortable: true},
		{JSONName: "activityStatusCode", Alias: "activity_status_code", LegacyColumn: "ACTIVITY_STATUS_CD", Filterable: true, Sortable: true},
		{JSONName: "pwsId", Alias: "pws_id", LegacyColumn: "TINWSYS_NUMBER0", Filterable: true, Pattern: true, Sortable: true},
		{JSONName: "waterTypeCode", Alias: "water_type_code", LegacyColumn: "WATER_TYPE_CODE", Filterable: true},
		{JSONName: "availabilityCode", Alias: "availability_code", LegacyColumn: "AVAILABILITY_CODE", Filterable: true},
	},
}

// Violations 违规记录 (TVIOLATION)
var Violations = &Entity{
	Name:        "violations",
	LegacyTable: "TVIOLATION",
	IDField:     "violationId",
	DefaultSort: "violationId",
	Fields: []Field{
		{JSONName: "violationId", Alias: "violation_id", LegacyColumn: "TVIOLATION_IS_NUMBER", Filterable: true, Sortable: true},
		{JSONName: "pwsId", Alias: "pws_id", LegacyColumn: "TINWSYS_NUMBER0", Filterable: true, Pattern: true, Sortable: true},
		{JSONName: "contaminantCode", Alias: "contaminant_code", LegacyColumn: "CONTAMINANT_CD", Filterable: true, Sortable: true},
		{JSONName: "violationTypeCode", Alias: "violation_type_code", LegacyColumn: "VIOLATION_TYPE_CD", Filterable: true, Sortable: true},
		{JSONName: "complianceStatusCode", Alias: "compliance_status_code", LegacyColumn: "COMPL_STATUS_CD", Filterable: true, Sortable: true},
		{JSONName: "compliancePeriodBeginDate", Alias: "compliance_period_begin_date", LegacyColumn: "COMPL_PER_BEGIN_DATE", Sortable: true},
		{JSONName: "compliancePeriodEndDate", Alias: "compliance_period_end_date", LegacyColumn: "COMPL_PER_END_DATE", Sortable: true},
	},
}

// FieldByJSONName 按现代 API 字段名查找映射；未找到返回 nil。
func (e *Entity) FieldByJSONName(name string) *Field {
	for i := range e.Fields {
		if e.Fields[i].JSONName == name {
			return &e.Fields[i]
		}
	}
	return nil
}

// FieldByAlias 按 SELECT 别名查找映射；未找到返回 nil。
func (e *Entity) FieldByAlias(alias string) *Field {
	for i := range e.Fields {
		if e.Fields[i].Alias == alias {
			return &e.Fields[i]
		}
	}
	return nil
}
