// Package inventory file: internal/service/inventory/builder_test.go
package inventory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AquaBridge/internal/core/domain"
	"AquaBridge/internal/core/port"
)

const systemsSelect = "NUMBER0 AS pws_id, NAME AS pws_name, FED_TYPE_CD AS pws_type_code, " +
	"ACTIVITY_STATUS_CD AS activity_status_code, ST_CODE AS state_code, " +
	"POPULATION_SERVED_CNT AS population_served_count, PRIMACY_AGENCY_CD AS primacy_agency_code, " +
	"OWNER_TYPE_CD AS owner_type_code, GW_SW_CD AS source_water_code"

func TestBuildListSQL_NoFilters(t *testing.T) {
	req := port.ListRequest{Page: 1, Size: 20}

	dataSQL, dataBinds, countSQL, countBinds, err := buildListSQL(domain.WaterSystems, req)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT "+systemsSelect+" FROM TINWSYS ORDER BY pws_id ASC LIMIT $1 OFFSET $2",
		dataSQL)
	assert.Equal(t, []any{20, 0}, dataBinds)
	assert.Equal(t, "SELECT COUNT(*) as total FROM TINWSYS", countSQL)
	assert.Empty(t, countBinds)
}

func TestBuildListSQL_FiltersSortAndPaging(t *testing.T) {
	req := port.ListRequest{
		Filters: []port.Filter{
			{Field: "stateCode", Match: port.MatchExact, Value: "CA"},
			{Field: "pwsName", Match: port.MatchContains, Value: "spring"},
		},
		SortBy: "populationServedCount",
		Desc:   true,
		Page:   3,
		Size:   10,
	}

	dataSQL, dataBinds, countSQL, countBinds, err := buildListSQL(domain.WaterSystems, req)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT "+systemsSelect+" FROM TINWSYS WHERE ST_CODE = $1 AND NAME ILIKE $2 "+
			"ORDER BY population_served_count DESC LIMIT $3 OFFSET $4",
		dataSQL)
	assert.Equal(t, []any{"CA", "%spring%", 10, 20}, dataBinds)
	assert.Equal(t,
		"SELECT COUNT(*) as total FROM TINWSYS WHERE ST_CODE = $1 AND NAME ILIKE $2",
		countSQL)
	assert.Equal(t, []any{"CA", "%spring%"}, countBinds)
}

func TestBuildListSQL_PrefixMatch(t *testing.T) {
	req := port.ListRequest{
		Filters: []port.Filter{{Field: "pwsId", Match: port.MatchPrefix, Value: "NV"}},
		Page:    1,
		Size:    20,
	}

	dataSQL, dataBinds, _, _, err := buildListSQL(domain.WaterSystems, req)
	require.NoError(t, err)
	assert.Contains(t, dataSQL, "WHERE NUMBER0 ILIKE $1")
	assert.Equal(t, "NV%", dataBinds[0])
}

func TestBuildListSQL_RejectsUnknownOrUnfilterableField(t *testing.T) {
	cases := []port.Filter{
		{Field: "nope", Match: port.MatchExact, Value: "x"},
		// populationServedCount 不可过滤
		{Field: "populationServedCount", Match: port.MatchExact, Value: "1"},
		// stateCode 可过滤但不支持模糊匹配
		{Field: "stateCode", Match: port.MatchContains, Value: "C"},
	}
	for _, flt := range cases {
		req := port.ListRequest{Filters: []port.Filter{flt}, Page: 1, Size: 20}
		_, _, _, _, err := buildListSQL(domain.WaterSystems, req)
		assert.True(t, errors.Is(err, port.ErrUnknownField), "过滤条件 %+v 应被拒绝", flt)
	}
}

func TestBuildListSQL_RejectsUnsortableField(t *testing.T) {
	req := port.ListRequest{SortBy: "ownerTypeCode", Page: 1, Size: 20}
	_, _, _, _, err := buildListSQL(domain.WaterSystems, req)
	assert.True(t, errors.Is(err, port.ErrUnknownField))
}

func TestBuildGetSQL(t *testing.T) {
	text, binds := buildGetSQL(domain.WaterSystems, "CA1010001")

	assert.Equal(t,
		"SELECT "+systemsSelect+" FROM TINWSYS WHERE NUMBER0 = $1 "+
			"ORDER BY pws_id ASC LIMIT $2 OFFSET $3",
		text)
	assert.Equal(t, []any{"CA1010001", 1, 0}, binds)
}
