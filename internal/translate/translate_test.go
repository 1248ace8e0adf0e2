// file: internal/translate/translate_test.go

package translate

import (
	"database/sql"
	"reflect"
	"strings"
	"testing"
)

// -----------------------------------------------------------------------------
// 占位符改写（无分页、无 ILIKE 时只改语法）
// -----------------------------------------------------------------------------

func TestToOracle_PlaceholderOnly(t *testing.T) {
	text := "SELECT pws_id FROM TINWSYS WHERE ST_CODE = $1 AND FED_TYPE_CD = $2"
	binds := []any{"CA", "CWS"}

	got, gotBinds := ToOracle(text, binds)

	want := "SELECT pws_id FROM TINWSYS WHERE ST_CODE = :1 AND FED_TYPE_CD = :2"
	if got != want {
		t.Errorf("文本不匹配\n  got : %s\n  want: %s", got, want)
	}
	if !reflect.DeepEqual(gotBinds, binds) {
		t.Errorf("绑定列表长度或顺序应保持不变, got=%#v", gotBinds)
	}
}

func TestToSQLServer_PlaceholderOnly(t *testing.T) {
	text := "SELECT pws_id FROM TINWSYS WHERE ST_CODE = $1 AND FED_TYPE_CD = $2"
	got, gotBinds := ToSQLServer(text, []any{"CA", "CWS"})

	want := "SELECT pws_id FROM TINWSYS WHERE ST_CODE = @p1 AND FED_TYPE_CD = @p2"
	if got != want {
		t.Errorf("文本不匹配\n  got : %s\n  want: %s", got, want)
	}
	if len(gotBinds) != 2 {
		t.Fatalf("绑定数量应为2, got=%d", len(gotBinds))
	}
	n1, ok := gotBinds[0].(sql.NamedArg)
	if !ok || n1.Name != "p1" || n1.Value != "CA" {
		t.Errorf("第一个命名绑定错误: %#v", gotBinds[0])
	}
	n2 := gotBinds[1].(sql.NamedArg)
	if n2.Name != "p2" || n2.Value != "CWS" {
		t.Errorf("第二个命名绑定错误: %#v", gotBinds[1])
	}
}

// 非占位符数字不应被改写
func TestPlaceholderRewrite_LeavesBareNumeralsAlone(t *testing.T) {
	text := "SELECT pws_id FROM TINWSYS WHERE POPULATION_SERVED_CNT > 500 AND ST_CODE = $1"
	got, _ := ToOracle(text, []any{"CA"})
	if !strings.Contains(got, "> 500") {
		t.Errorf("裸数字 500 被误改写: %s", got)
	}
	if !strings.Contains(got, "ST_CODE = :1") {
		t.Errorf("占位符未改写: %s", got)
	}
}

// -----------------------------------------------------------------------------
// 分页改写
// -----------------------------------------------------------------------------

// 规范场景：遗留方言 ROWNUM 仿真
func TestToOracle_PaginationScenario(t *testing.T) {
	text := "SELECT * FROM t WHERE name ILIKE $1 LIMIT $2 OFFSET $3"
	binds := []any{"%abc%", 5, 10}

	got, gotBinds := ToOracle(text, binds)

	if !reflect.DeepEqual(gotBinds, []any{"%abc%"}) {
		t.Errorf("应只剩 1 个绑定, got=%#v", gotBinds)
	}
	if !strings.Contains(got, "WHERE UPPER(name) LIKE UPPER(:1)") {
		t.Errorf("ILIKE 改写缺失: %s", got)
	}
	if !strings.Contains(got, "ROWNUM <= 15") {
		t.Errorf("上界应为 offset+limit=15: %s", got)
	}
	if !strings.Contains(got, "rn > 10") {
		t.Errorf("下界应为 offset=10: %s", got)
	}
	if !strings.HasPrefix(got, "SELECT * FROM (SELECT aq_inner.*, ROWNUM rn FROM (") {
		t.Errorf("缺少行号子查询包装: %s", got)
	}
	if strings.Contains(got, "LIMIT") || strings.Contains(got, "OFFSET") {
		t.Errorf("规范分页子句应被整体移除: %s", got)
	}
}

// 规范场景：企业方言 OFFSET/FETCH
func TestToSQLServer_PaginationScenario(t *testing.T) {
	text := "SELECT * FROM t WHERE name ILIKE $1 LIMIT $2 OFFSET $3"
	binds := []any{"%abc%", 5, 10}

	got, gotBinds := ToSQLServer(text, binds)

	if !strings.HasSuffix(got, "OFFSET 10 ROWS FETCH NEXT 5 ROWS ONLY") {
		t.Errorf("缺少 OFFSET/FETCH 后缀: %s", got)
	}
	if !strings.Contains(got, "name LIKE @p1") {
		t.Errorf("ILIKE 应降级为 LIKE 且占位符为 @p1: %s", got)
	}
	if strings.Contains(got, "$1") {
		t.Errorf("规范占位符残留: %s", got)
	}
	if len(gotBinds) != 1 {
		t.Fatalf("应只剩 1 个绑定, got=%#v", gotBinds)
	}
	if n := gotBinds[0].(sql.NamedArg); n.Name != "p1" || n.Value != "%abc%" {
		t.Errorf("命名绑定错误: %#v", gotBinds[0])
	}
}

// 分页绑定移除后其余绑定保持相对顺序
func TestToOracle_DropsExactlyTwoBindsPreservingOrder(t *testing.T) {
	text := "SELECT * FROM TVIOLATION WHERE CONTAMINANT_CD = $1 AND COMPL_STATUS_CD = $2 ORDER BY TVIOLATION_IS_NUMBER ASC LIMIT $3 OFFSET $4"
	binds := []any{"PB90", "O", 25, 50}

	got, gotBinds := ToOracle(text, binds)

	if !reflect.DeepEqual(gotBinds, []any{"PB90", "O"}) {
		t.Errorf("绑定过滤错误, got=%#v", gotBinds)
	}
	if !strings.Contains(got, "ROWNUM <= 75") || !strings.Contains(got, "rn > 50") {
		t.Errorf("分页边界错误: %s", got)
	}
	if !strings.Contains(got, "CONTAMINANT_CD = :1") || !strings.Contains(got, "COMPL_STATUS_CD = :2") {
		t.Errorf("剩余占位符应重编号为 :1/:2: %s", got)
	}
}

// 无分页子句时为 no-op（不移除任何绑定）
func TestPagination_AbsentClauseIsNoop(t *testing.T) {
	text := "SELECT COUNT(*) as total FROM TINWSYS WHERE ST_CODE = $1"
	binds := []any{"TX"}

	_, pc, ok := extractPagination(text, binds)
	if ok {
		t.Fatalf("不存在分页子句却被识别: %+v", pc)
	}

	_, gotBinds := ToSQLServer(text, binds)
	if len(gotBinds) != 1 {
		t.Errorf("无分页时不应移除绑定, got=%#v", gotBinds)
	}
}

// -----------------------------------------------------------------------------
// ILIKE 改写（逐处独立）
// -----------------------------------------------------------------------------

func TestILIKE_IndependentOccurrences(t *testing.T) {
	text := "SELECT * FROM TINWSYS WHERE NAME ILIKE $1 AND PRIMACY_AGENCY_CD ILIKE $2"
	got, _ := ToOracle(text, []any{"%spring%", "CA%"})

	if !strings.Contains(got, "UPPER(NAME) LIKE UPPER(:1)") {
		t.Errorf("第一处 ILIKE 改写错误: %s", got)
	}
	if !strings.Contains(got, "UPPER(PRIMACY_AGENCY_CD) LIKE UPPER(:2)") {
		t.Errorf("第二处 ILIKE 改写错误: %s", got)
	}
	if strings.Contains(got, "ILIKE") {
		t.Errorf("ILIKE 残留: %s", got)
	}
}

// -----------------------------------------------------------------------------
// 词法替换清单（仅遗留方言）
// -----------------------------------------------------------------------------

func TestCountAlias_OracleOnly(t *testing.T) {
	text := "SELECT COUNT(*) as total FROM TINWSYS WHERE ST_CODE = $1"
	binds := []any{"WA"}

	gotOra, _ := ToOracle(text, binds)
	if !strings.Contains(gotOra, "COUNT(*) total") || strings.Contains(gotOra, "COUNT(*) as total") {
		t.Errorf("遗留方言应去掉别名 AS 关键字: %s", gotOra)
	}

	gotMss, _ := ToSQLServer(text, binds)
	if !strings.Contains(gotMss, "COUNT(*) as total") {
		t.Errorf("企业方言不应应用该词法替换: %s", gotMss)
	}
}

// -----------------------------------------------------------------------------
// 纯函数：同一输入两次翻译输出逐字节一致
// -----------------------------------------------------------------------------

func TestTranslate_Deterministic(t *testing.T) {
	text := "SELECT * FROM TINWSF WHERE NAME ILIKE $1 AND TINWSYS_NUMBER0 = $2 ORDER BY facility_id ASC LIMIT $3 OFFSET $4"
	binds := []any{"%well%", "CA0110001", 20, 40}

	t1, b1 := ToOracle(text, binds)
	t2, b2 := ToOracle(text, binds)
	if t1 != t2 || !reflect.DeepEqual(b1, b2) {
		t.Errorf("翻译结果不可重现\n  t1=%s\n  t2=%s", t1, t2)
	}

	s1, n1 := ToSQLServer(text, binds)
	s2, n2 := ToSQLServer(text, binds)
	if s1 != s2 || !reflect.DeepEqual(n1, n2) {
		t.Errorf("企业方言翻译结果不可重现")
	}
}

// -----------------------------------------------------------------------------
// 记忆层：命中与未命中输出一致
// -----------------------------------------------------------------------------

func TestCache_HitMatchesMiss(t *testing.T) {
	c, err := NewCache(8)
	if err != nil {
		t.Fatalf("NewCache 失败: %v", err)
	}
	text := "SELECT * FROM t WHERE name ILIKE $1 LIMIT $2 OFFSET $3"
	binds := []any{"%abc%", 5, 10}

	missText, missBinds := c.Oracle(text, binds)
	hitText, hitBinds := c.Oracle(text, binds)
	if missText != hitText || !reflect.DeepEqual(missBinds, hitBinds) {
		t.Errorf("缓存命中输出与未命中不一致\n  miss=%s\n  hit =%s", missText, hitText)
	}

	wantText, wantBinds := ToOracle(text, binds)
	if hitText != wantText || !reflect.DeepEqual(hitBinds, wantBinds) {
		t.Errorf("缓存输出与纯函数输出不一致")
	}

	// 相同文本、不同分页值必须各自成键
	otherText, _ := c.Oracle(text, []any{"%abc%", 5, 20})
	if otherText == hitText {
		t.Errorf("不同 offset 不应命中同一缓存条目")
	}

	mText, mBinds := c.SQLServer(text, binds)
	mWantText, mWantBinds := ToSQLServer(text, binds)
	if mText != mWantText || !reflect.DeepEqual(mBinds, mWantBinds) {
		t.Errorf("企业方言缓存输出与纯函数输出不一致")
	}
	mHitText, mHitBinds := c.SQLServer(text, binds)
	if mHitText != mWantText || !reflect.DeepEqual(mHitBinds, mWantBinds) {
		t.Errorf("企业方言缓存命中输出错误")
	}
}

// -----------------------------------------------------------------------------
// 行规整
// -----------------------------------------------------------------------------

func TestNormalizeRows(t *testing.T) {
	in := []map[string]any{
		{"PWS_ID": "CA0110001", "PWS_NAME": "SPRING VALLEY WD"},
		{"PWS_ID": "TX0020002", "PWS_NAME": "ELM CREEK MUD"},
	}
	got := NormalizeRows(in)

	if len(got) != 2 {
		t.Fatalf("行数应保持不变, got=%d", len(got))
	}
	if got[0]["pws_id"] != "CA0110001" || got[0]["pws_name"] != "SPRING VALLEY WD" {
		t.Errorf("键未统一为小写: %#v", got[0])
	}
	if _, exists := got[0]["PWS_ID"]; exists {
		t.Errorf("大写键不应保留: %#v", got[0])
	}

	// 幂等：再规整一次应得到相等结果
	again := NormalizeRows(got)
	if !reflect.DeepEqual(again, got) {
		t.Errorf("规整应幂等\n  got  =%#v\n  again=%#v", got, again)
	}
}

func TestNormalizeRows_Nil(t *testing.T) {
	if NormalizeRows(nil) != nil {
		t.Errorf("nil 输入应返回 nil")
	}
}
