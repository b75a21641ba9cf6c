package sqlmetrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"no_comments", "SELECT 1", "SELECT 1"},
		{"line_comment", "SELECT 1 -- trailing\nFROM t", "SELECT 1 \nFROM t"},
		{"block_comment", "SELECT /* hidden JOIN */ 1", "SELECT   1"},
		{"unclosed_block", "SELECT 1 /* runs on", "SELECT 1 "},
		{"line_comment_at_eof", "SELECT 1 -- no newline", "SELECT 1 "},
		{"keyword_in_string_kept", "SELECT '-- not a comment' FROM t", "SELECT '-- not a comment' FROM t"},
		{"block_marker_in_string_kept", "SELECT '/* keep */' FROM t", "SELECT '/* keep */' FROM t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, StripComments(tt.input))
		})
	}
}

func TestCountJoins(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"no_joins", "SELECT * FROM orders", 0},
		{"inner_join", "SELECT * FROM a INNER JOIN b ON a.id = b.id", 1},
		{"mixed_joins", "FROM a LEFT JOIN b ON x RIGHT JOIN c ON y FULL JOIN d ON z CROSS JOIN e", 4},
		{"case_insensitive", "from a inner join b on x Left Join c on y", 2},
		{"bare_join_not_counted", "SELECT * FROM a JOIN b ON a.id = b.id", 0},
		{"join_in_identifier_not_counted", "SELECT inner_joint FROM t", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CountJoins(tt.input))
		})
	}
}

func TestCountCTEs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"no_with", "SELECT * FROM orders", 0},
		{"single_cte", "WITH a AS (SELECT 1) SELECT * FROM a", 1},
		{
			"three_ctes",
			"WITH a AS (SELECT 1), b AS (SELECT 2), c AS (SELECT 3) SELECT * FROM c",
			3,
		},
		{
			"commas_inside_parens_ignored",
			"WITH a AS (SELECT x, y, z FROM t) SELECT * FROM a",
			1,
		},
		{"lowercase", "with a as (select 1), b as (select 2) select * from b", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CountCTEs(tt.input))
		})
	}
}

func TestCountWindowFunctions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"none", "SELECT sum(x) FROM t GROUP BY y", 0},
		{"row_number", "SELECT row_number() OVER (PARTITION BY a ORDER BY b) FROM t", 1},
		{"two_windows", "SELECT rank() OVER (ORDER BY a), sum(x) OVER (PARTITION BY b) FROM t", 2},
		{"space_before_paren", "SELECT lag(x) OVER   (ORDER BY a) FROM t", 1},
		{"lowercase", "select rank() over (order by a) from t", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CountWindowFunctions(tt.input))
		})
	}
}

func TestExtract(t *testing.T) {
	sql := `
-- orders rollup
WITH base AS (
    SELECT * FROM raw_orders
), enriched AS (
    SELECT b.*, c.segment
    FROM base b
    INNER JOIN customers c ON b.customer_id = c.id
    LEFT JOIN regions r ON c.region_id = r.id
)
SELECT
    *,
    row_number() OVER (PARTITION BY customer_id ORDER BY ordered_at) AS rn,
    sum(amount) OVER (PARTITION BY customer_id) AS customer_total
FROM enriched
`
	c := Extract(sql)
	require.Equal(t, 2, c.JoinCount)
	require.Equal(t, 2, c.CTECount)
	require.Equal(t, 2, c.WindowFunctionCount)

	m := c.Metrics()
	require.Equal(t, 2.0, m["join_count"])
	require.Equal(t, 2.0, m["cte_count"])
	require.Equal(t, 2.0, m["window_function_count"])
}

func TestExtract_CommentsIgnored(t *testing.T) {
	sql := `
-- INNER JOIN in a comment
/* WITH a AS (SELECT 1), b AS (SELECT 2) */
SELECT * FROM orders
`
	c := Extract(sql)
	require.Equal(t, 0, c.JoinCount)
	require.Equal(t, 0, c.CTECount)
}

func TestExtract_Empty(t *testing.T) {
	require.Equal(t, Complexity{}, Extract(""))
}
