// Package sqlmetrics derives static complexity metrics (JOINs, CTEs, window
// functions) from compiled model SQL. The counters are heuristic text scans,
// not a SQL parser: good enough to trigger optimization rules, never a
// reason to fail extraction.
package sqlmetrics

import (
	"regexp"
	"strings"

	"github.com/dbtbench/dbtbench/internal/models"
)

// Complexity holds the three complexity counters for one model's SQL.
type Complexity struct {
	JoinCount           int `json:"join_count"`
	CTECount            int `json:"cte_count"`
	WindowFunctionCount int `json:"window_function_count"`
}

// Metrics returns the counters keyed by their canonical metric names, as
// consumed by the recommendation engine.
func (c Complexity) Metrics() map[string]float64 {
	return map[string]float64{
		models.MetricJoinCount:           float64(c.JoinCount),
		models.MetricCTECount:            float64(c.CTECount),
		models.MetricWindowFunctionCount: float64(c.WindowFunctionCount),
	}
}

var (
	joinPattern       = regexp.MustCompile(`(?i)\b(INNER|LEFT|RIGHT|FULL|CROSS)\s+JOIN\b`)
	withPattern       = regexp.MustCompile(`(?i)\bWITH\b`)
	windowFuncPattern = regexp.MustCompile(`(?i)\bOVER\s*\(`)
)

// Extract analyzes raw SQL and returns its complexity counters. Empty input
// yields zeros.
func Extract(sql string) Complexity {
	if sql == "" {
		return Complexity{}
	}
	clean := StripComments(sql)
	return Complexity{
		JoinCount:           CountJoins(clean),
		CTECount:            CountCTEs(clean),
		WindowFunctionCount: CountWindowFunctions(clean),
	}
}

// StripComments removes line (--) and block (/* */) comments while
// preserving string literals, so keywords inside strings are not dropped.
// Block comments are replaced with a space to avoid token concatenation;
// line comments keep their trailing newline.
func StripComments(sql string) string {
	if sql == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(sql))
	inString := false
	var stringChar byte

	for i := 0; i < len(sql); i++ {
		ch := sql[i]

		if (ch == '\'' || ch == '"') && (i == 0 || sql[i-1] != '\\') {
			switch {
			case !inString:
				inString = true
				stringChar = ch
			case ch == stringChar:
				inString = false
			}
			b.WriteByte(ch)
			continue
		}
		if inString {
			b.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(sql) && sql[i+1] == '*' {
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				break // unclosed block comment runs to end of input
			}
			i += 2 + end + 1
			b.WriteByte(' ')
			continue
		}

		if ch == '-' && i+1 < len(sql) && sql[i+1] == '-' {
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				break
			}
			i += end - 1 // loop increment lands on the newline, which is kept
			continue
		}

		b.WriteByte(ch)
	}
	return b.String()
}

// CountJoins counts INNER/LEFT/RIGHT/FULL/CROSS JOIN clauses,
// case-insensitively and with word boundaries.
func CountJoins(sql string) int {
	if sql == "" {
		return 0
	}
	return len(joinPattern.FindAllString(sql, -1))
}

// CountCTEs counts CTE definitions in a WITH clause. Definitions are
// separated by top-level commas (commas inside parentheses or string
// literals do not count); the first CTE is implied by the WITH keyword.
// The clause ends at the first top-level main-query keyword, so commas in
// the outer select list are not miscounted.
func CountCTEs(sql string) int {
	if sql == "" {
		return 0
	}
	loc := withPattern.FindStringIndex(sql)
	if loc == nil {
		return 0
	}
	clause := sql[loc[1]:]

	count := 1
	depth := 0
	inString := false
	var stringChar byte
	for i := 0; i < len(clause); i++ {
		ch := clause[i]
		if (ch == '\'' || ch == '"') && (i == 0 || clause[i-1] != '\\') {
			switch {
			case !inString:
				inString = true
				stringChar = ch
			case ch == stringChar:
				inString = false
			}
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				count++
			}
		default:
			if depth == 0 && atMainQueryKeyword(clause, i) {
				return count
			}
		}
	}
	return count
}

// mainQueryKeywords start the statement that follows a WITH clause.
var mainQueryKeywords = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "MERGE"}

// atMainQueryKeyword reports whether a main-query keyword starts at i,
// respecting word boundaries.
func atMainQueryKeyword(s string, i int) bool {
	if i > 0 && isWordByte(s[i-1]) {
		return false
	}
	for _, kw := range mainQueryKeywords {
		end := i + len(kw)
		if end > len(s) {
			continue
		}
		if strings.EqualFold(s[i:end], kw) && (end == len(s) || !isWordByte(s[end])) {
			return true
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// CountWindowFunctions counts window function calls by their OVER clauses.
func CountWindowFunctions(sql string) int {
	if sql == "" {
		return 0
	}
	return len(windowFuncPattern.FindAllString(sql, -1))
}
