package query

import (
	"fmt"
	"strings"
)

// Condition represents a WHERE clause condition.
// Implementations must generate SQL fragments and parameter maps
// using Spanner's named parameter format (@paramName).
type Condition interface {
	// SQL returns the SQL fragment and parameter map for this condition.
	// paramIndex is used to generate unique parameter names (@p0, @p1, etc.)
	SQL(paramIndex int) (string, map[string]interface{})
}

func paramName(i int) string {
	return fmt.Sprintf("p%d", i)
}

type compareCondition struct {
	field string
	op    string
	value interface{}
}

// Eq creates a WHERE condition for equality comparison.
// Example: Eq("normalized_name", "iphone15") generates "normalized_name = @p0"
func Eq(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "=", value: value}
}

// Lt creates a strict less-than comparison.
// Example: Lt("processed_at", cutoff) generates "processed_at < @p0"
func Lt(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "<", value: value}
}

func (c *compareCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	name := paramName(paramIndex)
	return fmt.Sprintf("%s %s @%s", c.field, c.op, name), map[string]interface{}{name: c.value}
}

// IsNull creates a WHERE condition for NULL checks.
func IsNull(field string) Condition {
	return rawCondition(field + " IS NULL")
}

// IsNotNull creates a WHERE condition for NOT NULL checks.
func IsNotNull(field string) Condition {
	return rawCondition(field + " IS NOT NULL")
}

type rawCondition string

func (c rawCondition) SQL(int) (string, map[string]interface{}) {
	return string(c), map[string]interface{}{}
}

// InArray matches rows whose array column contains value exactly.
// Example: InArray("merchant_ids", "m1") generates "@p0 IN UNNEST(merchant_ids)"
func InArray(field string, value interface{}) Condition {
	return &inArrayCondition{field: field, value: value}
}

type inArrayCondition struct {
	field string
	value interface{}
}

func (c *inArrayCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	name := paramName(paramIndex)
	return fmt.Sprintf("@%s IN UNNEST(%s)", name, c.field), map[string]interface{}{name: c.value}
}

// AnyContainsFold matches rows where at least one element of a string array column
// contains substr, ignoring case. LIKE wildcards in substr are matched literally.
func AnyContainsFold(field, substr string) Condition {
	return &anyContainsFoldCondition{field: field, substr: substr}
}

type anyContainsFoldCondition struct {
	field  string
	substr string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (c *anyContainsFoldCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	name := paramName(paramIndex)
	pattern := "%" + likeEscaper.Replace(strings.ToLower(c.substr)) + "%"
	sql := fmt.Sprintf("EXISTS (SELECT 1 FROM UNNEST(%s) AS elem WHERE LOWER(elem) LIKE @%s)", c.field, name)
	return sql, map[string]interface{}{name: pattern}
}
