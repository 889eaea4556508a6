package changes

import (
	"fmt"
	"strconv"
)

// Watched fields of an entity snapshot.
const (
	FieldTitle    = "title"
	FieldAssignee = "assignee"
	FieldStage    = "stage"
	FieldStatus   = "status"
)

// Snapshot is the flat field to value data of an object at one point in time.
type Snapshot map[string]interface{}

// Field returns the textual value of name; missing and null fields read as "".
func (s Snapshot) Field(name string) string {
	if s == nil {
		return ""
	}
	switch v := s[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
