package panel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/futig/panel-product-bot/internal/entity"
	pkghttp "github.com/futig/panel-product-bot/pkg/http"
)

// ShapeError is returned when a successful response cannot be interpreted.
type ShapeError struct {
	Reason  string
	Preview string
}

func (e *ShapeError) Error() string {
	if e.Preview == "" {
		return fmt.Sprintf("%s: %s", entity.ErrUnexpectedResponse, e.Reason)
	}
	return fmt.Sprintf("%s: %s. preview: %s", entity.ErrUnexpectedResponse, e.Reason, e.Preview)
}

func (e *ShapeError) Is(target error) bool {
	return target == entity.ErrUnexpectedResponse
}

func shapeError(resp *pkghttp.Response, format string, args ...any) *ShapeError {
	return &ShapeError{
		Reason:  fmt.Sprintf(format, args...),
		Preview: resp.Preview(pkghttp.DefaultPreviewLength),
	}
}

// decodeBody parses a JSON body keeping numbers as json.Number.
func decodeBody(resp *pkghttp.Response) (any, error) {
	if !resp.LooksLikeJSON() {
		return nil, shapeError(resp, "unexpected content type %q", resp.ContentType())
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, shapeError(resp, "invalid json: %v", err)
	}
	return root, nil
}

// itemRules are tried in order until one yields an array.
var itemRules = []func(root any) ([]any, bool){
	field("results"),
	field("result"),
	func(root any) ([]any, bool) {
		arr, ok := root.([]any)
		return arr, ok
	},
}

func field(name string) func(root any) ([]any, bool) {
	return func(root any) ([]any, bool) {
		obj, ok := root.(map[string]any)
		if !ok {
			return nil, false
		}
		arr, ok := obj[name].([]any)
		return arr, ok
	}
}

func extractItems(root any) ([]any, bool) {
	for _, rule := range itemRules {
		if items, ok := rule(root); ok {
			return items, true
		}
	}
	return nil, false
}

// nextLink returns the "next" page reference, empty when absent or null.
func nextLink(root any) string {
	obj, ok := root.(map[string]any)
	if !ok {
		return ""
	}
	next, _ := obj["next"].(string)
	return next
}

func toCategory(item any) (entity.Category, bool) {
	obj, ok := item.(map[string]any)
	if !ok {
		return entity.Category{}, false
	}

	id, ok := toUint(obj["id"])
	if !ok {
		return entity.Category{}, false
	}

	name, _ := obj["name"].(string)

	c := entity.Category{
		ID:        id,
		Name:      name,
		Available: toBool(obj["available"]),
	}
	if parent, ok := toUint(obj["parent"]); ok {
		c.ParentID = &parent
	}
	return c, true
}

// toUint accepts a JSON number or a numeric string.
func toUint(v any) (uint64, bool) {
	var raw string
	switch t := v.(type) {
	case json.Number:
		raw = t.String()
	case string:
		raw = t
	default:
		return 0, false
	}

	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// toBool accepts booleans, "true"/"1"/"false"/"0" and unsigned numbers.
// Anything else is false.
func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "1"
	case json.Number:
		n, err := strconv.ParseUint(t.String(), 10, 64)
		return err == nil && n != 0
	default:
		return false
	}
}

// extractID finds "id" at the top level or under "result".
func extractID(root any) (uint64, bool) {
	obj, ok := root.(map[string]any)
	if !ok {
		return 0, false
	}
	if id, ok := toUint(obj["id"]); ok {
		return id, true
	}
	if nested, ok := obj["result"].(map[string]any); ok {
		return toUint(nested["id"])
	}
	return 0, false
}
