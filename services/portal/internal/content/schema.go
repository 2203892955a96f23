// Package content describes every admin-editable content type in one table:
// which database table backs it, which fields it accepts and how each field
// is validated. One editor and one repository serve all of them.
package content

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
)

type Type string

const (
	Posts          Type = "posts"
	Programs       Type = "programs"
	Awards         Type = "awards"
	Gallery        Type = "gallery"
	Notifications  Type = "notifications"
	MemberProfiles Type = "member_profiles"
)

type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
)

type Field struct {
	Name    string
	Kind    Kind
	Rules   string
	Default interface{}
}

// Record is one row of a content table keyed by column name.
type Record map[string]interface{}

func (r Record) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

type Schema struct {
	Type   Type
	Table  string
	Fields []Field
	// OrderBy is the SQL ordering used by List.
	OrderBy string
	// Bucket is the object storage prefix for this type's images.
	Bucket string
	// Filterable lists columns List may filter on besides published.
	Filterable []string
	// SlugFrom names the field a slug column is derived from.
	SlugFrom string
	// AuthorColumn is filled with the creating identity.
	AuthorColumn string
}

// MemberCategories are the groups shown on the about page, in display order.
var MemberCategories = []string{
	"founding_members",
	"stalwarts",
	"contributors",
	"group_leaders",
	"cubs",
	"bulbuls",
	"scouts",
	"guides",
	"rovers",
	"rangers",
	"leadership",
}

var published = Field{Name: "published", Kind: KindBool, Default: true}

var schemas = map[Type]*Schema{
	Posts: {
		Type:  Posts,
		Table: "posts",
		Fields: []Field{
			{Name: "title", Rules: "required,max=200"},
			{Name: "content", Rules: "required"},
			{Name: "category", Rules: "max=100"},
			{Name: "image_url", Rules: "omitempty,url"},
			published,
		},
		OrderBy:      "created_at DESC",
		Bucket:       "posts",
		Filterable:   []string{"category"},
		SlugFrom:     "title",
		AuthorColumn: "author_id",
	},
	Programs: {
		Type:  Programs,
		Table: "programs",
		Fields: []Field{
			{Name: "title", Rules: "required,max=200"},
			{Name: "description", Rules: "required"},
			{Name: "age_group", Rules: "max=100"},
			{Name: "duration", Rules: "max=100"},
			{Name: "image_url", Rules: "omitempty,url"},
			published,
		},
		OrderBy: "created_at DESC",
		Bucket:  "programs",
	},
	Awards: {
		Type:  Awards,
		Table: "awards",
		Fields: []Field{
			{Name: "title", Rules: "required,max=200"},
			{Name: "description", Rules: "required"},
			{Name: "requirements"},
			{Name: "badge_image_url", Rules: "omitempty,url"},
			published,
		},
		OrderBy: "created_at DESC",
		Bucket:  "awards",
	},
	Gallery: {
		Type:  Gallery,
		Table: "gallery",
		Fields: []Field{
			{Name: "title", Rules: "required,max=200"},
			{Name: "image_url", Rules: "required,url"},
			{Name: "description"},
			{Name: "category", Rules: "max=100"},
			published,
		},
		OrderBy:    "created_at DESC",
		Bucket:     "gallery",
		Filterable: []string{"category"},
	},
	Notifications: {
		Type:  Notifications,
		Table: "notifications",
		Fields: []Field{
			{Name: "title", Rules: "required,max=200"},
			{Name: "content", Rules: "required"},
			published,
		},
		OrderBy: "created_at DESC",
	},
	MemberProfiles: {
		Type:  MemberProfiles,
		Table: "member_profiles",
		Fields: []Field{
			{Name: "name", Rules: "required,max=200"},
			{Name: "category", Rules: "required,oneof=" + strings.Join(MemberCategories, " "), Default: "founding_members"},
			{Name: "role", Rules: "max=200"},
			{Name: "photo_url", Rules: "omitempty,url"},
			{Name: "display_order", Kind: KindInt, Rules: "min=0", Default: 0},
			published,
		},
		OrderBy:    "category, display_order",
		Bucket:     "member-photos",
		Filterable: []string{"category"},
	},
}

var ErrUnknownType = errors.New("unknown content type")

var validate = validator.New()

func Lookup(t string) (*Schema, error) {
	s, ok := schemas[Type(t)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	return s, nil
}

func MustLookup(t Type) *Schema {
	s, err := Lookup(string(t))
	if err != nil {
		panic(err)
	}
	return s
}

func Types() []Type {
	out := make([]Type, 0, len(schemas))
	for t := range schemas {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Buckets returns every object storage prefix an upload may target.
func Buckets() []string {
	var out []string
	for _, t := range Types() {
		if b := schemas[t].Bucket; b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s *Schema) CanFilter(column string) bool {
	for _, c := range s.Filterable {
		if c == column {
			return true
		}
	}
	return false
}

// FieldErrors maps a field name to the reason it was rejected.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}

// Normalize keeps only the schema's fields, coerces and trims them and
// checks their rules. For a full record (partial=false) absent fields take
// their default and required fields must be present. For a partial update
// only the supplied fields are checked.
func (s *Schema) Normalize(input map[string]interface{}, partial bool) (Record, error) {
	out := Record{}
	errs := FieldErrors{}

	for _, f := range s.Fields {
		raw, present := input[f.Name]
		if !present || raw == nil {
			if partial {
				continue
			}
			raw = f.Default
		}

		value, err := coerce(f, raw)
		if err != nil {
			errs[f.Name] = err.Error()
			continue
		}
		if f.Rules != "" {
			if err := validate.Var(value, f.Rules); err != nil {
				errs[f.Name] = Describe(err)
				continue
			}
		}
		out[f.Name] = value
	}

	if len(errs) > 0 {
		return nil, errs
	}

	if s.SlugFrom != "" {
		if src, ok := out[s.SlugFrom].(string); ok && src != "" {
			out["slug"] = slug.Make(src)
		}
	}
	return out, nil
}

func coerce(f Field, raw interface{}) (interface{}, error) {
	switch f.Kind {
	case KindBool:
		switch v := raw.(type) {
		case nil:
			return false, nil
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("must be true or false")
			}
			return b, nil
		}
		return nil, fmt.Errorf("must be true or false")
	case KindInt:
		switch v := raw.(type) {
		case nil:
			return 0, nil
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v != float64(int(v)) {
				return nil, fmt.Errorf("must be a whole number")
			}
			return int(v), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("must be a whole number")
			}
			return n, nil
		}
		return nil, fmt.Errorf("must be a whole number")
	default:
		switch v := raw.(type) {
		case nil:
			return "", nil
		case string:
			return strings.TrimSpace(v), nil
		}
		return nil, fmt.Errorf("must be text")
	}
}

// Describe renders a validator error as a short reason.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	return DescribeField(verrs[0])
}

func DescribeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "datetime":
		return "must be a date in " + fe.Param() + " format"
	}
	return "failed " + fe.Tag() + " check"
}
