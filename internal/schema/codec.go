package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"storeroom_backend/platform/recordstore/formula"
)

// Codec converts one domain value to and from its stored representation.
// Domain values are string, float64, int, int64, bool, time.Time or []string.
type Codec interface {
	Encode(v any) (any, error)
	Decode(raw any) (any, error)
	// Match builds a filter for rows whose column holds v.
	Match(key string, v any) (formula.Expr, error)
}

var errUnfilterable = errors.New("column type does not support filtering")

// Codecs shared by the table descriptors.
var (
	Text        Codec = textCodec{}
	Number      Codec = numberCodec{}
	Integer     Codec = intCodec{}
	Cents       Codec = centsCodec{}
	YesNo       Codec = yesNoCodec{}
	Checkbox    Codec = checkboxCodec{}
	Date        Codec = dateCodec{}
	Timestamp   Codec = timestampCodec{}
	Link        Codec = linkCodec{}
	Links       Codec = linksCodec{}
	CommaList   Codec = commaListCodec{}
	Attachments Codec = attachmentCodec{}
)

type textCodec struct{}

func (textCodec) Encode(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected text, got %T", v)
	}
	return s, nil
}

func (textCodec) Decode(raw any) (any, error) {
	switch r := raw.(type) {
	case string:
		return r, nil
	case float64:
		return strconv.FormatFloat(r, 'f', -1, 64), nil
	case []any:
		// Lookup columns arrive as single-element arrays.
		if len(r) == 0 {
			return "", nil
		}
		return fmt.Sprint(r[0]), nil
	}
	return fmt.Sprint(raw), nil
}

func (textCodec) Match(key string, v any) (formula.Expr, error) {
	return formula.Eq(key, fmt.Sprint(v)), nil
}

type numberCodec struct{}

func (numberCodec) Encode(v any) (any, error) {
	f, ok := v.(float64)
	if !ok {
		return nil, fmt.Errorf("expected number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errors.New("number must be finite")
	}
	return f, nil
}

func (numberCodec) Decode(raw any) (any, error) { return toFloat(raw) }

func (numberCodec) Match(key string, v any) (formula.Expr, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return formula.Eq(key, f), nil
}

type intCodec struct{}

func (intCodec) Encode(v any) (any, error) {
	n, ok := v.(int)
	if !ok {
		return nil, fmt.Errorf("expected integer, got %T", v)
	}
	return n, nil
}

func (intCodec) Decode(raw any) (any, error) {
	f, err := toFloat(raw)
	if err != nil {
		return nil, err
	}
	return int(math.Round(f)), nil
}

func (intCodec) Match(key string, v any) (formula.Expr, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return formula.Eq(key, f), nil
}

// centsCodec stores money as a dollar amount and holds it as int64 cents.
type centsCodec struct{}

func (centsCodec) Encode(v any) (any, error) {
	c, ok := v.(int64)
	if !ok {
		return nil, fmt.Errorf("expected cents, got %T", v)
	}
	return float64(c) / 100, nil
}

func (centsCodec) Decode(raw any) (any, error) {
	f, err := toFloat(raw)
	if err != nil {
		return nil, err
	}
	return int64(math.Round(f * 100)), nil
}

func (centsCodec) Match(key string, v any) (formula.Expr, error) {
	c, ok := v.(int64)
	if !ok {
		return nil, fmt.Errorf("expected cents, got %T", v)
	}
	return formula.Eq(key, float64(c)/100), nil
}

// yesNoCodec is a single-select column with the options Yes and No.
type yesNoCodec struct{}

func (yesNoCodec) Encode(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("expected boolean, got %T", v)
	}
	if b {
		return "Yes", nil
	}
	return "No", nil
}

func (yesNoCodec) Decode(raw any) (any, error) {
	switch r := raw.(type) {
	case bool:
		return r, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(r)) {
		case "yes", "true", "y":
			return true, nil
		case "no", "false", "n", "":
			return false, nil
		}
	}
	return nil, fmt.Errorf("unrecognised yes/no value %v", raw)
}

func (yesNoCodec) Match(key string, v any) (formula.Expr, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("expected boolean, got %T", v)
	}
	if b {
		return formula.Eq(key, "Yes"), nil
	}
	return formula.Not(formula.Eq(key, "Yes")), nil
}

type checkboxCodec struct{}

func (checkboxCodec) Encode(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("expected boolean, got %T", v)
	}
	return b, nil
}

func (checkboxCodec) Decode(raw any) (any, error) {
	b, ok := raw.(bool)
	if !ok {
		return nil, fmt.Errorf("expected checkbox, got %T", raw)
	}
	return b, nil
}

func (checkboxCodec) Match(key string, v any) (formula.Expr, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("expected boolean, got %T", v)
	}
	if b {
		return formula.Eq(key, true), nil
	}
	return formula.Not(formula.Eq(key, true)), nil
}

// dateCodec is a date-only column in ISO format.
type dateCodec struct{}

func (dateCodec) Encode(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, fmt.Errorf("expected date, got %T", v)
	}
	if t.IsZero() {
		return nil, nil
	}
	return t.Format(formula.DateLayout), nil
}

func (dateCodec) Decode(raw any) (any, error) { return parseTime(raw) }

func (dateCodec) Match(key string, v any) (formula.Expr, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, fmt.Errorf("expected date, got %T", v)
	}
	return formula.OnDate(key, t), nil
}

type timestampCodec struct{}

func (timestampCodec) Encode(v any) (any, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, fmt.Errorf("expected timestamp, got %T", v)
	}
	if t.IsZero() {
		return nil, nil
	}
	return t.UTC().Format(time.RFC3339), nil
}

func (timestampCodec) Decode(raw any) (any, error) { return parseTime(raw) }

func (timestampCodec) Match(key string, v any) (formula.Expr, error) {
	t, ok := v.(time.Time)
	if !ok {
		return nil, fmt.Errorf("expected timestamp, got %T", v)
	}
	return formula.OnDate(key, t), nil
}

// linkCodec is a linked-record column holding at most one record.
type linkCodec struct{}

func (linkCodec) Encode(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected record id, got %T", v)
	}
	if s == "" {
		return []string{}, nil
	}
	return []string{s}, nil
}

func (linkCodec) Decode(raw any) (any, error) {
	ids, err := toStrings(raw)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

func (linkCodec) Match(key string, v any) (formula.Expr, error) {
	return formula.Contains(key, fmt.Sprint(v)), nil
}

type linksCodec struct{}

func (linksCodec) Encode(v any) (any, error) {
	ids, ok := v.([]string)
	if !ok {
		return nil, fmt.Errorf("expected record ids, got %T", v)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (linksCodec) Decode(raw any) (any, error) { return toStrings(raw) }

func (linksCodec) Match(key string, v any) (formula.Expr, error) {
	return formula.Contains(key, fmt.Sprint(v)), nil
}

// commaListCodec packs a list into one text column.
type commaListCodec struct{}

func (commaListCodec) Encode(v any) (any, error) {
	list, ok := v.([]string)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", v)
	}
	return strings.Join(list, ", "), nil
}

func (commaListCodec) Decode(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return toStrings(raw)
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

func (commaListCodec) Match(key string, v any) (formula.Expr, error) {
	return formula.Contains(key, fmt.Sprint(v)), nil
}

// attachmentCodec is an attachment column; the domain keeps only URLs.
type attachmentCodec struct{}

func (attachmentCodec) Encode(v any) (any, error) {
	urls, ok := v.([]string)
	if !ok {
		return nil, fmt.Errorf("expected urls, got %T", v)
	}
	out := make([]map[string]string, 0, len(urls))
	for _, u := range urls {
		out = append(out, map[string]string{"url": u})
	}
	return out, nil
}

func (attachmentCodec) Decode(raw any) (any, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected attachments, got %T", raw)
	}
	urls := make([]string, 0, len(list))
	for _, entry := range list {
		if m, ok := entry.(map[string]any); ok {
			if u, ok := m["url"].(string); ok && u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls, nil
}

func (attachmentCodec) Match(string, any) (formula.Expr, error) {
	return nil, errUnfilterable
}

// Enum maps domain values to the labels a single-select column uses.
// Decoding is case-insensitive.
func Enum(labels map[string]string) Codec {
	reverse := make(map[string]string, len(labels))
	for domainValue, label := range labels {
		reverse[strings.ToLower(label)] = domainValue
	}
	return enumCodec{labels: labels, reverse: reverse}
}

type enumCodec struct {
	labels  map[string]string
	reverse map[string]string
}

func (c enumCodec) Encode(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected text, got %T", v)
	}
	if s == "" {
		return nil, nil
	}
	label, ok := c.labels[s]
	if !ok {
		return nil, fmt.Errorf("unknown value %q", s)
	}
	return label, nil
}

func (c enumCodec) Decode(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected option, got %T", raw)
	}
	v, ok := c.reverse[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return nil, fmt.Errorf("unknown option %q", s)
	}
	return v, nil
}

func (c enumCodec) Match(key string, v any) (formula.Expr, error) {
	label, err := c.Encode(fmt.Sprint(v))
	if err != nil {
		return nil, err
	}
	if label == nil {
		return formula.Blank(key), nil
	}
	return formula.Eq(key, label), nil
}

func toFloat(raw any) (float64, error) {
	switch r := raw.(type) {
	case float64:
		return r, nil
	case int:
		return float64(r), nil
	case int64:
		return float64(r), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", r)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected number, got %T", raw)
}

func toStrings(raw any) ([]string, error) {
	switch r := raw.(type) {
	case []string:
		return r, nil
	case []any:
		out := make([]string, 0, len(r))
		for _, v := range r {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("expected text list, got element %T", v)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		if r == "" {
			return nil, nil
		}
		return []string{r}, nil
	}
	return nil, fmt.Errorf("expected list, got %T", raw)
}

func parseTime(raw any) (time.Time, error) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("expected date text, got %T", raw)
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(formula.DateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
