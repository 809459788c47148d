package schema

import "time"

// The constructors below build a Field from a pointer accessor so each
// descriptor names its entity attribute exactly once.

// String declares a text-like field, including typed string enums.
func String[E any, T ~string](name string, ptr func(*E) *T) Field[E] {
	return Field[E]{
		Name: name,
		Get:  func(e *E) any { return string(*ptr(e)) },
		Set: func(e *E, v any) {
			if s, ok := v.(string); ok {
				*ptr(e) = T(s)
			}
		},
	}
}

// Float declares a numeric field.
func Float[E any](name string, ptr func(*E) *float64) Field[E] {
	return Field[E]{
		Name: name,
		Get:  func(e *E) any { return *ptr(e) },
		Set: func(e *E, v any) {
			if f, ok := v.(float64); ok {
				*ptr(e) = f
			}
		},
	}
}

// Int declares a whole-number field.
func Int[E any](name string, ptr func(*E) *int) Field[E] {
	return Field[E]{
		Name: name,
		Get:  func(e *E) any { return *ptr(e) },
		Set: func(e *E, v any) {
			if n, ok := v.(int); ok {
				*ptr(e) = n
			}
		},
	}
}

// Money declares an amount held in cents.
func Money[E any](name string, ptr func(*E) *int64) Field[E] {
	return Field[E]{
		Name: name,
		Get:  func(e *E) any { return *ptr(e) },
		Set: func(e *E, v any) {
			if c, ok := v.(int64); ok {
				*ptr(e) = c
			}
		},
	}
}

// Bool declares a flag.
func Bool[E any](name string, ptr func(*E) *bool) Field[E] {
	return Field[E]{
		Name: name,
		Get:  func(e *E) any { return *ptr(e) },
		Set: func(e *E, v any) {
			if b, ok := v.(bool); ok {
				*ptr(e) = b
			}
		},
	}
}

// Time declares a date or timestamp; the zero time means unset.
func Time[E any](name string, ptr func(*E) *time.Time) Field[E] {
	return Field[E]{
		Name: name,
		Get:  func(e *E) any { return *ptr(e) },
		Set: func(e *E, v any) {
			if t, ok := v.(time.Time); ok {
				*ptr(e) = t
			}
		},
	}
}

// OptionalTime declares a nullable date or timestamp.
func OptionalTime[E any](name string, ptr func(*E) **time.Time) Field[E] {
	return Field[E]{
		Name: name,
		Get: func(e *E) any {
			if p := *ptr(e); p != nil {
				return *p
			}
			return time.Time{}
		},
		Set: func(e *E, v any) {
			if t, ok := v.(time.Time); ok && !t.IsZero() {
				*ptr(e) = &t
			}
		},
	}
}

// Strings declares a list field.
func Strings[E any](name string, ptr func(*E) *[]string) Field[E] {
	return Field[E]{
		Name: name,
		Get:  func(e *E) any { return *ptr(e) },
		Set: func(e *E, v any) {
			if list, ok := v.([]string); ok {
				*ptr(e) = append([]string(nil), list...)
			}
		},
	}
}
