package rest

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/realestate-backend/internal/domain"
)

// queryParser reads typed values from a query string and collects every
// malformed parameter. Absent parameters yield nil or zero.
type queryParser struct {
	values url.Values
	errs   []domain.FieldError
}

func newQueryParser(r *http.Request) *queryParser {
	return &queryParser{values: r.URL.Query()}
}

func (p *queryParser) fail(name, msg string) {
	p.errs = append(p.errs, domain.FieldError{Field: name, Message: msg})
}

func (p *queryParser) raw(name string) (string, bool) {
	v := strings.TrimSpace(p.values.Get(name))
	return v, v != ""
}

func (p *queryParser) str(name string) *string {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	return &v
}

func (p *queryParser) intPtr(name string) *int {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, "must be an integer")
		return nil
	}
	return &n
}

func (p *queryParser) decimalPtr(name string) *decimal.Decimal {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		p.fail(name, "must be a number")
		return nil
	}
	return &d
}

func (p *queryParser) floatPtr(name string) *float64 {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(name, "must be a number")
		return nil
	}
	return &f
}

func (p *queryParser) boolPtr(name string) *bool {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(name, "must be true or false")
		return nil
	}
	return &b
}

func (p *queryParser) uuidPtr(name string) *uuid.UUID {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		p.fail(name, "must be a UUID")
		return nil
	}
	return &id
}

// list accepts both repeated parameters and comma-separated values.
func (p *queryParser) list(name string) []string {
	var out []string
	for _, v := range p.values[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (p *queryParser) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return domain.NewValidationErrors(p.errs)
}

// ---------------------------------------------------------------------------
// Path and header helpers
// ---------------------------------------------------------------------------

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "must be a UUID")
	}
	return id, nil
}

var errVersionFormat = errors.New("version must be a positive integer")

// expectedVersion reads the optional version token from If-Match (bare or
// quoted, weak validators accepted) or from the version query parameter.
// If-Match wins when both are present.
func expectedVersion(r *http.Request) (*int64, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw != "" {
		raw = strings.TrimPrefix(raw, "W/")
		raw = strings.Trim(raw, `"`)
	} else {
		raw = strings.TrimSpace(r.URL.Query().Get("version"))
	}
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		return nil, errVersionFormat
	}
	return &v, nil
}

func etag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}
