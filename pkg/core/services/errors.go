package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
)

// storeErr tags store failures so handlers can tell them apart from
// validation and ownership errors.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || domain.IsValidation(err) {
		return err
	}
	return domain.PersistenceError{Op: op, Err: err}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.Invalid(field, "is required")
	}
	return nil
}

func validURL(field, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return domain.Invalid(field, err.Error())
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return domain.Invalid(field, "missing host")
		}
	case "mailto", "tel":
		if u.Opaque == "" {
			return domain.Invalid(field, "missing address")
		}
	default:
		return domain.Invalid(field, fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}
	return nil
}

// checkBatch rejects empty ids and duplicate ids or positions in a reorder request.
func checkBatch(items []domain.OrderUpdate) error {
	ids := make(map[string]bool, len(items))
	orders := make(map[int]bool, len(items))
	for _, it := range items {
		if it.ID == "" {
			return domain.Invalid("items", "missing id")
		}
		if ids[it.ID] {
			return domain.Invalid("items", fmt.Sprintf("duplicate id %q", it.ID))
		}
		if orders[it.Order] {
			return domain.Invalid("items", fmt.Sprintf("duplicate order %d", it.Order))
		}
		ids[it.ID] = true
		orders[it.Order] = true
	}
	return nil
}
