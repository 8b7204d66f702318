// Package handlers is the thin HTTP layer: decode, validate, call a
// service with the authenticated identity, encode. No business rules
// live here.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/gshelgaas/bankcards/internal/apperr"
)

var validate = validator.New()

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.InvalidArgument("invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		return apperr.InvalidArgument("%s", err.Error())
	}
	return nil
}

// pageParams maps ?page=&size= onto limit/offset. Defaults: first
// page of 10, size capped at 100.
func pageParams(r *http.Request) (limit, offset int) {
	page, size := 0, 10
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			size = n
		}
	}
	return size, page * size
}
