package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zylpheon/TheZylpheonAdmin/apperrors"
	"github.com/zylpheon/TheZylpheonAdmin/repository"
)

const defaultAdminPageSize = 10

// queryUint parses an optional positive id from the query string.
func queryUint(c *fiber.Ctx, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, apperrors.InvalidArgument("Invalid " + name)
	}
	id := uint(v)
	return &id, nil
}

func queryNonNegative(c *fiber.Ctx, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.InvalidArgument("Invalid " + name)
	}
	return v, nil
}

// limitOffset reads ?limit=&offset= as used by the storefront.
func limitOffset(c *fiber.Ctx) (repository.Page, error) {
	limit, err := queryNonNegative(c, "limit")
	if err != nil {
		return repository.Page{}, err
	}
	offset, err := queryNonNegative(c, "offset")
	if err != nil {
		return repository.Page{}, err
	}
	if limit == 0 {
		return repository.Page{}, nil
	}
	return repository.Page{Limit: limit, Offset: offset}, nil
}

// adminPage reads ?page=&limit= as used by the admin panel. limit=all
// disables paging.
func adminPage(c *fiber.Ctx) (repository.Page, error) {
	if strings.EqualFold(c.Query("limit"), "all") {
		return repository.Page{}, nil
	}
	limit, err := queryNonNegative(c, "limit")
	if err != nil {
		return repository.Page{}, err
	}
	if limit == 0 {
		limit = defaultAdminPageSize
	}
	page, err := queryNonNegative(c, "page")
	if err != nil {
		return repository.Page{}, err
	}
	return repository.NewPage(page, limit), nil
}
