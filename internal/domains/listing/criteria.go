package listing

import (
	"net/url"
	"strconv"
	"strings"

	"lodge/shared"
	"lodge/shared/constant"
)

const (
	ParamQuery     = "q"
	ParamRegion    = "region"
	ParamType      = "type"
	ParamStatus    = "status"
	ParamFeatured  = "featured"
	ParamGuests    = "guests"
	ParamMinPrice  = "min_price"
	ParamMaxPrice  = "max_price"
	ParamAmenities = "amenities"
	ParamSort      = "sort"
	ParamTag       = "tag"
	ParamPublished = "published"
)

// ParsePropertyCriteria reads search parameters. Malformed numbers are treated as absent.
func ParsePropertyCriteria(values url.Values) PropertyCriteria {
	c := PropertyCriteria{
		Query:     strings.TrimSpace(values.Get(ParamQuery)),
		Region:    values.Get(ParamRegion),
		Type:      values.Get(ParamType),
		Status:    values.Get(ParamStatus),
		MinPrice:  shared.ConvertStringToFloat(values.Get(ParamMinPrice)),
		MaxPrice:  shared.ConvertStringToFloat(values.Get(ParamMaxPrice)),
		Amenities: nonEmpty(values[ParamAmenities]),
		SortBy:    parseSort(values.Get(ParamSort)),
		Page:      parsePositive(values.Get(constant.RequestParamPage)),
		Limit:     parsePositive(values.Get(constant.RequestParamLimit)),
	}

	if guests := parsePositive(values.Get(ParamGuests)); guests > 0 {
		c.Guests = &guests
	}

	if featured, err := strconv.ParseBool(values.Get(ParamFeatured)); err == nil {
		c.FeaturedOnly = featured
	}

	return c
}

func ParseArticleCriteria(values url.Values) ArticleCriteria {
	c := ArticleCriteria{
		Query: strings.TrimSpace(values.Get(ParamQuery)),
		Tag:   values.Get(ParamTag),
		Page:  parsePositive(values.Get(constant.RequestParamPage)),
		Limit: parsePositive(values.Get(constant.RequestParamLimit)),
	}

	if published, err := strconv.ParseBool(values.Get(ParamPublished)); err == nil {
		c.Published = &published
	}

	return c
}

func parseSort(value string) SortKey {
	switch key := SortKey(value); key {
	case SortName, SortPriceLow, SortPriceHigh, SortRating:
		return key
	default:
		return SortPriority
	}
}

func parsePositive(value string) int {
	if value == constant.Empty {
		return 0
	}

	res, err := shared.ConvertStringToInt(value)
	if err != nil || res < 0 {
		return 0
	}

	return res
}

// nonEmpty drops blank entries. Amenity labels are otherwise kept byte for byte.
func nonEmpty(values []string) []string {
	var res []string

	for _, value := range values {
		if value != constant.Empty {
			res = append(res, value)
		}
	}

	return res
}
