package controller

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ListingFilters holds the parsed public search parameters. Parsing is kept
// separate from the query so it can be exercised without a database.
type ListingFilters struct {
	Location     string
	BuildingType string
	BedsExact    *int
	BedsMin      *int
	MaxRent      *int
	Pets         string
	Furnished    string
	PerfectFor   string
	AvailBefore  *time.Time
	Query        string
	TypeCode     int
}

var tabTypeCodes = map[string]int{
	"Rentals":     1,
	"Sublets":     2,
	"RoomForRent": 3,
	"ShortTerm":   4,
}

// FiltersFromQuery reads the supported query parameters through the given
// getter (c.Query in handlers).
func FiltersFromQuery(get func(key string) string) ListingFilters {
	f := ListingFilters{}

	if v := get("location"); v != "" && !strings.EqualFold(v, "all") {
		f.Location = v
	}
	if v := get("buildingType"); v != "" && !strings.Contains(strings.ToLower(v), "all") {
		f.BuildingType = v
	}
	f.BedsExact, f.BedsMin = parseBedrooms(get("bedrooms"))
	if v := get("maxRent"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.MaxRent = &n
		}
	}
	if v := get("pets"); v != "" && !strings.EqualFold(v, "all") {
		f.Pets = strings.ToLower(v)
	}
	if v := get("furnished"); v != "" && !strings.EqualFold(v, "all") {
		f.Furnished = strings.ToLower(v)
	}
	if v := get("perfectFor"); v != "" && !strings.EqualFold(v, "all") {
		f.PerfectFor = v
	}
	f.AvailBefore = parseAvailableDate(get("availableDate"), time.Now())
	f.Query = get("q")
	f.TypeCode = tabTypeCodes[get("type")]

	return f
}

// parseBedrooms accepts "Studio", a bare digit, "2 Bedrooms" and
// "3+ Bedrooms" forms.
func parseBedrooms(v string) (exact *int, min *int) {
	if v == "" || strings.EqualFold(v, "all") {
		return nil, nil
	}
	if strings.EqualFold(v, "studio") {
		zero := 0
		return &zero, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return &n, nil
	}
	if strings.Contains(strings.ToLower(v), "bedroom") {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, v)
		if digits == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return nil, nil
		}
		if strings.Contains(v, "+") {
			return nil, &n
		}
		return &n, nil
	}
	return nil, nil
}

// parseAvailableDate accepts "Next Month" and MM/DD/YYYY. "Available Now"
// and "Immediate" mean no filter.
func parseAvailableDate(v string, now time.Time) *time.Time {
	switch strings.ToLower(v) {
	case "", "available now", "immediate":
		return nil
	case "next month":
		year, month := now.Year(), now.Month()+1
		if month > time.December {
			year, month = year+1, time.January
		}
		d := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
		return &d
	}
	d, err := time.Parse("01/02/2006", v)
	if err != nil {
		return nil
	}
	return &d
}

// Apply builds the WHERE clauses onto a listings query.
func (f ListingFilters) Apply(q *gorm.DB) *gorm.DB {
	if f.Location != "" {
		like := "%" + f.Location + "%"
		q = q.Where("location ILIKE ? OR address ILIKE ? OR physical_address ILIKE ?", like, like, like)
	}
	if f.BuildingType != "" {
		q = q.Where("building_type ILIKE ?", "%"+f.BuildingType+"%")
	}
	if f.BedsExact != nil {
		q = q.Where("beds = ?", *f.BedsExact)
	}
	if f.BedsMin != nil {
		q = q.Where("beds >= ?", *f.BedsMin)
	}
	if f.MaxRent != nil {
		q = q.Where("rent <= ?", *f.MaxRent)
	}
	if f.Pets != "" {
		switch {
		case strings.Contains(f.Pets, "dogs"):
			q = q.Where("pets ILIKE ? OR pets ILIKE ? OR pets ILIKE ?", "%dogs%", "%yes%", "%allowed%")
		case strings.Contains(f.Pets, "cats"):
			q = q.Where("pets ILIKE ? OR pets ILIKE ? OR pets ILIKE ?", "%cats%", "%yes%", "%allowed%")
		case strings.Contains(f.Pets, "no"):
			q = q.Where("pets ILIKE ? OR pets IS NULL OR pets = ''", "%no%")
		}
	}
	if f.Furnished != "" {
		switch f.Furnished {
		case "furnished":
			q = q.Where("furnished ILIKE ? OR furnished ILIKE ? OR furnished ILIKE ?", "%yes%", "%full%", "furnished")
		case "unfurnished":
			q = q.Where("furnished ILIKE ? OR furnished ILIKE ? OR furnished IS NULL", "%no%", "%unfurnished%")
		case "partial":
			q = q.Where("furnished ILIKE ?", "%partial%")
		}
	}
	if f.PerfectFor != "" {
		q = q.Where("perfect_for ILIKE ?", "%"+f.PerfectFor+"%")
	}
	if f.AvailBefore != nil {
		q = q.Where("date_avail <= ?", *f.AvailBefore)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where(
			"address ILIKE ? OR physical_address ILIKE ? OR location ILIKE ? OR details ILIKE ? OR building_type ILIKE ? OR zip ILIKE ?",
			like, like, like, like, like, like,
		)
	}
	if f.TypeCode != 0 {
		q = q.Where("type_code = ?", f.TypeCode)
	}
	return q
}
